package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	yaml "gopkg.in/yaml.v2"
)

var Config = Default()

// reading config error is fatal, and exists main thread
func processError(err error) {
	fmt.Println(err)
	os.Exit(2)
}

func readFile(path string, cfg *Configuration) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		// defaults apply
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(cfg)
	if err != nil {
		return fmt.Errorf("cannot decode %s: %w", path, err)
	}
	return nil
}

func readEnv(cfg *Configuration) error {
	return envconfig.Process(EnvPrefix, cfg)
}

// Load starts from defaults, then applies the yaml file (if present) and env overrides
func Load(path string) (Configuration, error) {
	cfg := Default()
	if err := readFile(path, &cfg); err != nil {
		return cfg, err
	}
	if err := readEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func Init(path string) {
	cfg, err := Load(path)
	if err != nil {
		processError(err)
	}
	Config = cfg
}

func (c Configuration) Validate() error {
	s := c.Simulator
	for name, r := range map[string]DelayRange{
		"message_source":       s.MessageSource,
		"message_destination":  s.MessageDestination,
		"transfer_source":      s.TransferSource,
		"transfer_destination": s.TransferDestination,
	} {
		if r.Min < 0 || r.Max < r.Min {
			return fmt.Errorf("simulator.%s: invalid delay range %s..%s", name, r.Min, r.Max)
		}
	}
	if s.FailureRate < 0 || s.FailureRate > 1 {
		return fmt.Errorf("simulator.failure_rate must be within [0, 1], got %v", s.FailureRate)
	}
	if c.Redis.Enabled && c.Redis.Host == "" {
		return errors.New("redis.host is required when redis is enabled")
	}
	return nil
}
