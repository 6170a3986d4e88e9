package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file keeps defaults", func(t *testing.T) {
		req := require.New(t)
		cfg, err := Load(filepath.Join(t.TempDir(), "config.yml"))
		req.NoError(err)
		req.Equal(Default(), cfg)
		req.Equal(2*time.Second, cfg.Simulator.TransferSource.Min)
		req.Equal(10*time.Second, cfg.Simulator.TransferDestination.Max)
	})

	t.Run("file then env overrides", func(t *testing.T) {
		req := require.New(t)
		path := filepath.Join(t.TempDir(), "config.yml")
		content := `
server:
  addr: ":9090"
redis:
  enabled: true
  host: cache
simulator:
  message_source:
    min: 10ms
    max: 20ms
  failure_rate: 0.25
log:
  level: debug
`
		req.NoError(os.WriteFile(path, []byte(content), 0o600))
		t.Setenv("XCHAIN_REDIS_PORT", "6380")
		t.Setenv("XCHAIN_SIMULATOR_FAILURE_RATE", "0.5")

		cfg, err := Load(path)
		req.NoError(err)
		req.Equal(":9090", cfg.Server.Addr)
		req.True(cfg.Redis.Enabled)
		req.Equal("cache", cfg.Redis.Host)
		req.Equal(6380, cfg.Redis.Port)
		req.Equal(10*time.Millisecond, cfg.Simulator.MessageSource.Min)
		req.Equal(20*time.Millisecond, cfg.Simulator.MessageSource.Max)
		req.Equal(0.5, cfg.Simulator.FailureRate)
		req.Equal("debug", cfg.Log.Level)
		// untouched sections keep defaults
		req.Equal(DefaultSimulator().TransferDestination, cfg.Simulator.TransferDestination)
	})

	t.Run("invalid delay range", func(t *testing.T) {
		req := require.New(t)
		path := filepath.Join(t.TempDir(), "config.yml")
		content := `
simulator:
  transfer_source:
    min: 5s
    max: 1s
`
		req.NoError(os.WriteFile(path, []byte(content), 0o600))
		_, err := Load(path)
		req.ErrorContains(err, "transfer_source")
	})

	t.Run("invalid failure rate", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("XCHAIN_SIMULATOR_FAILURE_RATE", "2")
		_, err := Load(filepath.Join(t.TempDir(), "none.yml"))
		req.ErrorContains(err, "failure_rate")
	})
}

func TestReferenceTables(t *testing.T) {
	req := require.New(t)
	req.Len(Networks, 4)

	known := map[string]bool{}
	for _, tok := range Tokens {
		known[tok.ID] = true
	}
	for _, seed := range InitialBalances {
		req.True(known[seed.TokenID], seed.TokenID)
	}
}
