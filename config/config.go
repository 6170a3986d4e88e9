package config

import (
	"time"

	"goxchain/types"
)

type Configuration struct {
	// Server config
	Server struct {
		Addr     string `yaml:"addr" envconfig:"ADDR"`
		UseSSL   bool   `yaml:"ssl" envconfig:"SSL"`
		CertFile string `yaml:"cert_file" envconfig:"CERT_FILE"`
		KeyFile  string `yaml:"key_file" envconfig:"KEY_FILE"`
	} `yaml:"server"`
	// Redis event fan-out, disabled unless configured
	Redis struct {
		Enabled       bool   `yaml:"enabled" envconfig:"ENABLED"`
		Host          string `yaml:"host" envconfig:"HOST"`
		Port          int    `yaml:"port" envconfig:"PORT"`
		ChannelPrefix string `yaml:"channel_prefix" envconfig:"CHANNEL_PREFIX"`
	} `yaml:"redis"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Log       struct {
		Level string `yaml:"level" envconfig:"LEVEL"`
		Dir   string `yaml:"dir" envconfig:"DIR"`
	} `yaml:"log"`
	ReportInterval time.Duration `yaml:"report_interval" envconfig:"REPORT_INTERVAL"`
}

// DelayRange is a uniformly distributed simulated network delay
type DelayRange struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

type SimulatorConfig struct {
	MessageSource       DelayRange    `yaml:"message_source" ignored:"true"`
	MessageDestination  DelayRange    `yaml:"message_destination" ignored:"true"`
	TransferSource      DelayRange    `yaml:"transfer_source" ignored:"true"`
	TransferDestination DelayRange    `yaml:"transfer_destination" ignored:"true"`
	FailureRate         float64       `yaml:"failure_rate" envconfig:"FAILURE_RATE"`
	PhaseTimeout        time.Duration `yaml:"phase_timeout" envconfig:"PHASE_TIMEOUT"`
	Seed                uint64        `yaml:"seed" envconfig:"SEED"` // 0 picks a random seed
}

// Default is used for anything the config file and env leave unset
func Default() Configuration {
	var cfg Configuration
	cfg.Server.Addr = ":8080"
	cfg.Redis.Host = "localhost"
	cfg.Redis.Port = 6379
	cfg.Redis.ChannelPrefix = "xchain"
	cfg.Simulator = DefaultSimulator()
	cfg.Log.Level = "info"
	cfg.Log.Dir = "logs"
	cfg.ReportInterval = 30 * time.Second
	return cfg
}

func DefaultSimulator() SimulatorConfig {
	return SimulatorConfig{
		MessageSource:       DelayRange{Min: 2 * time.Second, Max: 5 * time.Second},
		MessageDestination:  DelayRange{Min: 3 * time.Second, Max: 8 * time.Second},
		TransferSource:      DelayRange{Min: 2 * time.Second, Max: 5 * time.Second},
		TransferDestination: DelayRange{Min: 4 * time.Second, Max: 10 * time.Second},
		PhaseTimeout:        30 * time.Second,
	}
}

// env variables are read with this prefix, e.g. XCHAIN_REDIS_HOST or XCHAIN_SIMULATOR_FAILURE_RATE
const EnvPrefix = "XCHAIN"

// Networks is the closed set of chains
var Networks = []types.Network{
	{ID: types.ChainSolana, Name: "Solana", Icon: "circle", Color: "rgb(20, 241, 149)", Accent: "rgb(126, 36, 231)"},
	{ID: types.ChainEthereum, Name: "Ethereum", Icon: "hexagon", Color: "rgb(114, 131, 165)", Accent: "rgb(98, 126, 234)"},
	{ID: types.ChainArbitrum, Name: "Arbitrum", Icon: "triangle", Color: "rgb(40, 160, 240)", Accent: "rgb(41, 55, 97)"},
	{ID: types.ChainPolygon, Name: "Polygon", Icon: "pentagon", Color: "rgb(130, 71, 229)", Accent: "rgb(130, 71, 229)"},
}

var Tokens = []types.Token{
	{
		ID:       "usdc",
		Symbol:   "USDC",
		Name:     "USD Coin",
		Decimals: 6,
		LogoURI:  "/tokens/usdc.svg",
		Chains:   []types.ChainID{types.ChainSolana, types.ChainEthereum, types.ChainArbitrum, types.ChainPolygon},
	},
	{
		ID:       "sol",
		Symbol:   "SOL",
		Name:     "Solana",
		Decimals: 9,
		LogoURI:  "/tokens/sol.svg",
		Chains:   []types.ChainID{types.ChainSolana},
	},
	{
		ID:       "eth",
		Symbol:   "ETH",
		Name:     "Ethereum",
		Decimals: 18,
		LogoURI:  "/tokens/eth.svg",
		Chains:   []types.ChainID{types.ChainEthereum, types.ChainArbitrum},
	},
	{
		ID:       "matic",
		Symbol:   "MATIC",
		Name:     "Polygon",
		Decimals: 18,
		LogoURI:  "/tokens/matic.svg",
		Chains:   []types.ChainID{types.ChainPolygon},
	},
}

// SeedBalance is a starting ledger entry, in a real app this would come from wallet connections
type SeedBalance struct {
	TokenID string
	Chain   types.ChainID
	Amount  string
}

var InitialBalances = []SeedBalance{
	{TokenID: "usdc", Chain: types.ChainSolana, Amount: "1000.00"},
	{TokenID: "sol", Chain: types.ChainSolana, Amount: "10.5"},
	{TokenID: "usdc", Chain: types.ChainEthereum, Amount: "500.00"},
	{TokenID: "eth", Chain: types.ChainEthereum, Amount: "2.35"},
	{TokenID: "usdc", Chain: types.ChainArbitrum, Amount: "750.00"},
	{TokenID: "eth", Chain: types.ChainArbitrum, Amount: "1.75"},
	{TokenID: "usdc", Chain: types.ChainPolygon, Amount: "1200.00"},
	{TokenID: "matic", Chain: types.ChainPolygon, Amount: "120.5"},
}
