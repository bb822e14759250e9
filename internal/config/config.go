package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	StoreMongo = "mongo"
	StoreRedis = "redis"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`
	Env  string `env:"APP_ENV" envDefault:"development"`

	// STORE_URL selects the history backend by scheme (mongodb://, redis://).
	StoreURL string `env:"STORE_URL"`
	DBName   string `env:"DB_NAME" envDefault:"plinko"`

	RPCURL          string `env:"RPC_URL"`
	ContractAddress string `env:"CONTRACT_ADDRESS"`
	ContractABIPath string `env:"CONTRACT_ABI_PATH"`
	ContractABI     string `env:"CONTRACT_ABI"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	LLMAPIKey  string `env:"LLM_API_KEY"`
	LLMModel   string `env:"LLM_MODEL" envDefault:"gpt-4o"`
	LLMBaseURL string `env:"LLM_BASE_URL"`

	// WinRate is reported by /api/stats as configured; it is not derived
	// from recorded plays.
	WinRate         float64 `env:"WIN_RATE" envDefault:"0.25"`
	HistoryMaxLimit int64   `env:"HISTORY_MAX_LIMIT" envDefault:"100"`
}

// legacy variable names used by earlier deployments
var aliases = []struct {
	name string
	dst  func(*Config) *string
}{
	{"MONGO_URL", func(c *Config) *string { return &c.StoreURL }},
	{"PULSECHAIN_RPC_URL", func(c *Config) *string { return &c.RPCURL }},
	{"EMERGENT_LLM_KEY", func(c *Config) *string { return &c.LLMAPIKey }},
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	for _, alias := range aliases {
		dst := alias.dst(cfg)
		if *dst == "" {
			*dst = strings.TrimSpace(os.Getenv(alias.name))
		}
	}

	cfg.CORSOrigins = trimOrigins(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.StoreURL) == "" {
		return fmt.Errorf("STORE_URL (or MONGO_URL) is required")
	}
	if _, err := c.StoreKind(); err != nil {
		return err
	}
	if c.WinRate < 0 || c.WinRate > 1 {
		return fmt.Errorf("WIN_RATE must be between 0 and 1, got %v", c.WinRate)
	}
	if c.HistoryMaxLimit <= 0 {
		return fmt.Errorf("HISTORY_MAX_LIMIT must be positive, got %d", c.HistoryMaxLimit)
	}
	return nil
}

// StoreKind reports which history backend the store URL points at.
func (c *Config) StoreKind() (string, error) {
	u, err := url.Parse(c.StoreURL)
	if err != nil {
		return "", fmt.Errorf("invalid store url: %w", err)
	}
	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return StoreMongo, nil
	case "redis", "rediss":
		return StoreRedis, nil
	default:
		return "", fmt.Errorf("unsupported store url scheme %q", u.Scheme)
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func trimOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
