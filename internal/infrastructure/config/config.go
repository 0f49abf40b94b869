package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all client configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Retry      RetryConfig      `toml:"retry"`
	Breaker    BreakerConfig    `toml:"breaker"`
	RateLimit  RateLimitConfig  `toml:"rate_limit"`
	Logging    LogConfig        `toml:"logging"`
	Engine     EngineConfig     `toml:"engine"`
	FakeServer FakeServerConfig `toml:"fake_server"`
}

// APIConfig holds platform API connection settings.
type APIConfig struct {
	BaseURL   string   `envconfig:"WORKBENCH_API_URL" default:"http://localhost:8000" toml:"base_url"`
	Token     string   `envconfig:"WORKBENCH_API_TOKEN" toml:"token"`
	Timeout   Duration `envconfig:"WORKBENCH_API_TIMEOUT" default:"30s" toml:"timeout"`
	UserAgent string   `envconfig:"WORKBENCH_USER_AGENT" default:"workbench/1.0" toml:"user_agent"`
}

// RetryConfig holds retry settings for idempotent requests.
type RetryConfig struct {
	Count   int      `envconfig:"WORKBENCH_RETRY_COUNT" default:"2" toml:"count"`
	WaitMin Duration `envconfig:"WORKBENCH_RETRY_WAIT_MIN" default:"250ms" toml:"wait_min"`
	WaitMax Duration `envconfig:"WORKBENCH_RETRY_WAIT_MAX" default:"5s" toml:"wait_max"`
}

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	Enabled             bool     `envconfig:"WORKBENCH_BREAKER_ENABLED" default:"true" toml:"enabled"`
	ConsecutiveFailures uint32   `envconfig:"WORKBENCH_BREAKER_FAILURES" default:"5" toml:"consecutive_failures"`
	OpenTimeout         Duration `envconfig:"WORKBENCH_BREAKER_TIMEOUT" default:"30s" toml:"open_timeout"`
}

// RateLimitConfig holds client-side rate limiting. Zero RPS means unlimited.
type RateLimitConfig struct {
	RequestsPerSecond float64 `envconfig:"WORKBENCH_RATE_LIMIT_RPS" default:"0" toml:"requests_per_second"`
	Burst             int     `envconfig:"WORKBENCH_RATE_LIMIT_BURST" default:"10" toml:"burst"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"WORKBENCH_LOG_LEVEL" default:"warn" toml:"level"`
	Development bool   `envconfig:"WORKBENCH_LOG_DEV" default:"false" toml:"development"`
}

// EngineConfig holds session engine behavior switches.
type EngineConfig struct {
	FenceStaleVersions bool `envconfig:"WORKBENCH_FENCE_STALE_VERSIONS" default:"false" toml:"fence_stale_versions"`
}

// FakeServerConfig holds settings for the local fake platform API.
type FakeServerConfig struct {
	Addr string `envconfig:"WORKBENCH_FAKE_ADDR" default:"127.0.0.1:8000" toml:"addr"`
	Seed bool   `envconfig:"WORKBENCH_FAKE_SEED" default:"true" toml:"seed"`
	// Latency delays every response, which makes stop/resume races reproducible
	Latency      Duration `envconfig:"WORKBENCH_FAKE_LATENCY" default:"0s" toml:"latency"`
	RateLimitRPS int      `envconfig:"WORKBENCH_FAKE_RATE_LIMIT_RPS" default:"0" toml:"rate_limit_rps"`
	AllowOrigins []string `envconfig:"WORKBENCH_FAKE_ALLOW_ORIGINS" default:"*" toml:"allow_origins"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// LoadFile layers a TOML file over the defaults. Environment variables are
// not consulted.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("invalid config: api base url is required")
	}
	if c.Retry.Count < 0 {
		return fmt.Errorf("invalid config: retry count cannot be negative")
	}
	if c.Retry.WaitMin.Duration > c.Retry.WaitMax.Duration {
		return fmt.Errorf("invalid config: retry wait min exceeds wait max")
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid config: requests per second cannot be negative")
	}
	if c.FakeServer.RateLimitRPS < 0 {
		return fmt.Errorf("invalid config: fake server rate limit cannot be negative")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8000",
			Timeout:   Duration{30 * time.Second},
			UserAgent: "workbench/1.0",
		},
		Retry: RetryConfig{
			Count:   2,
			WaitMin: Duration{250 * time.Millisecond},
			WaitMax: Duration{5 * time.Second},
		},
		Breaker: BreakerConfig{
			Enabled:             true,
			ConsecutiveFailures: 5,
			OpenTimeout:         Duration{30 * time.Second},
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 0,
			Burst:             10,
		},
		Logging: LogConfig{
			Level:       "warn",
			Development: false,
		},
		FakeServer: FakeServerConfig{
			Addr:         "127.0.0.1:8000",
			Seed:         true,
			AllowOrigins: []string{"*"},
		},
	}
}
