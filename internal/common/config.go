// Package common provides shared utilities for the ashare engine
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the engine and its thin HTTP surface.
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Engine      EngineConfig    `toml:"engine"`
	Providers   ProvidersConfig `toml:"providers"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// EngineConfig holds analysis engine tuning.
type EngineConfig struct {
	CacheTTL         string  `toml:"cache_ttl"`         // duration string, default "6h"
	SweepInterval    string  `toml:"sweep_interval"`    // expired-entry sweep period, default "15m"
	Workers          int     `toml:"workers"`           // batch fan-out pool size
	BatchLimit       int     `toml:"batch_limit"`       // max codes per ad-hoc batch
	ConstituentLimit int     `toml:"constituent_limit"` // default max constituents analyzed per index request
	LookbackDays     int     `toml:"lookback_days"`     // trading days of history requested from providers
	RiskFreeRate     float64 `toml:"risk_free_rate"`    // annual, for Sharpe
}

// GetCacheTTL parses and returns the cache TTL duration.
func (c *EngineConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

// GetSweepInterval parses and returns the sweep interval duration.
func (c *EngineConfig) GetSweepInterval() time.Duration {
	d, err := time.ParseDuration(c.SweepInterval)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// ProvidersConfig holds per-provider client configuration.
type ProvidersConfig struct {
	Eastmoney ProviderConfig `toml:"eastmoney"`
	Tencent   ProviderConfig `toml:"tencent"`
}

// ProviderConfig holds one upstream data source's settings.
type ProviderConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"` // requests per second
	Timeout   string `toml:"timeout"`
	Disabled  bool   `toml:"disabled"`
}

// GetTimeout parses and returns the per-call timeout duration.
func (c *ProviderConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Engine: EngineConfig{
			CacheTTL:         "6h",
			SweepInterval:    "15m",
			Workers:          5,
			BatchLimit:       10,
			ConstituentLimit: 50,
			LookbackDays:     250,
			RiskFreeRate:     0.02,
		},
		Providers: ProvidersConfig{
			Eastmoney: ProviderConfig{
				BaseURL:   "https://push2his.eastmoney.com",
				RateLimit: 5,
				Timeout:   "10s",
			},
			Tencent: ProviderConfig{
				BaseURL:   "https://web.ifzq.gtimg.cn",
				RateLimit: 5,
				Timeout:   "10s",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies ASHARE_* environment variables to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ASHARE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("ASHARE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("ASHARE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("ASHARE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if ttl := os.Getenv("ASHARE_CACHE_TTL"); ttl != "" {
		config.Engine.CacheTTL = ttl
	}

	if workers := os.Getenv("ASHARE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			config.Engine.Workers = w
		}
	}
}
