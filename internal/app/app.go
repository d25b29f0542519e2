// Package app wires configuration, logging, the provider chain, the
// cache, and the analyzer into one application container.
package app

import (
	"fmt"

	"github.com/marketlens/ashare/internal/common"
	"github.com/marketlens/ashare/internal/engine"
	"github.com/marketlens/ashare/internal/interfaces"
	"github.com/marketlens/ashare/internal/providers"
	"github.com/marketlens/ashare/internal/providers/eastmoney"
	"github.com/marketlens/ashare/internal/providers/synthetic"
	"github.com/marketlens/ashare/internal/providers/tencent"
)

// App holds the initialized application components.
type App struct {
	Config   *common.Config
	Logger   *common.Logger
	Chain    *providers.Chain
	Cache    *engine.Cache
	Analyzer *engine.Analyzer
}

// NewApp loads configuration and wires every component.
func NewApp(configPath string) (*App, error) {
	config, err := common.LoadConfig(configPath, "config.toml")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level, config.Logging.Format)

	chain := buildChain(config, logger)

	cache := engine.NewCache(config.Engine.GetCacheTTL(), engine.WithCacheLogger(logger))
	if err := cache.StartSweeper(config.Engine.GetSweepInterval()); err != nil {
		return nil, err
	}

	analyzer := engine.NewAnalyzer(chain, cache, config.Engine, logger)

	logger.Info().
		Str("environment", config.Environment).
		Dur("cache_ttl", config.Engine.GetCacheTTL()).
		Int("workers", config.Engine.Workers).
		Msg("Application initialized")

	return &App{
		Config:   config,
		Logger:   logger,
		Chain:    chain,
		Cache:    cache,
		Analyzer: analyzer,
	}, nil
}

// buildChain assembles the provider failover chain in priority order,
// with the synthetic generator as terminal fallback.
func buildChain(config *common.Config, logger *common.Logger) *providers.Chain {
	var list []interfaces.Provider

	if em := config.Providers.Eastmoney; !em.Disabled {
		opts := []eastmoney.ClientOption{
			eastmoney.WithLogger(logger),
			eastmoney.WithTimeout(em.GetTimeout()),
		}
		if em.BaseURL != "" {
			opts = append(opts, eastmoney.WithBaseURL(em.BaseURL))
		}
		if em.RateLimit > 0 {
			opts = append(opts, eastmoney.WithRateLimit(em.RateLimit))
		}
		list = append(list, eastmoney.NewClient(opts...))
	}

	if tc := config.Providers.Tencent; !tc.Disabled {
		opts := []tencent.ClientOption{
			tencent.WithLogger(logger),
			tencent.WithTimeout(tc.GetTimeout()),
		}
		if tc.BaseURL != "" {
			opts = append(opts, tencent.WithBaseURL(tc.BaseURL))
		}
		if tc.RateLimit > 0 {
			opts = append(opts, tencent.WithRateLimit(tc.RateLimit))
		}
		list = append(list, tencent.NewClient(opts...))
	}

	// always last, always succeeds
	list = append(list, synthetic.NewProvider())

	return providers.NewChain(list, providers.WithLogger(logger))
}

// Close releases background resources.
func (a *App) Close() {
	a.Cache.StopSweeper()
}
