// Package providers wires individual data sources into an ordered
// failover chain.
package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marketlens/ashare/internal/common"
	"github.com/marketlens/ashare/internal/interfaces"
	"github.com/marketlens/ashare/internal/models"
)

const DefaultAttemptTimeout = 10 * time.Second

// Chain tries each provider in order and returns the first usable
// result. A malformed response counts as a failure, so a degraded feed
// falls through to the next source instead of poisoning the pipeline.
type Chain struct {
	providers []interfaces.Provider
	timeout   time.Duration
	logger    *common.Logger
}

// ChainOption configures the chain
type ChainOption func(*Chain)

// WithAttemptTimeout caps how long a single provider attempt may take
func WithAttemptTimeout(timeout time.Duration) ChainOption {
	return func(c *Chain) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ChainOption {
	return func(c *Chain) {
		c.logger = logger
	}
}

// NewChain creates a failover chain over providers, tried in the order
// given.
func NewChain(providers []interfaces.Provider, opts ...ChainOption) *Chain {
	c := &Chain{
		providers: providers,
		timeout:   DefaultAttemptTimeout,
		logger:    common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Providers returns the chain's sources in try order.
func (c *Chain) Providers() []interfaces.Provider {
	return c.providers
}

// FetchBars returns the first valid bar series any provider yields.
// The result is tagged with the provider that produced it.
func (c *Chain) FetchBars(ctx context.Context, code string, lookbackDays int) (*models.BarSeries, error) {
	var errs []error
	for _, p := range c.providers {
		series, err := c.tryBars(ctx, p, code, lookbackDays)
		if err != nil {
			c.logger.Warn().
				Str("provider", p.Name()).
				Str("code", code).
				Err(err).
				Msg("bar fetch failed, trying next provider")
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		c.logger.Debug().
			Str("provider", p.Name()).
			Str("code", code).
			Int("bars", series.Len()).
			Msg("bar series fetched")
		return series, nil
	}
	return nil, fmt.Errorf("%w for %s: %w", models.ErrProviderUnavailable, code, errors.Join(errs...))
}

func (c *Chain) tryBars(ctx context.Context, p interfaces.Provider, code string, lookbackDays int) (*models.BarSeries, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	series, err := p.FetchBars(attemptCtx, code, lookbackDays)
	if err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("invalid series: %w", err)
	}
	series.Source = models.SourceTag{
		Provider:   p.Name(),
		Confidence: p.Confidence(),
	}
	return series, nil
}

// FetchCompanyInfo returns the first company profile any provider
// yields.
func (c *Chain) FetchCompanyInfo(ctx context.Context, code string) (*models.CompanyInfo, error) {
	var errs []error
	for _, p := range c.providers {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		info, err := p.FetchCompanyInfo(attemptCtx, code)
		cancel()
		if err != nil {
			c.logger.Warn().
				Str("provider", p.Name()).
				Str("code", code).
				Err(err).
				Msg("company fetch failed, trying next provider")
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		info.Source = models.SourceTag{
			Provider:   p.Name(),
			Confidence: p.Confidence(),
		}
		return info, nil
	}
	return nil, fmt.Errorf("%w for %s: %w", models.ErrProviderUnavailable, code, errors.Join(errs...))
}

// FetchConstituents returns the first non-empty constituent list any
// provider yields for an index.
func (c *Chain) FetchConstituents(ctx context.Context, indexCode string) ([]models.Constituent, error) {
	var errs []error
	for _, p := range c.providers {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		rows, err := p.FetchConstituents(attemptCtx, indexCode)
		cancel()
		if err != nil {
			c.logger.Warn().
				Str("provider", p.Name()).
				Str("index", indexCode).
				Err(err).
				Msg("constituent fetch failed, trying next provider")
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(rows) == 0 {
			errs = append(errs, fmt.Errorf("%s: empty constituent list", p.Name()))
			continue
		}
		return rows, nil
	}
	return nil, fmt.Errorf("%w for index %s: %w", models.ErrProviderUnavailable, indexCode, errors.Join(errs...))
}
