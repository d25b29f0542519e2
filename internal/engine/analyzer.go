package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/marketlens/ashare/internal/common"
	"github.com/marketlens/ashare/internal/indicators"
	"github.com/marketlens/ashare/internal/interfaces"
	"github.com/marketlens/ashare/internal/models"
)

// DataSource is the slice of the provider chain the analyzer consumes.
type DataSource interface {
	FetchBars(ctx context.Context, code string, lookbackDays int) (*models.BarSeries, error)
	FetchCompanyInfo(ctx context.Context, code string) (*models.CompanyInfo, error)
	FetchConstituents(ctx context.Context, indexCode string) ([]models.Constituent, error)
}

// Analyzer is the engine facade: it validates requests, runs the
// cache-fronted fetch/compute pipeline, and fans out batch and index
// analyses over a bounded worker pool.
type Analyzer struct {
	source DataSource
	cache  *Cache
	logger *common.Logger
	now    func() time.Time

	workers          int
	batchLimit       int
	constituentLimit int
	lookbackDays     int
	riskFreeRate     float64
}

// NewAnalyzer creates the engine service.
func NewAnalyzer(source DataSource, cache *Cache, cfg common.EngineConfig, logger *common.Logger) *Analyzer {
	a := &Analyzer{
		source:           source,
		cache:            cache,
		logger:           logger,
		now:              time.Now,
		workers:          cfg.Workers,
		batchLimit:       cfg.BatchLimit,
		constituentLimit: cfg.ConstituentLimit,
		lookbackDays:     cfg.LookbackDays,
		riskFreeRate:     cfg.RiskFreeRate,
	}
	if a.workers <= 0 {
		a.workers = 5
	}
	if a.batchLimit <= 0 {
		a.batchLimit = 10
	}
	if a.constituentLimit <= 0 {
		a.constituentLimit = 50
	}
	if a.lookbackDays <= 0 {
		a.lookbackDays = 250
	}
	if a.logger == nil {
		a.logger = common.NewSilentLogger()
	}
	return a
}

// Analyze analyzes one or more stock codes. Structural input errors are
// returned before any fetch starts; per-code failures after that are
// captured in the item slots.
func (a *Analyzer) Analyze(ctx context.Context, codes []string, opts interfaces.AnalyzeOptions) (*models.BatchResult, error) {
	normalized, err := models.NormalizeCodes(codes)
	if err != nil {
		return nil, err
	}
	if len(normalized) > a.batchLimit {
		return nil, fmt.Errorf("%w: %d codes exceeds limit of %d", models.ErrBatchLimitExceeded, len(normalized), a.batchLimit)
	}

	windows := opts.Windows
	if len(windows) == 0 {
		windows = models.AllWindows
	}
	for _, w := range windows {
		if !w.Valid() {
			return nil, fmt.Errorf("%w: unknown time window %q", models.ErrInvalidIdentifier, w)
		}
	}

	if !opts.Deadline.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, opts.Deadline)
		defer cancel()
	}

	a.logger.Info().
		Strs("codes", normalized).
		Int("windows", len(windows)).
		Bool("force_refresh", opts.ForceRefresh).
		Msg("analyzing stocks")

	items := a.fanOut(ctx, normalized, windows, opts.ForceRefresh)

	return &models.BatchResult{
		Items:       items,
		Summary:     summarize(items),
		Partial:     ctx.Err() != nil,
		GeneratedAt: a.now(),
	}, nil
}

// AnalyzeIndex resolves an index alias, fetches its constituents, and
// analyzes each through the same cache-fronted pipeline.
func (a *Analyzer) AnalyzeIndex(ctx context.Context, alias string, opts interfaces.IndexOptions) (*models.IndexAnalysisResult, error) {
	info, err := ResolveIndex(alias)
	if err != nil {
		return nil, err
	}

	if !opts.Deadline.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, opts.Deadline)
		defer cancel()
	}

	constituents, err := a.source.FetchConstituents(ctx, info.Code)
	if err != nil {
		return nil, err
	}
	total := len(constituents)

	limit := opts.ConstituentLimit
	if limit <= 0 || limit > a.constituentLimit {
		limit = a.constituentLimit
	}
	if len(constituents) > limit {
		constituents = constituents[:limit]
	}

	a.logger.Info().
		Str("index", info.Code).
		Int("constituents", len(constituents)).
		Msg("analyzing index constituents")

	codes := make([]string, len(constituents))
	for i, c := range constituents {
		codes[i] = c.Code
	}
	items := a.fanOut(ctx, codes, models.AllWindows, opts.ForceRefresh)

	result := &models.IndexAnalysisResult{
		Index:            info,
		ConstituentCount: total,
		Constituents:     make([]models.ConstituentResult, len(constituents)),
		Summary:          summarize(items),
		Partial:          ctx.Err() != nil,
		GeneratedAt:      a.now(),
	}
	for i, c := range constituents {
		result.Constituents[i] = models.ConstituentResult{
			Constituent: c,
			Result:      items[i].Result,
			Error:       items[i].Error,
		}
	}
	aggregateIndex(result)
	return result, nil
}

// GetCompanyInfo retrieves the descriptive record for one stock code.
func (a *Analyzer) GetCompanyInfo(ctx context.Context, code string) (*models.CompanyInfo, error) {
	normalized, err := models.NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	return a.source.FetchCompanyInfo(ctx, normalized)
}

// CacheStatus reports cache occupancy.
func (a *Analyzer) CacheStatus() models.CacheStatus {
	return a.cache.Status()
}

// CacheClear evicts all cached results.
func (a *Analyzer) CacheClear() {
	a.cache.Clear()
	a.logger.Info().Msg("analysis cache cleared")
}

// analyzeOne runs the cache-fronted fetch/compute pipeline for one code.
func (a *Analyzer) analyzeOne(ctx context.Context, code string, windows []models.TimeWindow, forceRefresh bool) (*models.AnalysisResult, error) {
	key := CacheKey([]string{code}, windows)
	return a.cache.GetOrCompute(ctx, key, forceRefresh, func(ctx context.Context) (*models.AnalysisResult, error) {
		return a.compute(ctx, code, windows)
	})
}

// compute fetches bars and the company record, then materializes every
// requested window. The provider chain's synthetic terminal means only
// context cancellation can make this fail for a valid code.
func (a *Analyzer) compute(ctx context.Context, code string, windows []models.TimeWindow) (*models.AnalysisResult, error) {
	series, err := a.source.FetchBars(ctx, code, a.lookbackDays)
	if err != nil {
		return nil, err
	}

	company, err := a.source.FetchCompanyInfo(ctx, code)
	if err != nil {
		a.logger.Debug().Str("code", code).Err(err).Msg("company record unavailable")
		company = nil
	}

	result := &models.AnalysisResult{
		ID:          uuid.NewString(),
		Code:        code,
		Company:     company,
		Windows:     materializeWindows(series, windows, company),
		Risk:        indicators.Risk(series.Tail(models.WindowT180.TradingDays()), a.riskFreeRate),
		Source:      series.Source,
		GeneratedAt: a.now(),
	}
	if company != nil {
		result.Name = company.Name
	}
	return result, nil
}

// Ensure Analyzer implements AnalyzerService
var _ interfaces.AnalyzerService = (*Analyzer)(nil)
