package interfaces

import (
	"context"
	"time"

	"github.com/marketlens/ashare/internal/models"
)

// AnalyzeOptions control a single or batch analysis request.
type AnalyzeOptions struct {
	// Windows restricts the computed time windows; empty = all six.
	Windows []models.TimeWindow

	// ForceRefresh bypasses an existing cache entry. The entry is replaced
	// atomically on success; the cache key itself never includes this flag.
	ForceRefresh bool

	// Deadline bounds the whole request. Zero = no deadline.
	Deadline time.Time
}

// IndexOptions control an index constituent analysis.
type IndexOptions struct {
	// ConstituentLimit caps how many constituents are analyzed, in index
	// order. 0 = engine default.
	ConstituentLimit int

	ForceRefresh bool
	Deadline     time.Time
}

// AnalyzerService is the engine surface consumed by the routing layer.
type AnalyzerService interface {
	// Analyze analyzes one or more stock codes. A single syntactically
	// valid code never fails: the synthetic fallback guarantees an answer.
	// More codes than the batch limit is rejected before any work starts.
	Analyze(ctx context.Context, codes []string, opts AnalyzeOptions) (*models.BatchResult, error)

	// AnalyzeIndex resolves an index alias and analyzes its constituents.
	AnalyzeIndex(ctx context.Context, alias string, opts IndexOptions) (*models.IndexAnalysisResult, error)

	// GetCompanyInfo retrieves the descriptive record for one code.
	GetCompanyInfo(ctx context.Context, code string) (*models.CompanyInfo, error)

	// CacheStatus reports cache occupancy without mutating it.
	CacheStatus() models.CacheStatus

	// CacheClear evicts all cached entries. Idempotent.
	CacheClear()
}
