// Package interfaces defines service contracts for the ashare engine
package interfaces

import (
	"context"

	"github.com/marketlens/ashare/internal/models"
)

// Provider is the capability interface implemented once per upstream market
// data source. Providers are stateless and safe for concurrent use; the
// chain calls them strictly in priority order.
type Provider interface {
	// Name identifies the provider in SourceTags and logs.
	Name() string

	// Confidence is the trust level attached to data this provider returns.
	Confidence() models.Confidence

	// FetchBars retrieves up to lookback trailing daily bars for a 6-digit
	// stock code, ascending by date.
	FetchBars(ctx context.Context, code string, lookback int) (*models.BarSeries, error)

	// FetchCompanyInfo retrieves the descriptive company record.
	// Returns models.ErrNotFound when the provider has no record.
	FetchCompanyInfo(ctx context.Context, code string) (*models.CompanyInfo, error)

	// FetchConstituents retrieves the member list for a canonical index
	// code. Returns models.ErrNotFound when the provider does not carry
	// constituent data.
	FetchConstituents(ctx context.Context, indexCode string) ([]models.Constituent, error)
}
