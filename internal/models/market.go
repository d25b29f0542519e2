// Package models defines data structures for the ashare engine
package models

import (
	"fmt"
	"time"
)

// Confidence is a qualitative trust label attached to data based on the
// provider tier it came from.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// SourceTag identifies the provider that produced a piece of data.
// It travels with the data and is never dropped on merge or caching.
type SourceTag struct {
	Provider   string     `json:"provider"`
	Confidence Confidence `json:"confidence"`
}

// Bar represents a single trading day's price and volume data.
// Immutable once fetched.
type Bar struct {
	Date         time.Time `json:"date"`
	Open         float64   `json:"open"`
	High         float64   `json:"high"`
	Low          float64   `json:"low"`
	Close        float64   `json:"close"`
	Volume       int64     `json:"volume"`
	Amount       float64   `json:"amount"`                  // turnover amount (price x volume traded)
	TurnoverRate float64   `json:"turnover_rate,omitempty"` // percent of float shares traded; 0 = unknown
	BidVolume    int64     `json:"bid_volume,omitempty"`
	AskVolume    int64     `json:"ask_volume,omitempty"`
}

// BarSeries is an ordered sequence of bars for one stock, ascending by
// trading date with no duplicate dates. Window slicing produces views that
// share the backing array; the series is never mutated after creation.
type BarSeries struct {
	Code   string    `json:"code"`
	Bars   []Bar     `json:"bars"`
	Source SourceTag `json:"source"`
}

// Len returns the number of bars in the series.
func (s *BarSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Latest returns the most recent bar. Len must be > 0.
func (s *BarSeries) Latest() Bar {
	return s.Bars[len(s.Bars)-1]
}

// Tail returns a view of the trailing n bars (all bars when n exceeds the
// series length). The view shares backing storage with the series.
func (s *BarSeries) Tail(n int) []Bar {
	if n >= len(s.Bars) {
		return s.Bars
	}
	return s.Bars[len(s.Bars)-n:]
}

// Validate checks the structural invariants of a fetched series: non-empty,
// strictly ascending dates, and positive prices. Providers returning a
// series that fails validation are treated as failed.
func (s *BarSeries) Validate() error {
	if s == nil || len(s.Bars) == 0 {
		return fmt.Errorf("empty bar series")
	}
	for i, b := range s.Bars {
		if b.Close <= 0 || b.Open <= 0 || b.High <= 0 || b.Low <= 0 {
			return fmt.Errorf("non-positive price at %s", b.Date.Format("2006-01-02"))
		}
		if b.Low > b.High {
			return fmt.Errorf("low above high at %s", b.Date.Format("2006-01-02"))
		}
		if i > 0 && !s.Bars[i-1].Date.Before(b.Date) {
			return fmt.Errorf("dates not strictly ascending at %s", b.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// CompanyInfo is the static or slow-changing descriptive record for a stock.
// Valuation figures ride along when the provider supplies them.
type CompanyInfo struct {
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name,omitempty"`
	Industry        string    `json:"industry,omitempty"`
	Sector          string    `json:"sector,omitempty"`
	Market          string    `json:"market,omitempty"` // SSE or SZSE
	ListDate        string    `json:"list_date,omitempty"`
	EstablishedDate string    `json:"established_date,omitempty"`
	TotalShares     int64     `json:"total_shares,omitempty"`
	FloatShares     int64     `json:"float_shares,omitempty"`
	Chairman        string    `json:"chairman,omitempty"`
	Website         string    `json:"website,omitempty"`
	PE              *float64  `json:"pe,omitempty"`
	PB              *float64  `json:"pb,omitempty"`
	PS              *float64  `json:"ps,omitempty"`
	EPS             *float64  `json:"eps,omitempty"`
	BookValue       *float64  `json:"book_value,omitempty"`      // book value per share
	SalesPerShare   *float64  `json:"sales_per_share,omitempty"`
	Source          SourceTag `json:"source"`
	FetchedAt       time.Time `json:"fetched_at"`
}

// Constituent is one member security of an index.
type Constituent struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Weight   float64 `json:"weight,omitempty"` // percent weight in the index, 0 = unknown
	Industry string  `json:"industry,omitempty"`
	Market   string  `json:"market,omitempty"`
}

// IndexInfo describes a supported index from the static alias table.
type IndexInfo struct {
	Code        string `json:"code"` // canonical index code, e.g. "000300"
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Market      string `json:"market,omitempty"`
}
