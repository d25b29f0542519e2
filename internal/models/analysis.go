package models

import "time"

// TimeWindow names a trailing trading-day slice of a bar series.
type TimeWindow string

const (
	WindowT0   TimeWindow = "T-0"
	WindowT3   TimeWindow = "T-3"
	WindowT7   TimeWindow = "T-7"
	WindowT30  TimeWindow = "T-30"
	WindowT90  TimeWindow = "T-90"
	WindowT180 TimeWindow = "T-180"
)

// AllWindows lists the supported windows from shortest to longest.
var AllWindows = []TimeWindow{WindowT0, WindowT3, WindowT7, WindowT30, WindowT90, WindowT180}

// windowDays maps a window to its trailing trading-day count. T-0 is the
// latest bar; the materializer extends its slice with lookback so rolling
// indicators stay defined.
var windowDays = map[TimeWindow]int{
	WindowT0:   1,
	WindowT3:   3,
	WindowT7:   7,
	WindowT30:  30,
	WindowT90:  90,
	WindowT180: 180,
}

// TradingDays returns the number of trailing trading days the window covers,
// or 0 for an unknown window.
func (w TimeWindow) TradingDays() int {
	return windowDays[w]
}

// Valid reports whether w is one of the supported windows.
func (w TimeWindow) Valid() bool {
	_, ok := windowDays[w]
	return ok
}

// IndicatorSet holds the indicator values for one (stock, window) pair.
// Pointer fields are nil when the indicator is undefined for the window —
// consumers must treat nil as "no value", never as zero.
type IndicatorSet struct {
	// Price
	Open      float64  `json:"open"`
	High      float64  `json:"high"`
	Low       float64  `json:"low"`
	Close     float64  `json:"close"`
	AvgPrice  *float64 `json:"avg_price,omitempty"` // amount/volume for the latest bar
	Change    *float64 `json:"change,omitempty"`
	ChangePct *float64 `json:"change_pct,omitempty"`
	Amplitude *float64 `json:"amplitude,omitempty"`
	MA5       *float64 `json:"ma5,omitempty"`
	MA10      *float64 `json:"ma10,omitempty"`
	MA20      *float64 `json:"ma20,omitempty"`
	MA60      *float64 `json:"ma60,omitempty"`
	EMA12     *float64 `json:"ema12,omitempty"`
	EMA26     *float64 `json:"ema26,omitempty"`

	// Volume
	Volume          int64    `json:"volume"`
	Amount          float64  `json:"amount"`
	VolumeRatio     *float64 `json:"volume_ratio,omitempty"`
	TurnoverRate    *float64 `json:"turnover_rate,omitempty"`
	BidAskImbalance *float64 `json:"bid_ask_imbalance,omitempty"`

	// Technical
	RSI14      *float64 `json:"rsi14,omitempty"`
	MACD       *float64 `json:"macd,omitempty"`
	MACDSignal *float64 `json:"macd_signal,omitempty"`
	MACDHist   *float64 `json:"macd_histogram,omitempty"`
	BollUpper  *float64 `json:"boll_upper,omitempty"`
	BollMiddle *float64 `json:"boll_middle,omitempty"`
	BollLower  *float64 `json:"boll_lower,omitempty"`
	StochK     *float64 `json:"stoch_k,omitempty"`
	StochD     *float64 `json:"stoch_d,omitempty"`
	ATR14      *float64 `json:"atr14,omitempty"`

	// Valuation
	PE             *float64 `json:"pe,omitempty"`
	PB             *float64 `json:"pb,omitempty"`
	PS             *float64 `json:"ps,omitempty"`
	MarketCap      *float64 `json:"market_cap,omitempty"`
	FloatMarketCap *float64 `json:"float_market_cap,omitempty"`
}

// WindowReport is the per-window analysis slice: the window bounds, the
// indicator set computed over it, and the price move across it.
type WindowReport struct {
	Window         TimeWindow   `json:"window"`
	StartDate      time.Time    `json:"start_date"`
	EndDate        time.Time    `json:"end_date"`
	DataPoints     int          `json:"data_points"`
	PriceChange    *float64     `json:"price_change,omitempty"`
	PriceChangePct *float64     `json:"price_change_pct,omitempty"`
	Indicators     IndicatorSet `json:"indicators"`
}

// RiskMetrics holds return-distribution statistics computed over the full
// requested history, annualized where applicable.
type RiskMetrics struct {
	Volatility   *float64 `json:"volatility,omitempty"`    // annualized stddev of daily returns
	AnnualReturn *float64 `json:"annual_return,omitempty"` // mean daily return x 252
	SharpeRatio  *float64 `json:"sharpe_ratio,omitempty"`
	MaxDrawdown  *float64 `json:"max_drawdown,omitempty"` // <= 0
	CalmarRatio  *float64 `json:"calmar_ratio,omitempty"`
	VaR95        *float64 `json:"var_95,omitempty"` // 5th percentile daily return
	Skewness     *float64 `json:"skewness,omitempty"`
	Kurtosis     *float64 `json:"kurtosis,omitempty"` // excess kurtosis
	WinRate      *float64 `json:"win_rate,omitempty"`
	TradingDays  int      `json:"trading_days"`
	PositiveDays int      `json:"positive_days"`
	NegativeDays int      `json:"negative_days"`
}

// AnalysisResult is the complete answer for one stock. Immutable after
// creation: a cache hit returns a shared reference, a refresh builds a new
// instance.
type AnalysisResult struct {
	ID          string                       `json:"id"`
	Code        string                       `json:"code"`
	Name        string                       `json:"name"`
	Company     *CompanyInfo                 `json:"company,omitempty"`
	Windows     map[TimeWindow]*WindowReport `json:"windows"`
	Risk        *RiskMetrics                 `json:"risk,omitempty"`
	Source      SourceTag                    `json:"source"`
	GeneratedAt time.Time                    `json:"generated_at"`
}

// BatchItem is one slot in a batch result, holding either a result or a
// per-item error marker. Slots keep the caller's input order.
type BatchItem struct {
	Code   string          `json:"code"`
	Result *AnalysisResult `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// AverageMetrics summarizes T-0 indicators and risk across the successful
// items of a batch or index analysis.
type AverageMetrics struct {
	ChangePct   *float64 `json:"avg_change_pct,omitempty"`
	VolumeRatio *float64 `json:"avg_volume_ratio,omitempty"`
	RSI14       *float64 `json:"avg_rsi14,omitempty"`
	PE          *float64 `json:"avg_pe,omitempty"`
	PB          *float64 `json:"avg_pb,omitempty"`
	Volatility  *float64 `json:"avg_volatility,omitempty"`
}

// BatchSummary counts outcomes across a batch.
type BatchSummary struct {
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Averages  *AverageMetrics `json:"averages,omitempty"`
}

// BatchResult aggregates a multi-stock analysis. Partial indicates the
// request deadline expired before every slot resolved.
type BatchResult struct {
	Items       []BatchItem  `json:"items"`
	Summary     BatchSummary `json:"summary"`
	Partial     bool         `json:"partial,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// ConstituentResult is one index member's slot in an index analysis.
type ConstituentResult struct {
	Constituent Constituent     `json:"constituent"`
	Result      *AnalysisResult `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// WeightStats summarizes constituent index weights.
type WeightStats struct {
	Top10WeightSum float64 `json:"top10_weight_sum"`
	AverageWeight  float64 `json:"average_weight"`
	MaxWeight      float64 `json:"max_weight"`
	MinWeight      float64 `json:"min_weight"`
}

// IndexAnalysisResult aggregates per-constituent analyses plus index-level
// distribution statistics computed over the successful slots only.
type IndexAnalysisResult struct {
	Index                IndexInfo           `json:"index"`
	ConstituentCount     int                 `json:"constituent_count"` // full index size before any limit
	Constituents         []ConstituentResult `json:"constituents"`
	IndustryDistribution map[string]int      `json:"industry_distribution,omitempty"`
	MarketDistribution   map[string]int      `json:"market_distribution,omitempty"`
	WeightStats          *WeightStats        `json:"weight_stats,omitempty"`
	Summary              BatchSummary        `json:"summary"`
	Partial              bool                `json:"partial,omitempty"`
	GeneratedAt          time.Time           `json:"generated_at"`
}

// CacheStatus reports cache occupancy for diagnostics.
type CacheStatus struct {
	Entries          int     `json:"entries"`
	Expired          int     `json:"expired"`
	OldestAgeSeconds float64 `json:"oldest_age_seconds"`
	NewestAgeSeconds float64 `json:"newest_age_seconds"`
}
