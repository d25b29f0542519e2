// Package synthetic provides the terminal fallback data source. It
// generates a deterministic bar series from the stock code alone, so the
// pipeline always has something to compute over when every live feed is
// down. Results carry low confidence and are never mistaken for quotes.
package synthetic

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"github.com/marketlens/ashare/internal/interfaces"
	"github.com/marketlens/ashare/internal/models"
)

// Provider generates deterministic market data keyed by stock code.
type Provider struct {
	now func() time.Time
}

// Option configures the provider
type Option func(*Provider)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		p.now = now
	}
}

// NewProvider creates a synthetic provider
func NewProvider(opts ...Option) *Provider {
	p := &Provider{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements interfaces.Provider
func (p *Provider) Name() string { return "synthetic" }

// Confidence implements interfaces.Provider
func (p *Provider) Confidence() models.Confidence { return models.ConfidenceLow }

// FetchBars generates lookbackDays of daily bars ending on the most
// recent weekday. The same code always yields the same price path.
func (p *Provider) FetchBars(ctx context.Context, code string, lookbackDays int) (*models.BarSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seed, _ := strconv.ParseInt(code, 10, 64)
	rng := rand.New(rand.NewSource(seed))

	dates := tradingDates(p.now(), lookbackDays)
	basePrice := 10 + float64(seed%90)

	bars := make([]models.Bar, 0, len(dates))
	prevClose := basePrice
	for _, date := range dates {
		change := (rng.Float64() - 0.5) * 0.04 // within ±2%
		open := prevClose * (1 + (rng.Float64()-0.5)*0.01)
		close := prevClose * (1 + change)

		high := open
		if close > high {
			high = close
		}
		high *= 1 + rng.Float64()*0.01
		low := open
		if close < low {
			low = close
		}
		low *= 1 - rng.Float64()*0.01

		volume := int64(1_000_000 + rng.Intn(9_000_000))
		bid := int64(float64(volume) * (0.35 + rng.Float64()*0.3))
		bars = append(bars, models.Bar{
			Date:         date,
			Open:         open,
			High:         high,
			Low:          low,
			Close:        close,
			Volume:       volume,
			Amount:       (high + low) / 2 * float64(volume),
			TurnoverRate: 0.5 + rng.Float64()*2,
			BidVolume:    bid,
			AskVolume:    volume - bid,
		})
		prevClose = close
	}

	return &models.BarSeries{
		Code: code,
		Bars: bars,
		Source: models.SourceTag{
			Provider:   p.Name(),
			Confidence: p.Confidence(),
		},
	}, nil
}

// tradingDates returns n weekdays ending on the most recent weekday at
// or before now, oldest first, truncated to midnight UTC.
func tradingDates(now time.Time, n int) []time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := n - 1; i >= 0; i-- {
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, -1)
		}
		out[i] = day
		day = day.AddDate(0, 0, -1)
	}
	return out
}

// knownCompanies carries profiles for a few widely traded names so
// offline runs still look familiar.
var knownCompanies = map[string]models.CompanyInfo{
	"000001": {Code: "000001", Name: "平安银行", FullName: "平安银行股份有限公司", Industry: "银行", Market: "SZSE"},
	"600519": {Code: "600519", Name: "贵州茅台", FullName: "贵州茅台酒股份有限公司", Industry: "白酒", Market: "SSE"},
	"000858": {Code: "000858", Name: "五粮液", FullName: "宜宾五粮液股份有限公司", Industry: "白酒", Market: "SZSE"},
}

// FetchCompanyInfo returns a preset profile when one exists, otherwise a
// minimal deterministic stub named after the code.
func (p *Provider) FetchCompanyInfo(ctx context.Context, code string) (*models.CompanyInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, ok := knownCompanies[code]
	if !ok {
		info = models.CompanyInfo{
			Code:     code,
			Name:     "股票" + code,
			Industry: "未知",
			Market:   models.MarketForCode(code),
		}
	}

	seed, _ := strconv.ParseInt(code, 10, 64)
	rng := rand.New(rand.NewSource(seed))
	pe := 8 + rng.Float64()*40
	pb := 0.8 + rng.Float64()*8
	info.PE = &pe
	info.PB = &pb
	info.TotalShares = 1_000_000_000 + seed%9_000_000_000
	info.FloatShares = info.TotalShares * 7 / 10

	info.FetchedAt = p.now()
	info.Source = models.SourceTag{
		Provider:   p.Name(),
		Confidence: p.Confidence(),
	}
	return &info, nil
}

// fallbackConstituents carries the heavyweight names of each supported
// index so constituent analysis still works offline. Weights reflect
// rough index proportions, not live values.
var fallbackConstituents = map[string][]models.Constituent{
	"000300": {
		{Code: "600519", Name: "贵州茅台", Weight: 4.5, Industry: "白酒"},
		{Code: "300750", Name: "宁德时代", Weight: 3.2, Industry: "电池"},
		{Code: "601318", Name: "中国平安", Weight: 2.8, Industry: "保险"},
		{Code: "600036", Name: "招商银行", Weight: 2.4, Industry: "银行"},
		{Code: "000858", Name: "五粮液", Weight: 1.8, Industry: "白酒"},
		{Code: "601012", Name: "隆基绿能", Weight: 1.5, Industry: "光伏设备"},
		{Code: "600900", Name: "长江电力", Weight: 1.4, Industry: "电力"},
		{Code: "000333", Name: "美的集团", Weight: 1.3, Industry: "家电"},
		{Code: "002594", Name: "比亚迪", Weight: 1.2, Industry: "汽车"},
		{Code: "600276", Name: "恒瑞医药", Weight: 1.1, Industry: "医药"},
	},
	"000905": {
		{Code: "002475", Name: "立讯精密", Weight: 1.1, Industry: "电子"},
		{Code: "002304", Name: "洋河股份", Weight: 0.9, Industry: "白酒"},
		{Code: "600183", Name: "生益科技", Weight: 0.8, Industry: "电子"},
		{Code: "002241", Name: "歌尔股份", Weight: 0.8, Industry: "电子"},
		{Code: "600584", Name: "长电科技", Weight: 0.7, Industry: "半导体"},
		{Code: "000625", Name: "长安汽车", Weight: 0.7, Industry: "汽车"},
		{Code: "600309", Name: "万华化学", Weight: 0.6, Industry: "化工"},
		{Code: "002371", Name: "北方华创", Weight: 0.6, Industry: "半导体"},
		{Code: "600332", Name: "白云山", Weight: 0.5, Industry: "医药"},
		{Code: "000063", Name: "中兴通讯", Weight: 0.5, Industry: "通信"},
	},
	"000903": {
		{Code: "600519", Name: "贵州茅台", Weight: 6.1, Industry: "白酒"},
		{Code: "601318", Name: "中国平安", Weight: 4.2, Industry: "保险"},
		{Code: "600036", Name: "招商银行", Weight: 3.6, Industry: "银行"},
		{Code: "300750", Name: "宁德时代", Weight: 3.4, Industry: "电池"},
		{Code: "601398", Name: "工商银行", Weight: 2.5, Industry: "银行"},
		{Code: "600900", Name: "长江电力", Weight: 2.2, Industry: "电力"},
		{Code: "601012", Name: "隆基绿能", Weight: 1.9, Industry: "光伏设备"},
		{Code: "000333", Name: "美的集团", Weight: 1.8, Industry: "家电"},
		{Code: "600030", Name: "中信证券", Weight: 1.6, Industry: "证券"},
		{Code: "601888", Name: "中国中免", Weight: 1.5, Industry: "旅游零售"},
	},
	"000904": {
		{Code: "002594", Name: "比亚迪", Weight: 2.3, Industry: "汽车"},
		{Code: "600276", Name: "恒瑞医药", Weight: 1.9, Industry: "医药"},
		{Code: "002475", Name: "立讯精密", Weight: 1.7, Industry: "电子"},
		{Code: "600887", Name: "伊利股份", Weight: 1.5, Industry: "食品饮料"},
		{Code: "601899", Name: "紫金矿业", Weight: 1.4, Industry: "有色金属"},
		{Code: "600309", Name: "万华化学", Weight: 1.3, Industry: "化工"},
		{Code: "000725", Name: "京东方A", Weight: 1.2, Industry: "电子"},
		{Code: "600031", Name: "三一重工", Weight: 1.1, Industry: "机械"},
		{Code: "002415", Name: "海康威视", Weight: 1.0, Industry: "电子"},
		{Code: "601766", Name: "中国中车", Weight: 0.9, Industry: "机械"},
	},
}

// FetchConstituents returns the static fallback constituent table for a
// supported index.
func (p *Provider) FetchConstituents(ctx context.Context, indexCode string) ([]models.Constituent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, ok := fallbackConstituents[indexCode]
	if !ok {
		return nil, models.ErrNotFound
	}

	out := make([]models.Constituent, len(rows))
	copy(out, rows)
	for i := range out {
		out[i].Market = models.MarketForCode(out[i].Code)
	}
	return out, nil
}

// Ensure Provider implements Provider
var _ interfaces.Provider = (*Provider)(nil)
