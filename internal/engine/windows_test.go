package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlens/ashare/internal/models"
)

func seriesOfLen(n int) *models.BarSeries {
	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		c := 10 + float64(i)*0.05
		bars[i] = models.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c * 0.998,
			High:   c * 1.012,
			Low:    c * 0.991,
			Close:  c,
			Volume: 1_000_000 + int64(i)*1000,
			Amount: c * 1_000_000,
		}
	}
	return &models.BarSeries{Code: "600519", Bars: bars, Source: models.SourceTag{Provider: "eastmoney", Confidence: models.ConfidenceHigh}}
}

func TestMaterializeWindowsCoversRequestedSet(t *testing.T) {
	series := seriesOfLen(250)
	reports := materializeWindows(series, models.AllWindows, nil)

	require.Len(t, reports, 6)
	for _, w := range models.AllWindows {
		require.Contains(t, reports, w)
		assert.Equal(t, w, reports[w].Window)
	}
}

func TestWindowT0CarriesLookback(t *testing.T) {
	series := seriesOfLen(250)
	report := materializeWindow(series, models.WindowT0, nil)

	// the window itself is one day
	assert.Equal(t, 1, report.DataPoints)
	assert.Equal(t, report.StartDate, report.EndDate)
	assert.Equal(t, series.Latest().Date, report.EndDate)

	// but rolling indicators are computed over trailing history
	assert.NotNil(t, report.Indicators.MA60)
	assert.NotNil(t, report.Indicators.EMA26)
	assert.NotNil(t, report.Indicators.RSI14)

	// and the price change is the latest day's move
	require.NotNil(t, report.PriceChangePct)
	latest := series.Latest().Close
	prev := series.Bars[series.Len()-2].Close
	assert.InDelta(t, (latest-prev)/prev*100, *report.PriceChangePct, 1e-9)
}

func TestShortWindowsLeaveLongIndicatorsNil(t *testing.T) {
	series := seriesOfLen(250)

	t30 := materializeWindow(series, models.WindowT30, nil)
	assert.Equal(t, 30, t30.DataPoints)
	assert.Nil(t, t30.Indicators.MA60, "MA60 needs 60 bars, window has 30")
	assert.NotNil(t, t30.Indicators.MA20)
	assert.NotNil(t, t30.Indicators.RSI14)

	t3 := materializeWindow(series, models.WindowT3, nil)
	assert.Equal(t, 3, t3.DataPoints)
	assert.Nil(t, t3.Indicators.MA5)
	assert.Nil(t, t3.Indicators.RSI14)
	assert.NotNil(t, t3.Indicators.ChangePct)
}

func TestWindowPriceChangeSpansSlice(t *testing.T) {
	series := seriesOfLen(250)
	report := materializeWindow(series, models.WindowT30, nil)

	slice := series.Tail(30)
	want := (slice[29].Close - slice[0].Close) / slice[0].Close * 100
	require.NotNil(t, report.PriceChangePct)
	assert.InDelta(t, want, *report.PriceChangePct, 1e-9)
	assert.Equal(t, slice[0].Date, report.StartDate)
	assert.Equal(t, slice[29].Date, report.EndDate)
}

func TestWindowShorterThanSeries(t *testing.T) {
	// 40 bars: T-90 and T-180 cover the whole series
	series := seriesOfLen(40)
	report := materializeWindow(series, models.WindowT180, nil)

	assert.Equal(t, 40, report.DataPoints)
	assert.Nil(t, report.Indicators.MA60)
	assert.NotNil(t, report.Indicators.MA20)
}

func TestValuationFieldsNeedCompanyRecord(t *testing.T) {
	series := seriesOfLen(100)

	t.Run("without company", func(t *testing.T) {
		report := materializeWindow(series, models.WindowT0, nil)
		assert.Nil(t, report.Indicators.PE)
		assert.Nil(t, report.Indicators.MarketCap)
	})

	t.Run("with company", func(t *testing.T) {
		pe := 28.5
		company := &models.CompanyInfo{
			Code:        "600519",
			PE:          &pe,
			TotalShares: 1_000_000_000,
			FloatShares: 700_000_000,
		}
		report := materializeWindow(series, models.WindowT0, company)

		require.NotNil(t, report.Indicators.PE)
		assert.Equal(t, 28.5, *report.Indicators.PE)
		require.NotNil(t, report.Indicators.MarketCap)
		assert.InDelta(t, series.Latest().Close*1e9, *report.Indicators.MarketCap, 1)
		require.NotNil(t, report.Indicators.FloatMarketCap)
		require.NotNil(t, report.Indicators.TurnoverRate)
	})
}
