package synthetic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlens/ashare/internal/models"
)

func fixedClock() time.Time {
	// a Wednesday
	return time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC)
}

func TestFetchBarsDeterministic(t *testing.T) {
	p := NewProvider(WithClock(fixedClock))

	first, err := p.FetchBars(context.Background(), "600519", 250)
	require.NoError(t, err)
	second, err := p.FetchBars(context.Background(), "600519", 250)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first.Bars, 250)
	require.NoError(t, first.Validate())
}

func TestFetchBarsDifferentCodesDiffer(t *testing.T) {
	p := NewProvider(WithClock(fixedClock))

	a, err := p.FetchBars(context.Background(), "600519", 30)
	require.NoError(t, err)
	b, err := p.FetchBars(context.Background(), "000001", 30)
	require.NoError(t, err)

	assert.NotEqual(t, a.Bars[len(a.Bars)-1].Close, b.Bars[len(b.Bars)-1].Close)
}

func TestFetchBarsWeekdaysOnly(t *testing.T) {
	p := NewProvider(WithClock(fixedClock))

	series, err := p.FetchBars(context.Background(), "000001", 30)
	require.NoError(t, err)

	for _, bar := range series.Bars {
		wd := bar.Date.Weekday()
		assert.NotEqual(t, time.Saturday, wd)
		assert.NotEqual(t, time.Sunday, wd)
	}
	assert.Equal(t, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), series.Bars[len(series.Bars)-1].Date)
}

func TestFetchBarsEndsOnPriorWeekday(t *testing.T) {
	// a Sunday clock lands on the preceding Friday
	sunday := func() time.Time { return time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC) }
	p := NewProvider(WithClock(sunday))

	series, err := p.FetchBars(context.Background(), "000001", 5)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), series.Bars[len(series.Bars)-1].Date)
}

func TestFetchBarsSourceTag(t *testing.T) {
	p := NewProvider(WithClock(fixedClock))

	series, err := p.FetchBars(context.Background(), "600519", 10)
	require.NoError(t, err)

	assert.Equal(t, "synthetic", series.Source.Provider)
	assert.Equal(t, models.ConfidenceLow, series.Source.Confidence)
}

func TestFetchBarsMovesBounded(t *testing.T) {
	p := NewProvider(WithClock(fixedClock))

	series, err := p.FetchBars(context.Background(), "000858", 100)
	require.NoError(t, err)

	for i := 1; i < len(series.Bars); i++ {
		prev := series.Bars[i-1].Close
		change := (series.Bars[i].Close - prev) / prev
		assert.LessOrEqual(t, change, 0.021)
		assert.GreaterOrEqual(t, change, -0.021)
	}
}

func TestFetchBarsCarriesDepth(t *testing.T) {
	p := NewProvider(WithClock(fixedClock))

	series, err := p.FetchBars(context.Background(), "600519", 30)
	require.NoError(t, err)

	for _, bar := range series.Bars {
		assert.Positive(t, bar.BidVolume)
		assert.Positive(t, bar.AskVolume)
		assert.Equal(t, bar.Volume, bar.BidVolume+bar.AskVolume)
	}
}

func TestFetchCompanyInfo(t *testing.T) {
	p := NewProvider(WithClock(fixedClock))

	t.Run("known preset", func(t *testing.T) {
		info, err := p.FetchCompanyInfo(context.Background(), "600519")
		require.NoError(t, err)
		assert.Equal(t, "贵州茅台", info.Name)
		assert.Equal(t, "SSE", info.Market)
		assert.Equal(t, "synthetic", info.Source.Provider)
		require.NotNil(t, info.PE)
	})

	t.Run("unknown code gets a stub", func(t *testing.T) {
		info, err := p.FetchCompanyInfo(context.Background(), "300999")
		require.NoError(t, err)
		assert.Equal(t, "股票300999", info.Name)
		assert.Equal(t, "SZSE", info.Market)
	})

	t.Run("deterministic valuation", func(t *testing.T) {
		a, err := p.FetchCompanyInfo(context.Background(), "000001")
		require.NoError(t, err)
		b, err := p.FetchCompanyInfo(context.Background(), "000001")
		require.NoError(t, err)
		assert.Equal(t, *a.PE, *b.PE)
	})
}

func TestFetchConstituents(t *testing.T) {
	p := NewProvider()

	rows, err := p.FetchConstituents(context.Background(), "000300")
	require.NoError(t, err)
	assert.Len(t, rows, 10)
	assert.Equal(t, "600519", rows[0].Code)
	assert.Equal(t, "SSE", rows[0].Market)

	_, err = p.FetchConstituents(context.Background(), "999999")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCancelledContext(t *testing.T) {
	p := NewProvider(WithClock(fixedClock))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.FetchBars(ctx, "600519", 10)
	assert.ErrorIs(t, err, context.Canceled)
}
