package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyReturns(t *testing.T) {
	bars := barsFromCloses(10, 11, 9.9)
	returns := DailyReturns(bars)

	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
	assert.InDelta(t, -0.10, returns[1], 1e-9)

	assert.Nil(t, DailyReturns(bars[:1]))
}

func TestRiskUptrend(t *testing.T) {
	series := make([]float64, 180)
	for i := range series {
		series[i] = 10 * math.Pow(1.001, float64(i))
	}
	bars := barsFromCloses(series...)

	m := Risk(bars, 0.02)
	require.NotNil(t, m)

	assert.Equal(t, 180, m.TradingDays)
	assert.Equal(t, 179, m.PositiveDays)
	assert.Equal(t, 0, m.NegativeDays)

	require.NotNil(t, m.WinRate)
	assert.InDelta(t, 100, *m.WinRate, 1e-9)

	require.NotNil(t, m.AnnualReturn)
	assert.InDelta(t, 0.001*252, *m.AnnualReturn, 1e-6)

	// monotonic series never draws down
	require.NotNil(t, m.MaxDrawdown)
	assert.Equal(t, 0.0, *m.MaxDrawdown)
	assert.Nil(t, m.CalmarRatio)
}

func TestRiskMixedSeries(t *testing.T) {
	closes := []float64{10, 10.2, 9.8, 10.5, 10.1, 10.8, 10.3, 11.0,
		10.6, 11.2, 10.7, 11.4, 10.9, 11.6, 11.1, 11.8}
	bars := barsFromCloses(closes...)

	m := Risk(bars, 0.02)

	require.NotNil(t, m.MaxDrawdown)
	assert.LessOrEqual(t, *m.MaxDrawdown, 0.0)
	assert.Less(t, *m.MaxDrawdown, 0.0)

	require.NotNil(t, m.CalmarRatio)
	require.NotNil(t, m.Volatility)
	assert.Greater(t, *m.Volatility, 0.0)

	require.NotNil(t, m.SharpeRatio)

	returns := DailyReturns(bars)
	require.NotNil(t, m.VaR95)
	assert.LessOrEqual(t, *m.VaR95, mean(returns))

	require.NotNil(t, m.Skewness)
	require.NotNil(t, m.Kurtosis)
	require.NotNil(t, m.WinRate)

	assert.Equal(t, 8, m.PositiveDays)
	assert.Equal(t, 7, m.NegativeDays)
	assert.InDelta(t, 8.0/15*100, *m.WinRate, 1e-9)
}

func TestRiskInsufficientHistory(t *testing.T) {
	m := Risk(barsFromCloses(10), 0.02)

	assert.Equal(t, 1, m.TradingDays)
	assert.Nil(t, m.Volatility)
	assert.Nil(t, m.AnnualReturn)
	assert.Nil(t, m.SharpeRatio)
	assert.Nil(t, m.VaR95)
	assert.Nil(t, m.Skewness)
	assert.Nil(t, m.Kurtosis)
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   float64
	}{
		{"single peak and recovery", []float64{10, 12, 9, 11}, 9.0/12 - 1},
		{"flat", []float64{10, 10, 10}, 0},
		{"steady decline", []float64{10, 9, 8}, -0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := maxDrawdown(barsFromCloses(tt.closes...))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestQuantile(t *testing.T) {
	values := []float64{4, 1, 3, 2, 5}

	assert.InDelta(t, 1, quantile(values, 0), 1e-9)
	assert.InDelta(t, 3, quantile(values, 0.5), 1e-9)
	assert.InDelta(t, 5, quantile(values, 1), 1e-9)
	assert.InDelta(t, 1.2, quantile(values, 0.05), 1e-9)
}
