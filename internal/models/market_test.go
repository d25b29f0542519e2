package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSeries(n int) *BarSeries {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	bars := make([]Bar, n)
	for i := range bars {
		c := 10 + float64(i)
		bars[i] = Bar{Date: start.AddDate(0, 0, i), Open: c, High: c + 0.5, Low: c - 0.5, Close: c, Volume: 100}
	}
	return &BarSeries{Code: "600519", Bars: bars}
}

func TestBarSeriesValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, makeSeries(5).Validate())
	})

	t.Run("empty", func(t *testing.T) {
		s := &BarSeries{Code: "600519"}
		assert.Error(t, s.Validate())

		var nilSeries *BarSeries
		assert.Error(t, nilSeries.Validate())
	})

	t.Run("non-positive price", func(t *testing.T) {
		s := makeSeries(5)
		s.Bars[2].Close = 0
		assert.Error(t, s.Validate())

		s = makeSeries(5)
		s.Bars[2].Low = -1
		assert.Error(t, s.Validate())
	})

	t.Run("low above high", func(t *testing.T) {
		s := makeSeries(5)
		s.Bars[1].Low = s.Bars[1].High + 1
		assert.Error(t, s.Validate())
	})

	t.Run("duplicate date", func(t *testing.T) {
		s := makeSeries(5)
		s.Bars[3].Date = s.Bars[2].Date
		assert.Error(t, s.Validate())
	})

	t.Run("descending dates", func(t *testing.T) {
		s := makeSeries(5)
		s.Bars[0].Date = s.Bars[4].Date.AddDate(0, 0, 1)
		assert.Error(t, s.Validate())
	})
}

func TestBarSeriesTail(t *testing.T) {
	s := makeSeries(10)

	tail := s.Tail(3)
	require.Len(t, tail, 3)
	assert.Equal(t, s.Bars[7].Date, tail[0].Date)

	assert.Len(t, s.Tail(10), 10)
	assert.Len(t, s.Tail(50), 10, "oversized tail returns whole series")

	// views share backing storage with the series
	assert.Equal(t, &s.Bars[7], &tail[0])
}

func TestBarSeriesLatest(t *testing.T) {
	s := makeSeries(4)
	assert.Equal(t, s.Bars[3], s.Latest())
	assert.Equal(t, 4, s.Len())

	var empty *BarSeries
	assert.Equal(t, 0, empty.Len())
}
