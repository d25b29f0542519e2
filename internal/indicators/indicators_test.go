package indicators

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/marketlens/ashare/internal/models"
)

// barsFromCloses builds an ascending daily series where each bar's high
// and low straddle the close by 1%.
func barsFromCloses(closes ...float64) []models.Bar {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c * 0.995,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1_000_000,
			Amount: c * 1_000_000,
		}
	}
	return bars
}

func almostEqual(t *testing.T, want float64, got *float64, tol float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("expected %v, got nil", want)
	}
	if math.Abs(*got-want) > tol {
		t.Fatalf("expected %v, got %v", want, *got)
	}
}

func TestSMA(t *testing.T) {
	bars := barsFromCloses(1, 2, 3, 4, 5)

	almostEqual(t, 4, SMA(bars, 3), 1e-9)
	almostEqual(t, 3, SMA(bars, 5), 1e-9)

	if got := SMA(bars, 6); got != nil {
		t.Errorf("expected nil for insufficient history, got %v", *got)
	}
	if got := SMA(nil, 3); got != nil {
		t.Errorf("expected nil for empty series, got %v", *got)
	}
}

func TestInsufficientHistoryReturnsNil(t *testing.T) {
	tests := []struct {
		name string
		bars []models.Bar
		calc func([]models.Bar) *float64
	}{
		{"ma60 with 59 bars", make([]models.Bar, 0), func(b []models.Bar) *float64 { return SMA(b, 60) }},
		{"ema26 with 25 bars", nil, func(b []models.Bar) *float64 { return EMA(b, 26) }},
		{"rsi14 with 14 bars", nil, func(b []models.Bar) *float64 { return RSI(b, 14) }},
		{"atr14 with 14 bars", nil, func(b []models.Bar) *float64 { return ATR(b, 14) }},
	}

	series := make([]float64, 59)
	for i := range series {
		series[i] = 10 + float64(i)*0.1
	}
	tests[0].bars = barsFromCloses(series...)
	tests[1].bars = barsFromCloses(series[:25]...)
	tests[2].bars = barsFromCloses(series[:14]...)
	tests[3].bars = barsFromCloses(series[:14]...)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.calc(tt.bars); got != nil {
				t.Errorf("expected nil, got %v", *got)
			}
		})
	}

	// one more bar makes each defined
	full := barsFromCloses(append(series, 16.0)...)
	if SMA(full, 60) == nil {
		t.Error("expected MA60 with 60 bars")
	}
	if RSI(full[:15], 14) == nil {
		t.Error("expected RSI14 with 15 bars")
	}
	if ATR(full[:15], 14) == nil {
		t.Error("expected ATR14 with 15 bars")
	}
}

func TestEMAConvergesToConstant(t *testing.T) {
	series := make([]float64, 40)
	for i := range series {
		series[i] = 25
	}
	almostEqual(t, 25, EMA(barsFromCloses(series...), 12), 1e-9)
}

func TestRSI(t *testing.T) {
	t.Run("all gains saturates at 100", func(t *testing.T) {
		series := make([]float64, 20)
		for i := range series {
			series[i] = 10 + float64(i)
		}
		almostEqual(t, 100, RSI(barsFromCloses(series...), 14), 1e-9)
	})

	t.Run("bounded between 0 and 100", func(t *testing.T) {
		closes := []float64{10, 10.4, 10.1, 10.6, 10.3, 10.9, 10.5, 11.1,
			10.8, 11.3, 11.0, 11.5, 11.2, 11.7, 11.4, 11.9}
		rsi := RSI(barsFromCloses(closes...), 14)
		if rsi == nil {
			t.Fatal("expected RSI value")
		}
		if *rsi < 0 || *rsi > 100 {
			t.Errorf("RSI out of range: %v", *rsi)
		}
	})
}

func TestMACD(t *testing.T) {
	series := make([]float64, 60)
	for i := range series {
		series[i] = 20 + math.Sin(float64(i)/5)
	}
	bars := barsFromCloses(series...)

	macd, signal, hist := MACD(bars, 12, 26, 9)
	if macd == nil || signal == nil || hist == nil {
		t.Fatal("expected full MACD triple with 60 bars")
	}
	almostEqual(t, *macd-*signal, hist, 1e-12)

	t.Run("line defined before signal", func(t *testing.T) {
		macd, signal, hist := MACD(bars[:30], 12, 26, 9)
		if macd == nil {
			t.Error("expected MACD line with 30 bars")
		}
		if signal != nil || hist != nil {
			t.Error("expected nil signal and histogram with 30 bars")
		}
	})

	t.Run("nil below slow period", func(t *testing.T) {
		macd, _, _ := MACD(bars[:25], 12, 26, 9)
		if macd != nil {
			t.Errorf("expected nil MACD, got %v", *macd)
		}
	})
}

func TestBollinger(t *testing.T) {
	series := make([]float64, 20)
	for i := range series {
		if i%2 == 0 {
			series[i] = 9
		} else {
			series[i] = 11
		}
	}
	upper, middle, lower := Bollinger(barsFromCloses(series...), 20, 2)

	almostEqual(t, 10, middle, 1e-9)
	if upper == nil || lower == nil {
		t.Fatal("expected bands")
	}
	if *upper <= *middle || *lower >= *middle {
		t.Errorf("bands not ordered: upper=%v middle=%v lower=%v", *upper, *middle, *lower)
	}
	if math.Abs((*upper-*middle)-(*middle-*lower)) > 1e-9 {
		t.Error("bands not symmetric around middle")
	}
}

func TestStochastic(t *testing.T) {
	series := make([]float64, 20)
	for i := range series {
		series[i] = 10 + float64(i)*0.5
	}
	k, d := Stochastic(barsFromCloses(series...), 14, 3)
	if k == nil || d == nil {
		t.Fatal("expected %K and %D")
	}
	if *k < 0 || *k > 100 || *d < 0 || *d > 100 {
		t.Errorf("oscillator out of range: k=%v d=%v", *k, *d)
	}
	// steady uptrend closes near the top of the range
	if *k < 80 {
		t.Errorf("expected %%K above 80 in an uptrend, got %v", *k)
	}
}

func TestChangePct(t *testing.T) {
	bars := barsFromCloses(14.90, 15.23)
	almostEqual(t, 2.2148, ChangePct(bars), 0.0001)
	almostEqual(t, 0.33, Change(bars), 1e-9)

	if ChangePct(bars[1:]) != nil {
		t.Error("expected nil with a single bar")
	}
}

func TestAmplitude(t *testing.T) {
	bars := []models.Bar{
		{Date: time.Now().AddDate(0, 0, -1), Close: 10},
		{Date: time.Now(), High: 10.5, Low: 9.9, Close: 10.2},
	}
	almostEqual(t, 6.0, Amplitude(bars), 1e-9)
}

func TestVolumeRatio(t *testing.T) {
	bars := barsFromCloses(10, 10, 10, 10, 10, 10)
	for i := 0; i < 5; i++ {
		bars[i].Volume = 1_000_000
	}
	bars[5].Volume = 2_500_000

	almostEqual(t, 2.5, VolumeRatio(bars, 5), 1e-9)

	if VolumeRatio(bars[:5], 5) != nil {
		t.Error("expected nil without a full trailing window")
	}
}

func TestAvgPrice(t *testing.T) {
	bar := models.Bar{Volume: 2_000_000, Amount: 25_000_000}
	almostEqual(t, 12.5, AvgPrice(bar), 1e-9)

	if AvgPrice(models.Bar{Close: 10}) != nil {
		t.Error("expected nil without volume and amount")
	}
}

func TestBidAskImbalance(t *testing.T) {
	almostEqual(t, 0.5, BidAskImbalance(models.Bar{BidVolume: 750, AskVolume: 250}), 1e-9)
	if BidAskImbalance(models.Bar{}) != nil {
		t.Error("expected nil without depth figures")
	}
}

func TestTurnoverRate(t *testing.T) {
	t.Run("provider value wins", func(t *testing.T) {
		almostEqual(t, 1.8, TurnoverRate(models.Bar{TurnoverRate: 1.8, Volume: 100}, 1000), 1e-9)
	})
	t.Run("derived from float shares", func(t *testing.T) {
		almostEqual(t, 5, TurnoverRate(models.Bar{Volume: 50}, 1000), 1e-9)
	})
	t.Run("nil without either", func(t *testing.T) {
		if TurnoverRate(models.Bar{Volume: 50}, 0) != nil {
			t.Error("expected nil")
		}
	})
}

func ExampleChangePct() {
	bars := barsFromCloses(14.90, 15.23)
	fmt.Printf("%.4f%%\n", *ChangePct(bars))
	// Output: 2.2148%
}
