// Package indicators provides pure technical indicator calculations over
// daily bar series. All functions operate on bars sorted ascending by date
// and perform no I/O.
//
// Indicators that need more history than the slice carries return nil,
// never zero: nil means "undefined for this window".
package indicators

import (
	"math"

	"github.com/marketlens/ashare/internal/models"
)

func fptr(v float64) *float64 { return &v }

// SMA calculates the simple moving average of the last period closes.
func SMA(bars []models.Bar, period int) *float64 {
	if period <= 0 || len(bars) < period {
		return nil
	}

	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		sum += bars[i].Close
	}
	return fptr(sum / float64(period))
}

// EMA calculates the exponential moving average with smoothing 2/(period+1),
// seeded from the first bar's close and folded across the whole slice.
func EMA(bars []models.Bar, period int) *float64 {
	if period <= 0 || len(bars) < period {
		return nil
	}

	series := emaSeries(closes(bars), period)
	return fptr(series[len(series)-1])
}

// emaSeries folds an EMA over values, seeded from the first element.
func emaSeries(values []float64, period int) []float64 {
	multiplier := 2.0 / float64(period+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*multiplier + out[i-1]
	}
	return out
}

func closes(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// RSI calculates the Relative Strength Index using Wilder smoothing of
// average gains and losses. Requires period+1 bars.
func RSI(bars []models.Bar, period int) *float64 {
	if period <= 0 || len(bars) < period+1 {
		return nil
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := bars[i].Close - bars[i-1].Close
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder smoothing over the remainder of the slice
	for i := period + 1; i < len(bars); i++ {
		change := bars[i].Close - bars[i-1].Close
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return fptr(100)
	}
	rs := avgGain / avgLoss
	return fptr(100 - (100 / (1 + rs)))
}

// MACD calculates Moving Average Convergence Divergence: the fast/slow EMA
// difference, a signal EMA of that line, and the histogram. The MACD line
// requires slowPeriod bars; the signal additionally requires signalPeriod-1
// more so its own EMA has a full window.
func MACD(bars []models.Bar, fastPeriod, slowPeriod, signalPeriod int) (macd, signal, histogram *float64) {
	if len(bars) < slowPeriod {
		return nil, nil, nil
	}

	cl := closes(bars)
	fast := emaSeries(cl, fastPeriod)
	slow := emaSeries(cl, slowPeriod)

	line := make([]float64, len(cl))
	for i := range cl {
		line[i] = fast[i] - slow[i]
	}
	macd = fptr(line[len(line)-1])

	if len(bars) < slowPeriod+signalPeriod-1 {
		return macd, nil, nil
	}
	sig := emaSeries(line, signalPeriod)
	signal = fptr(sig[len(sig)-1])
	histogram = fptr(*macd - *signal)
	return macd, signal, histogram
}

// Bollinger calculates Bollinger Bands: a period-SMA middle band with upper
// and lower bands numStd sample standard deviations away.
func Bollinger(bars []models.Bar, period int, numStd float64) (upper, middle, lower *float64) {
	mid := SMA(bars, period)
	if mid == nil || period < 2 {
		return nil, nil, nil
	}

	var sumSq float64
	for i := len(bars) - period; i < len(bars); i++ {
		d := bars[i].Close - *mid
		sumSq += d * d
	}
	std := math.Sqrt(sumSq / float64(period-1))

	return fptr(*mid + numStd*std), mid, fptr(*mid - numStd*std)
}

// Stochastic calculates the stochastic oscillator %K and %D over a
// kPeriod high/low range, with %D the dPeriod-SMA of %K.
func Stochastic(bars []models.Bar, kPeriod, dPeriod int) (k, d *float64) {
	kSeries := stochKSeries(bars, kPeriod)
	if len(kSeries) == 0 {
		return nil, nil
	}
	k = fptr(kSeries[len(kSeries)-1])

	if len(kSeries) < dPeriod {
		return k, nil
	}
	sum := 0.0
	for i := len(kSeries) - dPeriod; i < len(kSeries); i++ {
		sum += kSeries[i]
	}
	return k, fptr(sum / float64(dPeriod))
}

// stochKSeries computes %K for every bar with a full kPeriod of history.
func stochKSeries(bars []models.Bar, kPeriod int) []float64 {
	if kPeriod <= 0 || len(bars) < kPeriod {
		return nil
	}

	out := make([]float64, 0, len(bars)-kPeriod+1)
	for i := kPeriod - 1; i < len(bars); i++ {
		lowest, highest := bars[i-kPeriod+1].Low, bars[i-kPeriod+1].High
		for j := i - kPeriod + 2; j <= i; j++ {
			if bars[j].Low < lowest {
				lowest = bars[j].Low
			}
			if bars[j].High > highest {
				highest = bars[j].High
			}
		}
		if highest == lowest {
			out = append(out, 50)
			continue
		}
		out = append(out, 100*(bars[i].Close-lowest)/(highest-lowest))
	}
	return out
}

// ATR calculates the Average True Range with Wilder smoothing.
// Requires period+1 bars so every true range has a previous close.
func ATR(bars []models.Bar, period int) *float64 {
	if period <= 0 || len(bars) < period+1 {
		return nil
	}

	trueRange := func(i int) float64 {
		high, low, prevClose := bars[i].High, bars[i].Low, bars[i-1].Close
		tr := high - low
		if v := math.Abs(high - prevClose); v > tr {
			tr = v
		}
		if v := math.Abs(low - prevClose); v > tr {
			tr = v
		}
		return tr
	}

	atr := 0.0
	for i := 1; i <= period; i++ {
		atr += trueRange(i)
	}
	atr /= float64(period)

	for i := period + 1; i < len(bars); i++ {
		atr = (atr*float64(period-1) + trueRange(i)) / float64(period)
	}
	return fptr(atr)
}

// Change returns the latest close minus the previous close.
func Change(bars []models.Bar) *float64 {
	if len(bars) < 2 {
		return nil
	}
	return fptr(bars[len(bars)-1].Close - bars[len(bars)-2].Close)
}

// ChangePct returns the percent change of the latest close over the
// previous close.
func ChangePct(bars []models.Bar) *float64 {
	if len(bars) < 2 {
		return nil
	}
	prev := bars[len(bars)-2].Close
	if prev == 0 {
		return nil
	}
	return fptr((bars[len(bars)-1].Close - prev) / prev * 100)
}

// Amplitude returns the latest bar's high-low range as a percent of the
// previous close.
func Amplitude(bars []models.Bar) *float64 {
	if len(bars) < 2 {
		return nil
	}
	prev := bars[len(bars)-2].Close
	if prev == 0 {
		return nil
	}
	latest := bars[len(bars)-1]
	return fptr((latest.High - latest.Low) / prev * 100)
}

// AvgPrice returns the volume-weighted average price of the latest bar,
// derived from turnover amount over volume.
func AvgPrice(bar models.Bar) *float64 {
	if bar.Volume <= 0 || bar.Amount <= 0 {
		return nil
	}
	return fptr(bar.Amount / float64(bar.Volume))
}

// VolumeRatio returns the latest bar's volume relative to the average
// volume of the period bars before it.
func VolumeRatio(bars []models.Bar, period int) *float64 {
	if period <= 0 || len(bars) < period+1 {
		return nil
	}

	var sum int64
	for i := len(bars) - period - 1; i < len(bars)-1; i++ {
		sum += bars[i].Volume
	}
	avg := float64(sum) / float64(period)
	if avg == 0 {
		return nil
	}
	return fptr(float64(bars[len(bars)-1].Volume) / avg)
}

// BidAskImbalance returns (bid-ask)/(bid+ask) volume for the latest bar,
// nil when the provider supplied no depth figures.
func BidAskImbalance(bar models.Bar) *float64 {
	total := bar.BidVolume + bar.AskVolume
	if total == 0 {
		return nil
	}
	return fptr(float64(bar.BidVolume-bar.AskVolume) / float64(total))
}

// TurnoverRate returns the latest bar's volume as a percent of float
// shares. The provider-supplied rate wins when present.
func TurnoverRate(bar models.Bar, floatShares int64) *float64 {
	if bar.TurnoverRate > 0 {
		return fptr(bar.TurnoverRate)
	}
	if floatShares <= 0 || bar.Volume <= 0 {
		return nil
	}
	return fptr(float64(bar.Volume) / float64(floatShares) * 100)
}
