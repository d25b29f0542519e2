package indicators

import (
	"math"
	"sort"

	"github.com/marketlens/ashare/internal/models"
)

const tradingDaysPerYear = 252

// DailyReturns computes close-to-close percentage returns (as fractions)
// over an ascending bar series.
func DailyReturns(bars []models.Bar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	out := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		out = append(out, (bars[i].Close-prev)/prev)
	}
	return out
}

// Risk computes the long-window risk profile for an ascending bar series.
// riskFreeRate is annualized, e.g. 0.02 for 2%. Metrics that cannot be
// derived from the available history stay nil.
func Risk(bars []models.Bar, riskFreeRate float64) *models.RiskMetrics {
	m := &models.RiskMetrics{TradingDays: len(bars)}

	returns := DailyReturns(bars)
	if len(returns) == 0 {
		return m
	}

	for _, r := range returns {
		if r > 0 {
			m.PositiveDays++
		} else if r < 0 {
			m.NegativeDays++
		}
	}
	m.WinRate = fptr(float64(m.PositiveDays) / float64(len(returns)) * 100)

	meanRet := mean(returns)
	m.AnnualReturn = fptr(meanRet * tradingDaysPerYear)

	if sd := sampleStdDev(returns, meanRet); sd != nil {
		vol := *sd * math.Sqrt(tradingDaysPerYear)
		m.Volatility = fptr(vol)
		if vol > 0 {
			m.SharpeRatio = fptr((*m.AnnualReturn - riskFreeRate) / vol)
		}
	}

	dd := maxDrawdown(bars)
	m.MaxDrawdown = fptr(dd)
	if dd < 0 {
		m.CalmarRatio = fptr(*m.AnnualReturn / math.Abs(dd))
	}

	m.VaR95 = fptr(quantile(returns, 0.05))
	m.Skewness = skewness(returns, meanRet)
	m.Kurtosis = excessKurtosis(returns, meanRet)
	return m
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev returns the standard deviation with Bessel's correction,
// nil when fewer than two observations exist.
func sampleStdDev(values []float64, mu float64) *float64 {
	if len(values) < 2 {
		return nil
	}
	var sumSq float64
	for _, v := range values {
		d := v - mu
		sumSq += d * d
	}
	return fptr(math.Sqrt(sumSq / float64(len(values)-1)))
}

// maxDrawdown returns the deepest peak-to-trough decline of the close
// series as a fraction, always <= 0.
func maxDrawdown(bars []models.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	peak := bars[0].Close
	worst := 0.0
	for _, b := range bars {
		if b.Close > peak {
			peak = b.Close
		}
		if peak > 0 {
			if dd := b.Close/peak - 1; dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

// quantile returns the q-th quantile of values using linear interpolation
// between order statistics.
func quantile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// skewness returns the bias-corrected sample skewness,
// nil for fewer than three observations or zero variance.
func skewness(values []float64, mu float64) *float64 {
	n := float64(len(values))
	if n < 3 {
		return nil
	}
	var m2, m3 float64
	for _, v := range values {
		d := v - mu
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return nil
	}
	g1 := m3 / math.Pow(m2, 1.5)
	return fptr(g1 * math.Sqrt(n*(n-1)) / (n - 2))
}

// excessKurtosis returns the bias-corrected sample excess kurtosis,
// nil for fewer than four observations or zero variance.
func excessKurtosis(values []float64, mu float64) *float64 {
	n := float64(len(values))
	if n < 4 {
		return nil
	}
	var m2, m4 float64
	for _, v := range values {
		d := v - mu
		m2 += d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m4 /= n
	if m2 == 0 {
		return nil
	}
	g2 := m4/(m2*m2) - 3
	k := ((n+1)*g2 + 6) * (n - 1) / ((n - 2) * (n - 3))
	return fptr(k)
}
