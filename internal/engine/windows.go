package engine

import (
	"github.com/marketlens/ashare/internal/indicators"
	"github.com/marketlens/ashare/internal/models"
)

// t0Lookback is how many trailing bars the latest-day window carries so
// rolling indicators (MA60, EMA26) stay defined for "current" readings.
const t0Lookback = 60

// materializeWindows slices an ascending bar series into the requested
// trading-day windows and computes one indicator set per window. Slices
// are views over the series; the series itself is never mutated.
func materializeWindows(series *models.BarSeries, windows []models.TimeWindow, company *models.CompanyInfo) map[models.TimeWindow]*models.WindowReport {
	reports := make(map[models.TimeWindow]*models.WindowReport, len(windows))
	for _, w := range windows {
		if !w.Valid() {
			continue
		}
		reports[w] = materializeWindow(series, w, company)
	}
	return reports
}

func materializeWindow(series *models.BarSeries, w models.TimeWindow, company *models.CompanyInfo) *models.WindowReport {
	slice := series.Tail(w.TradingDays())

	// indicator slice: T-0 extends back so rolling fields stay defined
	calcSlice := slice
	if w == models.WindowT0 {
		calcSlice = series.Tail(t0Lookback)
	}

	report := &models.WindowReport{
		Window:     w,
		StartDate:  slice[0].Date,
		EndDate:    slice[len(slice)-1].Date,
		DataPoints: len(slice),
		Indicators: buildIndicatorSet(calcSlice, company),
	}

	switch w {
	case models.WindowT0:
		// the latest day's move, not the lookback slice's span
		report.PriceChange = indicators.Change(calcSlice)
		report.PriceChangePct = indicators.ChangePct(calcSlice)
	default:
		if len(slice) >= 2 && slice[0].Close != 0 {
			change := slice[len(slice)-1].Close - slice[0].Close
			pct := change / slice[0].Close * 100
			report.PriceChange = &change
			report.PriceChangePct = &pct
		}
	}
	return report
}

// buildIndicatorSet runs the indicator library over one window slice.
// Valuation fields need a company record; they stay nil without one.
func buildIndicatorSet(bars []models.Bar, company *models.CompanyInfo) models.IndicatorSet {
	latest := bars[len(bars)-1]

	set := models.IndicatorSet{
		Open:   latest.Open,
		High:   latest.High,
		Low:    latest.Low,
		Close:  latest.Close,
		Volume: latest.Volume,
		Amount: latest.Amount,

		AvgPrice:  indicators.AvgPrice(latest),
		Change:    indicators.Change(bars),
		ChangePct: indicators.ChangePct(bars),
		Amplitude: indicators.Amplitude(bars),

		MA5:   indicators.SMA(bars, 5),
		MA10:  indicators.SMA(bars, 10),
		MA20:  indicators.SMA(bars, 20),
		MA60:  indicators.SMA(bars, 60),
		EMA12: indicators.EMA(bars, 12),
		EMA26: indicators.EMA(bars, 26),

		VolumeRatio:     indicators.VolumeRatio(bars, 5),
		BidAskImbalance: indicators.BidAskImbalance(latest),

		RSI14: indicators.RSI(bars, 14),
		ATR14: indicators.ATR(bars, 14),
	}

	set.MACD, set.MACDSignal, set.MACDHist = indicators.MACD(bars, 12, 26, 9)
	set.BollUpper, set.BollMiddle, set.BollLower = indicators.Bollinger(bars, 20, 2)
	set.StochK, set.StochD = indicators.Stochastic(bars, 14, 3)

	var floatShares int64
	if company != nil {
		floatShares = company.FloatShares
	}
	set.TurnoverRate = indicators.TurnoverRate(latest, floatShares)

	if company != nil {
		set.PE = company.PE
		set.PB = company.PB
		set.PS = company.PS
		if company.TotalShares > 0 {
			mc := latest.Close * float64(company.TotalShares)
			set.MarketCap = &mc
		}
		if company.FloatShares > 0 {
			mc := latest.Close * float64(company.FloatShares)
			set.FloatMarketCap = &mc
		}
	}
	return set
}
