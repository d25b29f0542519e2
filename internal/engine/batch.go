package engine

import (
	"context"
	"sync"

	"github.com/marketlens/ashare/internal/models"
)

// fanOut analyzes codes through a bounded worker pool. Result slots are
// pre-allocated by input position, so output order is deterministic
// regardless of completion order. A failed slot carries its error marker
// and never aborts the rest of the batch.
func (a *Analyzer) fanOut(ctx context.Context, codes []string, windows []models.TimeWindow, forceRefresh bool) []models.BatchItem {
	items := make([]models.BatchItem, len(codes))
	sem := make(chan struct{}, a.workers)
	var wg sync.WaitGroup

	for i, code := range codes {
		items[i].Code = code

		wg.Add(1)
		go func(i int, code string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				items[i].Error = ctx.Err().Error()
				return
			}

			result, err := a.analyzeOne(ctx, code, windows, forceRefresh)
			if err != nil {
				a.logger.Warn().Str("code", code).Err(err).Msg("constituent analysis failed")
				items[i].Error = err.Error()
				return
			}
			items[i].Result = result
		}(i, code)
	}

	wg.Wait()
	return items
}

// summarize counts batch outcomes and averages the headline metrics over
// the successful slots.
func summarize(items []models.BatchItem) models.BatchSummary {
	summary := models.BatchSummary{Total: len(items)}

	var changePct, volumeRatio, rsi, pe, pb, volatility []float64
	for _, item := range items {
		if item.Result == nil {
			summary.Failed++
			continue
		}
		summary.Succeeded++

		if report, ok := item.Result.Windows[models.WindowT0]; ok {
			changePct = collect(changePct, report.Indicators.ChangePct)
			volumeRatio = collect(volumeRatio, report.Indicators.VolumeRatio)
			rsi = collect(rsi, report.Indicators.RSI14)
			pe = collect(pe, report.Indicators.PE)
			pb = collect(pb, report.Indicators.PB)
		}
		if item.Result.Risk != nil {
			volatility = collect(volatility, item.Result.Risk.Volatility)
		}
	}

	if summary.Succeeded > 0 {
		summary.Averages = &models.AverageMetrics{
			ChangePct:   avg(changePct),
			VolumeRatio: avg(volumeRatio),
			RSI14:       avg(rsi),
			PE:          avg(pe),
			PB:          avg(pb),
			Volatility:  avg(volatility),
		}
	}
	return summary
}

func collect(dst []float64, v *float64) []float64 {
	if v == nil {
		return dst
	}
	return append(dst, *v)
}

func avg(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	return &mean
}

// aggregateIndex fills the distribution and weight statistics of an index
// result, computed over the successfully analyzed constituents only.
func aggregateIndex(result *models.IndexAnalysisResult) {
	industries := make(map[string]int)
	markets := make(map[string]int)
	var weights []float64

	for _, cr := range result.Constituents {
		if cr.Result == nil {
			continue
		}
		if cr.Constituent.Industry != "" {
			industries[cr.Constituent.Industry]++
		}
		if cr.Constituent.Market != "" {
			markets[cr.Constituent.Market]++
		}
		weights = append(weights, cr.Constituent.Weight)
	}

	if len(industries) > 0 {
		result.IndustryDistribution = industries
	}
	if len(markets) > 0 {
		result.MarketDistribution = markets
	}
	if len(weights) == 0 {
		return
	}

	stats := &models.WeightStats{MaxWeight: weights[0], MinWeight: weights[0]}
	sum := 0.0
	for i, w := range weights {
		sum += w
		if i < 10 {
			stats.Top10WeightSum += w
		}
		if w > stats.MaxWeight {
			stats.MaxWeight = w
		}
		if w < stats.MinWeight {
			stats.MinWeight = w
		}
	}
	stats.AverageWeight = sum / float64(len(weights))
	result.WeightStats = stats
}
