package hazard

import (
	"sort"

	"github.com/landgrid/atlas-cli/internal/crosswalk"
	"github.com/landgrid/atlas-cli/internal/model"
)

// Aggregator computes per-nation hazard summaries. Read-only after
// construction; safe for concurrent use across nations.
type Aggregator struct {
	reg  *Registry
	topN int
}

// NewAggregator builds an Aggregator over the given registry.
func NewAggregator(reg *Registry, topN int) *Aggregator {
	if topN <= 0 {
		topN = 5
	}
	return &Aggregator{reg: reg, topN: topN}
}

// metricAgg is one metric's aggregation outcome.
type metricAgg struct {
	value    float64
	coverage string
	ok       bool
}

// weightedMean aggregates an intensive metric: sentinel-flagged and absent
// county values are excluded outright and the remaining weights are
// renormalized to sum to 1.0. The result is clamped into the range of the
// contributing values, which a correct weighted mean already satisfies up
// to float error.
func weightedMean(entries []crosswalk.Entry, counties map[string]model.CountyRecord, metric string) metricAgg {
	var (
		weightSum, acc float64
		lo, hi         float64
		n              int
	)
	for _, e := range entries {
		mv, valid := validValue(counties, e.UnitID, metric)
		if !valid {
			continue
		}
		if n == 0 || mv < lo {
			lo = mv
		}
		if n == 0 || mv > hi {
			hi = mv
		}
		weightSum += e.Weight
		acc += e.Weight * mv
		n++
	}
	if n == 0 || weightSum <= 0 {
		return metricAgg{}
	}

	mean := acc / weightSum
	if mean < lo {
		mean = lo
	}
	if mean > hi {
		mean = hi
	}

	coverage := model.CoverageFull
	if n < len(entries) {
		coverage = model.CoveragePartial
	}
	return metricAgg{value: mean, coverage: coverage, ok: true}
}

// weightedSum aggregates an extensive metric: each county's value is scaled
// by its overlap weight and summed. Weights are NOT renormalized after
// sentinel exclusion; the result is a documented partial-coverage
// undercount, flagged via coverage, never a silently inflated total.
func weightedSum(entries []crosswalk.Entry, counties map[string]model.CountyRecord, metric string) metricAgg {
	var (
		acc float64
		n   int
	)
	for _, e := range entries {
		mv, valid := validValue(counties, e.UnitID, metric)
		if !valid {
			continue
		}
		acc += e.Weight * mv
		n++
	}
	if n == 0 {
		return metricAgg{}
	}

	coverage := model.CoverageFull
	if n < len(entries) {
		coverage = model.CoveragePartial
	}
	return metricAgg{value: acc, coverage: coverage, ok: true}
}

func validValue(counties map[string]model.CountyRecord, unitID, metric string) (float64, bool) {
	rec, ok := counties[unitID]
	if !ok {
		return 0, false
	}
	mv, ok := rec.Metrics[metric]
	if !ok || mv.NoData {
		return 0, false
	}
	return mv.Value, true
}

// Aggregate computes a nation's ranked hazard summary plus the per-metric
// coverage map for its profile metadata.
func (a *Aggregator) Aggregate(nationID string, entries []crosswalk.Entry, counties map[string]model.CountyRecord, fallback bool, ov Overrides) (model.HazardSummary, map[string]string) {
	summary := model.HazardSummary{Confidence: model.ConfidenceNormal}
	if fallback {
		summary.Confidence = model.ConfidenceLow
	}
	metricCoverage := make(map[string]string)

	var scores []model.HazardScore
	for _, def := range a.reg.Hazards {
		score := weightedMean(entries, counties, def.ScoreMetric)
		if score.ok {
			metricCoverage[def.ScoreMetric] = score.coverage
		}

		hs := model.HazardScore{
			Hazard:   def.Name,
			Score:    score.value,
			Method:   model.AggWeightedMean,
			Coverage: score.coverage,
		}

		if def.LossMetric != "" {
			if loss := weightedSum(entries, counties, def.LossMetric); loss.ok {
				v := loss.value
				hs.ExpectedAnnualLoss = &v
				metricCoverage[def.LossMetric] = loss.coverage
			}
		}

		// Overrides supersede the aggregated score for this hazard only,
		// after aggregation.
		if v, found := ov.Get(nationID, def.Name); found {
			hs.Score = v
			hs.Method = model.AggOverride
			if hs.Coverage == "" {
				hs.Coverage = model.CoverageFull
			}
		} else if !score.ok {
			// No valid county data and no override: omit rather than
			// report a fake zero.
			summary.Omitted = append(summary.Omitted, def.Name)
			continue
		}

		scores = append(scores, hs)
	}

	// Rank descending; ties at the cutoff break on hazard name for
	// deterministic output.
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Hazard < scores[j].Hazard
	})
	if len(scores) > a.topN {
		scores = scores[:a.topN]
	}
	summary.Top = scores
	sort.Strings(summary.Omitted)

	return summary, metricCoverage
}
