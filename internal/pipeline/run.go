// Package pipeline orchestrates one aggregation run: match, aggregate,
// write profiles, persist reports.
package pipeline

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/landgrid/atlas-cli/internal/award"
	"github.com/landgrid/atlas-cli/internal/crosswalk"
	"github.com/landgrid/atlas-cli/internal/hazard"
	"github.com/landgrid/atlas-cli/internal/index"
	"github.com/landgrid/atlas-cli/internal/ingest"
	"github.com/landgrid/atlas-cli/internal/matcher"
	"github.com/landgrid/atlas-cli/internal/model"
	"github.com/landgrid/atlas-cli/internal/profile"
	"github.com/landgrid/atlas-cli/internal/report"
	"github.com/landgrid/atlas-cli/internal/store"
)

// Deps carries the prebuilt, read-only collaborators for a run. Index and
// crosswalk are immutable once constructed, so the per-nation loop shares
// them without locking.
type Deps struct {
	Index     *index.Index
	Matcher   *matcher.Matcher
	Crosswalk *crosswalk.Table
	Registry  *hazard.Registry
	Overrides hazard.Overrides
	Writer    *profile.Writer
	Store     store.Store
	ReportDir string
	TopN      int
	Workers   int
}

// Result summarizes a completed run.
type Result struct {
	RunID    string
	Profiles int
	Coverage report.Coverage
}

// Run executes one full aggregation pass. Preconditions (index, crosswalk)
// are checked before anything is written: partial output from a broken
// precondition is worse than no output. Per-record and per-nation issues
// are tallied and never abort the batch.
func Run(ctx context.Context, deps Deps, awardsPath, hazardsPath string) (*Result, error) {
	if deps.Index == nil || deps.Index.Len() == 0 {
		return nil, eris.New("pipeline: nation index is empty")
	}
	if deps.Crosswalk == nil || deps.Crosswalk.Len() == 0 {
		return nil, eris.New("pipeline: crosswalk is empty; run crosswalk build first")
	}

	log := zap.L().With(zap.String("component", "pipeline"))
	runID := uuid.New().String()
	collector := report.NewCollector(runID)

	if deps.Store != nil {
		if err := deps.Store.CreateRun(ctx, runID); err != nil {
			return nil, err
		}
	}

	// Ingest snapshots.
	awardsFile, err := os.Open(awardsPath)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: open award snapshot %s", awardsPath)
	}
	records, badAwards, err := ingest.ReadAwards(ctx, awardsFile)
	_ = awardsFile.Close()
	if err != nil {
		return nil, err
	}

	hazardsFile, err := os.Open(hazardsPath)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: open hazard snapshot %s", hazardsPath)
	}
	counties, badHazards, err := ingest.ReadCountyRows(ctx, hazardsFile)
	_ = hazardsFile.Close()
	if err != nil {
		return nil, err
	}
	collector.RecordMalformed(badAwards, badHazards)

	// Match pass. Sequential: matching is cheap relative to ingest, and a
	// single pass keeps the unattributed report ordering stable.
	attributed := make([]model.Attributed, 0, len(records))
	for _, rec := range records {
		res := deps.Matcher.MatchWithState(rec.RecipientName, rec.State)
		collector.RecordMatch(rec, res)
		attributed = append(attributed, model.Attributed{Record: rec, Match: res})
	}
	awardsByNation := award.Aggregate(attributed)

	aggregator := hazard.NewAggregator(deps.Registry, deps.TopN)
	allMetrics := registryMetrics(deps.Registry)

	// Per-nation loop: embarrassingly parallel, every shared structure is
	// read-only except the collector, which is append-only.
	workers := deps.Workers
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, n := range deps.Index.Nations() {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			entries := deps.Crosswalk.Entries(n.ID)
			fallback := deps.Crosswalk.IsFallback(n.ID) || len(entries) == 0

			hazards, metricCoverage := aggregator.Aggregate(n.ID, entries, counties, fallback, deps.Overrides)

			awards := awardsByNation[n.ID]
			if awards.ByProgram == nil {
				awards = award.Summarize(nil)
			}

			crosswalkMethod := model.CrosswalkArea
			if fallback {
				crosswalkMethod = model.CrosswalkFallback
			}

			p := model.NationProfile{
				NationID: n.ID,
				Name:     n.Name,
				Hazards:  hazards,
				Awards:   awards,
				Coverage: model.CoverageMeta{
					CrosswalkMethod:  crosswalkMethod,
					MetricCoverage:   metricCoverage,
					AttributedAwards: awards.RecordCount,
				},
			}
			if err := deps.Writer.Write(p); err != nil {
				return err
			}

			collector.RecordNation(fallback, metricCoverage, allMetrics)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Reports always land, however many per-record issues occurred.
	if deps.ReportDir != "" {
		if err := collector.WriteJSON(deps.ReportDir); err != nil {
			return nil, err
		}
	}

	cov := collector.Coverage()
	if deps.Store != nil {
		if err := deps.Store.CompleteRun(ctx, runID, cov); err != nil {
			return nil, err
		}
	}

	log.Info("aggregation run complete",
		zap.String("run_id", runID),
		zap.Int("nations", cov.NationsProcessed),
		zap.Int("alias_matches", cov.AliasMatches),
		zap.Int("fuzzy_matches", cov.FuzzyMatches),
		zap.Int("ambiguous", cov.AmbiguousMatches),
		zap.Int("unmatched", cov.UnmatchedRecords),
	)

	return &Result{RunID: runID, Profiles: cov.NationsProcessed, Coverage: cov}, nil
}

func registryMetrics(reg *hazard.Registry) []string {
	var metrics []string
	for _, d := range reg.Hazards {
		metrics = append(metrics, d.ScoreMetric)
		if d.LossMetric != "" {
			metrics = append(metrics, d.LossMetric)
		}
	}
	return metrics
}
