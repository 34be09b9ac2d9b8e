// Package report accumulates the coverage/quality and unattributed-records
// reports: the honesty layer that tells operators what is measured data and
// what is approximation.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/landgrid/atlas-cli/internal/model"
)

// MetricCoverage counts nations by coverage level for one metric.
type MetricCoverage struct {
	Full    int `json:"full"`
	Partial int `json:"partial"`
	None    int `json:"none"`
}

// Coverage is the end-of-run quality report. Every run ends with one
// regardless of how many per-record issues occurred.
type Coverage struct {
	RunID             string `json:"run_id"`
	NationsProcessed  int    `json:"nations_processed"`
	AliasMatches      int    `json:"alias_matches"`
	FuzzyMatches      int    `json:"fuzzy_matches"`
	AmbiguousMatches  int    `json:"ambiguous_matches"`
	UnmatchedRecords  int    `json:"unmatched_records"`
	FallbackCrosswalk int    `json:"fallback_crosswalk_nations"`
	MalformedAwards   int    `json:"malformed_award_rows"`
	MalformedHazards  int    `json:"malformed_hazard_rows"`
	// Metrics maps metric name to per-nation coverage counts.
	Metrics map[string]MetricCoverage `json:"metrics"`
}

// UnattributedRecord is one award row that failed attribution, kept for
// manual alias-table curation.
type UnattributedRecord struct {
	RecordID   string            `json:"record_id"`
	RawName    string            `json:"raw_name"`
	Amount     float64           `json:"amount"`
	Reason     model.MatchMethod `json:"reason"` // none or ambiguous
	Candidates []model.Candidate `json:"candidates,omitempty"`
}

// Collector accumulates both reports. Append-only and order-independent,
// so the parallel per-nation loop shares one without finer locking.
type Collector struct {
	mu           sync.Mutex
	coverage     Coverage
	unattributed []UnattributedRecord
}

// NewCollector creates a Collector for a run.
func NewCollector(runID string) *Collector {
	return &Collector{coverage: Coverage{
		RunID:   runID,
		Metrics: make(map[string]MetricCoverage),
	}}
}

// RecordMatch tallies one match outcome; none and ambiguous outcomes also
// land in the unattributed report.
func (c *Collector) RecordMatch(rec model.AwardRecord, res model.MatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch res.Method {
	case model.MatchAlias:
		c.coverage.AliasMatches++
	case model.MatchFuzzy:
		c.coverage.FuzzyMatches++
	case model.MatchAmbiguous:
		c.coverage.AmbiguousMatches++
		c.unattributed = append(c.unattributed, UnattributedRecord{
			RecordID:   rec.RecordID,
			RawName:    rec.RecipientName,
			Amount:     rec.Amount,
			Reason:     model.MatchAmbiguous,
			Candidates: res.Candidates,
		})
	case model.MatchNone:
		c.coverage.UnmatchedRecords++
		c.unattributed = append(c.unattributed, UnattributedRecord{
			RecordID: rec.RecordID,
			RawName:  rec.RecipientName,
			Amount:   rec.Amount,
			Reason:   model.MatchNone,
		})
	}
}

// RecordNation tallies one processed nation: crosswalk method and the
// coverage level of each metric that had any valid data.
func (c *Collector) RecordNation(fallback bool, metricCoverage map[string]string, allMetrics []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.coverage.NationsProcessed++
	if fallback {
		c.coverage.FallbackCrosswalk++
	}
	for _, m := range allMetrics {
		mc := c.coverage.Metrics[m]
		switch metricCoverage[m] {
		case model.CoverageFull:
			mc.Full++
		case model.CoveragePartial:
			mc.Partial++
		default:
			mc.None++
		}
		c.coverage.Metrics[m] = mc
	}
}

// RecordMalformed tallies skipped input rows.
func (c *Collector) RecordMalformed(awards, hazards int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coverage.MalformedAwards += awards
	c.coverage.MalformedHazards += hazards
}

// Coverage returns a copy of the accumulated coverage report.
func (c *Collector) Coverage() Coverage {
	c.mu.Lock()
	defer c.mu.Unlock()

	cov := c.coverage
	cov.Metrics = make(map[string]MetricCoverage, len(c.coverage.Metrics))
	for k, v := range c.coverage.Metrics {
		cov.Metrics[k] = v
	}
	return cov
}

// Unattributed returns the unattributed records sorted by record ID.
func (c *Collector) Unattributed() []UnattributedRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := append([]UnattributedRecord(nil), c.unattributed...)
	sort.Slice(out, func(i, j int) bool { return out[i].RecordID < out[j].RecordID })
	return out
}

// WriteJSON persists both reports into dir as coverage.json and
// unattributed.json.
func (c *Collector) WriteJSON(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "report: create report dir %s", dir)
	}
	if err := writeJSON(filepath.Join(dir, "coverage.json"), c.Coverage()); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, "unattributed.json"), c.Unattributed())
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "report: marshal %s", path)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", path)
	}
	return nil
}
