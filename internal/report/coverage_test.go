package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landgrid/atlas-cli/internal/model"
)

func TestCollector_RecordMatch(t *testing.T) {
	c := NewCollector("run-1")

	rec := func(id, name string, amount float64) model.AwardRecord {
		return model.AwardRecord{RecordID: id, RecipientName: name, Amount: amount}
	}

	c.RecordMatch(rec("A1", "Cherokee Nation", 1000), model.MatchResult{NationID: "N001", Method: model.MatchAlias})
	c.RecordMatch(rec("A2", "Cherokee Nartion", 500), model.MatchResult{NationID: "N001", Method: model.MatchFuzzy})
	c.RecordMatch(rec("A4", "Mokave Nation", 100), model.MatchResult{
		Method: model.MatchAmbiguous,
		Candidates: []model.Candidate{
			{NationID: "N004", Name: "Mohave Nation", Score: 92.3},
			{NationID: "N005", Name: "Mojave Nation", Score: 92.3},
		},
	})
	c.RecordMatch(rec("A3", "Unknown Org", 250), model.MatchResult{Method: model.MatchNone})

	cov := c.Coverage()
	assert.Equal(t, "run-1", cov.RunID)
	assert.Equal(t, 1, cov.AliasMatches)
	assert.Equal(t, 1, cov.FuzzyMatches)
	assert.Equal(t, 1, cov.AmbiguousMatches)
	assert.Equal(t, 1, cov.UnmatchedRecords)

	// Unattributed output sorts by record ID; resolved records stay out.
	un := c.Unattributed()
	require.Len(t, un, 2)
	assert.Equal(t, "A3", un[0].RecordID)
	assert.Equal(t, model.MatchNone, un[0].Reason)
	assert.Empty(t, un[0].Candidates)
	assert.Equal(t, "A4", un[1].RecordID)
	assert.Equal(t, model.MatchAmbiguous, un[1].Reason)
	assert.Len(t, un[1].Candidates, 2)
}

func TestCollector_RecordNation(t *testing.T) {
	c := NewCollector("run-1")
	metrics := []string{"WFIR_RISKS", "WFIR_EALT"}

	c.RecordNation(false, map[string]string{
		"WFIR_RISKS": model.CoverageFull,
		"WFIR_EALT":  model.CoveragePartial,
	}, metrics)
	c.RecordNation(true, map[string]string{
		"WFIR_RISKS": model.CoverageFull,
	}, metrics)
	c.RecordNation(false, nil, metrics)

	cov := c.Coverage()
	assert.Equal(t, 3, cov.NationsProcessed)
	assert.Equal(t, 1, cov.FallbackCrosswalk)
	assert.Equal(t, MetricCoverage{Full: 2, Partial: 0, None: 1}, cov.Metrics["WFIR_RISKS"])
	assert.Equal(t, MetricCoverage{Full: 0, Partial: 1, None: 2}, cov.Metrics["WFIR_EALT"])
}

func TestCollector_RecordMalformed(t *testing.T) {
	c := NewCollector("run-1")
	c.RecordMalformed(3, 7)
	c.RecordMalformed(1, 0)

	cov := c.Coverage()
	assert.Equal(t, 4, cov.MalformedAwards)
	assert.Equal(t, 7, cov.MalformedHazards)
}

func TestCollector_CoverageIsACopy(t *testing.T) {
	c := NewCollector("run-1")
	c.RecordNation(false, map[string]string{"X": model.CoverageFull}, []string{"X"})

	cov := c.Coverage()
	cov.Metrics["X"] = MetricCoverage{Full: 99}

	assert.Equal(t, 1, c.Coverage().Metrics["X"].Full)
}

func TestCollector_WriteJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	c := NewCollector("run-1")
	c.RecordMatch(model.AwardRecord{RecordID: "A1", RecipientName: "X"}, model.MatchResult{Method: model.MatchNone})

	require.NoError(t, c.WriteJSON(dir))

	var cov Coverage
	data, err := os.ReadFile(filepath.Join(dir, "coverage.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &cov))
	assert.Equal(t, "run-1", cov.RunID)
	assert.Equal(t, 1, cov.UnmatchedRecords)

	var un []UnattributedRecord
	data, err = os.ReadFile(filepath.Join(dir, "unattributed.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &un))
	require.Len(t, un, 1)
	assert.Equal(t, "A1", un[0].RecordID)
}
