package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landgrid/atlas-cli/internal/config"
	"github.com/landgrid/atlas-cli/internal/crosswalk"
	"github.com/landgrid/atlas-cli/internal/hazard"
	"github.com/landgrid/atlas-cli/internal/index"
	"github.com/landgrid/atlas-cli/internal/matcher"
	"github.com/landgrid/atlas-cli/internal/model"
	"github.com/landgrid/atlas-cli/internal/profile"
	"github.com/landgrid/atlas-cli/internal/report"
)

const fixtureAwards = `record_id,recipient_name,amount,program_id,fiscal_year,state
A1,Cherokee Nation,1000,15.021,2024,OK
A2,cherokee nation llc,500,15.021,2024,OK
A3,Unknown Recipient Group,250,10.100,2024,TX
A4,Navajo Nation,2000,15.130,2024,AZ
`

const fixtureHazards = `unit_id,metric,value
40001,WFIR_RISKS,50
40001,WFIR_EALT,100
40003,WFIR_RISKS,80
40003,WFIR_EALT,-999
04,WFIR_RISKS,30
`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testDeps(t *testing.T, profileDir, reportDir string) Deps {
	t.Helper()

	idx, err := index.Read(strings.NewReader(
		"id,name,primary_state,states\n" +
			"N001,Cherokee Nation,OK,\n" +
			"N002,Navajo Nation,AZ,AZ;NM;UT\n",
	))
	require.NoError(t, err)

	table := crosswalk.NewTable([]crosswalk.Entry{
		{NationID: "N001", UnitID: "40001", Weight: 0.7, Method: model.CrosswalkArea},
		{NationID: "N001", UnitID: "40003", Weight: 0.3, Method: model.CrosswalkArea},
		{NationID: "N002", UnitID: "04", Weight: 1.0, Method: model.CrosswalkFallback},
	})

	writer, err := profile.NewWriter(profileDir)
	require.NoError(t, err)

	return Deps{
		Index:     idx,
		Matcher:   matcher.New(idx, config.MatcherConfig{AcceptThreshold: 85, TieMargin: 2, StatePenalty: 0.7}),
		Crosswalk: table,
		Registry: &hazard.Registry{Hazards: []hazard.Def{
			{Name: "wildfire", ScoreMetric: "WFIR_RISKS", LossMetric: "WFIR_EALT"},
		}},
		Writer:    writer,
		ReportDir: reportDir,
		TopN:      5,
		Workers:   2,
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	profileDir := filepath.Join(dir, "profiles")
	reportDir := filepath.Join(dir, "reports")
	awardsPath := writeFixture(t, dir, "awards.csv", fixtureAwards)
	hazardsPath := writeFixture(t, dir, "hazards.csv", fixtureHazards)

	deps := testDeps(t, profileDir, reportDir)
	result, err := Run(context.Background(), deps, awardsPath, hazardsPath)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 2, result.Profiles)
	assert.Equal(t, 3, result.Coverage.AliasMatches)
	assert.Equal(t, 1, result.Coverage.UnmatchedRecords)
	assert.Equal(t, 1, result.Coverage.FallbackCrosswalk)

	// N001: measured geometry, full score coverage, undercounted loss.
	p, err := deps.Writer.Read("N001")
	require.NoError(t, err)
	require.Len(t, p.Hazards.Top, 1)
	hs := p.Hazards.Top[0]
	assert.Equal(t, "wildfire", hs.Hazard)
	assert.InDelta(t, 59.0, hs.Score, 0.0001)
	require.NotNil(t, hs.ExpectedAnnualLoss)
	assert.InDelta(t, 70.0, *hs.ExpectedAnnualLoss, 0.0001)
	assert.Equal(t, model.ConfidenceNormal, p.Hazards.Confidence)
	assert.Equal(t, model.CrosswalkArea, p.Coverage.CrosswalkMethod)
	assert.Equal(t, model.CoverageFull, p.Coverage.MetricCoverage["WFIR_RISKS"])
	assert.Equal(t, model.CoveragePartial, p.Coverage.MetricCoverage["WFIR_EALT"])
	assert.InDelta(t, 1500.0, p.Awards.TotalObligation, 0.0001)
	assert.Equal(t, []string{"A1", "A2"}, p.Awards.RecordIDs)
	assert.Equal(t, 2, p.Coverage.AttributedAwards)

	// N002: fallback coverage at its primary state.
	p, err = deps.Writer.Read("N002")
	require.NoError(t, err)
	require.Len(t, p.Hazards.Top, 1)
	assert.InDelta(t, 30.0, p.Hazards.Top[0].Score, 0.0001)
	assert.Equal(t, model.ConfidenceLow, p.Hazards.Confidence)
	assert.Equal(t, model.CrosswalkFallback, p.Coverage.CrosswalkMethod)
	assert.InDelta(t, 2000.0, p.Awards.TotalObligation, 0.0001)

	// Reports land on disk with the unresolved record.
	var un []report.UnattributedRecord
	data, err := os.ReadFile(filepath.Join(reportDir, "unattributed.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &un))
	require.Len(t, un, 1)
	assert.Equal(t, "A3", un[0].RecordID)

	_, err = os.Stat(filepath.Join(reportDir, "coverage.json"))
	assert.NoError(t, err)
}

func TestRun_Idempotent(t *testing.T) {
	dir := t.TempDir()
	profileDir := filepath.Join(dir, "profiles")
	awardsPath := writeFixture(t, dir, "awards.csv", fixtureAwards)
	hazardsPath := writeFixture(t, dir, "hazards.csv", fixtureHazards)

	deps := testDeps(t, profileDir, filepath.Join(dir, "reports"))

	_, err := Run(context.Background(), deps, awardsPath, hazardsPath)
	require.NoError(t, err)
	first, err := os.ReadFile(deps.Writer.Path("N001"))
	require.NoError(t, err)

	_, err = Run(context.Background(), deps, awardsPath, hazardsPath)
	require.NoError(t, err)
	second, err := os.ReadFile(deps.Writer.Path("N001"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_EmptyCrosswalkAborts(t *testing.T) {
	dir := t.TempDir()
	profileDir := filepath.Join(dir, "profiles")
	awardsPath := writeFixture(t, dir, "awards.csv", fixtureAwards)
	hazardsPath := writeFixture(t, dir, "hazards.csv", fixtureHazards)

	deps := testDeps(t, profileDir, filepath.Join(dir, "reports"))
	deps.Crosswalk = crosswalk.NewTable(nil)

	_, err := Run(context.Background(), deps, awardsPath, hazardsPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crosswalk is empty")

	// Nothing was written.
	entries, err := os.ReadDir(profileDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_MissingSnapshot(t *testing.T) {
	dir := t.TempDir()
	deps := testDeps(t, filepath.Join(dir, "profiles"), filepath.Join(dir, "reports"))

	_, err := Run(context.Background(), deps, filepath.Join(dir, "nope.csv"), filepath.Join(dir, "nope2.csv"))
	assert.Error(t, err)
}

func TestRun_MalformedRowsTallied(t *testing.T) {
	dir := t.TempDir()
	awards := "record_id,recipient_name,amount,program_id,fiscal_year,state\n" +
		"A1,Cherokee Nation,1000,15.021,2024,OK\n" +
		"A2,Broken Row,not-a-number,15.021,2024,OK\n"
	hazards := "unit_id,metric,value\n" +
		"40001,WFIR_RISKS,50\n" +
		"40001,WFIR_EALT,not-a-number\n"
	awardsPath := writeFixture(t, dir, "awards.csv", awards)
	hazardsPath := writeFixture(t, dir, "hazards.csv", hazards)

	deps := testDeps(t, filepath.Join(dir, "profiles"), filepath.Join(dir, "reports"))
	result, err := Run(context.Background(), deps, awardsPath, hazardsPath)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Coverage.MalformedAwards)
	assert.Equal(t, 1, result.Coverage.MalformedHazards)
}
