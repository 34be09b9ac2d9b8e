// Package award rolls matched funding records up into per-nation summaries.
package award

import (
	"sort"

	"github.com/landgrid/atlas-cli/internal/model"
)

// Aggregate groups attributed records by nation. Records whose match
// outcome is none or ambiguous contribute to no nation; callers route them
// to the unattributed report instead.
func Aggregate(records []model.Attributed) map[string]model.AwardSummary {
	byNation := make(map[string][]model.AwardRecord)
	for _, r := range records {
		if r.Match.Method != model.MatchAlias && r.Match.Method != model.MatchFuzzy {
			continue
		}
		byNation[r.Match.NationID] = append(byNation[r.Match.NationID], r.Record)
	}

	out := make(map[string]model.AwardSummary, len(byNation))
	for id, recs := range byNation {
		out[id] = Summarize(recs)
	}
	return out
}

// Summarize builds one nation's award summary: total obligation,
// per-program breakdown, record count, and the contributing record IDs for
// provenance ("why does this nation show this total?").
func Summarize(records []model.AwardRecord) model.AwardSummary {
	s := model.AwardSummary{
		ByProgram: make(map[string]float64),
	}
	for _, r := range records {
		s.TotalObligation += r.Amount
		s.ByProgram[r.ProgramID] += r.Amount
		s.RecordCount++
		s.RecordIDs = append(s.RecordIDs, r.RecordID)
	}
	sort.Strings(s.RecordIDs)
	return s
}
