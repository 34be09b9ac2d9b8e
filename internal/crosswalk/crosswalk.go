// Package crosswalk builds and validates the nation → county overlap-weight
// table used to distribute county-level metrics across nations.
package crosswalk

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/landgrid/atlas-cli/internal/model"
)

// Entry maps one nation to one geographic unit with its overlap weight.
type Entry struct {
	NationID string  `json:"nation_id"`
	UnitID   string  `json:"unit_id"`
	Weight   float64 `json:"weight"`
	Method   string  `json:"method"` // model.CrosswalkArea or model.CrosswalkFallback
}

// Table holds all crosswalk entries grouped by nation. Built once, then
// shared read-only across the run.
type Table struct {
	entries map[string][]Entry
}

// NewTable groups entries by nation with deterministic per-nation ordering.
func NewTable(entries []Entry) *Table {
	t := &Table{entries: make(map[string][]Entry)}
	for _, e := range entries {
		t.entries[e.NationID] = append(t.entries[e.NationID], e)
	}
	for id := range t.entries {
		es := t.entries[id]
		sort.Slice(es, func(i, j int) bool { return es[i].UnitID < es[j].UnitID })
	}
	return t
}

// Entries returns the crosswalk rows for one nation, or nil.
func (t *Table) Entries(nationID string) []Entry {
	return t.entries[nationID]
}

// Len returns the number of nations with crosswalk data.
func (t *Table) Len() int { return len(t.entries) }

// All returns every entry sorted by nation then unit, for caching.
func (t *Table) All() []Entry {
	ids := make([]string, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Entry
	for _, id := range ids {
		out = append(out, t.entries[id]...)
	}
	return out
}

// IsFallback reports whether a nation's coverage is the low-confidence
// single-state substitute rather than measured geometry.
func (t *Table) IsFallback(nationID string) bool {
	es := t.entries[nationID]
	return len(es) == 1 && es[0].Method == model.CrosswalkFallback
}

// Validate enforces the weight invariant: for every nation with real
// geometry the weights must sum to 1.0 within tolerance. Out-of-tolerance
// sums (geometry slivers, precision loss) are renormalized and logged, never
// silently accepted. Returns the number of nations that needed clipping.
func (t *Table) Validate(tolerance float64) int {
	var clipped int
	for id, es := range t.entries {
		if t.IsFallback(id) {
			es[0].Weight = 1.0
			continue
		}
		var sum float64
		for _, e := range es {
			sum += e.Weight
		}
		if sum <= 0 {
			continue
		}
		if math.Abs(sum-1.0) > tolerance {
			zap.L().Warn("crosswalk weights out of tolerance, clipping",
				zap.String("nation_id", id),
				zap.Float64("sum", sum),
			)
			for i := range es {
				es[i].Weight /= sum
			}
			clipped++
		}
	}
	return clipped
}
