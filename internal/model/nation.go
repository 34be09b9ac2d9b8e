// Package model defines the domain types shared across the aggregation pipeline.
package model

// Nation is one canonical entity that all external records are attributed to.
// Built once at index load and immutable for the rest of the run.
type Nation struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Aliases      []string `json:"aliases,omitempty"`
	States       []string `json:"states,omitempty"`
	PrimaryState string   `json:"primary_state,omitempty"`
}

// MetricValue is one county-level metric reading. NoData marks source
// sentinels (negative placeholders, blanks); such values must never reach
// an aggregation as if they were real zeros.
type MetricValue struct {
	Value  float64 `json:"value"`
	NoData bool    `json:"no_data,omitempty"`
}

// CountyRecord holds the raw per-metric readings for one geographic unit.
// The unit is normally a 5-digit county GEOID; fallback crosswalk entries
// reference 2-digit state FIPS units instead.
type CountyRecord struct {
	UnitID  string                 `json:"unit_id"`
	Metrics map[string]MetricValue `json:"metrics"`
}
