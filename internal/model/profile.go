package model

// Crosswalk methods recorded in coverage metadata.
const (
	CrosswalkArea     = "area"
	CrosswalkFallback = "fallback"
)

// CoverageMeta records which parts of a profile carry real data and which
// are approximations, so downstream consumers never mistake a fallback for
// measured coverage.
type CoverageMeta struct {
	CrosswalkMethod string `json:"crosswalk_method"`
	// MetricCoverage maps metric name to full/partial coverage after
	// sentinel exclusion. Metrics with zero valid counties are absent here
	// and listed in the hazard summary's Omitted field instead.
	MetricCoverage   map[string]string `json:"metric_coverage,omitempty"`
	AttributedAwards int               `json:"attributed_awards"`
}

// NationProfile is the sole durable output of an aggregation run, one per
// nation. Contains no timestamps: identical inputs must produce
// byte-identical artifacts.
type NationProfile struct {
	NationID string        `json:"nation_id"`
	Name     string        `json:"name"`
	Hazards  HazardSummary `json:"hazards"`
	Awards   AwardSummary  `json:"awards"`
	Coverage CoverageMeta  `json:"coverage"`
}
