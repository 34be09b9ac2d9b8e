package model

// Aggregation methods recorded on hazard scores.
const (
	AggWeightedMean = "weighted_mean"
	AggWeightedSum  = "weighted_sum"
	AggOverride     = "override"
)

// Coverage levels for a single aggregated metric.
const (
	CoverageFull    = "full"
	CoveragePartial = "partial"
)

// HazardScore is one hazard type's aggregated result for a nation.
type HazardScore struct {
	Hazard string  `json:"hazard"`
	Score  float64 `json:"score"`
	// ExpectedAnnualLoss is the weighted-sum dollar exposure, when the
	// hazard carries a loss metric with any valid county data.
	ExpectedAnnualLoss *float64 `json:"expected_annual_loss,omitempty"`
	Method             string   `json:"method"`
	Coverage           string   `json:"coverage"`
}

// Hazard summary confidence tags.
const (
	ConfidenceNormal = "normal"
	ConfidenceLow    = "low"
)

// HazardSummary is a nation's ranked top-N hazard profile.
type HazardSummary struct {
	Top        []HazardScore `json:"top"`
	Confidence string        `json:"confidence"`
	// Omitted lists hazard types dropped because no county had valid data.
	Omitted []string `json:"omitted,omitempty"`
}
