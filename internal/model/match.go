package model

// MatchMethod identifies how (or whether) a raw recipient name was resolved.
type MatchMethod string

const (
	MatchAlias     MatchMethod = "alias"
	MatchFuzzy     MatchMethod = "fuzzy"
	MatchNone      MatchMethod = "none"
	MatchAmbiguous MatchMethod = "ambiguous"
)

// Candidate is one scored nation considered by the fuzzy tier.
type Candidate struct {
	NationID string  `json:"nation_id"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
}

// MatchResult is the outcome of resolving one raw recipient name.
// Transient: computed per record, never persisted past the run.
type MatchResult struct {
	NationID   string      `json:"nation_id,omitempty"`
	Confidence float64     `json:"confidence"`
	Method     MatchMethod `json:"method"`
	// Candidates is populated only for ambiguous results and carries every
	// nation tied within the configured margin of the top score.
	Candidates []Candidate `json:"candidates,omitempty"`
}

// Attributed pairs an award record with its match outcome for aggregation.
type Attributed struct {
	Record AwardRecord `json:"record"`
	Match  MatchResult `json:"match"`
}
