package model

// AwardRecord is one raw funding award row from the pre-fetched snapshot.
type AwardRecord struct {
	RecordID      string  `json:"record_id"`
	RecipientName string  `json:"recipient_name"`
	Amount        float64 `json:"amount"`
	ProgramID     string  `json:"program_id"`
	FiscalYear    string  `json:"fiscal_year"`
	State         string  `json:"state,omitempty"`
}

// AwardSummary rolls up every record attributed to one nation.
type AwardSummary struct {
	TotalObligation float64            `json:"total_obligation"`
	ByProgram       map[string]float64 `json:"by_program,omitempty"`
	RecordCount     int                `json:"record_count"`
	// RecordIDs keeps provenance: which snapshot rows produced this total.
	RecordIDs []string `json:"record_ids,omitempty"`
}
