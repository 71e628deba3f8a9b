package models

// DurationConfig is sent once with the orchestration start request
type DurationConfig struct {
	DurationDays     int `json:"duration_days" example:"7"`
	PreferredRunHour int `json:"preferred_run_hour" example:"9"`
}

// CreditCalculation is a derived cost projection; it is never persisted
type CreditCalculation struct {
	CreditsPerDay int             `json:"credits_per_day" example:"100"`
	TotalCredits  int             `json:"total_credits" example:"500"`
	DurationDays  int             `json:"duration_days" example:"5"`
	Breakdown     CreditBreakdown `json:"breakdown"`
}

// CreditBreakdown separates discovery cost from enrichment cost
type CreditBreakdown struct {
	DiscoveryCredits  int `json:"discovery_credits" example:"250"`
	EnrichmentCredits int `json:"enrichment_credits" example:"250"`
}

// BalanceCoverage says whether the user's balance covers a projected cost
type BalanceCoverage string

const (
	BalanceCoverageLoading      BalanceCoverage = "loading"
	BalanceCoverageSufficient   BalanceCoverage = "sufficient"
	BalanceCoverageInsufficient BalanceCoverage = "insufficient"
)

// CostPreview is the projected cost of a campaign against the user's balance
type CostPreview struct {
	DurationConfig *DurationConfig   `json:"duration_config"`
	Calculation    CreditCalculation `json:"calculation"`
	Balance        *int              `json:"balance,omitempty" example:"2000"`
	Coverage       BalanceCoverage   `json:"coverage" example:"sufficient"`
	Shortfall      int               `json:"shortfall" example:"0"`
}

// DurationPreviewRequest carries the configurator inputs and the planned daily volume
type DurationPreviewRequest struct {
	MultiDay                bool `json:"multi_day" example:"true"`
	DurationDays            int  `json:"duration_days" example:"7"`
	PreferredRunHour        int  `json:"preferred_run_hour" example:"9"`
	ContactsPerDay          int  `json:"contacts_per_day" binding:"min=0" example:"50"`
	EnrichCreditsPerContact int  `json:"enrich_credits_per_contact" binding:"min=0" example:"50"`
}
