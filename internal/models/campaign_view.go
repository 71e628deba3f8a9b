package models

import "time"

// DayIndicator is the per-day marker shown in the campaign progress strip
type DayIndicator struct {
	DayNumber          int            `json:"day_number" example:"3"`
	Status             DailyRunStatus `json:"status" example:"running"`
	IsCurrent          bool           `json:"is_current" example:"true"`
	ContactsDiscovered int            `json:"contacts_discovered" example:"50"`
	SequencesCreated   int            `json:"sequences_created" example:"48"`
	CreditsUsed        int            `json:"credits_used" example:"100"`
}

// CampaignView is the composed presentation of a tracked campaign
type CampaignView struct {
	CampaignID  string `json:"campaign_id" example:"8f14e45f-ceea-467f-a0e6-2f6c1d9b2a51"`
	HasSnapshot bool   `json:"has_snapshot" example:"true"`
	Loading     bool   `json:"loading" example:"false"`
	PollError   string `json:"poll_error,omitempty"`

	Status               CampaignStatus `json:"status,omitempty" example:"active"`
	DurationDays         int            `json:"duration_days" example:"10"`
	CurrentDay           int            `json:"current_day" example:"4"`
	ProgressFraction     float64        `json:"progress_fraction" example:"0.4"`
	ProgressPercent      int            `json:"progress_percent" example:"40"`
	TotalCreditsReserved int            `json:"total_credits_reserved" example:"1000"`
	CreditsConsumed      int            `json:"credits_consumed" example:"300"`
	CreditsRefunded      int            `json:"credits_refunded" example:"0"`
	CreditsFraction      float64        `json:"credits_fraction" example:"0.3"`
	CreditsPercent       int            `json:"credits_percent" example:"30"`
	NextRunAt            *time.Time     `json:"next_run_at,omitempty"`
	Days                 []DayIndicator `json:"days"`

	AvailableActions []CampaignAction `json:"available_actions"`
	PendingAction    CampaignAction   `json:"pending_action,omitempty"`
	ActionError      string           `json:"action_error,omitempty"`

	ConfirmingCancel bool `json:"confirming_cancel" example:"false"`
	EstimatedRefund  int  `json:"estimated_refund" example:"600"`

	Anomalies     []string   `json:"anomalies,omitempty"`
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty"`
}

// CancelConfirmation is returned when the user opens the cancel dialog
type CancelConfirmation struct {
	CampaignID      string `json:"campaign_id"`
	RemainingDays   int    `json:"remaining_days" example:"6"`
	EstimatedRefund int    `json:"estimated_refund" example:"600"`
}

// CampaignEvent is published by the remote worker when a campaign changes
type CampaignEvent struct {
	Type       string `json:"type" example:"daily_run_completed"`
	CampaignID string `json:"campaign_id"`
	DayNumber  int    `json:"day_number,omitempty"`
	Message    string `json:"message,omitempty"`
}
