package models

import "time"

// DailyRunStatus is the state of one day's execution slice
type DailyRunStatus string

const (
	DailyRunStatusPending   DailyRunStatus = "pending"
	DailyRunStatusScheduled DailyRunStatus = "scheduled"
	DailyRunStatusRunning   DailyRunStatus = "running"
	DailyRunStatusCompleted DailyRunStatus = "completed"
	DailyRunStatusFailed    DailyRunStatus = "failed"
	DailyRunStatusSkipped   DailyRunStatus = "skipped"
)

// HasCounters reports whether the run's contact/sequence/credit counters are meaningful
func (s DailyRunStatus) HasCounters() bool {
	return s == DailyRunStatusRunning || s == DailyRunStatusCompleted
}

// DailyRun represents one day of a multi-day campaign
type DailyRun struct {
	DayNumber          int            `json:"day_number" example:"1"`
	Status             DailyRunStatus `json:"status" example:"completed"`
	ContactsDiscovered int            `json:"contacts_discovered" example:"50"`
	SequencesCreated   int            `json:"sequences_created" example:"48"`
	CreditsUsed        int            `json:"credits_used" example:"100"`
	ScheduledAt        *time.Time     `json:"scheduled_at,omitempty" example:"2025-08-14T09:00:00Z"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty" example:"2025-08-14T09:42:00Z"`
	ErrorMessage       string         `json:"error_message,omitempty"`
}

// DailyRunHistoryRow is one row of the daily run history table
type DailyRunHistoryRow struct {
	DayNumber          int            `json:"day_number" example:"1"`
	Status             DailyRunStatus `json:"status" example:"completed"`
	ContactsDiscovered int            `json:"contacts_discovered" example:"50"`
	SequencesCreated   int            `json:"sequences_created" example:"48"`
	CreditsUsed        int            `json:"credits_used" example:"100"`
	ScheduledAt        *time.Time     `json:"scheduled_at,omitempty"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	ErrorMessage       string         `json:"error_message,omitempty"`
}

// DailyRunHistoryResponse is returned by the history endpoint
type DailyRunHistoryResponse struct {
	CampaignID string               `json:"campaign_id"`
	Rows       []DailyRunHistoryRow `json:"rows"`
}
