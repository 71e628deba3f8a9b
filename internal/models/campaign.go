package models

import (
	"errors"
	"fmt"
	"time"
)

// CampaignStatus is the lifecycle state of a multi-day campaign
type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCancelled CampaignStatus = "cancelled"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// IsValid reports whether the status is one the dashboard understands
func (s CampaignStatus) IsValid() bool {
	switch s {
	case CampaignStatusActive, CampaignStatusPaused, CampaignStatusCancelled, CampaignStatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s CampaignStatus) IsTerminal() bool {
	return s == CampaignStatusCancelled || s == CampaignStatusCompleted
}

// IsPollable reports whether the remote worker may still change the campaign
func (s CampaignStatus) IsPollable() bool {
	return s == CampaignStatusActive || s == CampaignStatusPaused
}

// CanTransitionTo encodes create -> active -> {paused <-> active} -> {completed | cancelled}
func (s CampaignStatus) CanTransitionTo(next CampaignStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case CampaignStatusActive:
		return next == CampaignStatusPaused || next == CampaignStatusCancelled || next == CampaignStatusCompleted
	case CampaignStatusPaused:
		return next == CampaignStatusActive || next == CampaignStatusCancelled
	}
	return false
}

// CampaignAction is a control command accepted by the orchestration service
type CampaignAction string

const (
	CampaignActionPause  CampaignAction = "pause"
	CampaignActionResume CampaignAction = "resume"
	CampaignActionCancel CampaignAction = "cancel"
)

// IsValid reports whether the action is a known control command
func (a CampaignAction) IsValid() bool {
	switch a {
	case CampaignActionPause, CampaignActionResume, CampaignActionCancel:
		return true
	}
	return false
}

// AvailableActions returns the control actions a campaign in this status accepts
func (s CampaignStatus) AvailableActions() []CampaignAction {
	switch s {
	case CampaignStatusActive:
		return []CampaignAction{CampaignActionPause, CampaignActionCancel}
	case CampaignStatusPaused:
		return []CampaignAction{CampaignActionResume, CampaignActionCancel}
	}
	return []CampaignAction{}
}

// Campaign is the client-side snapshot of a remote multi-day campaign.
// The orchestration service owns it; the dashboard only caches the latest copy.
type Campaign struct {
	CampaignID           string         `json:"campaign_id" example:"8f14e45f-ceea-467f-a0e6-2f6c1d9b2a51"`
	Status               CampaignStatus `json:"status" example:"active"`
	DurationDays         int            `json:"duration_days" example:"10"`
	CurrentDay           int            `json:"current_day" example:"4"`
	TotalCreditsReserved int            `json:"total_credits_reserved" example:"1000"`
	CreditsConsumed      int            `json:"credits_consumed" example:"300"`
	CreditsRefunded      int            `json:"credits_refunded" example:"0"`
	NextRunAt            *time.Time     `json:"next_run_at,omitempty" example:"2025-08-14T09:00:00Z"`
	DailyRuns            []DailyRun     `json:"daily_runs"`
}

// MaxCampaignDays bounds duration_days accepted from the orchestration service
const MaxCampaignDays = 366

// ErrInvalidCampaign is returned when a payload cannot be used as a campaign snapshot
var ErrInvalidCampaign = errors.New("invalid campaign payload")

// Validate checks the fields downstream state depends on
func (c *Campaign) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: empty snapshot", ErrInvalidCampaign)
	}
	if c.CampaignID == "" {
		return fmt.Errorf("%w: missing campaign_id", ErrInvalidCampaign)
	}
	if !c.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidCampaign, c.Status)
	}
	if c.DurationDays < 1 || c.DurationDays > MaxCampaignDays {
		return fmt.Errorf("%w: duration_days %d out of range 1..%d", ErrInvalidCampaign, c.DurationDays, MaxCampaignDays)
	}
	if c.CurrentDay < 0 {
		return fmt.Errorf("%w: negative current_day %d", ErrInvalidCampaign, c.CurrentDay)
	}
	if c.TotalCreditsReserved < 0 || c.CreditsConsumed < 0 || c.CreditsRefunded < 0 {
		return fmt.Errorf("%w: negative credit counter", ErrInvalidCampaign)
	}
	return nil
}

// RunForDay returns the daily run scheduled for the given day, if any
func (c *Campaign) RunForDay(day int) (DailyRun, bool) {
	for _, run := range c.DailyRuns {
		if run.DayNumber == day {
			return run, true
		}
	}
	return DailyRun{}, false
}
