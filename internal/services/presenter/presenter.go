// Package presenter composes a campaign tracker and an action dispatcher into
// the view a dashboard renders, and routes user actions back through them.
package presenter

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/models"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/dispatcher"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/tracker"
)

var (
	// ErrActionUnavailable is returned when the campaign's status does not accept the action
	ErrActionUnavailable = errors.New("action not available for current campaign status")
	// ErrCancelNotRequested is returned by ConfirmCancel without an open confirmation
	ErrCancelNotRequested = errors.New("cancellation has not been requested")
	// ErrNoSnapshot is returned when no campaign status has been loaded yet
	ErrNoSnapshot = errors.New("campaign status not loaded yet")
)

// StatusSource is the tracked campaign state
type StatusSource interface {
	Status() tracker.State
	Refresh(ctx context.Context) (tracker.State, error)
}

// ActionRunner dispatches control actions
type ActionRunner interface {
	Perform(ctx context.Context, campaignID string, action models.CampaignAction) (*models.Campaign, error)
	Pending(campaignID string) (models.CampaignAction, bool)
	LastError(campaignID string) *dispatcher.ActionError
}

// Presenter renders one campaign for one user. The cancel confirmation flag is
// local to the presenter and is never sent anywhere.
type Presenter struct {
	source     StatusSource
	dispatcher ActionRunner

	mu               sync.Mutex
	confirmingCancel bool
}

// New creates a presenter over a tracker and a dispatcher
func New(source StatusSource, runner ActionRunner) *Presenter {
	return &Presenter{
		source:     source,
		dispatcher: runner,
	}
}

// View returns the current presentation of the tracked campaign
func (p *Presenter) View() models.CampaignView {
	p.mu.Lock()
	confirming := p.confirmingCancel
	p.mu.Unlock()

	return Compose(p.source.Status(), p.dispatcher, confirming)
}

// Pause pauses an active campaign
func (p *Presenter) Pause(ctx context.Context) (models.CampaignView, error) {
	return p.perform(ctx, models.CampaignActionPause)
}

// Resume resumes a paused campaign
func (p *Presenter) Resume(ctx context.Context) (models.CampaignView, error) {
	return p.perform(ctx, models.CampaignActionResume)
}

// RequestCancel opens the cancel confirmation with a refund estimate
func (p *Presenter) RequestCancel() (*models.CancelConfirmation, error) {
	campaign, err := p.current()
	if err != nil {
		return nil, err
	}
	if !allows(campaign.Status, models.CampaignActionCancel) {
		return nil, fmt.Errorf("%w: cannot cancel a %s campaign", ErrActionUnavailable, campaign.Status)
	}

	p.mu.Lock()
	p.confirmingCancel = true
	p.mu.Unlock()

	return &models.CancelConfirmation{
		CampaignID:      campaign.CampaignID,
		RemainingDays:   dispatcher.RemainingDays(campaign.DurationDays, campaign.CurrentDay),
		EstimatedRefund: dispatcher.EstimateRefund(campaign.DurationDays, campaign.CurrentDay, campaign.TotalCreditsReserved),
	}, nil
}

// DismissCancel closes the cancel confirmation
func (p *Presenter) DismissCancel() models.CampaignView {
	p.mu.Lock()
	p.confirmingCancel = false
	p.mu.Unlock()
	return p.View()
}

// ConfirmCancel cancels the campaign. The confirmation stays open when the
// request fails so the user can retry.
func (p *Presenter) ConfirmCancel(ctx context.Context) (models.CampaignView, error) {
	p.mu.Lock()
	confirming := p.confirmingCancel
	p.mu.Unlock()
	if !confirming {
		return p.View(), ErrCancelNotRequested
	}

	view, err := p.perform(ctx, models.CampaignActionCancel)
	if err != nil {
		return view, err
	}

	p.mu.Lock()
	p.confirmingCancel = false
	p.mu.Unlock()
	return p.View(), nil
}

func (p *Presenter) perform(ctx context.Context, action models.CampaignAction) (models.CampaignView, error) {
	campaign, err := p.current()
	if err != nil {
		return p.View(), err
	}
	if !allows(campaign.Status, action) {
		return p.View(), fmt.Errorf("%w: cannot %s a %s campaign", ErrActionUnavailable, action, campaign.Status)
	}

	if _, err := p.dispatcher.Perform(ctx, campaign.CampaignID, action); err != nil {
		return p.View(), err
	}

	if _, err := p.source.Refresh(ctx); err != nil {
		logrus.Warnf("Refresh after %s of campaign %s failed: %v", action, campaign.CampaignID, err)
	}
	return p.View(), nil
}

func (p *Presenter) current() (*models.Campaign, error) {
	state := p.source.Status()
	if !state.HasValue || state.Value == nil {
		return nil, ErrNoSnapshot
	}
	return state.Value, nil
}

func allows(status models.CampaignStatus, action models.CampaignAction) bool {
	for _, a := range status.AvailableActions() {
		if a == action {
			return true
		}
	}
	return false
}

// Compose builds a view from a tracker state. runner may be nil.
func Compose(state tracker.State, runner ActionRunner, confirmingCancel bool) models.CampaignView {
	view := models.CampaignView{
		CampaignID:       state.SubjectID,
		HasSnapshot:      state.HasValue && state.Value != nil,
		Loading:          state.Loading,
		Days:             []models.DayIndicator{},
		AvailableActions: []models.CampaignAction{},
	}
	if state.Err != nil {
		view.PollError = state.Err.Error()
	}
	if !state.UpdatedAt.IsZero() {
		updated := state.UpdatedAt
		view.LastUpdatedAt = &updated
	}
	if runner != nil {
		if action, ok := runner.Pending(state.SubjectID); ok {
			view.PendingAction = action
		}
		if actionErr := runner.LastError(state.SubjectID); actionErr != nil {
			view.ActionError = actionErr.Message
		}
	}
	if !view.HasSnapshot {
		return view
	}

	c := state.Value
	view.Status = c.Status
	view.DurationDays = c.DurationDays
	view.CurrentDay = c.CurrentDay
	view.TotalCreditsReserved = c.TotalCreditsReserved
	view.CreditsConsumed = c.CreditsConsumed
	view.CreditsRefunded = c.CreditsRefunded
	view.NextRunAt = c.NextRunAt
	view.AvailableActions = c.Status.AvailableActions()

	view.ProgressFraction = fraction(c.CurrentDay, c.DurationDays)
	view.ProgressPercent = percent(view.ProgressFraction)
	view.CreditsFraction = fraction(c.CreditsConsumed, c.TotalCreditsReserved)
	view.CreditsPercent = percent(view.CreditsFraction)

	view.Days = DayIndicators(c)
	view.Anomalies = Anomalies(c)

	if confirmingCancel && allows(c.Status, models.CampaignActionCancel) {
		view.ConfirmingCancel = true
		view.EstimatedRefund = dispatcher.EstimateRefund(c.DurationDays, c.CurrentDay, c.TotalCreditsReserved)
	}
	return view
}

// DayIndicators returns one indicator per day 1..duration_days.
// Days without a daily run are pending.
func DayIndicators(c *models.Campaign) []models.DayIndicator {
	total := c.DurationDays
	if total < 0 {
		total = 0
	}
	if total > models.MaxCampaignDays {
		total = models.MaxCampaignDays
	}

	days := make([]models.DayIndicator, 0, total)
	for day := 1; day <= total; day++ {
		indicator := models.DayIndicator{
			DayNumber: day,
			Status:    models.DailyRunStatusPending,
			IsCurrent: day == c.CurrentDay && c.Status.IsPollable(),
		}
		if run, ok := c.RunForDay(day); ok {
			if run.Status != "" {
				indicator.Status = run.Status
			}
			if run.Status.HasCounters() {
				indicator.ContactsDiscovered = run.ContactsDiscovered
				indicator.SequencesCreated = run.SequencesCreated
				indicator.CreditsUsed = run.CreditsUsed
			}
		}
		days = append(days, indicator)
	}
	return days
}

// Anomalies lists snapshot inconsistencies worth flagging. They are displayed, never enforced.
func Anomalies(c *models.Campaign) []string {
	var anomalies []string

	running := 0
	for _, run := range c.DailyRuns {
		if run.Status == models.DailyRunStatusRunning {
			running++
		}
	}
	if running > 1 {
		anomalies = append(anomalies, fmt.Sprintf("%d daily runs are running at the same time", running))
	}
	if c.CreditsConsumed > c.TotalCreditsReserved {
		anomalies = append(anomalies, fmt.Sprintf("credits consumed (%d) exceed credits reserved (%d)", c.CreditsConsumed, c.TotalCreditsReserved))
	}
	if c.CreditsRefunded > 0 && c.Status != models.CampaignStatusCancelled {
		anomalies = append(anomalies, fmt.Sprintf("credits refunded on a %s campaign", c.Status))
	}
	if c.CurrentDay > c.DurationDays {
		anomalies = append(anomalies, fmt.Sprintf("current day %d is past the campaign duration of %d days", c.CurrentDay, c.DurationDays))
	}
	return anomalies
}

func fraction(part, whole int) float64 {
	if whole <= 0 || part <= 0 {
		return 0
	}
	f := float64(part) / float64(whole)
	if f > 1 {
		return 1
	}
	return f
}

func percent(f float64) int {
	return int(math.Round(f * 100))
}
