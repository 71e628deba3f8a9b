package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/models"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/orchestration"
)

var (
	// ErrActionInProgress rejects an action while another one is pending for the same campaign
	ErrActionInProgress = errors.New("action already in progress")
	// ErrMalformedPayload is returned when a successful response carries no usable campaign
	ErrMalformedPayload = errors.New("malformed campaign payload")
	// ErrUnknownAction is returned for anything other than pause, resume or cancel
	ErrUnknownAction = errors.New("unknown campaign action")
)

// ActionPerformer sends a control action to the orchestration service
type ActionPerformer interface {
	PerformAction(ctx context.Context, campaignID string, action models.CampaignAction) (*models.Campaign, error)
}

// ActionError is a failed pause, resume or cancel
type ActionError struct {
	Action     models.CampaignAction
	CampaignID string
	// Message is safe to show to the user
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	return e.Message
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// Dispatcher issues control actions, allowing at most one in flight per campaign.
// It keeps no campaign state; callers refresh their tracker after a success.
type Dispatcher struct {
	performer ActionPerformer

	mu       sync.Mutex
	inflight map[string]models.CampaignAction
	lastErr  map[string]*ActionError
}

// New creates a dispatcher that sends actions through performer
func New(performer ActionPerformer) *Dispatcher {
	return &Dispatcher{
		performer: performer,
		inflight:  make(map[string]models.CampaignAction),
		lastErr:   make(map[string]*ActionError),
	}
}

// Perform sends action for campaignID and returns the server's updated snapshot.
// A second call for the same campaign while one is pending fails with ErrActionInProgress.
func (d *Dispatcher) Perform(ctx context.Context, campaignID string, action models.CampaignAction) (*models.Campaign, error) {
	if !action.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	d.mu.Lock()
	if pending, busy := d.inflight[campaignID]; busy {
		d.mu.Unlock()
		logrus.Warnf("Rejected %s for campaign %s: %s still in flight", action, campaignID, pending)
		return nil, fmt.Errorf("%w: %s", ErrActionInProgress, pending)
	}
	d.inflight[campaignID] = action
	d.mu.Unlock()

	campaign, err := d.performer.PerformAction(ctx, campaignID, action)
	if err == nil {
		if verr := campaign.Validate(); verr != nil {
			sentry.CaptureException(fmt.Errorf("%s campaign %s: %w", action, campaignID, verr))
			err = fmt.Errorf("%w: %w", ErrMalformedPayload, verr)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inflight, campaignID)

	if err != nil {
		actionErr := newActionError(campaignID, action, err)
		d.lastErr[campaignID] = actionErr
		logrus.Errorf("Failed to %s campaign %s: %v", action, campaignID, err)
		return nil, actionErr
	}

	delete(d.lastErr, campaignID)
	logrus.Infof("Campaign %s %s succeeded, status is now %s", campaignID, action, campaign.Status)
	return campaign, nil
}

// Pending returns the action currently in flight for campaignID
func (d *Dispatcher) Pending(campaignID string) (models.CampaignAction, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	action, ok := d.inflight[campaignID]
	return action, ok
}

// LastError returns the error of the most recent failed action, cleared by the next success
func (d *Dispatcher) LastError(campaignID string) *ActionError {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr[campaignID]
}

func newActionError(campaignID string, action models.CampaignAction, err error) *ActionError {
	message := fmt.Sprintf("Failed to %s campaign", action)

	var apiErr *orchestration.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}

	return &ActionError{
		Action:     action,
		CampaignID: campaignID,
		Message:    message,
		Err:        err,
	}
}

// EstimateRefund is the advisory refund shown before cancelling:
// the reserved credits of the days that have not run yet, rounded.
func EstimateRefund(durationDays, currentDay, totalCreditsReserved int) int {
	if durationDays <= 0 || totalCreditsReserved <= 0 {
		return 0
	}
	remaining := durationDays - currentDay
	if remaining <= 0 {
		return 0
	}
	if remaining > durationDays {
		remaining = durationDays
	}
	perDay := float64(totalCreditsReserved) / float64(durationDays)
	return int(math.Round(float64(remaining) * perDay))
}

// RemainingDays returns how many days have not started yet
func RemainingDays(durationDays, currentDay int) int {
	remaining := durationDays - currentDay
	if remaining < 0 {
		return 0
	}
	if remaining > durationDays {
		return durationDays
	}
	return remaining
}
