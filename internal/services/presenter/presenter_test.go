package presenter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/models"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/dispatcher"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/tracker"
)

type fakeSource struct {
	mu        sync.Mutex
	state     tracker.State
	refreshes int
	next      *models.Campaign
}

func (f *fakeSource) Status() tracker.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSource) Refresh(context.Context) (tracker.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.next != nil {
		f.state.Value = f.next
	}
	return f.state, nil
}

type fakePerformer struct {
	calls int
	err   error
}

func (f *fakePerformer) PerformAction(_ context.Context, id string, action models.CampaignAction) (*models.Campaign, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.Campaign{CampaignID: id, Status: models.CampaignStatusPaused, DurationDays: 10}, nil
}

func campaign(status models.CampaignStatus) *models.Campaign {
	return &models.Campaign{
		CampaignID:           "c-1",
		Status:               status,
		DurationDays:         10,
		CurrentDay:           4,
		TotalCreditsReserved: 1000,
		CreditsConsumed:      300,
		DailyRuns: []models.DailyRun{
			{DayNumber: 3, Status: models.DailyRunStatusCompleted, ContactsDiscovered: 50, SequencesCreated: 48, CreditsUsed: 100},
			{DayNumber: 1, Status: models.DailyRunStatusCompleted, ContactsDiscovered: 40, CreditsUsed: 100},
			{DayNumber: 4, Status: models.DailyRunStatusScheduled, ContactsDiscovered: 99},
		},
	}
}

func sourceFor(c *models.Campaign) *fakeSource {
	return &fakeSource{state: tracker.State{SubjectID: c.CampaignID, Value: c, HasValue: true, UpdatedAt: time.Now()}}
}

func TestViewComputesProgress(t *testing.T) {
	view := New(sourceFor(campaign(models.CampaignStatusActive)), dispatcher.New(&fakePerformer{})).View()

	assert.True(t, view.HasSnapshot)
	assert.InDelta(t, 0.4, view.ProgressFraction, 1e-9)
	assert.Equal(t, 40, view.ProgressPercent)
	assert.InDelta(t, 0.3, view.CreditsFraction, 1e-9)
	assert.Equal(t, 30, view.CreditsPercent)
	assert.Equal(t, []models.CampaignAction{models.CampaignActionPause, models.CampaignActionCancel}, view.AvailableActions)
	assert.Empty(t, view.Anomalies)
	assert.NotNil(t, view.LastUpdatedAt)
}

func TestViewGuardsZeroReservedCredits(t *testing.T) {
	c := campaign(models.CampaignStatusActive)
	c.TotalCreditsReserved = 0
	c.CreditsConsumed = 0

	view := Compose(sourceFor(c).Status(), nil, false)
	assert.Equal(t, 0.0, view.CreditsFraction)
	assert.Equal(t, 0, view.CreditsPercent)
}

func TestDayIndicatorsDefaultToPending(t *testing.T) {
	days := DayIndicators(campaign(models.CampaignStatusActive))
	require.Len(t, days, 10)

	for i, d := range days {
		assert.Equal(t, i+1, d.DayNumber)
	}
	assert.Equal(t, models.DailyRunStatusCompleted, days[0].Status)
	assert.Equal(t, 40, days[0].ContactsDiscovered)

	assert.Equal(t, models.DailyRunStatusPending, days[1].Status)
	assert.Zero(t, days[1].ContactsDiscovered)
	assert.Zero(t, days[1].CreditsUsed)

	assert.Equal(t, 50, days[2].ContactsDiscovered)

	assert.Equal(t, models.DailyRunStatusScheduled, days[3].Status)
	assert.True(t, days[3].IsCurrent)
	assert.Zero(t, days[3].ContactsDiscovered, "counters are only shown once a run has started")

	for _, d := range days[4:] {
		assert.Equal(t, models.DailyRunStatusPending, d.Status)
	}
}

func TestDayIndicatorsBoundedForOutOfRangeDurations(t *testing.T) {
	c := campaign(models.CampaignStatusActive)

	c.DurationDays = -1
	assert.NotPanics(t, func() { Compose(sourceFor(c).Status(), nil, false) })
	assert.Empty(t, DayIndicators(c))

	c.DurationDays = 1_000_000_000_000
	assert.Len(t, DayIndicators(c), models.MaxCampaignDays)
}

func TestAvailableActionsByStatus(t *testing.T) {
	tests := map[models.CampaignStatus][]models.CampaignAction{
		models.CampaignStatusActive:    {models.CampaignActionPause, models.CampaignActionCancel},
		models.CampaignStatusPaused:    {models.CampaignActionResume, models.CampaignActionCancel},
		models.CampaignStatusCompleted: {},
		models.CampaignStatusCancelled: {},
	}
	for status, want := range tests {
		view := Compose(sourceFor(campaign(status)).Status(), nil, false)
		assert.Equal(t, want, view.AvailableActions, string(status))
	}
}

func TestAnomaliesAreFlaggedNotFatal(t *testing.T) {
	c := campaign(models.CampaignStatusActive)
	c.DailyRuns = append(c.DailyRuns,
		models.DailyRun{DayNumber: 5, Status: models.DailyRunStatusRunning},
		models.DailyRun{DayNumber: 6, Status: models.DailyRunStatusRunning},
	)
	c.CreditsConsumed = 1200
	c.CreditsRefunded = 10

	view := Compose(sourceFor(c).Status(), nil, false)
	assert.Len(t, view.Anomalies, 3)
	assert.Equal(t, 1.0, view.CreditsFraction)
	assert.Len(t, view.Days, 10)
}

func TestViewWithoutSnapshot(t *testing.T) {
	src := &fakeSource{state: tracker.State{SubjectID: "c-1", Loading: true, Err: errors.New("timeout")}}
	view := New(src, dispatcher.New(&fakePerformer{})).View()

	assert.False(t, view.HasSnapshot)
	assert.True(t, view.Loading)
	assert.Equal(t, "timeout", view.PollError)
	assert.Empty(t, view.Days)
	assert.Empty(t, view.AvailableActions)
}

func TestPauseRefreshesTracker(t *testing.T) {
	src := sourceFor(campaign(models.CampaignStatusActive))
	src.next = campaign(models.CampaignStatusPaused)
	perf := &fakePerformer{}
	p := New(src, dispatcher.New(perf))

	view, err := p.Pause(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, perf.calls)
	assert.Equal(t, 1, src.refreshes)
	assert.Equal(t, models.CampaignStatusPaused, view.Status)
	assert.Equal(t, []models.CampaignAction{models.CampaignActionResume, models.CampaignActionCancel}, view.AvailableActions)
}

func TestUnavailableActionIsNotDispatched(t *testing.T) {
	perf := &fakePerformer{}
	p := New(sourceFor(campaign(models.CampaignStatusPaused)), dispatcher.New(perf))

	_, err := p.Pause(context.Background())
	assert.ErrorIs(t, err, ErrActionUnavailable)
	assert.Zero(t, perf.calls)

	p = New(sourceFor(campaign(models.CampaignStatusCompleted)), dispatcher.New(perf))
	_, err = p.RequestCancel()
	assert.ErrorIs(t, err, ErrActionUnavailable)
}

func TestActionWithoutSnapshot(t *testing.T) {
	p := New(&fakeSource{state: tracker.State{SubjectID: "c-1"}}, dispatcher.New(&fakePerformer{}))
	_, err := p.Resume(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestCancelConfirmationFlow(t *testing.T) {
	src := sourceFor(campaign(models.CampaignStatusActive))
	cancelled := campaign(models.CampaignStatusCancelled)
	cancelled.CreditsRefunded = 600
	src.next = cancelled
	perf := &fakePerformer{}
	p := New(src, dispatcher.New(perf))

	_, err := p.ConfirmCancel(context.Background())
	assert.ErrorIs(t, err, ErrCancelNotRequested)
	assert.Zero(t, perf.calls)

	confirmation, err := p.RequestCancel()
	require.NoError(t, err)
	assert.Equal(t, 6, confirmation.RemainingDays)
	assert.Equal(t, 600, confirmation.EstimatedRefund)

	view := p.View()
	assert.True(t, view.ConfirmingCancel)
	assert.Equal(t, 600, view.EstimatedRefund)

	view = p.DismissCancel()
	assert.False(t, view.ConfirmingCancel)

	_, err = p.RequestCancel()
	require.NoError(t, err)
	view, err = p.ConfirmCancel(context.Background())
	require.NoError(t, err)
	assert.False(t, view.ConfirmingCancel)
	assert.Equal(t, models.CampaignStatusCancelled, view.Status)
	assert.Equal(t, 600, view.CreditsRefunded)
	assert.Equal(t, 1, src.refreshes)
}

func TestFailedCancelKeepsConfirmationOpen(t *testing.T) {
	perf := &fakePerformer{err: errors.New("connection reset")}
	p := New(sourceFor(campaign(models.CampaignStatusActive)), dispatcher.New(perf))

	_, err := p.RequestCancel()
	require.NoError(t, err)

	view, err := p.ConfirmCancel(context.Background())
	require.Error(t, err)
	assert.True(t, view.ConfirmingCancel)
	assert.Equal(t, "Failed to cancel campaign", view.ActionError)
}
