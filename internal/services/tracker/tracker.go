package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/models"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/poller"
)

// DefaultInterval is how often an active or paused campaign is re-fetched
const DefaultInterval = 30 * time.Second

// StatusFetcher loads the latest campaign snapshot from the orchestration service
type StatusFetcher interface {
	GetCampaignStatus(ctx context.Context, campaignID string) (*models.Campaign, error)
}

// Options tunes a Tracker
type Options struct {
	Interval time.Duration
	// IsFatal marks fetch errors that end tracking while no snapshot exists
	IsFatal func(error) bool
	Clock   clockwork.Clock
}

// State is the tracker's view of one campaign
type State = poller.State[*models.Campaign]

// Tracker keeps the latest observed status of one campaign. It polls while the
// campaign is active or paused and goes quiet once it is cancelled or completed.
// A failed poll keeps the last good snapshot and is retried on the next tick.
type Tracker struct {
	poller *poller.Poller[*models.Campaign]
}

// New creates a tracker; call Track to start polling a campaign
func New(fetcher StatusFetcher, opts Options) *Tracker {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	fetch := func(ctx context.Context, campaignID string) (*models.Campaign, error) {
		campaign, err := fetcher.GetCampaignStatus(ctx, campaignID)
		if err != nil {
			return nil, err
		}
		if err := campaign.Validate(); err != nil {
			return nil, fmt.Errorf("campaign %s: %w", campaignID, err)
		}
		return campaign, nil
	}

	return &Tracker{
		poller: poller.New(fetch, poller.Options[*models.Campaign]{
			Name:         "campaign-tracker",
			Interval:     opts.Interval,
			IsTerminal:   stopsPolling,
			RetryOnError: true,
			IsFatal:      opts.IsFatal,
			Clock:        opts.Clock,
		}),
	}
}

// stopsPolling ends the schedule for anything that is not active or paused
func stopsPolling(c *models.Campaign) bool {
	return c == nil || !c.Status.IsPollable()
}

// Track starts polling campaignID, replacing any campaign tracked before
func (t *Tracker) Track(campaignID string) {
	t.poller.Subscribe(campaignID)
}

// Refresh fetches immediately without disturbing the polling schedule
func (t *Tracker) Refresh(ctx context.Context) (State, error) {
	return t.poller.Refresh(ctx)
}

// Status returns the latest tracked state
func (t *Tracker) Status() State {
	return t.poller.Snapshot()
}

// CampaignID returns the campaign currently tracked
func (t *Tracker) CampaignID() string {
	return t.poller.Snapshot().SubjectID
}

// Watch streams state changes until the returned func is called
func (t *Tracker) Watch() (<-chan State, func()) {
	return t.poller.Watch()
}

// WatcherCount returns the number of active watchers
func (t *Tracker) WatcherCount() int {
	return t.poller.WatcherCount()
}

// Stop ends polling and releases watchers
func (t *Tracker) Stop() {
	t.poller.Close()
}
