package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// Key identifies one user's view of one campaign
type Key struct {
	UserID     string
	CampaignID string
}

// RegistryOptions tunes a Registry
type RegistryOptions struct {
	// IdleTTL is how long an unwatched tracker survives without being accessed
	IdleTTL       time.Duration
	SweepInterval time.Duration
	Tracker       Options
	// OnEvict is called after a tracker has been stopped and removed
	OnEvict func(Key)
}

type entry struct {
	tracker    *Tracker
	lastAccess time.Time
}

// Registry owns one tracker per user and campaign so that every dashboard view
// keeps its own independent snapshot instead of sharing process-wide state.
type Registry struct {
	opts  RegistryOptions
	clock clockwork.Clock

	mu       sync.Mutex
	entries  map[Key]*entry
	stopChan chan struct{}
	stopped  chan struct{}
}

// NewRegistry creates an empty registry
func NewRegistry(opts RegistryOptions) *Registry {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 10 * time.Minute
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	if opts.Tracker.Clock == nil {
		opts.Tracker.Clock = clockwork.NewRealClock()
	}

	return &Registry{
		opts:    opts,
		clock:   opts.Tracker.Clock,
		entries: make(map[Key]*entry),
	}
}

// Get returns the tracker for key, creating and starting it with fetcher if needed
func (r *Registry) Get(key Key, fetcher StatusFetcher) *Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[key]; ok {
		e.lastAccess = r.clock.Now()
		return e.tracker
	}

	t := New(fetcher, r.opts.Tracker)
	t.Track(key.CampaignID)
	r.entries[key] = &entry{tracker: t, lastAccess: r.clock.Now()}

	logrus.Infof("Started tracking campaign %s for user %s (trackers: %d)", key.CampaignID, key.UserID, len(r.entries))
	return t
}

// Lookup returns an existing tracker without creating one
func (r *Registry) Lookup(key Key) (*Tracker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	e.lastAccess = r.clock.Now()
	return e.tracker, true
}

// Len returns the number of live trackers
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// RefreshCampaign triggers an immediate refresh on every tracker following campaignID.
// It returns the keys whose refresh succeeded with a snapshot, so callers only
// reach users the orchestration service still shows the campaign to.
func (r *Registry) RefreshCampaign(ctx context.Context, campaignID string) []Key {
	r.mu.Lock()
	var keys []Key
	var trackers []*Tracker
	for key, e := range r.entries {
		if key.CampaignID == campaignID {
			keys = append(keys, key)
			trackers = append(trackers, e.tracker)
		}
	}
	r.mu.Unlock()

	var refreshed []Key
	for i, t := range trackers {
		state, err := t.Refresh(ctx)
		if err != nil {
			logrus.Warnf("Failed to refresh campaign %s for user %s: %v", campaignID, keys[i].UserID, err)
			continue
		}
		if state.HasValue {
			refreshed = append(refreshed, keys[i])
		}
	}
	return refreshed
}

// Remove stops t and drops it if it is still the tracker registered for key
func (r *Registry) Remove(key Key, t *Tracker) bool {
	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok || e.tracker != t {
		r.mu.Unlock()
		return false
	}
	delete(r.entries, key)
	r.mu.Unlock()

	t.Stop()
	if r.opts.OnEvict != nil {
		r.opts.OnEvict(key)
	}
	logrus.Infof("Stopped tracking campaign %s for user %s", key.CampaignID, key.UserID)
	return true
}

// Start runs the idle sweeper in the background
func (r *Registry) Start() {
	r.mu.Lock()
	if r.stopChan != nil {
		r.mu.Unlock()
		return
	}
	r.stopChan = make(chan struct{})
	r.stopped = make(chan struct{})
	stopChan, stopped := r.stopChan, r.stopped
	r.mu.Unlock()

	go r.run(stopChan, stopped)
	logrus.Infof("Campaign tracker sweeper started (idle ttl: %v)", r.opts.IdleTTL)
}

// Stop halts the sweeper and every tracker
func (r *Registry) Stop() {
	r.mu.Lock()
	stopChan, stopped := r.stopChan, r.stopped
	r.stopChan = nil
	entries := r.entries
	r.entries = make(map[Key]*entry)
	r.mu.Unlock()

	if stopChan != nil {
		close(stopChan)
		<-stopped
	}
	for _, e := range entries {
		e.tracker.Stop()
	}
	logrus.Info("Campaign tracker registry stopped")
}

func (r *Registry) run(stopChan, stopped chan struct{}) {
	defer close(stopped)

	ticker := r.clock.NewTicker(r.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			r.Sweep()
		case <-stopChan:
			return
		}
	}
}

// Sweep stops trackers nobody has watched or accessed within the idle TTL
func (r *Registry) Sweep() int {
	now := r.clock.Now()

	r.mu.Lock()
	var evicted []Key
	var trackers []*Tracker
	for key, e := range r.entries {
		if e.tracker.WatcherCount() > 0 {
			e.lastAccess = now
			continue
		}
		if now.Sub(e.lastAccess) > r.opts.IdleTTL {
			evicted = append(evicted, key)
			trackers = append(trackers, e.tracker)
			delete(r.entries, key)
		}
	}
	r.mu.Unlock()

	for i, t := range trackers {
		t.Stop()
		if r.opts.OnEvict != nil {
			r.opts.OnEvict(evicted[i])
		}
	}

	if len(evicted) > 0 {
		logrus.Infof("Tracker sweep completed: evicted %d idle tracker(s)", len(evicted))
	} else {
		logrus.Debug("Tracker sweep completed: no idle trackers")
	}
	return len(evicted)
}
