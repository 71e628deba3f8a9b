// Package poller implements a timer-driven subscription that re-fetches a
// remote resource until it reaches a terminal state or is torn down.
//
// Each subscription owns a generation number. Any response that comes back
// after the subject changed or the subscription stopped carries an old
// generation and is dropped. Within one generation responses are applied in
// the order their requests were issued, so a slow early request can never
// overwrite the result of a later one.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotSubscribed is returned by Refresh when no subject is being polled
	ErrNotSubscribed = errors.New("poller is not subscribed")
	// ErrSuperseded is returned by Refresh when the subject changed while the request was in flight
	ErrSuperseded = errors.New("subscription changed while refreshing")
)

// FetchFunc loads the latest value for a subject
type FetchFunc[T any] func(ctx context.Context, subjectID string) (T, error)

// Options configures a Poller
type Options[T any] struct {
	// Name is used in log lines only
	Name     string
	Interval time.Duration
	// IsTerminal stops scheduling once it returns true for a fetched value
	IsTerminal func(T) bool
	// RetryOnError keeps polling after a failed fetch; otherwise the loop stops
	RetryOnError bool
	// IsFatal stops the loop despite RetryOnError when a fetch fails before any
	// value was loaded and retrying cannot help
	IsFatal func(error) bool
	Clock   clockwork.Clock
}

// State is a point-in-time view of a subscription
type State[T any] struct {
	SubjectID string
	Value     T
	HasValue  bool
	Loading   bool
	Err       error
	Terminal  bool
	UpdatedAt time.Time
}

// Poller polls a single subject at a time
type Poller[T any] struct {
	name         string
	fetch        FetchFunc[T]
	interval     time.Duration
	isTerminal   func(T) bool
	retryOnError bool
	isFatal      func(error) bool
	clock        clockwork.Clock

	mu         sync.Mutex
	subscribed bool
	generation uint64
	issued     uint64
	applied    uint64
	inflight   int
	state      State[T]
	cancel     context.CancelFunc
	done       chan struct{}
	watchers   map[chan State[T]]struct{}
}

// New creates a poller; call Subscribe to start polling
func New[T any](fetch FetchFunc[T], opts Options[T]) *Poller[T] {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.Name == "" {
		opts.Name = "poller"
	}

	return &Poller[T]{
		name:         opts.Name,
		fetch:        fetch,
		interval:     opts.Interval,
		isTerminal:   opts.IsTerminal,
		retryOnError: opts.RetryOnError,
		isFatal:      opts.IsFatal,
		clock:        opts.Clock,
		watchers:     make(map[chan State[T]]struct{}),
	}
}

// Subscribe starts polling subjectID, fetching immediately.
// Switching to a new subject cancels the previous subscription and clears its state.
// Subscribing again to the current subject is a no-op.
func (p *Poller[T]) Subscribe(subjectID string) {
	p.mu.Lock()
	if p.subscribed && p.state.SubjectID == subjectID {
		p.mu.Unlock()
		return
	}

	p.stopLocked()
	p.generation++
	gen := p.generation

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.subscribed = true
	p.inflight = 0
	p.applied = p.issued
	p.state = State[T]{SubjectID: subjectID}
	p.notifyLocked()
	p.mu.Unlock()

	logrus.Debugf("[%s] subscribed to %s", p.name, subjectID)
	go p.run(ctx, gen, subjectID, done)
}

// Unsubscribe stops polling and waits for the polling goroutine to exit.
// Any response still in flight is discarded.
func (p *Poller[T]) Unsubscribe() {
	p.mu.Lock()
	done := p.done
	p.stopLocked()
	p.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Close unsubscribes and releases every watcher
func (p *Poller[T]) Close() {
	p.Unsubscribe()

	p.mu.Lock()
	defer p.mu.Unlock()
	for ch := range p.watchers {
		delete(p.watchers, ch)
		close(ch)
	}
}

// Refresh performs an immediate fetch outside the interval schedule.
// It issues no request once the subscription has reached a terminal value.
func (p *Poller[T]) Refresh(ctx context.Context) (State[T], error) {
	p.mu.Lock()
	if !p.subscribed {
		p.mu.Unlock()
		return State[T]{}, ErrNotSubscribed
	}
	gen := p.generation
	subjectID := p.state.SubjectID
	p.mu.Unlock()

	state, ok, fetchErr := p.execute(ctx, gen, subjectID)
	if !ok {
		return p.Snapshot(), ErrSuperseded
	}
	return state, fetchErr
}

// Snapshot returns the current state
func (p *Poller[T]) Snapshot() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Watch returns a channel that receives the latest state after every change.
// Slow readers only see the most recent state. Call the returned func to stop watching.
func (p *Poller[T]) Watch() (<-chan State[T], func()) {
	ch := make(chan State[T], 1)

	p.mu.Lock()
	p.watchers[ch] = struct{}{}
	ch <- p.state
	p.mu.Unlock()

	var once sync.Once
	unwatch := func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if _, ok := p.watchers[ch]; ok {
				delete(p.watchers, ch)
				close(ch)
			}
		})
	}
	return ch, unwatch
}

// WatcherCount returns the number of active watchers
func (p *Poller[T]) WatcherCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.watchers)
}

func (p *Poller[T]) run(ctx context.Context, gen uint64, subjectID string, done chan struct{}) {
	defer close(done)

	for {
		state, ok, fetchErr := p.execute(ctx, gen, subjectID)
		if !ok {
			return
		}
		if state.Terminal {
			logrus.Debugf("[%s] %s reached a terminal state, polling stopped", p.name, subjectID)
			return
		}
		if fetchErr != nil {
			if !state.HasValue && p.isFatal != nil && p.isFatal(fetchErr) {
				logrus.Warnf("[%s] polling %s stopped, nothing to retry: %v", p.name, subjectID, fetchErr)
				return
			}
			if !p.retryOnError {
				logrus.Warnf("[%s] polling %s stopped after error: %v", p.name, subjectID, fetchErr)
				return
			}
			logrus.Warnf("[%s] failed to fetch %s, retrying in %v: %v", p.name, subjectID, p.interval, fetchErr)
		}

		timer := p.clock.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.Chan():
		}
	}
}

// execute issues one fetch and applies its result if it is still current.
// ok is false when the subscription changed before or during the request.
func (p *Poller[T]) execute(ctx context.Context, gen uint64, subjectID string) (State[T], bool, error) {
	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		return State[T]{}, false, nil
	}
	if p.state.Terminal {
		state := p.state
		p.mu.Unlock()
		return state, true, nil
	}
	p.issued++
	seq := p.issued
	p.inflight++
	p.state.Loading = true
	p.notifyLocked()
	p.mu.Unlock()

	value, fetchErr := p.fetch(ctx, subjectID)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		logrus.Debugf("[%s] discarding response for %s from a stale subscription", p.name, subjectID)
		return State[T]{}, false, nil
	}

	p.inflight--
	p.state.Loading = p.inflight > 0

	if seq <= p.applied {
		// a request issued later has already been applied
		p.notifyLocked()
		return p.state, true, fetchErr
	}
	p.applied = seq

	if fetchErr != nil {
		p.state.Err = fetchErr
	} else {
		p.state.Value = value
		p.state.HasValue = true
		p.state.Err = nil
		p.state.UpdatedAt = p.clock.Now()
		if p.isTerminal != nil && p.isTerminal(value) {
			p.state.Terminal = true
		}
	}
	p.notifyLocked()
	return p.state, true, fetchErr
}

func (p *Poller[T]) stopLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.subscribed {
		p.subscribed = false
		p.generation++
		p.state.Loading = false
		p.inflight = 0
		p.notifyLocked()
	}
}

// notifyLocked pushes the current state to every watcher, replacing any unread value
func (p *Poller[T]) notifyLocked() {
	for ch := range p.watchers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- p.state:
		default:
		}
	}
}
