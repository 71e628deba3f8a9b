package services

import (
	"context"
	"errors"
	"sync"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/models"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/dispatcher"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/orchestration"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/presenter"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/tracker"
)

// CampaignSession is one user's live view of one campaign
type CampaignSession struct {
	Key        tracker.Key
	Tracker    *tracker.Tracker
	Dispatcher *dispatcher.Dispatcher
	Presenter  *presenter.Presenter
	creds      *userCredentials
}

// userCredentials sends requests with the most recent token the user presented
type userCredentials struct {
	client *orchestration.Client

	mu    sync.RWMutex
	token string
}

func (u *userCredentials) setToken(token string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.token = token
}

func (u *userCredentials) current() *orchestration.Client {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.client.WithToken(u.token)
}

func (u *userCredentials) GetCampaignStatus(ctx context.Context, campaignID string) (*models.Campaign, error) {
	return u.current().GetCampaignStatus(ctx, campaignID)
}

func (u *userCredentials) PerformAction(ctx context.Context, campaignID string, action models.CampaignAction) (*models.Campaign, error) {
	return u.current().PerformAction(ctx, campaignID, action)
}

// CampaignSessionService owns the per-user campaign sessions and their trackers
type CampaignSessionService struct {
	client   *orchestration.Client
	registry *tracker.Registry
	sseHub   *SSEHub

	mu       sync.Mutex
	sessions map[tracker.Key]*CampaignSession
}

// NewCampaignSessionService creates the service. Sessions are dropped together
// with their tracker when the registry evicts it.
func NewCampaignSessionService(client *orchestration.Client, sseHub *SSEHub, opts tracker.RegistryOptions) *CampaignSessionService {
	s := &CampaignSessionService{
		client:   client,
		sseHub:   sseHub,
		sessions: make(map[tracker.Key]*CampaignSession),
	}

	if opts.Tracker.IsFatal == nil {
		opts.Tracker.IsFatal = isRejection
	}

	onEvict := opts.OnEvict
	opts.OnEvict = func(key tracker.Key) {
		s.forget(key)
		if onEvict != nil {
			onEvict(key)
		}
	}
	s.registry = tracker.NewRegistry(opts)
	return s
}

// Registry exposes the tracker registry for event fan-out and lifecycle management
func (s *CampaignSessionService) Registry() *tracker.Registry {
	return s.registry
}

// Session returns the user's session for campaignID, starting to track it on first use
func (s *CampaignSessionService) Session(userID, token, campaignID string) *CampaignSession {
	key := tracker.Key{UserID: userID, CampaignID: campaignID}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions[key]
	creds := &userCredentials{client: s.client}
	if sess != nil {
		creds = sess.creds
	}
	creds.setToken(token)

	t := s.registry.Get(key, creds)
	if sess != nil && sess.Tracker == t {
		return sess
	}

	d := dispatcher.New(creds)
	sess = &CampaignSession{
		Key:        key,
		Tracker:    t,
		Dispatcher: d,
		Presenter:  presenter.New(t, d),
		creds:      creds,
	}
	s.sessions[key] = sess
	return sess
}

// isRejection reports errors that retrying with the same credentials cannot fix
func isRejection(err error) bool {
	return errors.Is(err, orchestration.ErrNotFound) || errors.Is(err, orchestration.ErrUnauthenticated)
}

// Rejected reports whether the orchestration service refused the campaign to
// the user before any snapshot was loaded
func Rejected(state tracker.State) bool {
	return !state.HasValue && isRejection(state.Err)
}

// Discard stops the session's tracker and forgets the session
func (s *CampaignSessionService) Discard(sess *CampaignSession) {
	if !s.registry.Remove(sess.Key, sess.Tracker) {
		s.forget(sess.Key)
	}
}

// Publish pushes the session's current view to its open streams
func (s *CampaignSessionService) Publish(sess *CampaignSession) {
	if s.sseHub == nil {
		return
	}
	entityType, entityID := SessionStreamKey(sess.Key.UserID, sess.Key.CampaignID)
	s.sseHub.Broadcast(entityType, entityID, "campaign", sess.Presenter.View())
}

// Len returns the number of live sessions
func (s *CampaignSessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Start runs the idle tracker sweeper
func (s *CampaignSessionService) Start() {
	s.registry.Start()
}

// Stop stops every tracker
func (s *CampaignSessionService) Stop() {
	s.registry.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[tracker.Key]*CampaignSession)
}

func (s *CampaignSessionService) forget(key tracker.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// a new tracker may have been created for the key after eviction
	if t, live := s.registry.Lookup(key); live {
		if sess := s.sessions[key]; sess != nil && sess.Tracker == t {
			return
		}
	}
	delete(s.sessions, key)
}
