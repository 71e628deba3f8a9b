package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/config"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/models"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/orchestration"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/tracker"
)

// fakeRefresher reports every tracked user as refreshed except the denied ones
type fakeRefresher struct {
	mu     sync.Mutex
	ids    []string
	users  []string
	denied map[string]bool
}

func (f *fakeRefresher) RefreshCampaign(_ context.Context, id string) []tracker.Key {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)

	var keys []tracker.Key
	for _, user := range f.users {
		if !f.denied[user] {
			keys = append(keys, tracker.Key{UserID: user, CampaignID: id})
		}
	}
	return keys
}

func (f *fakeRefresher) refreshed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ids...)
}

type fakeDeliveries struct {
	ch chan amqp.Delivery
}

func (f *fakeDeliveries) Consume(string) (<-chan amqp.Delivery, error) {
	return f.ch, nil
}

func TestProcessEventMessageRefreshesAndBroadcasts(t *testing.T) {
	hub := NewSSEHub()
	entityType, entityID := SessionStreamKey("u1", "c-1")
	client := hub.RegisterClient(entityType, entityID)
	defer hub.UnregisterClient(entityType, entityID, client)

	refresher := &fakeRefresher{users: []string{"u1"}}
	svc := NewCampaignEventService(nil, refresher, hub, "campaign_events")

	err := svc.processEventMessage([]byte(`{"type":"daily_run_completed","campaign_id":"c-1","day_number":3}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"c-1"}, refresher.refreshed())

	select {
	case msg := <-client:
		assert.True(t, strings.HasPrefix(string(msg), "event: worker_event\ndata: "))
		assert.Contains(t, string(msg), `"day_number":3`)
	default:
		t.Fatal("event was not broadcast")
	}
}

func TestWorkerEventsOnlyReachUsersThatCanLoadTheCampaign(t *testing.T) {
	hub := NewSSEHub()
	ownerType, ownerID := SessionStreamKey("owner", "c-1")
	owner := hub.RegisterClient(ownerType, ownerID)
	defer hub.UnregisterClient(ownerType, ownerID, owner)
	intruderType, intruderID := SessionStreamKey("intruder", "c-1")
	intruder := hub.RegisterClient(intruderType, intruderID)
	defer hub.UnregisterClient(intruderType, intruderID, intruder)

	refresher := &fakeRefresher{users: []string{"owner", "intruder"}, denied: map[string]bool{"intruder": true}}
	svc := NewCampaignEventService(nil, refresher, hub, "campaign_events")

	err := svc.processEventMessage([]byte(`{"type":"daily_run_failed","campaign_id":"c-1","message":"SMTP credentials rejected"}`))
	require.NoError(t, err)

	assert.Len(t, owner, 1)
	assert.Len(t, intruder, 0)
}

func TestProcessEventMessageRejectsInvalidPayloads(t *testing.T) {
	refresher := &fakeRefresher{}
	svc := NewCampaignEventService(nil, refresher, nil, "campaign_events")

	assert.ErrorIs(t, svc.processEventMessage([]byte(`not json`)), ErrInvalidEvent)
	assert.ErrorIs(t, svc.processEventMessage([]byte(`{"type":"daily_run_completed"}`)), ErrInvalidEvent)
	assert.Empty(t, refresher.refreshed())
}

func TestCampaignEventConsumerLifecycle(t *testing.T) {
	deliveries := &fakeDeliveries{ch: make(chan amqp.Delivery, 1)}
	refresher := &fakeRefresher{}
	svc := NewCampaignEventService(deliveries, refresher, nil, "campaign_events")

	require.NoError(t, svc.StartRabbitMQConsumer())
	deliveries.ch <- amqp.Delivery{Body: []byte(`{"type":"campaign_paused","campaign_id":"c-2"}`)}

	require.Eventually(t, func() bool { return len(refresher.refreshed()) == 1 }, time.Second, time.Millisecond)
	svc.StopRabbitMQConsumer()
}

func TestSSEHubBroadcastAndUnregister(t *testing.T) {
	hub := NewSSEHub()
	a := hub.RegisterClient("session", "u1:c-1")
	b := hub.RegisterClient("session", "u2:c-1")
	assert.Equal(t, 1, hub.GetClientCount("session", "u1:c-1"))

	hub.Broadcast("session", "u1:c-1", "campaign", map[string]string{"status": "paused"})
	assert.Equal(t, "event: campaign\ndata: {\"status\":\"paused\"}\n\n", string(<-a))
	assert.Len(t, b, 0)

	hub.SendHeartbeat()
	assert.True(t, strings.HasPrefix(string(<-b), ": heartbeat "))

	hub.UnregisterClient("session", "u1:c-1", a)
	hub.UnregisterClient("session", "u1:c-1", a)
	assert.Equal(t, 0, hub.GetClientCount("session", "u1:c-1"))
	_, open := <-a
	assert.False(t, open)
	hub.UnregisterClient("session", "u2:c-1", b)
}

type orchestrationStub struct {
	mu     sync.Mutex
	tokens []string
	srv    *httptest.Server
}

func newOrchestrationStub(t *testing.T) (*orchestrationStub, *orchestration.Client) {
	t.Helper()
	stub := &orchestrationStub{}
	stub.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		stub.tokens = append(stub.tokens, r.Header.Get("Authorization"))
		stub.mu.Unlock()

		switch {
		case r.URL.Path == "/auth/me" && r.Header.Get("Authorization") == "Bearer expired":
			w.WriteHeader(http.StatusUnauthorized)
		case r.URL.Path == "/auth/me" && r.Header.Get("Authorization") == "Bearer broken":
			w.WriteHeader(http.StatusBadGateway)
		case r.URL.Path == "/auth/me":
			w.Write([]byte(`{"id":"u1","credit_balance":400}`))
		case r.URL.Path == "/orchestration/start":
			w.Write([]byte(`{"campaign_id":"c-new","status":"active"}`))
		default:
			w.Write([]byte(`{"campaign_id":"c-1","status":"active","duration_days":10,"current_day":4,"total_credits_reserved":1000}`))
		}
	}))
	t.Cleanup(stub.srv.Close)

	cfg := &config.OrchestrationConfig{
		Name:    "Orchestration",
		BaseURL: stub.srv.URL,
		Timeout: 5 * time.Second,
		Routes: map[string]string{
			"campaign_status":     "/campaign/{campaign_id}/status",
			"campaign_pause":      "/campaign/{campaign_id}/pause",
			"campaign_resume":     "/campaign/{campaign_id}/resume",
			"campaign_cancel":     "/campaign/{campaign_id}/cancel",
			"orchestration_start": "/orchestration/start",
			"current_user":        "/auth/me",
		},
	}
	return stub, orchestration.NewClient(cfg)
}

func (s *orchestrationStub) lastToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tokens) == 0 {
		return ""
	}
	return s.tokens[len(s.tokens)-1]
}

func TestSessionIsReusedAndFollowsLatestToken(t *testing.T) {
	stub, client := newOrchestrationStub(t)
	svc := NewCampaignSessionService(client, NewSSEHub(), tracker.RegistryOptions{
		Tracker: tracker.Options{Clock: clockwork.NewFakeClock()},
	})
	defer svc.Stop()

	first := svc.Session("u1", "token-1", "c-1")
	require.Eventually(t, func() bool { return first.Tracker.Status().HasValue }, time.Second, time.Millisecond)
	assert.Equal(t, "Bearer token-1", stub.lastToken())

	second := svc.Session("u1", "token-2", "c-1")
	assert.Same(t, first, second)

	_, err := second.Tracker.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-2", stub.lastToken())

	other := svc.Session("u2", "token-3", "c-1")
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, svc.Len())
}

func TestSessionDroppedWhenTrackerEvicted(t *testing.T) {
	_, client := newOrchestrationStub(t)
	fc := clockwork.NewFakeClock()
	svc := NewCampaignSessionService(client, nil, tracker.RegistryOptions{
		IdleTTL: time.Minute,
		Tracker: tracker.Options{Clock: fc},
	})
	defer svc.Stop()

	svc.Session("u1", "token", "c-1")
	assert.Equal(t, 1, svc.Len())

	fc.Advance(2 * time.Minute)
	assert.Equal(t, 1, svc.Registry().Sweep())
	assert.Equal(t, 0, svc.Len())
}

func TestPlannerPreviewUsesBalance(t *testing.T) {
	_, client := newOrchestrationStub(t)
	planner := NewCampaignPlannerService(client, nil)

	preview, err := planner.Preview(context.Background(), "token", &models.DurationPreviewRequest{
		MultiDay: true, DurationDays: 5, PreferredRunHour: 9, ContactsPerDay: 50, EnrichCreditsPerContact: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 500, preview.Calculation.TotalCredits)
	assert.Equal(t, models.BalanceCoverageInsufficient, preview.Coverage)
	assert.Equal(t, 100, preview.Shortfall)
}

func TestPlannerPreviewWithoutBalanceStaysLoading(t *testing.T) {
	_, client := newOrchestrationStub(t)
	planner := NewCampaignPlannerService(client, nil)

	preview, err := planner.Preview(context.Background(), "broken", &models.DurationPreviewRequest{ContactsPerDay: 10})
	require.NoError(t, err)
	assert.Nil(t, preview.DurationConfig)
	assert.Equal(t, models.BalanceCoverageLoading, preview.Coverage)

	_, err = planner.Preview(context.Background(), "expired", &models.DurationPreviewRequest{})
	assert.ErrorIs(t, err, orchestration.ErrUnauthenticated)
}

func TestPlannerRejectsOutOfRangeDuration(t *testing.T) {
	_, client := newOrchestrationStub(t)
	planner := NewCampaignPlannerService(client, nil)

	_, err := planner.StartCampaign(context.Background(), "u1", "token", &models.StartCampaignRequest{
		SolutionDescription: "x", MaxContacts: 1, MultiDay: true, DurationDays: 30, PreferredRunHour: 9,
	})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestPlannerStartBeginsTracking(t *testing.T) {
	_, client := newOrchestrationStub(t)
	sessions := NewCampaignSessionService(client, nil, tracker.RegistryOptions{
		Tracker: tracker.Options{Clock: clockwork.NewFakeClock()},
	})
	defer sessions.Stop()
	planner := NewCampaignPlannerService(client, sessions)

	resp, err := planner.StartCampaign(context.Background(), "u1", "token", &models.StartCampaignRequest{
		SolutionDescription: "x", MaxContacts: 1, MultiDay: true, DurationDays: 5, PreferredRunHour: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, "c-new", resp.CampaignID)

	_, tracked := sessions.Registry().Lookup(tracker.Key{UserID: "u1", CampaignID: "c-new"})
	assert.True(t, tracked)
}

