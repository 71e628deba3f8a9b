package orchestration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/config"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.OrchestrationConfig{
		Name:    "Orchestration",
		BaseURL: srv.URL,
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
	return NewClient(cfg).WithToken("secret-token")
}

func TestGetCampaignStatusSendsBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/campaign/c-1/status", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"campaign_id":"c-1","status":"active","duration_days":10,"current_day":4,"total_credits_reserved":1000,"daily_runs":[{"day_number":1,"status":"completed"}]}`))
	})

	campaign, err := c.GetCampaignStatus(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusActive, campaign.Status)
	assert.Equal(t, 1000, campaign.TotalCreditsReserved)
	require.Len(t, campaign.DailyRuns, 1)
}

func TestGetCampaignStatusAcceptsDataEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"campaign_id":"c-1","status":"paused"}}`))
	})

	campaign, err := c.GetCampaignStatus(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusPaused, campaign.Status)
}

func TestPerformActionPostsToActionRoute(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/campaign/c-1/pause", r.URL.Path)
		w.Write([]byte(`{"campaign_id":"c-1","status":"paused"}`))
	})

	campaign, err := c.PerformAction(context.Background(), "c-1", models.CampaignActionPause)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusPaused, campaign.Status)

	_, err = c.PerformAction(context.Background(), "c-1", models.CampaignAction("delete"))
	assert.Error(t, err)
}

func TestErrorPayloadMessageIsSurfaced(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "error field", body: `{"error":"Campaign already paused"}`, want: "Campaign already paused"},
		{name: "detail string", body: `{"detail":"Campaign not active"}`, want: "Campaign not active"},
		{name: "detail list", body: `{"detail":[{"msg":"field required"}]}`, want: "field required"},
		{name: "message field", body: `{"message":"nope"}`, want: "nope"},
		{name: "no payload", body: ``, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(tt.body))
			})

			_, err := c.PerformAction(context.Background(), "c-1", models.CampaignActionPause)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
			assert.Equal(t, tt.want, apiErr.Message)
		})
	}
}

func TestStatusCodesMapToSentinels(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusPaymentRequired, ErrInsufficientCredits},
		{http.StatusUnauthorized, ErrUnauthenticated},
		{http.StatusForbidden, ErrUnauthenticated},
		{http.StatusNotFound, ErrNotFound},
	}

	for _, tt := range tests {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		})
		_, err := c.StartOrchestration(context.Background(), &models.StartOrchestrationRequest{SolutionDescription: "x", MaxContacts: 1})
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
	}
}

func TestStartOrchestrationForwardsDurationConfig(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		dc, ok := body["duration_config"].(map[string]interface{})
		require.True(t, ok)
		assert.EqualValues(t, 5, dc["duration_days"])
		w.Write([]byte(`{"campaign_id":"c-9","status":"active"}`))
	})

	resp, err := c.StartOrchestration(context.Background(), &models.StartOrchestrationRequest{
		SolutionDescription: "AI bookkeeping",
		MaxContacts:         50,
		EnrichCredits:       50,
		DurationConfig:      &models.DurationConfig{DurationDays: 5, PreferredRunHour: 9},
	})
	require.NoError(t, err)
	assert.Equal(t, "c-9", resp.CampaignID)
}

func TestStartOrchestrationOmitsNilDurationConfig(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, present := body["duration_config"]
		assert.False(t, present)
		w.Write([]byte(`{"campaign_id":"c-1"}`))
	})

	_, err := c.StartOrchestration(context.Background(), &models.StartOrchestrationRequest{SolutionDescription: "x", MaxContacts: 1})
	require.NoError(t, err)
}

func TestMalformedSuccessBodyIsAnError(t *testing.T) {
	for _, body := range []string{``, `not json`, `{"status":"active"}`} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})
		_, err := c.StartOrchestration(context.Background(), &models.StartOrchestrationRequest{SolutionDescription: "x", MaxContacts: 1})
		assert.ErrorIs(t, err, ErrMalformedResponse, "body %q", body)
	}
}

func TestGetCurrentUserCoalescesConcurrentLookups(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write([]byte(`{"id":"u-1","email":"a@b.c","credit_balance":2000}`))
	})

	var wg sync.WaitGroup
	results := make([]*models.CurrentUser, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user, err := c.GetCurrentUser(context.Background())
			assert.NoError(t, err)
			results[i] = user
		}(i)
	}

	require.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
	for _, user := range results {
		require.NotNil(t, user)
		assert.Equal(t, 2000, user.CreditBalance)
	}
}
