package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/time/rate"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/config"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/middleware"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/models"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/orchestration"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/tracker"
)

const secret = "router-test-secret"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Campaign not found"}`))
	}))
	t.Cleanup(upstream.Close)

	client := orchestration.NewClient(&config.OrchestrationConfig{
		BaseURL: upstream.URL,
		Timeout: time.Second,
		Routes: map[string]string{
			"campaign_status": "/campaign/{campaign_id}/status",
		},
	})
	hub := services.NewSSEHub()
	sessions := services.NewCampaignSessionService(client, hub, tracker.RegistryOptions{
		Tracker: tracker.Options{Clock: clockwork.NewFakeClock()},
	})
	t.Cleanup(sessions.Stop)

	limiter := middleware.NewRateLimiter(rate.Limit(1), 1)
	t.Cleanup(limiter.Stop)

	return SetupRouter(Dependencies{
		Config:      &config.Config{JWTSecret: secret},
		Sessions:    sessions,
		Planner:     services.NewCampaignPlannerService(client, sessions),
		SSEHub:      hub,
		RateLimiter: limiter,
	})
}

func signedToken(t *testing.T) string {
	t.Helper()
	claims := models.JWTClaims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestHealthIsPublic(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCampaignRoutesRequireBearerToken(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/c-1", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/missing", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
