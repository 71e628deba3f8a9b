package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/orchestration"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/tracker"
)

// credentials returns the authenticated user id and the bearer token to forward upstream
func credentials(c *gin.Context) (string, string) {
	userID := c.MustGet("user_id").(string)
	token, _ := c.Get("access_token")
	tokenString, _ := token.(string)
	return userID, tokenString
}

// upstreamStatus maps an orchestration error to the status the dashboard answers with
func upstreamStatus(err error) int {
	switch {
	case errors.Is(err, orchestration.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, orchestration.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, orchestration.ErrInsufficientCredits):
		return http.StatusPaymentRequired
	}
	return http.StatusBadGateway
}

// awaitSnapshot blocks until the tracker has a first result or wait elapses
func awaitSnapshot(ctx context.Context, t *tracker.Tracker, wait time.Duration) tracker.State {
	state := t.Status()
	if state.HasValue || state.Err != nil || wait <= 0 {
		return state
	}

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	updates, unwatch := t.Watch()
	defer unwatch()

	for {
		select {
		case s, ok := <-updates:
			if !ok {
				return t.Status()
			}
			if s.HasValue || s.Err != nil {
				return s
			}
		case <-ctx.Done():
			return t.Status()
		}
	}
}
