package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/models"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/dispatcher"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/history"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/presenter"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/tracker"
)

type CampaignHandler struct {
	sessions     *services.CampaignSessionService
	sseHub       *services.SSEHub
	snapshotWait time.Duration
}

func NewCampaignHandler(sessions *services.CampaignSessionService, sseHub *services.SSEHub) *CampaignHandler {
	return &CampaignHandler{
		sessions:     sessions,
		sseHub:       sseHub,
		snapshotWait: 5 * time.Second,
	}
}

func (h *CampaignHandler) session(c *gin.Context) *services.CampaignSession {
	userID, token := credentials(c)
	return h.sessions.Session(userID, token, c.Param("id"))
}

// openSession returns the caller's session once its first fetch settled. When the
// orchestration service refuses the campaign to the caller the error is answered
// here and the session is discarded.
func (h *CampaignHandler) openSession(c *gin.Context) (*services.CampaignSession, tracker.State, bool) {
	sess := h.session(c)
	state := awaitSnapshot(c.Request.Context(), sess.Tracker, h.snapshotWait)
	if services.Rejected(state) {
		h.sessions.Discard(sess)
		c.JSON(upstreamStatus(state.Err), gin.H{"error": "Failed to get campaign", "details": state.Err.Error()})
		return nil, state, false
	}
	return sess, state, true
}

// GetCampaign godoc
// @Summary Get campaign status
// @Description Get the tracked status of a multi-day campaign. The first request starts tracking it.
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.CampaignView
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/campaigns/{id} [get]
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	sess, _, ok := h.openSession(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, sess.Presenter.View())
}

// RefreshCampaign godoc
// @Summary Refresh campaign status
// @Description Fetch the campaign status immediately without changing the polling schedule
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.CampaignView
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/campaigns/{id}/refresh [post]
func (h *CampaignHandler) RefreshCampaign(c *gin.Context) {
	sess, _, ok := h.openSession(c)
	if !ok {
		return
	}

	if _, err := sess.Tracker.Refresh(c.Request.Context()); err != nil {
		logrus.Warnf("Refresh of campaign %s failed: %v", sess.Key.CampaignID, err)
		if upstreamStatus(err) == http.StatusUnauthorized {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Failed to refresh campaign", "details": err.Error()})
			return
		}
	}

	view := sess.Presenter.View()
	h.sessions.Publish(sess)
	c.JSON(http.StatusOK, view)
}

// PauseCampaign godoc
// @Summary Pause campaign
// @Description Pause an active campaign
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.CampaignView
// @Failure 409 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/v1/campaigns/{id}/pause [post]
func (h *CampaignHandler) PauseCampaign(c *gin.Context) {
	sess, _, ok := h.openSession(c)
	if !ok {
		return
	}
	view, err := sess.Presenter.Pause(c.Request.Context())
	h.respondAction(c, sess, view, err)
}

// ResumeCampaign godoc
// @Summary Resume campaign
// @Description Resume a paused campaign
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.CampaignView
// @Failure 409 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/v1/campaigns/{id}/resume [post]
func (h *CampaignHandler) ResumeCampaign(c *gin.Context) {
	sess, _, ok := h.openSession(c)
	if !ok {
		return
	}
	view, err := sess.Presenter.Resume(c.Request.Context())
	h.respondAction(c, sess, view, err)
}

// RequestCancel godoc
// @Summary Request campaign cancellation
// @Description Open the cancel confirmation and get the estimated refund
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.CancelConfirmation
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/campaigns/{id}/cancel/request [post]
func (h *CampaignHandler) RequestCancel(c *gin.Context) {
	sess, _, ok := h.openSession(c)
	if !ok {
		return
	}

	confirmation, err := sess.Presenter.RequestCancel()
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot cancel campaign", "details": err.Error()})
		return
	}

	h.sessions.Publish(sess)
	c.JSON(http.StatusOK, confirmation)
}

// DismissCancel godoc
// @Summary Dismiss campaign cancellation
// @Description Close the cancel confirmation without cancelling
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.CampaignView
// @Router /api/v1/campaigns/{id}/cancel/dismiss [post]
func (h *CampaignHandler) DismissCancel(c *gin.Context) {
	sess, _, ok := h.openSession(c)
	if !ok {
		return
	}
	view := sess.Presenter.DismissCancel()
	h.sessions.Publish(sess)
	c.JSON(http.StatusOK, view)
}

// ConfirmCancel godoc
// @Summary Cancel campaign
// @Description Cancel the campaign after the confirmation was requested. Unused days are refunded.
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.CampaignView
// @Failure 409 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/v1/campaigns/{id}/cancel [post]
func (h *CampaignHandler) ConfirmCancel(c *gin.Context) {
	sess, _, ok := h.openSession(c)
	if !ok {
		return
	}
	view, err := sess.Presenter.ConfirmCancel(c.Request.Context())
	h.respondAction(c, sess, view, err)
}

func (h *CampaignHandler) respondAction(c *gin.Context, sess *services.CampaignSession, view models.CampaignView, err error) {
	h.sessions.Publish(sess)

	if err == nil {
		c.JSON(http.StatusOK, view)
		return
	}

	var actionErr *dispatcher.ActionError
	switch {
	case errors.Is(err, dispatcher.ErrActionInProgress),
		errors.Is(err, presenter.ErrActionUnavailable),
		errors.Is(err, presenter.ErrCancelNotRequested),
		errors.Is(err, presenter.ErrNoSnapshot):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "view": view})
	case errors.As(err, &actionErr):
		c.JSON(upstreamStatus(actionErr.Err), gin.H{"error": actionErr.Message, "details": actionErr.Err.Error(), "view": view})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to perform action", "details": err.Error()})
	}
}

// GetHistory godoc
// @Summary Get daily run history
// @Description Get the campaign's daily runs ordered by day
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.DailyRunHistoryResponse
// @Router /api/v1/campaigns/{id}/history [get]
func (h *CampaignHandler) GetHistory(c *gin.Context) {
	sess, state, ok := h.openSession(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, history.ForCampaign(sess.Key.CampaignID, state.Value))
}

// ExportHistory godoc
// @Summary Export daily run history
// @Description Download the campaign's daily run history as an Excel file
// @Tags campaigns
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {file} file
// @Failure 409 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/campaigns/{id}/history/export [get]
func (h *CampaignHandler) ExportHistory(c *gin.Context) {
	sess, state, ok := h.openSession(c)
	if !ok {
		return
	}
	if !state.HasValue {
		c.JSON(http.StatusConflict, gin.H{"error": "Campaign status not loaded yet"})
		return
	}

	buf, err := history.ExportExcel(state.Value)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export history", "details": err.Error()})
		return
	}

	filename := history.Filename(sess.Key.CampaignID, time.Now())
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")
	c.Header("Cache-Control", "must-revalidate")
	c.Header("Pragma", "public")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// StreamCampaign godoc
// @Summary Stream campaign status via Server-Sent Events (SSE)
// @Description Stream the campaign view on every status change, plus worker events
// @Tags campaigns
// @Produce text/event-stream
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param access_token query string false "Bearer token for EventSource clients"
// @Success 200 "SSE stream"
// @Router /api/v1/campaigns/{id}/stream [get]
func (h *CampaignHandler) StreamCampaign(c *gin.Context) {
	sess, _, ok := h.openSession(c)
	if !ok {
		return
	}

	// Set headers for SSE
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable buffering for nginx

	sessionType, sessionID := services.SessionStreamKey(sess.Key.UserID, sess.Key.CampaignID)
	sessionChan := h.sseHub.RegisterClient(sessionType, sessionID)
	defer h.sseHub.UnregisterClient(sessionType, sessionID, sessionChan)

	updates, unwatch := sess.Tracker.Watch()
	defer unwatch()

	c.SSEvent("connected", gin.H{
		"campaign_id": sess.Key.CampaignID,
		"message":     "Connected to campaign stream",
	})
	c.Writer.Flush()

	for {
		var message []byte
		select {
		case <-c.Request.Context().Done():
			logrus.Infof("SSE client disconnected: %s", sessionID)
			return
		case _, ok := <-updates:
			if !ok {
				return
			}
			msg, err := services.FormatEvent("campaign", sess.Presenter.View())
			if err != nil {
				logrus.Errorf("Failed to encode campaign view: %v", err)
				continue
			}
			message = msg
		case msg, ok := <-sessionChan:
			if !ok {
				return
			}
			message = msg
		}

		if _, err := c.Writer.Write(message); err != nil {
			logrus.Errorf("Failed to write SSE message: %v", err)
			return
		}
		c.Writer.Flush()
	}
}
