package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/models"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/orchestration"
)

type OrchestrationHandler struct {
	planner *services.CampaignPlannerService
}

func NewOrchestrationHandler(planner *services.CampaignPlannerService) *OrchestrationHandler {
	return &OrchestrationHandler{planner: planner}
}

// PreviewDuration godoc
// @Summary Preview campaign cost
// @Description Build the duration configuration and compare its projected credit cost with the user's balance
// @Tags orchestration
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DurationPreviewRequest true "Duration preview request"
// @Success 200 {object} models.CostPreview
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/duration/preview [post]
func (h *OrchestrationHandler) PreviewDuration(c *gin.Context) {
	_, token := credentials(c)

	var req models.DurationPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	preview, err := h.planner.Preview(c.Request.Context(), token, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDuration) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid duration", "details": err.Error()})
			return
		}
		c.JSON(upstreamStatus(err), gin.H{"error": "Failed to preview campaign cost", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, preview)
}

// StartOrchestration godoc
// @Summary Start a campaign
// @Description Start a single-day or multi-day outreach campaign and begin tracking it
// @Tags orchestration
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.StartCampaignRequest true "Start campaign request"
// @Success 201 {object} models.StartOrchestrationResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 402 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/v1/orchestration/start [post]
func (h *OrchestrationHandler) StartOrchestration(c *gin.Context) {
	userID, token := credentials(c)

	var req models.StartCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	resp, err := h.planner.StartCampaign(c.Request.Context(), userID, token, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDuration):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid duration", "details": err.Error()})
		case errors.Is(err, orchestration.ErrInsufficientCredits):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Insufficient credits", "details": err.Error()})
		default:
			logrus.Errorf("Failed to start campaign for user %s: %v", userID, err)
			c.JSON(upstreamStatus(err), gin.H{"error": "Failed to start campaign", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}
