package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/models"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/duration"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/orchestration"
)

// ErrInvalidDuration wraps configurator validation failures
var ErrInvalidDuration = errors.New("invalid duration configuration")

// CampaignPlannerService previews campaign cost and starts campaigns
type CampaignPlannerService struct {
	client   *orchestration.Client
	sessions *CampaignSessionService
}

// NewCampaignPlannerService creates the planner; sessions may be nil
func NewCampaignPlannerService(client *orchestration.Client, sessions *CampaignSessionService) *CampaignPlannerService {
	return &CampaignPlannerService{
		client:   client,
		sessions: sessions,
	}
}

// Preview projects the cost of the configured campaign against the user's balance.
// When the balance cannot be loaded the coverage stays "loading".
func (s *CampaignPlannerService) Preview(ctx context.Context, token string, req *models.DurationPreviewRequest) (*models.CostPreview, error) {
	configurator, err := duration.Build(req.MultiDay, req.DurationDays, req.PreferredRunHour)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDuration, err)
	}

	var balance *int
	user, err := s.client.WithToken(token).GetCurrentUser(ctx)
	if err != nil {
		if errors.Is(err, orchestration.ErrUnauthenticated) {
			return nil, err
		}
		logrus.Warnf("Failed to load credit balance, preview coverage unknown: %v", err)
	} else {
		balance = &user.CreditBalance
	}

	preview := configurator.Preview(req.ContactsPerDay, req.EnrichCreditsPerContact, balance)
	return &preview, nil
}

// StartCampaign builds the duration config, forwards the start request and
// begins tracking the created campaign
func (s *CampaignPlannerService) StartCampaign(ctx context.Context, userID, token string, req *models.StartCampaignRequest) (*models.StartOrchestrationResponse, error) {
	configurator, err := duration.Build(req.MultiDay, req.DurationDays, req.PreferredRunHour)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDuration, err)
	}

	resp, err := s.client.WithToken(token).StartOrchestration(ctx, &models.StartOrchestrationRequest{
		SolutionDescription: req.SolutionDescription,
		MaxContacts:         req.MaxContacts,
		EnrichCredits:       req.EnrichCredits,
		DurationConfig:      configurator.Config(),
		SequenceConfig:      req.SequenceConfig,
		TargetFilters:       req.TargetFilters,
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("User %s started campaign %s", userID, resp.CampaignID)
	if s.sessions != nil {
		s.sessions.Session(userID, token, resp.CampaignID)
	}
	return resp, nil
}
