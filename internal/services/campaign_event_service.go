package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/models"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/tracker"
)

// ErrInvalidEvent is returned for worker events that cannot be routed to a campaign
var ErrInvalidEvent = errors.New("invalid campaign event")

// CampaignRefresher refreshes every tracker following a campaign and returns
// the sessions that could still load it
type CampaignRefresher interface {
	RefreshCampaign(ctx context.Context, campaignID string) []tracker.Key
}

// DeliverySource opens a consumer on a queue
type DeliverySource interface {
	Consume(queueName string) (<-chan amqp.Delivery, error)
}

// CampaignEventService turns worker events into immediate tracker refreshes.
// Polling still drives the state; events only shorten the wait.
type CampaignEventService struct {
	source         DeliverySource
	refresher      CampaignRefresher
	sseHub         *SSEHub
	queueName      string
	refreshTimeout time.Duration
	stopChan       chan bool
	stopped        chan struct{}
}

// NewCampaignEventService creates the consumer; call StartRabbitMQConsumer to run it
func NewCampaignEventService(source DeliverySource, refresher CampaignRefresher, sseHub *SSEHub, queueName string) *CampaignEventService {
	return &CampaignEventService{
		source:         source,
		refresher:      refresher,
		sseHub:         sseHub,
		queueName:      queueName,
		refreshTimeout: 30 * time.Second,
		stopChan:       make(chan bool),
		stopped:        make(chan struct{}),
	}
}

// StartRabbitMQConsumer starts consuming campaign events
func (s *CampaignEventService) StartRabbitMQConsumer() error {
	msgs, err := s.source.Consume(s.queueName)
	if err != nil {
		return err
	}

	logrus.Infof("RabbitMQ consumer started for %s queue", s.queueName)

	go func() {
		defer close(s.stopped)
		for {
			select {
			case <-s.stopChan:
				logrus.Info("RabbitMQ consumer stopped")
				return
			case msg, ok := <-msgs:
				if !ok {
					logrus.Warn("RabbitMQ channel closed")
					return
				}

				if err := s.processEventMessage(msg.Body); err != nil {
					logrus.Errorf("Failed to process campaign event: %v", err)
				}
			}
		}
	}()

	return nil
}

// StopRabbitMQConsumer stops the consumer and waits for it to exit
func (s *CampaignEventService) StopRabbitMQConsumer() {
	close(s.stopChan)
	<-s.stopped
}

func (s *CampaignEventService) processEventMessage(body []byte) error {
	var event models.CampaignEvent
	if err := json.Unmarshal(body, &event); err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		sentry.CaptureException(err)
		return err
	}
	if event.CampaignID == "" {
		err := fmt.Errorf("%w: missing campaign_id (type %q)", ErrInvalidEvent, event.Type)
		sentry.CaptureException(err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
	defer cancel()

	refreshed := s.refresher.RefreshCampaign(ctx, event.CampaignID)
	logrus.Debugf("Campaign event %s for %s refreshed %d tracker(s)", event.Type, event.CampaignID, len(refreshed))

	if s.sseHub == nil {
		return nil
	}
	// only users whose own credentials just loaded the campaign see its events
	for _, key := range refreshed {
		entityType, entityID := SessionStreamKey(key.UserID, key.CampaignID)
		s.sseHub.Broadcast(entityType, entityID, "worker_event", event)
	}
	return nil
}
