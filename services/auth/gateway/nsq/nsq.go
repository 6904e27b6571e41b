package gateway_nsq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/piresc/authgate/internal/pkg/constants"
	"github.com/piresc/authgate/internal/pkg/logger"
	"github.com/piresc/authgate/internal/pkg/models"
)

// Publisher is the part of the NSQ producer the gateway needs
type Publisher interface {
	Publish(topic string, body []byte) error
}

// NSQGateway publishes auth events to an NSQ topic
type NSQGateway struct {
	producer Publisher
}

// NewNSQGateway creates a new NSQ gateway
func NewNSQGateway(producer Publisher) *NSQGateway {
	return &NSQGateway{
		producer: producer,
	}
}

// PublishAuthEvent publishes an auth event on the auth events topic
func (g *NSQGateway) PublishAuthEvent(ctx context.Context, event *models.AuthEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal auth event: %w", err)
	}

	if err := g.producer.Publish(constants.TopicAuthEvents, data); err != nil {
		logger.Error("Failed to publish auth event to NSQ",
			logger.String("event_type", event.Type),
			logger.String("visitor_id", event.VisitorID),
			logger.Err(err))
		return fmt.Errorf("failed to publish auth event: %w", err)
	}

	logger.Debug("Published auth event to NSQ",
		logger.String("event_type", event.Type),
		logger.String("event_id", event.ID))

	return nil
}
