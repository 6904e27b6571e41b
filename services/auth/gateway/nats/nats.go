package gateway_nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/piresc/authgate/internal/pkg/constants"
	"github.com/piresc/authgate/internal/pkg/logger"
	"github.com/piresc/authgate/internal/pkg/models"
	natspkg "github.com/piresc/authgate/internal/pkg/nats"
)

// NATSGateway publishes auth events to NATS
type NATSGateway struct {
	client *natspkg.Client
}

// NewNATSGateway creates a new NATS gateway
func NewNATSGateway(client *natspkg.Client) *NATSGateway {
	return &NATSGateway{
		client: client,
	}
}

// PublishAuthEvent publishes an auth event on the auth events subject
func (g *NATSGateway) PublishAuthEvent(ctx context.Context, event *models.AuthEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal auth event: %w", err)
	}

	if err := g.client.Publish(constants.SubjectAuthEvents, data); err != nil {
		logger.Error("Failed to publish auth event",
			logger.String("event_type", event.Type),
			logger.String("visitor_id", event.VisitorID),
			logger.Err(err))
		return fmt.Errorf("failed to publish auth event: %w", err)
	}

	logger.Debug("Published auth event",
		logger.String("event_type", event.Type),
		logger.String("event_id", event.ID))

	return nil
}

// NoopPublisher drops events; used when NATS is not configured
type NoopPublisher struct{}

// PublishAuthEvent does nothing
func (NoopPublisher) PublishAuthEvent(ctx context.Context, event *models.AuthEvent) error {
	return nil
}
