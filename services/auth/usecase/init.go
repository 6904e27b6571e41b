package usecase

import (
	"github.com/piresc/authgate/internal/pkg/models"
	"github.com/piresc/authgate/services/auth"
)

// AuthUC runs flows and sessions on behalf of BFF visitors
type AuthUC struct {
	repo       auth.FlowRepo
	transports func(visitorID string) auth.Transport
	events     auth.EventPublisher
	cfg        models.FlowConfig
}

// NewAuthUC creates a new auth usecase instance
func NewAuthUC(
	repo auth.FlowRepo,
	transports func(visitorID string) auth.Transport,
	events auth.EventPublisher,
	cfg models.FlowConfig,
) *AuthUC {
	return &AuthUC{
		repo:       repo,
		transports: transports,
		events:     events,
		cfg:        cfg,
	}
}

var _ auth.AuthUC = (*AuthUC)(nil)
