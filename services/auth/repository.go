package auth

import (
	"context"

	"github.com/piresc/authgate/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks github.com/piresc/authgate/services/auth FlowRepo

// FlowRepo persists per-visitor flow and session snapshots
type FlowRepo interface {
	// GetFlow returns nil when the visitor has no flow yet
	GetFlow(ctx context.Context, visitorID string) (*models.FlowState, error)
	SaveFlow(ctx context.Context, visitorID string, state models.FlowState) error
	DeleteFlow(ctx context.Context, visitorID string) error

	// GetSession returns nil when the visitor's session was never checked
	GetSession(ctx context.Context, visitorID string) (*models.Session, error)
	SaveSession(ctx context.Context, visitorID string, session models.Session) error

	// Lock serializes mutations for one visitor. It fails with ErrVisitorBusy
	// when the lock is already held.
	Lock(ctx context.Context, visitorID string) (func(), error)
}
