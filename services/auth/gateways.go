package auth

import (
	"context"

	"github.com/piresc/authgate/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks github.com/piresc/authgate/services/auth Transport,EventPublisher

// Transport calls the external auth backend. Implementations keep the
// backend's session and CSRF cookies between calls.
type Transport interface {
	Signup(ctx context.Context, creds models.SignupCredentials) (models.LoginResult, error)
	Login(ctx context.Context, creds models.Credentials) (models.LoginResult, error)
	VerifyOTP(ctx context.Context, challenge models.OTPChallenge) (models.OTPVerified, error)
	ResendOTP(ctx context.Context, userID int64) (models.OTPResent, error)
	GoogleLogin(ctx context.Context, idToken string) (models.LoginResult, error)
	Logout(ctx context.Context) error

	// CheckSession and Whoami only fail on network errors
	CheckSession(ctx context.Context) (models.SessionStatus, error)
	Whoami(ctx context.Context) (models.Identity, error)
}

// EventPublisher emits auth events for downstream consumers
type EventPublisher interface {
	PublishAuthEvent(ctx context.Context, event *models.AuthEvent) error
}
