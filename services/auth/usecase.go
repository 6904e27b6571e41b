package auth

import (
	"context"

	"github.com/piresc/authgate/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_usecase.go -package=mocks github.com/piresc/authgate/services/auth SessionRefresher,AuthUC

// SessionRefresher re-reads the backend session after a flow finishes
type SessionRefresher interface {
	CheckAuth(ctx context.Context) models.Session
}

// AuthUC drives one visitor's sign-in flow and session from the BFF
type AuthUC interface {
	Flow(ctx context.Context, visitorID string) (models.FlowState, error)
	SignIn(ctx context.Context, visitorID string, creds models.Credentials) (models.FlowState, error)
	SignUp(ctx context.Context, visitorID string, creds models.SignupCredentials) (models.FlowState, error)
	GoogleSignIn(ctx context.Context, visitorID string, credential string) (models.FlowState, error)
	VerifyOTP(ctx context.Context, visitorID string, code string) (models.FlowState, error)
	ResendOTP(ctx context.Context, visitorID string) (models.FlowState, error)
	BackToLogin(ctx context.Context, visitorID string) (models.FlowState, error)

	Session(ctx context.Context, visitorID string, refresh bool) (models.Session, error)
	Logout(ctx context.Context, visitorID string) (models.Session, error)
}
