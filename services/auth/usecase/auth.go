package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/piresc/authgate/internal/pkg/constants"
	"github.com/piresc/authgate/internal/pkg/logger"
	"github.com/piresc/authgate/internal/pkg/models"
)

// Flow returns the visitor's current flow state
func (u *AuthUC) Flow(ctx context.Context, visitorID string) (models.FlowState, error) {
	state, err := u.repo.GetFlow(ctx, visitorID)
	if err != nil {
		return models.FlowState{}, err
	}
	if state == nil {
		return models.FlowState{Phase: models.PhaseCollectingCredentials}, nil
	}
	return restoreState(*state), nil
}

// SignIn submits credentials. A finished flow is replaced by a fresh one.
func (u *AuthUC) SignIn(ctx context.Context, visitorID string, creds models.Credentials) (models.FlowState, error) {
	return u.withFlow(ctx, visitorID, true, func(ctx context.Context, f *FlowController) (models.FlowState, error) {
		return f.SubmitCredentials(ctx, creds)
	})
}

// SignUp submits the sign-up form
func (u *AuthUC) SignUp(ctx context.Context, visitorID string, creds models.SignupCredentials) (models.FlowState, error) {
	return u.withFlow(ctx, visitorID, true, func(ctx context.Context, f *FlowController) (models.FlowState, error) {
		return f.SubmitSignup(ctx, creds)
	})
}

// GoogleSignIn submits a Google ID token
func (u *AuthUC) GoogleSignIn(ctx context.Context, visitorID string, credential string) (models.FlowState, error) {
	return u.withFlow(ctx, visitorID, true, func(ctx context.Context, f *FlowController) (models.FlowState, error) {
		return f.SubmitGoogle(ctx, credential)
	})
}

// VerifyOTP submits the one-time code
func (u *AuthUC) VerifyOTP(ctx context.Context, visitorID string, code string) (models.FlowState, error) {
	return u.withFlow(ctx, visitorID, false, func(ctx context.Context, f *FlowController) (models.FlowState, error) {
		return f.SubmitOTP(ctx, code)
	})
}

// ResendOTP asks for a fresh code
func (u *AuthUC) ResendOTP(ctx context.Context, visitorID string) (models.FlowState, error) {
	return u.withFlow(ctx, visitorID, false, func(ctx context.Context, f *FlowController) (models.FlowState, error) {
		return f.ResendOTP(ctx)
	})
}

// BackToLogin abandons the OTP challenge
func (u *AuthUC) BackToLogin(ctx context.Context, visitorID string) (models.FlowState, error) {
	return u.withFlow(ctx, visitorID, false, func(ctx context.Context, f *FlowController) (models.FlowState, error) {
		return f.BackToLogin()
	})
}

// Session returns the cached session, checking the backend on first use or
// when refresh is set.
func (u *AuthUC) Session(ctx context.Context, visitorID string, refresh bool) (models.Session, error) {
	cached, err := u.repo.GetSession(ctx, visitorID)
	if err != nil {
		return models.Session{}, err
	}
	if cached != nil && !refresh {
		return *cached, nil
	}

	sess := NewSessionContext(u.transports(visitorID), cached)
	result := sess.CheckAuth(ctx)
	if err := u.repo.SaveSession(ctx, visitorID, result); err != nil {
		logger.Error("Failed to save session",
			logger.String("visitor_id", visitorID),
			logger.Err(err))
	}
	return result, nil
}

// Logout ends the backend session and drops the visitor's flow. On failure
// the session is unchanged and a retryable error is returned.
func (u *AuthUC) Logout(ctx context.Context, visitorID string) (models.Session, error) {
	unlock, err := u.repo.Lock(ctx, visitorID)
	if err != nil {
		return models.Session{}, err
	}
	defer unlock()

	cached, err := u.repo.GetSession(ctx, visitorID)
	if err != nil {
		return models.Session{}, err
	}

	opCtx, cancel := context.WithTimeout(ctx, u.requestTimeout())
	defer cancel()

	sess := NewSessionContext(u.transports(visitorID), cached)
	result, err := sess.Logout(opCtx)
	if err != nil {
		return result, err
	}

	if err := u.repo.SaveSession(ctx, visitorID, result); err != nil {
		logger.Error("Failed to save session",
			logger.String("visitor_id", visitorID),
			logger.Err(err))
	}
	if err := u.repo.DeleteFlow(ctx, visitorID); err != nil {
		logger.Error("Failed to delete flow",
			logger.String("visitor_id", visitorID),
			logger.Err(err))
	}

	if u.events != nil {
		event := &models.AuthEvent{
			ID:         uuid.NewString(),
			Type:       constants.EventLogout,
			VisitorID:  visitorID,
			OccurredAt: time.Now().UTC(),
		}
		if cached != nil && cached.User != nil {
			event.Username = cached.User.Username
		}
		if err := u.events.PublishAuthEvent(ctx, event); err != nil {
			logger.Warn("Failed to publish auth event",
				logger.String("event_type", event.Type),
				logger.Err(err))
		}
	}

	return result, nil
}

// VisitorLockTTL returns how long a visitor lock must live so that it is
// still held when a request's backend calls hit their deadline.
func VisitorLockTTL(cfg models.FlowConfig) time.Duration {
	return requestTimeout(cfg) + constants.VisitorLockMargin
}

func requestTimeout(cfg models.FlowConfig) time.Duration {
	if cfg.RequestTimeout <= 0 {
		return constants.DefaultFlowRequestTimeout
	}
	return time.Duration(cfg.RequestTimeout) * time.Second
}

func (u *AuthUC) requestTimeout() time.Duration {
	return requestTimeout(u.cfg)
}

// withFlow restores the visitor's flow under the visitor lock, runs op with
// the request timeout and saves the resulting flow and session. fresh discards a finished flow,
// the way reopening the sign-in page starts over.
func (u *AuthUC) withFlow(ctx context.Context, visitorID string, fresh bool, op func(ctx context.Context, f *FlowController) (models.FlowState, error)) (models.FlowState, error) {
	unlock, err := u.repo.Lock(ctx, visitorID)
	if err != nil {
		return models.FlowState{}, err
	}
	defer unlock()

	state, err := u.repo.GetFlow(ctx, visitorID)
	if err != nil {
		return models.FlowState{}, err
	}
	if fresh && state != nil && state.Phase == models.PhaseFinalizing {
		state = nil
	}

	cached, err := u.repo.GetSession(ctx, visitorID)
	if err != nil {
		return models.FlowState{}, err
	}

	transport := u.transports(visitorID)
	sess := NewSessionContext(transport, cached)
	flow := NewFlowController(transport, sess, FlowOptions{
		LandingPath:    u.cfg.LandingPath,
		GoogleClientID: u.cfg.GoogleClientID,
		VisitorID:      visitorID,
		Events:         u.events,
		Initial:        state,
	})

	opCtx, cancel := context.WithTimeout(ctx, u.requestTimeout())
	defer cancel()
	result, opErr := op(opCtx, flow)

	if err := u.repo.SaveFlow(ctx, visitorID, flow.State()); err != nil {
		logger.Error("Failed to save flow",
			logger.String("visitor_id", visitorID),
			logger.Err(err))
		if opErr == nil {
			return result, err
		}
	}
	// only a finished sign-in refreshed the session
	if opErr == nil && result.Phase == models.PhaseFinalizing {
		if err := u.repo.SaveSession(ctx, visitorID, sess.Snapshot()); err != nil {
			logger.Error("Failed to save session",
				logger.String("visitor_id", visitorID),
				logger.Err(err))
		}
	}

	return result, opErr
}
