package usecase

import (
	"context"
	"sync"

	"github.com/piresc/authgate/internal/pkg/logger"
	"github.com/piresc/authgate/internal/pkg/models"
	"github.com/piresc/authgate/services/auth"
)

// SessionContext caches the backend session for the views that read it
type SessionContext struct {
	mu        sync.RWMutex
	session   models.Session
	transport auth.Transport
}

// NewSessionContext creates a session context. A nil initial session starts
// out loading until the first CheckAuth.
func NewSessionContext(transport auth.Transport, initial *models.Session) *SessionContext {
	s := &SessionContext{
		transport: transport,
		session:   models.Session{IsLoading: true},
	}
	if initial != nil {
		s.session = copySession(*initial)
	}
	return s
}

// Snapshot returns a copy of the cached session
func (s *SessionContext) Snapshot() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySession(s.session)
}

// CheckAuth re-reads the backend session. Any failure, and an authenticated
// session without a username, reads as signed out.
func (s *SessionContext) CheckAuth(ctx context.Context) models.Session {
	next := models.Session{}

	status, err := s.transport.CheckSession(ctx)
	switch {
	case err != nil:
		logger.Warn("Session check failed, treating as signed out", logger.Err(err))
	case status.IsAuthenticated:
		identity, err := s.transport.Whoami(ctx)
		if err != nil {
			logger.Warn("Whoami failed, treating as signed out", logger.Err(err))
			break
		}
		if identity.Username == "" {
			logger.Warn("Authenticated session without username, treating as signed out")
			break
		}
		next.User = &models.User{Username: identity.Username}
		next.IsAuthenticated = true
	}

	s.mu.Lock()
	s.session = next
	s.mu.Unlock()

	logger.Debug("Session checked", logger.Bool("authenticated", next.IsAuthenticated))
	return copySession(next)
}

// Logout ends the backend session. On failure the cached session is kept
// and a retryable *auth.LogoutError is returned.
func (s *SessionContext) Logout(ctx context.Context) (models.Session, error) {
	if err := s.transport.Logout(ctx); err != nil {
		logger.Error("Logout failed", logger.Err(err))
		return s.Snapshot(), &auth.LogoutError{Err: err}
	}

	s.mu.Lock()
	s.session = models.Session{}
	s.mu.Unlock()

	return s.Snapshot(), nil
}

func copySession(in models.Session) models.Session {
	out := in
	if in.User != nil {
		u := *in.User
		out.User = &u
	}
	return out
}
