package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/piresc/authgate/internal/pkg/constants"
	"github.com/piresc/authgate/internal/pkg/logger"
	"github.com/piresc/authgate/internal/pkg/models"
	"github.com/piresc/authgate/services/auth"
)

// releaseLock deletes the lock only if this holder still owns it
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// GetFlow returns the saved flow state, or nil when there is none
func (r *FlowRepo) GetFlow(ctx context.Context, visitorID string) (*models.FlowState, error) {
	var state models.FlowState
	found, err := r.getJSON(ctx, fmt.Sprintf(constants.KeyVisitorFlow, visitorID), &state)
	if err != nil || !found {
		return nil, err
	}
	return &state, nil
}

// SaveFlow stores the flow state
func (r *FlowRepo) SaveFlow(ctx context.Context, visitorID string, state models.FlowState) error {
	return r.setJSON(ctx, fmt.Sprintf(constants.KeyVisitorFlow, visitorID), state)
}

// DeleteFlow removes the flow state
func (r *FlowRepo) DeleteFlow(ctx context.Context, visitorID string) error {
	if err := r.redisClient.Delete(ctx, fmt.Sprintf(constants.KeyVisitorFlow, visitorID)); err != nil {
		return fmt.Errorf("failed to delete flow: %w", err)
	}
	return nil
}

// GetSession returns the cached session, or nil when it was never checked
func (r *FlowRepo) GetSession(ctx context.Context, visitorID string) (*models.Session, error) {
	var session models.Session
	found, err := r.getJSON(ctx, fmt.Sprintf(constants.KeyVisitorSession, visitorID), &session)
	if err != nil || !found {
		return nil, err
	}
	return &session, nil
}

// SaveSession stores the cached session
func (r *FlowRepo) SaveSession(ctx context.Context, visitorID string, session models.Session) error {
	return r.setJSON(ctx, fmt.Sprintf(constants.KeyVisitorSession, visitorID), session)
}

// Lock takes the visitor lock with SET NX. The returned unlock releases it
// only while this caller still owns it.
func (r *FlowRepo) Lock(ctx context.Context, visitorID string) (func(), error) {
	key := fmt.Sprintf(constants.KeyVisitorLock, visitorID)
	token := uuid.NewString()

	ok, err := r.redisClient.SetNX(ctx, key, token, r.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire visitor lock: %w", err)
	}
	if !ok {
		return nil, auth.ErrVisitorBusy
	}

	return func() {
		// the request context may already be cancelled
		if err := releaseLock.Run(context.Background(), r.redisClient.Client, []string{key}, token).Err(); err != nil {
			logger.Warn("Failed to release visitor lock",
				logger.String("visitor_id", visitorID),
				logger.Err(err))
		}
	}, nil
}

func (r *FlowRepo) getJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := r.redisClient.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		logger.Warn("Discarding unreadable snapshot",
			logger.String("key", key),
			logger.Err(err))
		return false, nil
	}
	return true, nil
}

func (r *FlowRepo) setJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := r.redisClient.Set(ctx, key, data, r.ttl); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
