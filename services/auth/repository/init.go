package repository

import (
	"time"

	"github.com/piresc/authgate/internal/pkg/database"
	"github.com/piresc/authgate/services/auth"
)

// FlowRepo keeps visitor flow and session snapshots in Redis
type FlowRepo struct {
	redisClient *database.RedisClient
	ttl         time.Duration
	lockTTL     time.Duration
}

// NewFlowRepo creates a new flow repository. Snapshots expire after ttl of
// inactivity; visitor locks expire after lockTTL.
func NewFlowRepo(redisClient *database.RedisClient, ttl, lockTTL time.Duration) *FlowRepo {
	return &FlowRepo{
		redisClient: redisClient,
		ttl:         ttl,
		lockTTL:     lockTTL,
	}
}

var _ auth.FlowRepo = (*FlowRepo)(nil)
