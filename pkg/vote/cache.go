package vote

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/framefest/platform/pkg/common/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CountCache keeps a short-lived copy of per-entry vote counts in Redis so
// gallery polling does not hammer the votes table. A miss or a Redis fault
// falls through to the store; Toggle invalidates.
type CountCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCountCache(client *redis.Client, ttl time.Duration) *CountCache {
	return &CountCache{client: client, ttl: ttl}
}

func (c *CountCache) key(entryID uuid.UUID) string {
	return fmt.Sprintf("entry:votes:%s", entryID)
}

func (c *CountCache) Get(ctx context.Context, entryID uuid.UUID) (int, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	raw, err := c.client.Get(ctx, c.key(entryID)).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Log.WithError(err).Debug("vote count cache read failed")
		}
		return 0, false
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (c *CountCache) Set(ctx context.Context, entryID uuid.UUID, count int) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, c.key(entryID), count, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).Debug("vote count cache write failed")
	}
}

func (c *CountCache) Invalidate(ctx context.Context, entryID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.key(entryID)).Err(); err != nil {
		logger.Log.WithError(err).Debug("vote count cache invalidation failed")
	}
}
