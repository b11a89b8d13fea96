package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// UnreadCache caches per-user unread counts so the badge poll does not
// hit postgres on every request. A miss or a cache failure falls back to
// the real count.
type UnreadCache interface {
	Get(ctx context.Context, userID uuid.UUID) (int, bool)
	Set(ctx context.Context, userID uuid.UUID, count int)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type RedisUnreadCache struct {
	logger *slog.Logger
	client *redis.Client
	ttl    time.Duration
}

func NewRedisUnreadCache(logger *slog.Logger, client *redis.Client, ttl time.Duration) *RedisUnreadCache {
	return &RedisUnreadCache{logger: logger, client: client, ttl: ttl}
}

func unreadKey(userID uuid.UUID) string {
	return fmt.Sprintf("notifications:unread:%s", userID)
}

func (c *RedisUnreadCache) Get(ctx context.Context, userID uuid.UUID) (int, bool) {
	value, err := c.client.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("unread cache read failed", "error", err)
		}
		return 0, false
	}
	count, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (c *RedisUnreadCache) Set(ctx context.Context, userID uuid.UUID, count int) {
	if err := c.client.Set(ctx, unreadKey(userID), strconv.Itoa(count), c.ttl).Err(); err != nil {
		c.logger.Warn("unread cache write failed", "error", err)
	}
}

func (c *RedisUnreadCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := c.client.Del(ctx, unreadKey(userID)).Err(); err != nil {
		c.logger.Warn("unread cache invalidation failed", "error", err)
	}
}
