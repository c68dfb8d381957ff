package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// UnreadCache stores per-user unread ticket totals in Redis so the badge
// endpoint does not hit postgres on every poll.
type UnreadCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUnreadCache builds a cache over an existing Redis client.
func NewUnreadCache(client *redis.Client, ttl time.Duration) *UnreadCache {
	return &UnreadCache{client: client, ttl: ttl}
}

func unreadKey(userID int64) string {
	return fmt.Sprintf("unread:user:%d", userID)
}

// Get returns the cached total and whether a value was present.
func (c *UnreadCache) Get(ctx context.Context, userID int64) (int, bool, error) {
	if c == nil || c.client == nil {
		return 0, false, nil
	}
	val, err := c.client.Get(ctx, unreadKey(userID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	total, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, nil
	}
	return total, true, nil
}

// Set stores the total with the configured TTL.
func (c *UnreadCache) Set(ctx context.Context, userID int64, total int) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, unreadKey(userID), total, c.ttl).Err()
}

// Invalidate drops the cached total for a user, if any.
func (c *UnreadCache) Invalidate(ctx context.Context, userID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, unreadKey(userID)).Err()
}
