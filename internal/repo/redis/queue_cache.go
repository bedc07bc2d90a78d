package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/memoryline/yearbook/internal/domain/enums"
)

const pendingCountPrefix = "modqueue:pending:"

var ErrQueueCountMiss = errors.New("queue count not cached")

// QueueCache keeps per-kind pending counters so the queue size shown next to
// every item does not cost a COUNT(*) per request. Decisions invalidate the
// counter instead of decrementing it; the next read recomputes from Postgres.
type QueueCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewQueueCache(client *goredis.Client, ttl time.Duration) *QueueCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &QueueCache{client: client, ttl: ttl}
}

func (c *QueueCache) GetPendingCount(ctx context.Context, kind enums.EntityKind) (int, error) {
	if c.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}

	raw, err := c.client.Get(ctx, pendingCountKey(kind)).Result()
	if err == goredis.Nil {
		return 0, ErrQueueCountMiss
	}
	if err != nil {
		return 0, fmt.Errorf("get pending count: %w", err)
	}

	count, err := strconv.Atoi(raw)
	if err != nil || count < 0 {
		return 0, ErrQueueCountMiss
	}
	return count, nil
}

func (c *QueueCache) SetPendingCount(ctx context.Context, kind enums.EntityKind, count int) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if count < 0 {
		count = 0
	}

	if err := c.client.Set(ctx, pendingCountKey(kind), strconv.Itoa(count), c.ttl).Err(); err != nil {
		return fmt.Errorf("set pending count: %w", err)
	}
	return nil
}

func (c *QueueCache) InvalidatePendingCount(ctx context.Context, kind enums.EntityKind) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := c.client.Del(ctx, pendingCountKey(kind)).Err(); err != nil {
		return fmt.Errorf("invalidate pending count: %w", err)
	}
	return nil
}

func pendingCountKey(kind enums.EntityKind) string {
	return pendingCountPrefix + string(kind)
}
