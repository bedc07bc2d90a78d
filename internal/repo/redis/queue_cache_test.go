package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/memoryline/yearbook/internal/domain/enums"
	redrepo "github.com/memoryline/yearbook/internal/repo/redis"
)

func newQueueCache(t *testing.T, ttl time.Duration) (*redrepo.QueueCache, *miniredis.Miniredis) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mini.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return redrepo.NewQueueCache(client, ttl), mini
}

func TestQueueCacheRoundTrip(t *testing.T) {
	cache, _ := newQueueCache(t, time.Minute)
	ctx := context.Background()

	if _, err := cache.GetPendingCount(ctx, enums.EntityKindPhoto); !errors.Is(err, redrepo.ErrQueueCountMiss) {
		t.Fatalf("cold cache must miss, got %v", err)
	}

	if err := cache.SetPendingCount(ctx, enums.EntityKindPhoto, 7); err != nil {
		t.Fatalf("set pending count: %v", err)
	}

	count, err := cache.GetPendingCount(ctx, enums.EntityKindPhoto)
	if err != nil {
		t.Fatalf("get pending count: %v", err)
	}
	if count != 7 {
		t.Fatalf("count = %d, want 7", count)
	}

	// Counters are per kind.
	if _, err := cache.GetPendingCount(ctx, enums.EntityKindMemory); !errors.Is(err, redrepo.ErrQueueCountMiss) {
		t.Fatalf("other kind must not share the counter, got %v", err)
	}
}

func TestQueueCacheInvalidate(t *testing.T) {
	cache, _ := newQueueCache(t, time.Minute)
	ctx := context.Background()

	if err := cache.SetPendingCount(ctx, enums.EntityKindEvent, 3); err != nil {
		t.Fatalf("set pending count: %v", err)
	}
	if err := cache.InvalidatePendingCount(ctx, enums.EntityKindEvent); err != nil {
		t.Fatalf("invalidate pending count: %v", err)
	}

	if _, err := cache.GetPendingCount(ctx, enums.EntityKindEvent); !errors.Is(err, redrepo.ErrQueueCountMiss) {
		t.Fatalf("invalidated counter must miss, got %v", err)
	}
}

func TestQueueCacheCounterExpires(t *testing.T) {
	cache, mini := newQueueCache(t, time.Second)
	ctx := context.Background()

	if err := cache.SetPendingCount(ctx, enums.EntityKindProfile, 5); err != nil {
		t.Fatalf("set pending count: %v", err)
	}

	mini.FastForward(2 * time.Second)

	if _, err := cache.GetPendingCount(ctx, enums.EntityKindProfile); !errors.Is(err, redrepo.ErrQueueCountMiss) {
		t.Fatalf("expired counter must miss, got %v", err)
	}
}

func TestQueueCacheClampsNegativeCount(t *testing.T) {
	cache, _ := newQueueCache(t, time.Minute)
	ctx := context.Background()

	if err := cache.SetPendingCount(ctx, enums.EntityKindProject, -4); err != nil {
		t.Fatalf("set pending count: %v", err)
	}

	count, err := cache.GetPendingCount(ctx, enums.EntityKindProject)
	if err != nil {
		t.Fatalf("get pending count: %v", err)
	}
	if count != 0 {
		t.Fatalf("negative count must clamp to zero, got %d", count)
	}
}
