package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mhofstetter/homestorage/internal/allocation"
	"github.com/mhofstetter/homestorage/internal/config"
)

// AllocationCache caches the allocation dashboard keyed by state revision.
// A revision bump on every mutation makes stale entries unreachable, so the
// TTL only bounds memory, not correctness.
type AllocationCache interface {
	GetDashboard(ctx context.Context, rev int64) (*allocation.Dashboard, bool, error)
	SetDashboard(ctx context.Context, rev int64, d *allocation.Dashboard) error
	// Invalidate drops every cached dashboard; used when the whole state
	// blob is replaced from outside and the revision counter restarts.
	Invalidate(ctx context.Context) error
}

type noopAllocationCache struct{}

// NewNoopAllocationCache returns a cache that stores nothing; used when
// caching is disabled.
func NewNoopAllocationCache() AllocationCache {
	return noopAllocationCache{}
}

func (noopAllocationCache) GetDashboard(context.Context, int64) (*allocation.Dashboard, bool, error) {
	return nil, false, nil
}

func (noopAllocationCache) SetDashboard(context.Context, int64, *allocation.Dashboard) error {
	return nil
}

func (noopAllocationCache) Invalidate(context.Context) error {
	return nil
}

type redisAllocationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAllocationCache connects to redis and returns a dashboard cache.
func NewRedisAllocationCache(cfg config.CacheConfig) (AllocationCache, error) {
	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return &redisAllocationCache{client: client, ttl: ttl}, nil
}

const dashboardKeyPrefix = "homestorage:alloc:dashboard:"

func dashboardKey(rev int64) string {
	return fmt.Sprintf("%s%d", dashboardKeyPrefix, rev)
}

func (c *redisAllocationCache) GetDashboard(ctx context.Context, rev int64) (*allocation.Dashboard, bool, error) {
	data, err := c.client.Get(ctx, dashboardKey(rev)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	d := &allocation.Dashboard{}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, false, fmt.Errorf("could not decode cached dashboard: %w", err)
	}
	return d, true, nil
}

func (c *redisAllocationCache) SetDashboard(ctx context.Context, rev int64, d *allocation.Dashboard) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("could not encode dashboard: %w", err)
	}
	if err := c.client.Set(ctx, dashboardKey(rev), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAllocationCache) Invalidate(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, dashboardKeyPrefix, 100)
}
