package dashboard

import (
	"context"
	"encoding/json"
	"time"
)

// CacheStore is the subset of the Redis client the metrics cache needs.
type CacheStore interface {
	Generation(ctx context.Context, storeID int64) (int64, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	MetricsCacheKey(storeID, generation int64, scope string) string
}

type metricsCache struct {
	store CacheStore
	ttl   time.Duration
}

// generation reads the store generation. ok is false when the cache is
// disabled or unreachable, in which case callers compute without caching.
func (c *metricsCache) generation(ctx context.Context, storeID int64) (int64, bool, error) {
	if c == nil || c.store == nil {
		return 0, false, nil
	}
	gen, err := c.store.Generation(ctx, storeID)
	if err != nil {
		return 0, false, err
	}
	return gen, true, nil
}

func (c *metricsCache) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *metricsCache) save(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, payload, c.ttl)
}
