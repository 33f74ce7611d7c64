package cron

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/angelmondragon/storegoals-backend/pkg/logger"
)

type storeLister interface {
	ListIDs(ctx context.Context) ([]int64, error)
}

type cacheSweeper interface {
	Generation(ctx context.Context, storeID int64) (int64, error)
	MetricsCachePattern(storeID int64) string
	ScanKeys(ctx context.Context, pattern string, fn func(key string) error) error
	Del(ctx context.Context, keys ...string) error
}

type CacheSweepJobParams struct {
	Logger *logger.Logger
	Stores storeLister
	Cache  cacheSweeper
}

// NewCacheSweepJob deletes cached metrics written under a generation older
// than the store's current one. Those entries can never be read again.
func NewCacheSweepJob(params CacheSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("cache client required")
	}
	return &cacheSweepJob{logg: params.Logger, stores: params.Stores, cache: params.Cache}, nil
}

type cacheSweepJob struct {
	logg   *logger.Logger
	stores storeLister
	cache  cacheSweeper
}

func (j *cacheSweepJob) Name() string { return "metrics-cache-sweep" }

func (j *cacheSweepJob) Run(ctx context.Context) error {
	ids, err := j.stores.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list stores: %w", err)
	}

	var (
		errs    error
		deleted int
	)
	for _, storeID := range ids {
		n, err := j.sweepStore(ctx, storeID)
		deleted += n
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("store %d: %w", storeID, err))
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"stores":       len(ids),
		"keys_deleted": deleted,
	})
	j.logg.Info(logCtx, "metrics cache sweep complete")
	return errs
}

func (j *cacheSweepJob) sweepStore(ctx context.Context, storeID int64) (int, error) {
	current, err := j.cache.Generation(ctx, storeID)
	if err != nil {
		return 0, fmt.Errorf("read generation: %w", err)
	}

	var stale []string
	err = j.cache.ScanKeys(ctx, j.cache.MetricsCachePattern(storeID), func(key string) error {
		if gen, ok := generationOf(key); ok && gen < current {
			stale = append(stale, key)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan keys: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}
	if err := j.cache.Del(ctx, stale...); err != nil {
		return 0, fmt.Errorf("delete keys: %w", err)
	}
	return len(stale), nil
}

// generationOf extracts N from the g<N> segment of a metrics cache key.
func generationOf(key string) (int64, bool) {
	for _, part := range strings.Split(key, ":") {
		if len(part) < 2 || part[0] != 'g' {
			continue
		}
		gen, err := strconv.ParseInt(part[1:], 10, 64)
		if err == nil {
			return gen, true
		}
	}
	return 0, false
}
