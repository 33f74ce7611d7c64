package cron

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
)

type fakeStores struct {
	ids []int64
	err error
}

func (f fakeStores) ListIDs(context.Context) ([]int64, error) { return f.ids, f.err }

type fakeCache struct {
	generations map[int64]int64
	keys        map[string]bool
	genErr      map[int64]error
}

func (f *fakeCache) Generation(ctx context.Context, storeID int64) (int64, error) {
	if err := f.genErr[storeID]; err != nil {
		return 0, err
	}
	return f.generations[storeID], nil
}

func (f *fakeCache) MetricsCachePattern(storeID int64) string {
	return fmt.Sprintf("sg:metrics:%d:*", storeID)
}

func (f *fakeCache) ScanKeys(ctx context.Context, pattern string, fn func(key string) error) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.keys {
		if strings.HasPrefix(key, prefix) {
			if err := fn(key); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.keys, k)
	}
	return nil
}

func (f *fakeCache) remaining() []string {
	out := make([]string, 0, len(f.keys))
	for k := range f.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestCacheSweepDeletesOlderGenerations(t *testing.T) {
	cache := &fakeCache{
		generations: map[int64]int64{7: 3, 8: 0},
		keys: map[string]bool{
			"sg:metrics:7:g1:store:2025-07-21_2025-08-20": true,
			"sg:metrics:7:g2:store:2025-07-21_2025-08-20": true,
			"sg:metrics:7:g3:store:2025-07-21_2025-08-20": true,
			"sg:metrics:8:g0:store:2025-07-21_2025-08-20": true,
		},
	}
	job, err := NewCacheSweepJob(CacheSweepJobParams{Logger: testLogger(), Stores: fakeStores{ids: []int64{7, 8}}, Cache: cache})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{
		"sg:metrics:7:g3:store:2025-07-21_2025-08-20",
		"sg:metrics:8:g0:store:2025-07-21_2025-08-20",
	}
	got := cache.remaining()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected remaining keys %v", got)
	}
}

func TestCacheSweepContinuesPastStoreFailure(t *testing.T) {
	cache := &fakeCache{
		generations: map[int64]int64{2: 5},
		genErr:      map[int64]error{1: errors.New("timeout")},
		keys:        map[string]bool{"sg:metrics:2:g4:store:x": true},
	}
	job, _ := NewCacheSweepJob(CacheSweepJobParams{Logger: testLogger(), Stores: fakeStores{ids: []int64{1, 2}}, Cache: cache})
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected aggregated error")
	}
	if len(cache.keys) != 0 {
		t.Fatalf("store 2 should still be swept, got %v", cache.remaining())
	}
}

func TestGenerationOf(t *testing.T) {
	if gen, ok := generationOf("sg:metrics:12:g40:store:2025-07-21_2025-08-20"); !ok || gen != 40 {
		t.Fatalf("unexpected %d %v", gen, ok)
	}
	if _, ok := generationOf("sg:metrics:12:store"); ok {
		t.Fatal("expected no generation")
	}
}
