package dashboard

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storegoals-backend/internal/goals"
	"github.com/angelmondragon/storegoals-backend/internal/periods"
	"github.com/angelmondragon/storegoals-backend/pkg/db/models"
	"github.com/angelmondragon/storegoals-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storegoals-backend/pkg/errors"
)

type stubGoals struct {
	store    goals.Targets
	user     goals.Targets
	err      error
	failures int32
	calls    atomic.Int32
}

func (s *stubGoals) StoreTargets(_ context.Context, _ int64, _, _ time.Time) (goals.Targets, error) {
	n := s.calls.Add(1)
	if s.err != nil && n <= s.failures {
		return goals.Targets{}, s.err
	}
	return s.store, nil
}

func (s *stubGoals) UserTargets(_ context.Context, _ int64, _, _ time.Time) (goals.Targets, error) {
	return s.user, nil
}

type stubSales struct {
	store []models.StoreSale
	user  []models.UserSale
	err   error
	calls atomic.Int32
}

func (s *stubSales) StoreSalesInRange(_ context.Context, _ int64, _, _ time.Time) ([]models.StoreSale, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.store, nil
}

func (s *stubSales) UserSalesInRange(_ context.Context, _ int64, _, _ time.Time) ([]models.UserSale, error) {
	return s.user, nil
}

type memoryCache struct {
	mu         sync.Mutex
	generation int64
	values     map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}}
}

func (m *memoryCache) Generation(context.Context, int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation, nil
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = string(value.([]byte))
	return nil
}

func (m *memoryCache) MetricsCacheKey(storeID, generation int64, scope string) string {
	return fmt.Sprintf("metrics:%d:g%d:%s", storeID, generation, scope)
}

func (m *memoryCache) bump() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
}

type fixedWindow struct {
	resolver *periods.Resolver
}

func (f fixedWindow) Window(from, to int) iter.Seq[periods.Period] {
	return f.resolver.Window(from, to)
}

var testNow = time.Date(2025, time.July, 25, 12, 0, 0, 0, time.UTC)

func testPeriod() periods.Period {
	return periods.NewResolver(time.UTC).WithClock(func() time.Time { return testNow }).Current()
}

func newTestService(t *testing.T, g *stubGoals, s *stubSales, cache CacheStore) Service {
	t.Helper()
	resolver := periods.NewResolver(time.UTC).WithClock(func() time.Time { return testNow })
	svc, err := NewService(ServiceParams{
		Goals:        g,
		Sales:        s,
		Periods:      fixedWindow{resolver: resolver},
		Cache:        cache,
		CacheTTL:     time.Minute,
		Clock:        func() time.Time { return testNow },
		RetryBackoff: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func storeTargets(total string) goals.Targets {
	return goals.Targets{
		Found:      true,
		Total:      decimal.RequireFromString(total),
		ByCategory: map[enums.SaleCategory]decimal.Decimal{},
	}
}

func TestComputeMetricsStoreScenario(t *testing.T) {
	g := &stubGoals{store: storeTargets("10000")}
	s := &stubSales{store: []models.StoreSale{
		{StoreID: 7, Category: "geral", Value: decimal.RequireFromString("3083.07"), Quantity: 12},
	}}
	svc := newTestService(t, g, s, nil)

	p := testPeriod()
	if p.Key() != "2025-07-21_2025-08-20" {
		t.Fatalf("unexpected period %s", p.Key())
	}
	out, err := svc.ComputeMetrics(context.Background(), 7, p)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	geral := metricFor(t, out, enums.CategoryGeneral)
	if geral.Realized.String() != "3083.07" || geral.Remaining.String() != "6916.93" || geral.Status != enums.MetricStatusPending {
		t.Fatalf("unexpected geral metric %+v", geral)
	}
}

func TestComputeMetricsValidatesInputs(t *testing.T) {
	svc := newTestService(t, &stubGoals{}, &stubSales{}, nil)
	if _, err := svc.ComputeMetrics(context.Background(), 0, testPeriod()); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for store id, got %v", err)
	}
	bad := testPeriod()
	bad.Start, bad.End = bad.End, bad.Start
	if _, err := svc.ComputeMetrics(context.Background(), 7, bad); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for inverted period, got %v", err)
	}
}

func TestComputeMetricsFailsWholeComputationOnReadError(t *testing.T) {
	s := &stubSales{err: errors.New("connection reset")}
	svc := newTestService(t, &stubGoals{store: storeTargets("10")}, s, nil)

	out, err := svc.ComputeMetrics(context.Background(), 7, testPeriod())
	if out != nil {
		t.Fatalf("expected no partial results")
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeDataFetch) {
		t.Fatalf("expected data fetch error, got %v", err)
	}
	if got := s.calls.Load(); got != defaultFetchRetries {
		t.Fatalf("expected %d attempts, got %d", defaultFetchRetries, got)
	}
}

func TestComputeMetricsRetriesTransientFailures(t *testing.T) {
	g := &stubGoals{store: storeTargets("500"), err: errors.New("timeout"), failures: 1}
	s := &stubSales{store: []models.StoreSale{{Category: "geral", Value: decimal.RequireFromString("500")}}}
	svc := newTestService(t, g, s, nil)

	out, err := svc.ComputeMetrics(context.Background(), 7, testPeriod())
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if metricFor(t, out, enums.CategoryGeneral).Status != enums.MetricStatusMet {
		t.Fatalf("expected met status")
	}
}

func TestMetricsCachesPerGeneration(t *testing.T) {
	g := &stubGoals{store: storeTargets("100")}
	s := &stubSales{store: []models.StoreSale{{Category: "geral", Value: decimal.RequireFromString("10")}}}
	cache := newMemoryCache()
	svc := newTestService(t, g, s, cache)
	ctx := context.Background()

	first, err := svc.Metrics(ctx, 7, testPeriod())
	if err != nil || first.Cached {
		t.Fatalf("first call should compute: %+v %v", first, err)
	}
	second, err := svc.Metrics(ctx, 7, testPeriod())
	if err != nil || !second.Cached {
		t.Fatalf("second call should hit cache: %+v %v", second, err)
	}
	if s.calls.Load() != 1 {
		t.Fatalf("expected one sales read, got %d", s.calls.Load())
	}
	if second.PeriodKey != "2025-07-21_2025-08-20" {
		t.Fatalf("period key not echoed: %s", second.PeriodKey)
	}

	s.store = append(s.store, models.StoreSale{Category: "geral", Value: decimal.RequireFromString("5")})
	cache.bump()
	third, err := svc.Metrics(ctx, 7, testPeriod())
	if err != nil || third.Cached {
		t.Fatalf("bumped generation should recompute: %+v %v", third, err)
	}
	if third.Generation != 1 {
		t.Fatalf("expected generation 1, got %d", third.Generation)
	}
	if metricFor(t, third.Metrics, enums.CategoryGeneral).Realized.String() != "15.00" {
		t.Fatalf("stale metrics served after bump")
	}
}

func TestLateComputationDoesNotOverwriteNewerGeneration(t *testing.T) {
	cache := newMemoryCache()
	fresh := newTestService(t, &stubGoals{store: storeTargets("100")}, &stubSales{store: []models.StoreSale{{Category: "geral", Value: decimal.RequireFromString("50")}}}, cache)

	// A computation keyed at generation 0 finishes after a sale moved the
	// store to generation 1.
	staleKey := cache.MetricsCacheKey(7, 0, scopeStore+":"+testPeriod().Key())
	cache.bump()
	if _, err := fresh.Metrics(context.Background(), 7, testPeriod()); err != nil {
		t.Fatalf("metrics: %v", err)
	}
	_ = cache.Set(context.Background(), staleKey, []byte(`[]`), time.Minute)

	res, err := fresh.Metrics(context.Background(), 7, testPeriod())
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if !res.Cached || len(res.Metrics) != len(enums.Categories) {
		t.Fatalf("late write leaked into current generation: %+v", res)
	}
}

func TestPersonalMetricsUseUserGoals(t *testing.T) {
	g := &stubGoals{user: goals.Targets{
		Found:      true,
		Total:      decimal.RequireFromString("2000"),
		ByCategory: map[enums.SaleCategory]decimal.Decimal{enums.CategoryHealth: decimal.RequireFromString("300")},
	}}
	s := &stubSales{user: []models.UserSale{
		{Category: "geral", Value: decimal.RequireFromString("2500")},
		{Category: "saude", Value: decimal.RequireFromString("100")},
	}}
	svc := newTestService(t, g, s, nil)

	res, err := svc.ComputePersonalMetrics(context.Background(), 42, testPeriod())
	if err != nil {
		t.Fatalf("personal: %v", err)
	}
	if res.UserID != 42 {
		t.Fatalf("user id not echoed")
	}
	if metricFor(t, res.Metrics, enums.CategoryGeneral).Status != enums.MetricStatusExceeded {
		t.Fatalf("expected geral exceeded")
	}
	if metricFor(t, res.Metrics, enums.CategoryHealth).Remaining.String() != "200.00" {
		t.Fatalf("unexpected health remaining")
	}
}

func TestGoalDetailPacing(t *testing.T) {
	g := &stubGoals{store: storeTargets("3100")}
	s := &stubSales{store: []models.StoreSale{{Category: "geral", Value: decimal.RequireFromString("300")}}}
	svc := newTestService(t, g, s, nil)

	detail, err := svc.GoalDetail(context.Background(), 7, testPeriod(), "sul")
	if err != nil {
		t.Fatalf("goal detail: %v", err)
	}
	// 2025-07-21..2025-08-20 is 31 days; 2025-07-21..2025-07-25 is 5.
	if detail.WorkingDays != 31 || detail.ElapsedDays != 5 || detail.RemainingDays != 26 {
		t.Fatalf("unexpected day counts %d/%d/%d", detail.WorkingDays, detail.ElapsedDays, detail.RemainingDays)
	}
	geral := detail.Categories[0]
	if geral.DailyTarget.String() != "100.00" || geral.DailyAverage.String() != "60.00" || !geral.BehindPace {
		t.Fatalf("unexpected pacing %+v", geral)
	}

	centro, err := svc.GoalDetail(context.Background(), 7, testPeriod(), "centro")
	if err != nil {
		t.Fatalf("goal detail centro: %v", err)
	}
	// Sundays 07-27, 08-03, 08-10 and 08-17 fall in the period; none has elapsed.
	if centro.WorkingDays != 27 || centro.ElapsedDays != 5 {
		t.Fatalf("unexpected centro counts %d/%d", centro.WorkingDays, centro.ElapsedDays)
	}
}

func TestHistoryOrderedByOffset(t *testing.T) {
	g := &stubGoals{store: storeTargets("10")}
	s := &stubSales{}
	svc := newTestService(t, g, s, nil)

	entries, err := svc.History(context.Background(), 7, -4, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Period.Offset != i-4 {
			t.Fatalf("entry %d has offset %d", i, e.Period.Offset)
		}
		if len(e.Metrics) != len(enums.Categories) {
			t.Fatalf("entry %d missing metrics", i)
		}
	}

	if _, err := svc.History(context.Background(), 7, 1, 0); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHistoryFailsAsDataFetch(t *testing.T) {
	svc := newTestService(t, &stubGoals{}, &stubSales{err: errors.New("down")}, nil)
	if _, err := svc.History(context.Background(), 7, -1, 0); !pkgerrors.IsCode(err, pkgerrors.CodeDataFetch) {
		t.Fatalf("expected data fetch error, got %v", err)
	}
}

func TestGoalSetFromFillsEveryCategory(t *testing.T) {
	set := goalSetFrom(goals.Targets{
		Total:      decimal.RequireFromString("900"),
		ByCategory: map[enums.SaleCategory]decimal.Decimal{enums.CategoryHealth: decimal.RequireFromString("120")},
	})
	if !set.Total.Equal(decimal.RequireFromString("900")) {
		t.Fatalf("unexpected total %s", set.Total)
	}
	if len(set.Categories) != len(enums.Categories)-1 {
		t.Fatalf("expected %d categories, got %d", len(enums.Categories)-1, len(set.Categories))
	}
	if got := set.target(enums.CategoryHealth); !got.Equal(decimal.RequireFromString("120")) {
		t.Fatalf("unexpected health target %s", got)
	}
	if got := set.target(enums.CategoryPerfumery); !got.IsZero() {
		t.Fatalf("expected zero perfumery target, got %s", got)
	}
}
