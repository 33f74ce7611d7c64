package dashboard

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/storegoals-backend/internal/goals"
	"github.com/angelmondragon/storegoals-backend/internal/periods"
	"github.com/angelmondragon/storegoals-backend/pkg/db/models"
	"github.com/angelmondragon/storegoals-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storegoals-backend/pkg/errors"
	"github.com/angelmondragon/storegoals-backend/pkg/logger"
	"github.com/angelmondragon/storegoals-backend/pkg/metrics"
	redisclient "github.com/angelmondragon/storegoals-backend/pkg/redis"
	"github.com/angelmondragon/storegoals-backend/pkg/types"
)

const (
	scopeStore    = "store"
	scopePersonal = "personal"
	scopeHistory  = "history"

	defaultFetchRetries = 3
	defaultHistoryLimit = 4
	defaultRetryBackoff = 50 * time.Millisecond
	maxRetryElapsed     = 2 * time.Second
)

// Service computes goal progress for stores and employees.
type Service interface {
	Metrics(ctx context.Context, storeID int64, p periods.Period) (*MetricsResult, error)
	ComputeMetrics(ctx context.Context, storeID int64, p periods.Period) ([]CategoryMetric, error)
	ComputePersonalMetrics(ctx context.Context, userID int64, p periods.Period) (*MetricsResult, error)
	GoalDetail(ctx context.Context, storeID int64, p periods.Period, region string) (*GoalDetailResult, error)
	History(ctx context.Context, storeID int64, from, to int) ([]HistoryEntry, error)
}

type goalReader interface {
	StoreTargets(ctx context.Context, storeID int64, start, end time.Time) (goals.Targets, error)
	UserTargets(ctx context.Context, userID int64, start, end time.Time) (goals.Targets, error)
}

type salesReader interface {
	StoreSalesInRange(ctx context.Context, storeID int64, start, end time.Time) ([]models.StoreSale, error)
	UserSalesInRange(ctx context.Context, userID int64, start, end time.Time) ([]models.UserSale, error)
}

type periodWindow interface {
	Window(from, to int) iter.Seq[periods.Period]
}

// MetricsResult echoes the period key and cache generation so clients can
// discard responses for a period they no longer display.
type MetricsResult struct {
	StoreID    int64            `json:"store_id,omitempty"`
	UserID     int64            `json:"user_id,omitempty"`
	Period     periods.Period   `json:"period"`
	PeriodKey  string           `json:"period_key"`
	Generation int64            `json:"generation"`
	Cached     bool             `json:"cached"`
	Metrics    []CategoryMetric `json:"metrics"`
}

// CategoryDetail adds daily pacing to a category metric.
type CategoryDetail struct {
	CategoryMetric
	DailyTarget  types.Money `json:"daily_target"`
	DailyAverage types.Money `json:"daily_average"`
	BehindPace   bool        `json:"behind_pace"`
}

type GoalDetailResult struct {
	StoreID       int64            `json:"store_id"`
	Period        periods.Period   `json:"period"`
	PeriodKey     string           `json:"period_key"`
	Generation    int64            `json:"generation"`
	Region        string           `json:"region"`
	WorkingDays   int              `json:"working_days"`
	ElapsedDays   int              `json:"elapsed_days"`
	RemainingDays int              `json:"remaining_days"`
	Categories    []CategoryDetail `json:"categories"`
}

type HistoryEntry struct {
	Period     periods.Period   `json:"period"`
	PeriodKey  string           `json:"period_key"`
	Generation int64            `json:"generation"`
	Metrics    []CategoryMetric `json:"metrics"`
}

type ServiceParams struct {
	Goals        goalReader
	Sales        salesReader
	Periods      periodWindow
	Cache        CacheStore
	CacheTTL     time.Duration
	Metrics      *metrics.DashboardMetrics
	Logger       *logger.Logger
	Clock        func() time.Time
	FetchRetries int
	RetryBackoff time.Duration
	HistoryLimit int
}

type service struct {
	goals        goalReader
	sales        salesReader
	periods      periodWindow
	cache        *metricsCache
	metrics      *metrics.DashboardMetrics
	logg         *logger.Logger
	clock        func() time.Time
	retries      int
	retryBackoff time.Duration
	historyLimit int
}

func NewService(params ServiceParams) (Service, error) {
	if params.Goals == nil {
		return nil, fmt.Errorf("goal reader is required")
	}
	if params.Sales == nil {
		return nil, fmt.Errorf("sales reader is required")
	}
	if params.Periods == nil {
		return nil, fmt.Errorf("period window is required")
	}
	svc := &service{
		goals:        params.Goals,
		sales:        params.Sales,
		periods:      params.Periods,
		metrics:      params.Metrics,
		logg:         params.Logger,
		clock:        params.Clock,
		retries:      params.FetchRetries,
		retryBackoff: params.RetryBackoff,
		historyLimit: params.HistoryLimit,
	}
	if params.Cache != nil && params.CacheTTL > 0 {
		svc.cache = &metricsCache{store: params.Cache, ttl: params.CacheTTL}
	}
	if svc.clock == nil {
		svc.clock = time.Now
	}
	if svc.retries <= 0 {
		svc.retries = defaultFetchRetries
	}
	if svc.retryBackoff <= 0 {
		svc.retryBackoff = defaultRetryBackoff
	}
	if svc.historyLimit <= 0 {
		svc.historyLimit = defaultHistoryLimit
	}
	return svc, nil
}

func (s *service) ComputeMetrics(ctx context.Context, storeID int64, p periods.Period) ([]CategoryMetric, error) {
	if err := validateInputs("store id", storeID, p); err != nil {
		return nil, err
	}
	started := time.Now()

	var (
		targets goals.Targets
		rows    []models.StoreSale
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.retry(gctx, func() (err error) {
			targets, err = s.goals.StoreTargets(gctx, storeID, p.StartDate(), p.EndDate())
			return err
		})
	})
	g.Go(func() error {
		return s.retry(gctx, func() (err error) {
			rows, err = s.sales.StoreSalesInRange(gctx, storeID, p.StartDate(), p.EndDate())
			return err
		})
	})
	if err := g.Wait(); err != nil {
		s.metrics.IncFailure(scopeStore)
		s.logFailure(ctx, "dashboard.compute_failed", p, err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataFetch, err, "failed to load data")
	}

	sales := make([]Sale, 0, len(rows))
	for _, row := range rows {
		sales = append(sales, Sale{Category: row.Category, Value: row.Value, Quantity: row.Quantity})
	}
	out := Aggregate(goalSetFrom(targets), sales)
	s.metrics.ObserveCompute(scopeStore, time.Since(started))
	return out, nil
}

// Metrics serves ComputeMetrics through the generation-keyed cache. A result
// computed under an older generation lands on a key that is no longer read.
func (s *service) Metrics(ctx context.Context, storeID int64, p periods.Period) (*MetricsResult, error) {
	if err := validateInputs("store id", storeID, p); err != nil {
		return nil, err
	}
	result := &MetricsResult{StoreID: storeID, Period: p, PeriodKey: p.Key()}

	gen, cacheable, err := s.cache.generation(ctx, storeID)
	if err != nil {
		s.logWarn(ctx, "dashboard.cache_unavailable", err)
	}
	var key string
	if cacheable {
		result.Generation = gen
		key = s.cache.store.MetricsCacheKey(storeID, gen, scopeStore+":"+p.Key())
		var cached []CategoryMetric
		hit, err := s.cache.load(ctx, key, &cached)
		if err != nil && !redisclient.IsNil(err) {
			s.logWarn(ctx, "dashboard.cache_read_failed", err)
		}
		if hit {
			s.metrics.CacheHit(scopeStore)
			result.Cached = true
			result.Metrics = cached
			return result, nil
		}
		s.metrics.CacheMiss(scopeStore)
	}

	computed, err := s.ComputeMetrics(ctx, storeID, p)
	if err != nil {
		return nil, err
	}
	result.Metrics = computed

	if cacheable {
		if err := s.cache.save(ctx, key, computed); err != nil {
			s.logWarn(ctx, "dashboard.cache_write_failed", err)
		}
	}
	return result, nil
}

func (s *service) ComputePersonalMetrics(ctx context.Context, userID int64, p periods.Period) (*MetricsResult, error) {
	if err := validateInputs("user id", userID, p); err != nil {
		return nil, err
	}
	started := time.Now()

	var (
		targets goals.Targets
		rows    []models.UserSale
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.retry(gctx, func() (err error) {
			targets, err = s.goals.UserTargets(gctx, userID, p.StartDate(), p.EndDate())
			return err
		})
	})
	g.Go(func() error {
		return s.retry(gctx, func() (err error) {
			rows, err = s.sales.UserSalesInRange(gctx, userID, p.StartDate(), p.EndDate())
			return err
		})
	})
	if err := g.Wait(); err != nil {
		s.metrics.IncFailure(scopePersonal)
		s.logFailure(ctx, "dashboard.personal_failed", p, err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataFetch, err, "failed to load data")
	}

	sales := make([]Sale, 0, len(rows))
	for _, row := range rows {
		sales = append(sales, Sale{Category: row.Category, Value: row.Value})
	}
	s.metrics.ObserveCompute(scopePersonal, time.Since(started))
	return &MetricsResult{
		UserID:    userID,
		Period:    p,
		PeriodKey: p.Key(),
		Metrics:   Aggregate(goalSetFrom(targets), sales),
	}, nil
}

func (s *service) GoalDetail(ctx context.Context, storeID int64, p periods.Period, region string) (*GoalDetailResult, error) {
	base, err := s.Metrics(ctx, storeID, p)
	if err != nil {
		return nil, err
	}

	today := s.clock().In(p.Start.Location())
	working := periods.WorkingDays(p.StartDate(), p.EndDate(), region)
	elapsed := periods.ElapsedWorkingDays(p, today, region)

	detail := &GoalDetailResult{
		StoreID:       storeID,
		Period:        p,
		PeriodKey:     base.PeriodKey,
		Generation:    base.Generation,
		Region:        region,
		WorkingDays:   working,
		ElapsedDays:   elapsed,
		RemainingDays: working - elapsed,
		Categories:    make([]CategoryDetail, 0, len(base.Metrics)),
	}
	for _, m := range base.Metrics {
		dailyTarget := perDay(m.Target.Decimal, working)
		dailyAverage := perDay(m.Realized.Decimal, elapsed)
		detail.Categories = append(detail.Categories, CategoryDetail{
			CategoryMetric: m,
			DailyTarget:    types.NewMoney(dailyTarget),
			DailyAverage:   types.NewMoney(dailyAverage),
			BehindPace:     dailyAverage.LessThan(dailyTarget),
		})
	}
	return detail, nil
}

// History computes metrics for every period in [from, to], ordered by offset.
func (s *service) History(ctx context.Context, storeID int64, from, to int) ([]HistoryEntry, error) {
	if storeID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	if to < from {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to")
	}
	started := time.Now()

	entries := make([]HistoryEntry, 0, to-from+1)
	for p := range s.periods.Window(from, to) {
		entries = append(entries, HistoryEntry{Period: p, PeriodKey: p.Key()})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.historyLimit)
	for i := range entries {
		g.Go(func() error {
			res, err := s.Metrics(gctx, storeID, entries[i].Period)
			if err != nil {
				return err
			}
			entries[i].Generation = res.Generation
			entries[i].Metrics = res.Metrics
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.metrics.IncFailure(scopeHistory)
		var typed *pkgerrors.Error
		if errors.As(err, &typed) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataFetch, err, "failed to load data")
	}
	s.metrics.ObserveCompute(scopeHistory, time.Since(started))
	return entries, nil
}

// retry runs op with bounded exponential backoff. Context errors stop it.
func (s *service) retry(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retryBackoff
	policy.MaxElapsedTime = maxRetryElapsed
	bounded := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.retries-1)), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return backoff.Permanent(err)
		}
		return err
	}, bounded)
}

func (s *service) logWarn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}

func (s *service) logFailure(ctx context.Context, msg string, p periods.Period, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(s.logg.WithPeriod(ctx, p.Key()), msg, err)
}

func validateInputs(label string, id int64, p periods.Period) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, label+" is required")
	}
	if p.End.Before(p.Start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "period start must not be after end")
	}
	return nil
}

// goalSetFrom resolves every fixed category through Targets.Target, so
// missing categories read as zero.
func goalSetFrom(t goals.Targets) GoalSet {
	set := GoalSet{Total: t.Target(enums.CategoryGeneral), Categories: make(map[enums.SaleCategory]decimal.Decimal, len(enums.Categories))}
	for _, c := range enums.Categories {
		if c != enums.CategoryGeneral {
			set.Categories[c] = t.Target(c)
		}
	}
	return set
}

func perDay(amount decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	return amount.Div(decimal.NewFromInt(int64(days))).Round(2)
}
