package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/storegoals-backend/pkg/logger"
	"github.com/angelmondragon/storegoals-backend/pkg/metrics"
)

const (
	defaultInterval = time.Hour
	cycleLabel      = "cycle"
)

// errLockHeld means another worker owns the cron lock.
var errLockHeld = errors.New("cron lock held by another worker")

type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
}

// Service runs the registered jobs every interval. A cycle runs only on the
// worker holding the lock, and one failing job does not stop the rest.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
	interval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	case params.Lock == nil:
		return nil, fmt.Errorf("lock required")
	}
	s := &Service{
		logg:     params.Logger,
		registry: params.Registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: params.Interval,
	}
	if s.registry == nil {
		s.registry = NewRegistry()
	}
	if s.interval <= 0 {
		s.interval = defaultInterval
	}
	return s, nil
}

// Run starts with an immediate cycle and returns ctx.Err() once ctx ends.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if err := s.runCycle(ctx); err != nil {
			s.logg.Error(ctx, "cron.cycle_failed", err)
		}
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron.stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce executes a single cycle.
func (s *Service) RunOnce(ctx context.Context) error {
	return s.runCycle(ctx)
}

// RunJob runs one named job under the lock and returns its error.
func (s *Service) RunJob(ctx context.Context, name string) error {
	job, ok := s.registry.Find(name)
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.withLock(ctx, name, func(ctx context.Context) error {
		return s.runJob(ctx, job)
	})
}

func (s *Service) runCycle(ctx context.Context) error {
	err := s.withLock(ctx, cycleLabel, func(ctx context.Context) error {
		for _, job := range s.registry.Jobs() {
			_ = s.runJob(ctx, job)
		}
		return nil
	})
	if errors.Is(err, errLockHeld) {
		s.logg.Info(ctx, "cron.cycle_skipped")
		return nil
	}
	return err
}

func (s *Service) withLock(ctx context.Context, label string, fn func(context.Context) error) (err error) {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		s.metrics.IncSkipped(label)
		return errLockHeld
	}
	defer func() {
		if relErr := s.lock.Release(ctx); relErr != nil {
			s.logg.Error(ctx, "cron.lock_release_failed", relErr)
		}
	}()
	return fn(ctx)
}

// runJob logs and records the outcome of one job run.
func (s *Service) runJob(ctx context.Context, job Job) error {
	name := job.Name()
	start := time.Now()
	err := job.Run(s.logg.WithField(ctx, "job", name))
	elapsed := time.Since(start)

	s.metrics.ObserveDuration(name, elapsed)
	ctx = s.logg.WithFields(ctx, map[string]any{"job": name, "duration_ms": elapsed.Milliseconds()})
	if err != nil {
		s.metrics.IncFailure(name)
		s.logg.Error(ctx, "cron.job_failed", err)
		return err
	}
	s.metrics.IncSuccess(name)
	s.logg.Info(ctx, "cron.job_completed")
	return nil
}
