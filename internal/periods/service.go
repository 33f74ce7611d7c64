package periods

import (
	"context"
	"fmt"
	"iter"

	"gorm.io/gorm"

	"github.com/angelmondragon/storegoals-backend/pkg/db/models"
	"github.com/angelmondragon/storegoals-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storegoals-backend/pkg/errors"
	"github.com/angelmondragon/storegoals-backend/pkg/logger"
)

// Service exposes computed periods and keeps goal_periods in step with them.
type Service interface {
	Resolve(offset int) Period
	Current() Period
	Window(from, to int) iter.Seq[Period]
	Explicit(start, end string) (Period, error)
	Stored(ctx context.Context, p Period) (*models.GoalPeriod, error)
	StoredList(ctx context.Context) ([]models.GoalPeriod, error)
	Sync(ctx context.Context) (*SyncResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SyncResult summarizes a Sync run.
type SyncResult struct {
	Upserted  int    `json:"upserted"`
	Demoted   int64  `json:"demoted"`
	ActiveKey string `json:"active_key"`
}

type service struct {
	resolver *Resolver
	repo     *Repository
	tx       txRunner
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies of the period service.
type ServiceParams struct {
	Resolver *Resolver
	Repo     *Repository
	DB       txRunner
	Logger   *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Resolver == nil {
		return nil, fmt.Errorf("period resolver is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("period repository is required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{
		resolver: params.Resolver,
		repo:     params.Repo,
		tx:       params.DB,
		logg:     params.Logger,
	}, nil
}

func (s *service) Resolve(offset int) Period { return s.resolver.Resolve(offset) }

func (s *service) Current() Period { return s.resolver.Current() }

func (s *service) Window(from, to int) iter.Seq[Period] { return s.resolver.Window(from, to) }

func (s *service) Explicit(start, end string) (Period, error) {
	p, err := s.resolver.Explicit(start, end)
	if err != nil {
		return Period{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	return p, nil
}

// Stored returns the goal_periods row for p, or nil when none exists.
func (s *service) Stored(ctx context.Context, p Period) (*models.GoalPeriod, error) {
	row, err := s.repo.FindByRange(ctx, p.Start, p.End)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataFetch, err, "load stored period")
	}
	return row, nil
}

func (s *service) StoredList(ctx context.Context) ([]models.GoalPeriod, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataFetch, err, "list stored periods")
	}
	return rows, nil
}

// Sync writes the default window into goal_periods in one transaction. The
// offset-0 row becomes the only ativo row; earlier rows are closed and later
// rows are future.
func (s *service) Sync(ctx context.Context) (*SyncResult, error) {
	current := s.resolver.Current()
	result := &SyncResult{ActiveKey: current.Key()}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		demoted, err := repo.DemoteActiveExcept(ctx, current.Start, current.End)
		if err != nil {
			return fmt.Errorf("demote active periods: %w", err)
		}
		result.Demoted = demoted

		for p := range s.resolver.DefaultWindow() {
			row := &models.GoalPeriod{
				Name:      p.Label,
				StartDate: p.Start,
				EndDate:   p.End,
				Status:    storedStatusForOffset(p.Offset),
			}
			if err := repo.Upsert(ctx, row); err != nil {
				return fmt.Errorf("upsert period %s: %w", p.Key(), err)
			}
			result.Upserted++
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync periods")
	}

	if s.logg != nil {
		ctx = s.logg.WithPeriod(ctx, result.ActiveKey)
		ctx = s.logg.WithFields(ctx, map[string]any{"upserted": result.Upserted, "demoted": result.Demoted})
		s.logg.Info(ctx, "periods.sync.complete")
	}
	return result, nil
}

func storedStatusForOffset(offset int) enums.StoredPeriodStatus {
	switch {
	case offset == 0:
		return enums.StoredPeriodActive
	case offset < 0:
		return enums.StoredPeriodClosed
	default:
		return enums.StoredPeriodFuture
	}
}
