package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storegoals-backend/internal/periods"
	"github.com/angelmondragon/storegoals-backend/pkg/logger"
)

type periodSyncer interface {
	Sync(ctx context.Context) (*periods.SyncResult, error)
}

type PeriodSyncJobParams struct {
	Logger  *logger.Logger
	Periods periodSyncer
}

// NewPeriodSyncJob keeps goal_periods aligned with the computed window so a
// new cycle has its row before anyone records targets for it.
func NewPeriodSyncJob(params PeriodSyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Periods == nil {
		return nil, fmt.Errorf("period service required")
	}
	return &periodSyncJob{logg: params.Logger, periods: params.Periods}, nil
}

type periodSyncJob struct {
	logg    *logger.Logger
	periods periodSyncer
}

func (j *periodSyncJob) Name() string { return "period-sync" }

func (j *periodSyncJob) Run(ctx context.Context) error {
	result, err := j.periods.Sync(ctx)
	if err != nil {
		return fmt.Errorf("period sync: %w", err)
	}
	logCtx := j.logg.WithPeriod(ctx, result.ActiveKey)
	logCtx = j.logg.WithFields(logCtx, map[string]any{
		"upserted": result.Upserted,
		"demoted":  result.Demoted,
	})
	j.logg.Info(logCtx, "period sync complete")
	return nil
}
