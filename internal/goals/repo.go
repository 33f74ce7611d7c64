package goals

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storegoals-backend/pkg/db/models"
	"github.com/angelmondragon/storegoals-backend/pkg/enums"
)

// Targets is the goal set for one owner and period. Found is false when no
// stored period or goal row exists, in which case every target is zero.
type Targets struct {
	Found      bool
	PeriodID   int64
	Total      decimal.Decimal
	ByCategory map[enums.SaleCategory]decimal.Decimal
}

// Target returns the target for c. The general category reads Total.
func (t Targets) Target(c enums.SaleCategory) decimal.Decimal {
	if c == enums.CategoryGeneral {
		return t.Total
	}
	if v, ok := t.ByCategory[c]; ok {
		return v
	}
	return decimal.Zero
}

func emptyTargets() Targets {
	return Targets{Total: decimal.Zero, ByCategory: map[enums.SaleCategory]decimal.Decimal{}}
}

// Repository reads store and personal goals.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// StoreTargets loads the goal header and category targets for a store in
// the stored period matching [start, end].
func (r *Repository) StoreTargets(ctx context.Context, storeID int64, start, end time.Time) (Targets, error) {
	periodID, err := r.periodID(ctx, start, end)
	if err != nil || periodID == 0 {
		return emptyTargets(), err
	}

	var goal models.StoreGoal
	err = r.db.WithContext(ctx).
		Preload("Categories").
		Where("store_id = ? AND period_id = ?", storeID, periodID).
		First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			t := emptyTargets()
			t.PeriodID = periodID
			return t, nil
		}
		return emptyTargets(), err
	}

	t := emptyTargets()
	t.Found = true
	t.PeriodID = periodID
	t.Total = goal.TotalTarget
	for _, c := range goal.Categories {
		t.ByCategory[c.Category] = c.Target
	}
	return t, nil
}

// UserTargets loads personal monthly targets. The geral row, when present,
// is the total.
func (r *Repository) UserTargets(ctx context.Context, userID int64, start, end time.Time) (Targets, error) {
	periodID, err := r.periodID(ctx, start, end)
	if err != nil || periodID == 0 {
		return emptyTargets(), err
	}

	var rows []models.UserGoal
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND period_id = ?", userID, periodID).
		Find(&rows).Error; err != nil {
		return emptyTargets(), err
	}

	t := emptyTargets()
	t.PeriodID = periodID
	t.Found = len(rows) > 0
	for _, row := range rows {
		if row.Category == enums.CategoryGeneral {
			t.Total = row.MonthlyTarget
			continue
		}
		t.ByCategory[row.Category] = row.MonthlyTarget
	}
	return t, nil
}

func (r *Repository) periodID(ctx context.Context, start, end time.Time) (int64, error) {
	var period models.GoalPeriod
	err := r.db.WithContext(ctx).
		Select("id").
		Where("start_date = ? AND end_date = ?", dateOf(start), dateOf(end)).
		First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return period.ID, nil
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
