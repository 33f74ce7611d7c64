package periods

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/storegoals-backend/pkg/db/models"
	"github.com/angelmondragon/storegoals-backend/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists the goal_periods table goals are keyed by.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByRange returns the stored period with exactly these bounds.
func (r *Repository) FindByRange(ctx context.Context, start, end time.Time) (*models.GoalPeriod, error) {
	var period models.GoalPeriod
	err := r.db.WithContext(ctx).
		Where("start_date = ? AND end_date = ?", DateOf(start), DateOf(end)).
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

// FindActive returns the single row marked ativo, or gorm.ErrRecordNotFound.
func (r *Repository) FindActive(ctx context.Context) (*models.GoalPeriod, error) {
	var period models.GoalPeriod
	if err := r.db.WithContext(ctx).
		Where("status = ?", enums.StoredPeriodActive).
		First(&period).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

// List returns stored periods newest first.
func (r *Repository) List(ctx context.Context) ([]models.GoalPeriod, error) {
	var rows []models.GoalPeriod
	if err := r.db.WithContext(ctx).Order("start_date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert inserts the period or updates name/status on a range collision.
func (r *Repository) Upsert(ctx context.Context, period *models.GoalPeriod) error {
	period.StartDate = DateOf(period.StartDate)
	period.EndDate = DateOf(period.EndDate)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "start_date"}, {Name: "end_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "status", "updated_at"}),
	}).Create(period).Error
}

// DemoteActiveExcept closes every ativo row whose range differs from [start, end].
func (r *Repository) DemoteActiveExcept(ctx context.Context, start, end time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.GoalPeriod{}).
		Where("status = ?", enums.StoredPeriodActive).
		Where("NOT (start_date = ? AND end_date = ?)", DateOf(start), DateOf(end)).
		Update("status", enums.StoredPeriodClosed)
	return res.RowsAffected, res.Error
}

// IsNotFound reports whether err is a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
