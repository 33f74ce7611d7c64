package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storegoals-backend/pkg/enums"
)

// StoreGoal is the per-period header carrying the general target.
type StoreGoal struct {
	ID          int64               `gorm:"primaryKey;autoIncrement"`
	StoreID     int64               `gorm:"column:store_id;not null;uniqueIndex:store_goals_store_period_key,priority:1"`
	PeriodID    int64               `gorm:"column:period_id;not null;uniqueIndex:store_goals_store_period_key,priority:2"`
	TotalTarget decimal.Decimal     `gorm:"column:total_target;type:numeric(14,2);not null;default:0"`
	Categories  []StoreGoalCategory `gorm:"foreignKey:StoreGoalID"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (StoreGoal) TableName() string { return "store_goals" }

// StoreGoalCategory is a per-category target under a StoreGoal.
type StoreGoalCategory struct {
	ID          int64              `gorm:"primaryKey;autoIncrement"`
	StoreGoalID int64              `gorm:"column:store_goal_id;not null;uniqueIndex:store_goal_categories_goal_category_key,priority:1"`
	Category    enums.SaleCategory `gorm:"column:category;not null;uniqueIndex:store_goal_categories_goal_category_key,priority:2"`
	Target      decimal.Decimal    `gorm:"column:target;type:numeric(14,2);not null;default:0"`
}

func (StoreGoalCategory) TableName() string { return "store_goal_categories" }

// UserGoal is a personal monthly target for one category.
type UserGoal struct {
	ID            int64              `gorm:"primaryKey;autoIncrement"`
	UserID        int64              `gorm:"column:user_id;not null;uniqueIndex:user_goals_user_period_category_key,priority:1"`
	PeriodID      int64              `gorm:"column:period_id;not null;uniqueIndex:user_goals_user_period_category_key,priority:2"`
	Category      enums.SaleCategory `gorm:"column:category;not null;uniqueIndex:user_goals_user_period_category_key,priority:3"`
	MonthlyTarget decimal.Decimal    `gorm:"column:monthly_target;type:numeric(14,2);not null;default:0"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (UserGoal) TableName() string { return "user_goals" }
