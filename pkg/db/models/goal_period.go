package models

import (
	"time"

	"github.com/angelmondragon/storegoals-backend/pkg/enums"
)

// GoalPeriod is the persisted row goals are keyed by.
type GoalPeriod struct {
	ID        int64                    `gorm:"primaryKey;autoIncrement"`
	Name      string                   `gorm:"column:name;not null"`
	StartDate time.Time                `gorm:"column:start_date;type:date;not null;uniqueIndex:goal_periods_range_key,priority:1"`
	EndDate   time.Time                `gorm:"column:end_date;type:date;not null;uniqueIndex:goal_periods_range_key,priority:2"`
	Status    enums.StoredPeriodStatus `gorm:"column:status;not null"`
	CreatedAt time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (GoalPeriod) TableName() string { return "goal_periods" }
