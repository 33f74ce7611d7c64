package models

import (
	"strings"
	"time"
)

// RegionCentro marks stores that do not open on Sundays.
const RegionCentro = "centro"

// Store is a physical shop that owns goals, sales and users.
type Store struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null"`
	Region    string    `gorm:"column:region;not null;default:''"`
	Address   *string   `gorm:"column:address"`
	Phone     *string   `gorm:"column:phone"`
	Status    string    `gorm:"column:status;not null;default:'ativo'"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Store) TableName() string { return "stores" }

// SundaysExcluded reports whether Sundays are skipped when counting working days.
func (s Store) SundaysExcluded() bool {
	return strings.EqualFold(strings.TrimSpace(s.Region), RegionCentro)
}
