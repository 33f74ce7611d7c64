package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoreSale is one recorded sale total for a store, day and category.
type StoreSale struct {
	ID           int64           `gorm:"primaryKey;autoIncrement"`
	StoreID      int64           `gorm:"column:store_id;not null;index:store_sales_store_date_idx,priority:1"`
	SaleDate     time.Time       `gorm:"column:sale_date;type:date;not null;index:store_sales_store_date_idx,priority:2"`
	Category     string          `gorm:"column:category;not null"`
	Value        decimal.Decimal `gorm:"column:value;type:numeric(14,2);not null"`
	Quantity     int             `gorm:"column:quantity;not null;default:0"`
	RegisteredBy *int64          `gorm:"column:registered_by"`
	RegisteredAt time.Time       `gorm:"column:registered_at;autoCreateTime"`
	UpdatedBy    *int64          `gorm:"column:updated_by"`
	UpdatedAt    *time.Time      `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (StoreSale) TableName() string { return "store_sales" }

// UserSale is a sale attributed to a single employee.
type UserSale struct {
	ID           int64           `gorm:"primaryKey;autoIncrement"`
	UserID       int64           `gorm:"column:user_id;not null;index:user_sales_user_date_idx,priority:1"`
	SaleDate     time.Time       `gorm:"column:sale_date;type:date;not null;index:user_sales_user_date_idx,priority:2"`
	Category     string          `gorm:"column:category;not null"`
	Value        decimal.Decimal `gorm:"column:value;type:numeric(14,2);not null"`
	Commission   decimal.Decimal `gorm:"column:commission;type:numeric(14,2);not null;default:0"`
	RegisteredBy *int64          `gorm:"column:registered_by"`
	RegisteredAt time.Time       `gorm:"column:registered_at;autoCreateTime"`
}

func (UserSale) TableName() string { return "user_sales" }
