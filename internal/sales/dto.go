package sales

import (
	"time"

	"github.com/angelmondragon/storegoals-backend/pkg/db/models"
	"github.com/angelmondragon/storegoals-backend/pkg/enums"
	"github.com/angelmondragon/storegoals-backend/pkg/types"
)

const dateLayout = "2006-01-02"

// Actor is the authenticated caller recording or editing sales.
type Actor struct {
	UserID  int64
	StoreID int64
	Role    enums.UserRole
}

// ListQuery carries the raw list filters from the HTTP layer.
type ListQuery struct {
	Range    enums.SalesRange
	Category string
	Query    string
	Cursor   string
	Limit    int
}

// RecordInput is the body of a new sale.
type RecordInput struct {
	SaleDate string      `json:"sale_date" validate:"omitempty,datetime=2006-01-02"`
	Category string      `json:"category" validate:"required,max=64"`
	Value    types.Money `json:"value"`
	Quantity int         `json:"quantity" validate:"gte=0"`
}

// UpdateInput edits an existing sale. Nil fields are left untouched.
type UpdateInput struct {
	SaleDate *string      `json:"sale_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Category *string      `json:"category,omitempty" validate:"omitempty,min=1,max=64"`
	Value    *types.Money `json:"value,omitempty"`
	Quantity *int         `json:"quantity,omitempty" validate:"omitempty,gte=0"`
}

type SaleDTO struct {
	ID           int64       `json:"id"`
	StoreID      int64       `json:"store_id"`
	SaleDate     string      `json:"sale_date"`
	Category     string      `json:"category"`
	Value        types.Money `json:"value"`
	Quantity     int         `json:"quantity"`
	RegisteredBy *int64      `json:"registered_by,omitempty"`
	RegisteredAt time.Time   `json:"registered_at"`
	UpdatedBy    *int64      `json:"updated_by,omitempty"`
	UpdatedAt    *time.Time  `json:"updated_at,omitempty"`
}

type Totals struct {
	Value        types.Money `json:"value"`
	Quantity     int64       `json:"quantity"`
	Transactions int64       `json:"transactions"`
}

// ListResult is a page of sales plus totals over the whole filtered set and
// over the geral rows of the same date range.
type ListResult struct {
	Items      []SaleDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
	Totals     Totals    `json:"totals"`
	General    Totals    `json:"general"`
}

type DailyPoint struct {
	Date         string      `json:"date"`
	Label        string      `json:"label"`
	Value        types.Money `json:"value"`
	Quantity     int64       `json:"quantity"`
	Transactions int64       `json:"transactions"`
}

type DailySeries struct {
	From   string       `json:"from"`
	To     string       `json:"to"`
	Region string       `json:"region"`
	Points []DailyPoint `json:"points"`
}

func toDTO(sale models.StoreSale) SaleDTO {
	return SaleDTO{
		ID:           sale.ID,
		StoreID:      sale.StoreID,
		SaleDate:     sale.SaleDate.Format(dateLayout),
		Category:     sale.Category,
		Value:        types.NewMoney(sale.Value),
		Quantity:     sale.Quantity,
		RegisteredBy: sale.RegisteredBy,
		RegisteredAt: sale.RegisteredAt,
		UpdatedBy:    sale.UpdatedBy,
		UpdatedAt:    sale.UpdatedAt,
	}
}

func toTotals(row TotalsRow) Totals {
	return Totals{
		Value:        types.NewMoney(row.Value),
		Quantity:     row.Quantity,
		Transactions: row.Transactions,
	}
}
