package sales

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storegoals-backend/pkg/db"
	"github.com/angelmondragon/storegoals-backend/pkg/db/models"
	"github.com/angelmondragon/storegoals-backend/pkg/pagination"
)

const storeSalesTable = "store_sales"

// ListFilter narrows the store sales list. Nil bounds are open.
type ListFilter struct {
	StoreID  int64
	From     *time.Time
	To       *time.Time
	Category string
	Query    string
	Cursor   *pagination.Cursor
	Limit    int
}

// TotalsRow is an aggregate over a filtered set of sales.
type TotalsRow struct {
	Value        decimal.Decimal
	Quantity     int64
	Transactions int64
}

// DailyRow is one day of grouped sales.
type DailyRow struct {
	SaleDate     time.Time
	Value        decimal.Decimal
	Quantity     int64
	Transactions int64
}

// Repository reads and writes store and personal sales.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// builder emits ? placeholders; gorm rebinds them for the active dialect.
func builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// StoreSalesInRange returns every store sale with sale_date in [start, end].
func (r *Repository) StoreSalesInRange(ctx context.Context, storeID int64, start, end time.Time) ([]models.StoreSale, error) {
	var rows []models.StoreSale
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND sale_date >= ? AND sale_date <= ?", storeID, dateOf(start), dateOf(end)).
		Order("sale_date ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

// UserSalesInRange returns the personal sales of userID in [start, end].
func (r *Repository) UserSalesInRange(ctx context.Context, userID int64, start, end time.Time) ([]models.UserSale, error) {
	var rows []models.UserSale
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND sale_date >= ? AND sale_date <= ?", userID, dateOf(start), dateOf(end)).
		Order("sale_date ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

// List returns up to LimitWithBuffer rows ordered by sale_date desc, id desc.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.StoreSale, error) {
	query := builder().
		Select("id", "store_id", "sale_date", "category", "value", "quantity",
			"registered_by", "registered_at", "updated_by", "updated_at").
		From(storeSalesTable).
		Where(filterPredicates(f)).
		OrderBy("sale_date DESC", "id DESC").
		Limit(uint64(pagination.LimitWithBuffer(f.Limit)))

	if f.Cursor != nil {
		cursorDate := dateOf(f.Cursor.Date)
		query = query.Where(sq.Or{
			sq.Lt{"sale_date": cursorDate},
			sq.And{sq.Eq{"sale_date": cursorDate}, sq.Lt{"id": f.Cursor.ID}},
		})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	var rows []models.StoreSale
	if err := r.db.WithContext(ctx).Raw(stmt, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Totals aggregates value, quantity and row count over the filter, ignoring
// cursor and limit.
func (r *Repository) Totals(ctx context.Context, f ListFilter) (TotalsRow, error) {
	stmt, args, err := builder().
		Select("COALESCE(SUM(value), 0) AS value",
			"COALESCE(SUM(quantity), 0) AS quantity",
			"COUNT(*) AS transactions").
		From(storeSalesTable).
		Where(filterPredicates(f)).
		ToSql()
	if err != nil {
		return TotalsRow{}, err
	}

	var row TotalsRow
	if err := r.db.WithContext(ctx).Raw(stmt, args...).Scan(&row).Error; err != nil {
		return TotalsRow{}, err
	}
	row.Value = row.Value.Round(2)
	return row, nil
}

// Daily groups sales of a store by day in [from, to]. An empty category
// includes every category.
func (r *Repository) Daily(ctx context.Context, storeID int64, from, to time.Time, category string) ([]DailyRow, error) {
	preds := sq.And{
		sq.Eq{"store_id": storeID},
		sq.GtOrEq{"sale_date": dateOf(from)},
		sq.LtOrEq{"sale_date": dateOf(to)},
	}
	if category != "" {
		preds = append(preds, sq.Eq{"category": category})
	}

	stmt, args, err := builder().
		Select("sale_date",
			"COALESCE(SUM(value), 0) AS value",
			"COALESCE(SUM(quantity), 0) AS quantity",
			"COUNT(*) AS transactions").
		From(storeSalesTable).
		Where(preds).
		GroupBy("sale_date").
		OrderBy("sale_date ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []DailyRow
	if err := r.db.WithContext(ctx).Raw(stmt, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].SaleDate = dateOf(rows[i].SaleDate)
		rows[i].Value = rows[i].Value.Round(2)
	}
	return rows, nil
}

func (r *Repository) Create(ctx context.Context, sale *models.StoreSale) error {
	sale.SaleDate = dateOf(sale.SaleDate)
	return r.db.WithContext(ctx).Create(sale).Error
}

// FindByID returns the sale only when it belongs to storeID.
func (r *Repository) FindByID(ctx context.Context, storeID, saleID int64) (*models.StoreSale, error) {
	var sale models.StoreSale
	err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", saleID, storeID).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *Repository) Update(ctx context.Context, sale *models.StoreSale) error {
	sale.SaleDate = dateOf(sale.SaleDate)
	return r.db.WithContext(ctx).
		Model(&models.StoreSale{}).
		Where("id = ?", sale.ID).
		Updates(map[string]any{
			"sale_date":  sale.SaleDate,
			"category":   sale.Category,
			"value":      sale.Value,
			"quantity":   sale.Quantity,
			"updated_by": sale.UpdatedBy,
			"updated_at": sale.UpdatedAt,
		}).Error
}

func filterPredicates(f ListFilter) sq.And {
	preds := sq.And{sq.Eq{"store_id": f.StoreID}}
	if f.From != nil {
		preds = append(preds, sq.GtOrEq{"sale_date": dateOf(*f.From)})
	}
	if f.To != nil {
		preds = append(preds, sq.LtOrEq{"sale_date": dateOf(*f.To)})
	}
	if f.Category != "" {
		preds = append(preds, sq.Eq{"category": f.Category})
	}
	if f.Query != "" {
		preds = append(preds, sq.Expr("LOWER(category) LIKE ? "+db.LikeEscape, db.ContainsPattern(f.Query)))
	}
	return preds
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
