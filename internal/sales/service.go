package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storegoals-backend/internal/periods"
	"github.com/angelmondragon/storegoals-backend/pkg/db/models"
	"github.com/angelmondragon/storegoals-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storegoals-backend/pkg/errors"
	"github.com/angelmondragon/storegoals-backend/pkg/logger"
	"github.com/angelmondragon/storegoals-backend/pkg/pagination"
	"github.com/angelmondragon/storegoals-backend/pkg/types"
)

const (
	weekLookbackDays = 7
	dailyMonthsBack  = 2
)

// Service lists and records store sales.
type Service interface {
	List(ctx context.Context, storeID int64, q ListQuery) (*ListResult, error)
	Daily(ctx context.Context, storeID int64, region, category string) (*DailySeries, error)
	Record(ctx context.Context, actor Actor, input RecordInput) (*SaleDTO, error)
	Update(ctx context.Context, actor Actor, saleID int64, input UpdateInput) (*SaleDTO, error)
}

type repository interface {
	List(ctx context.Context, f ListFilter) ([]models.StoreSale, error)
	Totals(ctx context.Context, f ListFilter) (TotalsRow, error)
	Daily(ctx context.Context, storeID int64, from, to time.Time, category string) ([]DailyRow, error)
	Create(ctx context.Context, sale *models.StoreSale) error
	FindByID(ctx context.Context, storeID, saleID int64) (*models.StoreSale, error)
	Update(ctx context.Context, sale *models.StoreSale) error
}

// generationBumper invalidates cached metrics for a store.
type generationBumper interface {
	BumpGeneration(ctx context.Context, storeID int64) (int64, error)
}

type ServiceParams struct {
	Repo        repository
	Generations generationBumper
	Clock       func() time.Time
	Location    *time.Location
	Logger      *logger.Logger
}

type service struct {
	repo  repository
	gens  generationBumper
	clock func() time.Time
	loc   *time.Location
	logg  *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("sales repository is required")
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	if params.Location == nil {
		params.Location = time.UTC
	}
	return &service{
		repo:  params.Repo,
		gens:  params.Generations,
		clock: params.Clock,
		loc:   params.Location,
		logg:  params.Logger,
	}, nil
}

func (s *service) today() time.Time {
	return dateOf(s.clock().In(s.loc))
}

func (s *service) List(ctx context.Context, storeID int64, q ListQuery) (*ListResult, error) {
	if storeID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	cursor, err := pagination.ParseCursor(q.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if q.Range == "" {
		q.Range = enums.SalesRangeToday
	}
	if !q.Range.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid range")
	}

	from, to := rangeBounds(q.Range, s.today())
	limit := pagination.NormalizeLimit(q.Limit)
	filter := ListFilter{
		StoreID:  storeID,
		From:     from,
		To:       to,
		Category: normalizeCategoryFilter(q.Category),
		Query:    strings.ToLower(strings.TrimSpace(q.Query)),
		Cursor:   cursor,
		Limit:    limit,
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataFetch, err, "list sales")
	}
	totals, err := s.repo.Totals(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataFetch, err, "sum sales")
	}
	general, err := s.repo.Totals(ctx, ListFilter{
		StoreID:  storeID,
		From:     from,
		To:       to,
		Category: string(enums.CategoryGeneral),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataFetch, err, "sum general sales")
	}

	rows, last := pagination.Trim(rows, limit)
	result := &ListResult{
		Items:   make([]SaleDTO, 0, len(rows)),
		Totals:  toTotals(totals),
		General: toTotals(general),
	}
	if last != nil {
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{Date: last.SaleDate, ID: last.ID})
	}
	for _, row := range rows {
		result.Items = append(result.Items, toDTO(row))
	}
	return result, nil
}

// Daily returns one point per day from the first day of the month two months
// back through today. Sundays are omitted for centro stores.
func (s *service) Daily(ctx context.Context, storeID int64, region, category string) (*DailySeries, error) {
	if storeID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	today := s.today()
	from := time.Date(today.Year(), today.Month()-dailyMonthsBack, 1, 0, 0, 0, 0, time.UTC)

	rows, err := s.repo.Daily(ctx, storeID, from, today, normalizeCategoryFilter(category))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataFetch, err, "load daily sales")
	}
	byDay := make(map[string]DailyRow, len(rows))
	for _, row := range rows {
		byDay[row.SaleDate.Format(dateLayout)] = row
	}

	series := &DailySeries{
		From:   from.Format(dateLayout),
		To:     today.Format(dateLayout),
		Region: region,
	}
	for day := from; !day.After(today); day = day.AddDate(0, 0, 1) {
		if !periods.IsWorkingDay(day, region) {
			continue
		}
		key := day.Format(dateLayout)
		row := byDay[key]
		series.Points = append(series.Points, DailyPoint{
			Date:         key,
			Label:        day.Format("02/01"),
			Value:        types.NewMoney(row.Value),
			Quantity:     row.Quantity,
			Transactions: row.Transactions,
		})
	}
	return series, nil
}

func (s *service) Record(ctx context.Context, actor Actor, input RecordInput) (*SaleDTO, error) {
	if actor.StoreID <= 0 || actor.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	saleDate, err := s.parseSaleDate(input.SaleDate)
	if err != nil {
		return nil, err
	}
	category := normalizeCategory(input.Category)
	if category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if input.Value.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "value must not be negative")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	registeredBy := actor.UserID
	sale := &models.StoreSale{
		StoreID:      actor.StoreID,
		SaleDate:     saleDate,
		Category:     category,
		Value:        input.Value.Decimal.Round(2),
		Quantity:     input.Quantity,
		RegisteredBy: &registeredBy,
	}
	if err := s.repo.Create(ctx, sale); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record sale")
	}
	s.bump(ctx, actor.StoreID)

	dto := toDTO(*sale)
	return &dto, nil
}

// canEdit allows managers and the user who registered the sale.
func canEdit(actor Actor, sale *models.StoreSale) bool {
	if actor.Role.CanManageUsers() {
		return true
	}
	return sale.RegisteredBy != nil && *sale.RegisteredBy == actor.UserID
}

func (s *service) Update(ctx context.Context, actor Actor, saleID int64, input UpdateInput) (*SaleDTO, error) {
	sale, err := s.repo.FindByID(ctx, actor.StoreID, saleID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataFetch, err, "load sale")
	}
	if !canEdit(actor, sale) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the author or a manager can edit this sale")
	}

	if input.SaleDate != nil {
		saleDate, err := s.parseSaleDate(*input.SaleDate)
		if err != nil {
			return nil, err
		}
		sale.SaleDate = saleDate
	}
	if input.Category != nil {
		category := normalizeCategory(*input.Category)
		if category == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
		}
		sale.Category = category
	}
	if input.Value != nil {
		if input.Value.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "value must not be negative")
		}
		sale.Value = input.Value.Decimal.Round(2)
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
		}
		sale.Quantity = *input.Quantity
	}

	updatedBy := actor.UserID
	now := s.clock().UTC()
	sale.UpdatedBy = &updatedBy
	sale.UpdatedAt = &now
	if err := s.repo.Update(ctx, sale); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update sale")
	}
	s.bump(ctx, actor.StoreID)

	dto := toDTO(*sale)
	return &dto, nil
}

// bump moves the store to a new cache generation. Failures only delay
// freshness until the cached entry expires, so they are logged.
func (s *service) bump(ctx context.Context, storeID int64) {
	if s.gens == nil {
		return
	}
	if _, err := s.gens.BumpGeneration(ctx, storeID); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithStoreID(ctx, storeID), "sales.generation_bump_failed", err)
	}
}

func (s *service) parseSaleDate(value string) (time.Time, error) {
	today := s.today()
	value = strings.TrimSpace(value)
	if value == "" {
		return today, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "sale_date must be YYYY-MM-DD")
	}
	if parsed.After(today) {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "sale_date cannot be in the future")
	}
	return parsed, nil
}

// rangeBounds maps a relative range to sale_date bounds around today.
func rangeBounds(r enums.SalesRange, today time.Time) (from, to *time.Time) {
	switch r {
	case enums.SalesRangeToday:
		return &today, &today
	case enums.SalesRangeWeek:
		start := today.AddDate(0, 0, -weekLookbackDays)
		return &start, nil
	case enums.SalesRangeMonth:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return &start, nil
	default:
		return nil, nil
	}
}

// normalizeCategory stores known categories under their internal code and
// keeps anything else as lower-cased free text.
func normalizeCategory(value string) string {
	if c, err := enums.ParseCategory(value); err == nil {
		return string(c)
	}
	return strings.ToLower(strings.TrimSpace(value))
}

func normalizeCategoryFilter(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.EqualFold(trimmed, "all") {
		return ""
	}
	return normalizeCategory(trimmed)
}

