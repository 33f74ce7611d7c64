package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storegoals-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storegoals-backend/pkg/errors"
	"github.com/angelmondragon/storegoals-backend/pkg/types"
)

type stubBumper struct {
	calls []int64
	err   error
}

func (s *stubBumper) BumpGeneration(_ context.Context, storeID int64) (int64, error) {
	s.calls = append(s.calls, storeID)
	return int64(len(s.calls)), s.err
}

func newTestSalesService(t *testing.T, now time.Time) (Service, *Repository, *stubBumper) {
	t.Helper()
	repo := NewRepository(openTestDB(t))
	bumper := &stubBumper{}
	svc, err := NewService(ServiceParams{
		Repo:        repo,
		Generations: bumper,
		Clock:       func() time.Time { return now },
		Location:    time.UTC,
	})
	require.NoError(t, err)
	return svc, repo, bumper
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	var typed *pkgerrors.Error
	require.True(t, errors.As(err, &typed), "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code())
}

func TestListAppliesRangesAndGeneralTotals(t *testing.T) {
	now := time.Date(2025, time.August, 15, 14, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestSalesService(t, now)
	seedSale(t, repo, 7, day(2025, time.August, 15), "geral", "100.00", 1)
	seedSale(t, repo, 7, day(2025, time.August, 15), "saude", "20.00", 1)
	seedSale(t, repo, 7, day(2025, time.August, 9), "geral", "50.00", 1)
	seedSale(t, repo, 7, day(2025, time.August, 2), "geral", "25.00", 1)
	seedSale(t, repo, 7, day(2025, time.July, 30), "geral", "10.00", 1)

	cases := []struct {
		rng          enums.SalesRange
		items        int
		generalTotal string
	}{
		{enums.SalesRangeToday, 2, "100.00"},
		{enums.SalesRangeWeek, 3, "150.00"},
		{enums.SalesRangeMonth, 4, "175.00"},
		{enums.SalesRangeAll, 5, "185.00"},
		{"", 2, "100.00"},
	}
	for _, tc := range cases {
		t.Run("range="+string(tc.rng), func(t *testing.T) {
			res, err := svc.List(context.Background(), 7, ListQuery{Range: tc.rng})
			require.NoError(t, err)
			require.Len(t, res.Items, tc.items)
			require.Equal(t, tc.generalTotal, res.General.Value.String())
		})
	}
}

func TestListCategoryAllMeansNoFilter(t *testing.T) {
	now := time.Date(2025, time.August, 15, 9, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestSalesService(t, now)
	seedSale(t, repo, 7, day(2025, time.August, 15), "geral", "100.00", 1)
	seedSale(t, repo, 7, day(2025, time.August, 15), "r_mais", "20.00", 1)

	all, err := svc.List(context.Background(), 7, ListQuery{Category: "all"})
	require.NoError(t, err)
	require.Len(t, all.Items, 2)
	require.Equal(t, "120.00", all.Totals.Value.String())

	byDisplay, err := svc.List(context.Background(), 7, ListQuery{Category: "rentavel"})
	require.NoError(t, err)
	require.Len(t, byDisplay.Items, 1)
	require.Equal(t, "r_mais", byDisplay.Items[0].Category)
}

func TestListPagesWithCursor(t *testing.T) {
	now := time.Date(2025, time.August, 15, 9, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestSalesService(t, now)
	for d := 1; d <= 5; d++ {
		seedSale(t, repo, 7, day(2025, time.August, d), "geral", "1.00", 1)
	}

	first, err := svc.List(context.Background(), 7, ListQuery{Range: enums.SalesRangeAll, Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)
	require.Equal(t, "2025-08-05", first.Items[0].SaleDate)
	require.EqualValues(t, 5, first.Totals.Transactions)

	second, err := svc.List(context.Background(), 7, ListQuery{Range: enums.SalesRangeAll, Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Equal(t, "2025-08-03", second.Items[0].SaleDate)

	_, err = svc.List(context.Background(), 7, ListQuery{Cursor: "%%%"})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestDailySkipsSundaysForCentro(t *testing.T) {
	// Sunday 2025-08-17.
	now := time.Date(2025, time.August, 18, 10, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestSalesService(t, now)
	seedSale(t, repo, 7, day(2025, time.August, 18), "geral", "30.00", 2)
	seedSale(t, repo, 7, day(2025, time.August, 18), "saude", "5.00", 1)

	series, err := svc.Daily(context.Background(), 7, "centro", "")
	require.NoError(t, err)
	require.Equal(t, "2025-06-01", series.From)
	require.Equal(t, "2025-08-18", series.To)
	for _, p := range series.Points {
		parsed, err := time.Parse(dateLayout, p.Date)
		require.NoError(t, err)
		require.NotEqual(t, time.Sunday, parsed.Weekday())
	}
	last := series.Points[len(series.Points)-1]
	require.Equal(t, "18/08", last.Label)
	require.Equal(t, "35.00", last.Value.String())
	require.EqualValues(t, 2, last.Transactions)

	everyDay, err := svc.Daily(context.Background(), 7, "sul", "")
	require.NoError(t, err)
	require.Len(t, everyDay.Points, 30+31+18)
}

func TestRecordBumpsGeneration(t *testing.T) {
	now := time.Date(2025, time.August, 15, 9, 0, 0, 0, time.UTC)
	svc, _, bumper := newTestSalesService(t, now)

	value, err := types.MoneyFromString("3083.07")
	require.NoError(t, err)
	sale, err := svc.Record(context.Background(), Actor{UserID: 1, StoreID: 7, Role: enums.UserRoleAssistant}, RecordInput{
		Category: "Rentavel",
		Value:    value,
		Quantity: 3,
	})
	require.NoError(t, err)
	require.Equal(t, "r_mais", sale.Category)
	require.Equal(t, "2025-08-15", sale.SaleDate)
	require.Equal(t, []int64{7}, bumper.calls)
}

func TestRecordRejectsFutureDateAndNegativeValue(t *testing.T) {
	now := time.Date(2025, time.August, 15, 9, 0, 0, 0, time.UTC)
	svc, _, bumper := newTestSalesService(t, now)
	actor := Actor{UserID: 1, StoreID: 7, Role: enums.UserRoleManager}

	_, err := svc.Record(context.Background(), actor, RecordInput{SaleDate: "2025-08-16", Category: "geral"})
	requireCode(t, err, pkgerrors.CodeValidation)

	negative, _ := types.MoneyFromString("-1")
	_, err = svc.Record(context.Background(), actor, RecordInput{Category: "geral", Value: negative})
	requireCode(t, err, pkgerrors.CodeValidation)
	require.Empty(t, bumper.calls)
}

func TestRecordSucceedsWhenBumpFails(t *testing.T) {
	now := time.Date(2025, time.August, 15, 9, 0, 0, 0, time.UTC)
	svc, _, bumper := newTestSalesService(t, now)
	bumper.err = errors.New("redis down")

	_, err := svc.Record(context.Background(), Actor{UserID: 1, StoreID: 7}, RecordInput{Category: "geral"})
	require.NoError(t, err)
}

func TestUpdateAllowsManagerInSameStore(t *testing.T) {
	now := time.Date(2025, time.August, 15, 9, 0, 0, 0, time.UTC)
	svc, repo, bumper := newTestSalesService(t, now)
	sale := seedSale(t, repo, 7, day(2025, time.August, 14), "geral", "10.00", 1)
	newValue, _ := types.MoneyFromString("12.50")

	_, err := svc.Update(context.Background(), Actor{UserID: 2, StoreID: 8, Role: enums.UserRoleManager}, sale.ID, UpdateInput{Value: &newValue})
	requireCode(t, err, pkgerrors.CodeNotFound)

	updated, err := svc.Update(context.Background(), Actor{UserID: 2, StoreID: 7, Role: enums.UserRoleManager}, sale.ID, UpdateInput{Value: &newValue})
	require.NoError(t, err)
	require.Equal(t, "12.50", updated.Value.String())
	require.NotNil(t, updated.UpdatedBy)
	require.Equal(t, []int64{7}, bumper.calls)
}

func TestUpdateAllowsAuthorOnly(t *testing.T) {
	now := time.Date(2025, time.August, 15, 9, 0, 0, 0, time.UTC)
	svc, _, _ := newTestSalesService(t, now)
	author := Actor{UserID: 2, StoreID: 7, Role: enums.UserRoleConsultant}
	other := Actor{UserID: 3, StoreID: 7, Role: enums.UserRoleConsultant}
	value, _ := types.MoneyFromString("40.00")
	newValue, _ := types.MoneyFromString("45.00")

	own, err := svc.Record(context.Background(), author, RecordInput{Category: "geral", Value: value})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), author, own.ID, UpdateInput{Value: &newValue})
	require.NoError(t, err)
	require.Equal(t, "45.00", updated.Value.String())

	_, err = svc.Update(context.Background(), other, own.ID, UpdateInput{Value: &value})
	requireCode(t, err, pkgerrors.CodeForbidden)
}
