package goals

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storegoals-backend/pkg/db/models"
	"github.com/angelmondragon/storegoals-backend/pkg/enums"
	"github.com/angelmondragon/storegoals-backend/pkg/migrate"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, migrate.AutoMigrateModels(conn))
	return conn
}

var (
	periodStart = time.Date(2025, time.July, 21, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2025, time.August, 20, 0, 0, 0, 0, time.UTC)
)

func seedPeriod(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	p := models.GoalPeriod{Name: "07/2025 a 08/2025", StartDate: periodStart, EndDate: periodEnd, Status: enums.StoredPeriodActive}
	require.NoError(t, conn.Create(&p).Error)
	return p.ID
}

func TestStoreTargetsWithoutPeriodAreZero(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	targets, err := repo.StoreTargets(context.Background(), 7, periodStart, periodEnd)
	require.NoError(t, err)
	require.False(t, targets.Found)
	for _, c := range enums.Categories {
		require.True(t, targets.Target(c).IsZero(), "category %s", c)
	}
}

func TestStoreTargetsLoadsHeaderAndCategories(t *testing.T) {
	conn := openTestDB(t)
	periodID := seedPeriod(t, conn)
	goal := models.StoreGoal{
		StoreID:     7,
		PeriodID:    periodID,
		TotalTarget: decimal.RequireFromString("10000"),
		Categories: []models.StoreGoalCategory{
			{Category: enums.CategoryProfitable, Target: decimal.RequireFromString("2500")},
			{Category: enums.CategoryHealth, Target: decimal.RequireFromString("500")},
		},
	}
	require.NoError(t, conn.Create(&goal).Error)

	targets, err := NewRepository(conn).StoreTargets(context.Background(), 7, periodStart, periodEnd)
	require.NoError(t, err)
	require.True(t, targets.Found)
	require.Equal(t, periodID, targets.PeriodID)
	require.True(t, targets.Target(enums.CategoryGeneral).Equal(decimal.RequireFromString("10000")))
	require.True(t, targets.Target(enums.CategoryProfitable).Equal(decimal.RequireFromString("2500")))
	require.True(t, targets.Target(enums.CategoryHealth).Equal(decimal.RequireFromString("500")))
	require.True(t, targets.Target(enums.CategoryPerfumery).IsZero())

	other, err := NewRepository(conn).StoreTargets(context.Background(), 8, periodStart, periodEnd)
	require.NoError(t, err)
	require.False(t, other.Found)
}

func TestUserTargetsUseGeneralRowAsTotal(t *testing.T) {
	conn := openTestDB(t)
	periodID := seedPeriod(t, conn)
	require.NoError(t, conn.Create(&[]models.UserGoal{
		{UserID: 42, PeriodID: periodID, Category: enums.CategoryGeneral, MonthlyTarget: decimal.RequireFromString("3000")},
		{UserID: 42, PeriodID: periodID, Category: enums.CategoryPerfumery, MonthlyTarget: decimal.RequireFromString("400")},
		{UserID: 43, PeriodID: periodID, Category: enums.CategoryGeneral, MonthlyTarget: decimal.RequireFromString("9999")},
	}).Error)

	targets, err := NewRepository(conn).UserTargets(context.Background(), 42, periodStart, periodEnd)
	require.NoError(t, err)
	require.True(t, targets.Found)
	require.True(t, targets.Total.Equal(decimal.RequireFromString("3000")))
	require.True(t, targets.Target(enums.CategoryPerfumery).Equal(decimal.RequireFromString("400")))
}
