package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected one %s migration, found %d", suffix, len(matches))
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestStoresAndUsersMigration(t *testing.T) {
	assertContains(t, readMigration(t, "create_stores_and_users"), []string{
		"CREATE TABLE IF NOT EXISTS stores",
		"CREATE TABLE IF NOT EXISTS users",
		"CONSTRAINT users_login_key UNIQUE (login)",
		"must_change_password BOOLEAN NOT NULL DEFAULT false",
		"'gerente', 'farmaceutico', 'auxiliar', 'consultora', 'lider'",
	})
}

func TestGoalTablesMigration(t *testing.T) {
	assertContains(t, readMigration(t, "create_goal_tables"), []string{
		"CREATE TABLE IF NOT EXISTS goal_periods",
		"CHECK (start_date <= end_date)",
		"WHERE status = 'ativo'",
		"CONSTRAINT store_goals_store_period_key UNIQUE (store_id, period_id)",
		"CONSTRAINT store_goal_categories_goal_category_key UNIQUE (store_goal_id, category)",
		"CREATE TABLE IF NOT EXISTS user_goals",
	})
}

func TestSalesTablesMigration(t *testing.T) {
	assertContains(t, readMigration(t, "create_sales_tables"), []string{
		"CREATE TABLE IF NOT EXISTS store_sales",
		"value NUMERIC(14, 2) NOT NULL",
		"CREATE INDEX IF NOT EXISTS store_sales_store_date_idx",
		"CREATE TABLE IF NOT EXISTS user_sales",
		"commission NUMERIC(14, 2)",
	})
}
