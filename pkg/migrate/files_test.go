package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRepositoryMigrationsAreValid(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("validate: %v", err)
	}
	files, err := ListFiles("migrations")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := 1; i < len(files); i++ {
		if files[i-1].Version >= files[i].Version {
			t.Fatalf("migrations out of order: %d then %d", files[i-1].Version, files[i].Version)
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, time.September, 1, 10, 0, 0, 0, time.UTC)

	path, err := createSQLMigration(dir, "Add Campaign Targets!", now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if filepath.Base(path) != "20250901100000_add_campaign_targets.sql" {
		t.Fatalf("unexpected file %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created migration must validate: %v", err)
	}

	if _, err := createSQLMigration(dir, "again", now); err == nil {
		t.Fatal("expected error for a version that does not sort after the latest")
	}
	if _, err := createSQLMigration(dir, "!!!", now.Add(time.Second)); err == nil {
		t.Fatal("expected error for an empty slug")
	}
}

func TestValidateDirRejects(t *testing.T) {
	cases := map[string]map[string]string{
		"bad name":     {"2025_stores.sql": "-- +goose Up\n-- +goose Down\n"},
		"missing down": {"20250101000000_stores.sql": "-- +goose Up\n"},
		"duplicate": {
			"20250101000000_stores.sql": "-- +goose Up\n-- +goose Down\n",
			"20250101000000_users.sql":  "-- +goose Up\n-- +goose Down\n",
		},
	}
	for name, files := range cases {
		dir := t.TempDir()
		for file, body := range files {
			if err := os.WriteFile(filepath.Join(dir, file), []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
		}
		if err := ValidateDir(dir); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestMigrateToVersionRequiresKnownVersion(t *testing.T) {
	err := MigrateToVersion(t.Context(), nil, "migrations", "20990101000000")
	if err == nil || !strings.Contains(err.Error(), "no migration") {
		t.Fatalf("expected unknown version error, got %v", err)
	}
}
