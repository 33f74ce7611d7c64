package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"
)

// DefaultDir is relative to the repository root, where the binaries run.
const DefaultDir = "pkg/migrate/migrations"

var commands = map[string]bool{"up": true, "down": true, "status": true, "redo": true}

func prepare(db *sql.DB, dir string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if dir == "" {
		return fmt.Errorf("migrations dir is required")
	}
	return goose.SetDialect(string(goose.DialectPostgres))
}

// Run executes a goose command against the postgres schema.
func Run(ctx context.Context, db *sql.DB, dir, command string, args ...string) error {
	if !commands[command] {
		return fmt.Errorf("unsupported goose command %q", command)
	}
	if err := prepare(db, dir); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion moves the schema up or down to target, which must name
// a migration present in dir.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir, target string) error {
	version, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", target, err)
	}
	files, err := ListFiles(dir)
	if err != nil {
		return err
	}
	if !hasVersion(files, version) {
		return fmt.Errorf("no migration with version %d in %s", version, dir)
	}
	if err := prepare(db, dir); err != nil {
		return err
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	switch {
	case current < version:
		err = goose.UpToContext(ctx, db, dir, version)
	case current > version:
		err = goose.DownToContext(ctx, db, dir, version)
	}
	if err != nil {
		return fmt.Errorf("goose migrate to %d: %w", version, err)
	}
	return nil
}

func hasVersion(files []File, version int64) bool {
	for _, f := range files {
		if f.Version == version {
			return true
		}
	}
	return false
}
