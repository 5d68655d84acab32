// Package migrations holds the schema for the movies and actors tables, one
// directory of goose migrations per supported database driver.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var migrationFS embed.FS

// gooseDialects maps a database/sql driver name to its goose dialect.
var gooseDialects = map[string]string{
	"postgres": "postgres",
	"sqlite":   "sqlite3",
}

// Up applies every pending migration for the given driver.
func Up(ctx context.Context, db *sql.DB, driver string) error {
	dialect, ok := gooseDialects[driver]
	if !ok {
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	goose.SetBaseFS(migrationFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, driver); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
