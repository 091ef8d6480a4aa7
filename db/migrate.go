package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"search-insight-miner/db/migrations"
)

// Migrate runs a goose command ("up", "down", "status", ...) against db using
// the embedded migrations.
func Migrate(ctx context.Context, db *sqlx.DB, command string) error {
	if db == nil {
		return fmt.Errorf("db is disabled")
	}
	if err := goose.SetDialect(GooseDialect(db.DriverName())); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetBaseFS(migrations.FS)

	if err := goose.RunContext(ctx, command, db.DB, "."); err != nil {
		return fmt.Errorf("goose run %q: %w", command, err)
	}
	return nil
}
