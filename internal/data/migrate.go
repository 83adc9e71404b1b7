package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hafizmfadli/movie-catalog/internal/data/migrations"
	"github.com/pressly/goose/v3"
)

// gooseUp is swapped out in tests.
var gooseUp = goose.UpContext

// Migrate applies the embedded schema migrations to db.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := gooseUp(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
