package data

import (
	"context"
	"database/sql"

	"github.com/hiremetrics/hirestats/internal/migrate"
)

// RunMigrations brings the schema up to date via the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}
