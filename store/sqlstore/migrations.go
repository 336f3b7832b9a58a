package sqlstore

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/migrate"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// MigrationsFS returns the migration tree for the dialect of db.
func MigrationsFS(db *bun.DB) (fs.FS, error) {
	dir := "migrations/postgres"
	if db.Dialect().Name() == dialect.SQLite {
		dir = "migrations/sqlite"
	}
	return fs.Sub(migrationsFS, dir)
}

// Migrate applies every pending migration under a migration lock.
func Migrate(ctx context.Context, db *bun.DB) error {
	fsys, err := MigrationsFS(db)
	if err != nil {
		return fmt.Errorf("sqlstore: migrations fs: %w", err)
	}
	migrations := migrate.NewMigrations()
	if err := migrations.Discover(fsys); err != nil {
		return fmt.Errorf("sqlstore: discover migrations: %w", err)
	}

	migrator := migrate.NewMigrator(db, migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("sqlstore: init migrator: %w", err)
	}
	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("sqlstore: lock migrations: %w", err)
	}
	defer func() {
		_ = migrator.Unlock(ctx)
	}()

	if _, err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return nil
}
