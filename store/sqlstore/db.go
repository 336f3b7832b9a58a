package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jrsteele09/mc-auth/internal/config"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Open connects to the configured database and applies pending migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*bun.DB, error) {
	sqlDB, err := sql.Open(cfg.GetDBDriver(), cfg.GetDBDSN())
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", cfg.GetDBDriver(), err)
	}
	if n := cfg.GetDBMaxOpenConns(); n > 0 {
		sqlDB.SetMaxOpenConns(n)
	}

	db, err := New(sqlDB, cfg.GetDBDriver())
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if cfg.GetDBDebug() {
		db.AddQueryHook(&queryLogger{log: logger})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore: ping: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New wraps an open *sql.DB with the bun dialect for driver.
func New(sqlDB *sql.DB, driver string) (*bun.DB, error) {
	switch driver {
	case DriverPostgres:
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	case DriverSQLite:
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}

type queryLogger struct {
	log zerolog.Logger
}

var _ bun.QueryHook = (*queryLogger)(nil)

func (q *queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (q *queryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	ev := q.log.Debug()
	if event.Err != nil && event.Err != sql.ErrNoRows {
		ev = q.log.Warn().Err(event.Err)
	}
	ev.Str("op", event.Operation()).Dur("took", time.Since(event.StartTime)).Msg(event.Query)
}
