package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	sqlStore
}

type PostgresOptions struct {
	// MigrationsDir replaces the embedded migrations when set.
	MigrationsDir string
	MaxOpenConns  int
}

var postgresDialect = dialect{
	bind:    rebindDollar,
	timeArg: func(t time.Time) any { return t },
	duplicate: func(err error) bool {
		var pe *pgconn.PgError
		return errors.As(err, &pe) && pe.Code == "23505"
	},
}

func NewPostgresStore(ctx context.Context, dsn string, opts PostgresOptions) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	migrations, dir, err := migrationSource(strings.TrimSpace(opts.MigrationsDir), "migrations/postgres")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applyMigrations(ctx, db, migrations, dir, postgresDialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{sqlStore{db: db, d: postgresDialect}}, nil
}
