package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type SQLiteStore struct {
	sqlStore
}

type SQLiteOptions struct {
	// MigrationsDir replaces the embedded migrations when set.
	MigrationsDir string
}

// Fixed width so stored timestamps sort as text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var sqliteDialect = dialect{
	bind:    func(query string) string { return query },
	timeArg: func(t time.Time) any { return t.UTC().Format(sqliteTimeLayout) },
	duplicate: func(err error) bool {
		var se *sqlite.Error
		return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	},
}

func NewSQLiteStore(ctx context.Context, path string, opts SQLiteOptions) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
	}
	migrations, dir, err := migrationSource(strings.TrimSpace(opts.MigrationsDir), "migrations")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applyMigrations(ctx, db, migrations, dir, sqliteDialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{sqlStore{db: db, d: sqliteDialect}}, nil
}
