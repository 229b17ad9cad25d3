package store

import (
	"context"
	"log/slog"
	"strings"
)

type OpenOptions struct {
	PostgresDSN           string
	PostgresMigrationsDir string
	PostgresMaxConns      int
	SQLitePath            string
	SQLiteMigrationsDir   string
}

// Open picks the backend the way the server always has: Postgres when a DSN
// is configured, SQLite when a file path is, memory otherwise.
func Open(ctx context.Context, opts OpenOptions, logger *slog.Logger) (Store, error) {
	if dsn := strings.TrimSpace(opts.PostgresDSN); dsn != "" {
		st, err := NewPostgresStore(ctx, dsn, PostgresOptions{
			MigrationsDir: opts.PostgresMigrationsDir,
			MaxOpenConns:  opts.PostgresMaxConns,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("using postgres store")
		return st, nil
	}
	if path := strings.TrimSpace(opts.SQLitePath); path != "" {
		st, err := NewSQLiteStore(ctx, path, SQLiteOptions{MigrationsDir: opts.SQLiteMigrationsDir})
		if err != nil {
			return nil, err
		}
		logger.Info("using sqlite store", "path", path)
		return st, nil
	}
	logger.Info("using in-memory store")
	return NewMemoryStore(), nil
}
