// Package config reads runtime settings from the environment. Shared by the
// server and padelctl.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"padel-app/internal/standings"
	"padel-app/internal/store"

	"github.com/joho/godotenv"
)

type Config struct {
	// App is the deployment name; "prod" switches to JSON logs and disables
	// the demo seed.
	App      string
	LogLevel slog.Level
	HTTPAddr string

	// Storage. Postgres wins over SQLite, SQLite over memory.
	PostgresDSN           string
	PostgresMigrationsDir string
	PostgresMaxConns      int
	DBPath                string
	DBMigrationsDir       string

	// Standings
	PointsWin      int
	PointsLoss     int
	DefaultNumSets int

	// Admin gate, bcrypt hash of the X-Admin-Key header value.
	AdminKeyHash string

	CORSAllowOrigins []string

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	EventBuffer int

	GoogleCredentialsFile string
}

// OnLambda reports whether the process runs inside AWS Lambda.
func OnLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// Load reads .env files outside Lambda, then the environment.
func Load() (*Config, error) {
	if !OnLambda() {
		_ = godotenv.Load(".env", ".env.local")
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() (*Config, error) {
	level, err := parseLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		App:      envOr("APP", "dev"),
		LogLevel: level,
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),

		PostgresDSN:           strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		PostgresMigrationsDir: os.Getenv("POSTGRES_MIGRATIONS_DIR"),
		PostgresMaxConns:      envInt("POSTGRES_MAX_CONNS", 10),
		DBPath:                strings.TrimSpace(os.Getenv("DB_PATH")),
		DBMigrationsDir:       os.Getenv("DB_MIGRATIONS_DIR"),

		PointsWin:      envInt("POINTS_WIN", 2),
		PointsLoss:     envInt("POINTS_LOSS", 1),
		DefaultNumSets: envInt("DEFAULT_NUM_SETS", 3),

		AdminKeyHash: strings.TrimSpace(os.Getenv("ADMIN_KEY_HASH")),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		EventBuffer: envInt("EVENT_BUFFER", 256),

		GoogleCredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.PointsWin < 0 || c.PointsLoss < 0 {
		errs = append(errs, errors.New("POINTS_WIN and POINTS_LOSS cannot be negative"))
	}
	if c.PointsLoss > c.PointsWin {
		errs = append(errs, fmt.Errorf("POINTS_LOSS (%d) cannot exceed POINTS_WIN (%d)", c.PointsLoss, c.PointsWin))
	}
	if c.DefaultNumSets != 2 && c.DefaultNumSets != 3 {
		errs = append(errs, fmt.Errorf("DEFAULT_NUM_SETS must be 2 or 3, got %d", c.DefaultNumSets))
	}
	if c.RateLimitEnabled && (c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive"))
	}
	if c.EventBuffer <= 0 {
		errs = append(errs, fmt.Errorf("EVENT_BUFFER must be positive, got %d", c.EventBuffer))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App == "prod"
}

// Logger builds the process logger: JSON in production, text elsewhere.
func (c *Config) Logger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// StoreOptions selects the storage backend.
func (c *Config) StoreOptions() store.OpenOptions {
	return store.OpenOptions{
		PostgresDSN:           c.PostgresDSN,
		PostgresMigrationsDir: c.PostgresMigrationsDir,
		PostgresMaxConns:      c.PostgresMaxConns,
		SQLitePath:            c.DBPath,
		SQLiteMigrationsDir:   c.DBMigrationsDir,
	}
}

func (c *Config) Standings() standings.Options {
	return standings.Options{PointsWin: c.PointsWin, PointsLoss: c.PointsLoss}
}

func parseLevel(v string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
