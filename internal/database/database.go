// Package database provides PostgreSQL connection management.
package database

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds database connection configuration.
type Config struct {
	// URL is the postgres:// connection string.
	URL string

	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
}

// ConfigFromEnv creates a Config from environment variables.
// DATABASE_URL is the single source of truth for the connection itself;
// pool tuning knobs keep their own variables.
func ConfigFromEnv() Config {
	maxConns, _ := strconv.Atoi(getEnvOrDefault("DB_MAX_CONNS", "10"))
	minConns, _ := strconv.Atoi(getEnvOrDefault("DB_MIN_CONNS", "2"))
	lifetime, _ := time.ParseDuration(getEnvOrDefault("DB_CONN_MAX_LIFETIME", "5m"))

	return Config{
		URL:             os.Getenv("DATABASE_URL"),
		MaxConns:        maxConns,
		MinConns:        minConns,
		ConnMaxLifetime: lifetime,
	}
}

// Connect creates a new database connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns) //nolint:gosec // bounded by config
	poolConfig.MinConns = int32(cfg.MinConns) //nolint:gosec // bounded by config
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Migrate creates the observations table if it does not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS observations (
			id            BIGSERIAL PRIMARY KEY,
			aqi           INTEGER NOT NULL,
			source_aqi    INTEGER NOT NULL,
			level         TEXT NOT NULL,
			color         TEXT NOT NULL,
			co            DOUBLE PRECISION NOT NULL DEFAULT 0,
			no            DOUBLE PRECISION NOT NULL DEFAULT 0,
			no2           DOUBLE PRECISION NOT NULL DEFAULT 0,
			o3            DOUBLE PRECISION NOT NULL DEFAULT 0,
			so2           DOUBLE PRECISION NOT NULL DEFAULT 0,
			pm2_5         DOUBLE PRECISION NOT NULL DEFAULT 0,
			pm10          DOUBLE PRECISION NOT NULL DEFAULT 0,
			nh3           DOUBLE PRECISION NOT NULL DEFAULT 0,
			lat           DOUBLE PRECISION NOT NULL,
			lon           DOUBLE PRECISION NOT NULL,
			location_name TEXT NOT NULL DEFAULT '',
			observed_at   TIMESTAMPTZ NOT NULL,
			stored_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS observations_stored_at_idx
			ON observations (stored_at DESC);
		CREATE INDEX IF NOT EXISTS observations_cell_idx
			ON observations (lat, lon, stored_at DESC);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
