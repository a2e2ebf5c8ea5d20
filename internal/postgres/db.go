package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// EnsureSchema creates the two tables on startup. Idempotent, so a fresh
// database and a restarted process both end up in the same place.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			email         TEXT PRIMARY KEY,
			username      TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS orders (
			id             TEXT PRIMARY KEY,
			account        TEXT NOT NULL,
			name           TEXT NOT NULL,
			address        TEXT NOT NULL,
			phone          TEXT NOT NULL,
			items          JSONB NOT NULL,
			total          NUMERIC NOT NULL,
			payment_method TEXT NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}
