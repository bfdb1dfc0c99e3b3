package postgres

import (
	"context"
	"fmt"
	"github.com/jackc/pgx/v5/pgxpool"
	"time"
)

func Connect(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = maxConns
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

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		price          DOUBLE PRECISION NOT NULL CHECK (price >= 1.0),
		sizes          JSONB NOT NULL,
		total_quantity INTEGER NOT NULL CHECK (total_quantity >= 0),
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS products_name_lower_uq ON products (lower(name))`,
	`CREATE INDEX IF NOT EXISTS products_sizes_gin ON products USING GIN (sizes jsonb_path_ops)`,

	// product_id sengaja tanpa FK: referensi lemah, di-resolve saat read
	`CREATE TABLE IF NOT EXISTS orders (
		id         TEXT PRIMARY KEY,
		user_id    BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS orders_user_created_idx ON orders (user_id, created_at, id)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		order_id   TEXT NOT NULL REFERENCES orders(id),
		position   INTEGER NOT NULL,
		product_id TEXT NOT NULL,
		qty        INTEGER NOT NULL CHECK (qty >= 1),
		PRIMARY KEY (order_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS stock_incidents (
		id         TEXT PRIMARY KEY,
		event_id   TEXT NOT NULL UNIQUE,
		order_ref  TEXT NOT NULL,
		product_id TEXT NOT NULL,
		quantity   INTEGER NOT NULL,
		drawn      JSONB NOT NULL,
		reason     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate creates the schema if missing. Idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
