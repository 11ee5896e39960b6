package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

// EnsureSchema creates the two tables this service owns. Idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS stores (
    id               UUID PRIMARY KEY,
    name             TEXT NOT NULL UNIQUE,
    wb_api_key       TEXT NOT NULL UNIQUE,
    prompt           TEXT NOT NULL,
    telegram_user_id BIGINT NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_stores_telegram_user_id ON stores (telegram_user_id);

CREATE TABLE IF NOT EXISTS store_statistics (
    store_id         UUID PRIMARY KEY REFERENCES stores(id) ON DELETE CASCADE,
    total_reviews    INTEGER NOT NULL DEFAULT 0,
    answered_reviews INTEGER NOT NULL DEFAULT 0,
    last_check_time  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`
	_, err := pool.Exec(ctx, ddl)
	return err
}
