package storage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaDDL is idempotent; EnsureSchema runs on startup before any write.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS observations (
    date        DATE        NOT NULL,
    asset       TEXT        NOT NULL,
    value       NUMERIC     NOT NULL CHECK (value > 0),
    source      TEXT        NOT NULL CHECK (source IN ('bulk-import', 'incremental')),
    ingested_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (date, asset)
);

CREATE INDEX IF NOT EXISTS idx_observations_asset_date
    ON observations (asset, date);
`

// EnsureSchema creates the observations table and its indexes if absent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return ErrNotConfigured
	}
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return &DurabilityError{Op: "ensure schema", Err: err}
	}
	return nil
}
