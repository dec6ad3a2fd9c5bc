package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"aud-rate-history/internal/asset"
)

const (
	selectObservationSQL = `SELECT date, asset, value, source, ingested_at
    FROM observations
    WHERE date = $1 AND asset = $2;`

	selectObservationForUpdateSQL = `SELECT date, asset, value, source, ingested_at
    FROM observations
    WHERE date = $1 AND asset = $2
    FOR UPDATE;`

	existsObservationSQL = `SELECT EXISTS (
        SELECT 1 FROM observations WHERE date = $1 AND asset = $2
    );`

	insertObservationSQL = `INSERT INTO observations (
        date, asset, value, source, ingested_at
    ) VALUES ($1, $2, $3, $4, $5);`

	replaceObservationSQL = `UPDATE observations
    SET value = $3, source = $4, ingested_at = $5
    WHERE date = $1 AND asset = $2;`

	rangeObservationsSQL = `SELECT date, asset, value, source, ingested_at
    FROM observations
    WHERE asset = $1
      AND date >= $2
      AND date <= $3
    ORDER BY date;`

	summaryTotalsSQL = `SELECT COUNT(*), MIN(date), MAX(date) FROM observations;`

	summaryPerAssetSQL = `SELECT asset, COUNT(*) FROM observations GROUP BY asset;`

	advisoryXactLockSQL = `SELECT pg_advisory_xact_lock($1);`
)

// querier abstracts a pool or an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres is the durable Store. Writes commit before returning; a batch is
// one transaction, serialized against other writers through an advisory lock
// so readers only ever see committed batches.
type Postgres struct {
	pool    *pgxpool.Pool
	lockKey int64
}

// NewPostgres wires a pgx pool into a Store. A non-zero lockKey enables the
// single-writer advisory lock around batches.
func NewPostgres(pool *pgxpool.Pool, lockKey int64) *Postgres {
	return &Postgres{pool: pool, lockKey: lockKey}
}

// Close releases the underlying pool resources.
func (p *Postgres) Close() {
	if p == nil || p.pool == nil {
		return
	}
	p.pool.Close()
}

func (p *Postgres) getPool() (*pgxpool.Pool, error) {
	if p == nil || p.pool == nil {
		return nil, ErrNotConfigured
	}
	return p.pool, nil
}

// Put applies a single observation in its own transaction.
func (p *Postgres) Put(ctx context.Context, obs Observation) (outcome PutOutcome, err error) {
	pool, err := p.getPool()
	if err != nil {
		return 0, err
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, &DurabilityError{Op: "begin put", Err: err}
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	outcome, err = putTx(ctx, tx, obs)
	if err != nil {
		return 0, err
	}
	if commitErr := tx.Commit(ctx); commitErr != nil {
		err = &DurabilityError{Op: "commit put", Err: commitErr}
		return 0, err
	}
	return outcome, nil
}

// putTx holds the precedence rule for the SQL implementation: the existing
// row is locked, compared, and either kept, replaced, or defended with a
// ConflictError.
func putTx(ctx context.Context, tx querier, obs Observation) (PutOutcome, error) {
	obs = normalizeObservation(obs)

	existing, err := scanObservation(tx.QueryRow(ctx, selectObservationForUpdateSQL, obs.Date, string(obs.Asset)))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if _, execErr := tx.Exec(ctx, insertObservationSQL,
			obs.Date, string(obs.Asset), obs.Value.String(), string(obs.Source), obs.IngestedAt,
		); execErr != nil {
			return 0, &DurabilityError{Op: "insert observation", Err: execErr}
		}
		return PutInserted, nil
	case err != nil:
		return 0, err
	}

	outcome, err := applyPrecedence(&existing, obs)
	if err != nil {
		return 0, err
	}
	if outcome == PutDuplicate {
		return outcome, nil
	}

	if _, execErr := tx.Exec(ctx, replaceObservationSQL,
		obs.Date, string(obs.Asset), obs.Value.String(), string(obs.Source), obs.IngestedAt,
	); execErr != nil {
		return 0, &DurabilityError{Op: "replace observation", Err: execErr}
	}
	return outcome, nil
}

// Get returns the observation for (day, sym) or ErrNotFound.
func (p *Postgres) Get(ctx context.Context, day time.Time, sym asset.Symbol) (Observation, error) {
	pool, err := p.getPool()
	if err != nil {
		return Observation{}, err
	}

	obs, err := scanObservation(pool.QueryRow(ctx, selectObservationSQL, Day(day), string(sym)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Observation{}, ErrNotFound
	}
	return obs, err
}

// Exists reports whether an observation is stored for (day, sym).
func (p *Postgres) Exists(ctx context.Context, day time.Time, sym asset.Symbol) (bool, error) {
	pool, err := p.getPool()
	if err != nil {
		return false, err
	}

	var exists bool
	if scanErr := pool.QueryRow(ctx, existsObservationSQL, Day(day), string(sym)).Scan(&exists); scanErr != nil {
		return false, fmt.Errorf("exists observation: %w", scanErr)
	}
	return exists, nil
}

// Range lists observations for one asset within [from, to], ascending.
func (p *Postgres) Range(ctx context.Context, from, to time.Time, sym asset.Symbol) ([]Observation, error) {
	pool, err := p.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, rangeObservationsSQL, string(sym), Day(from), Day(to))
	if queryErr != nil {
		return nil, fmt.Errorf("range observations: %w", queryErr)
	}
	defer rows.Close()

	out := make([]Observation, 0)
	for rows.Next() {
		obs, scanErr := scanObservation(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, obs)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// Summary reports totals, per-asset coverage, and the covered date bounds.
func (p *Postgres) Summary(ctx context.Context) (SummaryStats, error) {
	pool, err := p.getPool()
	if err != nil {
		return SummaryStats{}, err
	}

	stats := SummaryStats{PerAsset: make(map[asset.Symbol]int64)}

	var minDate, maxDate sql.NullTime
	if scanErr := pool.QueryRow(ctx, summaryTotalsSQL).Scan(&stats.Total, &minDate, &maxDate); scanErr != nil {
		return SummaryStats{}, fmt.Errorf("summary totals: %w", scanErr)
	}
	if minDate.Valid {
		stats.MinDate = Day(minDate.Time)
	}
	if maxDate.Valid {
		stats.MaxDate = Day(maxDate.Time)
	}

	rows, queryErr := pool.Query(ctx, summaryPerAssetSQL)
	if queryErr != nil {
		return SummaryStats{}, fmt.Errorf("summary per asset: %w", queryErr)
	}
	defer rows.Close()

	for rows.Next() {
		var sym string
		var count int64
		if scanErr := rows.Scan(&sym, &count); scanErr != nil {
			return SummaryStats{}, scanErr
		}
		stats.PerAsset[asset.Symbol(sym)] = count
	}
	if rows.Err() != nil {
		return SummaryStats{}, rows.Err()
	}
	return stats, nil
}

type pgBatch struct {
	tx pgx.Tx
}

func (b *pgBatch) Put(ctx context.Context, obs Observation) (PutOutcome, error) {
	return putTx(ctx, b.tx, obs)
}

func (b *pgBatch) Get(ctx context.Context, day time.Time, sym asset.Symbol) (Observation, error) {
	obs, err := scanObservation(b.tx.QueryRow(ctx, selectObservationSQL, Day(day), string(sym)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Observation{}, ErrNotFound
	}
	return obs, err
}

// Batch runs fn inside one transaction. The advisory lock serializes batches
// so the bulk importer and the daily job cannot interleave.
func (p *Postgres) Batch(ctx context.Context, fn func(w BatchWriter) error) (err error) {
	pool, err := p.getPool()
	if err != nil {
		return err
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return &DurabilityError{Op: "begin batch", Err: err}
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if p.lockKey != 0 {
		if _, execErr := tx.Exec(ctx, advisoryXactLockSQL, p.lockKey); execErr != nil {
			err = fmt.Errorf("acquire writer lock: %w", execErr)
			return err
		}
	}

	if err = fn(&pgBatch{tx: tx}); err != nil {
		return err
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		err = &DurabilityError{Op: "commit batch", Err: commitErr}
		return err
	}
	return nil
}

func scanObservation(row pgx.Row) (Observation, error) {
	var (
		date       time.Time
		sym        string
		valueStr   string
		source     string
		ingestedAt time.Time
	)

	if err := row.Scan(&date, &sym, &valueStr, &source, &ingestedAt); err != nil {
		return Observation{}, err
	}

	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return Observation{}, fmt.Errorf("parse observation value: %w", err)
	}

	return Observation{
		Date:       Day(date),
		Asset:      asset.Symbol(sym),
		Value:      value,
		Source:     Source(source),
		IngestedAt: ingestedAt,
	}, nil
}
