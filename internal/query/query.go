// Package query answers point, range, and cross-asset lookups over the
// store. Everything here is read-only.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"aud-rate-history/internal/asset"
	"aud-rate-history/internal/storage"
)

// Engine wraps a store reader.
type Engine struct {
	store storage.Reader
}

// New constructs an Engine.
func New(store storage.Reader) *Engine {
	return &Engine{store: store}
}

// Point returns the observation for one (date, asset) or storage.ErrNotFound.
func (e *Engine) Point(ctx context.Context, day time.Time, sym asset.Symbol) (storage.Observation, error) {
	return e.store.Get(ctx, day, sym)
}

// Range returns the observations for sym within [from, to], ascending.
func (e *Engine) Range(ctx context.Context, from, to time.Time, sym asset.Symbol) ([]storage.Observation, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("range query: start %s is after end %s",
			from.Format(storage.DayFormat), to.Format(storage.DayFormat))
	}
	return e.store.Range(ctx, from, to, sym)
}

// Snapshot is the per-asset view of one day. Absent assets are simply not in
// Values; partial coverage is per-asset, never a whole-query failure.
type Snapshot struct {
	Date   time.Time
	Values map[asset.Symbol]decimal.Decimal
}

// MultiAssetSnapshot collects the requested assets' values for one day.
func (e *Engine) MultiAssetSnapshot(ctx context.Context, day time.Time, syms []asset.Symbol) (Snapshot, error) {
	snap := Snapshot{
		Date:   storage.Day(day),
		Values: make(map[asset.Symbol]decimal.Decimal, len(syms)),
	}

	for _, sym := range asset.SortSymbols(syms) {
		obs, err := e.store.Get(ctx, day, sym)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return Snapshot{}, err
		}
		snap.Values[sym] = obs.Value
	}
	return snap, nil
}

// RangeStats are descriptive statistics over a range query's result.
type RangeStats struct {
	Count  int
	Min    decimal.Decimal
	Max    decimal.Decimal
	Mean   decimal.Decimal
	Latest storage.Observation
}

// Stats summarises a non-empty observation sequence.
func Stats(observations []storage.Observation) (RangeStats, bool) {
	if len(observations) == 0 {
		return RangeStats{}, false
	}

	stats := RangeStats{
		Count:  len(observations),
		Min:    observations[0].Value,
		Max:    observations[0].Value,
		Latest: observations[len(observations)-1],
	}
	sum := decimal.Zero
	for _, obs := range observations {
		if obs.Value.LessThan(stats.Min) {
			stats.Min = obs.Value
		}
		if obs.Value.GreaterThan(stats.Max) {
			stats.Max = obs.Value
		}
		sum = sum.Add(obs.Value)
	}
	stats.Mean = sum.Div(decimal.NewFromInt(int64(stats.Count)))
	return stats, true
}

// Summary reports store coverage. Descriptive only, no mutation.
func (e *Engine) Summary(ctx context.Context) (storage.SummaryStats, error) {
	return e.store.Summary(ctx)
}
