package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"aud-rate-history/internal/asset"
)

// Memory is an in-process Store used by tests and dry runs. It keeps a
// per-asset date index in ascending order so ranges iterate without sorting.
// Batches stage writes on a copy and swap it in atomically, so concurrent
// readers observe either the pre-batch or post-batch state.
type Memory struct {
	mu    sync.RWMutex
	obs   map[memKey]Observation
	index map[asset.Symbol][]time.Time
}

type memKey struct {
	day int64
	sym asset.Symbol
}

func keyOf(day time.Time, sym asset.Symbol) memKey {
	return memKey{day: Day(day).Unix(), sym: sym}
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		obs:   make(map[memKey]Observation),
		index: make(map[asset.Symbol][]time.Time),
	}
}

// applyPrecedence decides what a Put may do given the existing row, if any.
// This is the single place the bulk/incremental rule lives for the in-memory
// implementation.
func applyPrecedence(existing *Observation, obs Observation) (PutOutcome, error) {
	if existing == nil {
		return PutInserted, nil
	}
	if existing.SameFact(obs) {
		return PutDuplicate, nil
	}
	if existing.Source == SourceBulkImport && obs.Source == SourceIncremental {
		return PutReplaced, nil
	}
	return 0, &ConflictError{Key: obs.Key(), Existing: *existing, Attempted: obs}
}

func normalizeObservation(obs Observation) Observation {
	obs.Date = Day(obs.Date)
	if obs.IngestedAt.IsZero() {
		obs.IngestedAt = time.Now().UTC()
	}
	return obs
}

// Put inserts or replaces one observation under the precedence rule.
func (m *Memory) Put(ctx context.Context, obs Observation) (PutOutcome, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	obs = normalizeObservation(obs)

	m.mu.Lock()
	defer m.mu.Unlock()
	return putInto(m.obs, m.index, obs)
}

func putInto(obsMap map[memKey]Observation, index map[asset.Symbol][]time.Time, obs Observation) (PutOutcome, error) {
	k := keyOf(obs.Date, obs.Asset)

	var existing *Observation
	if cur, ok := obsMap[k]; ok {
		existing = &cur
	}

	outcome, err := applyPrecedence(existing, obs)
	if err != nil {
		return 0, err
	}
	if outcome == PutDuplicate {
		return outcome, nil
	}

	obsMap[k] = obs
	if outcome == PutInserted {
		index[obs.Asset] = insertDay(index[obs.Asset], obs.Date)
	}
	return outcome, nil
}

func insertDay(days []time.Time, day time.Time) []time.Time {
	i := sort.Search(len(days), func(i int) bool { return !days[i].Before(day) })
	if i < len(days) && days[i].Equal(day) {
		return days
	}
	days = append(days, time.Time{})
	copy(days[i+1:], days[i:])
	days[i] = day
	return days
}

// Get returns the observation for (day, sym) or ErrNotFound.
func (m *Memory) Get(ctx context.Context, day time.Time, sym asset.Symbol) (Observation, error) {
	if err := ctx.Err(); err != nil {
		return Observation{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	obs, ok := m.obs[keyOf(day, sym)]
	if !ok {
		return Observation{}, ErrNotFound
	}
	return obs, nil
}

// Exists reports whether an observation is stored for (day, sym).
func (m *Memory) Exists(ctx context.Context, day time.Time, sym asset.Symbol) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.obs[keyOf(day, sym)]
	return ok, nil
}

// Range returns observations for sym with from <= date <= to, ascending.
func (m *Memory) Range(ctx context.Context, from, to time.Time, sym asset.Symbol) ([]Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	from, to = Day(from), Day(to)

	m.mu.RLock()
	defer m.mu.RUnlock()

	days := m.index[sym]
	lo := sort.Search(len(days), func(i int) bool { return !days[i].Before(from) })
	hi := sort.Search(len(days), func(i int) bool { return days[i].After(to) })

	out := make([]Observation, 0, hi-lo)
	for _, day := range days[lo:hi] {
		out = append(out, m.obs[keyOf(day, sym)])
	}
	return out, nil
}

// Summary reports totals, per-asset coverage, and the covered date bounds.
func (m *Memory) Summary(ctx context.Context) (SummaryStats, error) {
	if err := ctx.Err(); err != nil {
		return SummaryStats{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := SummaryStats{PerAsset: make(map[asset.Symbol]int64)}
	for _, obs := range m.obs {
		stats.Total++
		stats.PerAsset[obs.Asset]++
		if stats.MinDate.IsZero() || obs.Date.Before(stats.MinDate) {
			stats.MinDate = obs.Date
		}
		if stats.MaxDate.IsZero() || obs.Date.After(stats.MaxDate) {
			stats.MaxDate = obs.Date
		}
	}
	return stats, nil
}

type memBatch struct {
	obs   map[memKey]Observation
	index map[asset.Symbol][]time.Time
}

func (b *memBatch) Put(ctx context.Context, obs Observation) (PutOutcome, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return putInto(b.obs, b.index, normalizeObservation(obs))
}

func (b *memBatch) Get(ctx context.Context, day time.Time, sym asset.Symbol) (Observation, error) {
	if err := ctx.Err(); err != nil {
		return Observation{}, err
	}
	obs, ok := b.obs[keyOf(day, sym)]
	if !ok {
		return Observation{}, ErrNotFound
	}
	return obs, nil
}

// Batch stages fn's writes on a private copy and publishes the copy only if
// fn succeeds. A failed batch leaves the store exactly as it was.
func (m *Memory) Batch(ctx context.Context, fn func(w BatchWriter) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	staged := &memBatch{
		obs:   make(map[memKey]Observation, len(m.obs)),
		index: make(map[asset.Symbol][]time.Time, len(m.index)),
	}
	for k, v := range m.obs {
		staged.obs[k] = v
	}
	for sym, days := range m.index {
		cp := make([]time.Time, len(days))
		copy(cp, days)
		staged.index[sym] = cp
	}
	m.mu.RUnlock()

	if err := fn(staged); err != nil {
		return err
	}

	m.mu.Lock()
	m.obs = staged.obs
	m.index = staged.index
	m.mu.Unlock()
	return nil
}
