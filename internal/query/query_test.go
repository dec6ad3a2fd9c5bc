package query

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aud-rate-history/internal/asset"
	"aud-rate-history/internal/storage"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := storage.ParseDay(s)
	require.NoError(t, err)
	return d
}

func seed(t *testing.T, rows ...storage.Observation) *storage.Memory {
	t.Helper()
	store := storage.NewMemory()
	for _, o := range rows {
		_, err := store.Put(context.Background(), o)
		require.NoError(t, err)
	}
	return store
}

func row(t *testing.T, date, sym, value string) storage.Observation {
	t.Helper()
	return storage.Observation{
		Date:   day(t, date),
		Asset:  asset.Symbol(sym),
		Value:  decimal.RequireFromString(value),
		Source: storage.SourceIncremental,
	}
}

func TestPointDelegatesToStore(t *testing.T) {
	ctx := context.Background()
	engine := New(seed(t, row(t, "2023-01-03", "USD", "0.682")))

	got, err := engine.Point(ctx, day(t, "2023-01-03"), "USD")
	require.NoError(t, err)
	assert.Equal(t, "0.682", got.Value.String())

	_, err = engine.Point(ctx, day(t, "2023-01-04"), "USD")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRangeRejectsInvertedWindow(t *testing.T) {
	engine := New(storage.NewMemory())
	_, err := engine.Range(context.Background(), day(t, "2023-02-01"), day(t, "2023-01-01"), "USD")
	assert.Error(t, err)
}

func TestMultiAssetSnapshotPartialCoverage(t *testing.T) {
	ctx := context.Background()
	engine := New(seed(t,
		row(t, "2023-01-03", "USD", "0.682"),
		row(t, "2023-01-03", "GOLD", "2450.5"),
		row(t, "2023-01-04", "EUR", "0.641"), // different day, must not leak in
	))

	snap, err := engine.MultiAssetSnapshot(ctx, day(t, "2023-01-03"), []asset.Symbol{"USD", "EUR", "GOLD"})
	require.NoError(t, err)

	assert.Len(t, snap.Values, 2)
	assert.Equal(t, "0.682", snap.Values["USD"].String())
	assert.Equal(t, "2450.5", snap.Values["GOLD"].String())

	_, hasEUR := snap.Values["EUR"]
	assert.False(t, hasEUR, "absence is per-asset, not a query failure")
}

func TestStats(t *testing.T) {
	observations := []storage.Observation{
		row(t, "2023-01-02", "USD", "0.60"),
		row(t, "2023-01-03", "USD", "0.70"),
		row(t, "2023-01-04", "USD", "0.80"),
	}

	stats, ok := Stats(observations)
	require.True(t, ok)
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, "0.60", stats.Min.String())
	assert.Equal(t, "0.80", stats.Max.String())
	assert.True(t, stats.Mean.Equal(decimal.RequireFromString("0.7")))
	assert.Equal(t, "2023-01-04", stats.Latest.Date.Format(storage.DayFormat))

	_, ok = Stats(nil)
	assert.False(t, ok)
}

func TestSummaryDelegates(t *testing.T) {
	engine := New(seed(t,
		row(t, "2023-01-03", "USD", "0.682"),
		row(t, "2023-01-04", "USD", "0.683"),
	))

	stats, err := engine.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(2), stats.PerAsset["USD"])
}
