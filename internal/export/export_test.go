package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aud-rate-history/internal/asset"
	"aud-rate-history/internal/ingest"
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
		Source: storage.SourceBulkImport,
	}
}

func sparseStore(t *testing.T) *storage.Memory {
	return seed(t,
		row(t, "2023-01-03", "USD", "0.680"),
		row(t, "2023-01-03", "EUR", "0.640"),
		row(t, "2023-01-04", "USD", "0.681"),
		row(t, "2023-01-06", "EUR", "0.642"),
		row(t, "2023-01-06", "GOLD", "2450.5"),
	)
}

func TestPivotWideTable(t *testing.T) {
	ctx := context.Background()
	store := sparseStore(t)

	// request order is deliberately unsorted; columns must come out sorted
	table, err := Pivot(ctx, store, day(t, "2023-01-01"), day(t, "2023-01-31"),
		[]asset.Symbol{"USD", "GOLD", "EUR"})
	require.NoError(t, err)

	assert.Equal(t, []asset.Symbol{"EUR", "GOLD", "USD"}, table.Assets)

	// one row per date holding at least one observation; 2023-01-05 absent
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "2023-01-03", table.Rows[0].Date.Format(storage.DayFormat))
	assert.Equal(t, "2023-01-04", table.Rows[1].Date.Format(storage.DayFormat))
	assert.Equal(t, "2023-01-06", table.Rows[2].Date.Format(storage.DayFormat))

	// 2023-01-04 has USD only; EUR and GOLD cells are nil, never zero
	jan4 := table.Rows[1]
	assert.Nil(t, jan4.Cells[0])
	assert.Nil(t, jan4.Cells[1])
	require.NotNil(t, jan4.Cells[2])
	assert.Equal(t, "0.681", jan4.Cells[2].String())
}

func TestWriteCSVRendersEmptyCells(t *testing.T) {
	ctx := context.Background()
	store := sparseStore(t)

	table, err := Pivot(ctx, store, day(t, "2023-01-01"), day(t, "2023-01-31"),
		[]asset.Symbol{"EUR", "GOLD", "USD"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf, -1))

	want := "date,EUR,GOLD,USD\n" +
		"2023-01-03,0.640,,0.680\n" +
		"2023-01-04,,,0.681\n" +
		"2023-01-06,0.642,2450.5,\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVIsDeterministic(t *testing.T) {
	ctx := context.Background()
	store := sparseStore(t)

	render := func() string {
		table, err := Pivot(ctx, store, day(t, "2023-01-01"), day(t, "2023-01-31"), asset.Symbols())
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, table.WriteCSV(&buf, -1))
		return buf.String()
	}

	first := render()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, render())
	}
}

func TestPivotEmptyWindow(t *testing.T) {
	ctx := context.Background()
	table, err := Pivot(ctx, storage.NewMemory(), day(t, "2023-01-01"), day(t, "2023-01-31"), asset.Symbols())
	require.NoError(t, err)
	assert.Empty(t, table.Rows)

	_, err = Pivot(ctx, storage.NewMemory(), day(t, "2023-02-01"), day(t, "2023-01-01"), asset.Symbols())
	assert.Error(t, err)
}

// Exporting and re-importing must reproduce the original observation set
// exactly, with empty cells mapping back to no observation.
func TestPivotRoundTrip(t *testing.T) {
	ctx := context.Background()
	original := []storage.Observation{
		row(t, "2023-01-03", "USD", "0.680"),
		row(t, "2023-01-03", "EUR", "0.640"),
		row(t, "2023-01-04", "USD", "0.681"),
		row(t, "2023-01-06", "GOLD", "2450.5"),
	}
	store := seed(t, original...)

	table, err := Pivot(ctx, store, day(t, "2023-01-01"), day(t, "2023-01-31"),
		[]asset.Symbol{"EUR", "GOLD", "USD"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf, -1))

	records, err := ingest.ReadArchive(&buf, storage.SourceBulkImport)
	require.NoError(t, err)

	normalizer := ingest.NewNormalizer(1e8)
	reimported, invalid := normalizer.NormalizeBatch(records)
	require.Empty(t, invalid)
	require.Len(t, reimported, len(original))

	got := map[string]string{}
	for _, o := range reimported {
		got[o.Key().String()] = o.Value.String()
	}
	for _, o := range original {
		assert.Equal(t, o.Value.String(), got[o.Key().String()], "key %s", o.Key())
	}
}
