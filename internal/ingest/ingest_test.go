package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aud-rate-history/internal/asset"
	"aud-rate-history/internal/storage"
)

const testMaxValue = 1e8

func TestNormalizeValidRecord(t *testing.T) {
	n := NewNormalizer(testMaxValue)

	obs, err := n.Normalize(RawRecord{
		Date:   "2023-01-03",
		Asset:  "usd",
		Value:  "0.680",
		Source: storage.SourceBulkImport,
	})
	require.NoError(t, err)

	assert.Equal(t, "2023-01-03", obs.Date.Format(storage.DayFormat))
	assert.Equal(t, asset.Symbol("USD"), obs.Asset)
	assert.Equal(t, "0.680", obs.Value.String())
	assert.Equal(t, storage.SourceBulkImport, obs.Source)
	assert.True(t, obs.IngestedAt.IsZero(), "normalizer must not stamp ingested_at")
}

func TestNormalizeRejections(t *testing.T) {
	n := NewNormalizer(testMaxValue)

	cases := []struct {
		name  string
		raw   RawRecord
		field string
	}{
		{"bad date", RawRecord{Date: "03/01/2023", Asset: "USD", Value: "0.68", Source: storage.SourceIncremental}, "date"},
		{"unknown asset", RawRecord{Date: "2023-01-03", Asset: "DOGE", Value: "1", Source: storage.SourceIncremental}, "asset"},
		{"non-numeric", RawRecord{Date: "2023-01-03", Asset: "USD", Value: "n/a", Source: storage.SourceIncremental}, "value"},
		{"negative", RawRecord{Date: "2023-01-03", Asset: "USD", Value: "-0.68", Source: storage.SourceIncremental}, "value"},
		{"zero", RawRecord{Date: "2023-01-03", Asset: "USD", Value: "0", Source: storage.SourceIncremental}, "value"},
		{"beyond bound", RawRecord{Date: "2023-01-03", Asset: "BTC", Value: "1000000000000", Source: storage.SourceIncremental}, "value"},
		{"bad unit", RawRecord{Date: "2023-01-03", Asset: "GOLD", Value: "95", Unit: "bushel", Source: storage.SourceIncremental}, "unit"},
		{"unit on currency", RawRecord{Date: "2023-01-03", Asset: "USD", Value: "0.68", Unit: "g", Source: storage.SourceIncremental}, "unit"},
		{"bad source", RawRecord{Date: "2023-01-03", Asset: "USD", Value: "0.68", Source: "manual"}, "source"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := n.Normalize(tc.raw)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestNormalizeConvertsPerGramQuotes(t *testing.T) {
	n := NewNormalizer(testMaxValue)

	obs, err := n.Normalize(RawRecord{
		Date:   "2023-01-03",
		Asset:  "GOLD",
		Value:  "100",
		Unit:   "g",
		Source: storage.SourceIncremental,
	})
	require.NoError(t, err)
	assert.Equal(t, "3110.34768", obs.Value.String())

	// per-ounce quotes pass through untouched
	obs, err = n.Normalize(RawRecord{
		Date:   "2023-01-03",
		Asset:  "GOLD",
		Value:  "2450.5",
		Unit:   "oz",
		Source: storage.SourceIncremental,
	})
	require.NoError(t, err)
	assert.Equal(t, "2450.5", obs.Value.String())
}

func TestNormalizeBatchSkipsInvalidRecords(t *testing.T) {
	n := NewNormalizer(testMaxValue)

	raws := []RawRecord{
		{Date: "2023-01-03", Asset: "USD", Value: "0.680", Source: storage.SourceBulkImport},
		{Date: "2023-01-03", Asset: "TWI", Value: "60.1", Source: storage.SourceBulkImport},
		{Date: "2023-01-03", Asset: "EUR", Value: "0.640", Source: storage.SourceBulkImport},
	}

	observations, invalid := n.NormalizeBatch(raws)
	assert.Len(t, observations, 2)
	require.Len(t, invalid, 1)
	assert.Equal(t, "TWI", invalid[0].Asset)
}
