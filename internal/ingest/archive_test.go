package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aud-rate-history/internal/storage"
)

func TestReadArchive(t *testing.T) {
	input := strings.Join([]string{
		"date,EUR,USD",
		"2023-01-03,0.640,0.680",
		"2023-01-04,,0.681",
		"2023-01-05,0.642,",
	}, "\n")

	records, err := ReadArchive(strings.NewReader(input), storage.SourceBulkImport)
	require.NoError(t, err)
	require.Len(t, records, 4, "empty cells must not produce records")

	assert.Equal(t, RawRecord{Date: "2023-01-03", Asset: "EUR", Value: "0.640", Source: storage.SourceBulkImport}, records[0])
	assert.Equal(t, RawRecord{Date: "2023-01-03", Asset: "USD", Value: "0.680", Source: storage.SourceBulkImport}, records[1])
	assert.Equal(t, RawRecord{Date: "2023-01-04", Asset: "USD", Value: "0.681", Source: storage.SourceBulkImport}, records[2])
	assert.Equal(t, RawRecord{Date: "2023-01-05", Asset: "EUR", Value: "0.642", Source: storage.SourceBulkImport}, records[3])
}

func TestReadArchiveRejectsBadHeader(t *testing.T) {
	_, err := ReadArchive(strings.NewReader("timestamp,USD\n2023-01-03,0.68\n"), storage.SourceBulkImport)
	assert.Error(t, err)

	_, err = ReadArchive(strings.NewReader(""), storage.SourceBulkImport)
	assert.Error(t, err)
}

func TestReadArchiveKeepsUnknownColumnsForTheNormalizer(t *testing.T) {
	input := "date,TWI,USD\n2023-01-03,60.1,0.680\n"

	records, err := ReadArchive(strings.NewReader(input), storage.SourceBulkImport)
	require.NoError(t, err)
	require.Len(t, records, 2)

	n := NewNormalizer(testMaxValue)
	observations, invalid := n.NormalizeBatch(records)
	assert.Len(t, observations, 1)
	require.Len(t, invalid, 1)
	assert.Equal(t, "TWI", invalid[0].Asset)
}
