package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"aud-rate-history/internal/storage"
)

// ReadArchive parses a wide historical CSV: header `date,<SYM>,<SYM>,...`,
// one row per date, empty cells meaning no observation for that (date, asset).
// This is both the bulk-import input format and the exporter's output format,
// so an exported file round-trips through here.
//
// Column headers are carried through as raw asset strings; the normalizer
// decides per record whether a column names a known asset.
func ReadArchive(r io.Reader, source storage.Source) ([]RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("archive csv: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("archive csv: read header: %w", err)
	}
	if len(header) < 2 || !strings.EqualFold(strings.TrimSpace(header[0]), "date") {
		return nil, fmt.Errorf("archive csv: header must start with \"date\", got %q", header)
	}

	columns := make([]string, len(header))
	for i, col := range header {
		columns[i] = strings.TrimSpace(col)
	}

	var records []RawRecord
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("archive csv: line %d: %w", line+1, err)
		}
		line++

		if len(row) == 0 {
			continue
		}
		date := strings.TrimSpace(row[0])

		for i := 1; i < len(row) && i < len(columns); i++ {
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				// absent is meaningful; never synthesize a record
				continue
			}
			records = append(records, RawRecord{
				Date:   date,
				Asset:  columns[i],
				Value:  cell,
				Source: source,
			})
		}
	}

	return records, nil
}
