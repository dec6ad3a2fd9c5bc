// Package export pivots long-form observations into a wide table, one row
// per date and one column per asset, and serializes it as CSV. Output is
// deterministic: lexicographic column order, ascending date order, so the
// same store state always produces byte-identical bytes.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"aud-rate-history/internal/asset"
	"aud-rate-history/internal/storage"
)

// Row is one date's slice of the wide table. Cells align with Table.Assets;
// a nil cell means no observation, which renders as an empty CSV field —
// never zero, never an omitted column.
type Row struct {
	Date  time.Time
	Cells []*decimal.Decimal
}

// Table is the pivoted wide form.
type Table struct {
	Assets []asset.Symbol
	Rows   []Row
}

// Pivot builds the wide table for [from, to] over the requested assets.
// Only dates holding at least one observation among the assets produce rows.
func Pivot(ctx context.Context, store storage.Reader, from, to time.Time, syms []asset.Symbol) (Table, error) {
	if to.Before(from) {
		return Table{}, fmt.Errorf("pivot: start %s is after end %s",
			from.Format(storage.DayFormat), to.Format(storage.DayFormat))
	}

	columns := asset.SortSymbols(syms)
	table := Table{Assets: columns}

	cells := make(map[int64][]*decimal.Decimal)
	for col, sym := range columns {
		observations, err := store.Range(ctx, from, to, sym)
		if err != nil {
			return Table{}, err
		}
		for _, obs := range observations {
			day := obs.Date.Unix()
			row, ok := cells[day]
			if !ok {
				row = make([]*decimal.Decimal, len(columns))
				cells[day] = row
			}
			value := obs.Value
			row[col] = &value
		}
	}

	days := make([]int64, 0, len(cells))
	for day := range cells {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	table.Rows = make([]Row, 0, len(days))
	for _, day := range days {
		table.Rows = append(table.Rows, Row{
			Date:  time.Unix(day, 0).UTC(),
			Cells: cells[day],
		})
	}
	return table, nil
}

// WriteCSV renders the table. places >= 0 fixes the number of decimal
// places; negative renders values at full stored precision.
func (t Table) WriteCSV(w io.Writer, places int) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(t.Assets)+1)
	header = append(header, "date")
	for _, sym := range t.Assets {
		header = append(header, string(sym))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(header))
	for _, row := range t.Rows {
		record[0] = row.Date.Format(storage.DayFormat)
		for i, cell := range row.Cells {
			if cell == nil {
				record[i+1] = ""
				continue
			}
			if places >= 0 {
				record[i+1] = cell.StringFixed(int32(places))
			} else {
				record[i+1] = cell.String()
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", record[0], err)
		}
	}

	cw.Flush()
	return cw.Error()
}
