package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"aud-rate-history/internal/asset"
)

// DayFormat is the calendar-date layout used everywhere an observation date
// crosses a boundary (CLI, CSV, database).
const DayFormat = "2006-01-02"

// Source records which pipeline wrote an observation.
type Source string

const (
	// SourceBulkImport marks rows seeded by the one-time historical import.
	SourceBulkImport Source = "bulk-import"
	// SourceIncremental marks rows appended by the daily pipeline. Incremental
	// data is authoritative and may replace a bulk-import row for the same key.
	SourceIncremental Source = "incremental"
)

// Valid reports whether s is one of the two known provenance tags.
func (s Source) Valid() bool {
	return s == SourceBulkImport || s == SourceIncremental
}

// Observation is the atomic fact: one asset value on one calendar day, with
// provenance. The (Date, Asset) pair is the primary key.
type Observation struct {
	Date       time.Time // UTC midnight, no time component
	Asset      asset.Symbol
	Value      decimal.Decimal
	Source     Source
	IngestedAt time.Time
}

// Key identifies an observation inside the store.
type Key struct {
	Date  time.Time
	Asset asset.Symbol
}

func (k Key) String() string {
	return k.Date.Format(DayFormat) + "/" + string(k.Asset)
}

// Key returns the (date, asset) identity of the observation.
func (o Observation) Key() Key {
	return Key{Date: o.Date, Asset: o.Asset}
}

// SameFact reports whether two observations carry the identical fact:
// same key, same value, same source. Re-submitting the same fact is the
// idempotent no-op case, never a conflict.
func (o Observation) SameFact(other Observation) bool {
	return o.Date.Equal(other.Date) &&
		o.Asset == other.Asset &&
		o.Value.Equal(other.Value) &&
		o.Source == other.Source
}

// Day normalizes a timestamp to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses an ISO-8601 calendar date.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DayFormat, s)
}

// SummaryStats describes store coverage; a read-only report.
type SummaryStats struct {
	Total    int64
	PerAsset map[asset.Symbol]int64
	MinDate  time.Time // zero when the store is empty
	MaxDate  time.Time
}
