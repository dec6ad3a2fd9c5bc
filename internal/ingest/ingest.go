// Package ingest normalizes heterogeneous source records into canonical
// observations. Everything here is pure: callers decide whether to log and
// skip invalid records or abort a batch.
package ingest

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"aud-rate-history/internal/asset"
	"aud-rate-history/internal/storage"
)

// Unit conversion factors. Conversion happens here and never downstream.
var (
	gramsPerTroyOunce = decimal.RequireFromString("31.1034768")
	poundsPerTonne    = decimal.RequireFromString("2204.622621848776")
)

// RawRecord is one source fact before validation. Adapters (archive reader,
// daily document) flatten their shapes into this form.
type RawRecord struct {
	Date  string
	Asset string
	Value string
	// Unit the raw value is quoted in when the source deviates from the
	// asset's canonical unit, e.g. "g" for a per-gram metal quote. Empty
	// means the value is already canonical.
	Unit   string
	Source storage.Source
}

// ValidationError reports one rejected record. It never aborts the batch.
type ValidationError struct {
	Date   string
	Asset  string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record (date=%q asset=%q): %s: %s", e.Date, e.Asset, e.Field, e.Reason)
}

// Normalizer validates raw records against the asset registry and the
// configured value bound.
type Normalizer struct {
	maxValue decimal.Decimal
}

// NewNormalizer builds a normalizer with the given sanity bound on values.
func NewNormalizer(maxValue float64) *Normalizer {
	return &Normalizer{maxValue: decimal.NewFromFloat(maxValue)}
}

// Normalize converts one raw record into a canonical observation or a
// *ValidationError. IngestedAt is left zero; the store stamps it on write.
func (n *Normalizer) Normalize(raw RawRecord) (storage.Observation, error) {
	day, err := storage.ParseDay(raw.Date)
	if err != nil {
		return storage.Observation{}, &ValidationError{
			Date: raw.Date, Asset: raw.Asset, Field: "date",
			Reason: "not a calendar date (want YYYY-MM-DD)",
		}
	}

	sym, err := asset.Parse(raw.Asset)
	if err != nil {
		return storage.Observation{}, &ValidationError{
			Date: raw.Date, Asset: raw.Asset, Field: "asset",
			Reason: "not in the known asset set",
		}
	}

	value, err := decimal.NewFromString(raw.Value)
	if err != nil {
		return storage.Observation{}, &ValidationError{
			Date: raw.Date, Asset: raw.Asset, Field: "value",
			Reason: fmt.Sprintf("not numeric: %q", raw.Value),
		}
	}

	value, convErr := convertUnit(sym, raw.Unit, value)
	if convErr != nil {
		return storage.Observation{}, convErr.withContext(raw)
	}

	if value.Sign() <= 0 {
		return storage.Observation{}, &ValidationError{
			Date: raw.Date, Asset: raw.Asset, Field: "value",
			Reason: "must be positive",
		}
	}
	if value.GreaterThan(n.maxValue) {
		return storage.Observation{}, &ValidationError{
			Date: raw.Date, Asset: raw.Asset, Field: "value",
			Reason: fmt.Sprintf("exceeds sanity bound %s", n.maxValue),
		}
	}

	if !raw.Source.Valid() {
		return storage.Observation{}, &ValidationError{
			Date: raw.Date, Asset: raw.Asset, Field: "source",
			Reason: fmt.Sprintf("unknown provenance %q", raw.Source),
		}
	}

	return storage.Observation{
		Date:   storage.Day(day),
		Asset:  sym,
		Value:  value,
		Source: raw.Source,
	}, nil
}

// NormalizeBatch runs Normalize over a whole batch, collecting rejected
// records instead of failing on the first one.
func (n *Normalizer) NormalizeBatch(raws []RawRecord) ([]storage.Observation, []*ValidationError) {
	observations := make([]storage.Observation, 0, len(raws))
	var invalid []*ValidationError

	for _, raw := range raws {
		obs, err := n.Normalize(raw)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				invalid = append(invalid, verr)
			}
			continue
		}
		observations = append(observations, obs)
	}
	return observations, invalid
}

type unitError struct {
	field  string
	reason string
}

func (e *unitError) withContext(raw RawRecord) *ValidationError {
	return &ValidationError{Date: raw.Date, Asset: raw.Asset, Field: e.field, Reason: e.reason}
}

// convertUnit maps a source unit onto the asset's canonical unit. Precious
// metals are stored per troy ounce, base metals per tonne.
func convertUnit(sym asset.Symbol, unit string, value decimal.Decimal) (decimal.Decimal, *unitError) {
	info, _ := asset.Lookup(sym)

	switch unit {
	case "":
		return value, nil
	case "oz", "ozt":
		if info.Unit != "AUD/ozt" {
			return decimal.Zero, &unitError{field: "unit", reason: fmt.Sprintf("%s is not quoted per ounce", sym)}
		}
		return value, nil
	case "g", "gram":
		if info.Unit != "AUD/ozt" {
			return decimal.Zero, &unitError{field: "unit", reason: fmt.Sprintf("%s is not quoted per ounce", sym)}
		}
		return value.Mul(gramsPerTroyOunce), nil
	case "t", "mt":
		if info.Unit != "AUD/t" {
			return decimal.Zero, &unitError{field: "unit", reason: fmt.Sprintf("%s is not quoted per tonne", sym)}
		}
		return value, nil
	case "lb":
		if info.Unit != "AUD/t" {
			return decimal.Zero, &unitError{field: "unit", reason: fmt.Sprintf("%s is not quoted per tonne", sym)}
		}
		return value.Mul(poundsPerTonne), nil
	default:
		return decimal.Zero, &unitError{field: "unit", reason: fmt.Sprintf("unknown unit %q", unit)}
	}
}
