package ingest

import (
	"encoding/json"
	"fmt"

	"aud-rate-history/internal/storage"
)

// DailyDocument is the standardized per-date JSON handed over by the daily
// fetch layer: one document, three sections, AUD-quoted values.
type DailyDocument struct {
	Date             string                    `json:"date"`
	Timestamp        string                    `json:"timestamp"`
	Currencies       map[string]CurrencyEntry  `json:"currencies"`
	Commodities      map[string]CommodityEntry `json:"commodities"`
	Cryptocurrencies map[string]CryptoEntry    `json:"cryptocurrencies"`
}

// CurrencyEntry is an exchange rate against the AUD base.
type CurrencyEntry struct {
	Rate json.Number `json:"rate"`
	Base string      `json:"base"`
	Date string      `json:"date"`
}

// CommodityEntry is a commodity price. Only the AUD price is canonical; a
// document that carries only a foreign-currency price contributes no
// observation.
type CommodityEntry struct {
	PriceAUD json.Number `json:"price_aud"`
	Unit     string      `json:"unit"`
	Currency string      `json:"currency"`
}

// CryptoEntry is a crypto price in AUD.
type CryptoEntry struct {
	PriceAUD json.Number `json:"price_aud"`
	Currency string      `json:"currency"`
}

// ParseDailyDocument decodes a daily document, accepting both the current
// shape and the legacy pre-standardization shape (see legacy.go). The
// conversion runs once at import time, never at query time.
func ParseDailyDocument(data []byte) (DailyDocument, error) {
	if isLegacyDocument(data) {
		return convertLegacyDocument(data)
	}

	var doc DailyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return DailyDocument{}, fmt.Errorf("parse daily document: %w", err)
	}
	if doc.Date == "" {
		return DailyDocument{}, fmt.Errorf("parse daily document: missing date")
	}
	return doc, nil
}

// Records flattens the document into raw records tagged with the given
// provenance. Entries without a value are skipped: a gap stays a gap.
func (d DailyDocument) Records(source storage.Source) []RawRecord {
	var records []RawRecord

	entryDate := func(override string) string {
		if override != "" {
			return override
		}
		return d.Date
	}

	for sym, entry := range d.Currencies {
		if entry.Rate == "" {
			continue
		}
		records = append(records, RawRecord{
			Date:   entryDate(entry.Date),
			Asset:  sym,
			Value:  entry.Rate.String(),
			Source: source,
		})
	}

	for sym, entry := range d.Commodities {
		if entry.PriceAUD == "" {
			continue
		}
		records = append(records, RawRecord{
			Date:   d.Date,
			Asset:  sym,
			Value:  entry.PriceAUD.String(),
			Unit:   entry.Unit,
			Source: source,
		})
	}

	for sym, entry := range d.Cryptocurrencies {
		if entry.PriceAUD == "" {
			continue
		}
		records = append(records, RawRecord{
			Date:   d.Date,
			Asset:  sym,
			Value:  entry.PriceAUD.String(),
			Source: source,
		})
	}

	return records
}
