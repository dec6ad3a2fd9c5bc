package ingest

import (
	"encoding/json"
	"fmt"
	"time"
)

// Legacy daily documents (schema version 0) predate standardization. They
// differ from the current shape in three ways:
//   - the date lives in a "collection_date" timestamp instead of "date",
//   - sections can be double-nested ({"currencies": {"currencies": {...}}})
//     because collectors dumped their whole response under the section key,
//   - commodity entries carry "price" (USD) with "price_aud" optional.
//
// convertLegacyDocument lifts a version-0 document into the current shape.
// It runs exactly once per document at import time.

type legacyEnvelope struct {
	CollectionDate   string          `json:"collection_date"`
	Date             string          `json:"date"`
	Currencies       json.RawMessage `json:"currencies"`
	Commodities      json.RawMessage `json:"commodities"`
	Cryptocurrencies json.RawMessage `json:"cryptocurrencies"`
}

type legacyCommodityEntry struct {
	Price    json.Number `json:"price"`
	PriceAUD json.Number `json:"price_aud"`
	Unit     string      `json:"unit"`
	Currency string      `json:"currency"`
}

func isLegacyDocument(data []byte) bool {
	var env legacyEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return false
	}
	if env.CollectionDate != "" {
		return true
	}
	return sectionIsNested(env.Currencies, "currencies") ||
		sectionIsNested(env.Commodities, "commodities") ||
		sectionIsNested(env.Cryptocurrencies, "cryptocurrencies")
}

func sectionIsNested(raw json.RawMessage, name string) bool {
	if len(raw) == 0 {
		return false
	}
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil {
		return false
	}
	_, nested := outer[name]
	return nested
}

// unwrapSection strips one level of self-nesting if present.
func unwrapSection(raw json.RawMessage, name string) json.RawMessage {
	if !sectionIsNested(raw, name) {
		return raw
	}
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil {
		return raw
	}
	return outer[name]
}

func convertLegacyDocument(data []byte) (DailyDocument, error) {
	var env legacyEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return DailyDocument{}, fmt.Errorf("parse legacy document: %w", err)
	}

	date := env.Date
	if date == "" {
		day, err := coerceLegacyDate(env.CollectionDate)
		if err != nil {
			return DailyDocument{}, fmt.Errorf("parse legacy document: %w", err)
		}
		date = day
	}

	doc := DailyDocument{Date: date}

	if raw := unwrapSection(env.Currencies, "currencies"); len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc.Currencies); err != nil {
			return DailyDocument{}, fmt.Errorf("parse legacy currencies: %w", err)
		}
	}

	if raw := unwrapSection(env.Commodities, "commodities"); len(raw) > 0 {
		var legacy map[string]legacyCommodityEntry
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return DailyDocument{}, fmt.Errorf("parse legacy commodities: %w", err)
		}
		doc.Commodities = make(map[string]CommodityEntry, len(legacy))
		for sym, entry := range legacy {
			// Only the AUD price survives conversion; a USD-only legacy entry
			// contributes no observation rather than a wrongly-denominated one.
			doc.Commodities[sym] = CommodityEntry{
				PriceAUD: entry.PriceAUD,
				Unit:     entry.Unit,
				Currency: "AUD",
			}
		}
	}

	if raw := unwrapSection(env.Cryptocurrencies, "cryptocurrencies"); len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc.Cryptocurrencies); err != nil {
			return DailyDocument{}, fmt.Errorf("parse legacy cryptocurrencies: %w", err)
		}
	}

	return doc, nil
}

// coerceLegacyDate accepts the timestamp formats legacy collectors wrote.
func coerceLegacyDate(raw string) (string, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized collection_date %q", raw)
}
