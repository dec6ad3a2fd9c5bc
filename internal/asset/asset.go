// Package asset defines the closed set of tracked symbols. Every symbol that
// reaches the store has been validated against this registry, so downstream
// components can assume well-formed input.
package asset

import (
	"fmt"
	"sort"
	"strings"
)

// Category groups symbols by the kind of market they trade in.
type Category string

const (
	CategoryCurrency  Category = "currency"
	CategoryCommodity Category = "commodity"
	CategoryCrypto    Category = "crypto"
)

// Symbol is a validated asset code such as "USD", "GOLD", or "BTC".
type Symbol string

func (s Symbol) String() string { return string(s) }

// Info describes one tracked asset. Unit and quote currency are fixed per
// asset and never stored per observation.
type Info struct {
	Symbol   Symbol
	Category Category
	// Unit the canonical value is quoted in. Currencies are units of foreign
	// currency per 1 AUD; everything else is AUD per Unit.
	Unit string
	Name string
}

// registry is the closed set. AUD itself is the base currency and is not a
// tracked symbol.
var registry = map[Symbol]Info{
	"USD":       {Symbol: "USD", Category: CategoryCurrency, Unit: "USD/AUD", Name: "US dollar"},
	"EUR":       {Symbol: "EUR", Category: CategoryCurrency, Unit: "EUR/AUD", Name: "Euro"},
	"GBP":       {Symbol: "GBP", Category: CategoryCurrency, Unit: "GBP/AUD", Name: "British pound"},
	"CNY":       {Symbol: "CNY", Category: CategoryCurrency, Unit: "CNY/AUD", Name: "Chinese yuan"},
	"SGD":       {Symbol: "SGD", Category: CategoryCurrency, Unit: "SGD/AUD", Name: "Singapore dollar"},
	"JPY":       {Symbol: "JPY", Category: CategoryCurrency, Unit: "JPY/AUD", Name: "Japanese yen"},
	"NZD":       {Symbol: "NZD", Category: CategoryCurrency, Unit: "NZD/AUD", Name: "New Zealand dollar"},
	"GOLD":      {Symbol: "GOLD", Category: CategoryCommodity, Unit: "AUD/ozt", Name: "Gold"},
	"SILVER":    {Symbol: "SILVER", Category: CategoryCommodity, Unit: "AUD/ozt", Name: "Silver"},
	"PLATINUM":  {Symbol: "PLATINUM", Category: CategoryCommodity, Unit: "AUD/ozt", Name: "Platinum"},
	"PALLADIUM": {Symbol: "PALLADIUM", Category: CategoryCommodity, Unit: "AUD/ozt", Name: "Palladium"},
	"COPPER":    {Symbol: "COPPER", Category: CategoryCommodity, Unit: "AUD/t", Name: "Copper"},
	"ALUMINIUM": {Symbol: "ALUMINIUM", Category: CategoryCommodity, Unit: "AUD/t", Name: "Aluminium"},
	"NICKEL":    {Symbol: "NICKEL", Category: CategoryCommodity, Unit: "AUD/t", Name: "Nickel"},
	"BTC":       {Symbol: "BTC", Category: CategoryCrypto, Unit: "AUD", Name: "Bitcoin"},
	"ETH":       {Symbol: "ETH", Category: CategoryCrypto, Unit: "AUD", Name: "Ether"},
	"SOL":       {Symbol: "SOL", Category: CategoryCrypto, Unit: "AUD", Name: "Solana"},
}

// ErrUnknownSymbol wraps the rejected input for error messages.
type ErrUnknownSymbol struct {
	Input string
}

func (e *ErrUnknownSymbol) Error() string {
	return fmt.Sprintf("unknown asset symbol %q", e.Input)
}

// Parse validates a raw symbol string against the registry. Matching is
// case-insensitive; the canonical upper-case form is returned.
func Parse(raw string) (Symbol, error) {
	sym := Symbol(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := registry[sym]; !ok {
		return "", &ErrUnknownSymbol{Input: raw}
	}
	return sym, nil
}

// Lookup returns the registry entry for a symbol.
func Lookup(sym Symbol) (Info, bool) {
	info, ok := registry[sym]
	return info, ok
}

// All returns every registered asset ordered lexicographically by symbol.
func All() []Info {
	infos := make([]Info, 0, len(registry))
	for _, info := range registry {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Symbol < infos[j].Symbol })
	return infos
}

// Symbols returns every registered symbol in lexicographic order.
func Symbols() []Symbol {
	syms := make([]Symbol, 0, len(registry))
	for sym := range registry {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	return syms
}

// ByCategory returns the symbols of one category in lexicographic order.
func ByCategory(cat Category) []Symbol {
	var syms []Symbol
	for sym, info := range registry {
		if info.Category == cat {
			syms = append(syms, sym)
		}
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	return syms
}

// SortSymbols orders and de-duplicates a symbol list in place-ish, returning
// the cleaned slice. Exporters rely on this for stable column order.
func SortSymbols(syms []Symbol) []Symbol {
	seen := make(map[Symbol]struct{}, len(syms))
	out := make([]Symbol, 0, len(syms))
	for _, sym := range syms {
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
