package asset

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAcceptsKnownSymbols(t *testing.T) {
	for _, raw := range []string{"USD", "usd", " Gold ", "btc"} {
		sym, err := Parse(raw)
		require.NoError(t, err, "parse %q", raw)

		info, ok := Lookup(sym)
		require.True(t, ok)
		assert.Equal(t, sym, info.Symbol)
	}
}

func TestParseRejectsUnknownSymbols(t *testing.T) {
	for _, raw := range []string{"", "AUD", "DOGE", "US", "TWI"} {
		_, err := Parse(raw)
		require.Error(t, err, "parse %q", raw)

		var unknown *ErrUnknownSymbol
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, raw, unknown.Input)
	}
}

func TestRegistryCoversTrackedAssets(t *testing.T) {
	cases := []struct {
		sym      Symbol
		category Category
		unit     string
	}{
		{"USD", CategoryCurrency, "USD/AUD"},
		{"EUR", CategoryCurrency, "EUR/AUD"},
		{"GBP", CategoryCurrency, "GBP/AUD"},
		{"CNY", CategoryCurrency, "CNY/AUD"},
		{"SGD", CategoryCurrency, "SGD/AUD"},
		{"JPY", CategoryCurrency, "JPY/AUD"},
		{"NZD", CategoryCurrency, "NZD/AUD"},
		{"GOLD", CategoryCommodity, "AUD/ozt"},
		{"SILVER", CategoryCommodity, "AUD/ozt"},
		{"PLATINUM", CategoryCommodity, "AUD/ozt"},
		{"PALLADIUM", CategoryCommodity, "AUD/ozt"},
		{"COPPER", CategoryCommodity, "AUD/t"},
		{"ALUMINIUM", CategoryCommodity, "AUD/t"},
		{"NICKEL", CategoryCommodity, "AUD/t"},
		{"BTC", CategoryCrypto, "AUD"},
		{"ETH", CategoryCrypto, "AUD"},
		{"SOL", CategoryCrypto, "AUD"},
	}
	assert.Len(t, All(), len(cases), "registry holds exactly the tracked set")

	for _, tc := range cases {
		info, ok := Lookup(tc.sym)
		require.True(t, ok, "missing %s", tc.sym)
		assert.Equal(t, tc.category, info.Category, "%s", tc.sym)
		assert.Equal(t, tc.unit, info.Unit, "%s", tc.sym)
	}
}

func TestSymbolsAreLexicographic(t *testing.T) {
	syms := Symbols()
	require.NotEmpty(t, syms)
	assert.True(t, sort.SliceIsSorted(syms, func(i, j int) bool { return syms[i] < syms[j] }))
}

func TestByCategory(t *testing.T) {
	currencies := ByCategory(CategoryCurrency)
	assert.Contains(t, currencies, Symbol("USD"))
	assert.NotContains(t, currencies, Symbol("GOLD"))

	for _, sym := range currencies {
		info, _ := Lookup(sym)
		assert.Equal(t, CategoryCurrency, info.Category)
	}
}

func TestSortSymbolsDeduplicatesAndOrders(t *testing.T) {
	got := SortSymbols([]Symbol{"USD", "BTC", "USD", "EUR"})
	assert.Equal(t, []Symbol{"BTC", "EUR", "USD"}, got)
}
