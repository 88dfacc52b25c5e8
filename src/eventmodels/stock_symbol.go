package eventmodels

import (
	"encoding/json"
	"strings"
)

type StockSymbol string

func (s StockSymbol) String() string {
	return strings.ToUpper(string(s))
}

func (s StockSymbol) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func NewStockSymbol(s string) StockSymbol {
	return StockSymbol(strings.ToUpper(strings.TrimSpace(s)))
}

// UniqueStockSymbols upper-cases symbols and drops blanks and duplicates, keeping first-seen order.
func UniqueStockSymbols(symbols []StockSymbol) []StockSymbol {
	seen := make(map[StockSymbol]struct{}, len(symbols))
	out := make([]StockSymbol, 0, len(symbols))
	for _, s := range symbols {
		sym := NewStockSymbol(string(s))
		if sym == "" {
			continue
		}

		if _, ok := seen[sym]; ok {
			continue
		}

		seen[sym] = struct{}{}
		out = append(out, sym)
	}

	return out
}
