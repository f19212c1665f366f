// Package market provides historical close and live quote lookups used for
// entry-price backfill when a recommendation is approved.
package market

import (
	"context"
	"strings"
	"time"
)

// Close is one daily close for a trading date.
type Close struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Quote is a live price snapshot.
type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// Provider looks up market data for a symbol. LiveQuote returns (nil, nil)
// when no quote is available; that is an absence, not a failure.
type Provider interface {
	HistoricalCloses(ctx context.Context, symbol string, start, end time.Time) ([]Close, error)
	LiveQuote(ctx context.Context, symbol string) (*Quote, error)
}

// symbolAliases maps common shorthand tickers to their Yahoo Finance symbols.
var symbolAliases = map[string]string{
	"US10Y": "^TNX",    // 10-year treasury yield
	"US2Y":  "^IRX",    // closest 2-year proxy
	"US30Y": "^TYX",    // 30-year treasury yield
	"VIX":   "^VIX",    // volatility index
	"DXY":   "DX-Y.NYB", // dollar index
	"GOLD":  "GC=F",    // gold futures
	"OIL":   "CL=F",    // crude futures
	"BTC":   "BTC-USD",
	"ETH":   "ETH-USD",
}

// NormalizeSymbol uppercases a symbol and applies the alias table.
func NormalizeSymbol(symbol string) string {
	upper := strings.ToUpper(strings.TrimSpace(symbol))
	if alias, ok := symbolAliases[upper]; ok {
		return alias
	}
	return upper
}
