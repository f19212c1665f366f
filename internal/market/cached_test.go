package market

import (
	"context"
	"testing"
	"time"
)

type countingProvider struct {
	histCalls  int
	quoteCalls int
	closes     []Close
	quote      *Quote
}

func (p *countingProvider) HistoricalCloses(ctx context.Context, symbol string, start, end time.Time) ([]Close, error) {
	p.histCalls++
	return p.closes, nil
}

func (p *countingProvider) LiveQuote(ctx context.Context, symbol string) (*Quote, error) {
	p.quoteCalls++
	return p.quote, nil
}

func TestNormalizeSymbol(t *testing.T) {
	tests := map[string]string{
		"nvda":  "NVDA",
		" BTC ": "BTC-USD",
		"vix":   "^VIX",
		"US10Y": "^TNX",
	}
	for in, want := range tests {
		if got := NormalizeSymbol(in); got != want {
			t.Errorf("NormalizeSymbol(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestCachedProvider_HistoricalHit(t *testing.T) {
	inner := &countingProvider{closes: []Close{{Date: time.Now().UTC(), Close: 101.5}}}
	cached := NewCachedProvider(inner, time.Minute, time.Minute)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 10)

	for i := 0; i < 3; i++ {
		closes, err := cached.HistoricalCloses(context.Background(), "NVDA", start, end)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(closes) != 1 {
			t.Fatalf("expected 1 close, got %d", len(closes))
		}
	}

	if inner.histCalls != 1 {
		t.Errorf("expected 1 upstream call, got %d", inner.histCalls)
	}
}

func TestCachedProvider_AbsentQuoteNotCached(t *testing.T) {
	inner := &countingProvider{quote: nil}
	cached := NewCachedProvider(inner, time.Minute, time.Minute)

	for i := 0; i < 2; i++ {
		q, err := cached.LiveQuote(context.Background(), "XXXX")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if q != nil {
			t.Fatalf("expected absent quote, got %+v", q)
		}
	}

	if inner.quoteCalls != 2 {
		t.Errorf("expected absence to bypass cache, got %d upstream calls", inner.quoteCalls)
	}
}
