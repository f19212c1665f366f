package market

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedProvider wraps a Provider with TTL caching so repeated approvals of
// reviews for the same symbol do not hammer the upstream API. Quotes expire
// quickly; historical closes are immutable and cached for much longer.
type CachedProvider struct {
	inner Provider
	cache *gocache.Cache

	quoteTTL      time.Duration
	historicalTTL time.Duration
}

// NewCachedProvider wraps inner with the given TTLs.
func NewCachedProvider(inner Provider, quoteTTL, historicalTTL time.Duration) *CachedProvider {
	if quoteTTL <= 0 {
		quoteTTL = 15 * time.Minute
	}
	if historicalTTL <= 0 {
		historicalTTL = 24 * time.Hour
	}
	return &CachedProvider{
		inner:         inner,
		cache:         gocache.New(quoteTTL, 10*time.Minute),
		quoteTTL:      quoteTTL,
		historicalTTL: historicalTTL,
	}
}

// HistoricalCloses returns cached closes when the exact window was fetched
// before. Errors are never cached.
func (p *CachedProvider) HistoricalCloses(ctx context.Context, symbol string, start, end time.Time) ([]Close, error) {
	key := fmt.Sprintf("hist:%s:%s:%s", NormalizeSymbol(symbol),
		start.Format("2006-01-02"), end.Format("2006-01-02"))

	if val, found := p.cache.Get(key); found {
		return val.([]Close), nil
	}

	closes, err := p.inner.HistoricalCloses(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, closes, p.historicalTTL)
	return closes, nil
}

// LiveQuote returns a cached quote when fresh. Absence (nil quote) is not
// cached: the symbol may start trading within the TTL.
func (p *CachedProvider) LiveQuote(ctx context.Context, symbol string) (*Quote, error) {
	key := "quote:" + NormalizeSymbol(symbol)

	if val, found := p.cache.Get(key); found {
		return val.(*Quote), nil
	}

	quote, err := p.inner.LiveQuote(ctx, symbol)
	if err != nil || quote == nil {
		return quote, err
	}
	p.cache.Set(key, quote, p.quoteTTL)
	return quote, nil
}
