package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// YahooProvider fetches daily closes and live quotes from the Yahoo Finance
// chart API.
type YahooProvider struct {
	httpClient *http.Client
	userAgent  string
}

// NewYahooProvider creates a provider with the given request timeout.
func NewYahooProvider(timeout time.Duration, userAgent string) *YahooProvider {
	return &YahooProvider{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// chartResponse mirrors the subset of the chart API payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				Symbol             string  `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// HistoricalCloses returns daily closes between start and end inclusive.
// Trading-day gaps (weekends, holidays) simply yield fewer entries.
func (p *YahooProvider) HistoricalCloses(ctx context.Context, symbol string, start, end time.Time) ([]Close, error) {
	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", start.Unix()))
	params.Set("period2", fmt.Sprintf("%d", end.Add(24*time.Hour).Unix()))
	params.Set("interval", "1d")

	resp, err := p.fetch(ctx, NormalizeSymbol(symbol), params)
	if err != nil {
		return nil, err
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}

	closes := result.Indicators.Quote[0].Close
	out := make([]Close, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		out = append(out, Close{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close: *closes[i],
		})
	}
	return out, nil
}

// LiveQuote returns the current regular-market price, or (nil, nil) when the
// API has no price for the symbol.
func (p *YahooProvider) LiveQuote(ctx context.Context, symbol string) (*Quote, error) {
	params := url.Values{}
	params.Set("range", "1d")
	params.Set("interval", "1d")

	normalized := NormalizeSymbol(symbol)
	resp, err := p.fetch(ctx, normalized, params)
	if err != nil {
		return nil, err
	}

	price := resp.Chart.Result[0].Meta.RegularMarketPrice
	if price == 0 {
		return nil, nil
	}
	return &Quote{Symbol: normalized, Price: price}, nil
}

func (p *YahooProvider) fetch(ctx context.Context, symbol string, params url.Values) (*chartResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		yahooChartURL+url.PathEscape(symbol)+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", symbol, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4_000_000))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode chart response: %w", err)
	}
	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s", symbol, parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart API returned no result for %s", symbol)
	}

	return &parsed, nil
}
