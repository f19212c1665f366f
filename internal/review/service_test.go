package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkarpov/tipstream/internal/market"
	"github.com/mkarpov/tipstream/internal/model"
	"github.com/mkarpov/tipstream/internal/store"
)

type fakeMarket struct {
	closes []market.Close
	quote  *market.Quote
}

func (m *fakeMarket) HistoricalCloses(ctx context.Context, symbol string, start, end time.Time) ([]market.Close, error) {
	return m.closes, nil
}

func (m *fakeMarket) LiveQuote(ctx context.Context, symbol string) (*market.Quote, error) {
	return m.quote, nil
}

var testNow = time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, mkt market.Provider) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:", zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	svc := NewService(st, mkt, zerolog.Nop())
	svc.now = func() time.Time { return testNow }
	return svc, st
}

func stage(t *testing.T, st *store.Store, r store.PendingReview) string {
	t.Helper()
	if r.SuggestedSymbol == "" {
		r.SuggestedSymbol = "NVDA"
	}
	id, err := st.CreateReview(r)
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	return id
}

func TestApprove_ExpiryPerTimeframe(t *testing.T) {
	tests := []struct {
		timeframe model.Timeframe
		days      int
	}{
		{model.TimeframeShort, 7},
		{model.TimeframeMid, 28},
		{model.TimeframeLong, 90},
	}

	for _, tt := range tests {
		svc, st := newService(t, &fakeMarket{})
		id := stage(t, st, store.PendingReview{
			InfluencerID:       "inf-1",
			SuggestedTimeframe: tt.timeframe,
			PostDate:           "2026-03-18",
		})

		recID, err := svc.Approve(context.Background(), id, Overrides{})
		if err != nil {
			t.Fatalf("%s: approve: %v", tt.timeframe, err)
		}

		rec, err := st.GetRecommendation(recID)
		if err != nil {
			t.Fatalf("%s: get recommendation: %v", tt.timeframe, err)
		}
		wantExpiry := rec.RecommendationDate.AddDate(0, 0, tt.days)
		if !rec.ExpiryDate.Equal(wantExpiry) {
			t.Errorf("%s: expected expiry %v, got %v", tt.timeframe, wantExpiry, rec.ExpiryDate)
		}
	}
}

func TestApprove_OverridesBeatSuggestions(t *testing.T) {
	svc, st := newService(t, &fakeMarket{})
	entry := 123.45
	id := stage(t, st, store.PendingReview{
		InfluencerID:    "inf-1",
		SuggestedSymbol: "NVDA",
		SuggestedSignal: model.SignalWatch,
	})

	recID, err := svc.Approve(context.Background(), id, Overrides{
		Symbol:     "TSM",
		Signal:     model.SignalSell,
		Timeframe:  model.TimeframeLong,
		EntryPrice: &entry,
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	rec, err := st.GetRecommendation(recID)
	if err != nil {
		t.Fatalf("get recommendation: %v", err)
	}
	if rec.Symbol != "TSM" || rec.Signal != model.SignalSell || rec.Timeframe != model.TimeframeLong {
		t.Errorf("overrides not applied: %+v", rec)
	}
	if rec.EntryPrice == nil || *rec.EntryPrice != entry {
		t.Errorf("expected explicit entry price kept, got %v", rec.EntryPrice)
	}
}

func TestApprove_DefaultsWhenNothingSuggested(t *testing.T) {
	svc, st := newService(t, &fakeMarket{})
	id := stage(t, st, store.PendingReview{InfluencerID: "inf-1"})

	recID, err := svc.Approve(context.Background(), id, Overrides{})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	rec, err := st.GetRecommendation(recID)
	if err != nil {
		t.Fatalf("get recommendation: %v", err)
	}
	if rec.Signal != model.SignalBuy {
		t.Errorf("expected default signal BUY, got %s", rec.Signal)
	}
	if rec.Timeframe != model.TimeframeMid {
		t.Errorf("expected default timeframe MID, got %s", rec.Timeframe)
	}
	if rec.Status != model.RecommendationActive {
		t.Errorf("expected ACTIVE recommendation, got %s", rec.Status)
	}
}

func TestApprove_NotPendingReturnsNotFound(t *testing.T) {
	svc, st := newService(t, &fakeMarket{})
	id := stage(t, st, store.PendingReview{InfluencerID: "inf-1"})

	if err := svc.Reject(id); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := svc.Approve(context.Background(), id, Overrides{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on rejected review, got %v", err)
	}
	if _, err := svc.Approve(context.Background(), "missing", Overrides{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on absent review, got %v", err)
	}
}

func TestApprove_RepeatApprovalCreatesNoSecondRecommendation(t *testing.T) {
	svc, st := newService(t, &fakeMarket{})
	id := stage(t, st, store.PendingReview{InfluencerID: "inf-1"})

	if _, err := svc.Approve(context.Background(), id, Overrides{}); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	if _, err := svc.Approve(context.Background(), id, Overrides{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat approval, got %v", err)
	}

	recs, err := st.ListRecommendations("inf-1")
	if err != nil {
		t.Fatalf("list recommendations: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("expected exactly 1 recommendation, got %d", len(recs))
	}
}

func TestResolveEntryPrice_NearestClose(t *testing.T) {
	target := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC) // Saturday
	svc, _ := newService(t, &fakeMarket{closes: []market.Close{
		{Date: target.AddDate(0, 0, -3), Close: 95},
		{Date: target.AddDate(0, 0, -1), Close: 100}, // Friday, nearest
		{Date: target.AddDate(0, 0, 2), Close: 105},
	}})

	price := svc.ResolveEntryPrice(context.Background(), "NVDA", target)
	if price == nil || *price != 100 {
		t.Errorf("expected nearest close 100, got %v", price)
	}
}

func TestResolveEntryPrice_TiePrefersEarlierDate(t *testing.T) {
	target := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	svc, _ := newService(t, &fakeMarket{closes: []market.Close{
		{Date: target.AddDate(0, 0, 1), Close: 105},
		{Date: target.AddDate(0, 0, -1), Close: 100},
	}})

	price := svc.ResolveEntryPrice(context.Background(), "NVDA", target)
	if price == nil || *price != 100 {
		t.Errorf("expected earlier close 100 on tie, got %v", price)
	}
}

func TestResolveEntryPrice_LiveFallbackOnlyForRecentDates(t *testing.T) {
	quote := &market.Quote{Symbol: "NVDA", Price: 150}

	// Target 10 days back: no close, no live fallback, price stays unset.
	svc, _ := newService(t, &fakeMarket{quote: quote})
	old := testNow.AddDate(0, 0, -10)
	if price := svc.ResolveEntryPrice(context.Background(), "NVDA", old); price != nil {
		t.Errorf("expected unset price for stale target date, got %v", *price)
	}

	// Target 2 days back: live quote stands in.
	recent := testNow.AddDate(0, 0, -2)
	if price := svc.ResolveEntryPrice(context.Background(), "NVDA", recent); price == nil || *price != 150 {
		t.Errorf("expected live quote 150 for recent target, got %v", price)
	}
}

func TestResolveEntryPrice_LiveFallbackDayThreeBoundary(t *testing.T) {
	quote := &market.Quote{Symbol: "NVDA", Price: 150}
	svc, _ := newService(t, &fakeMarket{quote: quote})

	// Post dated exactly 3 calendar days before the clock (which sits at
	// midday): still inside the window.
	boundary := time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)
	if price := svc.ResolveEntryPrice(context.Background(), "NVDA", boundary); price == nil || *price != 150 {
		t.Errorf("expected live quote on the day-3 boundary, got %v", price)
	}

	// Day 4 is out.
	beyond := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	if price := svc.ResolveEntryPrice(context.Background(), "NVDA", beyond); price != nil {
		t.Errorf("expected unset price past the window, got %v", *price)
	}
}

func TestAutoApprove_ThresholdFilter(t *testing.T) {
	svc, st := newService(t, &fakeMarket{})
	stage(t, st, store.PendingReview{InfluencerID: "inf-1", SuggestedSymbol: "NVDA", Confidence: 0.9})
	stage(t, st, store.PendingReview{InfluencerID: "inf-1", SuggestedSymbol: "TSLA", Confidence: 0.4})

	result, err := svc.AutoApprove(context.Background(), 0.8)
	if err != nil {
		t.Fatalf("auto-approve: %v", err)
	}
	if result.ApprovedCount != 1 {
		t.Errorf("expected 1 approval, got %d", result.ApprovedCount)
	}
	if result.RemainingPending != 1 {
		t.Errorf("expected 1 remaining pending, got %d", result.RemainingPending)
	}
}

func TestApproveAll(t *testing.T) {
	svc, st := newService(t, &fakeMarket{})
	stage(t, st, store.PendingReview{InfluencerID: "inf-1", SuggestedSymbol: "NVDA", Confidence: 0.9})
	stage(t, st, store.PendingReview{InfluencerID: "inf-1", SuggestedSymbol: "TSLA", Confidence: 0.1})

	result, err := svc.ApproveAll(context.Background())
	if err != nil {
		t.Fatalf("approve-all: %v", err)
	}
	if result.ApprovedCount != 2 {
		t.Errorf("expected 2 approvals, got %d", result.ApprovedCount)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
	if result.RemainingPending != 0 {
		t.Errorf("expected no remaining pending, got %d", result.RemainingPending)
	}
}
