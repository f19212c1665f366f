// Package review implements the pending-review lifecycle: approval into
// recommendations with price backfill, rejection, deletion, and the batch
// approval paths.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkarpov/tipstream/internal/market"
	"github.com/mkarpov/tipstream/internal/model"
	"github.com/mkarpov/tipstream/internal/store"
)

// backfillWindow is how far around the target date historical closes are
// searched when resolving an entry price.
const backfillWindow = 5 * 24 * time.Hour

// liveQuoteMaxAge: a live quote only stands in for a missing historical
// close when the target date is at most this many calendar days back.
// Quoting today's price for an old recommendation would fabricate history.
const liveQuoteMaxAge = 3 * 24 * time.Hour

// ErrNotFound mirrors the store sentinel for callers of this package.
var ErrNotFound = store.ErrNotFound

// Overrides carries explicit reviewer choices that take precedence over the
// oracle's suggestions.
type Overrides struct {
	Symbol      string
	Signal      model.Signal
	Timeframe   model.Timeframe
	EntryPrice  *float64
	TargetPrice *float64
	StopLoss    *float64
	Note        string
}

// Service drives review transitions.
type Service struct {
	store  *store.Store
	market market.Provider
	log    zerolog.Logger
	now    func() time.Time
}

// NewService creates a review service.
func NewService(st *store.Store, mkt market.Provider, log zerolog.Logger) *Service {
	return &Service{
		store:  st,
		market: mkt,
		log:    log,
		now:    time.Now,
	}
}

// Approve converts a PENDING review into an ACTIVE recommendation and
// returns the recommendation id. Absent or already-reviewed reviews return
// ErrNotFound with no side effects. Resolution order for symbol, signal and
// timeframe: explicit override, then the oracle suggestion, then the hard
// default (BUY / MID).
func (s *Service) Approve(ctx context.Context, reviewID string, ov Overrides) (string, error) {
	r, err := s.store.GetReview(reviewID)
	if err != nil {
		return "", err
	}
	if r.Status != model.ReviewPending {
		return "", ErrNotFound
	}

	symbol := ov.Symbol
	if symbol == "" {
		symbol = r.SuggestedSymbol
	}

	signal := ov.Signal
	if signal == "" {
		signal = r.SuggestedSignal
	}
	if signal == "" {
		signal = model.SignalBuy
	}

	timeframe := ov.Timeframe
	if timeframe == "" {
		timeframe = r.SuggestedTimeframe
	}
	if timeframe == "" {
		timeframe = model.TimeframeMid
	}

	now := s.now()
	recDate := now.UTC().Truncate(24 * time.Hour)
	if r.PostDate != "" {
		if d, err := time.Parse("2006-01-02", r.PostDate); err == nil {
			recDate = d
		}
	}

	entryPrice := ov.EntryPrice
	if entryPrice == nil {
		entryPrice = s.ResolveEntryPrice(ctx, symbol, recDate)
	}

	note := ov.Note
	if note == "" {
		note = r.OriginalText
	}

	// Close the review before creating the recommendation. The conditional
	// PENDING-only transition is what guarantees at most one recommendation
	// per review: a concurrent approval loses here with ErrNotFound instead
	// of minting a second recommendation.
	if err := s.store.CloseReview(reviewID, model.ReviewApproved, now); err != nil {
		return "", err
	}

	recID, err := s.store.CreateRecommendation(store.Recommendation{
		InfluencerID:       r.InfluencerID,
		Symbol:             symbol,
		Signal:             signal,
		Timeframe:          timeframe,
		RecommendationDate: recDate,
		EntryPrice:         entryPrice,
		TargetPrice:        ov.TargetPrice,
		StopLoss:           ov.StopLoss,
		ExpiryDate:         recDate.Add(timeframe.ExpiryOffset()),
		Source:             r.Source,
		SourceURL:          r.SourceURL,
		Note:               note,
		Status:             model.RecommendationActive,
	})
	if err != nil {
		return "", fmt.Errorf("review %s approved but recommendation not created: %w", reviewID, err)
	}

	s.log.Info().Str("review", reviewID).Str("symbol", symbol).
		Str("recommendation", recID).Msg("review approved")
	return recID, nil
}

// Reject marks a PENDING review rejected. No recommendation is created.
func (s *Service) Reject(reviewID string) error {
	return s.store.CloseReview(reviewID, model.ReviewRejected, s.now())
}

// Delete removes a review permanently regardless of status.
func (s *Service) Delete(reviewID string) error {
	return s.store.DeleteReview(reviewID)
}

// ResolveEntryPrice backfills an entry price for symbol at the target date.
// It takes the historical close nearest to the target inside a ±5 day
// window, preferring the earlier date on an equidistant tie. With no close
// found, a live quote stands in only when the target date is within the
// last 3 calendar days (inclusive); otherwise the price stays unset rather
// than guessed.
// This is the single backfill implementation for both single and batch
// approval.
func (s *Service) ResolveEntryPrice(ctx context.Context, symbol string, target time.Time) *float64 {
	closes, err := s.market.HistoricalCloses(ctx, symbol,
		target.Add(-backfillWindow), target.Add(backfillWindow))
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("historical close lookup failed")
	}

	var best *market.Close
	var bestDiff time.Duration
	for i := range closes {
		c := closes[i]
		diff := c.Date.Sub(target)
		if diff < 0 {
			diff = -diff
		}
		switch {
		case best == nil, diff < bestDiff:
			best = &closes[i]
			bestDiff = diff
		case diff == bestDiff && c.Date.Before(best.Date):
			best = &closes[i]
		}
	}
	if best != nil {
		price := best.Close
		return &price
	}

	// Calendar-day distance: target is a midnight date, so the wall clock
	// is truncated to midnight too before comparing. A post dated exactly
	// three days ago still qualifies whatever the current time of day.
	if s.now().UTC().Truncate(24*time.Hour).Sub(target) <= liveQuoteMaxAge {
		quote, err := s.market.LiveQuote(ctx, symbol)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("live quote lookup failed")
		} else if quote != nil {
			return &quote.Price
		}
	}

	return nil
}

// ApproveAll approves every PENDING review, oldest first. One review's
// failure is captured as a warning keyed by its suggested symbol and does
// not stop the rest.
func (s *Service) ApproveAll(ctx context.Context) (model.BatchApproveResult, error) {
	return s.approveBatch(ctx, -1)
}

// AutoApprove approves PENDING reviews with confidence at or above the
// threshold, oldest first, and reports how many remain pending.
func (s *Service) AutoApprove(ctx context.Context, threshold float64) (model.BatchApproveResult, error) {
	return s.approveBatch(ctx, threshold)
}

func (s *Service) approveBatch(ctx context.Context, threshold float64) (model.BatchApproveResult, error) {
	result := model.BatchApproveResult{Warnings: make(map[string]string)}

	pending, err := s.store.PendingReviews()
	if err != nil {
		return result, fmt.Errorf("list pending reviews: %w", err)
	}

	for _, r := range pending {
		if threshold >= 0 && r.Confidence < threshold {
			continue
		}

		if _, err := s.Approve(ctx, r.ID, Overrides{}); err != nil {
			// Concurrent reviewers may have closed it already; anything
			// else is a per-item warning.
			if !errors.Is(err, ErrNotFound) {
				result.Warnings[r.SuggestedSymbol] = err.Error()
			}
			continue
		}
		result.ApprovedCount++
	}

	remaining, err := s.store.CountPending()
	if err != nil {
		return result, fmt.Errorf("count pending reviews: %w", err)
	}
	result.RemainingPending = int(remaining)

	return result, nil
}
