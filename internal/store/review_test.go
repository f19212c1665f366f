package store

import (
	"errors"
	"testing"
	"time"

	"github.com/mkarpov/tipstream/internal/model"
)

func stageReview(t *testing.T, s *Store, symbol string) string {
	t.Helper()
	id, err := s.CreateReview(PendingReview{
		InfluencerID:       "inf-1",
		Source:             "AUTO_SUBSTACK",
		SuggestedSymbol:    symbol,
		SuggestedSignal:    model.SignalBuy,
		SuggestedTimeframe: model.TimeframeMid,
		Confidence:         0.8,
	})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	return id
}

func TestCloseReview_Transitions(t *testing.T) {
	s := testStore(t)
	id := stageReview(t, s, "NVDA")

	now := time.Now()
	if err := s.CloseReview(id, model.ReviewApproved, now); err != nil {
		t.Fatalf("approve: %v", err)
	}

	r, err := s.GetReview(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r.Status != model.ReviewApproved {
		t.Errorf("expected APPROVED, got %s", r.Status)
	}
	if r.ReviewedAt == nil {
		t.Error("expected reviewed_at set")
	}

	// Terminal states cannot transition again.
	if err := s.CloseReview(id, model.ReviewRejected, now); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on re-close, got %v", err)
	}
}

func TestCloseReview_AbsentReview(t *testing.T) {
	s := testStore(t)
	if err := s.CloseReview("nope", model.ReviewApproved, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteReview_AnyStatus(t *testing.T) {
	s := testStore(t)

	pending := stageReview(t, s, "NVDA")
	rejected := stageReview(t, s, "TSLA")
	if err := s.CloseReview(rejected, model.ReviewRejected, time.Now()); err != nil {
		t.Fatalf("reject: %v", err)
	}

	for _, id := range []string{pending, rejected} {
		if err := s.DeleteReview(id); err != nil {
			t.Fatalf("delete %s: %v", id, err)
		}
		if _, err := s.GetReview(id); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected review %s gone, got %v", id, err)
		}
	}
}

func TestPendingReviews_OldestFirst(t *testing.T) {
	s := testStore(t)
	first := stageReview(t, s, "NVDA")
	time.Sleep(5 * time.Millisecond)
	second := stageReview(t, s, "TSLA")

	reviews, err := s.PendingReviews()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(reviews))
	}
	if reviews[0].ID != first || reviews[1].ID != second {
		t.Error("expected oldest-first ordering")
	}
}
