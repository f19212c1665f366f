package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/mkarpov/tipstream/internal/model"
)

func intp(n int) *int { return &n }

func timep(t time.Time) *time.Time { return &t }

func post(author, text string, partNum, totalParts *int, published *time.Time) model.NormalizedPost {
	return model.NormalizedPost{
		RawPost:     model.RawPost{Author: author, Published: published},
		Text:        text,
		Fingerprint: Fingerprint(text),
		PartNum:     partNum,
		TotalParts:  totalParts,
	}
}

func TestMerger_MergesCompleteSequence(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	posts := []model.NormalizedPost{
		post("joe", "second half: trimming AAPL into strength", intp(2), nil, timep(t0.Add(time.Hour))),
		post("joe", "first half: why I am long NVDA going into earnings", intp(1), intp(2), timep(t0)),
	}

	merged := NewMerger(24 * time.Hour).Merge(posts)

	if len(merged) != 1 {
		t.Fatalf("expected 1 merged post, got %d", len(merged))
	}
	text := merged[0].Text
	if !strings.Contains(text, "long NVDA") || !strings.Contains(text, "trimming AAPL") {
		t.Errorf("merged text missing parts: %q", text)
	}
	if strings.Index(text, "long NVDA") > strings.Index(text, "trimming AAPL") {
		t.Errorf("parts out of index order: %q", text)
	}
	if merged[0].Fingerprint != Fingerprint(text) {
		t.Error("fingerprint not recomputed over merged text")
	}
	if merged[0].PartNum != nil || merged[0].TotalParts != nil {
		t.Error("merged post should carry no part markers")
	}
}

func TestMerger_IncompleteSequenceStaysStandalone(t *testing.T) {
	posts := []model.NormalizedPost{
		post("joe", "first half: why I am long NVDA going into earnings", intp(1), intp(2), nil),
	}

	merged := NewMerger(0).Merge(posts)

	if len(merged) != 1 {
		t.Fatalf("expected 1 standalone post, got %d", len(merged))
	}
	if merged[0].Text != posts[0].Text {
		t.Errorf("standalone post text changed: %q", merged[0].Text)
	}
}

func TestMerger_TimeWindowBlocksMerge(t *testing.T) {
	// Same author reusing a "1/2" caption three days apart: not one thread.
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	posts := []model.NormalizedPost{
		post("joe", "weekly recap 1 of 2: portfolio held up well", intp(1), intp(2), timep(t0)),
		post("joe", "unrelated continuation about biotech names I like", intp(2), nil, timep(t0.Add(72*time.Hour))),
	}

	merged := NewMerger(24 * time.Hour).Merge(posts)

	if len(merged) != 2 {
		t.Fatalf("expected 2 standalone posts, got %d", len(merged))
	}
}

func TestMerger_ExactHashDedup(t *testing.T) {
	text := "identical canonical content about MU and storage demand"
	posts := []model.NormalizedPost{
		post("joe", text, nil, nil, nil),
		post("joe", text, nil, nil, nil),
	}

	merged := NewMerger(0).Merge(posts)

	if len(merged) != 1 {
		t.Fatalf("expected duplicate dropped, got %d posts", len(merged))
	}
}

func TestMerger_ContainmentDedup(t *testing.T) {
	original := "my core thesis on TSM remains intact after the capex update"
	quote := "great point here: " + original + " -- agreed completely"
	posts := []model.NormalizedPost{
		post("joe", original, nil, nil, nil),
		post("jane", quote, nil, nil, nil),
	}

	merged := NewMerger(0).Merge(posts)

	if len(merged) != 1 {
		t.Fatalf("expected quote-post dropped, got %d posts", len(merged))
	}
	if merged[0].Text != original {
		t.Errorf("expected original kept, got %q", merged[0].Text)
	}
}

func TestMerger_NewestFirstMissingTimestampsLast(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	posts := []model.NormalizedPost{
		post("joe", "post without any timestamp attached to it", nil, nil, nil),
		post("joe", "older post from the start of the month here", nil, nil, timep(t0)),
		post("joe", "newest post from later in the month right here", nil, nil, timep(t0.Add(48*time.Hour))),
	}

	merged := NewMerger(0).Merge(posts)

	if len(merged) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(merged))
	}
	if !strings.HasPrefix(merged[0].Text, "newest") {
		t.Errorf("expected newest first, got %q", merged[0].Text)
	}
	if !strings.HasPrefix(merged[2].Text, "post without") {
		t.Errorf("expected timestampless post last, got %q", merged[2].Text)
	}
}
