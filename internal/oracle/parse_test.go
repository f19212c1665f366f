package oracle

import (
	"testing"

	"github.com/mkarpov/tipstream/internal/model"
)

func TestSanitizeJSON_Fences(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"is_relevant\": true}\n```\nDone."
	got := sanitizeJSON(raw)
	if got != `{"is_relevant": true}` {
		t.Errorf("expected fenced JSON extracted, got %q", got)
	}
}

func TestSanitizeJSON_ThinkBlock(t *testing.T) {
	raw := "<think>the post mentions NVDA so it is relevant</think>\n{\"is_relevant\": true}"
	got := sanitizeJSON(raw)
	if got != `{"is_relevant": true}` {
		t.Errorf("expected reasoning stripped, got %q", got)
	}
}

func TestParseClassification_UnknownPostType(t *testing.T) {
	c, err := parseClassification(`{"is_relevant": true, "post_type": "meme_stocks", "reason": "x"}`)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.PostType != PostTypeOther {
		t.Errorf("expected unknown post type coerced to %q, got %q", PostTypeOther, c.PostType)
	}
	if !c.IsRelevant {
		t.Error("expected is_relevant preserved")
	}
}

func TestParseClassification_Malformed(t *testing.T) {
	if _, err := parseClassification("the model rambled instead of emitting JSON"); err == nil {
		t.Error("expected error for non-JSON output")
	}
}

func TestParseExtraction_SignalNormalization(t *testing.T) {
	raw := `{
		"assets": [
			{"symbol": "NVDA", "signal": "HOLD"},
			{"symbol": "TSLA", "signal": "accumulate"},
			{"symbol": "QQQ", "signal": "HEDGE", "note": "spread put"},
			{"symbol": "None", "signal": "BUY"},
			{"symbol": "N/A", "signal": "BUY"},
			{"symbol": "", "signal": "BUY"},
			{"symbol": "null", "signal": "BUY"}
		],
		"confidence": 0.8
	}`

	e, err := parseExtraction(raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(e.Assets) != 3 {
		t.Fatalf("expected placeholder symbols dropped, got %d assets", len(e.Assets))
	}
	if e.Assets[0].Signal != model.SignalWatch {
		t.Errorf("expected legacy HOLD remapped to WATCH, got %s", e.Assets[0].Signal)
	}
	if e.Assets[1].Signal != model.SignalBuy {
		t.Errorf("expected unrecognized signal defaulted to BUY, got %s", e.Assets[1].Signal)
	}
	if e.Assets[2].Signal != model.SignalHedge {
		t.Errorf("expected HEDGE preserved, got %s", e.Assets[2].Signal)
	}
	if e.Assets[0].Market != "US" {
		t.Errorf("expected default market US, got %q", e.Assets[0].Market)
	}
}

func TestParseExtraction_Defaults(t *testing.T) {
	e, err := parseExtraction(`{"assets": []}`)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if e.Confidence != 0.5 {
		t.Errorf("expected default confidence 0.5, got %v", e.Confidence)
	}
	if e.OverallSentiment != "Neutral" {
		t.Errorf("expected default sentiment Neutral, got %q", e.OverallSentiment)
	}
}
