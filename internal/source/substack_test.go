package source

import (
	"testing"

	"github.com/mkarpov/tipstream/internal/model"
)

func TestFeedURL(t *testing.T) {
	tests := map[string]string{
		"https://example.substack.com":       "https://example.substack.com/feed",
		"https://example.substack.com/":      "https://example.substack.com/feed",
		"https://example.substack.com/feed":  "https://example.substack.com/feed",
		"https://example.substack.com/feed/": "https://example.substack.com/feed",
	}
	for in, want := range tests {
		if got := FeedURL(in); got != want {
			t.Errorf("FeedURL(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestStripHTML(t *testing.T) {
	fragment := `<p>Holding <b>NVDA</b> through earnings.</p><script>var x = 1;</script><p>Trimmed AAPL.</p>`
	want := "Holding NVDA through earnings. Trimmed AAPL."
	if got := stripHTML(fragment); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestForPlatform(t *testing.T) {
	cfg := model.DefaultConfig().Source

	if _, err := ForPlatform("substack", cfg); err != nil {
		t.Errorf("expected substack source, got error: %v", err)
	}
	if _, err := ForPlatform("threads", cfg); err == nil {
		t.Error("expected error for platform without a built-in fetcher")
	}
	if _, err := ForPlatform("myspace", cfg); err == nil {
		t.Error("expected error for unknown platform")
	}
}
