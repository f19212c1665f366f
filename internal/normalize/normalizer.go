// Package normalize turns raw scraped post text into canonical text with a
// stable content fingerprint, and detects multi-part post markers.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"github.com/mkarpov/tipstream/internal/model"
)

// MinContentLength is the shortest canonical text still treated as content.
// Anything shorter is presentation residue, not a post.
const MinContentLength = 10

var (
	// Multi-part markers, tried in order; first match wins.
	rePartBoth     = regexp.MustCompile(`(?i)\b(\d+)\s*(?:/|of)\s*(\d+)\b`)
	rePartOnly     = regexp.MustCompile(`(?i)\b(?:part|day)\s+(\d+)\b`)
	rePartTrailing = regexp.MustCompile(`\(\s*(\d+)\s*\)\s*$`)

	// UI chrome and engagement tokens. Renderers interleave these with the
	// post body, so they are stripped anywhere in the string, not just at
	// the edges.
	reAudioMuted = regexp.MustCompile(`(?i)Audio is muted\s*`)
	reTranslate  = regexp.MustCompile(`(?i)Translate\s*`)
	reEngagement = regexp.MustCompile(`(?i)(?:Like|Reply|Repost|Share|Comment)\s*\d*`)
	reTimeBlock  = regexp.MustCompile(`(?i)\d{1,3}[hdwm]\s*(?:Edited\s*)?(?:More\s*)?`)
	reEdited     = regexp.MustCompile(`(?i)Edited\s*(?:More\s*)?`)
	reLeadingMore = regexp.MustCompile(`(?i)^More\s*`)
	reVerified   = regexp.MustCompile(`(?i)Verified\s*`)
	reFollow     = regexp.MustCompile(`(?i)Follow\s*`)

	// Marker removal variants without captures.
	reStripBoth     = regexp.MustCompile(`(?i)\b\d+\s*(?:/|of)\s*\d+\b`)
	reStripPart     = regexp.MustCompile(`(?i)\b(?:part|day)\s+\d+\b`)
	reStripTrailing = regexp.MustCompile(`\(\s*\d+\s*\)\s*$`)
)

// Normalizer canonicalizes post text for one author handle.
type Normalizer struct{}

// New creates a Normalizer.
func New() *Normalizer {
	return &Normalizer{}
}

// Normalize canonicalizes a raw post and computes its fingerprint.
// It returns ok=false when the canonical text is too short to be content.
func (n *Normalizer) Normalize(raw model.RawPost) (model.NormalizedPost, bool) {
	text, partNum, totalParts := Canonicalize(raw.Text, raw.Author)
	if len([]rune(text)) < MinContentLength {
		return model.NormalizedPost{}, false
	}

	return model.NormalizedPost{
		RawPost:     raw,
		Text:        text,
		Fingerprint: Fingerprint(text),
		PartNum:     partNum,
		TotalParts:  totalParts,
	}, true
}

// Canonicalize strips presentation noise from raw post text and captures
// multi-part markers. Marker detection runs before stripping so markers
// buried among engagement tokens are still caught.
func Canonicalize(text, author string) (canonical string, partNum, totalParts *int) {
	// Clear the tokens that renderers append directly after trailing
	// markers, so a "(3)" at the logical end of the post is still trailing.
	text = reAudioMuted.ReplaceAllString(text, "")
	text = reTranslate.ReplaceAllString(text, "")

	partNum, totalParts = detectParts(text)

	// Author handle and "Follow" affordance prefix.
	if author != "" {
		reAuthor := regexp.MustCompile(`(?i)(Follow\s*)?` + regexp.QuoteMeta(author) + `\s*`)
		text = reAuthor.ReplaceAllString(text, "")
	}

	text = reEngagement.ReplaceAllString(text, "")
	text = reTimeBlock.ReplaceAllString(text, "")
	text = reEdited.ReplaceAllString(text, "")
	text = reLeadingMore.ReplaceAllString(text, "")
	text = reVerified.ReplaceAllString(text, "")
	text = reFollow.ReplaceAllString(text, "")

	text = reStripBoth.ReplaceAllString(text, "")
	text = reStripPart.ReplaceAllString(text, "")
	text = reStripTrailing.ReplaceAllString(text, "")

	return strings.Join(strings.Fields(text), " "), partNum, totalParts
}

// detectParts tries the multi-part patterns in fixed order: "N / M" or
// "N of M" (captures both), then "part N" / "day N", then a trailing "(N)".
func detectParts(text string) (partNum, totalParts *int) {
	if m := rePartBoth.FindStringSubmatch(text); m != nil {
		n, err1 := strconv.Atoi(m[1])
		t, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil {
			return &n, &t
		}
	}
	if m := rePartOnly.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return &n, nil
		}
	}
	if m := rePartTrailing.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return &n, nil
		}
	}
	return nil, nil
}

// Fingerprint hashes canonical text into a stable content identity key.
// Two posts are the same content iff their fingerprints are equal.
func Fingerprint(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Truncate bounds text to max runes for storage.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
