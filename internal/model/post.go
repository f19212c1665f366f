package model

import "time"

// RawPost is a single post as returned by a content source, before any
// normalization. It is ephemeral and never stored directly.
type RawPost struct {
	Source    string     `json:"source"`               // Platform tag (e.g., "Substack", "Threads")
	Author    string     `json:"author"`               // Author handle the post is attributed to
	Text      string     `json:"text"`                 // Raw post text, UI chrome included
	URL       string     `json:"url"`                  // Best-effort individual post URL
	Date      string     `json:"date,omitempty"`       // Reported date (YYYY-MM-DD), may be empty
	Published *time.Time `json:"published,omitempty"`  // Precise timestamp when the platform exposes one
}

// NormalizedPost is a RawPost whose text has been canonicalized and hashed.
// Two renders of the same logical post at different times carry identical
// fingerprints.
type NormalizedPost struct {
	RawPost

	Text        string `json:"text"`        // Canonical text (shadowing the raw text)
	Fingerprint string `json:"fingerprint"` // Stable hash of the canonical text

	// Multi-part marker captures. PartNum is nil for single posts;
	// TotalParts is nil when the marker declared no total ("part 3").
	PartNum    *int `json:"part_num,omitempty"`
	TotalParts *int `json:"total_parts,omitempty"`
}

// BestTime returns the most precise timestamp available for ordering.
// Posts without any timestamp return ok=false and must sort last.
func (p *NormalizedPost) BestTime() (time.Time, bool) {
	if p.Published != nil {
		return *p.Published, true
	}
	if p.Date != "" {
		if t, err := time.Parse("2006-01-02", p.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
