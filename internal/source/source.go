// Package source fetches raw posts for tracked authors. Sources tolerate
// zero results: an empty feed returns an empty slice, not an error.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkarpov/tipstream/internal/model"
)

// ContentSource returns raw post records for an author handle or URL.
// Authentication state, when a platform needs any, is the source's own
// concern and opaque to the pipeline.
type ContentSource interface {
	// Platform returns the platform tag stamped on fetched posts.
	Platform() string

	FetchPosts(ctx context.Context, handleOrURL string, limit int) ([]model.RawPost, error)
}

// ForPlatform returns the content source for a platform tag.
func ForPlatform(platform string, cfg model.SourceConfig) (ContentSource, error) {
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "substack", "rss":
		return NewSubstackSource(cfg), nil

	case "threads", "thread":
		// Threads requires authenticated browser automation, which lives
		// outside this binary. Tracked via an external fetcher feeding the
		// same pipeline.
		return nil, fmt.Errorf("platform %q has no built-in fetcher", platform)

	default:
		return nil, fmt.Errorf("unknown platform: %s (supported: substack)", platform)
	}
}
