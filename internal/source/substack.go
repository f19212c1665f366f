package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/mkarpov/tipstream/internal/model"
)

// SubstackSource fetches posts from a Substack publication's RSS feed.
type SubstackSource struct {
	parser  *gofeed.Parser
	robots  *robotsChecker
	limiter *hostLimiter
	cfg     model.SourceConfig
}

// NewSubstackSource creates a source from configuration.
func NewSubstackSource(cfg model.SourceConfig) *SubstackSource {
	parser := gofeed.NewParser()
	parser.UserAgent = cfg.UserAgent
	parser.Client = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy: proxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
		},
	}

	return &SubstackSource{
		parser:  parser,
		robots:  newRobotsChecker(cfg.UserAgent, cfg.Timeout),
		limiter: newHostLimiter(cfg.RequestsPerSecond, cfg.Burst),
		cfg:     cfg,
	}
}

// Platform returns the platform tag for fetched posts.
func (s *SubstackSource) Platform() string {
	return "Substack"
}

// FetchPosts returns up to limit posts from the publication feed. A feed
// with no entries yields an empty slice.
func (s *SubstackSource) FetchPosts(ctx context.Context, handleOrURL string, limit int) ([]model.RawPost, error) {
	feedURL := FeedURL(handleOrURL)

	if s.cfg.RespectRobots && !s.robots.allowed(ctx, feedURL) {
		return nil, fmt.Errorf("robots.txt disallows %s", feedURL)
	}
	if err := s.limiter.wait(ctx, feedURL); err != nil {
		return nil, err
	}

	feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	author := feed.Title
	if author == "" {
		author = handleOrURL
	}

	var posts []model.RawPost
	for _, item := range feed.Items {
		if limit > 0 && len(posts) >= limit {
			break
		}

		text := item.Description
		if text == "" {
			text = item.Content
		}

		post := model.RawPost{
			Source: s.Platform(),
			Author: author,
			Text:   stripHTML(text),
			URL:    item.Link,
		}
		if post.URL == "" {
			post.URL = feedURL
		}
		if item.PublishedParsed != nil {
			t := *item.PublishedParsed
			post.Published = &t
			post.Date = t.Format("2006-01-02")
		}

		posts = append(posts, post)
	}

	return posts, nil
}

// FeedURL canonicalizes a publication URL to its RSS feed endpoint.
func FeedURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if strings.HasSuffix(u, "/feed") {
		return u
	}
	return u + "/feed"
}
