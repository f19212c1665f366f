// Package pipeline orchestrates a tracking run: fetch posts, normalize and
// merge them, drop known fingerprints, consult the oracle, and stage one
// pending review per extracted asset.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mkarpov/tipstream/internal/model"
	"github.com/mkarpov/tipstream/internal/normalize"
	"github.com/mkarpov/tipstream/internal/oracle"
	"github.com/mkarpov/tipstream/internal/source"
	"github.com/mkarpov/tipstream/internal/store"
	"github.com/mkarpov/tipstream/internal/worker"
)

// DefaultFetchLimit bounds one fetch when the caller passes no limit.
const DefaultFetchLimit = 20

// Tracker runs the end-to-end pipeline for tracked influencers.
type Tracker struct {
	store      *store.Store
	oracle     oracle.Oracle
	normalizer *normalize.Normalizer
	merger     *normalize.Merger
	config     *model.Config
	log        zerolog.Logger

	// sourceFor resolves the content source for a platform. Overridable in
	// tests.
	sourceFor func(platform string) (source.ContentSource, error)
}

// NewTracker creates a tracker over the given store and oracle.
func NewTracker(st *store.Store, orc oracle.Oracle, cfg *model.Config, log zerolog.Logger) *Tracker {
	return &Tracker{
		store:      st,
		oracle:     orc,
		normalizer: normalize.New(),
		merger:     normalize.NewMerger(cfg.Merge.MaxPartGap),
		config:     cfg,
		log:        log,
		sourceFor: func(platform string) (source.ContentSource, error) {
			return source.ForPlatform(platform, cfg.Source)
		},
	}
}

// assetAnalysis is the per-asset slice of the oracle output stored with each
// review, so the reviewer sees the full context for exactly one symbol.
type assetAnalysis struct {
	Asset            oracle.Asset `json:"asset"`
	PostType         string       `json:"post_type"`
	OverallSentiment string       `json:"overall_sentiment"`
	Confidence       float64      `json:"confidence"`
	Summary          string       `json:"summary,omitempty"`
	KeyPoints        []string     `json:"key_points,omitempty"`
}

// TrackOne runs the pipeline for a single influencer and returns a populated
// result. Per-post failures are collected into result.Errors; only setup
// failures (unknown influencer, unsupported platform, fetch failure) return
// an error.
func (t *Tracker) TrackOne(ctx context.Context, influencerID string, limit int) (*model.TrackResult, error) {
	if limit <= 0 {
		limit = DefaultFetchLimit
	}

	inf, err := t.store.GetInfluencer(influencerID)
	if err != nil {
		return nil, fmt.Errorf("influencer %s: %w", influencerID, err)
	}

	src, err := t.sourceFor(inf.Platform)
	if err != nil {
		return nil, err
	}

	result := &model.TrackResult{
		InfluencerID: inf.ID,
		Platform:     src.Platform(),
	}

	raw, err := src.FetchPosts(ctx, inf.URL, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch posts for %s: %w", inf.Name, err)
	}
	result.PostsScraped = len(raw)

	normalized := make([]model.NormalizedPost, 0, len(raw))
	for _, r := range raw {
		if p, ok := t.normalizer.Normalize(r); ok {
			normalized = append(normalized, p)
		}
	}

	merged := t.merger.Merge(normalized)
	fresh := t.store.FilterNew(inf.ID, merged)
	result.PostsSkippedDuplicate = len(merged) - len(fresh)

	t.log.Info().Str("influencer", inf.Name).
		Int("scraped", result.PostsScraped).
		Int("new", len(fresh)).
		Msg("posts fetched")

	for _, post := range fresh {
		t.analyzePost(ctx, inf, post, result)
	}

	return result, nil
}

// TrackAll runs TrackOne for every registered influencer, with up to
// workers influencers in flight at once. A failed influencer yields a
// result carrying the error; the rest still run. Results come back in
// registry order regardless of completion order.
func (t *Tracker) TrackAll(ctx context.Context, limit, workers int) ([]model.TrackResult, error) {
	influencers, err := t.store.ListInfluencers()
	if err != nil {
		return nil, fmt.Errorf("list influencers: %w", err)
	}

	results := make([]model.TrackResult, len(influencers))

	pool := worker.NewPool(ctx, workers)
	pool.Start()
	for i, inf := range influencers {
		pool.Submit(func(ctx context.Context) {
			r, err := t.TrackOne(ctx, inf.ID, limit)
			if err != nil {
				t.log.Error().Err(err).Str("influencer", inf.Name).Msg("tracking failed")
				results[i] = model.TrackResult{
					InfluencerID: inf.ID,
					Platform:     inf.Platform,
					Errors:       []string{err.Error()},
				}
				return
			}
			results[i] = *r
		})
	}
	pool.Wait()

	return results, nil
}

// analyzePost runs the two-phase oracle protocol for one post and stages
// reviews for its assets. Every outcome, including oracle failure, records
// the fingerprint in the ledger so the post is never re-analyzed.
func (t *Tracker) analyzePost(ctx context.Context, inf *store.Influencer, post model.NormalizedPost, result *model.TrackResult) {
	result.PostsAnalyzed++

	cls, err := t.oracle.Classify(ctx, post.Text)
	if err != nil {
		t.recordWithError(inf.ID, post, result, fmt.Errorf("classify: %w", err))
		return
	}

	if !cls.IsRelevant {
		result.PostsSkippedIrrelevant++
		if err := t.store.Record(inf.ID, post, false, cls.PostType); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("record ledger: %v", err))
		}
		return
	}

	ext, err := t.oracle.Extract(ctx, post.Text, cls.PostType)
	if err != nil {
		t.recordWithError(inf.ID, post, result, fmt.Errorf("extract: %w", err))
		return
	}

	if err := t.store.Record(inf.ID, post, true, cls.PostType); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("record ledger: %v", err))
	}

	sourceTag := "AUTO_" + strings.ToUpper(post.Source)
	for _, asset := range ext.Assets {
		analysis, err := json.Marshal(assetAnalysis{
			Asset:            asset,
			PostType:         cls.PostType,
			OverallSentiment: ext.OverallSentiment,
			Confidence:       ext.Confidence,
			Summary:          ext.Summary,
			KeyPoints:        ext.KeyPoints,
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: encode analysis: %v", asset.Symbol, err))
			continue
		}

		id, err := t.store.CreateReview(store.PendingReview{
			InfluencerID:    inf.ID,
			Source:          sourceTag,
			SourceURL:       post.URL,
			OriginalText:    post.Text,
			Analysis:        string(analysis),
			SuggestedSymbol: asset.Symbol,
			SuggestedSignal: asset.Signal,
			Confidence:      ext.Confidence,
			Fingerprint:     post.Fingerprint,
			PostDate:        post.Date,
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: stage review: %v", asset.Symbol, err))
			continue
		}

		result.RecommendationsFound++
		result.PendingReviewIDs = append(result.PendingReviewIDs, id)
	}
}

// recordWithError marks a post analyzed despite an oracle failure. Leaving
// the fingerprint out of the ledger would retry the same failing post every
// run.
func (t *Tracker) recordWithError(subjectID string, post model.NormalizedPost, result *model.TrackResult, cause error) {
	result.Errors = append(result.Errors, cause.Error())
	t.log.Warn().Err(cause).Str("url", post.URL).Msg("post analysis failed")

	if err := t.store.Record(subjectID, post, false, "error"); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("record ledger: %v", err))
	}
}
