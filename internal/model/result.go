package model

// TrackResult summarizes one tracking run for a single influencer.
// Callers always receive a populated result with counts and an error list;
// per-post failures never abort the run.
type TrackResult struct {
	InfluencerID          string   `json:"influencer_id"`
	Platform              string   `json:"platform"`
	PostsScraped          int      `json:"posts_scraped"`
	PostsAnalyzed         int      `json:"posts_analyzed"`
	PostsSkippedDuplicate int      `json:"posts_skipped_duplicate"`
	PostsSkippedIrrelevant int     `json:"posts_skipped_irrelevant"`
	RecommendationsFound  int      `json:"recommendations_found"`
	PendingReviewIDs      []string `json:"pending_review_ids"`
	Errors                []string `json:"errors"`
}

// BatchApproveResult summarizes an approve-all / auto-approve pass.
// Warnings are keyed by the suggested symbol of the review that failed.
type BatchApproveResult struct {
	ApprovedCount    int               `json:"approved_count"`
	RemainingPending int               `json:"remaining_pending"`
	Warnings         map[string]string `json:"warnings,omitempty"`
}
