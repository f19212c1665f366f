// Package oracle wraps the external text-classification service behind the
// two-phase classify/extract protocol and normalizes its loosely-typed JSON
// output into the closed data model.
package oracle

import (
	"context"

	"github.com/mkarpov/tipstream/internal/model"
)

// Post type tags produced by phase 1. The oracle is prompted with this closed
// set; anything else is coerced to PostTypeOther.
const (
	PostTypeSinglePick       = "single_pick"
	PostTypePortfolioUpdate  = "portfolio_update"
	PostTypeTradeJournal     = "trade_journal"
	PostTypeEarningsReview   = "earnings_review"
	PostTypeCompanyAnalysis  = "company_analysis"
	PostTypeMarketCommentary = "market_commentary"
	PostTypeEducational      = "educational"
	PostTypeLifestyle        = "lifestyle"
	PostTypeOther            = "other"
)

var knownPostTypes = map[string]bool{
	PostTypeSinglePick:       true,
	PostTypePortfolioUpdate:  true,
	PostTypeTradeJournal:     true,
	PostTypeEarningsReview:   true,
	PostTypeCompanyAnalysis:  true,
	PostTypeMarketCommentary: true,
	PostTypeEducational:      true,
	PostTypeLifestyle:        true,
	PostTypeOther:            true,
}

// Classification is the phase 1 relevance judgment. The oracle is instructed
// to prefer precision over recall; the pipeline never second-guesses
// IsRelevant.
type Classification struct {
	IsRelevant bool   `json:"is_relevant"`
	PostType   string `json:"post_type"`
	Reason     string `json:"reason"`
}

// Asset is one extracted asset mention with its own directional signal.
type Asset struct {
	Symbol   string       `json:"symbol"`
	Category string       `json:"category,omitempty"`
	Signal   model.Signal `json:"signal"`
	Market   string       `json:"market"`
	Note     string       `json:"note,omitempty"`
}

// Extraction is the phase 2 result: every surviving asset mention plus
// post-level sentiment metadata.
type Extraction struct {
	Assets           []Asset  `json:"assets"`
	OverallSentiment string   `json:"overall_sentiment"`
	Confidence       float64  `json:"confidence"`
	Summary          string   `json:"summary"`
	KeyPoints        []string `json:"key_points"`
}

// Oracle is the external classification service consumed by the pipeline.
// Implementations return an error for any transport, timeout, or output
// malformation; callers treat that as "analyzed with error" and continue.
type Oracle interface {
	Classify(ctx context.Context, text string) (*Classification, error)
	Extract(ctx context.Context, text, postType string) (*Extraction, error)
}
