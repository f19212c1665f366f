// Package store persists the pipeline's durable state: the influencer
// registry, the dedup ledger, pending reviews, and recommendations.
package store

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mkarpov/tipstream/internal/model"
)

// Stored-text bounds. Full post text lives only in the upstream platform;
// the store keeps enough for review and audit.
const (
	maxLedgerText = 1000
	maxReviewText = 1000
	maxNoteText   = 200
)

// Influencer is a tracked author.
type Influencer struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Platform  string
	URL       string
	CreatedAt time.Time
}

// LedgerEntry records that one (subject, fingerprint) pair has been analyzed.
// Rows are written once and never mutated or deleted by normal operation.
type LedgerEntry struct {
	ID          string `gorm:"primaryKey"`
	SubjectID   string `gorm:"uniqueIndex:idx_ledger_subject_fingerprint"`
	Fingerprint string `gorm:"uniqueIndex:idx_ledger_subject_fingerprint"`
	Source      string
	SourceURL   string
	Text        string
	Relevant    bool
	PostType    string
	AnalyzedAt  time.Time
}

// PendingReview is a staged candidate signal awaiting human or threshold
// review.
type PendingReview struct {
	ID                 string `gorm:"primaryKey"`
	InfluencerID       string `gorm:"index"`
	Source             string
	SourceURL          string
	OriginalText       string
	Analysis           string // raw oracle output for the asset, as JSON
	SuggestedSymbol    string
	SuggestedSignal    model.Signal
	SuggestedTimeframe model.Timeframe
	Confidence         float64
	Status             model.ReviewStatus `gorm:"index"`
	CreatedAt          time.Time
	ReviewedAt         *time.Time
	Fingerprint        string
	PostDate           string
}

// Recommendation is an approved, tracked signal. Created exactly once per
// approved review; owned by downstream tracking after creation.
type Recommendation struct {
	ID                 string `gorm:"primaryKey"`
	InfluencerID       string `gorm:"index"`
	Symbol             string
	Signal             model.Signal
	Timeframe          model.Timeframe
	RecommendationDate time.Time
	EntryPrice         *float64
	TargetPrice        *float64
	StopLoss           *float64
	ExpiryDate         time.Time
	Source             string
	SourceURL          string
	Note               string
	Status             model.RecommendationStatus
	CreatedAt          time.Time
}

// Store wraps the sqlite database.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open opens (creating if needed) the sqlite database at path and migrates
// the schema.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(&Influencer{}, &LedgerEntry{}, &PendingReview{}, &Recommendation{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{db: db, log: log}, nil
}
