package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/mkarpov/tipstream/internal/model"
	"github.com/mkarpov/tipstream/internal/normalize"
)

// Seen returns the set of fingerprints already recorded for a subject.
func (s *Store) Seen(subjectID string) (map[string]bool, error) {
	var fingerprints []string
	err := s.db.Model(&LedgerEntry{}).
		Where("subject_id = ?", subjectID).
		Pluck("fingerprint", &fingerprints).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(fingerprints))
	for _, f := range fingerprints {
		seen[f] = true
	}
	return seen, nil
}

// FilterNew drops posts whose fingerprint is already in the ledger. When the
// ledger cannot be read, every post is treated as new: duplicate downstream
// work is preferred over a failed run.
func (s *Store) FilterNew(subjectID string, posts []model.NormalizedPost) []model.NormalizedPost {
	seen, err := s.Seen(subjectID)
	if err != nil {
		s.log.Warn().Err(err).Str("subject", subjectID).
			Msg("ledger read failed, treating all posts as new")
		return posts
	}

	fresh := make([]model.NormalizedPost, 0, len(posts))
	for _, p := range posts {
		if !seen[p.Fingerprint] {
			fresh = append(fresh, p)
		}
	}
	return fresh
}

// Record inserts a ledger entry for the post. Inserting an existing
// (subject, fingerprint) pair is a silent no-op: recording twice is
// equivalent to recording once.
func (s *Store) Record(subjectID string, post model.NormalizedPost, relevant bool, postType string) error {
	entry := LedgerEntry{
		ID:          uuid.NewString(),
		SubjectID:   subjectID,
		Fingerprint: post.Fingerprint,
		Source:      post.Source,
		SourceURL:   post.URL,
		Text:        normalize.Truncate(post.Text, maxLedgerText),
		Relevant:    relevant,
		PostType:    postType,
		AnalyzedAt:  time.Now(),
	}

	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
}

// LedgerCount returns the number of ledger entries for a subject.
func (s *Store) LedgerCount(subjectID string) (int64, error) {
	var count int64
	err := s.db.Model(&LedgerEntry{}).
		Where("subject_id = ?", subjectID).
		Count(&count).Error
	return count, err
}
