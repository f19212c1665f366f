package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkarpov/tipstream/internal/model"
	"github.com/mkarpov/tipstream/internal/normalize"
)

// ErrNotFound is returned when a review is absent, or no longer in the state
// the operation requires.
var ErrNotFound = errors.New("not found")

// CreateReview stages a new pending review and returns its id.
func (s *Store) CreateReview(r PendingReview) (string, error) {
	r.ID = uuid.NewString()
	r.Status = model.ReviewPending
	r.CreatedAt = time.Now()
	r.OriginalText = normalize.Truncate(r.OriginalText, maxReviewText)

	if err := s.db.Create(&r).Error; err != nil {
		return "", err
	}
	return r.ID, nil
}

// GetReview fetches one review by id.
func (s *Store) GetReview(id string) (*PendingReview, error) {
	var r PendingReview
	err := s.db.First(&r, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReviews returns reviews newest-first, optionally filtered by
// influencer and status.
func (s *Store) ListReviews(influencerID string, status model.ReviewStatus) ([]PendingReview, error) {
	q := s.db.Order("created_at DESC")
	if influencerID != "" {
		q = q.Where("influencer_id = ?", influencerID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var reviews []PendingReview
	err := q.Find(&reviews).Error
	return reviews, err
}

// PendingReviews returns all PENDING reviews oldest-first, the order batch
// approval processes them in.
func (s *Store) PendingReviews() ([]PendingReview, error) {
	var reviews []PendingReview
	err := s.db.Where("status = ?", model.ReviewPending).
		Order("created_at ASC").
		Find(&reviews).Error
	return reviews, err
}

// CountPending returns how many reviews are still PENDING.
func (s *Store) CountPending() (int64, error) {
	var count int64
	err := s.db.Model(&PendingReview{}).
		Where("status = ?", model.ReviewPending).
		Count(&count).Error
	return count, err
}

// CloseReview transitions a PENDING review to APPROVED or REJECTED. It
// returns ErrNotFound when the review is absent or already terminal, and
// performs no writes in that case.
func (s *Store) CloseReview(id string, status model.ReviewStatus, reviewedAt time.Time) error {
	res := s.db.Model(&PendingReview{}).
		Where("id = ? AND status = ?", id, model.ReviewPending).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_at": reviewedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReview removes a review permanently, regardless of status.
func (s *Store) DeleteReview(id string) error {
	return s.db.Delete(&PendingReview{}, "id = ?", id).Error
}

// CreateRecommendation writes a new recommendation and returns its id.
func (s *Store) CreateRecommendation(r Recommendation) (string, error) {
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now()
	r.Note = normalize.Truncate(r.Note, maxNoteText)
	if r.Status == "" {
		r.Status = model.RecommendationActive
	}

	if err := s.db.Create(&r).Error; err != nil {
		return "", err
	}
	return r.ID, nil
}

// ListRecommendations returns recommendations newest-first, optionally
// filtered by influencer.
func (s *Store) ListRecommendations(influencerID string) ([]Recommendation, error) {
	q := s.db.Order("created_at DESC")
	if influencerID != "" {
		q = q.Where("influencer_id = ?", influencerID)
	}

	var recs []Recommendation
	err := q.Find(&recs).Error
	return recs, err
}

// GetRecommendation fetches one recommendation by id.
func (s *Store) GetRecommendation(id string) (*Recommendation, error) {
	var r Recommendation
	err := s.db.First(&r, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
