package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateInfluencer registers a tracked author and returns its id.
func (s *Store) CreateInfluencer(name, platform, url string) (string, error) {
	inf := Influencer{
		ID:        uuid.NewString(),
		Name:      name,
		Platform:  platform,
		URL:       url,
		CreatedAt: time.Now(),
	}
	if err := s.db.Create(&inf).Error; err != nil {
		return "", err
	}
	return inf.ID, nil
}

// GetInfluencer fetches one influencer by id.
func (s *Store) GetInfluencer(id string) (*Influencer, error) {
	var inf Influencer
	err := s.db.First(&inf, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inf, nil
}

// ListInfluencers returns all registered influencers, oldest first.
func (s *Store) ListInfluencers() ([]Influencer, error) {
	var infs []Influencer
	err := s.db.Order("created_at ASC").Find(&infs).Error
	return infs, err
}

// DeleteInfluencer removes an influencer from the registry.
func (s *Store) DeleteInfluencer(id string) error {
	return s.db.Delete(&Influencer{}, "id = ?", id).Error
}
