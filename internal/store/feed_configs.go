package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gltch/gltch-backend/internal/models"
)

// FeedConfigStore reads and writes the catalogue of selectable feeds
type FeedConfigStore struct {
	db *gorm.DB
}

// NewFeedConfigStore creates a feed config store
func NewFeedConfigStore(db *gorm.DB) *FeedConfigStore {
	return &FeedConfigStore{db: db}
}

// ListActive returns the feeds clients may select, oldest first
func (s *FeedConfigStore) ListActive(ctx context.Context) ([]models.FeedConfig, error) {
	var configs []models.FeedConfig
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&configs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list feed configs: %w", err)
	}
	return configs, nil
}

// Upsert inserts a feed config or updates the existing one with the same name
func (s *FeedConfigStore) Upsert(ctx context.Context, config models.FeedConfig) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "description", "algorithm_type", "is_active"}),
		}).
		Create(&config).Error
	if err != nil {
		return fmt.Errorf("failed to upsert feed config %q: %w", config.Name, err)
	}
	return nil
}
