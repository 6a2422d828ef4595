package store

import (
	"context"
	"fmt"

	"github.com/gltch/gltch-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementStore persists per-post engagement counters. Feed assembly and
// vote recording write disjoint column sets, so both upserts are plain
// last-write-wins with no transaction needed.
type EngagementStore struct {
	db *gorm.DB
}

// NewEngagementStore creates an engagement store backed by db
func NewEngagementStore(db *gorm.DB) *EngagementStore {
	return &EngagementStore{db: db}
}

// ReadMany returns the engagement rows for the given post URIs, keyed by URI.
// URIs with no row are simply absent from the map.
func (s *EngagementStore) ReadMany(ctx context.Context, postURIs []string) (map[string]models.PostEngagement, error) {
	result := make(map[string]models.PostEngagement, len(postURIs))
	if len(postURIs) == 0 {
		return result, nil
	}

	var rows []models.PostEngagement
	if err := s.db.WithContext(ctx).Where("post_uri IN ?", postURIs).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read engagement: %w", err)
	}

	for _, row := range rows {
		result[row.PostURI] = row
	}
	return result, nil
}

// UpsertMetrics inserts or refreshes the feed-derived columns for one post.
// The internal vote counters are deliberately left alone so a feed pass never
// clobbers votes recorded between reads.
func (s *EngagementStore) UpsertMetrics(ctx context.Context, rec models.PostEngagement) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "post_uri"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"bluesky_likes", "community_score", "trending_score", "last_updated",
		}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("upsert engagement for %s: %w", rec.PostURI, err)
	}
	return nil
}

// AdjustVotes applies vote-count deltas for one post, creating the row if it
// does not exist yet
func (s *EngagementStore) AdjustVotes(ctx context.Context, postURI string, upDelta, downDelta int) error {
	rec := models.PostEngagement{
		PostURI:        postURI,
		GltchUpvotes:   maxInt(upDelta, 0),
		GltchDownvotes: maxInt(downDelta, 0),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "post_uri"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"gltch_upvotes":   gorm.Expr("post_engagement.gltch_upvotes + ?", upDelta),
			"gltch_downvotes": gorm.Expr("post_engagement.gltch_downvotes + ?", downDelta),
		}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("adjust votes for %s: %w", postURI, err)
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
