package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gltch/gltch-backend/internal/cache"
	"github.com/gltch/gltch-backend/internal/logger"
	"github.com/gltch/gltch-backend/internal/metrics"
	"github.com/gltch/gltch-backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const hashtagCacheTTL = 5 * time.Minute

// HashtagDirectory maps communities to their bound hashtags. Reads go through
// an optional Redis cache; a cache failure only costs the round trip.
type HashtagDirectory struct {
	db    *gorm.DB
	redis *cache.RedisClient
}

// NewHashtagDirectory creates a directory backed by db. redis may be nil.
func NewHashtagDirectory(db *gorm.DB, redis *cache.RedisClient) *HashtagDirectory {
	return &HashtagDirectory{db: db, redis: redis}
}

// ForCommunity returns the hashtags bound to a community, without '#' prefixes
func (d *HashtagDirectory) ForCommunity(ctx context.Context, communityID string) ([]string, error) {
	key := cacheKey(communityID)

	if cached, err := d.redis.Get(ctx, key); err == nil {
		var hashtags []string
		if err := json.Unmarshal([]byte(cached), &hashtags); err == nil {
			metrics.Get().CacheHitsTotal.WithLabelValues("community_hashtags").Inc()
			return hashtags, nil
		}
	} else if !cache.IsMiss(err) {
		logger.Warn("Hashtag cache read failed",
			logger.WithCommunityID(communityID),
			zap.Error(err))
	}
	metrics.Get().CacheMissesTotal.WithLabelValues("community_hashtags").Inc()

	var hashtags []string
	err := d.db.WithContext(ctx).Model(&models.CommunityHashtag{}).
		Where("community_id = ?", communityID).
		Pluck("hashtag", &hashtags).Error
	if err != nil {
		return nil, fmt.Errorf("list community hashtags: %w", err)
	}

	if encoded, err := json.Marshal(hashtags); err == nil {
		if err := d.redis.SetEx(ctx, key, encoded, hashtagCacheTTL); err != nil {
			logger.Warn("Hashtag cache write failed",
				logger.WithCommunityID(communityID),
				zap.Error(err))
		}
	}

	return hashtags, nil
}

// Add binds a hashtag to a community and invalidates the cached list.
// A leading '#' is stripped before storage.
func (d *HashtagDirectory) Add(ctx context.Context, communityID, hashtag string, boostFactor float64) (*models.CommunityHashtag, error) {
	if boostFactor <= 0 {
		boostFactor = 1.0
	}

	row := models.CommunityHashtag{
		CommunityID: communityID,
		Hashtag:     strings.TrimPrefix(hashtag, "#"),
		BoostFactor: boostFactor,
	}

	if err := d.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("add community hashtag: %w", err)
	}

	if err := d.redis.Del(ctx, cacheKey(communityID)); err != nil {
		logger.Warn("Hashtag cache invalidation failed",
			logger.WithCommunityID(communityID),
			zap.Error(err))
	}

	return &row, nil
}

// List returns the full hashtag rows for a community
func (d *HashtagDirectory) List(ctx context.Context, communityID string) ([]models.CommunityHashtag, error) {
	var rows []models.CommunityHashtag
	err := d.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list community hashtags: %w", err)
	}
	return rows, nil
}

func cacheKey(communityID string) string {
	return "community:hashtags:" + communityID
}
