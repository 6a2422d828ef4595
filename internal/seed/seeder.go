package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gltch/gltch-backend/internal/models"
)

// Seeder populates a development database with plausible data
type Seeder struct {
	db *gorm.DB
}

// New creates a seeder
func New(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// feedCatalogue is the set of feeds the web client can offer
var feedCatalogue = []models.FeedConfig{
	{Name: "gltch-community", DisplayName: "Community", Description: "Posts from registered GLTCH members", AlgorithmType: "gltch-community", IsActive: true},
	{Name: "trending-gltch", DisplayName: "Trending", Description: "What's hot across the network, GLTCH-ranked", AlgorithmType: "trending-gltch", IsActive: true},
	{Name: "hashtag-feeds", DisplayName: "Hashtags", Description: "Posts matching a hashtag", AlgorithmType: "hashtag-feeds", IsActive: true},
	{Name: "community-specific", DisplayName: "Communities", Description: "Posts matching a community's hashtags", AlgorithmType: "community-specific", IsActive: true},
	{Name: "public", DisplayName: "Public", Description: "The unranked public timeline", AlgorithmType: "public", IsActive: true},
}

// SeedDev fills the database with fake members, communities, and engagement
func (s *Seeder) SeedDev(ctx context.Context, userCount int) error {
	if userCount <= 0 {
		userCount = 25
	}

	for _, config := range feedCatalogue {
		err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&config).Error
		if err != nil {
			return fmt.Errorf("seed feed config %q: %w", config.Name, err)
		}
	}

	for i := 0; i < userCount; i++ {
		username := strings.ToLower(gofakeit.Username())
		user := models.AppUser{
			BlueskyDID:    fmt.Sprintf("did:plc:%s", gofakeit.LetterN(24)),
			BlueskyHandle: fmt.Sprintf("%s.bsky.social", username),
			DisplayName:   gofakeit.Name(),
			AvatarURL:     gofakeit.ImageURL(128, 128),
			IsVerified:    gofakeit.Bool(),
			CustomTags:    models.StringArray{gofakeit.HackerNoun(), gofakeit.HackerNoun()},
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return fmt.Errorf("seed app user: %w", err)
		}
	}

	communities := []string{"retro-gaming", "glitch-art", "demoscene"}
	for _, community := range communities {
		for i := 0; i < 3; i++ {
			tag := models.CommunityHashtag{
				CommunityID: community,
				Hashtag:     strings.ToLower(gofakeit.HackerNoun()),
				BoostFactor: 1.0,
			}
			if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
				return fmt.Errorf("seed community hashtag: %w", err)
			}
		}
	}

	for i := 0; i < userCount*2; i++ {
		rec := models.PostEngagement{
			PostURI:        fmt.Sprintf("at://did:plc:%s/app.bsky.feed.post/%s", gofakeit.LetterN(24), gofakeit.LetterN(13)),
			BlueskyLikes:   gofakeit.Number(0, 500),
			GltchUpvotes:   gofakeit.Number(0, 50),
			GltchDownvotes: gofakeit.Number(0, 10),
			LastUpdated:    time.Now().Add(-time.Duration(gofakeit.Number(0, 48)) * time.Hour),
		}
		if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
			return fmt.Errorf("seed engagement: %w", err)
		}
	}

	return nil
}

// Clean removes all seedable data. Intended for development databases only.
func (s *Seeder) Clean(ctx context.Context) error {
	tables := []interface{}{
		&models.PostEngagement{},
		&models.PostVote{},
		&models.CommunityHashtag{},
		&models.FeedConfig{},
		&models.Notification{},
		&models.AppUser{},
	}
	for _, table := range tables {
		if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return fmt.Errorf("clean: %w", err)
		}
	}
	return nil
}
