package database

import (
	"fmt"
	"log"
	"time"

	"github.com/gltch/gltch-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Initialize creates and configures the database connection
func Initialize(databaseURL string, verbose bool) error {
	gormLogger := logger.Default
	if verbose {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db
	log.Println("✅ Database connected successfully")

	return nil
}

// Migrate runs auto-migration for all models
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	err := DB.AutoMigrate(
		&models.AppUser{},
		&models.PostEngagement{},
		&models.PostVote{},
		&models.CommunityHashtag{},
		&models.FeedConfig{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("✅ Database migrations completed")
	return nil
}

// createIndexes creates performance indexes
func createIndexes() error {
	// App user lookups during feed scoring
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_app_users_verified ON app_users (is_verified) WHERE is_verified = true")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_app_users_handle_lower ON app_users (LOWER(bluesky_handle))")

	// Engagement scan after a feed pass
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_post_engagement_updated ON post_engagement (last_updated DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_post_engagement_trending ON post_engagement (trending_score DESC)")

	// Vote lookups per post
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_post_votes_post ON post_votes (post_uri)")

	// Community hashtag fan-out
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_community_hashtags_community ON community_hashtags (community_id)")

	// Unread notification counts
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications (user_id, created_at DESC) WHERE read = false")

	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}
