package store

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gltch/gltch-backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named in-memory database with a shared cache survives gorm's
	// connection pooling; the test name keeps databases isolated.
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.AppUser{},
		&models.PostEngagement{},
		&models.PostVote{},
		&models.CommunityHashtag{},
		&models.FeedConfig{},
		&models.Notification{},
	)
	require.NoError(t, err)

	return db
}
