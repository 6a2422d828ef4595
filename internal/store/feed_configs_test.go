package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gltch/gltch-backend/internal/models"
)

func TestFeedConfigUpsertAndListActive(t *testing.T) {
	db := setupTestDB(t)
	store := NewFeedConfigStore(db)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, models.FeedConfig{
		Name: "trending-gltch", DisplayName: "Trending", AlgorithmType: "trending-gltch", IsActive: true,
	}))
	require.NoError(t, store.Upsert(ctx, models.FeedConfig{
		Name: "legacy", DisplayName: "Legacy", AlgorithmType: "public", IsActive: false,
	}))

	// Same name updates in place
	require.NoError(t, store.Upsert(ctx, models.FeedConfig{
		Name: "trending-gltch", DisplayName: "What's Hot", AlgorithmType: "trending-gltch", IsActive: true,
	}))

	configs, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "What's Hot", configs[0].DisplayName)
}
