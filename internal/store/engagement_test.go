package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gltch/gltch-backend/internal/models"
)

func TestReadManyMissingRowsAreAbsent(t *testing.T) {
	db := setupTestDB(t)
	store := NewEngagementStore(db)
	ctx := context.Background()

	require.NoError(t, store.UpsertMetrics(ctx, models.PostEngagement{
		PostURI:      "at://known",
		BlueskyLikes: 3,
		LastUpdated:  time.Now(),
	}))

	rows, err := store.ReadMany(ctx, []string{"at://known", "at://unknown"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rec, ok := rows["at://known"]
	assert.True(t, ok)
	assert.Equal(t, 3, rec.BlueskyLikes)

	_, ok = rows["at://unknown"]
	assert.False(t, ok)
}

func TestReadManyEmptyInput(t *testing.T) {
	db := setupTestDB(t)
	store := NewEngagementStore(db)

	rows, err := store.ReadMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUpsertMetricsPreservesVoteCounters(t *testing.T) {
	db := setupTestDB(t)
	store := NewEngagementStore(db)
	ctx := context.Background()

	// Votes recorded first
	require.NoError(t, store.AdjustVotes(ctx, "at://post", 2, 1))

	// A feed pass refreshes the network metrics
	require.NoError(t, store.UpsertMetrics(ctx, models.PostEngagement{
		PostURI:       "at://post",
		BlueskyLikes:  40,
		TrendingScore: 55.5,
		LastUpdated:   time.Now(),
	}))

	rows, err := store.ReadMany(ctx, []string{"at://post"})
	require.NoError(t, err)
	rec := rows["at://post"]

	assert.Equal(t, 40, rec.BlueskyLikes)
	assert.InDelta(t, 55.5, rec.TrendingScore, 1e-9)
	// The vote counters survived the metrics refresh
	assert.Equal(t, 2, rec.GltchUpvotes)
	assert.Equal(t, 1, rec.GltchDownvotes)
}

func TestAdjustVotesCreatesAndAccumulates(t *testing.T) {
	db := setupTestDB(t)
	store := NewEngagementStore(db)
	ctx := context.Background()

	require.NoError(t, store.AdjustVotes(ctx, "at://post", 1, 0))
	require.NoError(t, store.AdjustVotes(ctx, "at://post", 1, 0))

	// Switching an upvote to a downvote
	require.NoError(t, store.AdjustVotes(ctx, "at://post", -1, 1))

	rows, err := store.ReadMany(ctx, []string{"at://post"})
	require.NoError(t, err)
	rec := rows["at://post"]

	assert.Equal(t, 1, rec.GltchUpvotes)
	assert.Equal(t, 1, rec.GltchDownvotes)
}

func TestAdjustVotesNewRowClampsNegativeDeltas(t *testing.T) {
	db := setupTestDB(t)
	store := NewEngagementStore(db)
	ctx := context.Background()

	// A retraction for a post with no row yet must not go below zero
	require.NoError(t, store.AdjustVotes(ctx, "at://fresh", -1, 1))

	rows, err := store.ReadMany(ctx, []string{"at://fresh"})
	require.NoError(t, err)
	rec := rows["at://fresh"]

	assert.Equal(t, 0, rec.GltchUpvotes)
	assert.Equal(t, 1, rec.GltchDownvotes)
}
