package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashtagDirectoryWorksWithoutRedis(t *testing.T) {
	db := setupTestDB(t)
	directory := NewHashtagDirectory(db, nil)
	ctx := context.Background()

	_, err := directory.Add(ctx, "retro-gaming", "#crt", 1.5)
	require.NoError(t, err)
	_, err = directory.Add(ctx, "retro-gaming", "pixelart", 0)
	require.NoError(t, err)

	hashtags, err := directory.ForCommunity(ctx, "retro-gaming")
	require.NoError(t, err)
	// Leading '#' is stripped on write
	assert.ElementsMatch(t, []string{"crt", "pixelart"}, hashtags)
}

func TestHashtagDefaultBoostFactor(t *testing.T) {
	db := setupTestDB(t)
	directory := NewHashtagDirectory(db, nil)

	tag, err := directory.Add(context.Background(), "demoscene", "amiga", 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, tag.BoostFactor)
}

func TestForCommunityUnknownCommunityIsEmpty(t *testing.T) {
	db := setupTestDB(t)
	directory := NewHashtagDirectory(db, nil)

	hashtags, err := directory.ForCommunity(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, hashtags)
}

func TestListReturnsFullRows(t *testing.T) {
	db := setupTestDB(t)
	directory := NewHashtagDirectory(db, nil)
	ctx := context.Background()

	_, err := directory.Add(ctx, "glitch-art", "databending", 2.0)
	require.NoError(t, err)

	rows, err := directory.List(ctx, "glitch-art")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "databending", rows[0].Hashtag)
	assert.Equal(t, 2.0, rows[0].BoostFactor)
}
