package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gltch/gltch-backend/internal/models"
)

func TestRegisterIsIdempotentByDID(t *testing.T) {
	db := setupTestDB(t)
	registry := NewAppUserRegistry(db)
	ctx := context.Background()

	require.NoError(t, registry.Register(ctx, models.AppUser{
		BlueskyDID:    "did:plc:abc",
		BlueskyHandle: "old.bsky.social",
		IsVerified:    false,
	}))

	// Re-registering the same DID refreshes the profile
	require.NoError(t, registry.Register(ctx, models.AppUser{
		BlueskyDID:    "did:plc:abc",
		BlueskyHandle: "new.bsky.social",
		DisplayName:   "New Name",
		IsVerified:    true,
	}))

	var count int64
	require.NoError(t, db.Model(&models.AppUser{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	handles, err := registry.VerifiedHandles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"new.bsky.social"}, handles)
}

func TestVerifiedHandlesExcludesUnverified(t *testing.T) {
	db := setupTestDB(t)
	registry := NewAppUserRegistry(db)
	ctx := context.Background()

	require.NoError(t, registry.Register(ctx, models.AppUser{
		BlueskyDID: "did:plc:v", BlueskyHandle: "verified.bsky.social", IsVerified: true,
	}))
	require.NoError(t, registry.Register(ctx, models.AppUser{
		BlueskyDID: "did:plc:u", BlueskyHandle: "pending.bsky.social", IsVerified: false,
	}))

	handles, err := registry.VerifiedHandles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"verified.bsky.social"}, handles)
}

func TestMemberDIDsIncludesUnverified(t *testing.T) {
	db := setupTestDB(t)
	registry := NewAppUserRegistry(db)
	ctx := context.Background()

	require.NoError(t, registry.Register(ctx, models.AppUser{
		BlueskyDID: "did:plc:v", BlueskyHandle: "verified.bsky.social", IsVerified: true,
	}))
	require.NoError(t, registry.Register(ctx, models.AppUser{
		BlueskyDID: "did:plc:u", BlueskyHandle: "pending.bsky.social", IsVerified: false,
	}))

	// The ranking boost applies to every registered member
	dids, err := registry.MemberDIDs(ctx)
	require.NoError(t, err)
	assert.True(t, dids["did:plc:v"])
	assert.True(t, dids["did:plc:u"])
	assert.False(t, dids["did:plc:stranger"])
}
