package store

import (
	"context"
	"fmt"

	"github.com/gltch/gltch-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AppUserRegistry is the set of GLTCH member identities. The community feed
// fans out over verified members' handles; the scorer boosts any registered
// DID, verified or not.
type AppUserRegistry struct {
	db *gorm.DB
}

// NewAppUserRegistry creates a registry backed by db
func NewAppUserRegistry(db *gorm.DB) *AppUserRegistry {
	return &AppUserRegistry{db: db}
}

// VerifiedHandles returns the Bluesky handles of verified members
func (r *AppUserRegistry) VerifiedHandles(ctx context.Context) ([]string, error) {
	var handles []string
	err := r.db.WithContext(ctx).Model(&models.AppUser{}).
		Where("is_verified = ?", true).
		Pluck("bluesky_handle", &handles).Error
	if err != nil {
		return nil, fmt.Errorf("list verified handles: %w", err)
	}
	return handles, nil
}

// MemberDIDs returns the DID set of every registered member as a lookup map.
// Fetched once per scoring pass, never per post.
func (r *AppUserRegistry) MemberDIDs(ctx context.Context) (map[string]bool, error) {
	var dids []string
	err := r.db.WithContext(ctx).Model(&models.AppUser{}).
		Pluck("bluesky_did", &dids).Error
	if err != nil {
		return nil, fmt.Errorf("list member dids: %w", err)
	}

	set := make(map[string]bool, len(dids))
	for _, did := range dids {
		set[did] = true
	}
	return set, nil
}

// Register upserts a member keyed by Bluesky DID
func (r *AppUserRegistry) Register(ctx context.Context, user models.AppUser) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "bluesky_did"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"bluesky_handle", "display_name", "avatar_url", "is_verified", "updated_at",
		}),
	}).Create(&user).Error
	if err != nil {
		return fmt.Errorf("register app user %s: %w", user.BlueskyDID, err)
	}
	return nil
}

// ListVerified returns all verified members, newest first
func (r *AppUserRegistry) ListVerified(ctx context.Context) ([]models.AppUser, error) {
	var users []models.AppUser
	err := r.db.WithContext(ctx).
		Where("is_verified = ?", true).
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list verified users: %w", err)
	}
	return users, nil
}
