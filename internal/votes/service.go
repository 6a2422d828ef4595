package votes

import (
	"context"
	"errors"
	"fmt"

	"github.com/gltch/gltch-backend/internal/bluesky"
	"github.com/gltch/gltch-backend/internal/logger"
	"github.com/gltch/gltch-backend/internal/models"
	"github.com/gltch/gltch-backend/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Vote types
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// ErrInvalidVoteType is returned for anything other than "up" or "down"
var ErrInvalidVoteType = errors.New("invalid vote type")

// LikeClient is the slice of the Bluesky client vote mirroring needs
type LikeClient interface {
	GetActorLikes(ctx context.Context, session *bluesky.Session, limit int) ([]bluesky.Post, error)
	CreateLike(ctx context.Context, session *bluesky.Session, postURI, postCID string) (string, error)
	DeleteLike(ctx context.Context, session *bluesky.Session, likeURI string) error
}

// Status describes a user's standing on one post across both systems
type Status struct {
	HasBlueskyLike bool   `json:"hasBlueskyLike"`
	GltchVote      string `json:"gltchVote,omitempty"`
}

// Service records GLTCH votes and mirrors upvotes to Bluesky likes. An
// upvote creates a like record in the user's own repo (keeping its URI so a
// later downvote can remove it); a downvote is GLTCH-only state plus the
// removal of any mirrored like.
type Service struct {
	db         *gorm.DB
	client     LikeClient
	engagement *store.EngagementStore
}

// NewService creates a vote service
func NewService(db *gorm.DB, client LikeClient, engagement *store.EngagementStore) *Service {
	return &Service{
		db:         db,
		client:     client,
		engagement: engagement,
	}
}

// CheckLikes reports, per post URI, whether the user has a Bluesky like
// and/or a GLTCH vote. A failed Bluesky lookup degrades to "no likes".
func (s *Service) CheckLikes(ctx context.Context, session *bluesky.Session, userID string, postURIs []string) (map[string]Status, error) {
	liked := make(map[string]bool, len(postURIs))
	if likedPosts, err := s.client.GetActorLikes(ctx, session, 100); err != nil {
		logger.Warn("Actor likes lookup failed",
			logger.WithUserID(userID),
			zap.Error(err))
	} else {
		for _, post := range likedPosts {
			liked[post.URI] = true
		}
	}

	var votes []models.PostVote
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND post_uri IN ?", userID, postURIs).
		Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("read votes: %w", err)
	}

	voteByURI := make(map[string]string, len(votes))
	for _, vote := range votes {
		voteByURI[vote.PostURI] = vote.VoteType
	}

	result := make(map[string]Status, len(postURIs))
	for _, uri := range postURIs {
		result[uri] = Status{
			HasBlueskyLike: liked[uri],
			GltchVote:      voteByURI[uri],
		}
	}
	return result, nil
}

// Vote applies an up or down vote for the user on one post and keeps the
// engagement counters the scorer reads in sync with the transition.
func (s *Service) Vote(ctx context.Context, session *bluesky.Session, userID, postURI, postCID, voteType string) error {
	switch voteType {
	case VoteUp:
		return s.upvote(ctx, session, userID, postURI, postCID)
	case VoteDown:
		return s.downvote(ctx, session, userID, postURI)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidVoteType, voteType)
	}
}

func (s *Service) upvote(ctx context.Context, session *bluesky.Session, userID, postURI, postCID string) error {
	prev, err := s.previousVote(ctx, userID, postURI)
	if err != nil {
		return err
	}
	if prev != nil && prev.VoteType == VoteUp {
		return nil // already upvoted
	}

	likeURI, err := s.client.CreateLike(ctx, session, postURI, postCID)
	if err != nil {
		return fmt.Errorf("mirror like: %w", err)
	}

	if err := s.saveVote(ctx, userID, postURI, VoteUp, &likeURI); err != nil {
		return err
	}

	upDelta, downDelta := 1, 0
	if prev != nil && prev.VoteType == VoteDown {
		downDelta = -1
	}
	if err := s.engagement.AdjustVotes(ctx, postURI, upDelta, downDelta); err != nil {
		logger.Warn("Vote counter update failed",
			logger.WithPostURI(postURI),
			zap.Error(err))
	}
	return nil
}

func (s *Service) downvote(ctx context.Context, session *bluesky.Session, userID, postURI string) error {
	prev, err := s.previousVote(ctx, userID, postURI)
	if err != nil {
		return err
	}
	if prev != nil && prev.VoteType == VoteDown {
		return nil // already downvoted
	}

	// Remove the mirrored like before flipping the vote; best effort only
	if prev != nil && prev.VoteType == VoteUp && prev.BlueskyLikeRecord != nil {
		if err := s.client.DeleteLike(ctx, session, *prev.BlueskyLikeRecord); err != nil {
			logger.Warn("Mirrored like removal failed",
				logger.WithPostURI(postURI),
				zap.Error(err))
		}
	}

	if err := s.saveVote(ctx, userID, postURI, VoteDown, nil); err != nil {
		return err
	}

	upDelta, downDelta := 0, 1
	if prev != nil && prev.VoteType == VoteUp {
		upDelta = -1
	}
	if err := s.engagement.AdjustVotes(ctx, postURI, upDelta, downDelta); err != nil {
		logger.Warn("Vote counter update failed",
			logger.WithPostURI(postURI),
			zap.Error(err))
	}
	return nil
}

func (s *Service) previousVote(ctx context.Context, userID, postURI string) (*models.PostVote, error) {
	var vote models.PostVote
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND post_uri = ?", userID, postURI).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read vote: %w", err)
	}
	return &vote, nil
}

func (s *Service) saveVote(ctx context.Context, userID, postURI, voteType string, likeRecord *string) error {
	vote := models.PostVote{
		UserID:            userID,
		PostURI:           postURI,
		VoteType:          voteType,
		BlueskyLikeRecord: likeRecord,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "post_uri"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"vote_type", "bluesky_like_record", "updated_at",
		}),
	}).Create(&vote).Error
	if err != nil {
		return fmt.Errorf("save vote: %w", err)
	}
	return nil
}
