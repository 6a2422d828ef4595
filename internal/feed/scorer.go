package feed

import (
	"context"
	"time"

	"github.com/gltch/gltch-backend/internal/bluesky"
	"github.com/gltch/gltch-backend/internal/logger"
	"github.com/gltch/gltch-backend/internal/models"
	"go.uber.org/zap"
)

// Score weights and decay constants. Reposts signal harder than likes,
// internal votes hardest of all; a downvote costs a post two likes' worth.
const (
	repostWeight   = 2.0
	upvoteWeight   = 3.0
	downvoteWeight = 2.0

	decayWindowHours = 24.0
	decayFloor       = 0.1

	memberBoost = 2.0
)

// EngagementReader provides one batched counter read per scoring pass
type EngagementReader interface {
	ReadMany(ctx context.Context, postURIs []string) (map[string]models.PostEngagement, error)
}

// MemberSet provides the registered-member DID set for the community boost
type MemberSet interface {
	MemberDIDs(ctx context.Context) (map[string]bool, error)
}

// ScoredPost is a candidate post annotated with its ranking score. The JSON
// field names match what the GLTCH web client already reads.
type ScoredPost struct {
	bluesky.Post
	Score          float64 `json:"gltchScore"`
	CommunityBoost float64 `json:"communityBoost"`
	IsAppUser      bool    `json:"isAppUser"`
}

// Scorer assigns ranking scores to candidate posts. It is read-only: both
// store lookups happen once per pass, so a concurrent counter update only
// affects the next invocation.
type Scorer struct {
	engagement EngagementReader
	members    MemberSet

	// now is swappable for deterministic tests
	now func() time.Time
}

// NewScorer creates a scorer over the given stores
func NewScorer(engagement EngagementReader, members MemberSet) *Scorer {
	return &Scorer{
		engagement: engagement,
		members:    members,
		now:        time.Now,
	}
}

// ScoreAll scores every candidate post. Store read failures degrade to
// zero-valued counters and no membership rather than failing the feed.
func (s *Scorer) ScoreAll(ctx context.Context, posts []bluesky.Post) []ScoredPost {
	uris := make([]string, 0, len(posts))
	for _, post := range posts {
		uris = append(uris, post.URI)
	}

	engagement, err := s.engagement.ReadMany(ctx, uris)
	if err != nil {
		logger.Warn("Engagement read failed, scoring without internal votes", zap.Error(err))
		engagement = map[string]models.PostEngagement{}
	}

	memberDIDs, err := s.members.MemberDIDs(ctx)
	if err != nil {
		logger.Warn("Member DID lookup failed, scoring without community boost", zap.Error(err))
		memberDIDs = map[string]bool{}
	}

	now := s.now()
	scored := make([]ScoredPost, 0, len(posts))
	for _, post := range posts {
		counters := engagement[post.URI]
		isMember := memberDIDs[post.Author.DID]
		scored = append(scored, scorePost(post, counters, isMember, now))
	}
	return scored
}

// scorePost computes one post's score:
//
//	raw   = likes + 2*reposts + 3*upvotes - 2*downvotes
//	decay = max(0.1, 1 - hoursOld/24)
//	score = raw * decay * (member ? 2.0 : 1.0)
func scorePost(post bluesky.Post, counters models.PostEngagement, isMember bool, now time.Time) ScoredPost {
	raw := float64(post.LikeCount) +
		repostWeight*float64(post.RepostCount) +
		upvoteWeight*float64(counters.GltchUpvotes) -
		downvoteWeight*float64(counters.GltchDownvotes)

	hoursOld := now.Sub(post.Time()).Hours()
	if hoursOld < 0 {
		hoursOld = 0
	}

	decay := 1 - hoursOld/decayWindowHours
	if decay < decayFloor {
		decay = decayFloor
	}

	boost := 1.0
	if isMember {
		boost = memberBoost
	}

	return ScoredPost{
		Post:           post,
		Score:          raw * decay * boost,
		CommunityBoost: boost,
		IsAppUser:      isMember,
	}
}
