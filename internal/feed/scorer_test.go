package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gltch/gltch-backend/internal/bluesky"
	"github.com/gltch/gltch-backend/internal/models"
)

type fakeEngagement struct {
	records map[string]models.PostEngagement
	err     error
}

func (f *fakeEngagement) ReadMany(ctx context.Context, postURIs []string) (map[string]models.PostEngagement, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]models.PostEngagement)
	for _, uri := range postURIs {
		if rec, ok := f.records[uri]; ok {
			out[uri] = rec
		}
	}
	return out, nil
}

type fakeMembers struct {
	dids map[string]bool
	err  error
}

func (f *fakeMembers) MemberDIDs(ctx context.Context) (map[string]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.dids, nil
}

func newTestScorer(engagement *fakeEngagement, members *fakeMembers, now time.Time) *Scorer {
	s := NewScorer(engagement, members)
	s.now = func() time.Time { return now }
	return s
}

func makePost(uri, authorDID string, likes, reposts int, createdAt time.Time) bluesky.Post {
	return bluesky.Post{
		URI:         uri,
		Author:      bluesky.Author{DID: authorDID, Handle: "someone.bsky.social"},
		LikeCount:   likes,
		RepostCount: reposts,
		Record:      bluesky.Record{Text: "hello", CreatedAt: createdAt},
	}
}

func TestScoreCombinesEngagementDecayAndBoost(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	engagement := &fakeEngagement{records: map[string]models.PostEngagement{
		"at://post/1": {PostURI: "at://post/1", GltchUpvotes: 2, GltchDownvotes: 1},
	}}
	members := &fakeMembers{dids: map[string]bool{"did:plc:member": true}}
	scorer := newTestScorer(engagement, members, now)

	// 12 hours old: raw = 4 + 2*2 + 3*2 - 2*1 = 12, decay = 0.5, member boost 2x
	post := makePost("at://post/1", "did:plc:member", 4, 2, now.Add(-12*time.Hour))

	scored := scorer.ScoreAll(context.Background(), []bluesky.Post{post})
	assert.Len(t, scored, 1)
	assert.InDelta(t, 12.0, scored[0].Score, 1e-9)
	assert.Equal(t, 2.0, scored[0].CommunityBoost)
	assert.True(t, scored[0].IsAppUser)
}

func TestScoreNonMemberGetsNoBoost(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	scorer := newTestScorer(
		&fakeEngagement{records: map[string]models.PostEngagement{}},
		&fakeMembers{dids: map[string]bool{"did:plc:member": true}},
		now,
	)

	post := makePost("at://post/2", "did:plc:stranger", 10, 0, now)

	scored := scorer.ScoreAll(context.Background(), []bluesky.Post{post})
	assert.InDelta(t, 10.0, scored[0].Score, 1e-9)
	assert.Equal(t, 1.0, scored[0].CommunityBoost)
	assert.False(t, scored[0].IsAppUser)
}

func TestScoreDecayFloor(t *testing.T) {
	now := time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)
	scorer := newTestScorer(&fakeEngagement{}, &fakeMembers{}, now)

	// 96 hours old, far past the decay window: multiplier clamps at 0.1
	post := makePost("at://post/old", "did:plc:a", 10, 0, now.Add(-96*time.Hour))

	scored := scorer.ScoreAll(context.Background(), []bluesky.Post{post})
	assert.InDelta(t, 1.0, scored[0].Score, 1e-9)
}

func TestScoreFuturePostDoesNotDecay(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	scorer := newTestScorer(&fakeEngagement{}, &fakeMembers{}, now)

	// Clock skew can put createdAt slightly in the future; age clamps to zero
	post := makePost("at://post/future", "did:plc:a", 5, 0, now.Add(10*time.Minute))

	scored := scorer.ScoreAll(context.Background(), []bluesky.Post{post})
	assert.InDelta(t, 5.0, scored[0].Score, 1e-9)
}

func TestScoreCanGoNegative(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	engagement := &fakeEngagement{records: map[string]models.PostEngagement{
		"at://post/bad": {PostURI: "at://post/bad", GltchDownvotes: 5},
	}}
	scorer := newTestScorer(engagement, &fakeMembers{}, now)

	post := makePost("at://post/bad", "did:plc:a", 2, 0, now)

	scored := scorer.ScoreAll(context.Background(), []bluesky.Post{post})
	assert.InDelta(t, -8.0, scored[0].Score, 1e-9)
}

func TestScoreAllDegradesWhenStoresFail(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	scorer := newTestScorer(
		&fakeEngagement{err: errors.New("db down")},
		&fakeMembers{err: errors.New("db down")},
		now,
	)

	post := makePost("at://post/3", "did:plc:member", 7, 1, now)

	scored := scorer.ScoreAll(context.Background(), []bluesky.Post{post})
	assert.Len(t, scored, 1)
	// Scored on network counters alone: 7 + 2*1
	assert.InDelta(t, 9.0, scored[0].Score, 1e-9)
	assert.False(t, scored[0].IsAppUser)
}

func TestScoreMissingEngagementRowMeansZeroVotes(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	scorer := newTestScorer(
		&fakeEngagement{records: map[string]models.PostEngagement{}},
		&fakeMembers{},
		now,
	)

	post := makePost("at://post/unknown", "did:plc:a", 3, 3, now)

	scored := scorer.ScoreAll(context.Background(), []bluesky.Post{post})
	assert.InDelta(t, 9.0, scored[0].Score, 1e-9)
}
