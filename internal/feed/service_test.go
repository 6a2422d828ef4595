package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gltch/gltch-backend/internal/bluesky"
	"github.com/gltch/gltch-backend/internal/models"
)

type fakeWriter struct {
	mu      sync.Mutex
	err     error
	records []models.PostEngagement
	wrote   chan struct{}
}

func newFakeWriter(err error) *fakeWriter {
	return &fakeWriter{err: err, wrote: make(chan struct{}, 64)}
}

func (f *fakeWriter) UpsertMetrics(ctx context.Context, rec models.PostEngagement) error {
	f.mu.Lock()
	f.records = append(f.records, rec)
	f.mu.Unlock()
	f.wrote <- struct{}{}
	return f.err
}

func (f *fakeWriter) waitForWrites(t *testing.T, n int) []models.PostEngagement {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.wrote:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for engagement write %d of %d", i+1, n)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.PostEngagement(nil), f.records...)
}

func newTestService(network *fakeNetwork, engagement *fakeEngagement, members *fakeMembers, writer *fakeWriter, now time.Time) *Service {
	source := NewSource(network, &fakeDirectory{}, &fakeHashtags{})
	scorer := newTestScorer(engagement, members, now)
	return NewService(source, scorer, writer, nil)
}

func TestGetFeedRanksByScoreThenRecency(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	network := &fakeNetwork{timelinePosts: []bluesky.Post{
		makePost("at://low", "did:plc:a", 1, 0, now),
		makePost("at://high", "did:plc:a", 50, 0, now),
		makePost("at://tie-old", "did:plc:a", 10, 0, now.Add(-time.Minute)),
		makePost("at://tie-new", "did:plc:a", 10, 0, now),
	}}
	writer := newFakeWriter(nil)
	svc := newTestService(network, &fakeEngagement{}, &fakeMembers{}, writer, now)

	page, err := svc.GetFeed(context.Background(), FeedPublic, 10, "", Params{})
	require.NoError(t, err)
	require.Len(t, page.Posts, 4)

	assert.Equal(t, "at://high", page.Posts[0].URI)
	// Equal scores rank the newer post first
	assert.Equal(t, "at://tie-new", page.Posts[1].URI)
	assert.Equal(t, "at://tie-old", page.Posts[2].URI)
	assert.Equal(t, "at://low", page.Posts[3].URI)

	assert.Equal(t, FeedPublic, page.Algorithm)
	assert.Equal(t, "next-page", page.Cursor)
}

func TestGetFeedTruncatesToLimit(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	network := &fakeNetwork{feedPosts: []bluesky.Post{
		makePost("at://1", "did:plc:a", 1, 0, now),
		makePost("at://2", "did:plc:a", 2, 0, now),
		makePost("at://3", "did:plc:a", 3, 0, now),
		makePost("at://4", "did:plc:a", 4, 0, now),
	}}
	writer := newFakeWriter(nil)
	svc := newTestService(network, &fakeEngagement{}, &fakeMembers{}, writer, now)

	page, err := svc.GetFeed(context.Background(), FeedTrending, 2, "", Params{})
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, "at://4", page.Posts[0].URI)
	assert.Equal(t, "at://3", page.Posts[1].URI)
}

func TestGetFeedClampsLimit(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("zero becomes default", func(t *testing.T) {
		network := &fakeNetwork{}
		svc := newTestService(network, &fakeEngagement{}, &fakeMembers{}, newFakeWriter(nil), now)

		_, err := svc.GetFeed(context.Background(), FeedTrending, 0, "", Params{})
		require.NoError(t, err)
		require.Len(t, network.feedLimits, 1)
		assert.Equal(t, DefaultLimit*trendingOverfetch, network.feedLimits[0])
	})

	t.Run("oversized is capped", func(t *testing.T) {
		network := &fakeNetwork{}
		svc := newTestService(network, &fakeEngagement{}, &fakeMembers{}, newFakeWriter(nil), now)

		_, err := svc.GetFeed(context.Background(), FeedTrending, 5000, "", Params{})
		require.NoError(t, err)
		require.Len(t, network.feedLimits, 1)
		assert.Equal(t, MaxLimit*trendingOverfetch, network.feedLimits[0])
	})
}

func TestGetFeedSurfacesSourceFailure(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	network := &fakeNetwork{timelineErr: errors.New("network down")}
	svc := newTestService(network, &fakeEngagement{}, &fakeMembers{}, newFakeWriter(nil), now)

	_, err := svc.GetFeed(context.Background(), FeedPublic, 10, "", Params{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFeedUnavailable)
}

func TestGetFeedWritesEngagementBack(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	network := &fakeNetwork{timelinePosts: []bluesky.Post{
		makePost("at://1", "did:plc:member", 8, 0, now),
	}}
	writer := newFakeWriter(nil)
	members := &fakeMembers{dids: map[string]bool{"did:plc:member": true}}
	svc := newTestService(network, &fakeEngagement{}, members, writer, now)

	page, err := svc.GetFeed(context.Background(), FeedPublic, 10, "", Params{})
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)

	records := writer.waitForWrites(t, 1)
	require.Len(t, records, 1)
	assert.Equal(t, "at://1", records[0].PostURI)
	assert.Equal(t, 8, records[0].BlueskyLikes)
	assert.Equal(t, 2.0, records[0].CommunityScore)
	assert.InDelta(t, 16.0, records[0].TrendingScore, 1e-9)
}

func TestGetFeedSucceedsWhenEngagementWriteFails(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	network := &fakeNetwork{timelinePosts: []bluesky.Post{
		makePost("at://1", "did:plc:a", 3, 0, now),
	}}
	writer := newFakeWriter(errors.New("db down"))
	svc := newTestService(network, &fakeEngagement{}, &fakeMembers{}, writer, now)

	page, err := svc.GetFeed(context.Background(), FeedPublic, 10, "", Params{})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 1)

	// The write still happens; its failure just doesn't reach the caller
	writer.waitForWrites(t, 1)
}

type fakePageCache struct {
	mu    sync.Mutex
	pages map[string]string
}

func (f *fakePageCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.pages[key]
	if !ok {
		return "", errors.New("miss")
	}
	return raw, nil
}

func (f *fakePageCache) SetEx(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pages == nil {
		f.pages = make(map[string]string)
	}
	f.pages[key] = string(value.([]byte))
	return nil
}

func TestGetFeedServesRepeatedRequestsFromPageCache(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	network := &fakeNetwork{timelinePosts: []bluesky.Post{
		makePost("at://1", "did:plc:a", 3, 0, now),
	}}
	source := NewSource(network, &fakeDirectory{}, &fakeHashtags{})
	scorer := newTestScorer(&fakeEngagement{}, &fakeMembers{}, now)
	svc := NewService(source, scorer, newFakeWriter(nil), &fakePageCache{})

	first, err := svc.GetFeed(context.Background(), FeedPublic, 10, "", Params{})
	require.NoError(t, err)
	require.Len(t, first.Posts, 1)

	second, err := svc.GetFeed(context.Background(), FeedPublic, 10, "", Params{})
	require.NoError(t, err)
	require.Len(t, second.Posts, 1)
	assert.Equal(t, first.Posts[0].URI, second.Posts[0].URI)
	assert.Equal(t, first.Cursor, second.Cursor)

	// The second page came from the cache, not another fetch
	assert.Equal(t, 1, network.timelineCalls)

	// A different limit is a different page
	_, err = svc.GetFeed(context.Background(), FeedPublic, 20, "", Params{})
	require.NoError(t, err)
	assert.Equal(t, 2, network.timelineCalls)
}
