package feed

import (
	"context"
	"math"
	"sort"

	"github.com/gltch/gltch-backend/internal/bluesky"
	"github.com/gltch/gltch-backend/internal/logger"
	"github.com/gltch/gltch-backend/internal/metrics"
	"go.uber.org/zap"
)

// FeedType names one of the custom feed algorithms
type FeedType string

const (
	FeedCommunity         FeedType = "gltch-community"
	FeedTrending          FeedType = "trending-gltch"
	FeedHashtag           FeedType = "hashtag-feeds"
	FeedCommunitySpecific FeedType = "community-specific"
	FeedPublic            FeedType = "public"
)

// ParseFeedType maps a request string to a feed type. Both the canonical
// names and the short aliases used by older clients are accepted; anything
// unrecognized falls back to the public timeline.
func ParseFeedType(s string) FeedType {
	switch s {
	case string(FeedCommunity), "community":
		return FeedCommunity
	case string(FeedTrending), "trending":
		return FeedTrending
	case string(FeedHashtag), "hashtag":
		return FeedHashtag
	case string(FeedCommunitySpecific), "communitySpecific":
		return FeedCommunitySpecific
	default:
		return FeedPublic
	}
}

const (
	// maxCommunityMembers caps the author fan-out to stay under rate limits
	maxCommunityMembers = 10
	// perMemberCap bounds the per-author fetch regardless of fair share
	perMemberCap = 5
	// trendingOverfetch leaves headroom for re-ranking before truncation
	trendingOverfetch = 2
)

// NetworkClient is the slice of the Bluesky client the post source needs
type NetworkClient interface {
	GetTimeline(ctx context.Context, limit int, cursor string) ([]bluesky.Post, string, error)
	GetAuthorFeed(ctx context.Context, actor string, limit int) ([]bluesky.Post, error)
	GetFeed(ctx context.Context, feedURI string, limit int, cursor string) ([]bluesky.Post, string, error)
	SearchPosts(ctx context.Context, query string, limit int) ([]bluesky.Post, error)
}

// MemberDirectory lists the verified member handles for the community fan-out
type MemberDirectory interface {
	VerifiedHandles(ctx context.Context) ([]string, error)
}

// HashtagLookup resolves the hashtags bound to a community
type HashtagLookup interface {
	ForCommunity(ctx context.Context, communityID string) ([]string, error)
}

// Params carries the optional request parameters some feed types need
type Params struct {
	CommunityID string
	Hashtag     string
}

// Source produces an unordered batch of candidate posts for a feed type.
// Individual network failures degrade rather than abort: a failing member or
// hashtag is skipped, and the single-call feed types fall back to the public
// timeline.
type Source struct {
	client   NetworkClient
	members  MemberDirectory
	hashtags HashtagLookup
}

// NewSource creates a post source over the given collaborators
func NewSource(client NetworkClient, members MemberDirectory, hashtags HashtagLookup) *Source {
	return &Source{
		client:   client,
		members:  members,
		hashtags: hashtags,
	}
}

// Fetch returns candidate posts for feedType plus a pagination cursor when
// the underlying source supports one (public and trending only).
func (s *Source) Fetch(ctx context.Context, feedType FeedType, limit int, cursor string, params Params) ([]bluesky.Post, string, error) {
	switch feedType {
	case FeedCommunity:
		return s.fetchCommunity(ctx, limit, cursor)
	case FeedTrending:
		return s.fetchTrending(ctx, limit, cursor)
	case FeedHashtag:
		return s.fetchHashtag(ctx, params.Hashtag, limit, cursor)
	case FeedCommunitySpecific:
		return s.fetchCommunitySpecific(ctx, params.CommunityID, limit, cursor)
	default:
		return s.fetchPublic(ctx, limit, cursor)
	}
}

// fetchCommunity merges the latest posts of up to maxCommunityMembers
// verified members. No cursor: the merged view has no stable paging key.
func (s *Source) fetchCommunity(ctx context.Context, limit int, cursor string) ([]bluesky.Post, string, error) {
	handles, err := s.members.VerifiedHandles(ctx)
	if err != nil {
		logger.WarnWithError("Member lookup failed, falling back to public feed", err)
		metrics.Get().FeedFallbacksTotal.WithLabelValues(string(FeedCommunity)).Inc()
		return s.fetchPublic(ctx, limit, cursor)
	}
	if len(handles) == 0 {
		metrics.Get().FeedFallbacksTotal.WithLabelValues(string(FeedCommunity)).Inc()
		return s.fetchPublic(ctx, limit, cursor)
	}

	// Fair share across all members, capped per author
	perMember := int(math.Ceil(float64(limit) / float64(len(handles))))
	if perMember > perMemberCap {
		perMember = perMemberCap
	}

	if len(handles) > maxCommunityMembers {
		handles = handles[:maxCommunityMembers]
	}

	type result struct {
		handle string
		posts  []bluesky.Post
		err    error
	}

	resultsChan := make(chan result, len(handles))
	for _, handle := range handles {
		go func(handle string) {
			posts, err := s.client.GetAuthorFeed(ctx, handle, perMember)
			resultsChan <- result{handle: handle, posts: posts, err: err}
		}(handle)
	}

	allPosts := make([]bluesky.Post, 0, perMember*len(handles))
	for range handles {
		res := <-resultsChan
		if res.err != nil {
			// One failing member must not sink the whole batch
			logger.Warn("Member feed fetch failed",
				zap.String("handle", res.handle),
				zap.Error(res.err))
			metrics.Get().SourceFailuresTotal.WithLabelValues("author").Inc()
			continue
		}
		allPosts = append(allPosts, res.posts...)
	}

	sortByTimeDesc(allPosts)
	return truncate(allPosts, limit), "", nil
}

// fetchTrending delegates to the network's curated What's Hot feed,
// over-fetching to leave re-ranking headroom
func (s *Source) fetchTrending(ctx context.Context, limit int, cursor string) ([]bluesky.Post, string, error) {
	posts, nextCursor, err := s.client.GetFeed(ctx, bluesky.WhatsHotFeed, limit*trendingOverfetch, cursor)
	if err != nil {
		logger.WarnWithError("Trending feed fetch failed, falling back to public feed", err)
		metrics.Get().SourceFailuresTotal.WithLabelValues("trending").Inc()
		metrics.Get().FeedFallbacksTotal.WithLabelValues(string(FeedTrending)).Inc()
		return s.fetchPublic(ctx, limit, cursor)
	}
	return posts, nextCursor, nil
}

// fetchHashtag searches the network for a single hashtag. Search has no
// cursor, and a failed search yields an empty page rather than an error.
func (s *Source) fetchHashtag(ctx context.Context, hashtag string, limit int, cursor string) ([]bluesky.Post, string, error) {
	if hashtag == "" {
		metrics.Get().FeedFallbacksTotal.WithLabelValues(string(FeedHashtag)).Inc()
		return s.fetchPublic(ctx, limit, cursor)
	}

	posts, err := s.client.SearchPosts(ctx, "#"+hashtag, limit)
	if err != nil {
		logger.Warn("Hashtag search failed",
			zap.String("hashtag", hashtag),
			zap.Error(err))
		metrics.Get().SourceFailuresTotal.WithLabelValues("search").Inc()
		return nil, "", nil
	}
	return posts, "", nil
}

// fetchCommunitySpecific merges one search per hashtag bound to the
// community, deduplicated by post URI (first seen wins)
func (s *Source) fetchCommunitySpecific(ctx context.Context, communityID string, limit int, cursor string) ([]bluesky.Post, string, error) {
	if communityID == "" {
		metrics.Get().FeedFallbacksTotal.WithLabelValues(string(FeedCommunitySpecific)).Inc()
		return s.fetchPublic(ctx, limit, cursor)
	}

	hashtags, err := s.hashtags.ForCommunity(ctx, communityID)
	if err != nil {
		logger.Warn("Community hashtag lookup failed, falling back to public feed",
			logger.WithCommunityID(communityID),
			zap.Error(err))
		metrics.Get().FeedFallbacksTotal.WithLabelValues(string(FeedCommunitySpecific)).Inc()
		return s.fetchPublic(ctx, limit, cursor)
	}
	if len(hashtags) == 0 {
		metrics.Get().FeedFallbacksTotal.WithLabelValues(string(FeedCommunitySpecific)).Inc()
		return s.fetchPublic(ctx, limit, cursor)
	}

	perHashtag := int(math.Ceil(float64(limit) / float64(len(hashtags))))

	type result struct {
		hashtag string
		posts   []bluesky.Post
		err     error
	}

	resultsChan := make(chan result, len(hashtags))
	for _, hashtag := range hashtags {
		go func(hashtag string) {
			posts, err := s.client.SearchPosts(ctx, "#"+hashtag, perHashtag)
			resultsChan <- result{hashtag: hashtag, posts: posts, err: err}
		}(hashtag)
	}

	allPosts := make([]bluesky.Post, 0, perHashtag*len(hashtags))
	for range hashtags {
		res := <-resultsChan
		if res.err != nil {
			logger.Warn("Hashtag search failed",
				zap.String("hashtag", res.hashtag),
				zap.Error(res.err))
			metrics.Get().SourceFailuresTotal.WithLabelValues("search").Inc()
			continue
		}
		allPosts = append(allPosts, res.posts...)
	}

	unique := dedupeByURI(allPosts)
	sortByTimeDesc(unique)
	return truncate(unique, limit), "", nil
}

// fetchPublic returns the network timeline with its pass-through cursor
func (s *Source) fetchPublic(ctx context.Context, limit int, cursor string) ([]bluesky.Post, string, error) {
	return s.client.GetTimeline(ctx, limit, cursor)
}

// dedupeByURI keeps the first occurrence of each post URI
func dedupeByURI(posts []bluesky.Post) []bluesky.Post {
	seen := make(map[string]bool, len(posts))
	unique := make([]bluesky.Post, 0, len(posts))
	for _, post := range posts {
		if seen[post.URI] {
			continue
		}
		seen[post.URI] = true
		unique = append(unique, post)
	}
	return unique
}

// sortByTimeDesc orders posts newest first by createdAt (indexedAt fallback)
func sortByTimeDesc(posts []bluesky.Post) {
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].Time().After(posts[j].Time())
	})
}

func truncate(posts []bluesky.Post, limit int) []bluesky.Post {
	if len(posts) > limit {
		return posts[:limit]
	}
	return posts
}
