package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/gltch/gltch-backend/internal/cache"
	"github.com/gltch/gltch-backend/internal/logger"
	"github.com/gltch/gltch-backend/internal/metrics"
	"github.com/gltch/gltch-backend/internal/models"
	"go.uber.org/zap"
)

// ErrFeedUnavailable means the selected source, fallback included, could not
// produce posts. Empty results are not an error; only a failed fetch is.
var ErrFeedUnavailable = errors.New("feed unavailable")

const (
	// DefaultLimit is applied when the request doesn't specify one
	DefaultLimit = 30
	// MaxLimit caps a single page
	MaxLimit = 100

	engagementWriteTimeout = 10 * time.Second
	pageCacheTTL           = time.Minute
)

// EngagementWriter receives the refreshed metrics after each scoring pass
type EngagementWriter interface {
	UpsertMetrics(ctx context.Context, rec models.PostEngagement) error
}

// PageCache holds recently assembled pages. Satisfied by cache.RedisClient.
type PageCache interface {
	Get(ctx context.Context, key string) (string, error)
	SetEx(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Page is one ranked page of a custom feed
type Page struct {
	Posts     []ScoredPost `json:"posts"`
	Cursor    string       `json:"cursor,omitempty"`
	Algorithm FeedType     `json:"algorithm"`
}

// Service assembles ranked feed pages: select a source, score the candidates,
// order them, and write the refreshed engagement metrics back without holding
// up the response. Each call is stateless.
type Service struct {
	source     *Source
	scorer     *Scorer
	engagement EngagementWriter
	pages      PageCache
}

// NewService creates the feed service. pages may be nil to disable caching.
func NewService(source *Source, scorer *Scorer, engagement EngagementWriter, pages PageCache) *Service {
	return &Service{
		source:     source,
		scorer:     scorer,
		engagement: engagement,
		pages:      pages,
	}
}

// GetFeed returns one ranked page for the requested feed type. A fetch
// failure (after any per-source fallback) is fatal and surfaces as
// ErrFeedUnavailable; the engagement write-back is best effort and never is.
func (svc *Service) GetFeed(ctx context.Context, feedType FeedType, limit int, cursor string, params Params) (*Page, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	key := pageCacheKey(feedType, limit, cursor, params)
	if page := svc.cachedPage(ctx, key); page != nil {
		return page, nil
	}

	started := time.Now()

	posts, nextCursor, err := svc.source.Fetch(ctx, feedType, limit, cursor, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	scored := svc.scorer.ScoreAll(ctx, posts)

	// Highest score first; equal scores rank the newer post first
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Time().After(scored[j].Time())
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	m := metrics.Get()
	m.FeedGenerationTime.WithLabelValues(string(feedType)).Observe(time.Since(started).Seconds())
	m.FeedPostsReturned.WithLabelValues(string(feedType)).Observe(float64(len(scored)))

	// Metrics write-back is a side effect, not part of the response contract
	go svc.writeEngagement(scored)

	logger.Log.Debug("Feed assembled",
		logger.WithFeedType(string(feedType)),
		zap.Int("count", len(scored)),
		zap.Bool("has_cursor", nextCursor != ""),
	)

	page := &Page{
		Posts:     scored,
		Cursor:    nextCursor,
		Algorithm: feedType,
	}
	svc.storePage(ctx, key, page)
	return page, nil
}

// cachedPage returns a previously assembled page, or nil on a miss. Cached
// pages keep their scores as computed; the TTL stays under the decay horizon.
func (svc *Service) cachedPage(ctx context.Context, key string) *Page {
	if svc.pages == nil {
		return nil
	}

	m := metrics.Get()
	raw, err := svc.pages.Get(ctx, key)
	if err != nil {
		if !cache.IsMiss(err) {
			logger.Warn("Feed page cache read failed", zap.Error(err))
		}
		m.CacheMissesTotal.WithLabelValues("feed_pages").Inc()
		return nil
	}

	var page Page
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		m.CacheMissesTotal.WithLabelValues("feed_pages").Inc()
		return nil
	}
	m.CacheHitsTotal.WithLabelValues("feed_pages").Inc()
	return &page
}

func (svc *Service) storePage(ctx context.Context, key string, page *Page) {
	if svc.pages == nil {
		return
	}
	encoded, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := svc.pages.SetEx(ctx, key, encoded, pageCacheTTL); err != nil {
		logger.Warn("Feed page cache write failed", zap.Error(err))
	}
}

func pageCacheKey(feedType FeedType, limit int, cursor string, params Params) string {
	return "feed:page:" + string(feedType) + ":" + strconv.Itoa(limit) +
		":" + cursor + ":" + params.CommunityID + ":" + params.Hashtag
}

// writeEngagement upserts the freshly computed metrics for each returned
// post. Runs detached from the request: failures are logged and dropped.
func (svc *Service) writeEngagement(posts []ScoredPost) {
	ctx, cancel := context.WithTimeout(context.Background(), engagementWriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	m := metrics.Get()

	for _, post := range posts {
		rec := models.PostEngagement{
			PostURI:        post.URI,
			BlueskyLikes:   post.LikeCount,
			CommunityScore: post.CommunityBoost,
			TrendingScore:  post.Score,
			LastUpdated:    now,
		}
		if err := svc.engagement.UpsertMetrics(ctx, rec); err != nil {
			logger.Warn("Engagement write failed",
				logger.WithPostURI(post.URI),
				zap.Error(err))
			m.EngagementWritesTotal.WithLabelValues("error").Inc()
			continue
		}
		m.EngagementWritesTotal.WithLabelValues("ok").Inc()
	}
}
