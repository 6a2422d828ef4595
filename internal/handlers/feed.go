package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gltch/gltch-backend/internal/feed"
	"github.com/gltch/gltch-backend/internal/logger"
	"github.com/gltch/gltch-backend/internal/middleware"
)

// CustomFeedRequest selects a feed algorithm and its parameters
type CustomFeedRequest struct {
	FeedType    string `json:"feedType"`
	Limit       int    `json:"limit"`
	Cursor      string `json:"cursor"`
	CommunityID string `json:"communityId"`
	Hashtag     string `json:"hashtag"`
}

// CustomFeedResponse is one ranked feed page
type CustomFeedResponse struct {
	Success   bool              `json:"success"`
	Posts     []feed.ScoredPost `json:"posts"`
	Cursor    string            `json:"cursor,omitempty"`
	Algorithm feed.FeedType     `json:"algorithm"`
}

// GetCustomFeed assembles and ranks one page of the requested feed.
// POST /api/v1/feeds/custom
func (h *Handlers) GetCustomFeed(c *gin.Context) {
	var req CustomFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	feedType := feed.ParseFeedType(req.FeedType)

	page, err := h.feeds.GetFeed(c.Request.Context(), feedType, req.Limit, req.Cursor, feed.Params{
		CommunityID: req.CommunityID,
		Hashtag:     req.Hashtag,
	})
	if err != nil {
		logger.Log.Error("feed generation failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("feed_type", string(feedType)),
			zap.Error(err))
		if errors.Is(err, feed.ErrFeedUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "feed temporarily unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	// posts is always a JSON array, even when empty
	posts := page.Posts
	if posts == nil {
		posts = []feed.ScoredPost{}
	}

	c.JSON(http.StatusOK, CustomFeedResponse{
		Success:   true,
		Posts:     posts,
		Cursor:    page.Cursor,
		Algorithm: page.Algorithm,
	})
}

// ListFeeds returns the catalogue of selectable feeds.
// GET /api/v1/feeds
func (h *Handlers) ListFeeds(c *gin.Context) {
	configs, err := h.feedConfigs.ListActive(c.Request.Context())
	if err != nil {
		logger.Log.Error("failed to list feed configs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "feeds": configs})
}
