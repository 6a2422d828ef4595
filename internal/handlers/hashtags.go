package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/gltch/gltch-backend/internal/errors"
	"github.com/gltch/gltch-backend/internal/logger"
	"github.com/gltch/gltch-backend/internal/models"
)

// AddHashtagRequest binds a hashtag to a community
type AddHashtagRequest struct {
	Hashtag     string  `json:"hashtag" binding:"required"`
	BoostFactor float64 `json:"boostFactor"`
}

// ListCommunityHashtags returns the hashtags bound to a community.
// GET /api/v1/communities/:id/hashtags
func (h *Handlers) ListCommunityHashtags(c *gin.Context) {
	communityID := c.Param("id")

	tags, err := h.hashtags.List(c.Request.Context(), communityID)
	if err != nil {
		logger.Log.Error("failed to list community hashtags",
			zap.String("community_id", communityID),
			zap.Error(err))
		respondError(c, apperrors.InternalError("internal server error"))
		return
	}
	if tags == nil {
		tags = []models.CommunityHashtag{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "hashtags": tags})
}

// AddCommunityHashtag binds a new hashtag to a community.
// POST /api/v1/communities/:id/hashtags
func (h *Handlers) AddCommunityHashtag(c *gin.Context) {
	communityID := c.Param("id")

	var req AddHashtagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.BadRequest("hashtag is required"))
		return
	}

	tag, err := h.hashtags.Add(c.Request.Context(), communityID, req.Hashtag, req.BoostFactor)
	if err != nil {
		logger.Log.Error("failed to add community hashtag",
			zap.String("community_id", communityID),
			zap.String("hashtag", req.Hashtag),
			zap.Error(err))
		respondError(c, apperrors.InternalError("internal server error"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "hashtag": tag})
}
