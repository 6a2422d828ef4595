package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/gltch/gltch-backend/internal/errors"
	"github.com/gltch/gltch-backend/internal/logger"
	"github.com/gltch/gltch-backend/internal/models"
)

// RegisterUserRequest maps a Bluesky identity onto a GLTCH membership
type RegisterUserRequest struct {
	BlueskyDID    string   `json:"blueskyDid" binding:"required"`
	BlueskyHandle string   `json:"blueskyHandle" binding:"required"`
	DisplayName   string   `json:"displayName"`
	AvatarURL     string   `json:"avatarUrl"`
	CustomTags    []string `json:"customTags"`
}

// RegisterUser registers (or refreshes) a Bluesky account as a GLTCH member.
// POST /api/v1/users/register
func (h *Handlers) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.BadRequest("blueskyDid and blueskyHandle are required"))
		return
	}

	user := models.AppUser{
		BlueskyDID:    req.BlueskyDID,
		BlueskyHandle: req.BlueskyHandle,
		DisplayName:   req.DisplayName,
		AvatarURL:     req.AvatarURL,
		CustomTags:    models.StringArray(req.CustomTags),
		IsVerified:    true,
	}
	if err := h.users.Register(c.Request.Context(), user); err != nil {
		logger.Log.Error("failed to register app user",
			zap.String("did", req.BlueskyDID),
			zap.Error(err))
		respondError(c, apperrors.InternalError("internal server error"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// ListUsers returns the verified GLTCH members.
// GET /api/v1/users
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.users.ListVerified(c.Request.Context())
	if err != nil {
		logger.Log.Error("failed to list app users", zap.Error(err))
		respondError(c, apperrors.InternalError("internal server error"))
		return
	}
	if users == nil {
		users = []models.AppUser{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}
