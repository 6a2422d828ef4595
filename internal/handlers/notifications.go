package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/gltch/gltch-backend/internal/errors"
	"github.com/gltch/gltch-backend/internal/logger"
	"github.com/gltch/gltch-backend/internal/models"
	"github.com/gltch/gltch-backend/internal/notifications"
)

// MarkReadRequest marks specific notifications read, or all when ids is empty
type MarkReadRequest struct {
	IDs []string `json:"ids"`
}

// ListNotifications returns the caller's notifications, newest first.
// GET /api/v1/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	userID := currentUserID(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	items, err := h.notifications.List(c.Request.Context(), userID, limit)
	if err != nil {
		logger.Log.Error("failed to list notifications",
			zap.String("user_id", userID),
			zap.Error(err))
		respondError(c, apperrors.InternalError("internal server error"))
		return
	}
	if items == nil {
		items = []models.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": items})
}

// CreateNotification records an event aimed at another user. Self-directed
// events are accepted and dropped.
// POST /api/v1/notifications
func (h *Handlers) CreateNotification(c *gin.Context) {
	var input notifications.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.BadRequest("type and targetUserId are required"))
		return
	}

	created, err := h.notifications.Create(c.Request.Context(), input)
	if err != nil {
		logger.Log.Error("failed to create notification",
			zap.String("type", input.Type),
			zap.Error(err))
		respondError(c, apperrors.BadRequest(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "notification": created})
}

// MarkNotificationsRead marks notifications read.
// POST /api/v1/notifications/read
func (h *Handlers) MarkNotificationsRead(c *gin.Context) {
	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.BadRequest("invalid request body"))
		return
	}

	userID := currentUserID(c)
	if err := h.notifications.MarkRead(c.Request.Context(), userID, req.IDs); err != nil {
		logger.Log.Error("failed to mark notifications read",
			zap.String("user_id", userID),
			zap.Error(err))
		respondError(c, apperrors.InternalError("internal server error"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UnreadCount returns the caller's unread notification count.
// GET /api/v1/notifications/unread-count
func (h *Handlers) UnreadCount(c *gin.Context) {
	userID := currentUserID(c)

	count, err := h.notifications.CountUnread(c.Request.Context(), userID)
	if err != nil {
		logger.Log.Error("failed to count unread notifications",
			zap.String("user_id", userID),
			zap.Error(err))
		respondError(c, apperrors.InternalError("internal server error"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}
