package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gltch/gltch-backend/internal/auth"
	"github.com/gltch/gltch-backend/internal/database"
	apperrors "github.com/gltch/gltch-backend/internal/errors"
	"github.com/gltch/gltch-backend/internal/feed"
	"github.com/gltch/gltch-backend/internal/notifications"
	"github.com/gltch/gltch-backend/internal/store"
	"github.com/gltch/gltch-backend/internal/votes"
)

// Handlers holds the services behind the HTTP API
type Handlers struct {
	feeds         *feed.Service
	feedConfigs   *store.FeedConfigStore
	users         *store.AppUserRegistry
	hashtags      *store.HashtagDirectory
	votes         *votes.Service
	notifications *notifications.Service
	auth          *auth.Service
}

// New creates the handler set
func New(
	feeds *feed.Service,
	feedConfigs *store.FeedConfigStore,
	users *store.AppUserRegistry,
	hashtags *store.HashtagDirectory,
	voteService *votes.Service,
	notificationService *notifications.Service,
	authService *auth.Service,
) *Handlers {
	return &Handlers{
		feeds:         feeds,
		feedConfigs:   feedConfigs,
		users:         users,
		hashtags:      hashtags,
		votes:         voteService,
		notifications: notificationService,
		auth:          authService,
	}
}

// RegisterRoutes wires all API routes onto the router
func (h *Handlers) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/feeds/custom", h.GetCustomFeed)
		v1.GET("/feeds", h.ListFeeds)

		v1.POST("/users/register", h.RegisterUser)
		v1.GET("/users", h.ListUsers)

		v1.GET("/communities/:id/hashtags", h.ListCommunityHashtags)

		protected := v1.Group("")
		protected.Use(h.auth.Middleware())
		{
			protected.POST("/communities/:id/hashtags", h.AddCommunityHashtag)

			protected.POST("/votes", h.Vote)
			protected.POST("/votes/check", h.CheckVotes)

			protected.GET("/notifications", h.ListNotifications)
			protected.POST("/notifications", h.CreateNotification)
			protected.POST("/notifications/read", h.MarkNotificationsRead)
			protected.GET("/notifications/unread-count", h.UnreadCount)
		}
	}
}

// Health reports process and database health
func (h *Handlers) Health(c *gin.Context) {
	if err := database.Health(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError writes an APIError with its mapped status, or a generic 500
func respondError(c *gin.Context, err error) {
	if apiErr, ok := err.(*apperrors.APIError); ok {
		c.JSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": apperrors.InternalError("internal server error")})
}

// currentUserID reads the user ID set by the auth middleware
func currentUserID(c *gin.Context) string {
	return c.GetString("user_id")
}
