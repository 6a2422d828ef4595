package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gltch/gltch-backend/internal/bluesky"
	"github.com/gltch/gltch-backend/internal/logger"
	"github.com/gltch/gltch-backend/internal/votes"
)

// sessionPayload carries the caller's Bluesky session so votes can be
// mirrored into their own repo
type sessionPayload struct {
	DID       string `json:"did" binding:"required"`
	Handle    string `json:"handle"`
	AccessJwt string `json:"accessJwt" binding:"required"`
}

func (p sessionPayload) session() *bluesky.Session {
	return &bluesky.Session{
		DID:       p.DID,
		Handle:    p.Handle,
		AccessJwt: p.AccessJwt,
	}
}

// VoteRequest casts one vote on one post
type VoteRequest struct {
	Session  sessionPayload `json:"session" binding:"required"`
	PostURI  string         `json:"postUri" binding:"required"`
	PostCID  string         `json:"postCid"`
	VoteType string         `json:"voteType" binding:"required"`
}

// CheckVotesRequest asks for the caller's standing on a batch of posts
type CheckVotesRequest struct {
	Session  sessionPayload `json:"session" binding:"required"`
	PostURIs []string       `json:"postUris" binding:"required"`
}

// Vote casts an up or down vote, mirroring upvotes as Bluesky likes.
// POST /api/v1/votes
func (h *Handlers) Vote(c *gin.Context) {
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	userID := currentUserID(c)
	err := h.votes.Vote(c.Request.Context(), req.Session.session(), userID, req.PostURI, req.PostCID, req.VoteType)
	if err != nil {
		if errors.Is(err, votes.ErrInvalidVoteType) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "voteType must be \"up\" or \"down\""})
			return
		}
		logger.Log.Error("vote failed",
			zap.String("user_id", userID),
			zap.String("post_uri", req.PostURI),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CheckVotes reports, per post, whether the caller has a Bluesky like or a
// GLTCH vote.
// POST /api/v1/votes/check
func (h *Handlers) CheckVotes(c *gin.Context) {
	var req CheckVotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	userID := currentUserID(c)
	statuses, err := h.votes.CheckLikes(c.Request.Context(), req.Session.session(), userID, req.PostURIs)
	if err != nil {
		logger.Log.Error("vote check failed",
			zap.String("user_id", userID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "votes": statuses})
}
