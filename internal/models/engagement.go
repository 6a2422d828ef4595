package models

import "time"

// PostEngagement holds per-post counters used by the feed scorer: externally
// observed Bluesky likes plus GLTCH's internal up/down votes. Rows are created
// lazily the first time a post is scored and refreshed on every pass after
// that; nothing in the feed pipeline ever deletes them.
type PostEngagement struct {
	PostURI        string    `gorm:"primaryKey" json:"post_uri"`
	BlueskyLikes   int       `gorm:"default:0" json:"bluesky_likes"`
	GltchUpvotes   int       `gorm:"default:0" json:"gltch_upvotes"`
	GltchDownvotes int       `gorm:"default:0" json:"gltch_downvotes"`
	CommunityScore float64   `gorm:"default:0" json:"community_score"`
	TrendingScore  float64   `gorm:"default:0" json:"trending_score"`
	LastUpdated    time.Time `json:"last_updated"`
}

// TableName keeps the table name aligned with the votes and feed writers
func (PostEngagement) TableName() string {
	return "post_engagement"
}

// PostVote records one user's GLTCH vote on a post. Upvotes are mirrored to a
// Bluesky like record whose URI is kept so a later downvote can remove it.
type PostVote struct {
	ID                string  `gorm:"primaryKey;type:uuid" json:"id"`
	UserID            string  `gorm:"not null;index;uniqueIndex:idx_post_votes_user_post" json:"user_id"`
	PostURI           string  `gorm:"not null;index;uniqueIndex:idx_post_votes_user_post" json:"post_uri"`
	VoteType          string  `gorm:"not null" json:"vote_type"` // "up" or "down"
	BlueskyLikeRecord *string `json:"bluesky_like_record,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
