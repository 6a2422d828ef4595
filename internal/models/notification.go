package models

import "time"

// Notification types
const (
	NotificationLike    = "like"
	NotificationRepost  = "repost"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
	NotificationMention = "mention"
)

// Notification is an in-app notification delivered to a GLTCH user
type Notification struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID         string `gorm:"not null;index" json:"user_id"`
	Type           string `gorm:"not null" json:"type"`
	Title          string `gorm:"not null" json:"title"`
	Message        string `gorm:"not null" json:"message"`
	PostURI        string `json:"post_uri,omitempty"`
	FromUserID     string `json:"from_user_id"`
	FromUserHandle string `json:"from_user_handle"`
	FromUserAvatar string `json:"from_user_avatar"`
	Read           bool   `gorm:"default:false" json:"read"`

	CreatedAt time.Time `json:"created_at"`
}
