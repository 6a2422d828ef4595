package models

import "time"

// CommunityHashtag binds a hashtag to a community. The community-specific
// feed searches Bluesky once per bound hashtag and merges the results.
type CommunityHashtag struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	CommunityID string  `gorm:"not null;index" json:"community_id"`
	Hashtag     string  `gorm:"not null" json:"hashtag"` // stored without the leading '#'
	BoostFactor float64 `gorm:"default:1.0" json:"boost_factor"`

	CreatedAt time.Time `json:"created_at"`
}

// FeedConfig describes one selectable feed algorithm shown to clients
type FeedConfig struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	Name          string `gorm:"uniqueIndex;not null" json:"name"`
	DisplayName   string `gorm:"not null" json:"display_name"`
	Description   string `gorm:"type:text" json:"description"`
	AlgorithmType string `gorm:"not null" json:"algorithm_type"`
	IsActive      bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName matches the table the web client reads feed configs from
func (FeedConfig) TableName() string {
	return "custom_feeds"
}
