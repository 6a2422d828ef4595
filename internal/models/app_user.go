package models

import (
	"database/sql/driver"
	"strings"
	"time"
)

// StringArray is a custom type for PostgreSQL text[] that implements Scanner and Valuer
type StringArray []string

// Scan implements the sql.Scanner interface for reading from database
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	// PostgreSQL returns text[] as a string like "{value1,value2,value3}"
	str, ok := value.(string)
	if !ok {
		if bytes, ok := value.([]byte); ok {
			str = string(bytes)
		} else {
			*a = nil
			return nil
		}
	}

	str = strings.TrimPrefix(str, "{")
	str = strings.TrimSuffix(str, "}")

	if str == "" {
		*a = []string{}
		return nil
	}

	// Split by comma (simple case - doesn't handle quoted values with commas)
	*a = strings.Split(str, ",")
	return nil
}

// Value implements the driver.Valuer interface for writing to database
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	if len(a) == 0 {
		return "{}", nil
	}
	return "{" + strings.Join(a, ",") + "}", nil
}

// AppUser is a GLTCH member identity mapped to a Bluesky account.
// Posts authored by registered members get the community boost in feed ranking.
type AppUser struct {
	ID            string      `gorm:"primaryKey;type:uuid" json:"id"`
	BlueskyDID    string      `gorm:"uniqueIndex;not null" json:"bluesky_did"`
	BlueskyHandle string      `gorm:"index;not null" json:"bluesky_handle"`
	DisplayName   string      `json:"display_name"`
	AvatarURL     string      `json:"avatar_url"`
	IsVerified    bool        `gorm:"default:false" json:"is_verified"`
	CustomTags    StringArray `gorm:"type:text[]" json:"custom_tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
