package notifications

import (
	"context"
	"fmt"

	"github.com/gltch/gltch-backend/internal/models"
	"gorm.io/gorm"
)

// CreateInput describes one notification-worthy event
type CreateInput struct {
	Type           string `json:"type" binding:"required"`
	PostURI        string `json:"postUri"`
	FromUserID     string `json:"fromUserId"`
	FromUserHandle string `json:"fromUserHandle"`
	FromUserAvatar string `json:"fromUserAvatar"`
	TargetUserID   string `json:"targetUserId" binding:"required"`
}

// Service creates and lists in-app notifications
type Service struct {
	db *gorm.DB
}

// NewService creates a notification service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create stores a notification for the target user. Self-actions (voting on
// your own post) produce no notification and no error.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Notification, error) {
	if input.FromUserID == input.TargetUserID {
		return nil, nil
	}

	title, message, err := composeMessage(input.Type, input.FromUserHandle)
	if err != nil {
		return nil, err
	}

	notification := models.Notification{
		UserID:         input.TargetUserID,
		Type:           input.Type,
		Title:          title,
		Message:        message,
		PostURI:        input.PostURI,
		FromUserID:     input.FromUserID,
		FromUserHandle: input.FromUserHandle,
		FromUserAvatar: input.FromUserAvatar,
	}

	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return &notification, nil
}

// List returns the user's notifications, newest first
func (s *Service) List(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	var notifications []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks the given notifications as read. With no IDs, everything
// the user has is marked.
func (s *Service) MarkRead(ctx context.Context, userID string, ids []string) error {
	query := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ?", userID)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}

	if err := query.Update("read", true).Error; err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

// CountUnread returns the user's unread notification count
func (s *Service) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// composeMessage builds the user-facing title and message for an event type
func composeMessage(eventType, fromHandle string) (string, string, error) {
	switch eventType {
	case models.NotificationLike:
		return "New like", fmt.Sprintf("@%s liked your post", fromHandle), nil
	case models.NotificationRepost:
		return "New repost", fmt.Sprintf("@%s reposted your post", fromHandle), nil
	case models.NotificationComment:
		return "New comment", fmt.Sprintf("@%s commented on your post", fromHandle), nil
	case models.NotificationFollow:
		return "New follower", fmt.Sprintf("@%s started following you", fromHandle), nil
	case models.NotificationMention:
		return "You were mentioned", fmt.Sprintf("@%s mentioned you in a post", fromHandle), nil
	default:
		return "", "", fmt.Errorf("unknown notification type: %s", eventType)
	}
}
