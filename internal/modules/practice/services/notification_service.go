package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/repositories"
)

// NotificationService exposes the in-app notification feed
type NotificationService struct {
	notificationRepo repositories.NotificationRepo
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo repositories.NotificationRepo) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// ListNotifications returns the user's feed, newest first. Rows with a
// nil user are tenant-wide broadcasts.
func (s *NotificationService) ListNotifications(ctx context.Context, tenantID, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.notificationRepo.FindByUser(ctx, tenantID, userID, limit)
}

// MarkRead marks one notification as read
func (s *NotificationService) MarkRead(ctx context.Context, tenantID, notificationID uuid.UUID) error {
	return s.notificationRepo.MarkRead(ctx, tenantID, notificationID)
}
