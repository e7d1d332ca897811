package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
)

// NotificationRepo interface for in-app notification operations
type NotificationRepo interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, tenantID, id uuid.UUID) error
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo creates a new notification repository
func NewNotificationRepo(db *gorm.DB) NotificationRepo {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepo) FindByUser(ctx context.Context, tenantID, userID uuid.UUID, limit int) ([]models.Notification, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND (user_id = ? OR user_id IS NULL)", tenantID, userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var notifications []models.Notification
	err := query.Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, tenantID, id uuid.UUID) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("read_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ? AND read_at IS NOT NULL", cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
