package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
)

// TaskRepo interface for task database operations
type TaskRepo interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Task, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID, status string, limit int) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	UpdateFields(ctx context.Context, tenantID, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type taskRepo struct {
	db *gorm.DB
}

// NewTaskRepo creates a new task repository
func NewTaskRepo(db *gorm.DB) TaskRepo {
	return &taskRepo{db: db}
}

func (r *taskRepo) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID, status string, limit int) ([]models.Task, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var tasks []models.Task
	err := query.Find(&tasks).Error
	return tasks, err
}

func (r *taskRepo) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepo) UpdateFields(ctx context.Context, tenantID, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *taskRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.Task{}).Error
}
