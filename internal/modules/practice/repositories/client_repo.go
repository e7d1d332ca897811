package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
)

// ClientRepo interface for client database operations
type ClientRepo interface {
	Create(ctx context.Context, client *models.Client) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID, status string) ([]models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	UpdateFields(ctx context.Context, tenantID, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type clientRepo struct {
	db *gorm.DB
}

// NewClientRepo creates a new client repository
func NewClientRepo(db *gorm.DB) ClientRepo {
	return &clientRepo{db: db}
}

func (r *clientRepo) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID, status string) ([]models.Client, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var clients []models.Client
	err := query.Find(&clients).Error
	return clients, err
}

func (r *clientRepo) Update(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *clientRepo) UpdateFields(ctx context.Context, tenantID, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.Client{}).
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

func (r *clientRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.Client{}).Error
}
