package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
)

// AccountRepo interface for chart-of-accounts database operations
type AccountRepo interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Account, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type accountRepo struct {
	db *gorm.DB
}

// NewAccountRepo creates a new account repository
func NewAccountRepo(db *gorm.DB) AccountRepo {
	return &accountRepo{db: db}
}

func (r *accountRepo) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("code ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *accountRepo) Update(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *accountRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.Account{}).Error
}
