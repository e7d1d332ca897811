package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
)

// InvoiceRepo interface for invoice database operations
type InvoiceRepo interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID, status string, limit int) ([]models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	UpdateFields(ctx context.Context, tenantID, id uuid.UUID, fields map[string]interface{}) error
	NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

type invoiceRepo struct {
	db *gorm.DB
}

// NewInvoiceRepo creates a new invoice repository
func NewInvoiceRepo(db *gorm.DB) InvoiceRepo {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *invoiceRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID, status string, limit int) ([]models.Invoice, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var invoices []models.Invoice
	err := query.Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepo) Update(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

func (r *invoiceRepo) UpdateFields(ctx context.Context, tenantID, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
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

// NextInvoiceNumber produces a per-tenant sequential number like
// INV-2026-00042
func (r *invoiceRepo) NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d-%05d", time.Now().Year(), count+1), nil
}
