package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Invoice statuses
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

// Invoice represents a billable invoice issued to a client.
// Line items are stored as a JSONB array of {description, quantity, unit_price}.
type Invoice struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_tenant_invoice_number"`
	ClientID      uuid.UUID      `json:"client_id" gorm:"type:uuid;not null;index"`
	InvoiceNumber string         `json:"invoice_number" gorm:"type:varchar(50);not null;uniqueIndex:idx_tenant_invoice_number"`
	Status        string         `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	LineItems     datatypes.JSON `json:"line_items" gorm:"type:jsonb;not null;default:'[]'"`
	Subtotal      float64        `json:"subtotal" gorm:"type:numeric(12,2);default:0"`
	TaxRate       float64        `json:"tax_rate" gorm:"type:numeric(5,2);default:0"`
	Total         float64        `json:"total" gorm:"type:numeric(12,2);default:0"`
	Currency      string         `json:"currency" gorm:"type:varchar(3);not null;default:'USD'"`
	DueDate       *time.Time     `json:"due_date,omitempty"`
	PaidAt        *time.Time     `json:"paid_at,omitempty"`
	Notes         string         `json:"notes" gorm:"type:text"`
	CreatedBy     *uuid.UUID     `json:"created_by,omitempty" gorm:"type:uuid"`
	CreatedAt     time.Time      `json:"created_at" gorm:"autoCreateTime;index:,sort:desc"`
	UpdatedAt     time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Invoice) TableName() string {
	return "invoices"
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// InvoiceLineItem is the decoded shape of one LineItems element
type InvoiceLineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}
