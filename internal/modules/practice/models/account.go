package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account represents one node of the tenant's chart of accounts.
// Accounts form a tree via ParentID; report balances roll up from
// leaves to the root.
type Account struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID  `json:"tenant_id" gorm:"type:uuid;not null;index"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty" gorm:"type:uuid;index"`
	Code        string     `json:"code" gorm:"type:varchar(20);not null"`
	Name        string     `json:"name" gorm:"type:varchar(255);not null"`
	AccountType string     `json:"account_type" gorm:"type:varchar(20);not null"` // 'asset', 'liability', 'equity', 'income', 'expense'
	Balance     float64    `json:"balance" gorm:"type:numeric(14,2);default:0"`
	IsActive    bool       `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
