package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Client represents a practice client (the firm's customer)
type Client struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Name         string         `json:"name" gorm:"type:varchar(255);not null"`
	Email        string         `json:"email" gorm:"type:varchar(255)"`
	Phone        string         `json:"phone" gorm:"type:varchar(50)"`
	CompanyName  string         `json:"company_name" gorm:"type:varchar(255)"`
	Status       string         `json:"status" gorm:"type:varchar(20);not null;default:'active';index"` // 'active', 'inactive', 'archived'
	Tags         pq.StringArray `json:"tags" gorm:"type:text[]"`
	AssignedUser *uuid.UUID     `json:"assigned_user,omitempty" gorm:"type:uuid"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime;index:,sort:desc"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Client) TableName() string {
	return "clients"
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
