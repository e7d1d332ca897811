package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification is an in-app notification row, written by the
// automation engine's send_notification action and by services.
type Notification struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	UserID    *uuid.UUID     `json:"user_id,omitempty" gorm:"type:uuid;index"`
	Title     string         `json:"title" gorm:"type:varchar(255);not null"`
	Message   string         `json:"message" gorm:"type:text"`
	Kind      string         `json:"kind" gorm:"type:varchar(50);not null;default:'info'"`
	Data      datatypes.JSON `json:"data,omitempty" gorm:"type:jsonb"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime;index:,sort:desc"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
