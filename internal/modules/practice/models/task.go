package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Task statuses
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

// Task represents a unit of work assigned within a practice
type Task struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	ClientID    *uuid.UUID     `json:"client_id,omitempty" gorm:"type:uuid;index"`
	Title       string         `json:"title" gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Status      string         `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Priority    string         `json:"priority" gorm:"type:varchar(20);not null;default:'medium'"` // 'low', 'medium', 'high'
	Labels      pq.StringArray `json:"labels" gorm:"type:text[]"`
	AssignedTo  *uuid.UUID     `json:"assigned_to,omitempty" gorm:"type:uuid;index"`
	DueDate     *time.Time     `json:"due_date,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedBy   *uuid.UUID     `json:"created_by,omitempty" gorm:"type:uuid"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime;index:,sort:desc"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
