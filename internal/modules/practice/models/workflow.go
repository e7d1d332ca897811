package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Workflow statuses. A workflow executes only when Status is
// StatusActive AND IsActive is true; the boolean is an independent
// kill switch the admin UI toggles without losing the status.
const (
	WorkflowStatusDraft    = "draft"
	WorkflowStatusActive   = "active"
	WorkflowStatusPaused   = "paused"
	WorkflowStatusArchived = "archived"
)

// Workflow represents a tenant-defined automation rule
type Workflow struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID  `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Name        string     `json:"name" gorm:"type:varchar(255);not null"`
	Description string     `json:"description" gorm:"type:text"`
	Status      string     `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	IsActive    bool       `json:"is_active" gorm:"default:true;index"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty" gorm:"type:uuid"`
	UpdatedBy   *uuid.UUID `json:"updated_by,omitempty" gorm:"type:uuid"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime;index:,sort:desc"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Triggers []WorkflowTrigger `json:"triggers,omitempty" gorm:"foreignKey:WorkflowID;constraint:OnDelete:CASCADE"`
	Actions  []WorkflowAction  `json:"actions,omitempty" gorm:"foreignKey:WorkflowID;constraint:OnDelete:CASCADE"`
}

func (Workflow) TableName() string {
	return "workflows"
}

func (w *Workflow) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// WorkflowTrigger defines when a workflow fires: a (module, event) pair
// plus an optional condition tree evaluated against the event payload.
type WorkflowTrigger struct {
	ID                uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID          uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	WorkflowID        uuid.UUID      `json:"workflow_id" gorm:"type:uuid;not null;index"`
	TriggerModule     string         `json:"trigger_module" gorm:"type:varchar(100);not null;index:idx_trigger_match"`
	TriggerEvent      string         `json:"trigger_event" gorm:"type:varchar(100);not null;index:idx_trigger_match"`
	TriggerConditions datatypes.JSON `json:"trigger_conditions,omitempty" gorm:"type:jsonb"`
	IsActive          bool           `json:"is_active" gorm:"default:true;index"`
	CreatedAt         time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

func (WorkflowTrigger) TableName() string {
	return "workflow_triggers"
}

func (t *WorkflowTrigger) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// WorkflowAction is one step of a workflow's action sequence, executed
// in ascending SequenceOrder.
type WorkflowAction struct {
	ID                  uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID            uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	WorkflowID          uuid.UUID      `json:"workflow_id" gorm:"type:uuid;not null;index"`
	ActionType          string         `json:"action_type" gorm:"type:varchar(100);not null"`
	ActionConfiguration datatypes.JSON `json:"action_configuration" gorm:"type:jsonb;not null;default:'{}'"`
	SequenceOrder       int            `json:"sequence_order" gorm:"not null;default:0;index"`
	IsActive            bool           `json:"is_active" gorm:"default:true"`
	CreatedAt           time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

func (WorkflowAction) TableName() string {
	return "workflow_actions"
}

func (a *WorkflowAction) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Execution statuses
const (
	ExecutionStatusInProgress = "in_progress"
	ExecutionStatusSuccess    = "success"
	ExecutionStatusFailed     = "failed"
)

// WorkflowExecutionLog is the append-only audit record of one workflow
// run. It is written exactly once per execution attempt and never
// mutated afterwards; cleanup is handled by the retention sweeper.
type WorkflowExecutionLog struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID         uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	WorkflowID       uuid.UUID      `json:"workflow_id" gorm:"type:uuid;not null;index"`
	TriggerID        uuid.UUID      `json:"trigger_id" gorm:"type:uuid;not null"`
	TriggerEventData datatypes.JSON `json:"trigger_event_data" gorm:"type:jsonb"`
	ExecutionStatus  string         `json:"execution_status" gorm:"type:varchar(20);not null;index"`
	ActionLogs       datatypes.JSON `json:"action_logs" gorm:"type:jsonb;default:'[]'"`
	ErrorMessage     string         `json:"error_message,omitempty" gorm:"type:text"`
	ExecutionTimeMs  int            `json:"execution_time_ms"`
	ExecutedAt       time.Time      `json:"executed_at" gorm:"autoCreateTime;index:,sort:desc"`
}

func (WorkflowExecutionLog) TableName() string {
	return "workflow_execution_logs"
}

func (l *WorkflowExecutionLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
