package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
)

// Event is a domain occurrence emitted by business logic after a
// tenant-scoped mutation. Module and Event are matched case-sensitively
// against trigger records.
type Event struct {
	Module   string                 `json:"module"`
	Event    string                 `json:"event"`
	TenantID uuid.UUID              `json:"tenant_id"`
	UserID   *uuid.UUID             `json:"user_id,omitempty"`
	Data     map[string]interface{} `json:"data"`
}

// ActionResult is the uniform envelope every action handler returns.
// Handlers convert their own failures into Success=false; they never
// let an error escape past this boundary.
type ActionResult struct {
	Success         bool        `json:"success"`
	Data            interface{} `json:"data,omitempty"`
	Error           string      `json:"error,omitempty"`
	ExecutionTimeMs int64       `json:"execution_time_ms"`
}

// ActionLogEntry is one element of an execution log's action_logs array
type ActionLogEntry struct {
	ActionID        uuid.UUID   `json:"action_id"`
	ActionType      string      `json:"action_type"`
	Success         bool        `json:"success"`
	Data            interface{} `json:"data,omitempty"`
	Error           string      `json:"error,omitempty"`
	ExecutionTimeMs int64       `json:"execution_time_ms"`
}

// ActionContext carries the execution context into action handlers
type ActionContext struct {
	TriggerData map[string]interface{}
	TenantID    uuid.UUID
	UserID      *uuid.UUID
	Storage     Storage
}

// TriggerMatch pairs a matched trigger with its owning workflow
type TriggerMatch struct {
	Trigger  models.WorkflowTrigger
	Workflow models.Workflow
}

// Storage is the persistence collaborator the engine consumes but does
// not own. Every operation is tenant-scoped. The practice module
// supplies the implementation.
type Storage interface {
	// Workflow definition reads
	FindMatchingTriggers(ctx context.Context, tenantID uuid.UUID, module, event string) ([]TriggerMatch, error)
	GetWorkflow(ctx context.Context, tenantID, workflowID uuid.UUID) (*models.Workflow, error)
	FirstTrigger(ctx context.Context, tenantID, workflowID uuid.UUID) (*models.WorkflowTrigger, error)
	ListActiveActions(ctx context.Context, tenantID, workflowID uuid.UUID) ([]models.WorkflowAction, error)

	// Execution log append (exactly one row per execution attempt)
	AppendExecutionLog(ctx context.Context, entry *models.WorkflowExecutionLog) error

	// Domain operations consumed by action handlers
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateTaskFields(ctx context.Context, tenantID, taskID uuid.UUID, fields map[string]interface{}) error
	UpdateClientFields(ctx context.Context, tenantID, clientID uuid.UUID, fields map[string]interface{}) error
	UpdateEntityFields(ctx context.Context, tenantID uuid.UUID, entity string, entityID uuid.UUID, fields map[string]interface{}) error
	AssignUser(ctx context.Context, tenantID uuid.UUID, entity string, entityID, userID uuid.UUID) error
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	CreateNotification(ctx context.Context, notification *models.Notification) error
}

// EmailSender is the outbound email collaborator used by the
// send_email action
type EmailSender interface {
	SendEmail(to, subject, body string) error
}
