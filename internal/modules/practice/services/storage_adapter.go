package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bagusramadhan/practice-suite-be/internal/core/engine"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/repositories"
)

// Columns action handlers may touch through the generic
// update_entity_field path. Anything else is rejected so a workflow
// cannot rewrite ids, tenancy, or audit columns.
var updatableEntityFields = map[string]map[string]bool{
	"tasks": {
		"title": true, "description": true, "status": true,
		"priority": true, "due_date": true, "assigned_to": true,
	},
	"clients": {
		"name": true, "email": true, "phone": true,
		"company_name": true, "status": true, "assigned_user": true,
	},
	"invoices": {
		"status": true, "due_date": true, "notes": true,
	},
}

// assignableEntities maps entity name to its assignee column
var assignableEntities = map[string]string{
	"tasks":   "assigned_to",
	"clients": "assigned_user",
}

// StorageAdapter implements engine.Storage over the practice
// repositories. It is the only seam between the automation engine and
// the database.
type StorageAdapter struct {
	workflows     repositories.WorkflowRepo
	tasks         repositories.TaskRepo
	clients       repositories.ClientRepo
	invoices      repositories.InvoiceRepo
	notifications repositories.NotificationRepo
}

// NewStorageAdapter creates the engine storage adapter
func NewStorageAdapter(
	workflows repositories.WorkflowRepo,
	tasks repositories.TaskRepo,
	clients repositories.ClientRepo,
	invoices repositories.InvoiceRepo,
	notifications repositories.NotificationRepo,
) *StorageAdapter {
	return &StorageAdapter{
		workflows:     workflows,
		tasks:         tasks,
		clients:       clients,
		invoices:      invoices,
		notifications: notifications,
	}
}

func (a *StorageAdapter) FindMatchingTriggers(ctx context.Context, tenantID uuid.UUID, module, event string) ([]engine.TriggerMatch, error) {
	rows, err := a.workflows.FindMatchingTriggers(ctx, tenantID, module, event)
	if err != nil {
		return nil, err
	}
	matches := make([]engine.TriggerMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, engine.TriggerMatch{Trigger: row.Trigger, Workflow: row.Workflow})
	}
	return matches, nil
}

func (a *StorageAdapter) GetWorkflow(ctx context.Context, tenantID, workflowID uuid.UUID) (*models.Workflow, error) {
	return a.workflows.FindByID(ctx, tenantID, workflowID)
}

func (a *StorageAdapter) FirstTrigger(ctx context.Context, tenantID, workflowID uuid.UUID) (*models.WorkflowTrigger, error) {
	return a.workflows.FirstTrigger(ctx, tenantID, workflowID)
}

func (a *StorageAdapter) ListActiveActions(ctx context.Context, tenantID, workflowID uuid.UUID) ([]models.WorkflowAction, error) {
	return a.workflows.ListActiveActions(ctx, tenantID, workflowID)
}

func (a *StorageAdapter) AppendExecutionLog(ctx context.Context, entry *models.WorkflowExecutionLog) error {
	return a.workflows.CreateExecutionLog(ctx, entry)
}

func (a *StorageAdapter) CreateTask(ctx context.Context, task *models.Task) error {
	return a.tasks.Create(ctx, task)
}

func (a *StorageAdapter) UpdateTaskFields(ctx context.Context, tenantID, taskID uuid.UUID, fields map[string]interface{}) error {
	filtered, err := filterFields("tasks", fields)
	if err != nil {
		return err
	}
	return a.tasks.UpdateFields(ctx, tenantID, taskID, filtered)
}

func (a *StorageAdapter) UpdateClientFields(ctx context.Context, tenantID, clientID uuid.UUID, fields map[string]interface{}) error {
	filtered, err := filterFields("clients", fields)
	if err != nil {
		return err
	}
	return a.clients.UpdateFields(ctx, tenantID, clientID, filtered)
}

func (a *StorageAdapter) UpdateEntityFields(ctx context.Context, tenantID uuid.UUID, entity string, entityID uuid.UUID, fields map[string]interface{}) error {
	filtered, err := filterFields(entity, fields)
	if err != nil {
		return err
	}
	switch entity {
	case "tasks":
		return a.tasks.UpdateFields(ctx, tenantID, entityID, filtered)
	case "clients":
		return a.clients.UpdateFields(ctx, tenantID, entityID, filtered)
	case "invoices":
		return a.invoices.UpdateFields(ctx, tenantID, entityID, filtered)
	default:
		return fmt.Errorf("unsupported entity %q", entity)
	}
}

func (a *StorageAdapter) AssignUser(ctx context.Context, tenantID uuid.UUID, entity string, entityID, userID uuid.UUID) error {
	column, ok := assignableEntities[entity]
	if !ok {
		return fmt.Errorf("entity %q does not support assignment", entity)
	}
	fields := map[string]interface{}{column: userID}
	switch entity {
	case "tasks":
		return a.tasks.UpdateFields(ctx, tenantID, entityID, fields)
	case "clients":
		return a.clients.UpdateFields(ctx, tenantID, entityID, fields)
	default:
		return fmt.Errorf("entity %q does not support assignment", entity)
	}
}

func (a *StorageAdapter) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	if invoice.InvoiceNumber == "" {
		number, err := a.invoices.NextInvoiceNumber(ctx, invoice.TenantID)
		if err != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", err)
		}
		invoice.InvoiceNumber = number
	}
	return a.invoices.Create(ctx, invoice)
}

func (a *StorageAdapter) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return a.notifications.Create(ctx, notification)
}

// filterFields drops columns not on the entity's allowlist. An update
// that would touch zero allowed columns is an error, not a silent no-op.
func filterFields(entity string, fields map[string]interface{}) (map[string]interface{}, error) {
	allowed, ok := updatableEntityFields[entity]
	if !ok {
		return nil, fmt.Errorf("unsupported entity %q", entity)
	}
	filtered := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if allowed[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no updatable fields for entity %q", entity)
	}
	return filtered, nil
}
