package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
)

// TriggerWithWorkflow pairs a trigger row with its owning workflow
type TriggerWithWorkflow struct {
	Trigger  models.WorkflowTrigger
	Workflow models.Workflow
}

// WorkflowRepo interface for workflow database operations
type WorkflowRepo interface {
	Create(ctx context.Context, workflow *models.Workflow, triggers []models.WorkflowTrigger, actions []models.WorkflowAction) error
	Replace(ctx context.Context, workflow *models.Workflow, triggers []models.WorkflowTrigger, actions []models.WorkflowAction) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Workflow, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Workflow, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	FindMatchingTriggers(ctx context.Context, tenantID uuid.UUID, module, event string) ([]TriggerWithWorkflow, error)
	FirstTrigger(ctx context.Context, tenantID, workflowID uuid.UUID) (*models.WorkflowTrigger, error)
	ListActiveActions(ctx context.Context, tenantID, workflowID uuid.UUID) ([]models.WorkflowAction, error)

	CreateExecutionLog(ctx context.Context, entry *models.WorkflowExecutionLog) error
	FindExecutions(ctx context.Context, tenantID, workflowID uuid.UUID, limit int) ([]models.WorkflowExecutionLog, error)
	DeleteExecutionsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type workflowRepo struct {
	db *gorm.DB
}

// NewWorkflowRepo creates a new workflow repository
func NewWorkflowRepo(db *gorm.DB) WorkflowRepo {
	return &workflowRepo{db: db}
}

func (r *workflowRepo) Create(ctx context.Context, workflow *models.Workflow, triggers []models.WorkflowTrigger, actions []models.WorkflowAction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workflow).Error; err != nil {
			return err
		}
		return createTriggersAndActions(tx, workflow, triggers, actions)
	})
}

// Replace updates the workflow row and swaps its full trigger/action
// sets. Existing triggers and actions are deleted and recreated in one
// transaction, not diffed.
func (r *workflowRepo) Replace(ctx context.Context, workflow *models.Workflow, triggers []models.WorkflowTrigger, actions []models.WorkflowAction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(workflow).Error; err != nil {
			return err
		}
		if err := tx.Where("workflow_id = ? AND tenant_id = ?", workflow.ID, workflow.TenantID).
			Delete(&models.WorkflowTrigger{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workflow_id = ? AND tenant_id = ?", workflow.ID, workflow.TenantID).
			Delete(&models.WorkflowAction{}).Error; err != nil {
			return err
		}
		return createTriggersAndActions(tx, workflow, triggers, actions)
	})
}

func createTriggersAndActions(tx *gorm.DB, workflow *models.Workflow, triggers []models.WorkflowTrigger, actions []models.WorkflowAction) error {
	for i := range triggers {
		triggers[i].WorkflowID = workflow.ID
		triggers[i].TenantID = workflow.TenantID
	}
	for i := range actions {
		actions[i].WorkflowID = workflow.ID
		actions[i].TenantID = workflow.TenantID
	}
	if len(triggers) > 0 {
		if err := tx.Create(&triggers).Error; err != nil {
			return err
		}
	}
	if len(actions) > 0 {
		if err := tx.Create(&actions).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *workflowRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Workflow, error) {
	var workflow models.Workflow
	err := r.db.WithContext(ctx).
		Preload("Triggers").
		Preload("Actions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order ASC")
		}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&workflow).Error
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *workflowRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Workflow, error) {
	var workflows []models.Workflow
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&workflows).Error
	return workflows, err
}

func (r *workflowRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workflow_id = ? AND tenant_id = ?", id, tenantID).
			Delete(&models.WorkflowTrigger{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workflow_id = ? AND tenant_id = ?", id, tenantID).
			Delete(&models.WorkflowAction{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND tenant_id = ?", id, tenantID).
			Delete(&models.Workflow{}).Error
	})
}

// FindMatchingTriggers loads active triggers for the (module, event)
// pair whose owning workflow is active, ordered by trigger id for
// deterministic matching.
func (r *workflowRepo) FindMatchingTriggers(ctx context.Context, tenantID uuid.UUID, module, event string) ([]TriggerWithWorkflow, error) {
	var triggers []models.WorkflowTrigger
	err := r.db.WithContext(ctx).
		Joins("JOIN workflows ON workflows.id = workflow_triggers.workflow_id").
		Where("workflow_triggers.tenant_id = ?", tenantID).
		Where("workflow_triggers.trigger_module = ? AND workflow_triggers.trigger_event = ?", module, event).
		Where("workflow_triggers.is_active = ?", true).
		Where("workflows.is_active = ? AND workflows.status = ?", true, models.WorkflowStatusActive).
		Order("workflow_triggers.id ASC").
		Find(&triggers).Error
	if err != nil {
		return nil, err
	}
	if len(triggers) == 0 {
		return nil, nil
	}

	workflowIDs := make([]uuid.UUID, 0, len(triggers))
	for _, t := range triggers {
		workflowIDs = append(workflowIDs, t.WorkflowID)
	}
	var workflows []models.Workflow
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND tenant_id = ?", workflowIDs, tenantID).
		Find(&workflows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Workflow, len(workflows))
	for _, w := range workflows {
		byID[w.ID] = w
	}

	matches := make([]TriggerWithWorkflow, 0, len(triggers))
	for _, t := range triggers {
		workflow, ok := byID[t.WorkflowID]
		if !ok {
			continue
		}
		matches = append(matches, TriggerWithWorkflow{Trigger: t, Workflow: workflow})
	}
	return matches, nil
}

func (r *workflowRepo) FirstTrigger(ctx context.Context, tenantID, workflowID uuid.UUID) (*models.WorkflowTrigger, error) {
	var trigger models.WorkflowTrigger
	err := r.db.WithContext(ctx).
		Where("workflow_id = ? AND tenant_id = ?", workflowID, tenantID).
		Order("created_at ASC, id ASC").
		First(&trigger).Error
	if err != nil {
		return nil, err
	}
	return &trigger, nil
}

func (r *workflowRepo) ListActiveActions(ctx context.Context, tenantID, workflowID uuid.UUID) ([]models.WorkflowAction, error) {
	var actions []models.WorkflowAction
	err := r.db.WithContext(ctx).
		Where("workflow_id = ? AND tenant_id = ? AND is_active = ?", workflowID, tenantID, true).
		Order("sequence_order ASC, id ASC").
		Find(&actions).Error
	return actions, err
}

func (r *workflowRepo) CreateExecutionLog(ctx context.Context, entry *models.WorkflowExecutionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *workflowRepo) FindExecutions(ctx context.Context, tenantID, workflowID uuid.UUID, limit int) ([]models.WorkflowExecutionLog, error) {
	var executions []models.WorkflowExecutionLog
	query := r.db.WithContext(ctx).
		Where("workflow_id = ? AND tenant_id = ?", workflowID, tenantID).
		Order("executed_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&executions).Error
	return executions, err
}

func (r *workflowRepo) DeleteExecutionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("executed_at < ?", cutoff).
		Delete(&models.WorkflowExecutionLog{})
	return result.RowsAffected, result.Error
}
