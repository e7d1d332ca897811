package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/bagusramadhan/practice-suite-be/internal/core/engine"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/repositories"
)

// TriggerInput is one trigger definition in a create/update payload
type TriggerInput struct {
	Module     string      `json:"module"`
	Event      string      `json:"event"`
	Conditions interface{} `json:"conditions,omitempty"`
	IsActive   *bool       `json:"is_active,omitempty"`
}

// ActionInput is one action definition in a create/update payload
type ActionInput struct {
	Type          string                 `json:"type"`
	Configuration map[string]interface{} `json:"configuration"`
	SequenceOrder int                    `json:"sequence_order"`
	IsActive      *bool                  `json:"is_active,omitempty"`
}

// CreateWorkflowRequest is the payload for creating a workflow
type CreateWorkflowRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	IsActive    *bool          `json:"is_active,omitempty"`
	Triggers    []TriggerInput `json:"triggers"`
	Actions     []ActionInput  `json:"actions"`
}

// UpdateWorkflowRequest is the payload for updating a workflow. Triggers
// and actions are full replacement sets, not diffs.
type UpdateWorkflowRequest struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *string        `json:"status,omitempty"`
	IsActive    *bool          `json:"is_active,omitempty"`
	Triggers    []TriggerInput `json:"triggers"`
	Actions     []ActionInput  `json:"actions"`
}

var validWorkflowStatuses = map[string]bool{
	models.WorkflowStatusDraft:    true,
	models.WorkflowStatusActive:   true,
	models.WorkflowStatusPaused:   true,
	models.WorkflowStatusArchived: true,
}

// WorkflowService handles workflow definition CRUD and manual runs
type WorkflowService struct {
	workflowRepo repositories.WorkflowRepo
	engine       *engine.Engine
}

// NewWorkflowService creates a new workflow service
func NewWorkflowService(workflowRepo repositories.WorkflowRepo, eng *engine.Engine) *WorkflowService {
	return &WorkflowService{
		workflowRepo: workflowRepo,
		engine:       eng,
	}
}

// CreateWorkflow creates a workflow with its trigger and action sets
func (s *WorkflowService) CreateWorkflow(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req *CreateWorkflowRequest) (*models.Workflow, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("workflow name is required")
	}

	status := req.Status
	if status == "" {
		status = models.WorkflowStatusDraft
	}
	if !validWorkflowStatuses[status] {
		return nil, fmt.Errorf("invalid workflow status: %s", status)
	}

	triggers, err := buildTriggers(req.Triggers)
	if err != nil {
		return nil, err
	}
	actions, err := buildActions(req.Actions)
	if err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	wf := &models.Workflow{
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		IsActive:    isActive,
		CreatedBy:   userID,
		UpdatedBy:   userID,
	}

	if err := s.workflowRepo.Create(ctx, wf, triggers, actions); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	log.Printf("✅ Workflow created: %s (ID: %s)", wf.Name, wf.ID)
	return s.workflowRepo.FindByID(ctx, tenantID, wf.ID)
}

// ListWorkflows lists all workflows for a tenant
func (s *WorkflowService) ListWorkflows(ctx context.Context, tenantID uuid.UUID) ([]models.Workflow, error) {
	return s.workflowRepo.FindByTenant(ctx, tenantID)
}

// GetWorkflow retrieves a workflow with its triggers and actions
func (s *WorkflowService) GetWorkflow(ctx context.Context, tenantID, workflowID uuid.UUID) (*models.Workflow, error) {
	return s.workflowRepo.FindByID(ctx, tenantID, workflowID)
}

// UpdateWorkflow updates a workflow and replaces its full trigger and
// action sets in one transaction
func (s *WorkflowService) UpdateWorkflow(ctx context.Context, tenantID uuid.UUID, workflowID uuid.UUID, userID *uuid.UUID, req *UpdateWorkflowRequest) (*models.Workflow, error) {
	wf, err := s.workflowRepo.FindByID(ctx, tenantID, workflowID)
	if err != nil {
		return nil, fmt.Errorf("workflow not found: %w", err)
	}

	if req.Name != nil {
		wf.Name = *req.Name
	}
	if req.Description != nil {
		wf.Description = *req.Description
	}
	if req.Status != nil {
		if !validWorkflowStatuses[*req.Status] {
			return nil, fmt.Errorf("invalid workflow status: %s", *req.Status)
		}
		wf.Status = *req.Status
	}
	if req.IsActive != nil {
		wf.IsActive = *req.IsActive
	}
	wf.UpdatedBy = userID

	triggers, err := buildTriggers(req.Triggers)
	if err != nil {
		return nil, err
	}
	actions, err := buildActions(req.Actions)
	if err != nil {
		return nil, err
	}

	// Detach associations so Save doesn't upsert stale rows alongside
	// the replacement sets
	wf.Triggers = nil
	wf.Actions = nil

	if err := s.workflowRepo.Replace(ctx, wf, triggers, actions); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	log.Printf("✅ Workflow updated: %s (ID: %s)", wf.Name, wf.ID)
	return s.workflowRepo.FindByID(ctx, tenantID, wf.ID)
}

// DeleteWorkflow deletes a workflow with its triggers and actions
func (s *WorkflowService) DeleteWorkflow(ctx context.Context, tenantID, workflowID uuid.UUID) error {
	if _, err := s.workflowRepo.FindByID(ctx, tenantID, workflowID); err != nil {
		return fmt.Errorf("workflow not found: %w", err)
	}
	if err := s.workflowRepo.Delete(ctx, tenantID, workflowID); err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	log.Printf("✅ Workflow deleted: %s", workflowID)
	return nil
}

// TriggerWorkflow manually runs one workflow with test data,
// synchronously, producing a normal execution log entry
func (s *WorkflowService) TriggerWorkflow(ctx context.Context, tenantID, workflowID uuid.UUID, testData map[string]interface{}, userID *uuid.UUID) error {
	return s.engine.TriggerWorkflow(ctx, tenantID, workflowID, testData, userID)
}

// GetExecutions retrieves execution history for a workflow
func (s *WorkflowService) GetExecutions(ctx context.Context, tenantID, workflowID uuid.UUID, limit int) ([]models.WorkflowExecutionLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.workflowRepo.FindExecutions(ctx, tenantID, workflowID, limit)
}

// buildTriggers validates trigger inputs and converts them to rows.
// Conditions must parse as a condition tree before they are stored.
func buildTriggers(inputs []TriggerInput) ([]models.WorkflowTrigger, error) {
	triggers := make([]models.WorkflowTrigger, 0, len(inputs))
	for i, in := range inputs {
		if in.Module == "" || in.Event == "" {
			return nil, fmt.Errorf("trigger %d: module and event are required", i)
		}

		var conditionsJSON datatypes.JSON
		if in.Conditions != nil {
			raw, err := json.Marshal(in.Conditions)
			if err != nil {
				return nil, fmt.Errorf("trigger %d: failed to marshal conditions: %w", i, err)
			}
			if _, err := engine.ParseConditions(raw); err != nil {
				return nil, fmt.Errorf("trigger %d: invalid conditions: %w", i, err)
			}
			conditionsJSON = raw
		}

		isActive := true
		if in.IsActive != nil {
			isActive = *in.IsActive
		}

		triggers = append(triggers, models.WorkflowTrigger{
			TriggerModule:     in.Module,
			TriggerEvent:      in.Event,
			TriggerConditions: conditionsJSON,
			IsActive:          isActive,
		})
	}
	return triggers, nil
}

// buildActions validates action inputs and converts them to rows
func buildActions(inputs []ActionInput) ([]models.WorkflowAction, error) {
	actions := make([]models.WorkflowAction, 0, len(inputs))
	for i, in := range inputs {
		if in.Type == "" {
			return nil, fmt.Errorf("action %d: type is required", i)
		}

		config := in.Configuration
		if config == nil {
			config = map[string]interface{}{}
		}
		configJSON, err := json.Marshal(config)
		if err != nil {
			return nil, fmt.Errorf("action %d: failed to marshal configuration: %w", i, err)
		}

		isActive := true
		if in.IsActive != nil {
			isActive = *in.IsActive
		}

		actions = append(actions, models.WorkflowAction{
			ActionType:          in.Type,
			ActionConfiguration: configJSON,
			SequenceOrder:       in.SequenceOrder,
			IsActive:            isActive,
		})
	}
	return actions, nil
}
