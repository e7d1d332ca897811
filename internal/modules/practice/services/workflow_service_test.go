package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/repositories"
)

func newWorkflowServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Workflow{},
		&models.WorkflowTrigger{},
		&models.WorkflowAction{},
		&models.WorkflowExecutionLog{},
	))
	return db
}

func newWorkflowService(t *testing.T) *WorkflowService {
	t.Helper()
	repo := repositories.NewWorkflowRepo(newWorkflowServiceTestDB(t))
	return NewWorkflowService(repo, nil)
}

func validCreateRequest() *CreateWorkflowRequest {
	return &CreateWorkflowRequest{
		Name:   "Overdue invoice follow-up",
		Status: models.WorkflowStatusActive,
		Triggers: []TriggerInput{{
			Module: "invoices",
			Event:  "invoice_created",
			Conditions: map[string]interface{}{
				"field": "total", "operator": "greater_than", "value": 100,
			},
		}},
		Actions: []ActionInput{{
			Type:          "send_notification",
			Configuration: map[string]interface{}{"title": "Invoice created"},
			SequenceOrder: 0,
		}},
	}
}

func TestWorkflowService_CreateWorkflow(t *testing.T) {
	svc := newWorkflowService(t)
	tenantID := uuid.New()

	wf, err := svc.CreateWorkflow(context.Background(), tenantID, nil, validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusActive, wf.Status)
	assert.True(t, wf.IsActive)
	require.Len(t, wf.Triggers, 1)
	assert.Equal(t, "invoices", wf.Triggers[0].TriggerModule)
	assert.NotEmpty(t, wf.Triggers[0].TriggerConditions)
	require.Len(t, wf.Actions, 1)
}

func TestWorkflowService_CreateWorkflow_Validation(t *testing.T) {
	svc := newWorkflowService(t)
	tenantID := uuid.New()

	t.Run("name is required", func(t *testing.T) {
		req := validCreateRequest()
		req.Name = ""
		_, err := svc.CreateWorkflow(context.Background(), tenantID, nil, req)
		assert.Error(t, err)
	})

	t.Run("status must be known", func(t *testing.T) {
		req := validCreateRequest()
		req.Status = "running"
		_, err := svc.CreateWorkflow(context.Background(), tenantID, nil, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid workflow status")
	})

	t.Run("empty status defaults to draft", func(t *testing.T) {
		req := validCreateRequest()
		req.Status = ""
		wf, err := svc.CreateWorkflow(context.Background(), tenantID, nil, req)
		require.NoError(t, err)
		assert.Equal(t, models.WorkflowStatusDraft, wf.Status)
	})

	t.Run("trigger needs module and event", func(t *testing.T) {
		req := validCreateRequest()
		req.Triggers[0].Event = ""
		_, err := svc.CreateWorkflow(context.Background(), tenantID, nil, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "module and event are required")
	})

	t.Run("malformed conditions are rejected", func(t *testing.T) {
		req := validCreateRequest()
		req.Triggers[0].Conditions = "status = active"
		_, err := svc.CreateWorkflow(context.Background(), tenantID, nil, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid conditions")
	})

	t.Run("action needs a type", func(t *testing.T) {
		req := validCreateRequest()
		req.Actions[0].Type = ""
		_, err := svc.CreateWorkflow(context.Background(), tenantID, nil, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "type is required")
	})
}

func TestWorkflowService_UpdateWorkflow_ReplacesSets(t *testing.T) {
	svc := newWorkflowService(t)
	tenantID := uuid.New()

	wf, err := svc.CreateWorkflow(context.Background(), tenantID, nil, validCreateRequest())
	require.NoError(t, err)

	name := "Renamed follow-up"
	status := models.WorkflowStatusPaused
	updated, err := svc.UpdateWorkflow(context.Background(), tenantID, wf.ID, nil, &UpdateWorkflowRequest{
		Name:   &name,
		Status: &status,
		Triggers: []TriggerInput{
			{Module: "tasks", Event: "task_completed"},
			{Module: "clients", Event: "client_created"},
		},
		Actions: []ActionInput{{
			Type:          "create_task",
			Configuration: map[string]interface{}{"title": "Review"},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed follow-up", updated.Name)
	assert.Equal(t, models.WorkflowStatusPaused, updated.Status)

	// the old trigger/action sets are fully replaced
	require.Len(t, updated.Triggers, 2)
	require.Len(t, updated.Actions, 1)
	assert.Equal(t, "create_task", updated.Actions[0].ActionType)
}

func TestWorkflowService_UpdateWorkflow_Errors(t *testing.T) {
	svc := newWorkflowService(t)
	tenantID := uuid.New()

	t.Run("unknown workflow", func(t *testing.T) {
		_, err := svc.UpdateWorkflow(context.Background(), tenantID, uuid.New(), nil, &UpdateWorkflowRequest{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "workflow not found")
	})

	t.Run("invalid status", func(t *testing.T) {
		wf, err := svc.CreateWorkflow(context.Background(), tenantID, nil, validCreateRequest())
		require.NoError(t, err)

		bad := "running"
		_, err = svc.UpdateWorkflow(context.Background(), tenantID, wf.ID, nil, &UpdateWorkflowRequest{Status: &bad})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid workflow status")
	})
}

func TestWorkflowService_DeleteWorkflow(t *testing.T) {
	svc := newWorkflowService(t)
	tenantID := uuid.New()

	wf, err := svc.CreateWorkflow(context.Background(), tenantID, nil, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteWorkflow(context.Background(), tenantID, wf.ID))

	_, err = svc.GetWorkflow(context.Background(), tenantID, wf.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = svc.DeleteWorkflow(context.Background(), tenantID, wf.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workflow not found")
}

func TestWorkflowService_TenantIsolation(t *testing.T) {
	svc := newWorkflowService(t)

	wf, err := svc.CreateWorkflow(context.Background(), uuid.New(), nil, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.GetWorkflow(context.Background(), uuid.New(), wf.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	list, err := svc.ListWorkflows(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, list)
}
