package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
)

func buildWorkflow(tenantID uuid.UUID) (models.Workflow, models.WorkflowTrigger) {
	workflowID := uuid.New()
	workflow := models.Workflow{
		ID:       workflowID,
		TenantID: tenantID,
		Name:     "Overdue invoice follow-up",
		Status:   models.WorkflowStatusActive,
		IsActive: true,
	}
	trigger := models.WorkflowTrigger{
		ID:            uuid.New(),
		TenantID:      tenantID,
		WorkflowID:    workflowID,
		TriggerModule: "invoices",
		TriggerEvent:  "invoice_created",
		IsActive:      true,
	}
	return workflow, trigger
}

func action(tenantID, workflowID uuid.UUID, actionType string, config map[string]interface{}, order int) models.WorkflowAction {
	encoded, _ := json.Marshal(config)
	return models.WorkflowAction{
		ID:                  uuid.New(),
		TenantID:            tenantID,
		WorkflowID:          workflowID,
		ActionType:          actionType,
		ActionConfiguration: encoded,
		SequenceOrder:       order,
		IsActive:            true,
	}
}

func TestExecuteWorkflow_AllActionsSucceed(t *testing.T) {
	tenantID := uuid.New()
	workflow, trigger := buildWorkflow(tenantID)

	storage := &fakeStorage{}
	storage.actions = []models.WorkflowAction{
		action(tenantID, workflow.ID, ActionCreateTask, map[string]interface{}{
			"title": "Chase payment for {{trigger.client_name}}",
		}, 0),
		action(tenantID, workflow.ID, ActionSendNotification, map[string]interface{}{
			"title": "Invoice created",
		}, 1),
	}

	executor := NewExecutor(storage, NewRegistry(HandlerDeps{}))
	executor.ExecuteWorkflow(context.Background(), trigger, workflow, Event{
		Module:   "invoices",
		Event:    "invoice_created",
		TenantID: tenantID,
		Data:     map[string]interface{}{"client_name": "Acme Corp"},
	})

	require.Len(t, storage.logs, 1)
	entry := storage.logs[0]
	assert.Equal(t, models.ExecutionStatusSuccess, entry.ExecutionStatus)
	assert.Equal(t, workflow.ID, entry.WorkflowID)
	assert.Equal(t, trigger.ID, entry.TriggerID)
	assert.Empty(t, entry.ErrorMessage)

	var actionLogs []ActionLogEntry
	require.NoError(t, json.Unmarshal(entry.ActionLogs, &actionLogs))
	require.Len(t, actionLogs, 2)
	assert.True(t, actionLogs[0].Success)
	assert.True(t, actionLogs[1].Success)

	// template resolved against the event payload
	require.Len(t, storage.tasks, 1)
	assert.Equal(t, "Chase payment for Acme Corp", storage.tasks[0].Title)
}

func TestExecuteWorkflow_FailingActionDoesNotHaltSequence(t *testing.T) {
	tenantID := uuid.New()
	workflow, trigger := buildWorkflow(tenantID)

	storage := &fakeStorage{}
	storage.actions = []models.WorkflowAction{
		action(tenantID, workflow.ID, ActionCreateTask, map[string]interface{}{"title": "First"}, 0),
		action(tenantID, workflow.ID, ActionCreateTask, map[string]interface{}{}, 1), // missing title
		action(tenantID, workflow.ID, ActionCreateTask, map[string]interface{}{"title": "Third"}, 2),
	}

	executor := NewExecutor(storage, NewRegistry(HandlerDeps{}))
	executor.ExecuteWorkflow(context.Background(), trigger, workflow, Event{
		Module:   "invoices",
		Event:    "invoice_created",
		TenantID: tenantID,
		Data:     map[string]interface{}{},
	})

	require.Len(t, storage.logs, 1)
	entry := storage.logs[0]
	assert.Equal(t, models.ExecutionStatusFailed, entry.ExecutionStatus)

	var actionLogs []ActionLogEntry
	require.NoError(t, json.Unmarshal(entry.ActionLogs, &actionLogs))
	require.Len(t, actionLogs, 3)
	assert.True(t, actionLogs[0].Success)
	assert.False(t, actionLogs[1].Success)
	assert.True(t, actionLogs[2].Success)

	// actions one and three still ran
	require.Len(t, storage.tasks, 2)
	assert.Equal(t, "First", storage.tasks[0].Title)
	assert.Equal(t, "Third", storage.tasks[1].Title)
}

func TestExecuteWorkflow_ActionLoadFailureStillWritesLog(t *testing.T) {
	tenantID := uuid.New()
	workflow, trigger := buildWorkflow(tenantID)

	storage := &fakeStorage{listActionsErr: errors.New("connection reset")}
	executor := NewExecutor(storage, NewRegistry(HandlerDeps{}))
	executor.ExecuteWorkflow(context.Background(), trigger, workflow, Event{
		Module:   "invoices",
		Event:    "invoice_created",
		TenantID: tenantID,
	})

	require.Len(t, storage.logs, 1)
	assert.Equal(t, models.ExecutionStatusFailed, storage.logs[0].ExecutionStatus)
	assert.Contains(t, storage.logs[0].ErrorMessage, "failed to load workflow actions")
}

func TestExecuteWorkflow_MalformedActionConfiguration(t *testing.T) {
	tenantID := uuid.New()
	workflow, trigger := buildWorkflow(tenantID)

	storage := &fakeStorage{}
	storage.actions = []models.WorkflowAction{{
		ID:                  uuid.New(),
		TenantID:            tenantID,
		WorkflowID:          workflow.ID,
		ActionType:          ActionCreateTask,
		ActionConfiguration: []byte(`{not json`),
		IsActive:            true,
	}}

	executor := NewExecutor(storage, NewRegistry(HandlerDeps{}))
	executor.ExecuteWorkflow(context.Background(), trigger, workflow, Event{
		Module:   "tasks",
		Event:    "task_created",
		TenantID: tenantID,
	})

	require.Len(t, storage.logs, 1)
	assert.Equal(t, models.ExecutionStatusFailed, storage.logs[0].ExecutionStatus)

	var actionLogs []ActionLogEntry
	require.NoError(t, json.Unmarshal(storage.logs[0].ActionLogs, &actionLogs))
	require.Len(t, actionLogs, 1)
	assert.Contains(t, actionLogs[0].Error, "malformed action configuration")
}

func TestProcessEvent_DropsEventWithoutTenant(t *testing.T) {
	storage := &fakeStorage{findTriggersErr: errors.New("must not be called")}
	eng := New(storage, NewRegistry(HandlerDeps{}), 1)
	eng.Start()
	defer eng.Stop()

	eng.ProcessEvent(Event{Module: "tasks", Event: "task_created"})
	assert.Empty(t, storage.logs)
}

func TestProcessEvent_ZeroMatchesIsNoOp(t *testing.T) {
	storage := &fakeStorage{}
	eng := New(storage, NewRegistry(HandlerDeps{}), 1)
	eng.Start()

	eng.ProcessEvent(Event{Module: "tasks", Event: "task_created", TenantID: uuid.New()})
	eng.Stop()

	assert.Empty(t, storage.logs)
}

func TestProcessEvent_ExecutesMatchedWorkflow(t *testing.T) {
	tenantID := uuid.New()
	workflow, trigger := buildWorkflow(tenantID)

	storage := &fakeStorage{}
	storage.matches = []TriggerMatch{{Trigger: trigger, Workflow: workflow}}
	storage.actions = []models.WorkflowAction{
		action(tenantID, workflow.ID, ActionSendNotification, map[string]interface{}{"title": "ping"}, 0),
	}

	eng := New(storage, NewRegistry(HandlerDeps{}), 2)
	eng.Start()
	eng.ProcessEvent(Event{
		Module:   "invoices",
		Event:    "invoice_created",
		TenantID: tenantID,
		Data:     map[string]interface{}{"total": float64(100)},
	})
	eng.Stop() // drains the queue before returning

	require.Len(t, storage.logs, 1)
	assert.Equal(t, models.ExecutionStatusSuccess, storage.logs[0].ExecutionStatus)
	require.Len(t, storage.notifications, 1)
}

func TestProcessEvent_MatcherFailureIsSwallowed(t *testing.T) {
	storage := &fakeStorage{findTriggersErr: errors.New("db down")}
	eng := New(storage, NewRegistry(HandlerDeps{}), 1)
	eng.Start()

	// must not panic or surface an error
	eng.ProcessEvent(Event{Module: "tasks", Event: "task_created", TenantID: uuid.New()})
	eng.Stop()

	assert.Empty(t, storage.logs)
}

func TestTriggerWorkflow_RunsSynchronously(t *testing.T) {
	tenantID := uuid.New()
	workflow, trigger := buildWorkflow(tenantID)

	storage := &fakeStorage{workflow: &workflow, firstTrigger: &trigger}
	storage.actions = []models.WorkflowAction{
		action(tenantID, workflow.ID, ActionCreateTask, map[string]interface{}{
			"title": "Test run for {{trigger.client_name}}",
		}, 0),
	}

	eng := New(storage, NewRegistry(HandlerDeps{}), 1)
	err := eng.TriggerWorkflow(context.Background(), tenantID, workflow.ID,
		map[string]interface{}{"client_name": "Globex"}, nil)
	require.NoError(t, err)

	// log written without Start/Stop: the test path is synchronous
	require.Len(t, storage.logs, 1)
	assert.Equal(t, models.ExecutionStatusSuccess, storage.logs[0].ExecutionStatus)
	require.Len(t, storage.tasks, 1)
	assert.Equal(t, "Test run for Globex", storage.tasks[0].Title)
}

func TestTriggerWorkflow_UnknownWorkflow(t *testing.T) {
	storage := &fakeStorage{}
	eng := New(storage, NewRegistry(HandlerDeps{}), 1)
	err := eng.TriggerWorkflow(context.Background(), uuid.New(), uuid.New(), nil, nil)
	assert.Error(t, err)
	assert.Empty(t, storage.logs)
}

func TestTriggerWorkflow_WorkflowWithoutTrigger(t *testing.T) {
	tenantID := uuid.New()
	workflow, _ := buildWorkflow(tenantID)

	storage := &fakeStorage{workflow: &workflow}
	eng := New(storage, NewRegistry(HandlerDeps{}), 1)
	err := eng.TriggerWorkflow(context.Background(), tenantID, workflow.ID, nil, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no trigger")
	assert.Empty(t, storage.logs)
}

func TestMatcher_FiltersOnConditions(t *testing.T) {
	tenantID := uuid.New()
	workflow, trigger := buildWorkflow(tenantID)
	trigger.TriggerConditions = []byte(`{"field":"total","operator":"greater_than","value":100}`)

	otherWorkflow, otherTrigger := buildWorkflow(tenantID)
	otherTrigger.TriggerConditions = []byte(`{"field":"total","operator":"greater_than","value":1000}`)

	malformedWorkflow, malformedTrigger := buildWorkflow(tenantID)
	malformedTrigger.TriggerConditions = []byte(`"scalar"`)

	storage := &fakeStorage{matches: []TriggerMatch{
		{Trigger: trigger, Workflow: workflow},
		{Trigger: otherTrigger, Workflow: otherWorkflow},
		{Trigger: malformedTrigger, Workflow: malformedWorkflow},
	}}

	matcher := NewMatcher(storage)
	matches, err := matcher.FindMatchingTriggers(context.Background(), Event{
		Module:   "invoices",
		Event:    "invoice_created",
		TenantID: tenantID,
		Data:     map[string]interface{}{"total": float64(500)},
	})
	require.NoError(t, err)

	// conditions below threshold and malformed conditions are filtered out
	require.Len(t, matches, 1)
	assert.Equal(t, trigger.ID, matches[0].Trigger.ID)
}
