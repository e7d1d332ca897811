package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
)

// Executor runs a matched workflow's action sequence and records the
// outcome. State machine per run: in_progress -> success | failed.
type Executor struct {
	storage  Storage
	registry *Registry
}

// NewExecutor creates a workflow executor
func NewExecutor(storage Storage, registry *Registry) *Executor {
	return &Executor{storage: storage, registry: registry}
}

// ExecuteWorkflow runs the workflow's active actions in sequence order
// against the triggering event. A failing action does NOT halt the
// sequence: remaining actions still execute, and the run is marked
// failed only at the end. This is deliberate (partial automation beats
// all-or-nothing) and must not be tightened into fail-fast. Exactly one
// execution log row is written no matter how the run ends, including on
// a panic escaping the orchestration loop itself.
func (e *Executor) ExecuteWorkflow(ctx context.Context, trigger models.WorkflowTrigger, workflow models.Workflow, event Event) {
	start := time.Now()

	entry := &models.WorkflowExecutionLog{
		TenantID:        workflow.TenantID,
		WorkflowID:      workflow.ID,
		TriggerID:       trigger.ID,
		ExecutionStatus: models.ExecutionStatusInProgress,
	}
	if snapshot, err := json.Marshal(event.Data); err == nil {
		entry.TriggerEventData = datatypes.JSON(snapshot)
	}

	var actionLogs []ActionLogEntry

	defer func() {
		if rec := recover(); rec != nil {
			entry.ExecutionStatus = models.ExecutionStatusFailed
			entry.ErrorMessage = fmt.Sprintf("workflow execution panicked: %v", rec)
		}
		if encoded, err := json.Marshal(actionLogs); err == nil {
			entry.ActionLogs = datatypes.JSON(encoded)
		}
		entry.ExecutionTimeMs = int(time.Since(start).Milliseconds())

		// The log must land even when the triggering request's context
		// is already gone
		if err := e.storage.AppendExecutionLog(context.WithoutCancel(ctx), entry); err != nil {
			log.Error().
				Err(err).
				Str("workflow_id", workflow.ID.String()).
				Msg("failed to write workflow execution log")
		}
	}()

	actions, err := e.storage.ListActiveActions(ctx, workflow.TenantID, workflow.ID)
	if err != nil {
		entry.ExecutionStatus = models.ExecutionStatusFailed
		entry.ErrorMessage = fmt.Sprintf("failed to load workflow actions: %v", err)
		return
	}

	allSucceeded := true
	for _, action := range actions {
		result := e.runAction(ctx, action, event)
		actionLogs = append(actionLogs, ActionLogEntry{
			ActionID:        action.ID,
			ActionType:      action.ActionType,
			Success:         result.Success,
			Data:            result.Data,
			Error:           result.Error,
			ExecutionTimeMs: result.ExecutionTimeMs,
		})
		if !result.Success {
			allSucceeded = false
			log.Warn().
				Str("workflow_id", workflow.ID.String()).
				Str("action_type", action.ActionType).
				Str("error", result.Error).
				Msg("workflow action failed, continuing sequence")
		}
	}

	if allSucceeded {
		entry.ExecutionStatus = models.ExecutionStatusSuccess
	} else {
		entry.ExecutionStatus = models.ExecutionStatusFailed
	}

	log.Info().
		Str("workflow_id", workflow.ID.String()).
		Str("workflow", workflow.Name).
		Str("status", entry.ExecutionStatus).
		Int("actions", len(actionLogs)).
		Dur("elapsed", time.Since(start)).
		Msg("workflow execution finished")
}

func (e *Executor) runAction(ctx context.Context, action models.WorkflowAction, event Event) ActionResult {
	var config map[string]interface{}
	if len(action.ActionConfiguration) > 0 {
		if err := json.Unmarshal(action.ActionConfiguration, &config); err != nil {
			return ActionResult{Success: false, Error: fmt.Sprintf("malformed action configuration: %v", err)}
		}
	}

	resolved := ResolveConfig(config, event.Data)

	actx := &ActionContext{
		TriggerData: event.Data,
		TenantID:    event.TenantID,
		UserID:      event.UserID,
		Storage:     e.storage,
	}
	return e.registry.Dispatch(ctx, action.ActionType, resolved, actx)
}
