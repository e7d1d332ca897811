package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
)

const executionTimeout = 5 * time.Minute

type executionJob struct {
	trigger  models.WorkflowTrigger
	workflow models.Workflow
	event    Event
}

// Engine is the workflow automation engine. It is constructed once at
// the composition root and injected into every service that emits
// domain events; there is no package-level instance.
type Engine struct {
	storage  Storage
	matcher  *Matcher
	executor *Executor

	workers int
	jobs    chan executionJob
	wg      sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates an engine over the given storage and action registry.
// workers bounds how many workflow executions run concurrently.
func New(storage Storage, registry *Registry, workers int) *Engine {
	if workers <= 0 {
		workers = 4
	}
	return &Engine{
		storage:  storage,
		matcher:  NewMatcher(storage),
		executor: NewExecutor(storage, registry),
		workers:  workers,
		jobs:     make(chan executionJob, 256),
	}
}

// Start launches the execution workers
func (e *Engine) Start() {
	e.startOnce.Do(func() {
		for i := 0; i < e.workers; i++ {
			e.wg.Add(1)
			go e.worker()
		}
		log.Info().Int("workers", e.workers).Msg("workflow engine started")
	})
}

// Stop drains queued executions and waits for in-flight ones
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.jobs)
		e.wg.Wait()
		log.Info().Msg("workflow engine stopped")
	})
}

func (e *Engine) worker() {
	defer e.wg.Done()
	for job := range e.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), executionTimeout)
		e.executor.ExecuteWorkflow(ctx, job.trigger, job.workflow, job.event)
		cancel()
	}
}

// ProcessEvent is the engine's sole public entry point for domain
// events. It matches the event against the tenant's triggers and hands
// matched workflows to the background workers, decoupling execution
// from the emitting request's response path. It never panics and never
// reports an error to the caller: automation failing must not fail the
// business operation that emitted the event. Zero matches is a fast
// no-op.
func (e *Engine) ProcessEvent(event Event) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Interface("panic", rec).
				Str("module", event.Module).
				Str("event", event.Event).
				Msg("workflow event processing panicked")
		}
	}()

	if event.TenantID == uuid.Nil {
		log.Warn().
			Str("module", event.Module).
			Str("event", event.Event).
			Msg("dropping workflow event without tenant")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	matches, err := e.matcher.FindMatchingTriggers(ctx, event)
	if err != nil {
		log.Error().
			Err(err).
			Str("module", event.Module).
			Str("event", event.Event).
			Msg("workflow trigger matching failed")
		return
	}
	if len(matches) == 0 {
		return
	}

	log.Info().
		Str("module", event.Module).
		Str("event", event.Event).
		Int("matches", len(matches)).
		Msg("workflow event matched")

	for _, match := range matches {
		e.jobs <- executionJob{trigger: match.Trigger, workflow: match.Workflow, event: event}
	}
}

// TriggerWorkflow manually runs one workflow with test data, using the
// workflow's first trigger definition to synthesize the event. It runs
// synchronously through the same executor path as real events and
// produces exactly one execution log entry. Used by the admin "test
// this workflow" operation.
func (e *Engine) TriggerWorkflow(ctx context.Context, tenantID, workflowID uuid.UUID, testData map[string]interface{}, userID *uuid.UUID) error {
	workflow, err := e.storage.GetWorkflow(ctx, tenantID, workflowID)
	if err != nil {
		return fmt.Errorf("workflow not found: %w", err)
	}

	trigger, err := e.storage.FirstTrigger(ctx, tenantID, workflowID)
	if err != nil {
		return fmt.Errorf("workflow has no trigger to synthesize an event from: %w", err)
	}

	if testData == nil {
		testData = map[string]interface{}{}
	}
	event := Event{
		Module:   trigger.TriggerModule,
		Event:    trigger.TriggerEvent,
		TenantID: tenantID,
		UserID:   userID,
		Data:     testData,
	}

	e.executor.ExecuteWorkflow(ctx, *trigger, *workflow, event)
	return nil
}
