package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bagusramadhan/practice-suite-be/internal/core/engine"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/repositories"
)

// CreateTaskRequest is the payload for creating a task
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Labels      []string   `json:"labels"`
	ClientID    *uuid.UUID `json:"client_id,omitempty"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskRequest is the payload for updating a task
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Labels      []string   `json:"labels,omitempty"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

var validTaskStatuses = map[string]bool{
	models.TaskStatusPending:    true,
	models.TaskStatusInProgress: true,
	models.TaskStatusCompleted:  true,
	models.TaskStatusCancelled:  true,
}

// TaskService handles task operations and emits task events to the
// automation engine
type TaskService struct {
	taskRepo repositories.TaskRepo
	engine   *engine.Engine
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo repositories.TaskRepo, eng *engine.Engine) *TaskService {
	return &TaskService{taskRepo: taskRepo, engine: eng}
}

// CreateTask creates a task and emits tasks/task_created
func (s *TaskService) CreateTask(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req *CreateTaskRequest) (*models.Task, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("task title is required")
	}

	priority := req.Priority
	if priority == "" {
		priority = "medium"
	}

	task := &models.Task{
		TenantID:    tenantID,
		ClientID:    req.ClientID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatusPending,
		Priority:    priority,
		Labels:      req.Labels,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		CreatedBy:   userID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.engine.ProcessEvent(engine.Event{
		Module:   "tasks",
		Event:    "task_created",
		TenantID: tenantID,
		UserID:   userID,
		Data:     taskEventData(task),
	})

	return task, nil
}

// ListTasks lists tasks for a tenant, optionally filtered by status
func (s *TaskService) ListTasks(ctx context.Context, tenantID uuid.UUID, status string, limit int) ([]models.Task, error) {
	if status != "" && !validTaskStatuses[status] {
		return nil, fmt.Errorf("invalid task status: %s", status)
	}
	return s.taskRepo.FindByTenant(ctx, tenantID, status, limit)
}

// GetTask retrieves a single task
func (s *TaskService) GetTask(ctx context.Context, tenantID, taskID uuid.UUID) (*models.Task, error) {
	return s.taskRepo.FindByID(ctx, tenantID, taskID)
}

// UpdateTask updates a task. Transitioning into completed emits
// tasks/task_completed.
func (s *TaskService) UpdateTask(ctx context.Context, tenantID, taskID uuid.UUID, userID *uuid.UUID, req *UpdateTaskRequest) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, tenantID, taskID)
	if err != nil {
		return nil, fmt.Errorf("task not found: %w", err)
	}

	wasCompleted := task.Status == models.TaskStatusCompleted

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		if !validTaskStatuses[*req.Status] {
			return nil, fmt.Errorf("invalid task status: %s", *req.Status)
		}
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Labels != nil {
		task.Labels = req.Labels
	}
	if req.AssignedTo != nil {
		task.AssignedTo = req.AssignedTo
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	completedNow := !wasCompleted && task.Status == models.TaskStatusCompleted
	if completedNow {
		now := time.Now()
		task.CompletedAt = &now
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if completedNow {
		s.engine.ProcessEvent(engine.Event{
			Module:   "tasks",
			Event:    "task_completed",
			TenantID: tenantID,
			UserID:   userID,
			Data:     taskEventData(task),
		})
	}

	return task, nil
}

// DeleteTask deletes a task
func (s *TaskService) DeleteTask(ctx context.Context, tenantID, taskID uuid.UUID) error {
	if _, err := s.taskRepo.FindByID(ctx, tenantID, taskID); err != nil {
		return fmt.Errorf("task not found: %w", err)
	}
	return s.taskRepo.Delete(ctx, tenantID, taskID)
}

// taskEventData flattens a task into the event payload shape condition
// trees evaluate against
func taskEventData(task *models.Task) map[string]interface{} {
	data := map[string]interface{}{
		"id":          task.ID.String(),
		"title":       task.Title,
		"description": task.Description,
		"status":      task.Status,
		"priority":    task.Priority,
		"labels":      []string(task.Labels),
	}
	if task.ClientID != nil {
		data["client_id"] = task.ClientID.String()
	}
	if task.AssignedTo != nil {
		data["assigned_to"] = task.AssignedTo.String()
	}
	if task.DueDate != nil {
		data["due_date"] = task.DueDate.Format(time.RFC3339)
	}
	return data
}
