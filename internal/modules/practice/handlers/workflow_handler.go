package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bagusramadhan/practice-suite-be/internal/core/auth"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/services"
)

// WorkflowHandler handles workflow-related requests
type WorkflowHandler struct {
	workflowService *services.WorkflowService
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(workflowService *services.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{
		workflowService: workflowService,
	}
}

// CreateWorkflow godoc
// @Summary Create a new workflow
// @Description Create an automation workflow with its triggers and actions
// @Tags Workflows
// @Accept json
// @Produce json
// @Param workflow body services.CreateWorkflowRequest true "Workflow details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /workflows [post]
func (h *WorkflowHandler) CreateWorkflow(c *fiber.Ctx) error {
	var req services.CreateWorkflowRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name is required",
		})
	}

	userID := auth.UserID(c)
	created, err := h.workflowService.CreateWorkflow(c.Context(), auth.TenantID(c), &userID, &req)
	if err != nil {
		log.Printf("❌ Failed to create workflow: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Workflow created successfully",
		"data":    created,
	})
}

// ListWorkflows godoc
// @Summary List workflows
// @Description Retrieve all workflows for the authenticated tenant
// @Tags Workflows
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /workflows [get]
func (h *WorkflowHandler) ListWorkflows(c *fiber.Ctx) error {
	workflows, err := h.workflowService.ListWorkflows(c.Context(), auth.TenantID(c))
	if err != nil {
		log.Printf("❌ Failed to list workflows: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to retrieve workflows",
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"count":  len(workflows),
		"data":   workflows,
	})
}

// GetWorkflow godoc
// @Summary Get workflow by ID
// @Description Retrieve a workflow with its triggers and actions
// @Tags Workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /workflows/{id} [get]
func (h *WorkflowHandler) GetWorkflow(c *fiber.Ctx) error {
	workflowID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid workflow id format",
		})
	}

	workflow, err := h.workflowService.GetWorkflow(c.Context(), auth.TenantID(c), workflowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "workflow not found",
			})
		}
		log.Printf("❌ Failed to get workflow: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to retrieve workflow",
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   workflow,
	})
}

// UpdateWorkflow godoc
// @Summary Update a workflow
// @Description Update a workflow and replace its trigger and action sets
// @Tags Workflows
// @Accept json
// @Produce json
// @Param id path string true "Workflow ID"
// @Param workflow body services.UpdateWorkflowRequest true "Workflow details"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /workflows/{id} [put]
func (h *WorkflowHandler) UpdateWorkflow(c *fiber.Ctx) error {
	workflowID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid workflow id format",
		})
	}

	var req services.UpdateWorkflowRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	userID := auth.UserID(c)
	updated, err := h.workflowService.UpdateWorkflow(c.Context(), auth.TenantID(c), workflowID, &userID, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "workflow not found",
			})
		}
		log.Printf("❌ Failed to update workflow: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Workflow updated successfully",
		"data":    updated,
	})
}

// DeleteWorkflow godoc
// @Summary Delete a workflow
// @Description Delete a workflow with its triggers and actions
// @Tags Workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /workflows/{id} [delete]
func (h *WorkflowHandler) DeleteWorkflow(c *fiber.Ctx) error {
	workflowID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid workflow id format",
		})
	}

	if err := h.workflowService.DeleteWorkflow(c.Context(), auth.TenantID(c), workflowID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "workflow not found",
			})
		}
		log.Printf("❌ Failed to delete workflow: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete workflow",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Workflow deleted successfully",
	})
}

// TriggerWorkflow godoc
// @Summary Manually trigger a workflow
// @Description Run a workflow synchronously with test data
// @Tags Workflows
// @Accept json
// @Produce json
// @Param id path string true "Workflow ID"
// @Param test_data body map[string]interface{} false "Test trigger data"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /workflows/{id}/trigger [post]
func (h *WorkflowHandler) TriggerWorkflow(c *fiber.Ctx) error {
	workflowID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid workflow id format",
		})
	}

	var body struct {
		TestData map[string]interface{} `json:"test_data"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	userID := auth.UserID(c)
	if err := h.workflowService.TriggerWorkflow(c.Context(), auth.TenantID(c), workflowID, body.TestData, &userID); err != nil {
		log.Printf("❌ Manual workflow trigger failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Workflow executed",
	})
}

// GetExecutions godoc
// @Summary Get workflow execution history
// @Description Retrieve recent execution logs for a workflow
// @Tags Workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Param limit query int false "Max rows (default 50)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /workflows/{id}/executions [get]
func (h *WorkflowHandler) GetExecutions(c *fiber.Ctx) error {
	workflowID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid workflow id format",
		})
	}

	limit := c.QueryInt("limit", 50)
	executions, err := h.workflowService.GetExecutions(c.Context(), auth.TenantID(c), workflowID, limit)
	if err != nil {
		log.Printf("❌ Failed to list executions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to retrieve executions",
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"count":  len(executions),
		"data":   executions,
	})
}
