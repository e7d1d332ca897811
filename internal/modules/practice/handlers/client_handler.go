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

// ClientHandler handles client-related requests
type ClientHandler struct {
	clientService *services.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// CreateClient godoc
// @Summary Create a new client
// @Tags Clients
// @Accept json
// @Produce json
// @Param client body services.CreateClientRequest true "Client details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /clients [post]
func (h *ClientHandler) CreateClient(c *fiber.Ctx) error {
	var req services.CreateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	userID := auth.UserID(c)
	client, err := h.clientService.CreateClient(c.Context(), auth.TenantID(c), &userID, &req)
	if err != nil {
		log.Printf("❌ Failed to create client: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Client created successfully",
		"data":    client,
	})
}

// ListClients godoc
// @Summary List clients
// @Tags Clients
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /clients [get]
func (h *ClientHandler) ListClients(c *fiber.Ctx) error {
	clients, err := h.clientService.ListClients(c.Context(), auth.TenantID(c), c.Query("status"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"count":  len(clients),
		"data":   clients,
	})
}

// GetClient godoc
// @Summary Get client by ID
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /clients/{id} [get]
func (h *ClientHandler) GetClient(c *fiber.Ctx) error {
	clientID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid client id format",
		})
	}

	client, err := h.clientService.GetClient(c.Context(), auth.TenantID(c), clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "client not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to retrieve client",
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   client,
	})
}

// UpdateClient godoc
// @Summary Update a client
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param client body services.UpdateClientRequest true "Client details"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *fiber.Ctx) error {
	clientID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid client id format",
		})
	}

	var req services.UpdateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	client, err := h.clientService.UpdateClient(c.Context(), auth.TenantID(c), clientID, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "client not found",
			})
		}
		log.Printf("❌ Failed to update client: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Client updated successfully",
		"data":    client,
	})
}

// DeleteClient godoc
// @Summary Delete a client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /clients/{id} [delete]
func (h *ClientHandler) DeleteClient(c *fiber.Ctx) error {
	clientID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid client id format",
		})
	}

	if err := h.clientService.DeleteClient(c.Context(), auth.TenantID(c), clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "client not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete client",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Client deleted successfully",
	})
}
