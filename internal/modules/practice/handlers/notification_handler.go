package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bagusramadhan/practice-suite-be/internal/core/auth"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/services"
)

// NotificationHandler handles in-app notification requests
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications godoc
// @Summary List notifications for the authenticated user
// @Tags Notifications
// @Produce json
// @Param limit query int false "Max rows (default 50)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	notifications, err := h.notificationService.ListNotifications(c.Context(), auth.TenantID(c), auth.UserID(c), c.QueryInt("limit", 50))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to retrieve notifications",
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"count":  len(notifications),
		"data":   notifications,
	})
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	notificationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid notification id format",
		})
	}

	if err := h.notificationService.MarkRead(c.Context(), auth.TenantID(c), notificationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "notification not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to mark notification read",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Notification marked as read",
	})
}
