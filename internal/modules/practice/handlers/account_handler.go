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

// AccountHandler handles chart-of-accounts requests
type AccountHandler struct {
	accountService *services.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccount godoc
// @Summary Create a ledger account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param account body services.CreateAccountRequest true "Account details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /accounts [post]
func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var req services.CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	account, err := h.accountService.CreateAccount(c.Context(), auth.TenantID(c), &req)
	if err != nil {
		log.Printf("❌ Failed to create account: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Account created successfully",
		"data":    account,
	})
}

// GetAccountTree godoc
// @Summary Get the chart of accounts tree
// @Description Returns accounts as a tree with balances rolled up from leaves
// @Tags Accounts
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /accounts/tree [get]
func (h *AccountHandler) GetAccountTree(c *fiber.Ctx) error {
	tree, err := h.accountService.GetAccountTree(c.Context(), auth.TenantID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to retrieve accounts",
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   tree,
	})
}

// UpdateBalance godoc
// @Summary Update an account balance
// @Tags Accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /accounts/{id}/balance [put]
func (h *AccountHandler) UpdateBalance(c *fiber.Ctx) error {
	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid account id format",
		})
	}

	var body struct {
		Balance float64 `json:"balance"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	account, err := h.accountService.UpdateBalance(c.Context(), auth.TenantID(c), accountID, body.Balance)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "account not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   account,
	})
}

// DeleteAccount godoc
// @Summary Delete a leaf account
// @Tags Accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c *fiber.Ctx) error {
	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid account id format",
		})
	}

	if err := h.accountService.DeleteAccount(c.Context(), auth.TenantID(c), accountID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Account deleted successfully",
	})
}
