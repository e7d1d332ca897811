package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/bagusramadhan/practice-suite-be/internal/core/auth"
	"github.com/bagusramadhan/practice-suite-be/internal/core/export"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/services"
)

// InvoiceHandler handles invoice-related requests
type InvoiceHandler struct {
	invoiceService *services.InvoiceService
	clientService  *services.ClientService
	pdfExporter    *export.InvoicePDFExporter
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *services.InvoiceService, clientService *services.ClientService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		clientService:  clientService,
		pdfExporter:    export.NewInvoicePDFExporter(),
	}
}

// CreateInvoice godoc
// @Summary Create a new invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Param invoice body services.CreateInvoiceRequest true "Invoice details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *fiber.Ctx) error {
	var req services.CreateInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	userID := auth.UserID(c)
	invoice, err := h.invoiceService.CreateInvoice(c.Context(), auth.TenantID(c), &userID, &req)
	if err != nil {
		log.Printf("❌ Failed to create invoice: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Invoice created successfully",
		"data":    invoice,
	})
}

// ListInvoices godoc
// @Summary List invoices
// @Tags Invoices
// @Produce json
// @Param status query string false "Filter by status"
// @Param limit query int false "Max rows"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *fiber.Ctx) error {
	invoices, err := h.invoiceService.ListInvoices(c.Context(), auth.TenantID(c), c.Query("status"), c.QueryInt("limit", 0))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to retrieve invoices",
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"count":  len(invoices),
		"data":   invoices,
	})
}

// GetInvoice godoc
// @Summary Get invoice by ID
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *fiber.Ctx) error {
	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid invoice id format",
		})
	}

	invoice, err := h.invoiceService.GetInvoice(c.Context(), auth.TenantID(c), invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "invoice not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to retrieve invoice",
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   invoice,
	})
}

// SendInvoice godoc
// @Summary Send a draft invoice
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/{id}/send [post]
func (h *InvoiceHandler) SendInvoice(c *fiber.Ctx) error {
	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid invoice id format",
		})
	}

	invoice, err := h.invoiceService.SendInvoice(c.Context(), auth.TenantID(c), invoiceID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Invoice sent",
		"data":    invoice,
	})
}

// MarkPaid godoc
// @Summary Mark an invoice as paid
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/{id}/pay [post]
func (h *InvoiceHandler) MarkPaid(c *fiber.Ctx) error {
	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid invoice id format",
		})
	}

	userID := auth.UserID(c)
	invoice, err := h.invoiceService.MarkPaid(c.Context(), auth.TenantID(c), invoiceID, &userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Invoice marked as paid",
		"data":    invoice,
	})
}

// ExportPDF godoc
// @Summary Export invoice as PDF
// @Tags Invoices
// @Produce application/pdf
// @Param id path string true "Invoice ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/{id}/pdf [get]
func (h *InvoiceHandler) ExportPDF(c *fiber.Ctx) error {
	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid invoice id format",
		})
	}

	tenantID := auth.TenantID(c)
	invoice, err := h.invoiceService.GetInvoice(c.Context(), tenantID, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "invoice not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to retrieve invoice",
		})
	}

	// Client lookup failing only degrades the bill-to block
	client, err := h.clientService.GetClient(c.Context(), tenantID, invoice.ClientID)
	if err != nil {
		client = nil
	}

	var buf bytes.Buffer
	if err := h.pdfExporter.Export(invoice, client, &buf); err != nil {
		log.Printf("❌ Failed to render invoice PDF: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render PDF",
		})
	}

	c.Set("Content-Type", h.pdfExporter.GetContentType())
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, invoice.InvoiceNumber))
	return c.Send(buf.Bytes())
}

// PaymentQR godoc
// @Summary Get payment QR code for an invoice
// @Description Returns a PNG QR code encoding the invoice's payment link
// @Tags Invoices
// @Produce image/png
// @Param id path string true "Invoice ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/{id}/qr [get]
func (h *InvoiceHandler) PaymentQR(c *fiber.Ctx) error {
	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid invoice id format",
		})
	}

	invoice, err := h.invoiceService.GetInvoice(c.Context(), auth.TenantID(c), invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "invoice not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to retrieve invoice",
		})
	}

	png, err := qrcode.Encode(h.invoiceService.PaymentLink(invoice), qrcode.Medium, 256)
	if err != nil {
		log.Printf("❌ Failed to generate payment QR: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to generate QR code",
		})
	}

	c.Set("Content-Type", "image/png")
	return c.Send(png)
}
