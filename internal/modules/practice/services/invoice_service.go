package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bagusramadhan/practice-suite-be/internal/core/engine"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/repositories"
)

// CreateInvoiceRequest is the payload for creating an invoice
type CreateInvoiceRequest struct {
	ClientID  uuid.UUID                `json:"client_id"`
	LineItems []models.InvoiceLineItem `json:"line_items"`
	TaxRate   float64                  `json:"tax_rate"`
	Currency  string                   `json:"currency"`
	DueDate   *time.Time               `json:"due_date,omitempty"`
	Notes     string                   `json:"notes"`
}

// InvoiceService handles invoice operations and emits invoice events to
// the automation engine
type InvoiceService struct {
	invoiceRepo    repositories.InvoiceRepo
	clientRepo     repositories.ClientRepo
	engine         *engine.Engine
	paymentBaseURL string
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(invoiceRepo repositories.InvoiceRepo, clientRepo repositories.ClientRepo, eng *engine.Engine, paymentBaseURL string) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:    invoiceRepo,
		clientRepo:     clientRepo,
		engine:         eng,
		paymentBaseURL: paymentBaseURL,
	}
}

// CreateInvoice creates an invoice with a per-tenant sequential number
// and emits invoices/invoice_created
func (s *InvoiceService) CreateInvoice(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req *CreateInvoiceRequest) (*models.Invoice, error) {
	if req.ClientID == uuid.Nil {
		return nil, fmt.Errorf("client_id is required")
	}
	if len(req.LineItems) == 0 {
		return nil, fmt.Errorf("at least one line item is required")
	}
	if _, err := s.clientRepo.FindByID(ctx, tenantID, req.ClientID); err != nil {
		return nil, fmt.Errorf("client not found: %w", err)
	}

	subtotal := 0.0
	for _, item := range req.LineItems {
		subtotal += item.Quantity * item.UnitPrice
	}
	total := subtotal * (1 + req.TaxRate/100)

	lineItemsJSON, err := json.Marshal(req.LineItems)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal line items: %w", err)
	}

	number, err := s.invoiceRepo.NextInvoiceNumber(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate invoice number: %w", err)
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	invoice := &models.Invoice{
		TenantID:      tenantID,
		ClientID:      req.ClientID,
		InvoiceNumber: number,
		Status:        models.InvoiceStatusDraft,
		LineItems:     lineItemsJSON,
		Subtotal:      subtotal,
		TaxRate:       req.TaxRate,
		Total:         total,
		Currency:      currency,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
		CreatedBy:     userID,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.engine.ProcessEvent(engine.Event{
		Module:   "invoices",
		Event:    "invoice_created",
		TenantID: tenantID,
		UserID:   userID,
		Data:     s.invoiceEventData(invoice),
	})

	return invoice, nil
}

// ListInvoices lists invoices for a tenant, optionally filtered by
// status
func (s *InvoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, status string, limit int) ([]models.Invoice, error) {
	return s.invoiceRepo.FindByTenant(ctx, tenantID, status, limit)
}

// GetInvoice retrieves a single invoice
func (s *InvoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*models.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
}

// SendInvoice transitions a draft invoice to sent
func (s *InvoiceService) SendInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", err)
	}
	if invoice.Status != models.InvoiceStatusDraft {
		return nil, fmt.Errorf("only draft invoices can be sent (current status: %s)", invoice.Status)
	}

	invoice.Status = models.InvoiceStatusSent
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to send invoice: %w", err)
	}
	return invoice, nil
}

// MarkPaid records payment on an invoice and emits
// invoices/invoice_paid
func (s *InvoiceService) MarkPaid(ctx context.Context, tenantID, invoiceID uuid.UUID, userID *uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", err)
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return nil, fmt.Errorf("invoice is already paid")
	}
	if invoice.Status == models.InvoiceStatusCancelled {
		return nil, fmt.Errorf("cancelled invoices cannot be paid")
	}

	now := time.Now()
	invoice.Status = models.InvoiceStatusPaid
	invoice.PaidAt = &now

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to mark invoice paid: %w", err)
	}

	s.engine.ProcessEvent(engine.Event{
		Module:   "invoices",
		Event:    "invoice_paid",
		TenantID: tenantID,
		UserID:   userID,
		Data:     s.invoiceEventData(invoice),
	})

	return invoice, nil
}

// PaymentLink returns the hosted payment URL for an invoice. Encoded in
// a QR code by the handler layer.
func (s *InvoiceService) PaymentLink(invoice *models.Invoice) string {
	return fmt.Sprintf("%s/pay/%s", s.paymentBaseURL, invoice.ID)
}

// invoiceEventData flattens an invoice into the event payload shape
func (s *InvoiceService) invoiceEventData(invoice *models.Invoice) map[string]interface{} {
	data := map[string]interface{}{
		"id":             invoice.ID.String(),
		"invoice_number": invoice.InvoiceNumber,
		"client_id":      invoice.ClientID.String(),
		"status":         invoice.Status,
		"subtotal":       invoice.Subtotal,
		"total":          invoice.Total,
		"currency":       invoice.Currency,
		"payment_link":   s.PaymentLink(invoice),
	}
	if invoice.DueDate != nil {
		data["due_date"] = invoice.DueDate.Format(time.RFC3339)
	}
	if invoice.PaidAt != nil {
		data["paid_at"] = invoice.PaidAt.Format(time.RFC3339)
	}
	return data
}
