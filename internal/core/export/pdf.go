package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
)

// InvoicePDFExporter renders invoices as PDF documents using gofpdf
type InvoicePDFExporter struct {
	orientation string
	pageSize    string
}

// NewInvoicePDFExporter creates a new invoice PDF exporter
func NewInvoicePDFExporter() *InvoicePDFExporter {
	return &InvoicePDFExporter{
		orientation: "P",
		pageSize:    "A4",
	}
}

// Export renders an invoice to PDF format
func (e *InvoicePDFExporter) Export(invoice *models.Invoice, client *models.Client, writer io.Writer) error {
	pdf := gofpdf.New(e.orientation, "mm", e.pageSize, "")
	pdf.AddPage()

	// Title block
	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, "INVOICE")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice Number: %s", invoice.InvoiceNumber))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", invoice.Status))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Issued: %s", invoice.CreatedAt.Format("2006-01-02")))
	pdf.Ln(6)
	if invoice.DueDate != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Due: %s", invoice.DueDate.Format("2006-01-02")))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	// Bill-to block
	if client != nil {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 7, "Bill To")
		pdf.Ln(7)
		pdf.SetFont("Arial", "", 11)
		pdf.Cell(0, 6, client.Name)
		pdf.Ln(6)
		if client.CompanyName != "" {
			pdf.Cell(0, 6, client.CompanyName)
			pdf.Ln(6)
		}
		if client.Email != "" {
			pdf.Cell(0, 6, client.Email)
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	// Line items table
	var items []models.InvoiceLineItem
	if len(invoice.LineItems) > 0 {
		if err := json.Unmarshal(invoice.LineItems, &items); err != nil {
			return fmt.Errorf("failed to decode line items: %w", err)
		}
	}

	pageWidth, _ := pdf.GetPageSize()
	leftMargin, _, rightMargin, _ := pdf.GetMargins()
	usableWidth := pageWidth - leftMargin - rightMargin

	descWidth := usableWidth * 0.5
	qtyWidth := usableWidth * 0.15
	priceWidth := usableWidth * 0.175
	amountWidth := usableWidth * 0.175

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(60, 60, 60)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(descWidth, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(qtyWidth, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(priceWidth, 8, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(amountWidth, 8, "Amount", "1", 0, "R", true, 0, "")
	pdf.Ln(-1)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 11)
	for _, item := range items {
		amount := item.Quantity * item.UnitPrice
		pdf.CellFormat(descWidth, 7, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(qtyWidth, 7, fmt.Sprintf("%g", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(priceWidth, 7, fmt.Sprintf("%.2f", item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(amountWidth, 7, fmt.Sprintf("%.2f", amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)

		if pdf.GetY() > 260 {
			pdf.AddPage()
		}
	}

	// Totals
	pdf.Ln(4)
	totalsLabelWidth := usableWidth * 0.65
	totalsValueWidth := usableWidth * 0.35

	pdf.CellFormat(totalsLabelWidth, 6, "", "0", 0, "R", false, 0, "")
	pdf.CellFormat(totalsValueWidth, 6, fmt.Sprintf("Subtotal: %.2f %s", invoice.Subtotal, invoice.Currency), "0", 0, "R", false, 0, "")
	pdf.Ln(6)
	if invoice.TaxRate > 0 {
		pdf.CellFormat(totalsLabelWidth, 6, "", "0", 0, "R", false, 0, "")
		pdf.CellFormat(totalsValueWidth, 6, fmt.Sprintf("Tax (%.1f%%): %.2f %s", invoice.TaxRate, invoice.Total-invoice.Subtotal, invoice.Currency), "0", 0, "R", false, 0, "")
		pdf.Ln(6)
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(totalsLabelWidth, 8, "", "0", 0, "R", false, 0, "")
	pdf.CellFormat(totalsValueWidth, 8, fmt.Sprintf("Total: %.2f %s", invoice.Total, invoice.Currency), "0", 0, "R", false, 0, "")
	pdf.Ln(10)

	if invoice.Notes != "" {
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(0, 5, invoice.Notes, "", "L", false)
	}

	pdf.SetFont("Arial", "I", 8)
	pdf.SetY(-20)
	pdf.Cell(0, 5, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")))

	if err := pdf.Output(writer); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	return nil
}

// GetContentType returns the MIME type for PDF files
func (e *InvoicePDFExporter) GetContentType() string {
	return "application/pdf"
}

// GetFileExtension returns the file extension for PDF files
func (e *InvoicePDFExporter) GetFileExtension() string {
	return ".pdf"
}
