package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
)

// Registered action type names
const (
	ActionCreateTask        = "create_task"
	ActionUpdateTask        = "update_task"
	ActionUpdateClientField = "update_client_field"
	ActionUpdateEntityField = "update_entity_field"
	ActionSendNotification  = "send_notification"
	ActionSendEmail         = "send_email"
	ActionCallWebhook       = "call_webhook"
	ActionAssignUser        = "assign_user"
	ActionCreateInvoice     = "create_invoice"
)

func failf(format string, args ...interface{}) ActionResult {
	return ActionResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

func succeed(data interface{}) ActionResult {
	return ActionResult{Success: true, Data: data}
}

func cfgString(config map[string]interface{}, key string) string {
	if v, ok := config[key].(string); ok {
		return v
	}
	return ""
}

func cfgUUID(config map[string]interface{}, key string) (uuid.UUID, error) {
	raw := cfgString(config, key)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s is required", key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid id: %q", key, raw)
	}
	return id, nil
}

func cfgFields(config map[string]interface{}) map[string]interface{} {
	fields, _ := config["fields"].(map[string]interface{})
	return fields
}

var dueOffsetRe = regexp.MustCompile(`(?i)^\+(\d+)\s*(day|week|month)s?$`)

// parseDueOffset turns a relative offset like "+3 days", "+2 weeks" or
// "+1 month" into an absolute date
func parseDueOffset(offset string, now time.Time) (time.Time, error) {
	m := dueOffsetRe.FindStringSubmatch(strings.TrimSpace(offset))
	if m == nil {
		return time.Time{}, fmt.Errorf("invalid due date offset %q (want \"+N days|weeks|months\")", offset)
	}
	var n int
	fmt.Sscanf(m[1], "%d", &n)
	switch strings.ToLower(m[2]) {
	case "day":
		return now.AddDate(0, 0, n), nil
	case "week":
		return now.AddDate(0, 0, 7*n), nil
	default:
		return now.AddDate(0, n, 0), nil
	}
}

// create_task

type createTaskHandler struct{}

func (h *createTaskHandler) Type() string { return ActionCreateTask }

func (h *createTaskHandler) Handle(ctx context.Context, config map[string]interface{}, actx *ActionContext) ActionResult {
	title := cfgString(config, "title")
	if title == "" {
		return failf("title is required for create_task")
	}

	task := &models.Task{
		TenantID:    actx.TenantID,
		Title:       title,
		Description: cfgString(config, "description"),
		Status:      models.TaskStatusPending,
		Priority:    cfgString(config, "priority"),
		CreatedBy:   actx.UserID,
	}
	if task.Priority == "" {
		task.Priority = "medium"
	}

	if raw := cfgString(config, "client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return failf("client_id is not a valid id: %q", raw)
		}
		task.ClientID = &id
	}
	if raw := cfgString(config, "assigned_to"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return failf("assigned_to is not a valid id: %q", raw)
		}
		task.AssignedTo = &id
	}

	switch {
	case cfgString(config, "due_in") != "":
		due, err := parseDueOffset(cfgString(config, "due_in"), time.Now())
		if err != nil {
			return failf("%v", err)
		}
		task.DueDate = &due
	case cfgString(config, "due_date") != "":
		due, err := time.Parse(time.RFC3339, cfgString(config, "due_date"))
		if err != nil {
			return failf("due_date is not RFC3339: %q", cfgString(config, "due_date"))
		}
		task.DueDate = &due
	}

	if err := actx.Storage.CreateTask(ctx, task); err != nil {
		return failf("failed to create task: %v", err)
	}
	return succeed(map[string]interface{}{"task_id": task.ID.String()})
}

// update_task

type updateTaskHandler struct{}

func (h *updateTaskHandler) Type() string { return ActionUpdateTask }

func (h *updateTaskHandler) Handle(ctx context.Context, config map[string]interface{}, actx *ActionContext) ActionResult {
	taskID, err := cfgUUID(config, "task_id")
	if err != nil {
		return failf("update_task: %v", err)
	}
	fields := cfgFields(config)
	if len(fields) == 0 {
		return failf("update_task requires at least one field to update")
	}
	if err := actx.Storage.UpdateTaskFields(ctx, actx.TenantID, taskID, fields); err != nil {
		return failf("failed to update task: %v", err)
	}
	return succeed(map[string]interface{}{"task_id": taskID.String(), "updated_fields": len(fields)})
}

// update_client_field

type updateClientFieldHandler struct{}

func (h *updateClientFieldHandler) Type() string { return ActionUpdateClientField }

func (h *updateClientFieldHandler) Handle(ctx context.Context, config map[string]interface{}, actx *ActionContext) ActionResult {
	clientID, err := cfgUUID(config, "client_id")
	if err != nil {
		return failf("update_client_field: %v", err)
	}
	fields := cfgFields(config)
	if len(fields) == 0 {
		return failf("update_client_field requires at least one field to update")
	}
	if err := actx.Storage.UpdateClientFields(ctx, actx.TenantID, clientID, fields); err != nil {
		return failf("failed to update client: %v", err)
	}
	return succeed(map[string]interface{}{"client_id": clientID.String(), "updated_fields": len(fields)})
}

// update_entity_field

type updateEntityFieldHandler struct{}

func (h *updateEntityFieldHandler) Type() string { return ActionUpdateEntityField }

func (h *updateEntityFieldHandler) Handle(ctx context.Context, config map[string]interface{}, actx *ActionContext) ActionResult {
	entity := cfgString(config, "entity")
	if entity == "" {
		return failf("entity is required for update_entity_field")
	}
	entityID, err := cfgUUID(config, "entity_id")
	if err != nil {
		return failf("update_entity_field: %v", err)
	}
	fields := cfgFields(config)
	if len(fields) == 0 {
		return failf("update_entity_field requires at least one field to update")
	}
	if err := actx.Storage.UpdateEntityFields(ctx, actx.TenantID, entity, entityID, fields); err != nil {
		return failf("failed to update %s: %v", entity, err)
	}
	return succeed(map[string]interface{}{"entity": entity, "entity_id": entityID.String()})
}

// send_notification

type sendNotificationHandler struct{}

func (h *sendNotificationHandler) Type() string { return ActionSendNotification }

func (h *sendNotificationHandler) Handle(ctx context.Context, config map[string]interface{}, actx *ActionContext) ActionResult {
	title := cfgString(config, "title")
	if title == "" {
		return failf("title is required for send_notification")
	}

	notification := &models.Notification{
		TenantID: actx.TenantID,
		Title:    title,
		Message:  cfgString(config, "message"),
		Kind:     cfgString(config, "kind"),
	}
	if notification.Kind == "" {
		notification.Kind = "automation"
	}
	if raw := cfgString(config, "user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return failf("user_id is not a valid id: %q", raw)
		}
		notification.UserID = &id
	} else {
		notification.UserID = actx.UserID
	}
	if data, err := json.Marshal(actx.TriggerData); err == nil {
		notification.Data = datatypes.JSON(data)
	}

	if err := actx.Storage.CreateNotification(ctx, notification); err != nil {
		return failf("failed to create notification: %v", err)
	}
	return succeed(map[string]interface{}{"notification_id": notification.ID.String()})
}

// send_email

type sendEmailHandler struct {
	email EmailSender
}

func (h *sendEmailHandler) Type() string { return ActionSendEmail }

func (h *sendEmailHandler) Handle(ctx context.Context, config map[string]interface{}, actx *ActionContext) ActionResult {
	to := cfgString(config, "to")
	if to == "" {
		return failf("to is required for send_email")
	}
	subject := cfgString(config, "subject")
	if subject == "" {
		return failf("subject is required for send_email")
	}
	body := cfgString(config, "body")

	if h.email == nil {
		// No provider configured: log the intent and report dispatched
		log.Info().
			Str("to", to).
			Str("subject", subject).
			Msg("email provider not configured, logging send_email intent")
		return succeed(map[string]interface{}{"to": to, "dispatched": "logged"})
	}

	if err := h.email.SendEmail(to, subject, body); err != nil {
		return failf("failed to send email: %v", err)
	}
	return succeed(map[string]interface{}{"to": to, "dispatched": "sent"})
}

// call_webhook

type callWebhookHandler struct {
	client  *http.Client
	timeout time.Duration
}

func (h *callWebhookHandler) Type() string { return ActionCallWebhook }

func (h *callWebhookHandler) Handle(ctx context.Context, config map[string]interface{}, actx *ActionContext) ActionResult {
	url := cfgString(config, "url")
	if url == "" {
		return failf("url is required for call_webhook")
	}
	method := strings.ToUpper(cfgString(config, "method"))
	if method == "" {
		method = http.MethodPost
	}

	var body io.Reader
	if payload, ok := config["payload"]; ok && payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return failf("failed to encode webhook payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return failf("failed to build webhook request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if headers, ok := config["headers"].(map[string]interface{}); ok {
		for key, value := range headers {
			if s, ok := value.(string); ok {
				req.Header.Set(key, s)
			}
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return failf("timeout")
		}
		return failf("webhook request failed: %v", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		return failf("webhook returned status %d", resp.StatusCode)
	}
	return succeed(map[string]interface{}{"status_code": resp.StatusCode})
}

// assign_user

type assignUserHandler struct{}

func (h *assignUserHandler) Type() string { return ActionAssignUser }

func (h *assignUserHandler) Handle(ctx context.Context, config map[string]interface{}, actx *ActionContext) ActionResult {
	userID, err := cfgUUID(config, "user_id")
	if err != nil {
		return failf("assign_user: %v", err)
	}
	entityID, err := cfgUUID(config, "entity_id")
	if err != nil {
		return failf("assign_user: %v", err)
	}
	entity := cfgString(config, "entity")
	if entity == "" {
		entity = "tasks"
	}
	if err := actx.Storage.AssignUser(ctx, actx.TenantID, entity, entityID, userID); err != nil {
		return failf("failed to assign user: %v", err)
	}
	return succeed(map[string]interface{}{"entity": entity, "entity_id": entityID.String(), "user_id": userID.String()})
}

// create_invoice

type createInvoiceHandler struct{}

func (h *createInvoiceHandler) Type() string { return ActionCreateInvoice }

func (h *createInvoiceHandler) Handle(ctx context.Context, config map[string]interface{}, actx *ActionContext) ActionResult {
	clientID, err := cfgUUID(config, "client_id")
	if err != nil {
		return failf("create_invoice: %v", err)
	}

	items, _ := config["line_items"].([]interface{})
	var subtotal float64
	lineItems := make([]models.InvoiceLineItem, 0, len(items))
	for _, raw := range items {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		quantity, _ := toFloat64(item["quantity"])
		unitPrice, _ := toFloat64(item["unit_price"])
		description, _ := item["description"].(string)
		if quantity == 0 {
			quantity = 1
		}
		lineItems = append(lineItems, models.InvoiceLineItem{
			Description: description,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
		})
		subtotal += quantity * unitPrice
	}

	taxRate, _ := toFloat64(config["tax_rate"])
	encoded, err := json.Marshal(lineItems)
	if err != nil {
		return failf("failed to encode line items: %v", err)
	}

	invoice := &models.Invoice{
		TenantID:  actx.TenantID,
		ClientID:  clientID,
		Status:    models.InvoiceStatusDraft,
		LineItems: datatypes.JSON(encoded),
		Subtotal:  subtotal,
		TaxRate:   taxRate,
		Total:     subtotal + subtotal*taxRate/100,
		Currency:  cfgString(config, "currency"),
		Notes:     cfgString(config, "notes"),
		CreatedBy: actx.UserID,
	}
	if invoice.Currency == "" {
		invoice.Currency = "USD"
	}
	if raw := cfgString(config, "due_in"); raw != "" {
		due, err := parseDueOffset(raw, time.Now())
		if err != nil {
			return failf("%v", err)
		}
		invoice.DueDate = &due
	}

	if err := actx.Storage.CreateInvoice(ctx, invoice); err != nil {
		return failf("failed to create invoice: %v", err)
	}
	return succeed(map[string]interface{}{"invoice_id": invoice.ID.String(), "total": invoice.Total})
}
