package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
)

type fieldUpdate struct {
	entity   string
	entityID uuid.UUID
	fields   map[string]interface{}
}

type assignment struct {
	entity   string
	entityID uuid.UUID
	userID   uuid.UUID
}

// fakeStorage is an in-memory Storage used across the engine tests
type fakeStorage struct {
	mu sync.Mutex

	tasks         []*models.Task
	invoices      []*models.Invoice
	notifications []*models.Notification
	fieldUpdates  []fieldUpdate
	assignments   []assignment
	logs          []*models.WorkflowExecutionLog

	matches      []TriggerMatch
	workflow     *models.Workflow
	firstTrigger *models.WorkflowTrigger
	actions      []models.WorkflowAction

	findTriggersErr error
	listActionsErr  error
	createTaskErr   error
	appendLogErr    error
}

func (f *fakeStorage) FindMatchingTriggers(ctx context.Context, tenantID uuid.UUID, module, event string) ([]TriggerMatch, error) {
	if f.findTriggersErr != nil {
		return nil, f.findTriggersErr
	}
	return f.matches, nil
}

func (f *fakeStorage) GetWorkflow(ctx context.Context, tenantID, workflowID uuid.UUID) (*models.Workflow, error) {
	if f.workflow == nil {
		return nil, errors.New("record not found")
	}
	return f.workflow, nil
}

func (f *fakeStorage) FirstTrigger(ctx context.Context, tenantID, workflowID uuid.UUID) (*models.WorkflowTrigger, error) {
	if f.firstTrigger == nil {
		return nil, errors.New("record not found")
	}
	return f.firstTrigger, nil
}

func (f *fakeStorage) ListActiveActions(ctx context.Context, tenantID, workflowID uuid.UUID) ([]models.WorkflowAction, error) {
	if f.listActionsErr != nil {
		return nil, f.listActionsErr
	}
	return f.actions, nil
}

func (f *fakeStorage) AppendExecutionLog(ctx context.Context, entry *models.WorkflowExecutionLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendLogErr != nil {
		return f.appendLogErr
	}
	f.logs = append(f.logs, entry)
	return nil
}

func (f *fakeStorage) CreateTask(ctx context.Context, task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createTaskErr != nil {
		return f.createTaskErr
	}
	task.ID = uuid.New()
	f.tasks = append(f.tasks, task)
	return nil
}

func (f *fakeStorage) UpdateTaskFields(ctx context.Context, tenantID, taskID uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fieldUpdates = append(f.fieldUpdates, fieldUpdate{entity: "tasks", entityID: taskID, fields: fields})
	return nil
}

func (f *fakeStorage) UpdateClientFields(ctx context.Context, tenantID, clientID uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fieldUpdates = append(f.fieldUpdates, fieldUpdate{entity: "clients", entityID: clientID, fields: fields})
	return nil
}

func (f *fakeStorage) UpdateEntityFields(ctx context.Context, tenantID uuid.UUID, entity string, entityID uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fieldUpdates = append(f.fieldUpdates, fieldUpdate{entity: entity, entityID: entityID, fields: fields})
	return nil
}

func (f *fakeStorage) AssignUser(ctx context.Context, tenantID uuid.UUID, entity string, entityID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignments = append(f.assignments, assignment{entity: entity, entityID: entityID, userID: userID})
	return nil
}

func (f *fakeStorage) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	invoice.ID = uuid.New()
	f.invoices = append(f.invoices, invoice)
	return nil
}

func (f *fakeStorage) CreateNotification(ctx context.Context, notification *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	notification.ID = uuid.New()
	f.notifications = append(f.notifications, notification)
	return nil
}

type fakeEmailSender struct {
	sent []string
	err  error
}

func (f *fakeEmailSender) SendEmail(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

func newActionContext(storage Storage) *ActionContext {
	userID := uuid.New()
	return &ActionContext{
		TriggerData: map[string]interface{}{"source": "test"},
		TenantID:    uuid.New(),
		UserID:      &userID,
		Storage:     storage,
	}
}

func TestParseDueOffset(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		offset string
		want   time.Time
	}{
		{"+3 days", now.AddDate(0, 0, 3)},
		{"+1 day", now.AddDate(0, 0, 1)},
		{"+2 weeks", now.AddDate(0, 0, 14)},
		{"+1 month", now.AddDate(0, 1, 0)},
		{"  +5 days  ", now.AddDate(0, 0, 5)},
		{"+2 Days", now.AddDate(0, 0, 2)},
	}
	for _, tc := range cases {
		got, err := parseDueOffset(tc.offset, now)
		require.NoError(t, err, tc.offset)
		assert.Equal(t, tc.want, got, tc.offset)
	}

	for _, bad := range []string{"", "3 days", "+x days", "+3 hours", "yesterday"} {
		_, err := parseDueOffset(bad, now)
		assert.Error(t, err, bad)
	}
}

func TestDispatch_UnknownActionType(t *testing.T) {
	registry := NewRegistry(HandlerDeps{})
	result := registry.Dispatch(context.Background(), "teleport", nil, newActionContext(&fakeStorage{}))
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, `no handler found for action type "teleport"`)
}

func TestCreateTaskHandler(t *testing.T) {
	registry := NewRegistry(HandlerDeps{})

	t.Run("title is required", func(t *testing.T) {
		result := registry.Dispatch(context.Background(), ActionCreateTask, map[string]interface{}{}, newActionContext(&fakeStorage{}))
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "title is required")
	})

	t.Run("creates a pending task with defaults", func(t *testing.T) {
		storage := &fakeStorage{}
		actx := newActionContext(storage)
		result := registry.Dispatch(context.Background(), ActionCreateTask, map[string]interface{}{
			"title":       "Follow up with client",
			"description": "Call about the proposal",
		}, actx)

		require.True(t, result.Success, result.Error)
		require.Len(t, storage.tasks, 1)
		task := storage.tasks[0]
		assert.Equal(t, actx.TenantID, task.TenantID)
		assert.Equal(t, models.TaskStatusPending, task.Status)
		assert.Equal(t, "medium", task.Priority)
		assert.Equal(t, actx.UserID, task.CreatedBy)
		assert.Nil(t, task.DueDate)
	})

	t.Run("due_in sets a relative due date", func(t *testing.T) {
		storage := &fakeStorage{}
		result := registry.Dispatch(context.Background(), ActionCreateTask, map[string]interface{}{
			"title":  "Renew engagement letter",
			"due_in": "+2 weeks",
		}, newActionContext(storage))

		require.True(t, result.Success, result.Error)
		require.NotNil(t, storage.tasks[0].DueDate)
		expected := time.Now().AddDate(0, 0, 14)
		assert.WithinDuration(t, expected, *storage.tasks[0].DueDate, time.Minute)
	})

	t.Run("invalid due_in fails", func(t *testing.T) {
		result := registry.Dispatch(context.Background(), ActionCreateTask, map[string]interface{}{
			"title":  "x",
			"due_in": "tomorrow",
		}, newActionContext(&fakeStorage{}))
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "invalid due date offset")
	})

	t.Run("storage failure becomes a failed result", func(t *testing.T) {
		storage := &fakeStorage{createTaskErr: errors.New("connection refused")}
		result := registry.Dispatch(context.Background(), ActionCreateTask, map[string]interface{}{
			"title": "x",
		}, newActionContext(storage))
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "failed to create task")
	})
}

func TestUpdateHandlers(t *testing.T) {
	registry := NewRegistry(HandlerDeps{})

	t.Run("update_task requires a valid task_id", func(t *testing.T) {
		result := registry.Dispatch(context.Background(), ActionUpdateTask, map[string]interface{}{
			"task_id": "not-a-uuid",
			"fields":  map[string]interface{}{"status": "completed"},
		}, newActionContext(&fakeStorage{}))
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "task_id is not a valid id")
	})

	t.Run("update_task requires fields", func(t *testing.T) {
		result := registry.Dispatch(context.Background(), ActionUpdateTask, map[string]interface{}{
			"task_id": uuid.New().String(),
		}, newActionContext(&fakeStorage{}))
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "at least one field")
	})

	t.Run("update_task applies fields", func(t *testing.T) {
		storage := &fakeStorage{}
		taskID := uuid.New()
		result := registry.Dispatch(context.Background(), ActionUpdateTask, map[string]interface{}{
			"task_id": taskID.String(),
			"fields":  map[string]interface{}{"status": "completed", "priority": "low"},
		}, newActionContext(storage))

		require.True(t, result.Success, result.Error)
		require.Len(t, storage.fieldUpdates, 1)
		assert.Equal(t, "tasks", storage.fieldUpdates[0].entity)
		assert.Equal(t, taskID, storage.fieldUpdates[0].entityID)
		assert.Len(t, storage.fieldUpdates[0].fields, 2)
	})

	t.Run("update_entity_field routes by entity name", func(t *testing.T) {
		storage := &fakeStorage{}
		invoiceID := uuid.New()
		result := registry.Dispatch(context.Background(), ActionUpdateEntityField, map[string]interface{}{
			"entity":    "invoices",
			"entity_id": invoiceID.String(),
			"fields":    map[string]interface{}{"status": "sent"},
		}, newActionContext(storage))

		require.True(t, result.Success, result.Error)
		require.Len(t, storage.fieldUpdates, 1)
		assert.Equal(t, "invoices", storage.fieldUpdates[0].entity)
		assert.Equal(t, invoiceID, storage.fieldUpdates[0].entityID)
	})
}

func TestSendNotificationHandler(t *testing.T) {
	registry := NewRegistry(HandlerDeps{})

	t.Run("defaults kind and recipient", func(t *testing.T) {
		storage := &fakeStorage{}
		actx := newActionContext(storage)
		result := registry.Dispatch(context.Background(), ActionSendNotification, map[string]interface{}{
			"title":   "Invoice overdue",
			"message": "Invoice INV-2026-00001 is overdue",
		}, actx)

		require.True(t, result.Success, result.Error)
		require.Len(t, storage.notifications, 1)
		n := storage.notifications[0]
		assert.Equal(t, "automation", n.Kind)
		assert.Equal(t, actx.UserID, n.UserID)
		assert.Equal(t, actx.TenantID, n.TenantID)
	})

	t.Run("explicit recipient wins", func(t *testing.T) {
		storage := &fakeStorage{}
		recipient := uuid.New()
		result := registry.Dispatch(context.Background(), ActionSendNotification, map[string]interface{}{
			"title":   "Heads up",
			"user_id": recipient.String(),
		}, newActionContext(storage))

		require.True(t, result.Success, result.Error)
		assert.Equal(t, recipient, *storage.notifications[0].UserID)
	})
}

func TestSendEmailHandler(t *testing.T) {
	t.Run("no provider logs the intent and succeeds", func(t *testing.T) {
		registry := NewRegistry(HandlerDeps{})
		result := registry.Dispatch(context.Background(), ActionSendEmail, map[string]interface{}{
			"to":      "client@example.com",
			"subject": "Your invoice",
		}, newActionContext(&fakeStorage{}))

		require.True(t, result.Success, result.Error)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, "logged", data["dispatched"])
	})

	t.Run("sends through the provider", func(t *testing.T) {
		sender := &fakeEmailSender{}
		registry := NewRegistry(HandlerDeps{Email: sender})
		result := registry.Dispatch(context.Background(), ActionSendEmail, map[string]interface{}{
			"to":      "client@example.com",
			"subject": "Your invoice",
			"body":    "Please pay",
		}, newActionContext(&fakeStorage{}))

		require.True(t, result.Success, result.Error)
		assert.Equal(t, []string{"client@example.com"}, sender.sent)
	})

	t.Run("provider failure becomes a failed result", func(t *testing.T) {
		sender := &fakeEmailSender{err: errors.New("rate limited")}
		registry := NewRegistry(HandlerDeps{Email: sender})
		result := registry.Dispatch(context.Background(), ActionSendEmail, map[string]interface{}{
			"to":      "client@example.com",
			"subject": "Your invoice",
		}, newActionContext(&fakeStorage{}))
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "rate limited")
	})

	t.Run("to and subject are required", func(t *testing.T) {
		registry := NewRegistry(HandlerDeps{})
		result := registry.Dispatch(context.Background(), ActionSendEmail, map[string]interface{}{
			"subject": "x",
		}, newActionContext(&fakeStorage{}))
		assert.False(t, result.Success)

		result = registry.Dispatch(context.Background(), ActionSendEmail, map[string]interface{}{
			"to": "x@y.z",
		}, newActionContext(&fakeStorage{}))
		assert.False(t, result.Success)
	})
}

func TestCallWebhookHandler(t *testing.T) {
	t.Run("posts the payload", func(t *testing.T) {
		var gotMethod, gotContentType, gotHeader string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotContentType = r.Header.Get("Content-Type")
			gotHeader = r.Header.Get("X-Signature")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		registry := NewRegistry(HandlerDeps{})
		result := registry.Dispatch(context.Background(), ActionCallWebhook, map[string]interface{}{
			"url":     server.URL,
			"payload": map[string]interface{}{"event": "invoice_paid"},
			"headers": map[string]interface{}{"X-Signature": "abc123"},
		}, newActionContext(&fakeStorage{}))

		require.True(t, result.Success, result.Error)
		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, "application/json", gotContentType)
		assert.Equal(t, "abc123", gotHeader)
	})

	t.Run("non-2xx status fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		registry := NewRegistry(HandlerDeps{})
		result := registry.Dispatch(context.Background(), ActionCallWebhook, map[string]interface{}{
			"url": server.URL,
		}, newActionContext(&fakeStorage{}))
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "webhook returned status 502")
	})

	t.Run("slow endpoint times out", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		registry := NewRegistry(HandlerDeps{WebhookTimeout: 20 * time.Millisecond})
		result := registry.Dispatch(context.Background(), ActionCallWebhook, map[string]interface{}{
			"url": server.URL,
		}, newActionContext(&fakeStorage{}))
		assert.False(t, result.Success)
		assert.Equal(t, "timeout", result.Error)
	})

	t.Run("url is required", func(t *testing.T) {
		registry := NewRegistry(HandlerDeps{})
		result := registry.Dispatch(context.Background(), ActionCallWebhook, map[string]interface{}{}, newActionContext(&fakeStorage{}))
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "url is required")
	})
}

func TestAssignUserHandler(t *testing.T) {
	registry := NewRegistry(HandlerDeps{})

	t.Run("defaults to tasks", func(t *testing.T) {
		storage := &fakeStorage{}
		userID := uuid.New()
		entityID := uuid.New()
		result := registry.Dispatch(context.Background(), ActionAssignUser, map[string]interface{}{
			"user_id":   userID.String(),
			"entity_id": entityID.String(),
		}, newActionContext(storage))

		require.True(t, result.Success, result.Error)
		require.Len(t, storage.assignments, 1)
		assert.Equal(t, "tasks", storage.assignments[0].entity)
		assert.Equal(t, userID, storage.assignments[0].userID)
		assert.Equal(t, entityID, storage.assignments[0].entityID)
	})

	t.Run("both ids are required", func(t *testing.T) {
		result := registry.Dispatch(context.Background(), ActionAssignUser, map[string]interface{}{
			"user_id": uuid.New().String(),
		}, newActionContext(&fakeStorage{}))
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "entity_id is required")
	})
}

func TestCreateInvoiceHandler(t *testing.T) {
	registry := NewRegistry(HandlerDeps{})

	t.Run("computes totals from line items", func(t *testing.T) {
		storage := &fakeStorage{}
		result := registry.Dispatch(context.Background(), ActionCreateInvoice, map[string]interface{}{
			"client_id": uuid.New().String(),
			"tax_rate":  float64(10),
			"line_items": []interface{}{
				map[string]interface{}{"description": "Consulting", "quantity": float64(2), "unit_price": float64(100)},
				map[string]interface{}{"description": "Filing fee", "unit_price": float64(50)},
			},
		}, newActionContext(storage))

		require.True(t, result.Success, result.Error)
		require.Len(t, storage.invoices, 1)
		invoice := storage.invoices[0]
		assert.Equal(t, models.InvoiceStatusDraft, invoice.Status)
		assert.Equal(t, float64(250), invoice.Subtotal)
		assert.Equal(t, float64(275), invoice.Total)
		assert.Equal(t, "USD", invoice.Currency)
	})

	t.Run("client_id is required", func(t *testing.T) {
		result := registry.Dispatch(context.Background(), ActionCreateInvoice, map[string]interface{}{}, newActionContext(&fakeStorage{}))
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "client_id is required")
	})
}
