package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
)

// recordingTaskRepo captures UpdateFields calls
type recordingTaskRepo struct {
	*memTaskRepo
	updates []map[string]interface{}
}

func (r *recordingTaskRepo) UpdateFields(ctx context.Context, tenantID, id uuid.UUID, fields map[string]interface{}) error {
	r.updates = append(r.updates, fields)
	return nil
}

type recordingClientRepo struct {
	*memClientRepo
	updates []map[string]interface{}
}

func (r *recordingClientRepo) UpdateFields(ctx context.Context, tenantID, id uuid.UUID, fields map[string]interface{}) error {
	r.updates = append(r.updates, fields)
	return nil
}

func newTestAdapter() (*StorageAdapter, *recordingTaskRepo, *recordingClientRepo, *memInvoiceRepo) {
	tasks := &recordingTaskRepo{memTaskRepo: newMemTaskRepo()}
	clients := &recordingClientRepo{memClientRepo: newMemClientRepo()}
	invoices := newMemInvoiceRepo()
	adapter := NewStorageAdapter(nil, tasks, clients, invoices, nil)
	return adapter, tasks, clients, invoices
}

func TestStorageAdapter_UpdateTaskFields_Allowlist(t *testing.T) {
	adapter, tasks, _, _ := newTestAdapter()

	err := adapter.UpdateTaskFields(context.Background(), uuid.New(), uuid.New(), map[string]interface{}{
		"status":    "completed",
		"priority":  "high",
		"tenant_id": uuid.New().String(), // must be dropped
		"id":        uuid.New().String(), // must be dropped
	})
	require.NoError(t, err)

	require.Len(t, tasks.updates, 1)
	fields := tasks.updates[0]
	assert.Len(t, fields, 2)
	assert.Equal(t, "completed", fields["status"])
	assert.Equal(t, "high", fields["priority"])
	assert.NotContains(t, fields, "tenant_id")
	assert.NotContains(t, fields, "id")
}

func TestStorageAdapter_UpdateFields_NothingAllowedIsAnError(t *testing.T) {
	adapter, tasks, _, _ := newTestAdapter()

	err := adapter.UpdateTaskFields(context.Background(), uuid.New(), uuid.New(), map[string]interface{}{
		"tenant_id": "x",
		"secret":    "y",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no updatable fields")
	assert.Empty(t, tasks.updates)
}

func TestStorageAdapter_UpdateEntityFields(t *testing.T) {
	adapter, _, clients, _ := newTestAdapter()

	t.Run("routes to the entity's repository", func(t *testing.T) {
		err := adapter.UpdateEntityFields(context.Background(), uuid.New(), "clients", uuid.New(), map[string]interface{}{
			"status": "inactive",
		})
		require.NoError(t, err)
		require.Len(t, clients.updates, 1)
		assert.Equal(t, "inactive", clients.updates[0]["status"])
	})

	t.Run("unknown entity is rejected", func(t *testing.T) {
		err := adapter.UpdateEntityFields(context.Background(), uuid.New(), "users", uuid.New(), map[string]interface{}{
			"role": "admin",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unsupported entity "users"`)
	})
}

func TestStorageAdapter_AssignUser(t *testing.T) {
	adapter, tasks, clients, _ := newTestAdapter()
	userID := uuid.New()

	require.NoError(t, adapter.AssignUser(context.Background(), uuid.New(), "tasks", uuid.New(), userID))
	require.Len(t, tasks.updates, 1)
	assert.Equal(t, userID, tasks.updates[0]["assigned_to"])

	require.NoError(t, adapter.AssignUser(context.Background(), uuid.New(), "clients", uuid.New(), userID))
	require.Len(t, clients.updates, 1)
	assert.Equal(t, userID, clients.updates[0]["assigned_user"])

	err := adapter.AssignUser(context.Background(), uuid.New(), "invoices", uuid.New(), userID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support assignment")
}

func TestStorageAdapter_CreateInvoice_AllocatesNumber(t *testing.T) {
	adapter, _, _, invoices := newTestAdapter()
	tenantID := uuid.New()

	invoice := &models.Invoice{TenantID: tenantID, ClientID: uuid.New(), Status: models.InvoiceStatusDraft}
	require.NoError(t, adapter.CreateInvoice(context.Background(), invoice))
	assert.Equal(t, "INV-2026-00001", invoice.InvoiceNumber)

	numbered := &models.Invoice{TenantID: tenantID, ClientID: uuid.New(), InvoiceNumber: "INV-KEEP-1"}
	require.NoError(t, adapter.CreateInvoice(context.Background(), numbered))
	assert.Equal(t, "INV-KEEP-1", numbered.InvoiceNumber)

	_, err := invoices.FindByID(context.Background(), tenantID, invoice.ID)
	require.NoError(t, err)
}
