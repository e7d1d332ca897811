package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bagusramadhan/practice-suite-be/internal/core/engine"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/repositories"
)

// CreateClientRequest is the payload for creating a client
type CreateClientRequest struct {
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	CompanyName  string     `json:"company_name"`
	Tags         []string   `json:"tags"`
	AssignedUser *uuid.UUID `json:"assigned_user,omitempty"`
}

// UpdateClientRequest is the payload for updating a client
type UpdateClientRequest struct {
	Name         *string    `json:"name,omitempty"`
	Email        *string    `json:"email,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	CompanyName  *string    `json:"company_name,omitempty"`
	Status       *string    `json:"status,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	AssignedUser *uuid.UUID `json:"assigned_user,omitempty"`
}

var validClientStatuses = map[string]bool{
	"active":   true,
	"inactive": true,
	"archived": true,
}

// ClientService handles client operations and emits client events to
// the automation engine
type ClientService struct {
	clientRepo repositories.ClientRepo
	engine     *engine.Engine
}

// NewClientService creates a new client service
func NewClientService(clientRepo repositories.ClientRepo, eng *engine.Engine) *ClientService {
	return &ClientService{clientRepo: clientRepo, engine: eng}
}

// CreateClient creates a client and emits clients/client_created
func (s *ClientService) CreateClient(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req *CreateClientRequest) (*models.Client, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("client name is required")
	}

	client := &models.Client{
		TenantID:     tenantID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		CompanyName:  req.CompanyName,
		Status:       "active",
		Tags:         req.Tags,
		AssignedUser: req.AssignedUser,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.engine.ProcessEvent(engine.Event{
		Module:   "clients",
		Event:    "client_created",
		TenantID: tenantID,
		UserID:   userID,
		Data:     clientEventData(client),
	})

	return client, nil
}

// ListClients lists clients for a tenant, optionally filtered by status
func (s *ClientService) ListClients(ctx context.Context, tenantID uuid.UUID, status string) ([]models.Client, error) {
	if status != "" && !validClientStatuses[status] {
		return nil, fmt.Errorf("invalid client status: %s", status)
	}
	return s.clientRepo.FindByTenant(ctx, tenantID, status)
}

// GetClient retrieves a single client
func (s *ClientService) GetClient(ctx context.Context, tenantID, clientID uuid.UUID) (*models.Client, error) {
	return s.clientRepo.FindByID(ctx, tenantID, clientID)
}

// UpdateClient updates a client
func (s *ClientService) UpdateClient(ctx context.Context, tenantID, clientID uuid.UUID, req *UpdateClientRequest) (*models.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, tenantID, clientID)
	if err != nil {
		return nil, fmt.Errorf("client not found: %w", err)
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.CompanyName != nil {
		client.CompanyName = *req.CompanyName
	}
	if req.Status != nil {
		if !validClientStatuses[*req.Status] {
			return nil, fmt.Errorf("invalid client status: %s", *req.Status)
		}
		client.Status = *req.Status
	}
	if req.Tags != nil {
		client.Tags = req.Tags
	}
	if req.AssignedUser != nil {
		client.AssignedUser = req.AssignedUser
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	return client, nil
}

// DeleteClient deletes a client
func (s *ClientService) DeleteClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	if _, err := s.clientRepo.FindByID(ctx, tenantID, clientID); err != nil {
		return fmt.Errorf("client not found: %w", err)
	}
	return s.clientRepo.Delete(ctx, tenantID, clientID)
}

// clientEventData flattens a client into the event payload shape
func clientEventData(client *models.Client) map[string]interface{} {
	data := map[string]interface{}{
		"id":           client.ID.String(),
		"name":         client.Name,
		"email":        client.Email,
		"phone":        client.Phone,
		"company_name": client.CompanyName,
		"status":       client.Status,
		"tags":         []string(client.Tags),
	}
	if client.AssignedUser != nil {
		data["assigned_user"] = client.AssignedUser.String()
	}
	return data
}
