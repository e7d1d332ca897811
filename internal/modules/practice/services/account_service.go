package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/repositories"
)

// CreateAccountRequest is the payload for creating a ledger account
type CreateAccountRequest struct {
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	AccountType string     `json:"account_type"`
}

// AccountNode is one node of the chart-of-accounts tree with balances
// rolled up from descendants
type AccountNode struct {
	models.Account
	RolledUpBalance float64       `json:"rolled_up_balance"`
	Children        []AccountNode `json:"children,omitempty"`
}

var validAccountTypes = map[string]bool{
	"asset":     true,
	"liability": true,
	"equity":    true,
	"income":    true,
	"expense":   true,
}

// AccountService handles the chart of accounts
type AccountService struct {
	accountRepo repositories.AccountRepo
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo repositories.AccountRepo) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// CreateAccount creates a ledger account. A child account must share
// its parent's account type.
func (s *AccountService) CreateAccount(ctx context.Context, tenantID uuid.UUID, req *CreateAccountRequest) (*models.Account, error) {
	if req.Code == "" || req.Name == "" {
		return nil, fmt.Errorf("account code and name are required")
	}
	if !validAccountTypes[req.AccountType] {
		return nil, fmt.Errorf("invalid account type: %s", req.AccountType)
	}

	if req.ParentID != nil {
		parent, err := s.accountRepo.FindByID(ctx, tenantID, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent account not found: %w", err)
		}
		if parent.AccountType != req.AccountType {
			return nil, fmt.Errorf("child account type %q must match parent type %q", req.AccountType, parent.AccountType)
		}
	}

	account := &models.Account{
		TenantID:    tenantID,
		ParentID:    req.ParentID,
		Code:        req.Code,
		Name:        req.Name,
		AccountType: req.AccountType,
		IsActive:    true,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

// GetAccountTree returns the tenant's chart of accounts as a tree with
// balances rolled up from leaves to roots
func (s *AccountService) GetAccountTree(ctx context.Context, tenantID uuid.UUID) ([]AccountNode, error) {
	accounts, err := s.accountRepo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	children := make(map[uuid.UUID][]models.Account)
	var roots []models.Account
	for _, account := range accounts {
		if account.ParentID == nil {
			roots = append(roots, account)
		} else {
			children[*account.ParentID] = append(children[*account.ParentID], account)
		}
	}

	var build func(account models.Account) AccountNode
	build = func(account models.Account) AccountNode {
		node := AccountNode{Account: account, RolledUpBalance: account.Balance}
		for _, child := range children[account.ID] {
			childNode := build(child)
			node.RolledUpBalance += childNode.RolledUpBalance
			node.Children = append(node.Children, childNode)
		}
		return node
	}

	tree := make([]AccountNode, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, build(root))
	}
	return tree, nil
}

// UpdateBalance sets an account's own balance
func (s *AccountService) UpdateBalance(ctx context.Context, tenantID, accountID uuid.UUID, balance float64) (*models.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, fmt.Errorf("account not found: %w", err)
	}
	account.Balance = balance
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

// DeleteAccount deletes an account that has no children
func (s *AccountService) DeleteAccount(ctx context.Context, tenantID, accountID uuid.UUID) error {
	accounts, err := s.accountRepo.FindByTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	for _, account := range accounts {
		if account.ParentID != nil && *account.ParentID == accountID {
			return fmt.Errorf("account has child accounts and cannot be deleted")
		}
	}
	return s.accountRepo.Delete(ctx, tenantID, accountID)
}
