package service

import (
	"context"

	apperrors "github.com/fraudsight/transaction-service/internal/errors"
	"github.com/fraudsight/transaction-service/internal/models"
)

const (
	maxAmount         = 1000000
	maxDescriptionLen = 500
	maxShortTextLen   = 100
)

// CreateTransactionInput is the validated body of a create request.
type CreateTransactionInput struct {
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	Description string  `json:"description"`
	Merchant    string  `json:"merchant"`
	Location    string  `json:"location"`
}

func (in *CreateTransactionInput) validate() error {
	if in.Amount <= 0 || in.Amount > maxAmount {
		return apperrors.NewValidationError("amount", "must be positive and at most 1000000")
	}
	if !models.ValidType(in.Type) {
		return apperrors.NewValidationError("type", "unknown transaction type")
	}
	if in.Status == "" {
		in.Status = models.StatusCompleted
	}
	if !models.ValidStatus(in.Status) {
		return apperrors.NewValidationError("status", "unknown status")
	}
	if len(in.Description) > maxDescriptionLen {
		return apperrors.NewValidationError("description", "too long")
	}
	if len(in.Merchant) > maxShortTextLen {
		return apperrors.NewValidationError("merchant", "too long")
	}
	if len(in.Location) > maxShortTextLen {
		return apperrors.NewValidationError("location", "too long")
	}
	return nil
}

// UpdateTransactionInput carries partial updates; nil fields are untouched.
type UpdateTransactionInput struct {
	Amount      *float64 `json:"amount"`
	Type        *string  `json:"type"`
	Status      *string  `json:"status"`
	Description *string  `json:"description"`
	Merchant    *string  `json:"merchant"`
	Location    *string  `json:"location"`
}

// CreateTransaction records a transaction for the authenticated caller and
// invalidates every cached view that could contain it.
func (s *Service) CreateTransaction(ctx context.Context, ident models.Identity, in CreateTransactionInput) (*models.Transaction, error) {
	if ident.ID == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		UserID:      ident.ID,
		Amount:      in.Amount,
		Type:        in.Type,
		Status:      in.Status,
		Description: in.Description,
		Merchant:    in.Merchant,
		Location:    in.Location,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		s.log.Errorf("Failed to create transaction for user %d: %v", ident.ID, err)
		return nil, err
	}

	s.cache.Invalidate(ctx, ident.ID)
	s.log.Infof("Transaction %d created for user %d", tx.ID, ident.ID)
	return tx, nil
}

// GetTransaction fetches one transaction within the caller's scope. Rows
// owned by other users are reported as not found to non-admins so the API
// does not leak row existence.
func (s *Service) GetTransaction(ctx context.Context, ident models.Identity, id int64) (*models.Transaction, error) {
	if ident.ID == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	tx, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ident.IsAdmin() && tx.UserID != ident.ID {
		return nil, apperrors.ErrTransactionNotFound
	}
	return tx, nil
}

// UpdateTransaction applies a partial update within the caller's scope.
func (s *Service) UpdateTransaction(ctx context.Context, ident models.Identity, id int64, in UpdateTransactionInput) (*models.Transaction, error) {
	tx, err := s.GetTransaction(ctx, ident, id)
	if err != nil {
		return nil, err
	}

	if in.Amount != nil {
		tx.Amount = *in.Amount
	}
	if in.Type != nil {
		tx.Type = *in.Type
	}
	if in.Status != nil {
		tx.Status = *in.Status
	}
	if in.Description != nil {
		tx.Description = *in.Description
	}
	if in.Merchant != nil {
		tx.Merchant = *in.Merchant
	}
	if in.Location != nil {
		tx.Location = *in.Location
	}

	check := CreateTransactionInput{
		Amount:      tx.Amount,
		Type:        tx.Type,
		Status:      tx.Status,
		Description: tx.Description,
		Merchant:    tx.Merchant,
		Location:    tx.Location,
	}
	if err := check.validate(); err != nil {
		return nil, err
	}
	tx.Status = check.Status

	if err := s.transactions.Update(ctx, tx); err != nil {
		s.log.Errorf("Failed to update transaction %d: %v", id, err)
		return nil, err
	}

	s.cache.Invalidate(ctx, tx.UserID)
	s.log.Infof("Transaction %d updated", id)
	return tx, nil
}

// DeleteTransaction removes a transaction within the caller's scope.
func (s *Service) DeleteTransaction(ctx context.Context, ident models.Identity, id int64) error {
	tx, err := s.GetTransaction(ctx, ident, id)
	if err != nil {
		return err
	}
	if err := s.transactions.Delete(ctx, id); err != nil {
		s.log.Errorf("Failed to delete transaction %d: %v", id, err)
		return err
	}
	s.cache.Invalidate(ctx, tx.UserID)
	s.log.Infof("Transaction %d deleted", id)
	return nil
}
