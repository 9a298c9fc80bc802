// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"postdeck/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
// Kind is restricted to individual or business; sub-accounts are created
// through CreateSubAccount only.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Kind     string `json:"kind" validate:"required"`
}

// LoginInput defines the data required for an account to log in.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateSubAccountInput defines the data a business account supplies to
// create one of its sub-accounts.
type CreateSubAccountInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// --- Output DTOs ---

// AccountSummary is the client-facing projection of an account.
// It never includes the password hash.
type AccountSummary struct {
	ID        uuid.UUID          `json:"id"`
	Username  string             `json:"username"`
	Email     string             `json:"email"`
	Kind      entity.AccountKind `json:"kind"`
	ParentID  *uuid.UUID         `json:"parentId,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// NewAccountSummary maps an account entity to its client-facing projection.
func NewAccountSummary(account *entity.Account) *AccountSummary {
	return &AccountSummary{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		Kind:      account.Kind,
		ParentID:  account.ParentID,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}

// AuthOutput returns the account summary together with a signed bearer token.
type AuthOutput struct {
	Account *AccountSummary `json:"account"`
	Token   string          `json:"token"`
}

// AuthUsecase defines the credential and token issuing operations.
// This is the contract that the delivery layer (e.g., API handlers) depends on.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error)
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)
	CreateSubAccount(ctx context.Context, parentID uuid.UUID, input *CreateSubAccountInput) (*AuthOutput, error)
}
