package usecase

import (
	"context"

	"postdeck/internal/domain/entity"

	"github.com/google/uuid"
)

// UpdateProfileInput carries the mutable profile fields. An empty username
// leaves the stored one unchanged but the update still runs, refreshing the
// account's updatedAt timestamp.
type UpdateProfileInput struct {
	Username string `json:"username" validate:"omitempty,min=3,max=50"`
}

// ChangePasswordInput carries a password rotation request. The current
// password must verify before the new one is accepted.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// AccountUsecase defines the account resolution and hierarchy operations.
// Every operation receives the verified requester identity from the token.
type AccountUsecase interface {
	// GetCurrentAccount returns the requester's own summary.
	GetCurrentAccount(ctx context.Context, identity *entity.Identity) (*AccountSummary, error)

	// GetAccount returns the target summary when the hierarchy policy grants
	// access: self, a sub-account's parent, or a business's own sub-account.
	GetAccount(ctx context.Context, identity *entity.Identity, targetID uuid.UUID) (*AccountSummary, error)

	// ListSubAccounts returns all sub-accounts owned by the requester.
	// Business accounts only.
	ListSubAccounts(ctx context.Context, identity *entity.Identity) ([]*AccountSummary, error)

	// UpdateProfile applies profile changes to the requester's own account.
	UpdateProfile(ctx context.Context, identity *entity.Identity, input *UpdateProfileInput) (*AccountSummary, error)

	// ChangePassword rotates the requester's credential.
	ChangePassword(ctx context.Context, identity *entity.Identity, input *ChangePasswordInput) error

	// DeleteSubAccount removes one of the requester's own sub-accounts.
	// Business accounts only.
	DeleteSubAccount(ctx context.Context, identity *entity.Identity, targetID uuid.UUID) error
}
