package service

import (
	"context"

	"postdeck/internal/domain/entity"

	"github.com/google/uuid"
)

// AccountCache defines an optional read-through cache for account summaries.
// Implementations must tolerate a miss as the common case; the resolver falls
// back to the repository and repopulates.
type AccountCache interface {
	// Get returns the cached account and whether it was present.
	Get(ctx context.Context, id uuid.UUID) (*entity.Account, bool, error)

	// Set stores the account summary under its id with the configured TTL.
	Set(ctx context.Context, account *entity.Account) error

	// Invalidate drops the cached summary after a mutation or deletion.
	Invalidate(ctx context.Context, id uuid.UUID) error
}
