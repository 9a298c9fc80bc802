// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account is the sole entity in the system. Every tenant — individual,
// business, or a business-owned sub-account — is a row of this shape.
// ParentID is set if and only if Kind is KindSubaccount, and then always
// references a business account.
type Account struct {
	ID           uuid.UUID   // Globally unique identifier, generated at creation.
	Username     string      // Mutable display name, 3-50 characters.
	Email        string      // Login identifier; immutable and globally unique.
	PasswordHash string      // Opaque bcrypt digest. Never leaves the issuer.
	Kind         AccountKind // Closed kind enum; immutable after creation.
	ParentID     *uuid.UUID  // Owning business account, subaccounts only.
	CreatedAt    time.Time   // Timestamp of account creation.
	UpdatedAt    time.Time   // Refreshed on every mutation.
}

// IsSubaccountOf reports whether the account is a sub-account owned by the
// given business account.
func (a *Account) IsSubaccountOf(parentID uuid.UUID) bool {
	return a.ParentID != nil && *a.ParentID == parentID
}
