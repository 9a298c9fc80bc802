package entity

import "github.com/google/uuid"

// Identity is the authenticated requester as reconstructed from a verified
// bearer token. It carries exactly the claims the issuer embeds, so access
// decisions never need a second lookup of the requester's own row.
type Identity struct {
	ID       uuid.UUID
	Username string
	Email    string
	Kind     AccountKind
	ParentID *uuid.UUID
}

// CanAccess decides whether the requester may read the target account.
// The grants, in order: the requester's own account, a sub-account viewing
// its parent, and a business account viewing one of its own sub-accounts.
// The kind switch is exhaustive; an unrecognized kind always denies.
func (id *Identity) CanAccess(target *Account) bool {
	if id.ID == target.ID {
		return true
	}

	// Only sub-accounts carry a parent id, which keeps this grant scoped to
	// the child-views-parent relation.
	if id.ParentID != nil && *id.ParentID == target.ID {
		return true
	}

	switch id.Kind {
	case KindBusiness:
		return target.IsSubaccountOf(id.ID)
	case KindIndividual, KindSubaccount:
		return false
	default:
		return false
	}
}
