// Package entity contains the core business objects of the project.
package entity

// AccountKind represents the kind of account a tenant holds.
type AccountKind string

const (
	// KindIndividual indicates a standalone personal account.
	KindIndividual AccountKind = "individual"
	// KindBusiness indicates a business account that may own sub-accounts.
	KindBusiness AccountKind = "business"
	// KindSubaccount indicates an account owned by a business account.
	KindSubaccount AccountKind = "subaccount"
)

// String returns the string representation of the AccountKind.
func (k AccountKind) String() string {
	return string(k)
}

// IsValid checks if the AccountKind is a known value.
func (k AccountKind) IsValid() bool {
	switch k {
	case KindIndividual, KindBusiness, KindSubaccount:
		return true
	default:
		return false
	}
}

// IsRegistrable reports whether the kind may be chosen at self-registration.
// Sub-accounts are only ever created by their owning business account.
func (k AccountKind) IsRegistrable() bool {
	switch k {
	case KindIndividual, KindBusiness:
		return true
	case KindSubaccount:
		return false
	default:
		return false
	}
}
