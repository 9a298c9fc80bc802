package service

import (
	"time"

	"postdeck/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the custom claims embedded in issued bearer tokens.
// Subject carries the account id; ParentID is present for sub-accounts only.
type Claims struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Kind     string     `json:"kind"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	jwt.RegisteredClaims
}

// Identity rebuilds the requester identity encoded in the claims.
func (c *Claims) Identity() (*entity.Identity, error) {
	accountID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, err
	}

	return &entity.Identity{
		ID:       accountID,
		Username: c.Username,
		Email:    c.Email,
		Kind:     entity.AccountKind(c.Kind),
		ParentID: c.ParentID,
	}, nil
}

// TokenService defines the interface for generating and validating bearer tokens.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateToken creates a signed token encoding the account's identity.
	GenerateToken(account *entity.Account) (string, error)

	// ValidateToken checks the signature and expiry of a token string and
	// returns its claims.
	ValidateToken(tokenString string) (*Claims, error)

	// AccessTokenDuration returns the configured token lifetime.
	AccessTokenDuration() time.Duration
}
