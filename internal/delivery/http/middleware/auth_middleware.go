// Package middleware contains echo middleware for the HTTP delivery.
package middleware

import (
	"strings"

	"postdeck/internal/delivery/http/response"
	"postdeck/internal/domain/entity"
	"postdeck/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// keyIdentity is the echo.Context key holding the verified requester identity.
const keyIdentity = "identity"

// AuthMiddleware provides middleware for JWT authentication and authorization.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the bearer token and stores the requester identity
// on the request context for handlers to use.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "MISSING_TOKEN", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "INVALID_TOKEN_FORMAT", "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.ValidateToken(tokenString)
		if err != nil {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
		}

		identity, err := claims.Identity()
		if err != nil {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid account ID in token")
		}

		c.Set(keyIdentity, identity)

		return next(c)
	}
}

// RequireKind is a middleware factory that checks the requester's account kind.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireKind(kind entity.AccountKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := GetIdentity(c)
			if !ok {
				return response.Forbidden(c, "PERMISSION_DENIED", "Permission denied: identity missing")
			}

			if identity.Kind != kind {
				return response.Forbidden(c, "PERMISSION_DENIED", "Permission denied: require a "+kind.String()+" account")
			}

			return next(c)
		}
	}
}

// GetIdentity returns the verified requester identity set by Authenticate.
func GetIdentity(c echo.Context) (*entity.Identity, bool) {
	identity, ok := c.Get(keyIdentity).(*entity.Identity)

	return identity, ok
}
