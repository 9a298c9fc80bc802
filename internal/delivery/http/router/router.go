// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"postdeck/internal/delivery/http/middleware"
	"postdeck/internal/delivery/http/router/handler"
	"postdeck/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	AccountHandler *handler.AccountHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	accountHandler *handler.AccountHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		accountHandler: params.AccountHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Credential routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)

		// Sub-account creation needs a logged-in business account.
		authGroup.POST("/create-subaccount", r.authHandler.CreateSubAccount,
			r.authMiddleware.Authenticate,
			r.authMiddleware.RequireKind(entity.KindBusiness),
		)
	}

	// Account routes that require authentication
	accountGroup := e.Group("/accounts")
	accountGroup.Use(r.authMiddleware.Authenticate)
	{
		requireBusiness := r.authMiddleware.RequireKind(entity.KindBusiness)

		accountGroup.GET("", r.accountHandler.GetCurrentAccount)
		// Registered before /:id so the literal segment wins.
		accountGroup.GET("/subaccounts", r.accountHandler.ListSubAccounts, requireBusiness)
		accountGroup.GET("/:id", r.accountHandler.GetAccount)
		accountGroup.PUT("/update-profile", r.accountHandler.UpdateProfile)
		accountGroup.PUT("/change-password", r.accountHandler.ChangePassword)
		accountGroup.DELETE("/subaccount/:id", r.accountHandler.DeleteSubAccount, requireBusiness)
	}
}
