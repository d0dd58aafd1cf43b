// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"peppers/internal/delivery/http/middleware"
	"peppers/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AccountHandler      *handler.AccountHandler
	AdminHandler        *handler.AdminHandler
	CatalogHandler      *handler.CatalogHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
	RequestIDMiddleware *middleware.RequestIDMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	accountHandler *handler.AccountHandler
	adminHandler   *handler.AdminHandler
	catalogHandler *handler.CatalogHandler
	auth           *middleware.AuthMiddleware
	rateLimit      *middleware.RateLimitMiddleware
	requestID      *middleware.RequestIDMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		accountHandler: params.AccountHandler,
		adminHandler:   params.AdminHandler,
		catalogHandler: params.CatalogHandler,
		auth:           params.AuthMiddleware,
		rateLimit:      params.RateLimitMiddleware,
		requestID:      params.RequestIDMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.requestID.Process)

	e.GET("/health", handler.HealthCheck)

	// Credential endpoints, all rate-limited.
	e.POST("/register", r.accountHandler.Register, r.rateLimit.PerIP("register"))
	e.POST("/login", r.accountHandler.Login, r.rateLimit.PerIPAndPhone("login"))

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/firebase", r.accountHandler.FederatedLogin, r.rateLimit.PerIP("federated"))
		authGroup.POST("/request-reset", r.accountHandler.RequestReset, r.rateLimit.PerIPAndPhone("request-reset"))
		authGroup.POST("/reset", r.accountHandler.ResetPassword, r.rateLimit.PerIPAndPhone("reset"))
	}

	// Self-service profile, authentication required.
	e.GET("/me", r.accountHandler.GetMe, r.auth.Authenticate)
	e.PUT("/me", r.accountHandler.UpdateMe, r.auth.Authenticate)

	// Staff administration. Role changes are restricted further inside the
	// usecase.
	adminGroup := e.Group("/admin")
	{
		adminGroup.POST("/bootstrap", r.adminHandler.Bootstrap, r.rateLimit.PerIP("bootstrap"))

		usersGroup := adminGroup.Group("/users", r.auth.Authenticate, r.auth.RequireStaff)
		usersGroup.GET("", r.adminHandler.ListUsers)
		usersGroup.PATCH("/:id", r.adminHandler.UpdateUser)
		usersGroup.POST("/:id/set-password", r.adminHandler.SetPassword)
	}

	// Public catalog surface.
	e.GET("/public/menu", r.catalogHandler.GetMenu)
	e.GET("/public/images", r.catalogHandler.ListImages)
	e.GET("/api/images/:name", r.catalogHandler.GetImage)
	e.GET("/static/uploads/:name", r.catalogHandler.GetImage)
}
