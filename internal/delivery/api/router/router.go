// Package router wires handlers to routes.
package router

import (
	"fintracker/internal/delivery/api/middleware"
	"fintracker/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler        *handler.AuthHandler
	CategoryHandler    *handler.CategoryHandler
	TransactionHandler *handler.TransactionHandler
	HealthHandler      *handler.HealthHandler
	AuthMiddleware     *middleware.AuthMiddleware
}

type router struct {
	authHandler        *handler.AuthHandler
	categoryHandler    *handler.CategoryHandler
	transactionHandler *handler.TransactionHandler
	healthHandler      *handler.HealthHandler
	authMiddleware     *middleware.AuthMiddleware
}

func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:        params.AuthHandler,
		categoryHandler:    params.CategoryHandler,
		transactionHandler: params.TransactionHandler,
		healthHandler:      params.HealthHandler,
		authMiddleware:     params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", r.healthHandler.Check)

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh", r.authHandler.Refresh)
		authGroup.POST("/revoke", r.authHandler.Revoke)

		authGroup.GET("/sessions", r.authHandler.ListSessions, r.authMiddleware.Authenticate)
		authGroup.DELETE("/sessions/:id", r.authHandler.RevokeSession, r.authMiddleware.Authenticate)
		authGroup.POST("/logout", r.authHandler.Logout, r.authMiddleware.Authenticate)
	}

	categories := api.Group("/categories", r.authMiddleware.Authenticate)
	{
		categories.POST("", r.categoryHandler.Create)
		categories.GET("", r.categoryHandler.List)
		categories.GET("/:id", r.categoryHandler.Get)
		categories.PUT("", r.categoryHandler.Update)
		categories.DELETE("", r.categoryHandler.Delete)
	}

	transactions := api.Group("/transactions", r.authMiddleware.Authenticate)
	{
		transactions.POST("", r.transactionHandler.Create)
		transactions.GET("", r.transactionHandler.List)
		transactions.GET("/:id", r.transactionHandler.Get)
		transactions.PUT("", r.transactionHandler.Update)
		transactions.DELETE("", r.transactionHandler.Delete)
	}
}
