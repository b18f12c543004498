// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"backoffice/internal/delivery/http/middleware"
	"backoffice/internal/delivery/http/router/handler"
	"backoffice/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	CatalogHandler *handler.CatalogHandler
	HomeHandler    *handler.HomeHandler
	AccessGuard    *middleware.AccessGuard
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	catalogHandler *handler.CatalogHandler
	homeHandler    *handler.HomeHandler
	accessGuard    *middleware.AccessGuard
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		catalogHandler: params.CatalogHandler,
		homeHandler:    params.HomeHandler,
		accessGuard:    params.AccessGuard,
	}
}

// RegisterRoutes sets up all the API routes for the application.
// Protected groups mount the access guard wholesale; a route added to one of
// them cannot bypass the authentication state machine.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// The authentication pipeline itself is reachable without a session.
	e.GET("/login", r.authHandler.LoginPage)
	e.GET("/session", r.authHandler.SessionInfo)

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/logout", r.authHandler.Logout)
	}

	mfaGroup := e.Group("/mfa")
	{
		mfaGroup.GET("/challenge", r.authHandler.ChallengeStart)
		mfaGroup.POST("/challenge", r.authHandler.ChallengeVerify)
		mfaGroup.POST("/resend", r.authHandler.Resend)
	}

	// Administrator surface: verified session plus administrator role.
	adminGroup := e.Group("/admin")
	adminGroup.Use(r.accessGuard.RequireVerified)
	adminGroup.Use(r.accessGuard.RequireRole(entity.RoleAdministrator))
	{
		adminGroup.GET("/categories", r.catalogHandler.ListCategories)
		adminGroup.POST("/categories", r.catalogHandler.CreateCategory)
		adminGroup.PUT("/categories/:id", r.catalogHandler.UpdateCategory)
		adminGroup.DELETE("/categories/:id", r.catalogHandler.DeleteCategory)

		adminGroup.GET("/products", r.catalogHandler.ListProducts)
		adminGroup.GET("/products/:id", r.catalogHandler.GetProduct)
		adminGroup.POST("/products", r.catalogHandler.CreateProduct)
		adminGroup.PUT("/products/:id", r.catalogHandler.UpdateProduct)
		adminGroup.DELETE("/products/:id", r.catalogHandler.DeleteProduct)

		adminGroup.POST("/products/:id/images", r.catalogHandler.AddProductImage)
		adminGroup.PUT("/products/:id/images/order", r.catalogHandler.ReorderProductImages)
	}

	// Customer surface: any verified session.
	customerGroup := e.Group("/customer")
	customerGroup.Use(r.accessGuard.RequireVerified)
	{
		customerGroup.GET("", r.homeHandler.CustomerLanding)
	}
}
