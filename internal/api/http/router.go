package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/travel-approval/internal/api/http/handlers"
	"github.com/spec-kit/travel-approval/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	TravelRequests *handlers.TravelRequestsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/api/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authProtected.Post("/refresh", cfg.Users.Refresh)
	authProtected.Post("/logout", cfg.Users.Logout)
	authProtected.Get("/me", cfg.Users.Me)

	requests := app.Group("/api/travel-requests", cfg.AuthMiddleware.Handle)
	requests.Get("/", cfg.TravelRequests.List)
	requests.Post("/", cfg.TravelRequests.Create)
	requests.Get("/:id", cfg.TravelRequests.Get)
	requests.Put("/:id", cfg.TravelRequests.Update)
	requests.Delete("/:id", cfg.TravelRequests.Delete)
	requests.Post("/:id/approve", cfg.TravelRequests.Approve)
	requests.Post("/:id/cancel", cfg.TravelRequests.Cancel)
}
