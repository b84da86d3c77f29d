package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vendor-signup-service/internal/api/http/handlers"
	"github.com/spec-kit/vendor-signup-service/internal/auth"
	"github.com/spec-kit/vendor-signup-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	SignupRequests *handlers.SignupRequestsHandler
	AuthMiddleware *auth.AuthMiddleware
	LoginLimiter   *IPRateLimiter
	Metrics        fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	authGroup := app.Group("/auth")
	if cfg.LoginLimiter != nil {
		authGroup.Post("/login", cfg.LoginLimiter.Handle, cfg.Auth.Login)
	} else {
		authGroup.Post("/login", cfg.Auth.Login)
	}
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireRole(), cfg.Auth.Me)

	app.Post("/signup-requests", cfg.SignupRequests.Submit)

	admin := app.Group("/admin/signup-requests", cfg.AuthMiddleware.Handle, auth.RequireRole())
	admin.Get("", cfg.SignupRequests.List)
	admin.Get("/:id", cfg.SignupRequests.Get)
	admin.Get("/:id/history", cfg.SignupRequests.History)

	reviewer := auth.RequireRole(domain.AdminRoleAdmin)
	admin.Post("/:id/approve", reviewer, cfg.SignupRequests.Approve)
	admin.Post("/:id/reject", reviewer, cfg.SignupRequests.Reject)
	admin.Post("/:id/send-to-vendor", reviewer, cfg.SignupRequests.SendToVendor)
}
