package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.Middleware
	Idempotency    fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/change-password", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", cfg.Idempotency, cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/stats", cfg.Tickets.TicketStats)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
	tickets.Post("/:id/comments", cfg.Idempotency, cfg.Tickets.AddComment)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)
	tickets.Get("/:id/timeline", cfg.Tickets.ListTimeline)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/me", cfg.Users.GetMe)
	users.Put("/me", cfg.Users.UpdateMe)
	users.Get("", auth.RequireRole(domain.RoleAgent, domain.RoleAdmin), cfg.Users.ListUsers)
	users.Get("/:id", auth.RequireRole(domain.RoleAgent, domain.RoleAdmin), cfg.Users.GetUser)
	users.Put("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Users.UpdateUser)
	users.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Users.DeleteUser)
}
