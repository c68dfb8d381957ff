package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/chat-ticketing/internal/api/http/handlers"
	"github.com/spec-kit/chat-ticketing/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Queues         *handlers.QueuesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/unread", cfg.Tickets.UnreadBadge)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Put("/:id/transfer", cfg.Tickets.Transfer)
	tickets.Get("/:id/messages", cfg.Tickets.ListMessages)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)
	tickets.Post("/:id/read", cfg.Tickets.MarkRead)

	queues := app.Group("/queues", cfg.AuthMiddleware.Handle)
	queues.Get("/", cfg.Queues.ListQueues)
	queues.Post("/", auth.RequireElevated(), cfg.Queues.CreateQueue)
}
