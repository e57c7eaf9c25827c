package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-intel/internal/api/http/handlers"
	"github.com/spec-kit/support-intel/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Session        *handlers.SessionHandler
	Tickets        *handlers.TicketsHandler
	Inbox          *handlers.InboxHandler
	Chat           *handlers.ChatHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. The chat widget endpoints are public;
// everything else behind /api requires an operator token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Session.Login)

	widget := app.Group("/widget/chat")
	widget.Post("/sessions", cfg.Chat.StartSession)
	widget.Post("/sessions/:sessionId/messages", cfg.Chat.PostCustomerMessage)
	widget.Get("/sessions/:sessionId/messages", cfg.Chat.Messages)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	api.Get("/tickets", cfg.Tickets.ListTickets)
	api.Post("/tickets/ingest", cfg.Tickets.Ingest)
	api.Get("/tickets/:id", cfg.Tickets.GetTicket)
	api.Patch("/tickets/:id", cfg.Tickets.UpdateTicket)
	api.Delete("/tickets/:id", cfg.Tickets.DeleteTicket)
	api.Delete("/tickets/:id/messages/:messageId", cfg.Tickets.DeleteMessage)

	api.Get("/inbox", cfg.Inbox.List)
	api.Get("/inbox/threads/:threadId", cfg.Inbox.Thread)
	api.Get("/inbox/threads/:threadId/messages/:messageId/attachments/:index", cfg.Inbox.Attachment)
	api.Post("/inbox/threads/:threadId/analyze", cfg.Inbox.Analyze)
	api.Post("/inbox/threads/:threadId/reply", cfg.Inbox.Reply)
	api.Post("/inbox/threads/:threadId/hide", cfg.Inbox.Hide)

	api.Get("/chat/sessions", cfg.Chat.Sessions)
	api.Post("/chat/sessions/:sessionId/agent-messages", cfg.Chat.PostAgentMessage)
	api.Post("/chat/sessions/:sessionId/read", cfg.Chat.MarkRead)
	api.Post("/chat/sessions/:sessionId/close", cfg.Chat.CloseSession)
	api.Post("/chat/sessions/:sessionId/analyze", cfg.Chat.Analyze)
}
