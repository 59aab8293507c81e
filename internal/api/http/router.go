package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/aftersale-service/internal/api/http/handlers"
	"github.com/spec-kit/aftersale-service/internal/auth"
	"github.com/spec-kit/aftersale-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Agents         *handlers.AgentsHandler
	Returns        *handlers.ReturnsHandler
	Repairs        *handlers.RepairsHandler
	Tickets        *handlers.TicketsHandler
	DeskTickets    *handlers.DeskTicketsHandler
	Chats          *handlers.ChatHandler
	Bookings       *handlers.BookingsHandler
	Feedback       *handlers.FeedbackHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)
	authGroup.Post("/agents/login", cfg.Agents.Login)
	authGroup.Post("/password/reset/request", cfg.Agents.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Agents.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	authProtected.Post("/password/change", cfg.Agents.ChangePassword)

	// customer surface
	customer := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireCustomer())

	customer.Post("/returns", cfg.Returns.CreateReturn)
	customer.Get("/returns", cfg.Returns.ListReturns)
	customer.Get("/returns/:id", cfg.Returns.GetReturn)
	customer.Patch("/returns/:id/reason", cfg.Returns.UpdateReason)

	customer.Post("/tickets", cfg.Tickets.CreateTicket)
	customer.Get("/tickets", cfg.Tickets.ListTickets)
	customer.Get("/tickets/:id", cfg.Tickets.GetTicket)
	customer.Post("/tickets/:id/messages", cfg.Tickets.AddMessage)
	customer.Post("/tickets/:id/close", cfg.Tickets.CloseTicket)

	customer.Post("/chats", cfg.Chats.StartSession)
	customer.Get("/chats/:id", cfg.Chats.GetSession)
	customer.Post("/chats/:id/end", cfg.Chats.EndSession)

	customer.Post("/appointments", cfg.Bookings.Book)
	customer.Get("/appointments", cfg.Bookings.ListUpcoming)
	customer.Get("/appointments/availability", cfg.Bookings.CheckAvailability)
	customer.Get("/appointments/:id", cfg.Bookings.GetAppointment)
	customer.Post("/appointments/:id/reschedule", cfg.Bookings.Reschedule)
	customer.Post("/appointments/:id/cancel", cfg.Bookings.Cancel)

	customer.Post("/feedback", cfg.Feedback.Submit)
	customer.Get("/feedback", cfg.Feedback.List)

	// support-desk surface
	desk := app.Group("/desk", cfg.AuthMiddleware.Handle, auth.RequireAgentRole())

	desk.Get("/returns", cfg.Returns.ListAllReturns)
	desk.Get("/returns/key/:key", cfg.Returns.GetReturnByKey)
	desk.Get("/returns/:id", cfg.Returns.GetReturnForDesk)
	desk.Post("/returns/:id/items", cfg.Returns.AddItem)
	desk.Post("/returns/:id/approve", cfg.Returns.Approve)
	desk.Post("/returns/:id/reject", cfg.Returns.Reject)
	desk.Post("/returns/:id/in-transit", cfg.Returns.MarkInTransit)
	desk.Post("/returns/:id/received", cfg.Returns.MarkReceived)
	desk.Post("/returns/:id/refunded", cfg.Returns.MarkRefunded)
	desk.Get("/returns/:id/history", cfg.Returns.ListHistory)

	desk.Post("/repairs", cfg.Repairs.CreateRepair)
	desk.Get("/repairs", cfg.Repairs.ListRepairs)
	desk.Get("/repairs/:id", cfg.Repairs.GetRepair)
	desk.Post("/repairs/:id/start", cfg.Repairs.Start)
	desk.Post("/repairs/:id/complete", cfg.Repairs.Complete)
	desk.Post("/repairs/:id/fail", cfg.Repairs.MarkFailed)
	desk.Post("/repairs/:id/cancel", cfg.Repairs.Cancel)
	desk.Put("/repairs/:id/notes", cfg.Repairs.UpdateNotes)
	desk.Post("/repairs/:id/notes", cfg.Repairs.AppendNotes)
	desk.Get("/repairs/:id/history", cfg.Repairs.ListHistory)

	desk.Post("/tickets", cfg.DeskTickets.CreateTicket)
	desk.Get("/tickets", cfg.DeskTickets.ListTickets)
	desk.Get("/tickets/:id", cfg.DeskTickets.GetTicket)
	desk.Post("/tickets/:id/messages", cfg.DeskTickets.AddMessage)
	desk.Post("/tickets/:id/in-progress", cfg.DeskTickets.MarkInProgress)
	desk.Post("/tickets/:id/resolve", cfg.DeskTickets.MarkResolved)
	desk.Post("/tickets/:id/close", cfg.DeskTickets.CloseTicket)
	desk.Post("/tickets/:id/reopen", cfg.DeskTickets.ReopenTicket)
	desk.Patch("/tickets/:id/subject", cfg.DeskTickets.UpdateSubject)
	desk.Patch("/tickets/:id/priority", cfg.DeskTickets.UpdatePriority)
	desk.Get("/tickets/:id/history", cfg.DeskTickets.ListHistory)

	desk.Get("/chats", cfg.Chats.ListSessions)
	desk.Get("/chats/:id", cfg.Chats.GetSessionForDesk)
	desk.Post("/chats/:id/assign", cfg.Chats.AssignAgent)
	desk.Patch("/chats/:id/status", cfg.Chats.UpdateStatus)
	desk.Patch("/chats/:id/topic", cfg.Chats.UpdateTopic)
	desk.Patch("/chats/:id/priority", cfg.Chats.UpdatePriority)
	desk.Post("/chats/:id/end", cfg.Chats.EndSessionForDesk)

	admin := app.Group("/desk", cfg.AuthMiddleware.Handle, auth.RequireAgentRole(domain.AgentRoleAdmin))
	admin.Delete("/appointments/:id", cfg.Bookings.Delete)
}
