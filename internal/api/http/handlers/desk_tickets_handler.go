package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/aftersale-service/internal/api/dto"
	"github.com/spec-kit/aftersale-service/internal/domain"
	"github.com/spec-kit/aftersale-service/internal/service"
	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

// DeskTicketsHandler manages support-desk ticket endpoints.
type DeskTicketsHandler struct {
	service *service.TicketService
}

// NewDeskTicketsHandler constructs handler.
func NewDeskTicketsHandler(ticketService *service.TicketService) *DeskTicketsHandler {
	return &DeskTicketsHandler{service: ticketService}
}

// CreateTicket POST /desk/tickets. Agents file tickets arriving by email or
// phone, optionally on behalf of a known customer.
func (h *DeskTicketsHandler) CreateTicket(c *fiber.Ctx) error {
	agent, err := requireAgent(c)
	if err != nil {
		return err
	}
	var req struct {
		dto.CreateTicketRequest
		UserID *string `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	source := req.Source
	if source == "" {
		source = domain.TicketSourcePhone
	}
	ticket, err := h.service.CreateTicket(c.Context(), service.AgentActor(agent.ID), service.TicketCreateInput{
		UserID:   req.UserID,
		OrderID:  req.OrderID,
		Source:   source,
		Subject:  req.Subject,
		Priority: req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /desk/tickets.
func (h *DeskTicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.Context(), parseTicketFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(tickets)})
}

// GetTicket GET /desk/tickets/:id.
func (h *DeskTicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, msgs, err := h.service.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, msgs)})
}

// AddMessage POST /desk/tickets/:id/messages.
func (h *DeskTicketsHandler) AddMessage(c *fiber.Ctx) error {
	agent, err := requireAgent(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	msg, err := h.service.AddMessage(c.Context(), service.AgentActor(agent.ID), c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketMessageResponse(msg)})
}

// MarkInProgress POST /desk/tickets/:id/in-progress.
func (h *DeskTicketsHandler) MarkInProgress(c *fiber.Ctx) error {
	return h.transition(c, h.service.MarkInProgress)
}

// MarkResolved POST /desk/tickets/:id/resolve.
func (h *DeskTicketsHandler) MarkResolved(c *fiber.Ctx) error {
	return h.transition(c, h.service.MarkResolved)
}

// CloseTicket POST /desk/tickets/:id/close.
func (h *DeskTicketsHandler) CloseTicket(c *fiber.Ctx) error {
	return h.transition(c, h.service.Close)
}

// ReopenTicket POST /desk/tickets/:id/reopen.
func (h *DeskTicketsHandler) ReopenTicket(c *fiber.Ctx) error {
	return h.transition(c, h.service.Reopen)
}

// UpdateSubject PATCH /desk/tickets/:id/subject.
func (h *DeskTicketsHandler) UpdateSubject(c *fiber.Ctx) error {
	var req dto.UpdateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateSubject(c.Context(), c.Params("id"), req.Subject)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// UpdatePriority PATCH /desk/tickets/:id/priority.
func (h *DeskTicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdatePriority(c.Context(), c.Params("id"), req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListHistory GET /desk/tickets/:id/history.
func (h *DeskTicketsHandler) ListHistory(c *fiber.Ctx) error {
	entries, err := h.service.ListHistory(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyResponses(entries)})
}

func (h *DeskTicketsHandler) transition(c *fiber.Ctx, op func(context.Context, service.Actor, string) (*domain.SupportTicket, error)) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := op(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}
