package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/aftersale-service/internal/api/dto"
	"github.com/spec-kit/aftersale-service/internal/domain"
	"github.com/spec-kit/aftersale-service/internal/repository"
	"github.com/spec-kit/aftersale-service/internal/service"
	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

// ChatHandler manages live-chat session endpoints.
type ChatHandler struct {
	service *service.ChatService
}

// NewChatHandler constructs handler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{service: chatService}
}

// StartSession POST /chats.
func (h *ChatHandler) StartSession(c *fiber.Ctx) error {
	user, err := requireCustomer(c)
	if err != nil {
		return err
	}
	var req dto.StartChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	session, err := h.service.StartSession(c.Context(), service.CustomerActor(user.ID), req.Topic, req.Priority)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": chatResponse(session)})
}

// GetSession GET /chats/:id.
func (h *ChatHandler) GetSession(c *fiber.Ctx) error {
	user, err := requireCustomer(c)
	if err != nil {
		return err
	}
	session, err := h.service.GetSessionForUser(c.Context(), user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatResponse(session)})
}

// EndSession POST /chats/:id/end. Customers may end their own sessions.
func (h *ChatHandler) EndSession(c *fiber.Ctx) error {
	user, err := requireCustomer(c)
	if err != nil {
		return err
	}
	if _, err := h.service.GetSessionForUser(c.Context(), user.ID, c.Params("id")); err != nil {
		return err
	}
	session, err := h.service.EndSession(c.Context(), service.CustomerActor(user.ID), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatResponse(session)})
}

// ListSessions GET /desk/chats.
func (h *ChatHandler) ListSessions(c *fiber.Ctx) error {
	filter := repository.ChatFilter{}
	for _, part := range splitList(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.ChatStatus(strings.ToUpper(part)))
	}
	if userID := c.Query("user_id"); userID != "" {
		filter.UserID = &userID
	}
	if agentID := c.Query("agent_id"); agentID != "" {
		filter.AgentID = &agentID
	}
	filter.Limit, filter.Offset = paging(c)

	sessions, err := h.service.ListSessions(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ChatResponse, 0, len(sessions))
	for i := range sessions {
		items = append(items, chatResponse(&sessions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetSessionForDesk GET /desk/chats/:id.
func (h *ChatHandler) GetSessionForDesk(c *fiber.Ctx) error {
	session, err := h.service.GetSession(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatResponse(session)})
}

// AssignAgent POST /desk/chats/:id/assign.
func (h *ChatHandler) AssignAgent(c *fiber.Ctx) error {
	agent, err := requireAgent(c)
	if err != nil {
		return err
	}
	var req dto.AssignAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	agentID := req.AgentID
	if agentID == "" {
		agentID = agent.ID
	}
	session, err := h.service.AssignAgent(c.Context(), service.AgentActor(agent.ID), c.Params("id"), agentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatResponse(session)})
}

// UpdateStatus PATCH /desk/chats/:id/status.
func (h *ChatHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.ChatStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	session, err := h.service.UpdateStatus(c.Context(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatResponse(session)})
}

// UpdateTopic PATCH /desk/chats/:id/topic.
func (h *ChatHandler) UpdateTopic(c *fiber.Ctx) error {
	var req dto.ChatTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	session, err := h.service.UpdateTopic(c.Context(), c.Params("id"), req.Topic)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatResponse(session)})
}

// UpdatePriority PATCH /desk/chats/:id/priority.
func (h *ChatHandler) UpdatePriority(c *fiber.Ctx) error {
	var req dto.ChatPriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	session, err := h.service.UpdatePriority(c.Context(), c.Params("id"), req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatResponse(session)})
}

// EndSessionForDesk POST /desk/chats/:id/end.
func (h *ChatHandler) EndSessionForDesk(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	session, err := h.service.EndSession(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatResponse(session)})
}

func chatResponse(session *domain.ChatSession) dto.ChatResponse {
	resp := dto.ChatResponse{
		ID:        session.ID,
		UserID:    session.UserID,
		AgentID:   session.AgentID,
		Topic:     session.Topic,
		Priority:  session.Priority,
		Status:    session.Status,
		StartedAt: session.StartedAt,
		EndedAt:   session.EndedAt,
	}
	if duration, ok := session.Duration(); ok {
		seconds := duration.Seconds()
		resp.DurationSeconds = &seconds
	}
	return resp
}
