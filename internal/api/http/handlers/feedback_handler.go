package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/aftersale-service/internal/api/dto"
	"github.com/spec-kit/aftersale-service/internal/domain"
	"github.com/spec-kit/aftersale-service/internal/service"
	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

// FeedbackHandler manages goodwill-score endpoints.
type FeedbackHandler struct {
	service *service.FeedbackService
}

// NewFeedbackHandler constructs handler.
func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: feedbackService}
}

// Submit POST /feedback.
func (h *FeedbackHandler) Submit(c *fiber.Ctx) error {
	user, err := requireCustomer(c)
	if err != nil {
		return err
	}
	var req dto.SubmitFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	record, err := h.service.Submit(c.Context(), service.CustomerActor(user.ID), service.FeedbackInput{
		OrderID:  req.OrderID,
		TicketID: req.TicketID,
		Score:    req.Score,
		Comment:  req.Comment,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": feedbackResponse(record)})
}

// List GET /feedback.
func (h *FeedbackHandler) List(c *fiber.Ctx) error {
	user, err := requireCustomer(c)
	if err != nil {
		return err
	}
	limit, offset := paging(c)
	records, err := h.service.ListForUser(c.Context(), user.ID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.FeedbackResponse, 0, len(records))
	for i := range records {
		items = append(items, feedbackResponse(&records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func feedbackResponse(record *domain.Feedback) dto.FeedbackResponse {
	return dto.FeedbackResponse{
		ID:        record.ID,
		OrderID:   record.OrderID,
		TicketID:  record.TicketID,
		Score:     record.Score,
		Comment:   record.Comment,
		CreatedAt: record.CreatedAt,
	}
}
