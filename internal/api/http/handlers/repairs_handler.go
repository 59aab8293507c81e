package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/aftersale-service/internal/api/dto"
	"github.com/spec-kit/aftersale-service/internal/domain"
	"github.com/spec-kit/aftersale-service/internal/repository"
	"github.com/spec-kit/aftersale-service/internal/service"
	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

// RepairsHandler manages workshop endpoints. Repairs are desk-side only.
type RepairsHandler struct {
	service *service.RepairService
}

// NewRepairsHandler constructs handler.
func NewRepairsHandler(repairService *service.RepairService) *RepairsHandler {
	return &RepairsHandler{service: repairService}
}

// CreateRepair POST /desk/repairs.
func (h *RepairsHandler) CreateRepair(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateRepairRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	repair, err := h.service.CreateRepair(c.Context(), actor, req.OrderLineID, req.Notes)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": repairResponse(repair)})
}

// ListRepairs GET /desk/repairs.
func (h *RepairsHandler) ListRepairs(c *fiber.Ctx) error {
	filter := repository.RepairFilter{}
	for _, part := range splitList(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.RepairStatus(strings.ToUpper(part)))
	}
	if orderLineID := c.Query("order_line_id"); orderLineID != "" {
		filter.OrderLineID = &orderLineID
	}
	filter.Limit, filter.Offset = paging(c)

	repairs, err := h.service.ListRepairs(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.RepairResponse, 0, len(repairs))
	for i := range repairs {
		items = append(items, repairResponse(&repairs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetRepair GET /desk/repairs/:id.
func (h *RepairsHandler) GetRepair(c *fiber.Ctx) error {
	repair, err := h.service.GetRepair(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": repairResponse(repair)})
}

// Start POST /desk/repairs/:id/start.
func (h *RepairsHandler) Start(c *fiber.Ctx) error {
	return h.transition(c, h.service.Start)
}

// Complete POST /desk/repairs/:id/complete.
func (h *RepairsHandler) Complete(c *fiber.Ctx) error {
	return h.transition(c, h.service.Complete)
}

// MarkFailed POST /desk/repairs/:id/fail.
func (h *RepairsHandler) MarkFailed(c *fiber.Ctx) error {
	return h.transition(c, h.service.MarkFailed)
}

// Cancel POST /desk/repairs/:id/cancel.
func (h *RepairsHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.service.Cancel)
}

// UpdateNotes PUT /desk/repairs/:id/notes.
func (h *RepairsHandler) UpdateNotes(c *fiber.Ctx) error {
	var req dto.RepairNotesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	repair, err := h.service.UpdateNotes(c.Context(), c.Params("id"), req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": repairResponse(repair)})
}

// AppendNotes POST /desk/repairs/:id/notes.
func (h *RepairsHandler) AppendNotes(c *fiber.Ctx) error {
	var req dto.RepairNotesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	repair, err := h.service.AppendNotes(c.Context(), c.Params("id"), req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": repairResponse(repair)})
}

// ListHistory GET /desk/repairs/:id/history.
func (h *RepairsHandler) ListHistory(c *fiber.Ctx) error {
	entries, err := h.service.ListHistory(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyResponses(entries)})
}

func (h *RepairsHandler) transition(c *fiber.Ctx, op func(context.Context, service.Actor, string) (*domain.Repair, error)) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	repair, err := op(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": repairResponse(repair)})
}

func repairResponse(repair *domain.Repair) dto.RepairResponse {
	return dto.RepairResponse{
		ID:          repair.ID,
		ExternalKey: repair.ExternalKey,
		OrderLineID: repair.OrderLineID,
		Notes:       repair.Notes,
		Status:      repair.Status,
		CreatedAt:   repair.CreatedAt,
		UpdatedAt:   repair.UpdatedAt,
	}
}
