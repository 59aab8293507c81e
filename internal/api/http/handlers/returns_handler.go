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

// ReturnsHandler manages RMA endpoints.
type ReturnsHandler struct {
	service *service.ReturnService
}

// NewReturnsHandler constructs handler.
func NewReturnsHandler(returnService *service.ReturnService) *ReturnsHandler {
	return &ReturnsHandler{service: returnService}
}

// CreateReturn POST /returns.
func (h *ReturnsHandler) CreateReturn(c *fiber.Ctx) error {
	user, err := requireCustomer(c)
	if err != nil {
		return err
	}
	var req dto.CreateReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	items := make([]service.ReturnItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.ReturnItemInput{
			OrderLineID: item.OrderLineID,
			Quantity:    item.Quantity,
			Condition:   item.Condition,
			Disposition: item.Disposition,
			FeeCents:    item.FeeCents,
		})
	}
	rma, err := h.service.CreateReturn(c.Context(), user.ID, service.ReturnCreateInput{
		OrderID: req.OrderID,
		Type:    req.Type,
		Reason:  req.Reason,
		Items:   items,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": returnSummary(rma)})
}

// ListReturns GET /returns.
func (h *ReturnsHandler) ListReturns(c *fiber.Ctx) error {
	user, err := requireCustomer(c)
	if err != nil {
		return err
	}
	filter := parseReturnFilter(c)
	filter.UserID = &user.ID
	returns, err := h.service.ListReturns(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": returnSummaries(returns)})
}

// ListAllReturns GET /desk/returns.
func (h *ReturnsHandler) ListAllReturns(c *fiber.Ctx) error {
	returns, err := h.service.ListReturns(c.Context(), parseReturnFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": returnSummaries(returns)})
}

// GetReturn GET /returns/:id.
func (h *ReturnsHandler) GetReturn(c *fiber.Ctx) error {
	user, err := requireCustomer(c)
	if err != nil {
		return err
	}
	rma, items, err := h.service.GetReturnForUser(c.Context(), user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": returnDetail(rma, items)})
}

// GetReturnForDesk GET /desk/returns/:id.
func (h *ReturnsHandler) GetReturnForDesk(c *fiber.Ctx) error {
	rma, items, err := h.service.GetReturn(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": returnDetail(rma, items)})
}

// GetReturnByKey GET /desk/returns/key/:key.
func (h *ReturnsHandler) GetReturnByKey(c *fiber.Ctx) error {
	rma, items, err := h.service.GetReturnByKey(c.Context(), c.Params("key"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": returnDetail(rma, items)})
}

// AddItem POST /desk/returns/:id/items.
func (h *ReturnsHandler) AddItem(c *fiber.Ctx) error {
	var req dto.ReturnItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	item, err := h.service.AddItem(c.Context(), c.Params("id"), service.ReturnItemInput{
		OrderLineID: req.OrderLineID,
		Quantity:    req.Quantity,
		Condition:   req.Condition,
		Disposition: req.Disposition,
		FeeCents:    req.FeeCents,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": returnItemResponse(item)})
}

// UpdateReason PATCH /returns/:id/reason.
func (h *ReturnsHandler) UpdateReason(c *fiber.Ctx) error {
	user, err := requireCustomer(c)
	if err != nil {
		return err
	}
	var req dto.UpdateReturnReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if _, _, err := h.service.GetReturnForUser(c.Context(), user.ID, c.Params("id")); err != nil {
		return err
	}
	rma, err := h.service.UpdateReason(c.Context(), service.CustomerActor(user.ID), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": returnSummary(rma)})
}

// Approve POST /desk/returns/:id/approve.
func (h *ReturnsHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, h.service.Approve)
}

// Reject POST /desk/returns/:id/reject.
func (h *ReturnsHandler) Reject(c *fiber.Ctx) error {
	return h.transition(c, h.service.Reject)
}

// MarkInTransit POST /desk/returns/:id/in-transit.
func (h *ReturnsHandler) MarkInTransit(c *fiber.Ctx) error {
	return h.transition(c, h.service.MarkInTransit)
}

// MarkReceived POST /desk/returns/:id/received.
func (h *ReturnsHandler) MarkReceived(c *fiber.Ctx) error {
	return h.transition(c, h.service.MarkReceived)
}

// MarkRefunded POST /desk/returns/:id/refunded.
func (h *ReturnsHandler) MarkRefunded(c *fiber.Ctx) error {
	return h.transition(c, h.service.MarkRefunded)
}

// ListHistory GET /desk/returns/:id/history.
func (h *ReturnsHandler) ListHistory(c *fiber.Ctx) error {
	entries, err := h.service.ListHistory(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyResponses(entries)})
}

func (h *ReturnsHandler) transition(c *fiber.Ctx, op func(context.Context, service.Actor, string) (*domain.ReturnRequest, error)) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	rma, err := op(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": returnSummary(rma)})
}

func parseReturnFilter(c *fiber.Ctx) repository.ReturnFilter {
	filter := repository.ReturnFilter{}
	for _, part := range splitList(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.ReturnStatus(strings.ToUpper(part)))
	}
	for _, part := range splitList(c.Query("type")) {
		filter.Types = append(filter.Types, domain.ReturnType(strings.ToUpper(part)))
	}
	if orderID := c.Query("order_id"); orderID != "" {
		filter.OrderID = &orderID
	}
	filter.CreatedFrom = parseTime(c.Query("created_from"))
	filter.CreatedTo = parseTime(c.Query("created_to"))
	filter.Limit, filter.Offset = paging(c)
	return filter
}

func returnSummaries(returns []domain.ReturnRequest) []dto.ReturnSummary {
	items := make([]dto.ReturnSummary, 0, len(returns))
	for i := range returns {
		items = append(items, returnSummary(&returns[i]))
	}
	return items
}

func returnSummary(rma *domain.ReturnRequest) dto.ReturnSummary {
	return dto.ReturnSummary{
		ID:          rma.ID,
		ExternalKey: rma.ExternalKey,
		OrderID:     rma.OrderID,
		UserID:      rma.UserID,
		Type:        rma.Type,
		Reason:      rma.Reason,
		Status:      rma.Status,
		CreatedAt:   rma.CreatedAt,
		UpdatedAt:   rma.UpdatedAt,
	}
}

func returnDetail(rma *domain.ReturnRequest, items []domain.ReturnItem) dto.ReturnDetailResponse {
	resp := dto.ReturnDetailResponse{
		ReturnSummary: returnSummary(rma),
		Items:         make([]dto.ReturnItemResponse, 0, len(items)),
	}
	for i := range items {
		resp.Items = append(resp.Items, returnItemResponse(&items[i]))
	}
	return resp
}

func returnItemResponse(item *domain.ReturnItem) dto.ReturnItemResponse {
	return dto.ReturnItemResponse{
		OrderLineID: item.OrderLineID,
		Quantity:    item.Quantity,
		Condition:   item.Condition,
		Disposition: item.Disposition,
		FeeCents:    item.FeeCents,
		CreatedAt:   item.CreatedAt,
	}
}
