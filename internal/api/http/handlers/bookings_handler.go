package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/aftersale-service/internal/api/dto"
	"github.com/spec-kit/aftersale-service/internal/domain"
	"github.com/spec-kit/aftersale-service/internal/service"
	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

// BookingsHandler manages appointment endpoints.
type BookingsHandler struct {
	service *service.BookingService
}

// NewBookingsHandler constructs handler.
func NewBookingsHandler(bookingService *service.BookingService) *BookingsHandler {
	return &BookingsHandler{service: bookingService}
}

// Book POST /appointments.
func (h *BookingsHandler) Book(c *fiber.Ctx) error {
	user, err := requireCustomer(c)
	if err != nil {
		return err
	}
	var req dto.BookAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	appt, err := h.service.Book(c.Context(), service.CustomerActor(user.ID), user.ID, service.BookingInput{
		Type:       req.Type,
		LocationID: req.LocationID,
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
		Notes:      req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": appointmentResponse(appt)})
}

// CheckAvailability GET /appointments/availability?starts_at=&ends_at=.
func (h *BookingsHandler) CheckAvailability(c *fiber.Ctx) error {
	user, err := requireCustomer(c)
	if err != nil {
		return err
	}
	startsAt := parseTime(c.Query("starts_at"))
	endsAt := parseTime(c.Query("ends_at"))
	if startsAt == nil || endsAt == nil {
		return apperrors.NewValidationError("starts_at and ends_at required (RFC3339)", nil)
	}
	conflictID, conflict, err := h.service.CheckAvailability(c.Context(), user.ID, *startsAt, *endsAt)
	if err != nil {
		return err
	}
	resp := dto.AvailabilityResponse{Available: !conflict}
	if conflict {
		resp.ConflictID = &conflictID
	}
	return c.JSON(fiber.Map{"data": resp})
}

// ListUpcoming GET /appointments.
func (h *BookingsHandler) ListUpcoming(c *fiber.Ctx) error {
	user, err := requireCustomer(c)
	if err != nil {
		return err
	}
	appts, err := h.service.ListUpcoming(c.Context(), user.ID)
	if err != nil {
		return err
	}
	items := make([]dto.AppointmentResponse, 0, len(appts))
	for i := range appts {
		items = append(items, appointmentResponse(&appts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetAppointment GET /appointments/:id.
func (h *BookingsHandler) GetAppointment(c *fiber.Ctx) error {
	appt, err := h.loadForCaller(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appt)})
}

// Reschedule POST /appointments/:id/reschedule.
func (h *BookingsHandler) Reschedule(c *fiber.Ctx) error {
	if _, err := h.loadForCaller(c); err != nil {
		return err
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.RescheduleAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	appt, err := h.service.Reschedule(c.Context(), actor, c.Params("id"), req.StartsAt, req.EndsAt)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appt)})
}

// Cancel POST /appointments/:id/cancel.
func (h *BookingsHandler) Cancel(c *fiber.Ctx) error {
	if _, err := h.loadForCaller(c); err != nil {
		return err
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	appt, err := h.service.Cancel(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appt)})
}

// Delete DELETE /desk/appointments/:id. Removes the record regardless of
// status; admin only.
func (h *BookingsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// loadForCaller fetches the appointment, enforcing ownership for customers.
// Agents may touch any appointment.
func (h *BookingsHandler) loadForCaller(c *fiber.Ctx) (*domain.Appointment, error) {
	if user, err := requireCustomer(c); err == nil {
		return h.service.GetAppointmentForUser(c.Context(), user.ID, c.Params("id"))
	}
	if _, err := requireAgent(c); err != nil {
		return nil, err
	}
	return h.service.GetAppointment(c.Context(), c.Params("id"))
}

func appointmentResponse(appt *domain.Appointment) dto.AppointmentResponse {
	return dto.AppointmentResponse{
		ID:         appt.ID,
		UserID:     appt.UserID,
		Type:       appt.Type,
		LocationID: appt.LocationID,
		StartsAt:   appt.StartsAt,
		EndsAt:     appt.EndsAt,
		Notes:      appt.Notes,
		Status:     appt.Status,
		CreatedAt:  appt.CreatedAt,
		UpdatedAt:  appt.UpdatedAt,
	}
}
