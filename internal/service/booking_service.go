package service

import (
	"context"
	"time"

	"github.com/spec-kit/aftersale-service/internal/config"
	"github.com/spec-kit/aftersale-service/internal/domain"
	"github.com/spec-kit/aftersale-service/internal/events"
	"github.com/spec-kit/aftersale-service/internal/observability"
	"github.com/spec-kit/aftersale-service/internal/repository"
	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

// BookingService coordinates appointment booking with conflict detection.
// The overlap check runs in memory over candidates supplied by the
// repository; the database exclusion constraint backstops the race between
// check and insert.
type BookingService struct {
	appointments repository.AppointmentRepository
	history      repository.HistoryRepository
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	scanWindow   time.Duration
}

// BookingDependencies bundles collaborators for the booking service.
type BookingDependencies struct {
	AppointmentRepo repository.AppointmentRepository
	HistoryRepo     repository.HistoryRepository
	Dispatcher      events.Dispatcher
	Metrics         *observability.Metrics
	Booking         config.BookingConfig
}

// BookingInput describes a requested appointment.
type BookingInput struct {
	Type       string
	LocationID *string
	StartsAt   time.Time
	EndsAt     time.Time
	Notes      *string
}

// NewBookingService constructs the service.
func NewBookingService(deps BookingDependencies) *BookingService {
	return &BookingService{
		appointments: deps.AppointmentRepo,
		history:      deps.HistoryRepo,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		scanWindow:   deps.Booking.ScanWindow(),
	}
}

// Book schedules a new appointment for the customer after a conflict check.
func (s *BookingService) Book(ctx context.Context, actor Actor, userID string, input BookingInput) (*domain.Appointment, error) {
	slot, err := domain.NewInterval(input.StartsAt, input.EndsAt)
	if err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, userID, slot, ""); err != nil {
		return nil, err
	}

	now := time.Now()
	appt, err := domain.NewAppointment(userID, input.Type, input.LocationID, slot, input.Notes, now)
	if err != nil {
		return nil, err
	}
	if err := s.appointments.Create(ctx, &appt); err != nil {
		return nil, err
	}
	if err := recordHistory(ctx, s.history, domain.HistoryEntityAppointment, appt.ID, actor,
		nil, statusValue(string(appt.Status)), now); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventAppointmentBooked,
		EntityID: appt.ID,
		Actor:    actor.eventActor(),
		Payload: events.AppointmentBookedPayload{
			StartsAt: appt.StartsAt,
			EndsAt:   appt.EndsAt,
		},
	})
	return &appt, nil
}

// CheckAvailability runs the conflict check without booking. Returns the
// conflicting appointment id when the slot is taken.
func (s *BookingService) CheckAvailability(ctx context.Context, userID string, startsAt, endsAt time.Time) (string, bool, error) {
	slot, err := domain.NewInterval(startsAt, endsAt)
	if err != nil {
		return "", false, err
	}
	candidates, err := s.candidates(ctx, userID, slot)
	if err != nil {
		return "", false, err
	}
	conflictID, conflict := domain.FindBookingConflict(slot, "", candidates)
	s.metrics.RecordBookingCheck(conflict)
	return conflictID, conflict, nil
}

// Reschedule moves an appointment to a new slot. The appointment being moved
// never conflicts with itself.
func (s *BookingService) Reschedule(ctx context.Context, actor Actor, id string, startsAt, endsAt time.Time) (*domain.Appointment, error) {
	slot, err := domain.NewInterval(startsAt, endsAt)
	if err != nil {
		return nil, err
	}
	current, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, current.UserID, slot, current.ID); err != nil {
		return nil, err
	}

	now := time.Now()
	next, err := current.Reschedule(slot, now)
	if err != nil {
		return nil, err
	}
	if err := s.appointments.Save(ctx, &next); err != nil {
		return nil, err
	}
	if err := recordHistory(ctx, s.history, domain.HistoryEntityAppointment, next.ID, actor,
		map[string]any{"starts_at": current.StartsAt, "ends_at": current.EndsAt},
		map[string]any{"starts_at": next.StartsAt, "ends_at": next.EndsAt}, now); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventAppointmentRescheduled,
		EntityID: next.ID,
		Actor:    actor.eventActor(),
		Payload: events.AppointmentRescheduledPayload{
			OldStartsAt: current.StartsAt,
			OldEndsAt:   current.EndsAt,
			NewStartsAt: next.StartsAt,
			NewEndsAt:   next.EndsAt,
		},
	})
	return &next, nil
}

// Cancel flips the appointment to cancelled, freeing its slot for others.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, id string) (*domain.Appointment, error) {
	current, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	next, err := current.Cancel(now)
	if err != nil {
		return nil, err
	}
	if err := s.appointments.Save(ctx, &next); err != nil {
		return nil, err
	}
	s.metrics.RecordTransition("appointment", string(current.Status), string(next.Status))
	if err := recordHistory(ctx, s.history, domain.HistoryEntityAppointment, next.ID, actor,
		statusValue(string(current.Status)), statusValue(string(next.Status)), now); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventAppointmentCancelled,
		EntityID: next.ID,
		Actor:    actor.eventActor(),
	})
	return &next, nil
}

// Delete removes an appointment record entirely, regardless of status.
func (s *BookingService) Delete(ctx context.Context, id string) error {
	return s.appointments.Delete(ctx, id)
}

// GetAppointment fetches an appointment by id.
func (s *BookingService) GetAppointment(ctx context.Context, id string) (*domain.Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// GetAppointmentForUser fetches an appointment ensuring ownership.
func (s *BookingService) GetAppointmentForUser(ctx context.Context, userID, id string) (*domain.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.UserID != userID {
		return nil, apperrors.NewForbidden("appointment belongs to another customer")
	}
	return appt, nil
}

// ListUpcoming returns the customer's non-cancelled appointments inside the
// scan window starting now.
func (s *BookingService) ListUpcoming(ctx context.Context, userID string) ([]domain.Appointment, error) {
	from := time.Now()
	return s.appointments.ListActiveByUser(ctx, userID, from, from.Add(s.scanWindow))
}

func (s *BookingService) ensureFree(ctx context.Context, userID string, slot domain.Interval, excludeID string) error {
	candidates, err := s.candidates(ctx, userID, slot)
	if err != nil {
		return err
	}
	conflictID, conflict := domain.FindBookingConflict(slot, excludeID, candidates)
	s.metrics.RecordBookingCheck(conflict)
	if conflict {
		return apperrors.NewBookingConflict(map[string]any{
			"user_id":        userID,
			"appointment_id": conflictID,
		})
	}
	return nil
}

// candidates loads non-cancelled appointments around the slot. The window is
// padded by the configured scan window so long appointments straddling the
// slot edges are still seen.
func (s *BookingService) candidates(ctx context.Context, userID string, slot domain.Interval) ([]domain.BookingCandidate, error) {
	from := slot.Start.Add(-s.scanWindow)
	to := slot.End.Add(s.scanWindow)
	appts, err := s.appointments.ListActiveByUser(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	candidates := make([]domain.BookingCandidate, 0, len(appts))
	for _, appt := range appts {
		candidates = append(candidates, domain.BookingCandidate{
			AppointmentID: appt.ID,
			Interval:      appt.Slot(),
		})
	}
	return candidates, nil
}
