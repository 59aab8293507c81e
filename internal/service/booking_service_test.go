package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/aftersale-service/internal/config"
	"github.com/spec-kit/aftersale-service/internal/domain"
	"github.com/spec-kit/aftersale-service/internal/events"
	"github.com/spec-kit/aftersale-service/internal/observability"
	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

type fakeAppointmentRepo struct {
	appointments map[string]domain.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[string]domain.Appointment)}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, appt *domain.Appointment) error {
	r.appointments[appt.ID] = *appt
	return nil
}

func (r *fakeAppointmentRepo) Save(_ context.Context, appt *domain.Appointment) error {
	r.appointments[appt.ID] = *appt
	return nil
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id string) (*domain.Appointment, error) {
	appt, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment", map[string]any{"id": id})
	}
	return &appt, nil
}

func (r *fakeAppointmentRepo) ListActiveByUser(_ context.Context, userID string, from, to time.Time) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, appt := range r.appointments {
		if appt.UserID != userID || appt.Status == domain.AppointmentStatusCancelled {
			continue
		}
		if appt.StartsAt.Before(to) && from.Before(appt.EndsAt) {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) Delete(_ context.Context, id string) error {
	delete(r.appointments, id)
	return nil
}

type fakeHistoryRepo struct {
	entries []domain.ServiceHistory
}

func (r *fakeHistoryRepo) Record(_ context.Context, entry *domain.ServiceHistory) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByEntity(_ context.Context, entityType domain.HistoryEntityType, entityID string) ([]domain.ServiceHistory, error) {
	var out []domain.ServiceHistory
	for _, entry := range r.entries {
		if entry.EntityType == entityType && entry.EntityID == entityID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func newBookingFixture() (*BookingService, *fakeAppointmentRepo, *fakeHistoryRepo, events.Dispatcher) {
	repo := newFakeAppointmentRepo()
	history := &fakeHistoryRepo{}
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewBookingService(BookingDependencies{
		AppointmentRepo: repo,
		HistoryRepo:     history,
		Dispatcher:      dispatcher,
		Metrics:         observability.NewMetrics(),
		Booking:         config.BookingConfig{ScanWindowDays: 30},
	})
	return svc, repo, history, dispatcher
}

func slotAt(hour, durMinutes int) (time.Time, time.Time) {
	start := time.Date(2024, 5, 6, hour, 0, 0, 0, time.UTC)
	return start, start.Add(time.Duration(durMinutes) * time.Minute)
}

func TestBookingService_Book(t *testing.T) {
	svc, _, history, dispatcher := newBookingFixture()
	ctx := context.Background()

	var published []events.Event
	dispatcher.Subscribe(events.EventAppointmentBooked, func(_ context.Context, event events.Event) error {
		published = append(published, event)
		return nil
	})

	start, end := slotAt(10, 60)
	appt, err := svc.Book(ctx, CustomerActor("user-1"), "user-1", BookingInput{
		Type:     "FITTING",
		StartsAt: start,
		EndsAt:   end,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusScheduled, appt.Status)

	entries, err := history.ListByEntity(ctx, domain.HistoryEntityAppointment, appt.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].OldValue)
	assert.Equal(t, "SCHEDULED", entries[0].NewValue["status"])

	require.Len(t, published, 1)
	assert.Equal(t, appt.ID, published[0].EntityID)
}

func TestBookingService_Book_Conflict(t *testing.T) {
	svc, _, _, _ := newBookingFixture()
	ctx := context.Background()

	start, end := slotAt(10, 60)
	first, err := svc.Book(ctx, CustomerActor("user-1"), "user-1", BookingInput{Type: "FITTING", StartsAt: start, EndsAt: end})
	require.NoError(t, err)

	// overlapping slot for the same user is refused
	_, err = svc.Book(ctx, CustomerActor("user-1"), "user-1", BookingInput{
		Type:     "FITTING",
		StartsAt: start.Add(30 * time.Minute),
		EndsAt:   end.Add(30 * time.Minute),
	})
	assert.Equal(t, "BOOKING_CONFLICT", apperrors.CodeOf(err))
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, first.ID, domainErr.Details["appointment_id"])

	// same slot for a different user is fine
	_, err = svc.Book(ctx, CustomerActor("user-2"), "user-2", BookingInput{Type: "FITTING", StartsAt: start, EndsAt: end})
	assert.NoError(t, err)
}

func TestBookingService_Book_BackToBack(t *testing.T) {
	svc, _, _, _ := newBookingFixture()
	ctx := context.Background()

	start, end := slotAt(10, 60)
	_, err := svc.Book(ctx, CustomerActor("user-1"), "user-1", BookingInput{Type: "FITTING", StartsAt: start, EndsAt: end})
	require.NoError(t, err)

	// half-open intervals: starting exactly at the previous end is allowed
	_, err = svc.Book(ctx, CustomerActor("user-1"), "user-1", BookingInput{Type: "FITTING", StartsAt: end, EndsAt: end.Add(time.Hour)})
	assert.NoError(t, err)
}

func TestBookingService_Book_InvalidInterval(t *testing.T) {
	svc, _, _, _ := newBookingFixture()

	start, _ := slotAt(10, 60)
	_, err := svc.Book(context.Background(), CustomerActor("user-1"), "user-1", BookingInput{
		Type:     "FITTING",
		StartsAt: start,
		EndsAt:   start,
	})
	assert.Equal(t, "INVALID_INTERVAL", apperrors.CodeOf(err))
}

func TestBookingService_CheckAvailability(t *testing.T) {
	svc, _, _, _ := newBookingFixture()
	ctx := context.Background()

	start, end := slotAt(10, 60)
	appt, err := svc.Book(ctx, CustomerActor("user-1"), "user-1", BookingInput{Type: "FITTING", StartsAt: start, EndsAt: end})
	require.NoError(t, err)

	conflictID, conflict, err := svc.CheckAvailability(ctx, "user-1", start.Add(15*time.Minute), end.Add(15*time.Minute))
	require.NoError(t, err)
	assert.True(t, conflict)
	assert.Equal(t, appt.ID, conflictID)

	_, conflict, err = svc.CheckAvailability(ctx, "user-1", end, end.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestBookingService_Reschedule_ExcludesSelf(t *testing.T) {
	svc, _, _, _ := newBookingFixture()
	ctx := context.Background()

	start, end := slotAt(10, 60)
	appt, err := svc.Book(ctx, CustomerActor("user-1"), "user-1", BookingInput{Type: "FITTING", StartsAt: start, EndsAt: end})
	require.NoError(t, err)

	// widening inside its own slot must not conflict with itself
	moved, err := svc.Reschedule(ctx, CustomerActor("user-1"), appt.ID, start, end.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, end.Add(30*time.Minute), moved.EndsAt)

	otherStart, otherEnd := slotAt(14, 60)
	other, err := svc.Book(ctx, CustomerActor("user-1"), "user-1", BookingInput{Type: "REPAIR_DROPOFF", StartsAt: otherStart, EndsAt: otherEnd})
	require.NoError(t, err)

	// but it still conflicts with the other appointment
	_, err = svc.Reschedule(ctx, CustomerActor("user-1"), appt.ID, otherStart.Add(-30*time.Minute), otherStart.Add(30*time.Minute))
	assert.Equal(t, "BOOKING_CONFLICT", apperrors.CodeOf(err))
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, other.ID, domainErr.Details["appointment_id"])
}

func TestBookingService_Cancel_FreesSlot(t *testing.T) {
	svc, _, _, _ := newBookingFixture()
	ctx := context.Background()

	start, end := slotAt(10, 60)
	appt, err := svc.Book(ctx, CustomerActor("user-1"), "user-1", BookingInput{Type: "FITTING", StartsAt: start, EndsAt: end})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, CustomerActor("user-1"), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusCancelled, cancelled.Status)

	// cancelled appointments no longer block the slot
	_, err = svc.Book(ctx, CustomerActor("user-1"), "user-1", BookingInput{Type: "FITTING", StartsAt: start, EndsAt: end})
	assert.NoError(t, err)

	_, err = svc.Cancel(ctx, CustomerActor("user-1"), appt.ID)
	assert.Equal(t, "ALREADY_FINALIZED", apperrors.CodeOf(err))
}

// racingAppointmentRepo simulates a concurrent booking that commits between
// the in-memory candidate scan and the insert: the candidate list is empty,
// but the exclusion constraint rejects the write.
type racingAppointmentRepo struct {
	*fakeAppointmentRepo
	conflictOnCreate error
}

func (r *racingAppointmentRepo) Create(ctx context.Context, appt *domain.Appointment) error {
	if r.conflictOnCreate != nil {
		return r.conflictOnCreate
	}
	return r.fakeAppointmentRepo.Create(ctx, appt)
}

func TestBookingService_Book_RaceCaughtByConstraint(t *testing.T) {
	repo := &racingAppointmentRepo{
		fakeAppointmentRepo: newFakeAppointmentRepo(),
		conflictOnCreate:    apperrors.NewBookingConflict(map[string]any{"user_id": "user-1"}),
	}
	svc := NewBookingService(BookingDependencies{
		AppointmentRepo: repo,
		HistoryRepo:     &fakeHistoryRepo{},
		Dispatcher:      events.NewInMemoryDispatcher(),
		Metrics:         observability.NewMetrics(),
		Booking:         config.BookingConfig{ScanWindowDays: 30},
	})

	start, end := slotAt(10, 60)
	_, err := svc.Book(context.Background(), CustomerActor("user-1"), "user-1", BookingInput{
		Type:     "FITTING",
		StartsAt: start,
		EndsAt:   end,
	})
	assert.Equal(t, "BOOKING_CONFLICT", apperrors.CodeOf(err))

	// the losing booking must not leave a record behind
	assert.Empty(t, repo.appointments)
}

func TestBookingService_GetAppointmentForUser_Ownership(t *testing.T) {
	svc, _, _, _ := newBookingFixture()
	ctx := context.Background()

	start, end := slotAt(10, 60)
	appt, err := svc.Book(ctx, CustomerActor("user-1"), "user-1", BookingInput{Type: "FITTING", StartsAt: start, EndsAt: end})
	require.NoError(t, err)

	_, err = svc.GetAppointmentForUser(ctx, "user-2", appt.ID)
	assert.Equal(t, "FORBIDDEN", apperrors.CodeOf(err))

	got, err := svc.GetAppointmentForUser(ctx, "user-1", appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appt.ID, got.ID)
}

func TestBookingService_Delete(t *testing.T) {
	svc, repo, _, _ := newBookingFixture()
	ctx := context.Background()

	start, end := slotAt(10, 60)
	appt, err := svc.Book(ctx, CustomerActor("user-1"), "user-1", BookingInput{Type: "FITTING", StartsAt: start, EndsAt: end})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, appt.ID))
	_, ok := repo.appointments[appt.ID]
	assert.False(t, ok)
}
