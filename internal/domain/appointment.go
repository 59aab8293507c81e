package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

// Interval is a half-open time range [Start, End). Half-open semantics keep
// back-to-back appointments from conflicting.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval validates that start precedes end.
func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, apperrors.NewInvalidInterval()
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether two half-open intervals share any instant.
// Touching boundaries (end == other start) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// BookingCandidate is one existing non-cancelled appointment interval for a
// subject, supplied by the caller. The checker never queries storage itself.
type BookingCandidate struct {
	AppointmentID string
	Interval      Interval
}

// FindBookingConflict scans the candidate set for an interval overlapping the
// proposal. excludeID skips the appointment being rescheduled so it does not
// conflict with itself. Returns the conflicting appointment id when found.
func FindBookingConflict(proposed Interval, excludeID string, candidates []BookingCandidate) (string, bool) {
	for _, candidate := range candidates {
		if excludeID != "" && candidate.AppointmentID == excludeID {
			continue
		}
		if proposed.Overlaps(candidate.Interval) {
			return candidate.AppointmentID, true
		}
	}
	return "", false
}

// AppointmentStatus enumerates appointment states. Cancelled appointments are
// excluded from conflict scans.
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "SCHEDULED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
)

// Appointment is a booked time slot for a subject (user).
type Appointment struct {
	ID         string
	UserID     string
	Type       string
	LocationID *string
	StartsAt   time.Time
	EndsAt     time.Time
	Notes      *string
	Status     AppointmentStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewAppointment validates and builds a scheduled appointment.
func NewAppointment(userID, apptType string, locationID *string, slot Interval, notes *string, now time.Time) (Appointment, error) {
	if strings.TrimSpace(userID) == "" {
		return Appointment{}, apperrors.NewValidationError("user_id required", map[string]any{"field": "user_id"})
	}
	if strings.TrimSpace(apptType) == "" {
		return Appointment{}, apperrors.NewValidationError("type required", map[string]any{"field": "type"})
	}
	return Appointment{
		ID:         uuid.NewString(),
		UserID:     userID,
		Type:       apptType,
		LocationID: locationID,
		StartsAt:   slot.Start,
		EndsAt:     slot.End,
		Notes:      notes,
		Status:     AppointmentStatusScheduled,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Slot returns the appointment's booked interval.
func (a Appointment) Slot() Interval {
	return Interval{Start: a.StartsAt, End: a.EndsAt}
}

// Reschedule moves the appointment to a new slot. Conflict checking against
// other appointments happens in the caller before persisting.
func (a Appointment) Reschedule(slot Interval, now time.Time) (Appointment, error) {
	if a.Status == AppointmentStatusCancelled {
		return a, apperrors.NewAlreadyFinalized("appointment", string(a.Status))
	}
	a.StartsAt = slot.Start
	a.EndsAt = slot.End
	a.UpdatedAt = now
	return a, nil
}

// Cancel flips the appointment to cancelled, freeing its slot.
func (a Appointment) Cancel(now time.Time) (Appointment, error) {
	if a.Status == AppointmentStatusCancelled {
		return a, apperrors.NewAlreadyFinalized("appointment", string(a.Status))
	}
	a.Status = AppointmentStatusCancelled
	a.UpdatedAt = now
	return a, nil
}
