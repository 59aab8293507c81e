package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

func mustInterval(t *testing.T, startHour, startMin, endHour, endMin int) Interval {
	t.Helper()
	day := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)
	interval, err := NewInterval(
		day.Add(time.Duration(startHour)*time.Hour+time.Duration(startMin)*time.Minute),
		day.Add(time.Duration(endHour)*time.Hour+time.Duration(endMin)*time.Minute),
	)
	require.NoError(t, err)
	return interval
}

func TestNewInterval_Validation(t *testing.T) {
	now := time.Now()

	_, err := NewInterval(now, now)
	assert.Equal(t, "INVALID_INTERVAL", apperrors.CodeOf(err))

	_, err = NewInterval(now.Add(time.Hour), now)
	assert.Equal(t, "INVALID_INTERVAL", apperrors.CodeOf(err))

	_, err = NewInterval(now, now.Add(time.Hour))
	assert.NoError(t, err)
}

func TestFindBookingConflict(t *testing.T) {
	// existing appointment [10:00, 11:00)
	existing := []BookingCandidate{
		{AppointmentID: "appt-1", Interval: mustInterval(t, 10, 0, 11, 0)},
	}

	tests := []struct {
		name     string
		proposed Interval
		conflict bool
	}{
		{name: "overlap at the end", proposed: mustInterval(t, 10, 30, 11, 30), conflict: true},
		{name: "touching upper boundary", proposed: mustInterval(t, 11, 0, 12, 0), conflict: false},
		{name: "entirely before", proposed: mustInterval(t, 9, 0, 10, 0), conflict: false},
		{name: "partial overlap at the start", proposed: mustInterval(t, 9, 30, 10, 30), conflict: true},
		{name: "fully contained", proposed: mustInterval(t, 10, 15, 10, 45), conflict: true},
		{name: "fully containing", proposed: mustInterval(t, 9, 0, 12, 0), conflict: true},
		{name: "identical slot", proposed: mustInterval(t, 10, 0, 11, 0), conflict: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, conflict := FindBookingConflict(tt.proposed, "", existing)
			assert.Equal(t, tt.conflict, conflict)
			if tt.conflict {
				assert.Equal(t, "appt-1", id)
			}
		})
	}
}

func TestFindBookingConflict_ExcludesRescheduledAppointment(t *testing.T) {
	candidates := []BookingCandidate{
		{AppointmentID: "appt-1", Interval: mustInterval(t, 10, 0, 11, 0)},
		{AppointmentID: "appt-2", Interval: mustInterval(t, 13, 0, 14, 0)},
	}

	// widening appt-1 within its own slot only conflicts with others
	proposed := mustInterval(t, 10, 0, 12, 0)
	_, conflict := FindBookingConflict(proposed, "appt-1", candidates)
	assert.False(t, conflict)

	// but it still conflicts with appt-2
	proposed = mustInterval(t, 10, 0, 13, 30)
	id, conflict := FindBookingConflict(proposed, "appt-1", candidates)
	assert.True(t, conflict)
	assert.Equal(t, "appt-2", id)
}

func TestAppointment_Lifecycle(t *testing.T) {
	now := time.Now()
	slot := mustInterval(t, 10, 0, 11, 0)

	appt, err := NewAppointment("user-1", "FITTING", nil, slot, nil, now)
	require.NoError(t, err)
	assert.Equal(t, AppointmentStatusScheduled, appt.Status)
	assert.Equal(t, slot, appt.Slot())

	newSlot := mustInterval(t, 14, 0, 15, 0)
	appt, err = appt.Reschedule(newSlot, now)
	require.NoError(t, err)
	assert.Equal(t, newSlot, appt.Slot())

	appt, err = appt.Cancel(now)
	require.NoError(t, err)
	assert.Equal(t, AppointmentStatusCancelled, appt.Status)

	_, err = appt.Reschedule(slot, now)
	assert.Equal(t, "ALREADY_FINALIZED", apperrors.CodeOf(err))
	_, err = appt.Cancel(now)
	assert.Equal(t, "ALREADY_FINALIZED", apperrors.CodeOf(err))
}

func TestNewAppointment_Validation(t *testing.T) {
	now := time.Now()
	slot := mustInterval(t, 10, 0, 11, 0)

	_, err := NewAppointment("", "FITTING", nil, slot, nil, now)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	_, err = NewAppointment("user-1", "  ", nil, slot, nil, now)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))
}

func TestFeedbackScoreBounds(t *testing.T) {
	now := time.Now()

	for _, score := range []int{-1, 11} {
		_, err := NewFeedback(nil, nil, nil, score, nil, now)
		assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err), "score %d", score)
	}

	for _, score := range []int{0, 10} {
		feedback, err := NewFeedback(nil, nil, nil, score, nil, now)
		require.NoError(t, err, "score %d", score)
		assert.Equal(t, score, feedback.Score)
	}
}
