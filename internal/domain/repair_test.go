package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

func newTestRepair(t *testing.T) Repair {
	t.Helper()
	repair, err := NewRepair("line-1", "", time.Now())
	require.NoError(t, err)
	return repair
}

func TestRepair_Transitions(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		from    RepairStatus
		op      func(Repair) (Repair, error)
		want    RepairStatus
		wantErr string
	}{
		{name: "start from pending", from: RepairStatusPending, op: func(r Repair) (Repair, error) { return r.Start(now) }, want: RepairStatusInProgress},
		{name: "start from in_progress", from: RepairStatusInProgress, op: func(r Repair) (Repair, error) { return r.Start(now) }, wantErr: "INVALID_TRANSITION"},
		{name: "complete from in_progress", from: RepairStatusInProgress, op: func(r Repair) (Repair, error) { return r.Complete(now) }, want: RepairStatusCompleted},
		{name: "complete from pending", from: RepairStatusPending, op: func(r Repair) (Repair, error) { return r.Complete(now) }, wantErr: "INVALID_TRANSITION"},
		{name: "fail from in_progress", from: RepairStatusInProgress, op: func(r Repair) (Repair, error) { return r.MarkFailed(now) }, want: RepairStatusFailed},
		{name: "fail from completed", from: RepairStatusCompleted, op: func(r Repair) (Repair, error) { return r.MarkFailed(now) }, wantErr: "INVALID_TRANSITION"},
		{name: "fail from cancelled", from: RepairStatusCancelled, op: func(r Repair) (Repair, error) { return r.MarkFailed(now) }, wantErr: "INVALID_TRANSITION"},
		{name: "cancel from pending", from: RepairStatusPending, op: func(r Repair) (Repair, error) { return r.Cancel(now) }, want: RepairStatusCancelled},
		{name: "cancel from in_progress", from: RepairStatusInProgress, op: func(r Repair) (Repair, error) { return r.Cancel(now) }, want: RepairStatusCancelled},
		{name: "cancel from completed", from: RepairStatusCompleted, op: func(r Repair) (Repair, error) { return r.Cancel(now) }, wantErr: "INVALID_TRANSITION"},
		{name: "cancel from failed", from: RepairStatusFailed, op: func(r Repair) (Repair, error) { return r.Cancel(now) }, wantErr: "INVALID_TRANSITION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repair := newTestRepair(t)
			repair.Status = tt.from
			next, err := tt.op(repair)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, apperrors.CodeOf(err))
				assert.Equal(t, tt.from, next.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, next.Status)
		})
	}
}

func TestRepair_AppendNotes(t *testing.T) {
	now := time.Now()
	repair := newTestRepair(t)

	repair, err := repair.AppendNotes("step1", now)
	require.NoError(t, err)
	assert.Equal(t, "step1", repair.Notes)

	repair, err = repair.AppendNotes("done", now)
	require.NoError(t, err)
	assert.Equal(t, "step1\ndone", repair.Notes)

	// whitespace-only input leaves the notes untouched
	repair, err = repair.AppendNotes("   \n\t ", now)
	require.NoError(t, err)
	assert.Equal(t, "step1\ndone", repair.Notes)

	repair, err = repair.AppendNotes("", now)
	require.NoError(t, err)
	assert.Equal(t, "step1\ndone", repair.Notes)
}

func TestRepair_NotesImmutableOnceTerminal(t *testing.T) {
	now := time.Now()
	for _, terminal := range []RepairStatus{RepairStatusCompleted, RepairStatusFailed, RepairStatusCancelled} {
		repair := newTestRepair(t)
		repair.Status = terminal

		_, err := repair.UpdateNotes("late note", now)
		assert.Equal(t, "FINALIZED", apperrors.CodeOf(err), "update on %s", terminal)

		_, err = repair.AppendNotes("late note", now)
		assert.Equal(t, "FINALIZED", apperrors.CodeOf(err), "append on %s", terminal)
	}
}

func TestRepair_UpdateNotesReplaces(t *testing.T) {
	now := time.Now()
	repair := newTestRepair(t)
	repair, err := repair.UpdateNotes("diagnosis: cracked board", now)
	require.NoError(t, err)
	repair, err = repair.UpdateNotes("replaced board", now)
	require.NoError(t, err)
	assert.Equal(t, "replaced board", repair.Notes)
}
