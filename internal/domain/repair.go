package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

// RepairStatus enumerates repair lifecycle states.
type RepairStatus string

const (
	RepairStatusPending    RepairStatus = "PENDING"
	RepairStatusInProgress RepairStatus = "IN_PROGRESS"
	RepairStatusCompleted  RepairStatus = "COMPLETED"
	RepairStatusFailed     RepairStatus = "FAILED"
	RepairStatusCancelled  RepairStatus = "CANCELLED"
)

// RepairGraph declares the repair transition graph. Completed, failed and
// cancelled are terminal.
var RepairGraph = Graph[RepairStatus]{
	RepairStatusPending:    {RepairStatusInProgress, RepairStatusCancelled},
	RepairStatusInProgress: {RepairStatusCompleted, RepairStatusFailed, RepairStatusCancelled},
	RepairStatusCompleted:  {},
	RepairStatusFailed:     {},
	RepairStatusCancelled:  {},
}

// Repair tracks a single order line through the workshop.
type Repair struct {
	ID          string
	ExternalKey string
	OrderLineID string
	Notes       string
	Status      RepairStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewRepair creates a repair in the pending state.
func NewRepair(orderLineID, notes string, now time.Time) (Repair, error) {
	if strings.TrimSpace(orderLineID) == "" {
		return Repair{}, apperrors.NewValidationError("order_line_id required", map[string]any{"field": "order_line_id"})
	}
	return Repair{
		ID:          uuid.NewString(),
		ExternalKey: generateExternalKey("REP"),
		OrderLineID: orderLineID,
		Notes:       strings.TrimSpace(notes),
		Status:      RepairStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Finalized reports whether the repair reached a terminal state.
func (r Repair) Finalized() bool {
	return RepairGraph.IsTerminal(r.Status)
}

// Start moves the repair onto the bench.
func (r Repair) Start(now time.Time) (Repair, error) {
	return r.transitionTo(RepairStatusInProgress, now)
}

// Complete finishes the repair successfully.
func (r Repair) Complete(now time.Time) (Repair, error) {
	return r.transitionTo(RepairStatusCompleted, now)
}

// MarkFailed records an unrepairable item.
func (r Repair) MarkFailed(now time.Time) (Repair, error) {
	return r.transitionTo(RepairStatusFailed, now)
}

// Cancel aborts the repair before completion.
func (r Repair) Cancel(now time.Time) (Repair, error) {
	return r.transitionTo(RepairStatusCancelled, now)
}

// UpdateNotes replaces the technician notes while the repair is open.
func (r Repair) UpdateNotes(notes string, now time.Time) (Repair, error) {
	if r.Finalized() {
		return r, apperrors.NewFinalized("repair", "notes", string(r.Status))
	}
	r.Notes = notes
	r.UpdatedAt = now
	return r, nil
}

// AppendNotes joins additional notes with a newline separator. Empty or
// whitespace-only input is a no-op.
func (r Repair) AppendNotes(notes string, now time.Time) (Repair, error) {
	if r.Finalized() {
		return r, apperrors.NewFinalized("repair", "notes", string(r.Status))
	}
	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return r, nil
	}
	if r.Notes == "" {
		r.Notes = trimmed
	} else {
		r.Notes = r.Notes + "\n" + trimmed
	}
	r.UpdatedAt = now
	return r, nil
}

func (r Repair) transitionTo(target RepairStatus, now time.Time) (Repair, error) {
	if !RepairGraph.CanTransition(r.Status, target) {
		return r, apperrors.NewInvalidTransition("repair", string(r.Status), string(target))
	}
	r.Status = target
	r.UpdatedAt = now
	return r, nil
}
