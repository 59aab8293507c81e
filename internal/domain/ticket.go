package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

// TicketStatus enumerates lifecycle states for support tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketSource enumerates channels a ticket can originate from.
type TicketSource string

const (
	TicketSourceWeb   TicketSource = "WEB"
	TicketSourceEmail TicketSource = "EMAIL"
	TicketSourcePhone TicketSource = "PHONE"
	TicketSourceChat  TicketSource = "CHAT"
)

// TicketGraph declares the reopenable ticket lifecycle. Unlike the other
// workflows this is not a one-way pipeline: closed and resolved both lead
// back to open, so no ticket state is strictly terminal.
var TicketGraph = Graph[TicketStatus]{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed},
	TicketStatusInProgress: {TicketStatusOpen, TicketStatusResolved, TicketStatusClosed},
	TicketStatusResolved:   {TicketStatusClosed, TicketStatusOpen},
	TicketStatusClosed:     {TicketStatusOpen},
}

// SupportTicket is the aggregate for post-sale support requests.
type SupportTicket struct {
	ID          string
	ExternalKey string
	UserID      *string
	OrderID     *string
	Source      TicketSource
	Subject     string
	Status      TicketStatus
	Priority    *Priority
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClosedAt    *time.Time
}

// NewSupportTicket creates an open ticket with a non-empty subject.
func NewSupportTicket(userID, orderID *string, source TicketSource, subject string, priority *Priority, now time.Time) (SupportTicket, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return SupportTicket{}, apperrors.NewValidationError("subject required", map[string]any{"field": "subject"})
	}
	if priority != nil && !ValidPriority(*priority) {
		return SupportTicket{}, apperrors.NewValidationError("unknown priority", map[string]any{"field": "priority"})
	}
	return SupportTicket{
		ID:          uuid.NewString(),
		ExternalKey: generateExternalKey("TCK"),
		UserID:      userID,
		OrderID:     orderID,
		Source:      source,
		Subject:     subject,
		Status:      TicketStatusOpen,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Closed reports whether the ticket is currently closed.
func (t SupportTicket) Closed() bool {
	return t.Status == TicketStatusClosed
}

// MarkInProgress assigns the ticket to active handling.
func (t SupportTicket) MarkInProgress(now time.Time) (SupportTicket, error) {
	if t.Closed() {
		return t, apperrors.NewTicketClosed("status")
	}
	return t.transitionTo(TicketStatusInProgress, now)
}

// MarkResolved flags the ticket as resolved, pending customer confirmation.
func (t SupportTicket) MarkResolved(now time.Time) (SupportTicket, error) {
	if t.Closed() {
		return t, apperrors.NewAlreadyClosed()
	}
	return t.transitionTo(TicketStatusResolved, now)
}

// Close closes the ticket from any state. Closing an already-closed ticket
// is a no-op.
func (t SupportTicket) Close(now time.Time) (SupportTicket, error) {
	if t.Closed() {
		return t, nil
	}
	next, err := t.transitionTo(TicketStatusClosed, now)
	if err != nil {
		return t, err
	}
	next.ClosedAt = &now
	return next, nil
}

// Reopen returns a closed or resolved ticket to open.
func (t SupportTicket) Reopen(now time.Time) (SupportTicket, error) {
	if t.Status != TicketStatusClosed && t.Status != TicketStatusResolved {
		return t, apperrors.NewInvalidTransition("support ticket", string(t.Status), string(TicketStatusOpen))
	}
	next, err := t.transitionTo(TicketStatusOpen, now)
	if err != nil {
		return t, err
	}
	next.ClosedAt = nil
	return next, nil
}

// UpdateSubject replaces the subject while the ticket is not closed.
func (t SupportTicket) UpdateSubject(subject string, now time.Time) (SupportTicket, error) {
	if t.Closed() {
		return t, apperrors.NewTicketClosed("subject")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return t, apperrors.NewValidationError("subject required", map[string]any{"field": "subject"})
	}
	t.Subject = subject
	t.UpdatedAt = now
	return t, nil
}

// UpdatePriority replaces the priority while the ticket is not closed.
func (t SupportTicket) UpdatePriority(priority Priority, now time.Time) (SupportTicket, error) {
	if t.Closed() {
		return t, apperrors.NewTicketClosed("priority")
	}
	if !ValidPriority(priority) {
		return t, apperrors.NewValidationError("unknown priority", map[string]any{"field": "priority"})
	}
	t.Priority = &priority
	t.UpdatedAt = now
	return t, nil
}

func (t SupportTicket) transitionTo(target TicketStatus, now time.Time) (SupportTicket, error) {
	if !TicketGraph.CanTransition(t.Status, target) {
		return t, apperrors.NewInvalidTransition("support ticket", string(t.Status), string(target))
	}
	t.Status = target
	t.UpdatedAt = now
	return t, nil
}
