package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

// NewInvalidTransition reports a state change not allowed by the entity graph.
func NewInvalidTransition(entity, from, to string) error {
	return NewDomainError("INVALID_TRANSITION",
		fmt.Sprintf("%s cannot move from %s to %s", entity, from, to),
		http.StatusConflict,
		map[string]any{"entity": entity, "from": from, "to": to})
}

// NewAlreadyFinalized reports a transition attempted on a terminal entity.
func NewAlreadyFinalized(entity, status string) error {
	return NewDomainError("ALREADY_FINALIZED",
		fmt.Sprintf("%s already finalized in status %s", entity, status),
		http.StatusConflict,
		map[string]any{"entity": entity, "status": status})
}

// NewFinalized reports a field mutation attempted on a terminal entity.
func NewFinalized(entity, field, status string) error {
	return NewDomainError("FINALIZED",
		fmt.Sprintf("%s is finalized; %s can no longer change", entity, field),
		http.StatusConflict,
		map[string]any{"entity": entity, "field": field, "status": status})
}

// NewTicketClosed reports a mutation attempted on a closed ticket.
func NewTicketClosed(field string) error {
	return NewDomainError("TICKET_CLOSED",
		fmt.Sprintf("ticket is closed; %s can no longer change", field),
		http.StatusConflict,
		map[string]any{"field": field})
}

// NewAlreadyClosed reports resolving a ticket that is already closed.
func NewAlreadyClosed() error {
	return NewDomainError("ALREADY_CLOSED", "ticket is already closed", http.StatusConflict, nil)
}

// NewEmptyAgentID reports an agent assignment with a blank agent id.
func NewEmptyAgentID() error {
	return NewDomainError("EMPTY_AGENT_ID", "agent_id must not be blank", http.StatusBadRequest,
		map[string]any{"field": "agent_id"})
}

// NewSessionEnded reports a mutation attempted on an ended chat session.
func NewSessionEnded(field string) error {
	return NewDomainError("SESSION_ENDED",
		fmt.Sprintf("chat session has ended; %s can no longer change", field),
		http.StatusConflict,
		map[string]any{"field": field})
}

// NewAlreadyEnded reports ending a chat session twice.
func NewAlreadyEnded() error {
	return NewDomainError("ALREADY_ENDED", "chat session is already ended", http.StatusConflict, nil)
}

// NewInvalidInterval reports a proposed interval whose start is not before its end.
func NewInvalidInterval() error {
	return NewDomainError("INVALID_INTERVAL", "interval start must be before end", http.StatusBadRequest,
		map[string]any{"fields": []string{"starts_at", "ends_at"}})
}

// NewBookingConflict reports an overlapping appointment for the subject.
func NewBookingConflict(details map[string]any) error {
	return NewDomainError("BOOKING_CONFLICT", "requested time overlaps an existing appointment", http.StatusConflict, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewStorageError wraps persistence failures without interpreting them.
func NewStorageError(err error) error {
	return &DomainError{
		Code:       "STORAGE_ERROR",
		Message:    "storage operation failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// CodeOf extracts the DomainError code, or empty string for non-domain errors.
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}
