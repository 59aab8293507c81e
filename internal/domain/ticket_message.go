package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

// MessageSender indicates who authored a ticket message.
type MessageSender string

const (
	SenderAgent    MessageSender = "AGENT"
	SenderCustomer MessageSender = "CUSTOMER"
)

// TicketMessage captures one entry in a ticket thread. Messages are
// immutable once created.
type TicketMessage struct {
	ID        string
	TicketID  string
	Sender    MessageSender
	SenderID  *string
	Body      string
	CreatedAt time.Time
}

// NewTicketMessage validates and builds a message.
func NewTicketMessage(ticketID string, sender MessageSender, senderID *string, body string, now time.Time) (TicketMessage, error) {
	if strings.TrimSpace(ticketID) == "" {
		return TicketMessage{}, apperrors.NewValidationError("ticket_id required", map[string]any{"field": "ticket_id"})
	}
	if sender != SenderAgent && sender != SenderCustomer {
		return TicketMessage{}, apperrors.NewValidationError("unknown sender", map[string]any{"field": "sender"})
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return TicketMessage{}, apperrors.NewValidationError("body required", map[string]any{"field": "body"})
	}
	return TicketMessage{
		ID:        uuid.NewString(),
		TicketID:  ticketID,
		Sender:    sender,
		SenderID:  senderID,
		Body:      body,
		CreatedAt: now,
	}, nil
}
