package dto

import (
	"time"

	"github.com/spec-kit/aftersale-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	OrderID  *string             `json:"order_id"`
	Source   domain.TicketSource `json:"source"`
	Subject  string              `json:"subject"`
	Priority *domain.Priority    `json:"priority"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Body string `json:"body"`
}

// UpdateSubjectRequest payload.
type UpdateSubjectRequest struct {
	Subject string `json:"subject"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.Priority `json:"priority"`
}

// TicketSummary response.
type TicketSummary struct {
	ID          string              `json:"id"`
	ExternalKey string              `json:"external_key"`
	UserID      *string             `json:"user_id"`
	OrderID     *string             `json:"order_id"`
	Source      domain.TicketSource `json:"source"`
	Subject     string              `json:"subject"`
	Status      domain.TicketStatus `json:"status"`
	Priority    *domain.Priority    `json:"priority"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	ClosedAt    *time.Time          `json:"closed_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Messages []TicketMessageResponse `json:"messages"`
}

// TicketMessageResponse represents a thread message.
type TicketMessageResponse struct {
	ID        string               `json:"id"`
	Sender    domain.MessageSender `json:"sender"`
	SenderID  *string              `json:"sender_id"`
	Body      string               `json:"body"`
	CreatedAt time.Time            `json:"created_at"`
}
