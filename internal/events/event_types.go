package events

import (
	"time"

	"github.com/spec-kit/aftersale-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReturnCreated          EventType = "return_created"
	EventReturnStatusChanged    EventType = "return_status_changed"
	EventRepairCreated          EventType = "repair_created"
	EventRepairStatusChanged    EventType = "repair_status_changed"
	EventTicketCreated          EventType = "ticket_created"
	EventTicketStatusChanged    EventType = "ticket_status_changed"
	EventTicketMessageAdded     EventType = "ticket_message_added"
	EventChatStarted            EventType = "chat_started"
	EventChatAgentAssigned      EventType = "chat_agent_assigned"
	EventChatEnded              EventType = "chat_ended"
	EventAppointmentBooked      EventType = "appointment_booked"
	EventAppointmentRescheduled EventType = "appointment_rescheduled"
	EventAppointmentCancelled   EventType = "appointment_cancelled"
	EventFeedbackSubmitted      EventType = "feedback_submitted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	UserID  *string            `json:"user_id,omitempty"`
	AgentID *string            `json:"agent_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReturnCreatedPayload payload.
type ReturnCreatedPayload struct {
	ExternalKey string            `json:"external_key"`
	OrderID     string            `json:"order_id"`
	Type        domain.ReturnType `json:"type"`
	ItemCount   int               `json:"item_count"`
}

// ReturnStatusChangedPayload payload.
type ReturnStatusChangedPayload struct {
	ExternalKey string              `json:"external_key"`
	OldStatus   domain.ReturnStatus `json:"old_status"`
	NewStatus   domain.ReturnStatus `json:"new_status"`
}

// RepairCreatedPayload payload.
type RepairCreatedPayload struct {
	ExternalKey string `json:"external_key"`
	OrderLineID string `json:"order_line_id"`
}

// RepairStatusChangedPayload payload.
type RepairStatusChangedPayload struct {
	ExternalKey string              `json:"external_key"`
	OldStatus   domain.RepairStatus `json:"old_status"`
	NewStatus   domain.RepairStatus `json:"new_status"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ExternalKey string              `json:"external_key"`
	Source      domain.TicketSource `json:"source"`
	Priority    domain.Priority     `json:"priority"`
	Subject     string              `json:"subject"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	ExternalKey string              `json:"external_key"`
	OldStatus   domain.TicketStatus `json:"old_status"`
	NewStatus   domain.TicketStatus `json:"new_status"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID   string               `json:"message_id"`
	Sender      domain.MessageSender `json:"sender"`
	SenderID    *string              `json:"sender_id,omitempty"`
	BodyPreview string               `json:"body_preview"`
}

// ChatStartedPayload payload.
type ChatStartedPayload struct {
	Topic    *string          `json:"topic,omitempty"`
	Priority *domain.Priority `json:"priority,omitempty"`
}

// ChatAgentAssignedPayload payload.
type ChatAgentAssignedPayload struct {
	AgentID string `json:"agent_id"`
}

// ChatEndedPayload payload.
type ChatEndedPayload struct {
	Duration time.Duration `json:"duration"`
}

// AppointmentBookedPayload payload.
type AppointmentBookedPayload struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// AppointmentRescheduledPayload payload.
type AppointmentRescheduledPayload struct {
	OldStartsAt time.Time `json:"old_starts_at"`
	OldEndsAt   time.Time `json:"old_ends_at"`
	NewStartsAt time.Time `json:"new_starts_at"`
	NewEndsAt   time.Time `json:"new_ends_at"`
}

// FeedbackSubmittedPayload payload.
type FeedbackSubmittedPayload struct {
	Score int `json:"score"`
}
