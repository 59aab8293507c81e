package dto

import (
	"time"

	"github.com/spec-kit/aftersale-service/internal/domain"
)

// StartChatRequest payload.
type StartChatRequest struct {
	Topic    *string          `json:"topic"`
	Priority *domain.Priority `json:"priority"`
}

// AssignAgentRequest payload.
type AssignAgentRequest struct {
	AgentID string `json:"agent_id"`
}

// ChatStatusRequest payload.
type ChatStatusRequest struct {
	Status domain.ChatStatus `json:"status"`
}

// ChatTopicRequest payload.
type ChatTopicRequest struct {
	Topic string `json:"topic"`
}

// ChatPriorityRequest payload.
type ChatPriorityRequest struct {
	Priority domain.Priority `json:"priority"`
}

// ChatResponse response. DurationSeconds is set only once the session ended.
type ChatResponse struct {
	ID              string            `json:"id"`
	UserID          *string           `json:"user_id"`
	AgentID         *string           `json:"agent_id"`
	Topic           *string           `json:"topic"`
	Priority        *domain.Priority  `json:"priority"`
	Status          domain.ChatStatus `json:"status"`
	StartedAt       time.Time         `json:"started_at"`
	EndedAt         *time.Time        `json:"ended_at"`
	DurationSeconds *float64          `json:"duration_seconds,omitempty"`
}
