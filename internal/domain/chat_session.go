package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

// ChatStatus enumerates live-chat session states.
type ChatStatus string

const (
	ChatStatusWaiting ChatStatus = "WAITING"
	ChatStatusActive  ChatStatus = "ACTIVE"
	ChatStatusEnded   ChatStatus = "ENDED"
)

// ChatGraph declares the three-state chat lifecycle. A session in the queue
// may be ended without ever going active.
var ChatGraph = Graph[ChatStatus]{
	ChatStatusWaiting: {ChatStatusActive, ChatStatusEnded},
	ChatStatusActive:  {ChatStatusEnded},
	ChatStatusEnded:   {},
}

// ChatSession models a live-chat conversation between a customer and an agent.
type ChatSession struct {
	ID        string
	UserID    *string
	AgentID   *string
	Topic     *string
	Priority  *Priority
	Status    ChatStatus
	StartedAt time.Time
	EndedAt   *time.Time
}

// NewChatSession creates a session waiting for an agent.
func NewChatSession(userID, topic *string, priority *Priority, now time.Time) (ChatSession, error) {
	if priority != nil && !ValidPriority(*priority) {
		return ChatSession{}, apperrors.NewValidationError("unknown priority", map[string]any{"field": "priority"})
	}
	return ChatSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Topic:     topic,
		Priority:  priority,
		Status:    ChatStatusWaiting,
		StartedAt: now,
	}, nil
}

// Ended reports whether the session has ended.
func (s ChatSession) Ended() bool {
	return s.Status == ChatStatusEnded
}

// AssignAgent attaches an agent and forces the session active. Assignment
// from the waiting queue jumps straight to active.
func (s ChatSession) AssignAgent(agentID string) (ChatSession, error) {
	if strings.TrimSpace(agentID) == "" {
		return s, apperrors.NewEmptyAgentID()
	}
	if s.Ended() {
		return s, apperrors.NewSessionEnded("agent_id")
	}
	s.AgentID = &agentID
	s.Status = ChatStatusActive
	return s, nil
}

// UpdateStatus moves the session along its graph. Moving to ended stamps the
// end time, same as End.
func (s ChatSession) UpdateStatus(target ChatStatus, now time.Time) (ChatSession, error) {
	if s.Ended() {
		return s, apperrors.NewSessionEnded("status")
	}
	if target == ChatStatusEnded {
		return s.End(now)
	}
	if !ChatGraph.CanTransition(s.Status, target) {
		return s, apperrors.NewInvalidTransition("chat session", string(s.Status), string(target))
	}
	s.Status = target
	return s, nil
}

// UpdateTopic replaces the topic while the session is open.
func (s ChatSession) UpdateTopic(topic string) (ChatSession, error) {
	if s.Ended() {
		return s, apperrors.NewSessionEnded("topic")
	}
	s.Topic = &topic
	return s, nil
}

// UpdatePriority replaces the priority while the session is open.
func (s ChatSession) UpdatePriority(priority Priority) (ChatSession, error) {
	if s.Ended() {
		return s, apperrors.NewSessionEnded("priority")
	}
	if !ValidPriority(priority) {
		return s, apperrors.NewValidationError("unknown priority", map[string]any{"field": "priority"})
	}
	s.Priority = &priority
	return s, nil
}

// End closes the session and stamps the end time exactly once.
func (s ChatSession) End(now time.Time) (ChatSession, error) {
	if s.Ended() {
		return s, apperrors.NewAlreadyEnded()
	}
	s.Status = ChatStatusEnded
	s.EndedAt = &now
	return s, nil
}

// Duration returns the elapsed time between start and end. The second
// return is false while the session is still open.
func (s ChatSession) Duration() (time.Duration, bool) {
	if s.EndedAt == nil {
		return 0, false
	}
	return s.EndedAt.Sub(s.StartedAt), true
}
