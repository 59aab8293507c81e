package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/aftersale-service/internal/domain"
	"github.com/spec-kit/aftersale-service/internal/events"
	"github.com/spec-kit/aftersale-service/internal/repository"
)

// Actor identifies who invoked an operation.
type Actor struct {
	Type    domain.SubjectType
	UserID  *string
	AgentID *string
}

// CustomerActor builds an actor for a customer subject.
func CustomerActor(userID string) Actor {
	return Actor{Type: domain.SubjectTypeCustomer, UserID: &userID}
}

// AgentActor builds an actor for an agent subject.
func AgentActor(agentID string) Actor {
	return Actor{Type: domain.SubjectTypeAgent, AgentID: &agentID}
}

func (a Actor) eventActor() events.Actor {
	return events.Actor{Type: a.Type, UserID: a.UserID, AgentID: a.AgentID}
}

func (a Actor) subjectID() *string {
	if a.Type == domain.SubjectTypeAgent {
		return a.AgentID
	}
	return a.UserID
}

func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}

func recordHistory(ctx context.Context, history repository.HistoryRepository, entityType domain.HistoryEntityType, entityID string, actor Actor, oldValue, newValue map[string]any, now time.Time) error {
	if history == nil {
		return nil
	}
	entry := &domain.ServiceHistory{
		ID:            uuid.NewString(),
		EntityType:    entityType,
		EntityID:      entityID,
		ChangedByType: actor.Type,
		ChangedByID:   actor.subjectID(),
		OldValue:      oldValue,
		NewValue:      newValue,
		CreatedAt:     now,
	}
	return history.Record(ctx, entry)
}

func statusValue(status string) map[string]any {
	return map[string]any{"status": status}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
