package service

import (
	"context"
	"time"

	"github.com/spec-kit/aftersale-service/internal/domain"
	"github.com/spec-kit/aftersale-service/internal/events"
	"github.com/spec-kit/aftersale-service/internal/observability"
	"github.com/spec-kit/aftersale-service/internal/repository"
	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

// ChatService coordinates live-chat sessions.
type ChatService struct {
	chats      repository.ChatRepository
	history    repository.HistoryRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

// ChatDependencies bundles collaborators for the chat service.
type ChatDependencies struct {
	ChatRepo    repository.ChatRepository
	HistoryRepo repository.HistoryRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
}

// NewChatService constructs the service.
func NewChatService(deps ChatDependencies) *ChatService {
	return &ChatService{
		chats:      deps.ChatRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
	}
}

// StartSession opens a session waiting for an agent.
func (s *ChatService) StartSession(ctx context.Context, actor Actor, topic *string, priority *domain.Priority) (*domain.ChatSession, error) {
	session, err := domain.NewChatSession(actor.UserID, topic, priority, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.chats.Create(ctx, &session); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventChatStarted,
		EntityID: session.ID,
		Actor:    actor.eventActor(),
		Payload: events.ChatStartedPayload{
			Topic:    session.Topic,
			Priority: session.Priority,
		},
	})
	return &session, nil
}

// GetSession fetches a session by id.
func (s *ChatService) GetSession(ctx context.Context, id string) (*domain.ChatSession, error) {
	return s.chats.GetByID(ctx, id)
}

// GetSessionForUser fetches a session ensuring ownership.
func (s *ChatService) GetSessionForUser(ctx context.Context, userID, id string) (*domain.ChatSession, error) {
	session, err := s.chats.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.UserID == nil || *session.UserID != userID {
		return nil, apperrors.NewForbidden("chat session belongs to another customer")
	}
	return session, nil
}

// ListSessions returns paginated sessions matching the filter.
func (s *ChatService) ListSessions(ctx context.Context, filter repository.ChatFilter) ([]domain.ChatSession, error) {
	return s.chats.ListWithFilter(ctx, filter)
}

// AssignAgent attaches an agent to a waiting session and activates it.
func (s *ChatService) AssignAgent(ctx context.Context, actor Actor, id, agentID string) (*domain.ChatSession, error) {
	current, err := s.chats.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	next, err := current.AssignAgent(agentID)
	if err != nil {
		return nil, err
	}
	if err := s.chats.Save(ctx, &next); err != nil {
		return nil, err
	}
	s.metrics.RecordTransition("chat", string(current.Status), string(next.Status))
	if err := recordHistory(ctx, s.history, domain.HistoryEntityChat, next.ID, actor,
		statusValue(string(current.Status)), map[string]any{"status": string(next.Status), "agent_id": agentID}, now); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventChatAgentAssigned,
		EntityID: next.ID,
		Actor:    actor.eventActor(),
		Payload:  events.ChatAgentAssignedPayload{AgentID: agentID},
	})
	return &next, nil
}

// UpdateStatus moves the session along its graph. Ending it this way stamps
// the end time like EndSession.
func (s *ChatService) UpdateStatus(ctx context.Context, actor Actor, id string, target domain.ChatStatus) (*domain.ChatSession, error) {
	return s.transition(ctx, actor, id, func(c domain.ChatSession, now time.Time) (domain.ChatSession, error) {
		return c.UpdateStatus(target, now)
	})
}

// UpdateTopic replaces the topic on an open session.
func (s *ChatService) UpdateTopic(ctx context.Context, id, topic string) (*domain.ChatSession, error) {
	return s.mutate(ctx, id, func(c domain.ChatSession) (domain.ChatSession, error) {
		return c.UpdateTopic(topic)
	})
}

// UpdatePriority replaces the priority on an open session.
func (s *ChatService) UpdatePriority(ctx context.Context, id string, priority domain.Priority) (*domain.ChatSession, error) {
	return s.mutate(ctx, id, func(c domain.ChatSession) (domain.ChatSession, error) {
		return c.UpdatePriority(priority)
	})
}

// EndSession closes the session and stamps the end time.
func (s *ChatService) EndSession(ctx context.Context, actor Actor, id string) (*domain.ChatSession, error) {
	return s.transition(ctx, actor, id, domain.ChatSession.End)
}

func (s *ChatService) mutate(ctx context.Context, id string, op func(domain.ChatSession) (domain.ChatSession, error)) (*domain.ChatSession, error) {
	session, err := s.chats.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := op(*session)
	if err != nil {
		return nil, err
	}
	if err := s.chats.Save(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *ChatService) transition(ctx context.Context, actor Actor, id string, op func(domain.ChatSession, time.Time) (domain.ChatSession, error)) (*domain.ChatSession, error) {
	current, err := s.chats.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	next, err := op(*current, now)
	if err != nil {
		return nil, err
	}
	if err := s.chats.Save(ctx, &next); err != nil {
		return nil, err
	}
	s.metrics.RecordTransition("chat", string(current.Status), string(next.Status))
	if err := recordHistory(ctx, s.history, domain.HistoryEntityChat, next.ID, actor,
		statusValue(string(current.Status)), statusValue(string(next.Status)), now); err != nil {
		return nil, err
	}
	if next.Ended() {
		duration, _ := next.Duration()
		publish(ctx, s.dispatcher, events.Event{
			Type:     events.EventChatEnded,
			EntityID: next.ID,
			Actor:    actor.eventActor(),
			Payload:  events.ChatEndedPayload{Duration: duration},
		})
	}
	return &next, nil
}
