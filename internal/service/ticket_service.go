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

// TicketService coordinates support-ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.HistoryRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.HistoryRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	UserID   *string
	OrderID  *string
	Source   domain.TicketSource
	Subject  string
	Priority *domain.Priority
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
	}
}

// CreateTicket opens a ticket. Anonymous channels like email or phone may
// leave the customer unset.
func (s *TicketService) CreateTicket(ctx context.Context, actor Actor, input TicketCreateInput) (*domain.SupportTicket, error) {
	ticket, err := domain.NewSupportTicket(input.UserID, input.OrderID, input.Source, input.Subject, input.Priority, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.tickets.Create(ctx, &ticket); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketCreated,
		EntityID: ticket.ID,
		Actor:    actor.eventActor(),
		Payload: events.TicketCreatedPayload{
			ExternalKey: ticket.ExternalKey,
			Source:      ticket.Source,
			Priority:    priorityOrDefault(ticket.Priority),
			Subject:     ticket.Subject,
		},
	})
	return &ticket, nil
}

// GetTicket fetches a ticket with its thread.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.SupportTicket, []domain.TicketMessage, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.tickets.ListMessages(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, msgs, nil
}

// GetTicketForUser fetches a ticket ensuring ownership.
func (s *TicketService) GetTicketForUser(ctx context.Context, userID, id string) (*domain.SupportTicket, []domain.TicketMessage, error) {
	ticket, msgs, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if ticket.UserID == nil || *ticket.UserID != userID {
		return nil, nil, apperrors.NewForbidden("ticket belongs to another customer")
	}
	return ticket, msgs, nil
}

// ListUserTickets returns paginated tickets for a customer.
func (s *TicketService) ListUserTickets(ctx context.Context, userID string, filter repository.TicketFilter) ([]domain.SupportTicket, error) {
	filter.UserID = &userID
	return s.tickets.ListWithFilter(ctx, filter)
}

// ListTickets returns paginated tickets for the support desk.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.SupportTicket, error) {
	return s.tickets.ListWithFilter(ctx, filter)
}

// AddMessage appends a message to an open ticket thread. Customers may only
// post to their own tickets.
func (s *TicketService) AddMessage(ctx context.Context, actor Actor, ticketID, body string) (*domain.TicketMessage, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Closed() {
		return nil, apperrors.NewTicketClosed("messages")
	}

	sender := domain.SenderAgent
	if actor.Type == domain.SubjectTypeCustomer {
		sender = domain.SenderCustomer
		if ticket.UserID == nil || actor.UserID == nil || *ticket.UserID != *actor.UserID {
			return nil, apperrors.NewForbidden("ticket belongs to another customer")
		}
	}

	msg, err := domain.NewTicketMessage(ticket.ID, sender, actor.subjectID(), body, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.tickets.AddMessage(ctx, &msg); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketMessageAdded,
		EntityID: ticket.ID,
		Actor:    actor.eventActor(),
		Payload: events.TicketMessageAddedPayload{
			MessageID:   msg.ID,
			Sender:      msg.Sender,
			SenderID:    msg.SenderID,
			BodyPreview: stringPreview(msg.Body, 120),
		},
	})
	return &msg, nil
}

// MarkInProgress assigns the ticket to active handling.
func (s *TicketService) MarkInProgress(ctx context.Context, actor Actor, id string) (*domain.SupportTicket, error) {
	return s.transition(ctx, actor, id, domain.SupportTicket.MarkInProgress)
}

// MarkResolved flags the ticket as resolved.
func (s *TicketService) MarkResolved(ctx context.Context, actor Actor, id string) (*domain.SupportTicket, error) {
	return s.transition(ctx, actor, id, domain.SupportTicket.MarkResolved)
}

// Close closes the ticket. Closing twice is a no-op.
func (s *TicketService) Close(ctx context.Context, actor Actor, id string) (*domain.SupportTicket, error) {
	current, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Closed() {
		return current, nil
	}
	return s.transition(ctx, actor, id, domain.SupportTicket.Close)
}

// CloseAsUser closes a ticket after verifying ownership.
func (s *TicketService) CloseAsUser(ctx context.Context, userID, id string) (*domain.SupportTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.UserID == nil || *ticket.UserID != userID {
		return nil, apperrors.NewForbidden("ticket belongs to another customer")
	}
	return s.Close(ctx, CustomerActor(userID), id)
}

// Reopen returns a closed or resolved ticket to open.
func (s *TicketService) Reopen(ctx context.Context, actor Actor, id string) (*domain.SupportTicket, error) {
	return s.transition(ctx, actor, id, domain.SupportTicket.Reopen)
}

// UpdateSubject replaces the subject of an open ticket.
func (s *TicketService) UpdateSubject(ctx context.Context, id, subject string) (*domain.SupportTicket, error) {
	return s.mutate(ctx, id, func(t domain.SupportTicket, now time.Time) (domain.SupportTicket, error) {
		return t.UpdateSubject(subject, now)
	})
}

// UpdatePriority replaces the priority of an open ticket.
func (s *TicketService) UpdatePriority(ctx context.Context, id string, priority domain.Priority) (*domain.SupportTicket, error) {
	return s.mutate(ctx, id, func(t domain.SupportTicket, now time.Time) (domain.SupportTicket, error) {
		return t.UpdatePriority(priority, now)
	})
}

// ListHistory returns the audit trail for one ticket.
func (s *TicketService) ListHistory(ctx context.Context, id string) ([]domain.ServiceHistory, error) {
	return s.history.ListByEntity(ctx, domain.HistoryEntityTicket, id)
}

func (s *TicketService) mutate(ctx context.Context, id string, op func(domain.SupportTicket, time.Time) (domain.SupportTicket, error)) (*domain.SupportTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := op(*ticket, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.tickets.Save(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *TicketService) transition(ctx context.Context, actor Actor, id string, op func(domain.SupportTicket, time.Time) (domain.SupportTicket, error)) (*domain.SupportTicket, error) {
	current, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	next, err := op(*current, now)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.Save(ctx, &next); err != nil {
		return nil, err
	}
	s.metrics.RecordTransition("ticket", string(current.Status), string(next.Status))
	if err := recordHistory(ctx, s.history, domain.HistoryEntityTicket, next.ID, actor,
		statusValue(string(current.Status)), statusValue(string(next.Status)), now); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketStatusChanged,
		EntityID: next.ID,
		Actor:    actor.eventActor(),
		Payload: events.TicketStatusChangedPayload{
			ExternalKey: next.ExternalKey,
			OldStatus:   current.Status,
			NewStatus:   next.Status,
		},
	})
	return &next, nil
}

func priorityOrDefault(p *domain.Priority) domain.Priority {
	if p == nil {
		return domain.PriorityMedium
	}
	return *p
}
