package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/aftersale-service/internal/domain"
	"github.com/spec-kit/aftersale-service/internal/events"
	"github.com/spec-kit/aftersale-service/internal/observability"
	"github.com/spec-kit/aftersale-service/internal/repository"
	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

type fakeTicketRepo struct {
	tickets  map[string]domain.SupportTicket
	messages map[string][]domain.TicketMessage
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:  make(map[string]domain.SupportTicket),
		messages: make(map[string][]domain.TicketMessage),
	}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.SupportTicket) error {
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Save(_ context.Context, ticket *domain.SupportTicket) error {
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.SupportTicket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return &ticket, nil
}

func (r *fakeTicketRepo) GetByExternalKey(_ context.Context, key string) (*domain.SupportTicket, error) {
	for _, ticket := range r.tickets {
		if ticket.ExternalKey == key {
			return &ticket, nil
		}
	}
	return nil, apperrors.NewNotFound("ticket", map[string]any{"external_key": key})
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.SupportTicket, error) {
	var out []domain.SupportTicket
	for _, ticket := range r.tickets {
		if filter.UserID != nil && (ticket.UserID == nil || *ticket.UserID != *filter.UserID) {
			continue
		}
		out = append(out, ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) AddMessage(_ context.Context, msg *domain.TicketMessage) error {
	r.messages[msg.TicketID] = append(r.messages[msg.TicketID], *msg)
	return nil
}

func (r *fakeTicketRepo) ListMessages(_ context.Context, ticketID string) ([]domain.TicketMessage, error) {
	return r.messages[ticketID], nil
}

func newTicketFixture() (*TicketService, *fakeTicketRepo, *fakeHistoryRepo, events.Dispatcher) {
	repo := newFakeTicketRepo()
	history := &fakeHistoryRepo{}
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  repo,
		HistoryRepo: history,
		Dispatcher:  dispatcher,
		Metrics:     observability.NewMetrics(),
	})
	return svc, repo, history, dispatcher
}

func openTicket(t *testing.T, svc *TicketService, userID string) *domain.SupportTicket {
	t.Helper()
	ticket, err := svc.CreateTicket(context.Background(), CustomerActor(userID), TicketCreateInput{
		UserID:  &userID,
		Source:  domain.TicketSourceWeb,
		Subject: "order arrived damaged",
	})
	require.NoError(t, err)
	return ticket
}

func TestTicketService_CreateTicket(t *testing.T) {
	svc, _, _, dispatcher := newTicketFixture()

	var published []events.Event
	dispatcher.Subscribe(events.EventTicketCreated, func(_ context.Context, event events.Event) error {
		published = append(published, event)
		return nil
	})

	ticket := openTicket(t, svc, "user-1")
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.NotEmpty(t, ticket.ExternalKey)

	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.TicketCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.PriorityMedium, payload.Priority)

	_, err := svc.CreateTicket(context.Background(), CustomerActor("user-1"), TicketCreateInput{
		Source:  domain.TicketSourceWeb,
		Subject: "   ",
	})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))
}

func TestTicketService_CloseIsIdempotent(t *testing.T) {
	svc, _, history, _ := newTicketFixture()
	ctx := context.Background()
	agent := AgentActor("agent-1")

	ticket := openTicket(t, svc, "user-1")

	closed, err := svc.Close(ctx, agent, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	// second close is a no-op, not an error
	again, err := svc.Close(ctx, agent, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, again.Status)

	entries, err := history.ListByEntity(ctx, domain.HistoryEntityTicket, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTicketService_AddMessage(t *testing.T) {
	svc, _, _, dispatcher := newTicketFixture()
	ctx := context.Background()

	var published []events.Event
	dispatcher.Subscribe(events.EventTicketMessageAdded, func(_ context.Context, event events.Event) error {
		published = append(published, event)
		return nil
	})

	ticket := openTicket(t, svc, "user-1")

	msg, err := svc.AddMessage(ctx, CustomerActor("user-1"), ticket.ID, "any update on this?")
	require.NoError(t, err)
	assert.Equal(t, domain.SenderCustomer, msg.Sender)

	reply, err := svc.AddMessage(ctx, AgentActor("agent-1"), ticket.ID, "looking into it now")
	require.NoError(t, err)
	assert.Equal(t, domain.SenderAgent, reply.Sender)

	// another customer cannot post to this thread
	_, err = svc.AddMessage(ctx, CustomerActor("user-2"), ticket.ID, "me too")
	assert.Equal(t, "FORBIDDEN", apperrors.CodeOf(err))

	require.Len(t, published, 2)
}

func TestTicketService_AddMessage_ClosedGuard(t *testing.T) {
	svc, _, _, _ := newTicketFixture()
	ctx := context.Background()
	agent := AgentActor("agent-1")

	ticket := openTicket(t, svc, "user-1")
	_, err := svc.Close(ctx, agent, ticket.ID)
	require.NoError(t, err)

	_, err = svc.AddMessage(ctx, agent, ticket.ID, "closing note")
	assert.Equal(t, "TICKET_CLOSED", apperrors.CodeOf(err))
}

func TestTicketService_ReopenCycle(t *testing.T) {
	svc, _, _, _ := newTicketFixture()
	ctx := context.Background()
	agent := AgentActor("agent-1")

	ticket := openTicket(t, svc, "user-1")

	current, err := svc.MarkInProgress(ctx, agent, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, current.Status)

	current, err = svc.MarkResolved(ctx, agent, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, current.Status)

	current, err = svc.Reopen(ctx, agent, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, current.Status)

	// resolving twice in a row is not a legal edge
	_, err = svc.MarkResolved(ctx, agent, ticket.ID)
	require.NoError(t, err)
	_, err = svc.MarkResolved(ctx, agent, ticket.ID)
	assert.Equal(t, "INVALID_TRANSITION", apperrors.CodeOf(err))
}

func TestTicketService_CloseAsUser_Ownership(t *testing.T) {
	svc, _, _, _ := newTicketFixture()
	ctx := context.Background()

	ticket := openTicket(t, svc, "user-1")

	_, err := svc.CloseAsUser(ctx, "user-2", ticket.ID)
	assert.Equal(t, "FORBIDDEN", apperrors.CodeOf(err))

	closed, err := svc.CloseAsUser(ctx, "user-1", ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
}

func TestTicketService_AnonymousChannelTicket(t *testing.T) {
	svc, _, _, _ := newTicketFixture()
	ctx := context.Background()
	agent := AgentActor("agent-1")

	ticket, err := svc.CreateTicket(ctx, agent, TicketCreateInput{
		Source:  domain.TicketSourcePhone,
		Subject: "caller reports missing part",
	})
	require.NoError(t, err)
	assert.Nil(t, ticket.UserID)

	// agents can post to unowned tickets, customers cannot
	_, err = svc.AddMessage(ctx, agent, ticket.ID, "call summary attached")
	require.NoError(t, err)
	_, err = svc.AddMessage(ctx, CustomerActor("user-1"), ticket.ID, "hello")
	assert.Equal(t, "FORBIDDEN", apperrors.CodeOf(err))
}
