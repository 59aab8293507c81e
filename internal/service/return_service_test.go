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

type fakeReturnRepo struct {
	returns map[string]domain.ReturnRequest
	items   map[string][]domain.ReturnItem
}

func newFakeReturnRepo() *fakeReturnRepo {
	return &fakeReturnRepo{
		returns: make(map[string]domain.ReturnRequest),
		items:   make(map[string][]domain.ReturnItem),
	}
}

func (r *fakeReturnRepo) Create(_ context.Context, rma *domain.ReturnRequest) error {
	r.returns[rma.ID] = *rma
	return nil
}

func (r *fakeReturnRepo) Save(_ context.Context, rma *domain.ReturnRequest) error {
	r.returns[rma.ID] = *rma
	return nil
}

func (r *fakeReturnRepo) GetByID(_ context.Context, id string) (*domain.ReturnRequest, error) {
	rma, ok := r.returns[id]
	if !ok {
		return nil, apperrors.NewNotFound("return request", map[string]any{"id": id})
	}
	return &rma, nil
}

func (r *fakeReturnRepo) GetByExternalKey(_ context.Context, key string) (*domain.ReturnRequest, error) {
	for _, rma := range r.returns {
		if rma.ExternalKey == key {
			return &rma, nil
		}
	}
	return nil, apperrors.NewNotFound("return request", map[string]any{"external_key": key})
}

func (r *fakeReturnRepo) ListWithFilter(_ context.Context, filter repository.ReturnFilter) ([]domain.ReturnRequest, error) {
	var out []domain.ReturnRequest
	for _, rma := range r.returns {
		if filter.UserID != nil && rma.UserID != *filter.UserID {
			continue
		}
		out = append(out, rma)
	}
	return out, nil
}

func (r *fakeReturnRepo) AddItem(_ context.Context, item *domain.ReturnItem) error {
	r.items[item.ReturnID] = append(r.items[item.ReturnID], *item)
	return nil
}

func (r *fakeReturnRepo) ListItems(_ context.Context, returnID string) ([]domain.ReturnItem, error) {
	return r.items[returnID], nil
}

func newReturnFixture() (*ReturnService, *fakeReturnRepo, *fakeHistoryRepo, events.Dispatcher) {
	repo := newFakeReturnRepo()
	history := &fakeHistoryRepo{}
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewReturnService(ReturnDependencies{
		ReturnRepo:  repo,
		HistoryRepo: history,
		Dispatcher:  dispatcher,
		Metrics:     observability.NewMetrics(),
	})
	return svc, repo, history, dispatcher
}

func TestReturnService_CreateReturn(t *testing.T) {
	svc, _, _, dispatcher := newReturnFixture()
	ctx := context.Background()

	var published []events.Event
	dispatcher.Subscribe(events.EventReturnCreated, func(_ context.Context, event events.Event) error {
		published = append(published, event)
		return nil
	})

	rma, err := svc.CreateReturn(ctx, "user-1", ReturnCreateInput{
		OrderID: "order-1",
		Type:    domain.ReturnTypeReturn,
		Items: []ReturnItemInput{
			{OrderLineID: "line-1", Quantity: 2},
			{OrderLineID: "line-2", Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ReturnStatusEligibility, rma.Status)
	assert.NotEmpty(t, rma.ExternalKey)

	_, items, err := svc.GetReturn(ctx, rma.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.ReturnCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, 2, payload.ItemCount)
}

func TestReturnService_CreateReturn_Validation(t *testing.T) {
	svc, _, _, _ := newReturnFixture()
	ctx := context.Background()

	_, err := svc.CreateReturn(ctx, "user-1", ReturnCreateInput{OrderID: "", Type: domain.ReturnTypeReturn})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	_, err = svc.CreateReturn(ctx, "user-1", ReturnCreateInput{OrderID: "order-1", Type: "SOMETHING"})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	_, err = svc.CreateReturn(ctx, "user-1", ReturnCreateInput{
		OrderID: "order-1",
		Type:    domain.ReturnTypeReturn,
		Items:   []ReturnItemInput{{OrderLineID: "line-1", Quantity: 0}},
	})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))
}

func TestReturnService_HappyPath(t *testing.T) {
	svc, _, history, dispatcher := newReturnFixture()
	ctx := context.Background()
	agent := AgentActor("agent-1")

	var changes []events.ReturnStatusChangedPayload
	dispatcher.Subscribe(events.EventReturnStatusChanged, func(_ context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.ReturnStatusChangedPayload); ok {
			changes = append(changes, payload)
		}
		return nil
	})

	rma, err := svc.CreateReturn(ctx, "user-1", ReturnCreateInput{OrderID: "order-1", Type: domain.ReturnTypeReturn})
	require.NoError(t, err)

	rma, err = svc.Approve(ctx, agent, rma.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReturnStatusApproved, rma.Status)

	rma, err = svc.MarkInTransit(ctx, agent, rma.ID)
	require.NoError(t, err)
	rma, err = svc.MarkReceived(ctx, agent, rma.ID)
	require.NoError(t, err)
	rma, err = svc.MarkRefunded(ctx, agent, rma.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReturnStatusRefunded, rma.Status)

	entries, err := history.ListByEntity(ctx, domain.HistoryEntityReturn, rma.ID)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "ELIGIBILITY", entries[0].OldValue["status"])
	assert.Equal(t, "REFUNDED", entries[3].NewValue["status"])
	assert.Equal(t, domain.SubjectTypeAgent, entries[0].ChangedByType)

	require.Len(t, changes, 4)
	assert.Equal(t, domain.ReturnStatusReceived, changes[3].OldStatus)
	assert.Equal(t, domain.ReturnStatusRefunded, changes[3].NewStatus)
}

func TestReturnService_InvalidTransition(t *testing.T) {
	svc, _, _, _ := newReturnFixture()
	ctx := context.Background()
	agent := AgentActor("agent-1")

	rma, err := svc.CreateReturn(ctx, "user-1", ReturnCreateInput{OrderID: "order-1", Type: domain.ReturnTypeReturn})
	require.NoError(t, err)

	// shipping before approval skips a state
	_, err = svc.MarkInTransit(ctx, agent, rma.ID)
	assert.Equal(t, "INVALID_TRANSITION", apperrors.CodeOf(err))

	// failed transition leaves the RMA untouched
	current, _, err := svc.GetReturn(ctx, rma.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReturnStatusEligibility, current.Status)
}

func TestReturnService_RejectFromAnyOpenState(t *testing.T) {
	svc, _, _, _ := newReturnFixture()
	ctx := context.Background()
	agent := AgentActor("agent-1")

	rma, err := svc.CreateReturn(ctx, "user-1", ReturnCreateInput{OrderID: "order-1", Type: domain.ReturnTypeReturn})
	require.NoError(t, err)
	rma, err = svc.Approve(ctx, agent, rma.ID)
	require.NoError(t, err)

	rma, err = svc.Reject(ctx, agent, rma.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReturnStatusRejected, rma.Status)

	_, err = svc.Reject(ctx, agent, rma.ID)
	assert.Equal(t, "ALREADY_FINALIZED", apperrors.CodeOf(err))
	_, err = svc.Approve(ctx, agent, rma.ID)
	assert.Equal(t, "INVALID_TRANSITION", apperrors.CodeOf(err))
}

func TestReturnService_AddItem_FinalizedGuard(t *testing.T) {
	svc, _, _, _ := newReturnFixture()
	ctx := context.Background()
	agent := AgentActor("agent-1")

	rma, err := svc.CreateReturn(ctx, "user-1", ReturnCreateInput{OrderID: "order-1", Type: domain.ReturnTypeReturn})
	require.NoError(t, err)

	item, err := svc.AddItem(ctx, rma.ID, ReturnItemInput{OrderLineID: "line-1", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, rma.ID, item.ReturnID)

	_, err = svc.Reject(ctx, agent, rma.ID)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, rma.ID, ReturnItemInput{OrderLineID: "line-2", Quantity: 1})
	assert.Equal(t, "FINALIZED", apperrors.CodeOf(err))
}

func TestReturnService_UpdateReason(t *testing.T) {
	svc, _, _, _ := newReturnFixture()
	ctx := context.Background()
	agent := AgentActor("agent-1")

	rma, err := svc.CreateReturn(ctx, "user-1", ReturnCreateInput{OrderID: "order-1", Type: domain.ReturnTypeReturn})
	require.NoError(t, err)

	updated, err := svc.UpdateReason(ctx, CustomerActor("user-1"), rma.ID, "wrong size")
	require.NoError(t, err)
	require.NotNil(t, updated.Reason)
	assert.Equal(t, "wrong size", *updated.Reason)

	_, err = svc.Reject(ctx, agent, rma.ID)
	require.NoError(t, err)
	_, err = svc.UpdateReason(ctx, CustomerActor("user-1"), rma.ID, "changed my mind")
	assert.Equal(t, "FINALIZED", apperrors.CodeOf(err))
}

func TestReturnService_Ownership(t *testing.T) {
	svc, _, _, _ := newReturnFixture()
	ctx := context.Background()

	rma, err := svc.CreateReturn(ctx, "user-1", ReturnCreateInput{OrderID: "order-1", Type: domain.ReturnTypeReturn})
	require.NoError(t, err)

	_, _, err = svc.GetReturnForUser(ctx, "user-2", rma.ID)
	assert.Equal(t, "FORBIDDEN", apperrors.CodeOf(err))

	got, _, err := svc.GetReturnForUser(ctx, "user-1", rma.ID)
	require.NoError(t, err)
	assert.Equal(t, rma.ID, got.ID)

	byKey, _, err := svc.GetReturnByKey(ctx, rma.ExternalKey)
	require.NoError(t, err)
	assert.Equal(t, rma.ID, byKey.ID)

	_, _, err = svc.GetReturnForUser(ctx, "user-1", "missing")
	assert.Equal(t, "NOT_FOUND", apperrors.CodeOf(err))
}
