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

// ReturnService coordinates the RMA workflow.
type ReturnService struct {
	returns    repository.ReturnRepository
	history    repository.HistoryRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

// ReturnDependencies bundles collaborators for the return service.
type ReturnDependencies struct {
	ReturnRepo  repository.ReturnRepository
	HistoryRepo repository.HistoryRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
}

// ReturnItemInput describes one order line inside a new RMA.
type ReturnItemInput struct {
	OrderLineID string
	Quantity    int
	Condition   *domain.ItemCondition
	Disposition *domain.ItemDisposition
	FeeCents    *int64
}

// ReturnCreateInput describes RMA creation payload.
type ReturnCreateInput struct {
	OrderID string
	Type    domain.ReturnType
	Reason  *string
	Items   []ReturnItemInput
}

// NewReturnService constructs the service.
func NewReturnService(deps ReturnDependencies) *ReturnService {
	return &ReturnService{
		returns:    deps.ReturnRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
	}
}

// CreateReturn opens an RMA in the eligibility state and attaches its items.
func (s *ReturnService) CreateReturn(ctx context.Context, userID string, input ReturnCreateInput) (*domain.ReturnRequest, error) {
	now := time.Now()
	rma, err := domain.NewReturnRequest(input.OrderID, userID, input.Type, input.Reason, now)
	if err != nil {
		return nil, err
	}
	items := make([]domain.ReturnItem, 0, len(input.Items))
	for _, in := range input.Items {
		item, err := domain.NewReturnItem(rma.ID, in.OrderLineID, in.Quantity, in.Condition, in.Disposition, in.FeeCents, now)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := s.returns.Create(ctx, &rma); err != nil {
		return nil, err
	}
	for i := range items {
		if err := s.returns.AddItem(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventReturnCreated,
		EntityID: rma.ID,
		Actor:    CustomerActor(userID).eventActor(),
		Payload: events.ReturnCreatedPayload{
			ExternalKey: rma.ExternalKey,
			OrderID:     rma.OrderID,
			Type:        rma.Type,
			ItemCount:   len(items),
		},
	})
	return &rma, nil
}

// GetReturn fetches an RMA with its items.
func (s *ReturnService) GetReturn(ctx context.Context, id string) (*domain.ReturnRequest, []domain.ReturnItem, error) {
	rma, err := s.returns.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.returns.ListItems(ctx, rma.ID)
	if err != nil {
		return nil, nil, err
	}
	return rma, items, nil
}

// GetReturnForUser fetches an RMA ensuring ownership.
func (s *ReturnService) GetReturnForUser(ctx context.Context, userID, id string) (*domain.ReturnRequest, []domain.ReturnItem, error) {
	rma, items, err := s.GetReturn(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if rma.UserID != userID {
		return nil, nil, apperrors.NewForbidden("return request belongs to another customer")
	}
	return rma, items, nil
}

// GetReturnByKey resolves an RMA by its external key.
func (s *ReturnService) GetReturnByKey(ctx context.Context, key string) (*domain.ReturnRequest, []domain.ReturnItem, error) {
	rma, err := s.returns.GetByExternalKey(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.returns.ListItems(ctx, rma.ID)
	if err != nil {
		return nil, nil, err
	}
	return rma, items, nil
}

// ListReturns returns paginated RMAs matching the filter.
func (s *ReturnService) ListReturns(ctx context.Context, filter repository.ReturnFilter) ([]domain.ReturnRequest, error) {
	return s.returns.ListWithFilter(ctx, filter)
}

// AddItem attaches another order line to an open RMA.
func (s *ReturnService) AddItem(ctx context.Context, returnID string, input ReturnItemInput) (*domain.ReturnItem, error) {
	rma, err := s.returns.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if rma.Finalized() {
		return nil, apperrors.NewFinalized("return request", "items", string(rma.Status))
	}
	item, err := domain.NewReturnItem(rma.ID, input.OrderLineID, input.Quantity, input.Condition, input.Disposition, input.FeeCents, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.returns.AddItem(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Approve moves the RMA from eligibility to approved.
func (s *ReturnService) Approve(ctx context.Context, actor Actor, id string) (*domain.ReturnRequest, error) {
	return s.transition(ctx, actor, id, domain.ReturnRequest.Approve)
}

// Reject finalizes the RMA as rejected from any non-terminal state.
func (s *ReturnService) Reject(ctx context.Context, actor Actor, id string) (*domain.ReturnRequest, error) {
	return s.transition(ctx, actor, id, domain.ReturnRequest.Reject)
}

// MarkInTransit records that the customer shipped the items back.
func (s *ReturnService) MarkInTransit(ctx context.Context, actor Actor, id string) (*domain.ReturnRequest, error) {
	return s.transition(ctx, actor, id, domain.ReturnRequest.MarkInTransit)
}

// MarkReceived records warehouse receipt.
func (s *ReturnService) MarkReceived(ctx context.Context, actor Actor, id string) (*domain.ReturnRequest, error) {
	return s.transition(ctx, actor, id, domain.ReturnRequest.MarkReceived)
}

// MarkRefunded settles the RMA.
func (s *ReturnService) MarkRefunded(ctx context.Context, actor Actor, id string) (*domain.ReturnRequest, error) {
	return s.transition(ctx, actor, id, domain.ReturnRequest.MarkRefunded)
}

// UpdateReason replaces the free-text reason on an open RMA.
func (s *ReturnService) UpdateReason(ctx context.Context, actor Actor, id, reason string) (*domain.ReturnRequest, error) {
	rma, err := s.returns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := rma.UpdateReason(reason, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.returns.Save(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// ListHistory returns the audit trail for one RMA.
func (s *ReturnService) ListHistory(ctx context.Context, id string) ([]domain.ServiceHistory, error) {
	return s.history.ListByEntity(ctx, domain.HistoryEntityReturn, id)
}

func (s *ReturnService) transition(ctx context.Context, actor Actor, id string, op func(domain.ReturnRequest, time.Time) (domain.ReturnRequest, error)) (*domain.ReturnRequest, error) {
	current, err := s.returns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	next, err := op(*current, now)
	if err != nil {
		return nil, err
	}
	if err := s.returns.Save(ctx, &next); err != nil {
		return nil, err
	}
	s.metrics.RecordTransition("return", string(current.Status), string(next.Status))
	if err := recordHistory(ctx, s.history, domain.HistoryEntityReturn, next.ID, actor,
		statusValue(string(current.Status)), statusValue(string(next.Status)), now); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventReturnStatusChanged,
		EntityID: next.ID,
		Actor:    actor.eventActor(),
		Payload: events.ReturnStatusChangedPayload{
			ExternalKey: next.ExternalKey,
			OldStatus:   current.Status,
			NewStatus:   next.Status,
		},
	})
	return &next, nil
}
