package service

import (
	"context"
	"time"

	"github.com/spec-kit/aftersale-service/internal/domain"
	"github.com/spec-kit/aftersale-service/internal/events"
	"github.com/spec-kit/aftersale-service/internal/observability"
	"github.com/spec-kit/aftersale-service/internal/repository"
)

// RepairService coordinates the workshop workflow.
type RepairService struct {
	repairs    repository.RepairRepository
	history    repository.HistoryRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

// RepairDependencies bundles collaborators for the repair service.
type RepairDependencies struct {
	RepairRepo  repository.RepairRepository
	HistoryRepo repository.HistoryRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
}

// NewRepairService constructs the service.
func NewRepairService(deps RepairDependencies) *RepairService {
	return &RepairService{
		repairs:    deps.RepairRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
	}
}

// CreateRepair opens a repair in the pending state.
func (s *RepairService) CreateRepair(ctx context.Context, actor Actor, orderLineID, notes string) (*domain.Repair, error) {
	repair, err := domain.NewRepair(orderLineID, notes, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repairs.Create(ctx, &repair); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventRepairCreated,
		EntityID: repair.ID,
		Actor:    actor.eventActor(),
		Payload: events.RepairCreatedPayload{
			ExternalKey: repair.ExternalKey,
			OrderLineID: repair.OrderLineID,
		},
	})
	return &repair, nil
}

// GetRepair fetches a repair by id.
func (s *RepairService) GetRepair(ctx context.Context, id string) (*domain.Repair, error) {
	return s.repairs.GetByID(ctx, id)
}

// ListRepairs returns paginated repairs matching the filter.
func (s *RepairService) ListRepairs(ctx context.Context, filter repository.RepairFilter) ([]domain.Repair, error) {
	return s.repairs.ListWithFilter(ctx, filter)
}

// Start moves the repair onto the bench.
func (s *RepairService) Start(ctx context.Context, actor Actor, id string) (*domain.Repair, error) {
	return s.transition(ctx, actor, id, domain.Repair.Start)
}

// Complete finishes the repair successfully.
func (s *RepairService) Complete(ctx context.Context, actor Actor, id string) (*domain.Repair, error) {
	return s.transition(ctx, actor, id, domain.Repair.Complete)
}

// MarkFailed records an unrepairable item.
func (s *RepairService) MarkFailed(ctx context.Context, actor Actor, id string) (*domain.Repair, error) {
	return s.transition(ctx, actor, id, domain.Repair.MarkFailed)
}

// Cancel aborts the repair before completion.
func (s *RepairService) Cancel(ctx context.Context, actor Actor, id string) (*domain.Repair, error) {
	return s.transition(ctx, actor, id, domain.Repair.Cancel)
}

// UpdateNotes replaces the technician notes on an open repair.
func (s *RepairService) UpdateNotes(ctx context.Context, id, notes string) (*domain.Repair, error) {
	return s.mutateNotes(ctx, id, func(r domain.Repair, now time.Time) (domain.Repair, error) {
		return r.UpdateNotes(notes, now)
	})
}

// AppendNotes adds a line to the technician notes on an open repair.
func (s *RepairService) AppendNotes(ctx context.Context, id, notes string) (*domain.Repair, error) {
	return s.mutateNotes(ctx, id, func(r domain.Repair, now time.Time) (domain.Repair, error) {
		return r.AppendNotes(notes, now)
	})
}

// ListHistory returns the audit trail for one repair.
func (s *RepairService) ListHistory(ctx context.Context, id string) ([]domain.ServiceHistory, error) {
	return s.history.ListByEntity(ctx, domain.HistoryEntityRepair, id)
}

func (s *RepairService) mutateNotes(ctx context.Context, id string, op func(domain.Repair, time.Time) (domain.Repair, error)) (*domain.Repair, error) {
	repair, err := s.repairs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := op(*repair, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repairs.Save(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *RepairService) transition(ctx context.Context, actor Actor, id string, op func(domain.Repair, time.Time) (domain.Repair, error)) (*domain.Repair, error) {
	current, err := s.repairs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	next, err := op(*current, now)
	if err != nil {
		return nil, err
	}
	if err := s.repairs.Save(ctx, &next); err != nil {
		return nil, err
	}
	s.metrics.RecordTransition("repair", string(current.Status), string(next.Status))
	if err := recordHistory(ctx, s.history, domain.HistoryEntityRepair, next.ID, actor,
		statusValue(string(current.Status)), statusValue(string(next.Status)), now); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventRepairStatusChanged,
		EntityID: next.ID,
		Actor:    actor.eventActor(),
		Payload: events.RepairStatusChangedPayload{
			ExternalKey: next.ExternalKey,
			OldStatus:   current.Status,
			NewStatus:   next.Status,
		},
	})
	return &next, nil
}
