package service

import (
	"context"
	"time"

	"github.com/spec-kit/aftersale-service/internal/domain"
	"github.com/spec-kit/aftersale-service/internal/events"
	"github.com/spec-kit/aftersale-service/internal/repository"
)

// FeedbackService records post-resolution goodwill scores.
type FeedbackService struct {
	feedback   repository.FeedbackRepository
	dispatcher events.Dispatcher
}

// FeedbackInput describes a submitted score.
type FeedbackInput struct {
	OrderID  *string
	TicketID *string
	Score    int
	Comment  *string
}

// NewFeedbackService constructs the service.
func NewFeedbackService(feedback repository.FeedbackRepository, dispatcher events.Dispatcher) *FeedbackService {
	return &FeedbackService{feedback: feedback, dispatcher: dispatcher}
}

// Submit validates the score range and stores the feedback.
func (s *FeedbackService) Submit(ctx context.Context, actor Actor, input FeedbackInput) (*domain.Feedback, error) {
	record, err := domain.NewFeedback(actor.UserID, input.OrderID, input.TicketID, input.Score, input.Comment, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.feedback.Create(ctx, &record); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventFeedbackSubmitted,
		EntityID: record.ID,
		Actor:    actor.eventActor(),
		Payload:  events.FeedbackSubmittedPayload{Score: record.Score},
	})
	return &record, nil
}

// ListForUser returns a customer's feedback entries.
func (s *FeedbackService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Feedback, error) {
	return s.feedback.ListByUser(ctx, userID, limit, offset)
}
