package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

const (
	// FeedbackScoreMin and FeedbackScoreMax bound the goodwill score (closed range).
	FeedbackScoreMin = 0
	FeedbackScoreMax = 10
)

// Feedback captures a post-resolution goodwill score from a customer.
type Feedback struct {
	ID        string
	UserID    *string
	OrderID   *string
	TicketID  *string
	Score     int
	Comment   *string
	CreatedAt time.Time
}

// NewFeedback validates the score range and builds the record.
func NewFeedback(userID, orderID, ticketID *string, score int, comment *string, now time.Time) (Feedback, error) {
	if score < FeedbackScoreMin || score > FeedbackScoreMax {
		return Feedback{}, apperrors.NewValidationError("score must be between 0 and 10", map[string]any{"field": "score"})
	}
	return Feedback{
		ID:        uuid.NewString(),
		UserID:    userID,
		OrderID:   orderID,
		TicketID:  ticketID,
		Score:     score,
		Comment:   comment,
		CreatedAt: now,
	}, nil
}
