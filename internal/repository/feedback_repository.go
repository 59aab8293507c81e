package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/aftersale-service/internal/domain"
)

// FeedbackRepository encapsulates feedback persistence.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Feedback, error)
}

type feedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository instantiates repository.
func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepository{pool: pool}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        INSERT INTO feedback (id, user_id, order_id, ticket_id, score, comment, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.pool.Exec(ctx, query,
		feedback.ID,
		feedback.UserID,
		feedback.OrderID,
		feedback.TicketID,
		feedback.Score,
		feedback.Comment,
		feedback.CreatedAt,
	)
	return err
}

func (r *feedbackRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Feedback, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, user_id, order_id, ticket_id, score, comment, created_at
        FROM feedback WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Feedback
	for rows.Next() {
		var feedback domain.Feedback
		if err := rows.Scan(
			&feedback.ID,
			&feedback.UserID,
			&feedback.OrderID,
			&feedback.TicketID,
			&feedback.Score,
			&feedback.Comment,
			&feedback.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, feedback)
	}
	return result, rows.Err()
}
