package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/aftersale-service/internal/domain"
)

// ChatFilter captures listing parameters for chat sessions.
type ChatFilter struct {
	UserID   *string
	AgentID  *string
	Statuses []domain.ChatStatus
	Limit    int
	Offset   int
}

// ChatRepository encapsulates chat-session persistence.
type ChatRepository interface {
	Create(ctx context.Context, session *domain.ChatSession) error
	Save(ctx context.Context, session *domain.ChatSession) error
	GetByID(ctx context.Context, id string) (*domain.ChatSession, error)
	ListWithFilter(ctx context.Context, filter ChatFilter) ([]domain.ChatSession, error)
}

type chatRepository struct {
	pool *pgxpool.Pool
}

// NewChatRepository instantiates repository.
func NewChatRepository(pool *pgxpool.Pool) ChatRepository {
	return &chatRepository{pool: pool}
}

func (r *chatRepository) Create(ctx context.Context, session *domain.ChatSession) error {
	const query = `
        INSERT INTO chat_sessions (id, user_id, agent_id, topic, priority, status, started_at, ended_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.AgentID,
		session.Topic,
		session.Priority,
		session.Status,
		session.StartedAt,
		session.EndedAt,
	)
	return err
}

func (r *chatRepository) Save(ctx context.Context, session *domain.ChatSession) error {
	const query = `
        UPDATE chat_sessions SET agent_id=$1, topic=$2, priority=$3, status=$4, ended_at=$5
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		session.AgentID,
		session.Topic,
		session.Priority,
		session.Status,
		session.EndedAt,
		session.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *chatRepository) GetByID(ctx context.Context, id string) (*domain.ChatSession, error) {
	const query = `
        SELECT id, user_id, agent_id, topic, priority, status, started_at, ended_at
        FROM chat_sessions WHERE id=$1`

	var session domain.ChatSession
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.AgentID,
		&session.Topic,
		&session.Priority,
		&session.Status,
		&session.StartedAt,
		&session.EndedAt,
	); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *chatRepository) ListWithFilter(ctx context.Context, filter ChatFilter) ([]domain.ChatSession, error) {
	base := `SELECT id, user_id, agent_id, topic, priority, status, started_at, ended_at
             FROM chat_sessions`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.AgentID != nil {
		args = append(args, *filter.AgentID)
		clauses = append(clauses, fmt.Sprintf("agent_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY started_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ChatSession
	for rows.Next() {
		var session domain.ChatSession
		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.AgentID,
			&session.Topic,
			&session.Priority,
			&session.Status,
			&session.StartedAt,
			&session.EndedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, session)
	}
	return result, rows.Err()
}
