package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/aftersale-service/internal/domain"
)

// HistoryRepository records audit rows for state transitions.
type HistoryRepository interface {
	Record(ctx context.Context, entry *domain.ServiceHistory) error
	ListByEntity(ctx context.Context, entityType domain.HistoryEntityType, entityID string) ([]domain.ServiceHistory, error)
}

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository instantiates repository.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) Record(ctx context.Context, entry *domain.ServiceHistory) error {
	const query = `
        INSERT INTO service_history (id, entity_type, entity_id, changed_by_type, changed_by_id, old_value, new_value, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.EntityType,
		entry.EntityID,
		entry.ChangedByType,
		entry.ChangedByID,
		entry.OldValue,
		entry.NewValue,
		entry.CreatedAt,
	)
	return err
}

func (r *historyRepository) ListByEntity(ctx context.Context, entityType domain.HistoryEntityType, entityID string) ([]domain.ServiceHistory, error) {
	const query = `
        SELECT id, entity_type, entity_id, changed_by_type, changed_by_id, old_value, new_value, created_at
        FROM service_history WHERE entity_type=$1 AND entity_id=$2 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceHistory
	for rows.Next() {
		var entry domain.ServiceHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.EntityType,
			&entry.EntityID,
			&entry.ChangedByType,
			&entry.ChangedByID,
			&entry.OldValue,
			&entry.NewValue,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
