package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/aftersale-service/internal/domain"
)

// ReturnFilter captures listing parameters for return requests.
type ReturnFilter struct {
	UserID      *string
	OrderID     *string
	Statuses    []domain.ReturnStatus
	Types       []domain.ReturnType
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// ReturnRepository encapsulates RMA persistence.
type ReturnRepository interface {
	Create(ctx context.Context, rma *domain.ReturnRequest) error
	Save(ctx context.Context, rma *domain.ReturnRequest) error
	GetByID(ctx context.Context, id string) (*domain.ReturnRequest, error)
	GetByExternalKey(ctx context.Context, key string) (*domain.ReturnRequest, error)
	ListWithFilter(ctx context.Context, filter ReturnFilter) ([]domain.ReturnRequest, error)
	AddItem(ctx context.Context, item *domain.ReturnItem) error
	ListItems(ctx context.Context, returnID string) ([]domain.ReturnItem, error)
}

type returnRepository struct {
	pool *pgxpool.Pool
}

// NewReturnRepository instantiates repository.
func NewReturnRepository(pool *pgxpool.Pool) ReturnRepository {
	return &returnRepository{pool: pool}
}

func (r *returnRepository) Create(ctx context.Context, rma *domain.ReturnRequest) error {
	const query = `
        INSERT INTO return_requests (id, external_key, order_id, user_id, type, reason, status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.pool.Exec(ctx, query,
		rma.ID,
		rma.ExternalKey,
		rma.OrderID,
		rma.UserID,
		rma.Type,
		rma.Reason,
		rma.Status,
		rma.CreatedAt,
		rma.UpdatedAt,
	)
	return err
}

func (r *returnRepository) Save(ctx context.Context, rma *domain.ReturnRequest) error {
	const query = `
        UPDATE return_requests SET reason=$1, status=$2, updated_at=$3
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		rma.Reason,
		rma.Status,
		rma.UpdatedAt,
		rma.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *returnRepository) GetByID(ctx context.Context, id string) (*domain.ReturnRequest, error) {
	const query = `
        SELECT id, external_key, order_id, user_id, type, reason, status, created_at, updated_at
        FROM return_requests WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *returnRepository) GetByExternalKey(ctx context.Context, key string) (*domain.ReturnRequest, error) {
	const query = `
        SELECT id, external_key, order_id, user_id, type, reason, status, created_at, updated_at
        FROM return_requests WHERE external_key=$1`
	return r.fetchSingle(ctx, query, key)
}

func (r *returnRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.ReturnRequest, error) {
	var rma domain.ReturnRequest
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&rma.ID,
		&rma.ExternalKey,
		&rma.OrderID,
		&rma.UserID,
		&rma.Type,
		&rma.Reason,
		&rma.Status,
		&rma.CreatedAt,
		&rma.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rma, nil
}

func (r *returnRepository) ListWithFilter(ctx context.Context, filter ReturnFilter) ([]domain.ReturnRequest, error) {
	base := `SELECT id, external_key, order_id, user_id, type, reason, status, created_at, updated_at
             FROM return_requests`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.OrderID != nil {
		args = append(args, *filter.OrderID)
		clauses = append(clauses, fmt.Sprintf("order_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, rt := range filter.Types {
			args = append(args, rt)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("type IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ReturnRequest
	for rows.Next() {
		var rma domain.ReturnRequest
		if err := rows.Scan(
			&rma.ID,
			&rma.ExternalKey,
			&rma.OrderID,
			&rma.UserID,
			&rma.Type,
			&rma.Reason,
			&rma.Status,
			&rma.CreatedAt,
			&rma.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rma)
	}
	return result, rows.Err()
}

func (r *returnRepository) AddItem(ctx context.Context, item *domain.ReturnItem) error {
	const query = `
        INSERT INTO return_items (return_id, order_line_id, quantity, condition, disposition, fee_cents, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.pool.Exec(ctx, query,
		item.ReturnID,
		item.OrderLineID,
		item.Quantity,
		item.Condition,
		item.Disposition,
		item.FeeCents,
		item.CreatedAt,
	)
	return err
}

func (r *returnRepository) ListItems(ctx context.Context, returnID string) ([]domain.ReturnItem, error) {
	const query = `
        SELECT return_id, order_line_id, quantity, condition, disposition, fee_cents, created_at
        FROM return_items WHERE return_id=$1 ORDER BY order_line_id`
	rows, err := r.pool.Query(ctx, query, returnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ReturnItem
	for rows.Next() {
		var item domain.ReturnItem
		if err := rows.Scan(
			&item.ReturnID,
			&item.OrderLineID,
			&item.Quantity,
			&item.Condition,
			&item.Disposition,
			&item.FeeCents,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
