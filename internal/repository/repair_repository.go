package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/aftersale-service/internal/domain"
)

// RepairFilter captures listing parameters for repairs.
type RepairFilter struct {
	OrderLineID *string
	Statuses    []domain.RepairStatus
	Limit       int
	Offset      int
}

// RepairRepository encapsulates repair persistence.
type RepairRepository interface {
	Create(ctx context.Context, repair *domain.Repair) error
	Save(ctx context.Context, repair *domain.Repair) error
	GetByID(ctx context.Context, id string) (*domain.Repair, error)
	ListWithFilter(ctx context.Context, filter RepairFilter) ([]domain.Repair, error)
}

type repairRepository struct {
	pool *pgxpool.Pool
}

// NewRepairRepository instantiates repository.
func NewRepairRepository(pool *pgxpool.Pool) RepairRepository {
	return &repairRepository{pool: pool}
}

func (r *repairRepository) Create(ctx context.Context, repair *domain.Repair) error {
	const query = `
        INSERT INTO repairs (id, external_key, order_line_id, notes, status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.pool.Exec(ctx, query,
		repair.ID,
		repair.ExternalKey,
		repair.OrderLineID,
		repair.Notes,
		repair.Status,
		repair.CreatedAt,
		repair.UpdatedAt,
	)
	return err
}

func (r *repairRepository) Save(ctx context.Context, repair *domain.Repair) error {
	const query = `
        UPDATE repairs SET notes=$1, status=$2, updated_at=$3
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		repair.Notes,
		repair.Status,
		repair.UpdatedAt,
		repair.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repairRepository) GetByID(ctx context.Context, id string) (*domain.Repair, error) {
	const query = `
        SELECT id, external_key, order_line_id, notes, status, created_at, updated_at
        FROM repairs WHERE id=$1`

	var repair domain.Repair
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&repair.ID,
		&repair.ExternalKey,
		&repair.OrderLineID,
		&repair.Notes,
		&repair.Status,
		&repair.CreatedAt,
		&repair.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &repair, nil
}

func (r *repairRepository) ListWithFilter(ctx context.Context, filter RepairFilter) ([]domain.Repair, error) {
	base := `SELECT id, external_key, order_line_id, notes, status, created_at, updated_at
             FROM repairs`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OrderLineID != nil {
		args = append(args, *filter.OrderLineID)
		clauses = append(clauses, fmt.Sprintf("order_line_id=$%d", len(args)))
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

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Repair
	for rows.Next() {
		var repair domain.Repair
		if err := rows.Scan(
			&repair.ID,
			&repair.ExternalKey,
			&repair.OrderLineID,
			&repair.Notes,
			&repair.Status,
			&repair.CreatedAt,
			&repair.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, repair)
	}
	return result, rows.Err()
}
