package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/aftersale-service/internal/domain"
	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

// exclusionViolation is the SQLSTATE raised when the appointments_no_overlap
// constraint rejects an insert or update.
const exclusionViolation = "23P01"

// AppointmentRepository encapsulates appointment persistence. Create and Save
// translate exclusion-constraint violations into booking conflicts, closing
// the check-then-insert race at the storage boundary.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	Save(ctx context.Context, appt *domain.Appointment) error
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	ListActiveByUser(ctx context.Context, userID string, from, to time.Time) ([]domain.Appointment, error)
	Delete(ctx context.Context, id string) error
}

type appointmentRepository struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepository instantiates repository.
func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

func (r *appointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        INSERT INTO appointments (id, user_id, type, location_id, starts_at, ends_at, notes, status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.pool.Exec(ctx, query,
		appt.ID,
		appt.UserID,
		appt.Type,
		appt.LocationID,
		appt.StartsAt,
		appt.EndsAt,
		appt.Notes,
		appt.Status,
		appt.CreatedAt,
		appt.UpdatedAt,
	)
	return mapBookingError(err, appt.UserID)
}

func (r *appointmentRepository) Save(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        UPDATE appointments SET location_id=$1, starts_at=$2, ends_at=$3, notes=$4, status=$5, updated_at=$6
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		appt.LocationID,
		appt.StartsAt,
		appt.EndsAt,
		appt.Notes,
		appt.Status,
		appt.UpdatedAt,
		appt.ID,
	)
	if err != nil {
		return mapBookingError(err, appt.UserID)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	const query = `
        SELECT id, user_id, type, location_id, starts_at, ends_at, notes, status, created_at, updated_at
        FROM appointments WHERE id=$1`

	var appt domain.Appointment
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&appt.ID,
		&appt.UserID,
		&appt.Type,
		&appt.LocationID,
		&appt.StartsAt,
		&appt.EndsAt,
		&appt.Notes,
		&appt.Status,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &appt, nil
}

// ListActiveByUser returns the non-cancelled appointments for a subject whose
// intervals intersect [from, to). This is the candidate set for the
// conflict checker.
func (r *appointmentRepository) ListActiveByUser(ctx context.Context, userID string, from, to time.Time) ([]domain.Appointment, error) {
	const query = `
        SELECT id, user_id, type, location_id, starts_at, ends_at, notes, status, created_at, updated_at
        FROM appointments
        WHERE user_id=$1 AND status <> $2 AND starts_at < $4 AND ends_at > $3
        ORDER BY starts_at ASC`
	rows, err := r.pool.Query(ctx, query, userID, domain.AppointmentStatusCancelled, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Appointment
	for rows.Next() {
		var appt domain.Appointment
		if err := rows.Scan(
			&appt.ID,
			&appt.UserID,
			&appt.Type,
			&appt.LocationID,
			&appt.StartsAt,
			&appt.EndsAt,
			&appt.Notes,
			&appt.Status,
			&appt.CreatedAt,
			&appt.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, appt)
	}
	return result, rows.Err()
}

// Delete removes an appointment unconditionally.
func (r *appointmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func mapBookingError(err error, userID string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		return apperrors.NewBookingConflict(map[string]any{"user_id": userID})
	}
	return err
}
