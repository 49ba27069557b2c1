package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pitstop-erp/pitstop-erp/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for appointments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const appointmentColumns = `id, customer_id, vehicle_id, scheduled_at, estimated_minutes, service_type, status, COALESCE(notes, ''), created_at, updated_at`

func scanAppointment(row pgx.Row) (Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.CustomerID, &a.VehicleID, &a.ScheduledAt, &a.EstimatedMins,
		&a.ServiceType, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *Repository) List(ctx context.Context, filters ListFilters, limit, offset int) ([]Appointment, int, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE is_deleted = FALSE`
	countQuery := `SELECT COUNT(*) FROM appointments WHERE is_deleted = FALSE`
	args := []any{}

	appendClause := func(clause string, value any) {
		args = append(args, value)
		rendered := fmt.Sprintf(clause, len(args))
		query += rendered
		countQuery += rendered
	}

	if filters.CustomerID > 0 {
		appendClause(" AND customer_id = $%d", filters.CustomerID)
	}
	if filters.VehicleID > 0 {
		appendClause(" AND vehicle_id = $%d", filters.VehicleID)
	}
	if filters.Status != "" {
		appendClause(" AND status = $%d", string(filters.Status))
	}
	if !filters.FromDate.IsZero() {
		appendClause(" AND scheduled_at >= $%d", filters.FromDate)
	}
	if !filters.ToDate.IsZero() {
		appendClause(" AND scheduled_at <= $%d", filters.ToDate)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY scheduled_at ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var appointments []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		appointments = append(appointments, a)
	}
	return appointments, total, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (Appointment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1 AND is_deleted = FALSE`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, httpx.ErrNotFound
	}
	return a, err
}

func (r *Repository) Create(ctx context.Context, input AppointmentInput) (Appointment, error) {
	query := `INSERT INTO appointments (customer_id, vehicle_id, scheduled_at, estimated_minutes, service_type, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	a := Appointment{
		CustomerID:    input.CustomerID,
		VehicleID:     input.VehicleID,
		ScheduledAt:   input.ScheduledAt,
		EstimatedMins: input.EstimatedMins,
		ServiceType:   input.ServiceType,
		Status:        StatusScheduled,
		Notes:         input.Notes,
	}
	err := r.pool.QueryRow(ctx, query,
		input.CustomerID, input.VehicleID, input.ScheduledAt, input.EstimatedMins,
		input.ServiceType, string(StatusScheduled), input.Notes,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Appointment{}, mapAppointmentConstraint(err)
	}
	return a, nil
}

func (r *Repository) Update(ctx context.Context, id int64, input AppointmentInput) error {
	query := `UPDATE appointments SET customer_id = $1, vehicle_id = $2, scheduled_at = $3,
		estimated_minutes = $4, service_type = $5, notes = $6, updated_at = NOW()
		WHERE id = $7 AND is_deleted = FALSE`
	tag, err := r.pool.Exec(ctx, query,
		input.CustomerID, input.VehicleID, input.ScheduledAt, input.EstimatedMins,
		input.ServiceType, input.Notes, id)
	if err != nil {
		return mapAppointmentConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// SetStatus moves the appointment only when the stored status still matches
// the expected one, so concurrent transitions cannot skip lifecycle steps.
func (r *Repository) SetStatus(ctx context.Context, id int64, from, to Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE appointments SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3 AND is_deleted = FALSE`, string(to), id, string(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE appointments SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// CountOverlapping counts open appointments whose window intersects the
// given one. Used for double-booking warnings.
func (r *Repository) CountOverlapping(ctx context.Context, vehicleID int64, start, end time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM appointments
		WHERE is_deleted = FALSE AND vehicle_id = $1
		  AND status IN ('Scheduled', 'Confirmed', 'InProgress')
		  AND scheduled_at < $3
		  AND scheduled_at + make_interval(mins => estimated_minutes) > $2`
	var count int
	err := r.pool.QueryRow(ctx, query, vehicleID, start, end).Scan(&count)
	return count, err
}

func mapAppointmentConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return fmt.Errorf("%w: customer or vehicle does not exist", httpx.ErrValidation)
	}
	return err
}
