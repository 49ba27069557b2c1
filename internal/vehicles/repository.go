package vehicles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pitstop-erp/pitstop-erp/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for vehicles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const vehicleColumns = `id, customer_id, license_plate, make, model, COALESCE(year, 0), COALESCE(vin, ''), COALESCE(color, ''), COALESCE(notes, ''), created_at, updated_at`

func scanVehicle(row pgx.Row) (Vehicle, error) {
	var v Vehicle
	err := row.Scan(&v.ID, &v.CustomerID, &v.LicensePlate, &v.Make, &v.Model, &v.Year, &v.VIN, &v.Color, &v.Notes, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (r *Repository) List(ctx context.Context, filters ListFilters, limit, offset int) ([]Vehicle, int, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE is_deleted = FALSE`
	countQuery := `SELECT COUNT(*) FROM vehicles WHERE is_deleted = FALSE`
	args := []any{}

	if filters.CustomerID > 0 {
		args = append(args, filters.CustomerID)
		clause := fmt.Sprintf(" AND customer_id = $%d", len(args))
		query += clause
		countQuery += clause
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		clause := fmt.Sprintf(" AND (license_plate ILIKE $%d OR make ILIKE $%d OR model ILIKE $%d)", len(args), len(args), len(args))
		query += clause
		countQuery += clause
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY license_plate ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, 0, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, total, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (Vehicle, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1 AND is_deleted = FALSE`, id)
	v, err := scanVehicle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vehicle{}, httpx.ErrNotFound
	}
	return v, err
}

func (r *Repository) Create(ctx context.Context, input VehicleInput) (Vehicle, error) {
	query := `INSERT INTO vehicles (customer_id, license_plate, make, model, year, vin, color, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	v := Vehicle{
		CustomerID:   input.CustomerID,
		LicensePlate: input.LicensePlate,
		Make:         input.Make,
		Model:        input.Model,
		Year:         input.Year,
		VIN:          input.VIN,
		Color:        input.Color,
		Notes:        input.Notes,
	}
	err := r.pool.QueryRow(ctx, query,
		input.CustomerID, input.LicensePlate, input.Make, input.Model,
		input.Year, input.VIN, input.Color, input.Notes,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return Vehicle{}, mapVehicleConstraint(err)
	}
	return v, nil
}

func (r *Repository) Update(ctx context.Context, id int64, input VehicleInput) error {
	query := `UPDATE vehicles SET customer_id = $1, license_plate = $2, make = $3, model = $4,
		year = $5, vin = $6, color = $7, notes = $8, updated_at = NOW()
		WHERE id = $9 AND is_deleted = FALSE`
	tag, err := r.pool.Exec(ctx, query,
		input.CustomerID, input.LicensePlate, input.Make, input.Model,
		input.Year, input.VIN, input.Color, input.Notes, id)
	if err != nil {
		return mapVehicleConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE vehicles SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func mapVehicleConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			if strings.Contains(pgErr.ConstraintName, "license_plate") {
				return fmt.Errorf("%w: license plate already registered", httpx.ErrDuplicate)
			}
			return fmt.Errorf("%w: %s", httpx.ErrDuplicate, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: customer does not exist", httpx.ErrValidation)
		}
	}
	return err
}
