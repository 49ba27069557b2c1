package parts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pitstop-erp/pitstop-erp/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for parts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const partColumns = `id, part_number, name, COALESCE(description, ''), COALESCE(category, ''), unit_price, cost_price, stock_quantity, minimum_stock, created_at, updated_at`

func scanPart(row pgx.Row) (Part, error) {
	var p Part
	err := row.Scan(&p.ID, &p.PartNumber, &p.Name, &p.Description, &p.Category,
		&p.UnitPrice, &p.CostPrice, &p.StockQuantity, &p.MinimumStock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *Repository) List(ctx context.Context, filters ListFilters, limit, offset int) ([]Part, int, error) {
	query := `SELECT ` + partColumns + ` FROM parts WHERE is_deleted = FALSE`
	countQuery := `SELECT COUNT(*) FROM parts WHERE is_deleted = FALSE`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		clause := fmt.Sprintf(" AND (part_number ILIKE $%d OR name ILIKE $%d)", len(args), len(args))
		query += clause
		countQuery += clause
	}
	if filters.Category != "" {
		args = append(args, filters.Category)
		clause := fmt.Sprintf(" AND category = $%d", len(args))
		query += clause
		countQuery += clause
	}
	if filters.LowStock {
		clause := " AND stock_quantity <= minimum_stock"
		query += clause
		countQuery += clause
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY part_number ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var parts []Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, 0, err
		}
		parts = append(parts, p)
	}
	return parts, total, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (Part, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+partColumns+` FROM parts WHERE id = $1 AND is_deleted = FALSE`, id)
	p, err := scanPart(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Part{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *Repository) Create(ctx context.Context, input PartInput) (Part, error) {
	query := `INSERT INTO parts (part_number, name, description, category, unit_price, cost_price, stock_quantity, minimum_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	p := Part{
		PartNumber:    input.PartNumber,
		Name:          input.Name,
		Description:   input.Description,
		Category:      input.Category,
		UnitPrice:     input.UnitPrice,
		CostPrice:     input.CostPrice,
		StockQuantity: input.StockQuantity,
		MinimumStock:  input.MinimumStock,
	}
	err := r.pool.QueryRow(ctx, query,
		input.PartNumber, input.Name, input.Description, input.Category,
		input.UnitPrice, input.CostPrice, input.StockQuantity, input.MinimumStock,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Part{}, mapPartConstraint(err)
	}
	return p, nil
}

func (r *Repository) Update(ctx context.Context, id int64, input PartInput) error {
	query := `UPDATE parts SET part_number = $1, name = $2, description = $3, category = $4,
		unit_price = $5, cost_price = $6, stock_quantity = $7, minimum_stock = $8, updated_at = NOW()
		WHERE id = $9 AND is_deleted = FALSE`
	tag, err := r.pool.Exec(ctx, query,
		input.PartNumber, input.Name, input.Description, input.Category,
		input.UnitPrice, input.CostPrice, input.StockQuantity, input.MinimumStock, id)
	if err != nil {
		return mapPartConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE parts SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// AdjustStock applies a signed delta atomically. The stock_quantity >= 0
// guard in the statement makes oversell a no-op we can detect.
func (r *Repository) AdjustStock(ctx context.Context, id int64, delta int, reason string) (Part, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Part{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `UPDATE parts SET stock_quantity = stock_quantity + $1, updated_at = NOW()
		WHERE id = $2 AND is_deleted = FALSE AND stock_quantity + $1 >= 0
		RETURNING `+partColumns, delta, id)
	p, err := scanPart(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the part is missing or the deduction would go negative.
		var exists bool
		if checkErr := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM parts WHERE id = $1 AND is_deleted = FALSE)`, id).Scan(&exists); checkErr != nil {
			return Part{}, checkErr
		}
		if !exists {
			return Part{}, httpx.ErrNotFound
		}
		return Part{}, ErrInsufficientStock
	}
	if err != nil {
		return Part{}, err
	}

	_, err = tx.Exec(ctx, `INSERT INTO stock_movements (part_id, delta, reason, created_at) VALUES ($1, $2, $3, NOW())`,
		id, delta, reason)
	if err != nil {
		return Part{}, err
	}
	return p, tx.Commit(ctx)
}

func mapPartConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: part number already exists", httpx.ErrDuplicate)
	}
	return err
}
