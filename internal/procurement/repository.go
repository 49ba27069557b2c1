package procurement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pitstop-erp/pitstop-erp/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for purchase orders.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `id, order_number, supplier_id, status, total_amount, order_date, received_date, credit_days, COALESCE(payment_terms, ''), COALESCE(notes, ''), created_at, updated_at`

func scanOrder(row pgx.Row) (PurchaseOrder, error) {
	var po PurchaseOrder
	var received pgtype.Timestamptz
	var creditDays pgtype.Int4
	err := row.Scan(&po.ID, &po.OrderNumber, &po.SupplierID, &po.Status, &po.TotalAmount,
		&po.OrderDate, &received, &creditDays, &po.PaymentTerms, &po.Notes, &po.CreatedAt, &po.UpdatedAt)
	if err != nil {
		return PurchaseOrder{}, err
	}
	if received.Valid {
		date := received.Time
		po.ReceivedDate = &date
	}
	if creditDays.Valid {
		days := int(creditDays.Int32)
		po.CreditDays = &days
	}
	return po, nil
}

func (r *Repository) List(ctx context.Context, filters ListFilters, limit, offset int) ([]PurchaseOrder, int, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders WHERE is_deleted = FALSE`
	countQuery := `SELECT COUNT(*) FROM purchase_orders WHERE is_deleted = FALSE`
	args := []any{}

	appendClause := func(clause string, value any) {
		args = append(args, value)
		rendered := fmt.Sprintf(clause, len(args))
		query += rendered
		countQuery += rendered
	}

	if filters.SupplierID > 0 {
		appendClause(" AND supplier_id = $%d", filters.SupplierID)
	}
	if filters.Status != "" {
		appendClause(" AND status = $%d", filters.Status)
	}
	if !filters.FromDate.IsZero() {
		appendClause(" AND order_date >= $%d", filters.FromDate)
	}
	if !filters.ToDate.IsZero() {
		appendClause(" AND order_date <= $%d", filters.ToDate)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY order_date DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []PurchaseOrder
	for rows.Next() {
		po, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, po)
	}
	return orders, total, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1 AND is_deleted = FALSE`, id)
	po, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return PurchaseOrder{}, httpx.ErrNotFound
	}
	return po, err
}

func (r *Repository) Create(ctx context.Context, number string, input PurchaseOrderInput) (PurchaseOrder, error) {
	query := `INSERT INTO purchase_orders
		(order_number, supplier_id, status, total_amount, order_date, credit_days, payment_terms, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	var creditDays pgtype.Int4
	if input.CreditDays != nil {
		creditDays = pgtype.Int4{Int32: int32(*input.CreditDays), Valid: true}
	}

	po := PurchaseOrder{
		OrderNumber:  number,
		SupplierID:   input.SupplierID,
		Status:       StatusPending,
		TotalAmount:  input.TotalAmount,
		OrderDate:    input.OrderDate,
		CreditDays:   input.CreditDays,
		PaymentTerms: input.PaymentTerms,
		Notes:        input.Notes,
	}
	err := r.pool.QueryRow(ctx, query,
		number, input.SupplierID, StatusPending, input.TotalAmount,
		input.OrderDate, creditDays, input.PaymentTerms, input.Notes,
	).Scan(&po.ID, &po.CreatedAt, &po.UpdatedAt)
	if err != nil {
		return PurchaseOrder{}, mapProcurementConstraint(err)
	}
	return po, nil
}

func (r *Repository) Update(ctx context.Context, id int64, input PurchaseOrderInput) error {
	var creditDays pgtype.Int4
	if input.CreditDays != nil {
		creditDays = pgtype.Int4{Int32: int32(*input.CreditDays), Valid: true}
	}
	query := `UPDATE purchase_orders SET supplier_id = $1, total_amount = $2, order_date = $3,
		credit_days = $4, payment_terms = $5, notes = $6, updated_at = NOW()
		WHERE id = $7 AND is_deleted = FALSE AND status IN ('Pending', 'Ordered')`
	tag, err := r.pool.Exec(ctx, query,
		input.SupplierID, input.TotalAmount, input.OrderDate,
		creditDays, input.PaymentTerms, input.Notes, id)
	if err != nil {
		return mapProcurementConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *Repository) SetStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE purchase_orders SET status = $1, updated_at = NOW() WHERE id = $2 AND is_deleted = FALSE`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// MarkReceived stamps the received date and flips the status in one
// statement; only Pending or Ordered orders qualify.
func (r *Repository) MarkReceived(ctx context.Context, id int64, receivedDate time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE purchase_orders SET status = $1, received_date = $2, updated_at = NOW()
		WHERE id = $3 AND is_deleted = FALSE AND status IN ('Pending', 'Ordered')`,
		StatusReceived, receivedDate, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotReceivable
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE purchase_orders SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func mapProcurementConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", httpx.ErrDuplicate, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: supplier does not exist", httpx.ErrValidation)
		}
	}
	return err
}
