package workshop

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

// Repository provides PostgreSQL backed persistence for the workshop.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// --- Service orders ---

const orderColumns = `id, order_number, customer_id, vehicle_id, status, labor_cost, parts_cost, final_amount, amount_paid, payment_status, order_date, COALESCE(notes, ''), created_at, updated_at`

func scanOrder(row pgx.Row) (ServiceOrder, error) {
	var so ServiceOrder
	err := row.Scan(&so.ID, &so.OrderNumber, &so.CustomerID, &so.VehicleID, &so.Status,
		&so.LaborCost, &so.PartsCost, &so.FinalAmount, &so.AmountPaid, &so.PaymentStatus,
		&so.OrderDate, &so.Notes, &so.CreatedAt, &so.UpdatedAt)
	return so, err
}

func (r *Repository) ListOrders(ctx context.Context, filters OrderFilters, limit, offset int) ([]ServiceOrder, int, error) {
	query := `SELECT ` + orderColumns + ` FROM service_orders WHERE is_deleted = FALSE`
	countQuery := `SELECT COUNT(*) FROM service_orders WHERE is_deleted = FALSE`
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
		appendClause(" AND status = $%d", filters.Status)
	}
	if filters.PaymentStatus != "" {
		appendClause(" AND payment_status = $%d", string(filters.PaymentStatus))
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

	var orders []ServiceOrder
	for rows.Next() {
		so, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, so)
	}
	return orders, total, rows.Err()
}

func (r *Repository) GetOrder(ctx context.Context, id int64) (ServiceOrder, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM service_orders WHERE id = $1 AND is_deleted = FALSE`, id)
	so, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ServiceOrder{}, httpx.ErrNotFound
	}
	return so, err
}

func (r *Repository) CreateOrder(ctx context.Context, number string, input ServiceOrderInput) (ServiceOrder, error) {
	final := input.LaborCost + input.PartsCost
	query := `INSERT INTO service_orders
		(order_number, customer_id, vehicle_id, status, labor_cost, parts_cost, final_amount, amount_paid, payment_status, order_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9, $10, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	so := ServiceOrder{
		OrderNumber:   number,
		CustomerID:    input.CustomerID,
		VehicleID:     input.VehicleID,
		Status:        OrderStatusOpen,
		LaborCost:     input.LaborCost,
		PartsCost:     input.PartsCost,
		FinalAmount:   final,
		PaymentStatus: PaymentUnpaid,
		OrderDate:     input.OrderDate,
		Notes:         input.Notes,
	}
	err := r.pool.QueryRow(ctx, query,
		number, input.CustomerID, input.VehicleID, OrderStatusOpen,
		input.LaborCost, input.PartsCost, final, string(PaymentUnpaid),
		input.OrderDate, input.Notes,
	).Scan(&so.ID, &so.CreatedAt, &so.UpdatedAt)
	if err != nil {
		return ServiceOrder{}, mapWorkshopConstraint(err)
	}
	return so, nil
}

func (r *Repository) UpdateOrder(ctx context.Context, id int64, input ServiceOrderInput) error {
	final := input.LaborCost + input.PartsCost
	query := `UPDATE service_orders SET customer_id = $1, vehicle_id = $2, labor_cost = $3, parts_cost = $4,
		final_amount = $5, order_date = $6, notes = $7, updated_at = NOW()
		WHERE id = $8 AND is_deleted = FALSE AND status <> 'Cancelled'`
	tag, err := r.pool.Exec(ctx, query,
		input.CustomerID, input.VehicleID, input.LaborCost, input.PartsCost,
		final, input.OrderDate, input.Notes, id)
	if err != nil {
		return mapWorkshopConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *Repository) SetOrderStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE service_orders SET status = $1, updated_at = NOW() WHERE id = $2 AND is_deleted = FALSE`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// ApplyOrderPayment bumps paid amount and payment status in one statement.
func (r *Repository) ApplyOrderPayment(ctx context.Context, id int64, amount float64, status PaymentStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE service_orders SET amount_paid = amount_paid + $1, payment_status = $2, updated_at = NOW()
		WHERE id = $3 AND is_deleted = FALSE`, amount, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// --- Invoices ---

const invoiceColumns = `id, invoice_number, customer_id, service_order_id, status, final_amount, paid_amount, payment_status, issued_date, due_date, paid_date, COALESCE(notes, ''), created_at, updated_at`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	var serviceOrderID pgtype.Int8
	var dueDate, paidDate pgtype.Timestamptz
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.CustomerID, &serviceOrderID, &inv.Status,
		&inv.FinalAmount, &inv.PaidAmount, &inv.PaymentStatus, &inv.IssuedDate,
		&dueDate, &paidDate, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return Invoice{}, err
	}
	if serviceOrderID.Valid {
		id := serviceOrderID.Int64
		inv.ServiceOrderID = &id
	}
	if dueDate.Valid {
		date := dueDate.Time
		inv.DueDate = &date
	}
	if paidDate.Valid {
		date := paidDate.Time
		inv.PaidDate = &date
	}
	return inv, nil
}

func (r *Repository) ListInvoices(ctx context.Context, filters InvoiceFilters, limit, offset int) ([]Invoice, int, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE is_deleted = FALSE`
	countQuery := `SELECT COUNT(*) FROM invoices WHERE is_deleted = FALSE`
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
	if filters.Status != "" {
		appendClause(" AND status = $%d", filters.Status)
	}
	if filters.PaymentStatus != "" {
		appendClause(" AND payment_status = $%d", string(filters.PaymentStatus))
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY issued_date DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}

func (r *Repository) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 AND is_deleted = FALSE`, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, httpx.ErrNotFound
	}
	return inv, err
}

// CreateInvoice inserts an invoice. serviceOrderID nil means a standalone
// invoice; non-nil claims the service order, enforced by a partial unique
// index on (service_order_id) WHERE status <> 'Cancelled'.
func (r *Repository) CreateInvoice(ctx context.Context, number string, customerID int64, serviceOrderID *int64, finalAmount, paidAmount float64, status PaymentStatus, issued time.Time, due *time.Time, notes string) (Invoice, error) {
	query := `INSERT INTO invoices
		(invoice_number, customer_id, service_order_id, status, final_amount, paid_amount, payment_status, issued_date, due_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	var soID pgtype.Int8
	if serviceOrderID != nil {
		soID = pgtype.Int8{Int64: *serviceOrderID, Valid: true}
	}
	var dueDate pgtype.Timestamptz
	if due != nil {
		dueDate = pgtype.Timestamptz{Time: *due, Valid: true}
	}

	inv := Invoice{
		InvoiceNumber:  number,
		CustomerID:     customerID,
		ServiceOrderID: serviceOrderID,
		Status:         InvoiceStatusIssued,
		FinalAmount:    finalAmount,
		PaidAmount:     paidAmount,
		PaymentStatus:  status,
		IssuedDate:     issued,
		DueDate:        due,
		Notes:          notes,
	}
	err := r.pool.QueryRow(ctx, query,
		number, customerID, soID, InvoiceStatusIssued,
		finalAmount, paidAmount, string(status), issued, dueDate, notes,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return Invoice{}, mapWorkshopConstraint(err)
	}
	return inv, nil
}

// ApplyInvoicePayment bumps paid amount and payment status; the paid date is
// stamped once the invoice settles fully.
func (r *Repository) ApplyInvoicePayment(ctx context.Context, id int64, amount float64, status PaymentStatus, paidDate *time.Time) error {
	var paid pgtype.Timestamptz
	if paidDate != nil {
		paid = pgtype.Timestamptz{Time: *paidDate, Valid: true}
	}
	tag, err := r.pool.Exec(ctx, `UPDATE invoices SET paid_amount = paid_amount + $1, payment_status = $2,
		paid_date = COALESCE(paid_date, $3), updated_at = NOW()
		WHERE id = $4 AND is_deleted = FALSE`, amount, string(status), paid, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *Repository) CancelInvoice(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE invoices SET status = 'Cancelled', updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE AND status <> 'Cancelled'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// InvoiceExistsForOrder reports whether a non-cancelled invoice already
// claims the service order.
func (r *Repository) InvoiceExistsForOrder(ctx context.Context, serviceOrderID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices
		WHERE service_order_id = $1 AND status <> 'Cancelled' AND is_deleted = FALSE)`, serviceOrderID).Scan(&exists)
	return exists, err
}

func mapWorkshopConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", httpx.ErrDuplicate, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: referenced record does not exist", httpx.ErrValidation)
		}
	}
	return err
}
