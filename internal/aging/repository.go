package aging

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository provides PostgreSQL backed source fetches for the
// engine. Filters are pushed into the queries where they map to stored
// columns; the adapter re-applies them in process.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// FetchPurchaseOrders returns received, non-deleted purchase orders.
func (r *PostgresRepository) FetchPurchaseOrders(ctx context.Context, filter SourceFilter) ([]PurchaseOrderRecord, error) {
	query := `
		SELECT id, supplier_id, status, total_amount, order_date, received_date,
		       credit_days, payment_terms, order_number, COALESCE(notes, '')
		FROM purchase_orders
		WHERE is_deleted = FALSE AND status = 'Received' AND total_amount > 0`
	args := []any{}
	argNum := 1

	if filter.CounterpartyID > 0 {
		query += fmt.Sprintf(" AND supplier_id = $%d", argNum)
		args = append(args, filter.CounterpartyID)
		argNum++
	}
	if !filter.FromDate.IsZero() {
		query += fmt.Sprintf(" AND order_date >= $%d", argNum)
		args = append(args, filter.FromDate)
		argNum++
	}
	if !filter.ToDate.IsZero() {
		query += fmt.Sprintf(" AND order_date <= $%d", argNum)
		args = append(args, filter.ToDate)
		argNum++
	}
	query += " ORDER BY order_date DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []PurchaseOrderRecord
	for rows.Next() {
		var po PurchaseOrderRecord
		var received pgtype.Timestamptz
		var creditDays pgtype.Int4
		var terms pgtype.Text
		if err := rows.Scan(&po.ID, &po.SupplierID, &po.Status, &po.TotalAmount,
			&po.OrderDate, &received, &creditDays, &terms, &po.OrderNumber, &po.Notes); err != nil {
			return nil, err
		}
		if received.Valid {
			date := received.Time
			po.ReceivedDate = &date
		}
		if creditDays.Valid {
			days := int(creditDays.Int32)
			po.CreditDays = &days
		}
		po.PaymentTerms = terms.String
		orders = append(orders, po)
	}
	return orders, rows.Err()
}

// FetchInvoices returns open, non-cancelled invoices.
func (r *PostgresRepository) FetchInvoices(ctx context.Context, filter SourceFilter) ([]InvoiceRecord, error) {
	query := `
		SELECT id, invoice_number, customer_id, payment_status, status,
		       final_amount, paid_amount, issued_date, due_date, paid_date,
		       service_order_id, COALESCE(notes, '')
		FROM invoices
		WHERE is_deleted = FALSE AND status <> 'Cancelled'
		  AND payment_status IN ('Unpaid', 'Partial') AND final_amount > 0`
	args := []any{}
	argNum := 1

	if filter.CounterpartyID > 0 {
		query += fmt.Sprintf(" AND customer_id = $%d", argNum)
		args = append(args, filter.CounterpartyID)
		argNum++
	}
	if !filter.FromDate.IsZero() {
		query += fmt.Sprintf(" AND issued_date >= $%d", argNum)
		args = append(args, filter.FromDate)
		argNum++
	}
	if !filter.ToDate.IsZero() {
		query += fmt.Sprintf(" AND issued_date <= $%d", argNum)
		args = append(args, filter.ToDate)
		argNum++
	}
	query += " ORDER BY issued_date DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []InvoiceRecord
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func scanInvoice(rows pgx.Rows) (InvoiceRecord, error) {
	var inv InvoiceRecord
	var issued, due, paid pgtype.Timestamptz
	var serviceOrderID pgtype.Int8
	err := rows.Scan(&inv.ID, &inv.InvoiceNumber, &inv.CustomerID, &inv.PaymentStatus,
		&inv.Status, &inv.FinalAmount, &inv.PaidAmount, &issued, &due, &paid,
		&serviceOrderID, &inv.Notes)
	if err != nil {
		return InvoiceRecord{}, err
	}
	if issued.Valid {
		date := issued.Time
		inv.IssuedDate = &date
	}
	if due.Valid {
		date := due.Time
		inv.DueDate = &date
	}
	if paid.Valid {
		date := paid.Time
		inv.PaidDate = &date
	}
	if serviceOrderID.Valid {
		id := serviceOrderID.Int64
		inv.ServiceOrderID = &id
	}
	return inv, nil
}

// FetchServiceOrders returns open, non-cancelled service orders.
func (r *PostgresRepository) FetchServiceOrders(ctx context.Context, filter SourceFilter) ([]ServiceOrderRecord, error) {
	query := `
		SELECT id, order_number, customer_id, payment_status, status,
		       final_amount, amount_paid, order_date, COALESCE(notes, '')
		FROM service_orders
		WHERE is_deleted = FALSE AND status <> 'Cancelled'
		  AND payment_status IN ('Unpaid', 'Partial') AND final_amount > 0`
	args := []any{}
	argNum := 1

	if filter.CounterpartyID > 0 {
		query += fmt.Sprintf(" AND customer_id = $%d", argNum)
		args = append(args, filter.CounterpartyID)
		argNum++
	}
	if !filter.FromDate.IsZero() {
		query += fmt.Sprintf(" AND order_date >= $%d", argNum)
		args = append(args, filter.FromDate)
		argNum++
	}
	if !filter.ToDate.IsZero() {
		query += fmt.Sprintf(" AND order_date <= $%d", argNum)
		args = append(args, filter.ToDate)
		argNum++
	}
	query += " ORDER BY order_date DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []ServiceOrderRecord
	for rows.Next() {
		var so ServiceOrderRecord
		if err := rows.Scan(&so.ID, &so.OrderNumber, &so.CustomerID, &so.PaymentStatus,
			&so.Status, &so.FinalAmount, &so.AmountPaid, &so.OrderDate, &so.Notes); err != nil {
			return nil, err
		}
		orders = append(orders, so)
	}
	return orders, rows.Err()
}

// FetchClaimedServiceOrderIDs returns service order ids referenced by any
// non-cancelled invoice. Deliberately unfiltered: the claim holds regardless
// of the invoice's payment state or the caller's date range.
func (r *PostgresRepository) FetchClaimedServiceOrderIDs(ctx context.Context) ([]int64, error) {
	query := `
		SELECT DISTINCT service_order_id
		FROM invoices
		WHERE is_deleted = FALSE AND status <> 'Cancelled' AND service_order_id IS NOT NULL`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FetchLedgerEntries returns the non-deleted ledger rows for one side:
// Expense/PurchaseOrder for payables, Income/Invoice+ServiceOrder for
// receivables.
func (r *PostgresRepository) FetchLedgerEntries(ctx context.Context, side Side) ([]LedgerEntry, error) {
	query := `
		SELECT id, transaction_type, source_type, reference_id, amount, transaction_date
		FROM financial_transactions
		WHERE is_deleted = FALSE AND reference_id IS NOT NULL`
	var args []any
	if side == Payables {
		query += " AND transaction_type = 'Expense' AND source_type = $1"
		args = append(args, string(SourcePurchaseOrder))
	} else {
		query += " AND transaction_type = 'Income' AND source_type IN ($1, $2)"
		args = append(args, string(SourceInvoice), string(SourceServiceOrder))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var entry LedgerEntry
		if err := rows.Scan(&entry.ID, &entry.TransactionType, &entry.SourceType,
			&entry.ReferenceID, &entry.Amount, &entry.TransactionDate); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
