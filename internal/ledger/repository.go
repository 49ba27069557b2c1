package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pitstop-erp/pitstop-erp/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for the ledger.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const transactionColumns = `id, transaction_number, transaction_type, source_type, reference_id, amount, COALESCE(description, ''), transaction_date, created_at`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.TransactionNumber, &t.TransactionType, &t.SourceType,
		&t.ReferenceID, &t.Amount, &t.Description, &t.TransactionDate, &t.CreatedAt)
	return t, err
}

func (r *Repository) Create(ctx context.Context, number string, input TransactionInput) (Transaction, error) {
	query := `INSERT INTO financial_transactions
		(transaction_number, transaction_type, source_type, reference_id, amount, description, transaction_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at`
	t := Transaction{
		TransactionNumber: number,
		TransactionType:   input.TransactionType,
		SourceType:        input.SourceType,
		ReferenceID:       input.ReferenceID,
		Amount:            input.Amount,
		Description:       input.Description,
		TransactionDate:   input.TransactionDate,
	}
	err := r.pool.QueryRow(ctx, query,
		number, string(input.TransactionType), string(input.SourceType),
		input.ReferenceID, input.Amount, input.Description, input.TransactionDate,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM financial_transactions WHERE id = $1 AND is_deleted = FALSE`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, httpx.ErrNotFound
	}
	return t, err
}

func (r *Repository) List(ctx context.Context, filters ListFilters, limit, offset int) ([]Transaction, int, error) {
	query := `SELECT ` + transactionColumns + ` FROM financial_transactions WHERE is_deleted = FALSE`
	countQuery := `SELECT COUNT(*) FROM financial_transactions WHERE is_deleted = FALSE`
	args := []any{}

	appendClause := func(clause string, value any) {
		args = append(args, value)
		rendered := fmt.Sprintf(clause, len(args))
		query += rendered
		countQuery += rendered
	}

	if filters.TransactionType != "" {
		appendClause(" AND transaction_type = $%d", string(filters.TransactionType))
	}
	if filters.SourceType != "" {
		appendClause(" AND source_type = $%d", string(filters.SourceType))
	}
	if filters.ReferenceID > 0 {
		appendClause(" AND reference_id = $%d", filters.ReferenceID)
	}
	if !filters.FromDate.IsZero() {
		appendClause(" AND transaction_date >= $%d", filters.FromDate)
	}
	if !filters.ToDate.IsZero() {
		appendClause(" AND transaction_date <= $%d", filters.ToDate)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY transaction_date DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, t)
	}
	return transactions, total, rows.Err()
}

// SoftDelete hides a transaction from every reader. There is no hard delete
// and no update path.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE financial_transactions SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// OrphanedReferences returns transactions whose referenced document no
// longer exists. Consumed by the nightly integrity job.
func (r *Repository) OrphanedReferences(ctx context.Context) ([]Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM financial_transactions ft
		WHERE ft.is_deleted = FALSE AND (
			(ft.source_type = 'Invoice' AND NOT EXISTS (SELECT 1 FROM invoices i WHERE i.id = ft.reference_id))
			OR (ft.source_type = 'PurchaseOrder' AND NOT EXISTS (SELECT 1 FROM purchase_orders po WHERE po.id = ft.reference_id))
			OR (ft.source_type = 'ServiceOrder' AND NOT EXISTS (SELECT 1 FROM service_orders so WHERE so.id = ft.reference_id))
		)
		ORDER BY ft.id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orphans []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		orphans = append(orphans, t)
	}
	return orphans, rows.Err()
}
