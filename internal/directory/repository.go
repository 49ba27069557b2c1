package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pitstop-erp/pitstop-erp/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for the directory.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const uniqueViolation = "23505"

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", httpx.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

// --- Customers ---

func (r *Repository) ListCustomers(ctx context.Context, filters ListFilters, limit, offset int) ([]Customer, int, error) {
	query := `SELECT id, name, phone, COALESCE(email, ''), COALESCE(address, ''), COALESCE(notes, ''), created_at, updated_at
		FROM customers WHERE is_deleted = FALSE`
	countQuery := `SELECT COUNT(*) FROM customers WHERE is_deleted = FALSE`
	args := []any{}

	if filters.Search != "" {
		query += ` AND (name ILIKE $1 OR phone ILIKE $1)`
		countQuery += ` AND (name ILIKE $1 OR phone ILIKE $1)`
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY name ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	return customers, total, rows.Err()
}

func (r *Repository) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	query := `SELECT id, name, phone, COALESCE(email, ''), COALESCE(address, ''), COALESCE(notes, ''), created_at, updated_at
		FROM customers WHERE id = $1 AND is_deleted = FALSE`
	var c Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, httpx.ErrNotFound
	}
	return c, err
}

func (r *Repository) CreateCustomer(ctx context.Context, input CustomerInput) (Customer, error) {
	query := `INSERT INTO customers (name, phone, email, address, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	c := Customer{Name: input.Name, Phone: input.Phone, Email: input.Email, Address: input.Address, Notes: input.Notes}
	err := r.pool.QueryRow(ctx, query, input.Name, input.Phone, input.Email, input.Address, input.Notes).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Customer{}, mapConstraint(err)
	}
	return c, nil
}

func (r *Repository) UpdateCustomer(ctx context.Context, id int64, input CustomerInput) error {
	query := `UPDATE customers SET name = $1, phone = $2, email = $3, address = $4, notes = $5, updated_at = NOW()
		WHERE id = $6 AND is_deleted = FALSE`
	tag, err := r.pool.Exec(ctx, query, input.Name, input.Phone, input.Email, input.Address, input.Notes, id)
	if err != nil {
		return mapConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteCustomer(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE customers SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// --- Suppliers ---

func (r *Repository) ListSuppliers(ctx context.Context, filters ListFilters, limit, offset int) ([]Supplier, int, error) {
	query := `SELECT id, name, COALESCE(contact_person, ''), phone, COALESCE(email, ''), COALESCE(address, ''), COALESCE(payment_terms, ''), created_at, updated_at
		FROM suppliers WHERE is_deleted = FALSE`
	countQuery := `SELECT COUNT(*) FROM suppliers WHERE is_deleted = FALSE`
	args := []any{}

	if filters.Search != "" {
		query += ` AND (name ILIKE $1 OR phone ILIKE $1)`
		countQuery += ` AND (name ILIKE $1 OR phone ILIKE $1)`
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY name ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Phone, &s.Email, &s.Address, &s.PaymentTerms, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, total, rows.Err()
}

func (r *Repository) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	query := `SELECT id, name, COALESCE(contact_person, ''), phone, COALESCE(email, ''), COALESCE(address, ''), COALESCE(payment_terms, ''), created_at, updated_at
		FROM suppliers WHERE id = $1 AND is_deleted = FALSE`
	var s Supplier
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Phone, &s.Email, &s.Address, &s.PaymentTerms, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, httpx.ErrNotFound
	}
	return s, err
}

func (r *Repository) CreateSupplier(ctx context.Context, input SupplierInput) (Supplier, error) {
	query := `INSERT INTO suppliers (name, contact_person, phone, email, address, payment_terms, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	s := Supplier{Name: input.Name, ContactPerson: input.ContactPerson, Phone: input.Phone, Email: input.Email, Address: input.Address, PaymentTerms: input.PaymentTerms}
	err := r.pool.QueryRow(ctx, query, input.Name, input.ContactPerson, input.Phone, input.Email, input.Address, input.PaymentTerms).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Supplier{}, mapConstraint(err)
	}
	return s, nil
}

func (r *Repository) UpdateSupplier(ctx context.Context, id int64, input SupplierInput) error {
	query := `UPDATE suppliers SET name = $1, contact_person = $2, phone = $3, email = $4, address = $5, payment_terms = $6, updated_at = NOW()
		WHERE id = $7 AND is_deleted = FALSE`
	tag, err := r.pool.Exec(ctx, query, input.Name, input.ContactPerson, input.Phone, input.Email, input.Address, input.PaymentTerms, id)
	if err != nil {
		return mapConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteSupplier(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE suppliers SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// FetchContacts returns the contact tuples for a batch of ids from one
// registry table. Used by the aging lookup adapter.
func (r *Repository) FetchContacts(ctx context.Context, table string, ids []int64) (map[int64]Contact, error) {
	if len(ids) == 0 {
		return map[int64]Contact{}, nil
	}
	var query string
	switch table {
	case "customers":
		query = `SELECT id, name, phone, COALESCE(email, '') FROM customers WHERE id = ANY($1)`
	case "suppliers":
		query = `SELECT id, name, phone, COALESCE(email, '') FROM suppliers WHERE id = ANY($1)`
	default:
		return nil, fmt.Errorf("directory: unknown registry %q", table)
	}

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make(map[int64]Contact, len(ids))
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email); err != nil {
			return nil, err
		}
		contacts[c.ID] = c
	}
	return contacts, rows.Err()
}
