package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pitstop-erp/pitstop-erp/internal/platform/httpx"
	"github.com/pitstop-erp/pitstop-erp/internal/shared"
)

// Store is the persistence surface the service needs. *Repository
// implements it.
type Store interface {
	Create(ctx context.Context, number string, input TransactionInput) (Transaction, error)
	Get(ctx context.Context, id int64) (Transaction, error)
	List(ctx context.Context, filters ListFilters, limit, offset int) ([]Transaction, int, error)
	SoftDelete(ctx context.Context, id int64) error
}

// Service owns ledger business rules.
type Service struct {
	repo     Store
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs the ledger service.
func NewService(repo Store) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// newTransactionNumber yields a number like TXN-9F3A2B1C.
func newTransactionNumber() string {
	return "TXN-" + strings.ToUpper(uuid.NewString()[:8])
}

// Record appends a transaction. The transaction date defaults to now; the
// income/expense direction must match the referenced document family.
func (s *Service) Record(ctx context.Context, input TransactionInput) (Transaction, error) {
	if err := s.validate.Struct(input); err != nil {
		return Transaction{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if err := checkDirection(input.TransactionType, input.SourceType); err != nil {
		return Transaction{}, err
	}
	if input.TransactionDate.IsZero() {
		input.TransactionDate = s.now().UTC()
	}
	return s.repo.Create(ctx, newTransactionNumber(), input)
}

// Income settles customer documents, expense settles supplier documents.
func checkDirection(transactionType TransactionType, sourceType SourceType) error {
	switch sourceType {
	case SourcePurchaseOrder:
		if transactionType != TypeExpense {
			return fmt.Errorf("%w: purchase order payments are Expense", httpx.ErrValidation)
		}
	case SourceInvoice, SourceServiceOrder:
		if transactionType != TypeIncome {
			return fmt.Errorf("%w: %s payments are Income", httpx.ErrValidation, sourceType)
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (Transaction, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters ListFilters, page shared.PageRequest) (shared.PagedResponse[Transaction], error) {
	if !filters.FromDate.IsZero() && !filters.ToDate.IsZero() && filters.FromDate.After(filters.ToDate) {
		return shared.PagedResponse[Transaction]{}, shared.ErrInvalidDateRange
	}
	page = page.Clamp()
	transactions, total, err := s.repo.List(ctx, filters, page.Size, page.Offset())
	if err != nil {
		return shared.PagedResponse[Transaction]{}, err
	}
	if transactions == nil {
		transactions = []Transaction{}
	}
	return shared.PagedResponse[Transaction]{Data: transactions, TotalCount: total, PageNumber: page.Number, PageSize: page.Size}, nil
}

// Void soft-deletes an entry. Reconciliation stops counting it immediately.
func (s *Service) Void(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}
