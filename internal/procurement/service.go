package procurement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pitstop-erp/pitstop-erp/internal/ledger"
	"github.com/pitstop-erp/pitstop-erp/internal/platform/httpx"
	"github.com/pitstop-erp/pitstop-erp/internal/shared"
)

// Store is the persistence surface the service needs. *Repository
// implements it.
type Store interface {
	List(ctx context.Context, filters ListFilters, limit, offset int) ([]PurchaseOrder, int, error)
	Get(ctx context.Context, id int64) (PurchaseOrder, error)
	Create(ctx context.Context, number string, input PurchaseOrderInput) (PurchaseOrder, error)
	Update(ctx context.Context, id int64, input PurchaseOrderInput) error
	SetStatus(ctx context.Context, id int64, status string) error
	MarkReceived(ctx context.Context, id int64, receivedDate time.Time) error
	Delete(ctx context.Context, id int64) error
}

// Recorder appends payments to the financial ledger. *ledger.Service
// implements it.
type Recorder interface {
	Record(ctx context.Context, input ledger.TransactionInput) (ledger.Transaction, error)
}

// Service owns procurement business rules.
type Service struct {
	repo     Store
	recorder Recorder
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs the procurement service.
func NewService(repo Store, recorder Recorder) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

func newOrderNumber() string {
	return "PO-" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *Service) List(ctx context.Context, filters ListFilters, page shared.PageRequest) (shared.PagedResponse[PurchaseOrder], error) {
	if !filters.FromDate.IsZero() && !filters.ToDate.IsZero() && filters.FromDate.After(filters.ToDate) {
		return shared.PagedResponse[PurchaseOrder]{}, shared.ErrInvalidDateRange
	}
	page = page.Clamp()
	orders, total, err := s.repo.List(ctx, filters, page.Size, page.Offset())
	if err != nil {
		return shared.PagedResponse[PurchaseOrder]{}, err
	}
	if orders == nil {
		orders = []PurchaseOrder{}
	}
	return shared.PagedResponse[PurchaseOrder]{Data: orders, TotalCount: total, PageNumber: page.Number, PageSize: page.Size}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input PurchaseOrderInput) (PurchaseOrder, error) {
	if err := s.validate.Struct(input); err != nil {
		return PurchaseOrder{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if input.OrderDate.IsZero() {
		input.OrderDate = s.now().UTC()
	}
	return s.repo.Create(ctx, newOrderNumber(), input)
}

func (s *Service) Update(ctx context.Context, id int64, input PurchaseOrderInput) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if input.OrderDate.IsZero() {
		input.OrderDate = s.now().UTC()
	}
	return s.repo.Update(ctx, id, input)
}

// MarkOrdered moves a pending order to Ordered.
func (s *Service) MarkOrdered(ctx context.Context, id int64) error {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if order.Status != StatusPending {
		return fmt.Errorf("%w: only pending orders can be marked ordered", httpx.ErrValidation)
	}
	return s.repo.SetStatus(ctx, id, StatusOrdered)
}

// MarkReceived stamps the received date, the anchor for payable due dates.
// A zero date defaults to now.
func (s *Service) MarkReceived(ctx context.Context, id int64, receivedDate time.Time) (PurchaseOrder, error) {
	if receivedDate.IsZero() {
		receivedDate = s.now().UTC()
	}
	if err := s.repo.MarkReceived(ctx, id, receivedDate); err != nil {
		return PurchaseOrder{}, err
	}
	return s.repo.Get(ctx, id)
}

// Cancel voids a not-yet-received order.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if order.Status == StatusReceived {
		return fmt.Errorf("%w: received orders cannot be cancelled", httpx.ErrValidation)
	}
	return s.repo.SetStatus(ctx, id, StatusCancelled)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Pay records a supplier payment through the ledger. Only received orders
// are payable; the aging engine picks the entry up on its next read.
func (s *Service) Pay(ctx context.Context, id int64, input PaymentInput) (ledger.Transaction, error) {
	if err := s.validate.Struct(input); err != nil {
		return ledger.Transaction{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if order.Status != StatusReceived {
		return ledger.Transaction{}, ErrNotPayable
	}

	date := input.PaymentDate
	if date.IsZero() {
		date = s.now().UTC()
	}
	return s.recorder.Record(ctx, ledger.TransactionInput{
		TransactionType: ledger.TypeExpense,
		SourceType:      ledger.SourcePurchaseOrder,
		ReferenceID:     id,
		Amount:          input.Amount,
		Description:     input.Description,
		TransactionDate: date,
	})
}
