package workshop

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
	ListOrders(ctx context.Context, filters OrderFilters, limit, offset int) ([]ServiceOrder, int, error)
	GetOrder(ctx context.Context, id int64) (ServiceOrder, error)
	CreateOrder(ctx context.Context, number string, input ServiceOrderInput) (ServiceOrder, error)
	UpdateOrder(ctx context.Context, id int64, input ServiceOrderInput) error
	SetOrderStatus(ctx context.Context, id int64, status string) error
	ApplyOrderPayment(ctx context.Context, id int64, amount float64, status PaymentStatus) error

	ListInvoices(ctx context.Context, filters InvoiceFilters, limit, offset int) ([]Invoice, int, error)
	GetInvoice(ctx context.Context, id int64) (Invoice, error)
	CreateInvoice(ctx context.Context, number string, customerID int64, serviceOrderID *int64, finalAmount, paidAmount float64, status PaymentStatus, issued time.Time, due *time.Time, notes string) (Invoice, error)
	ApplyInvoicePayment(ctx context.Context, id int64, amount float64, status PaymentStatus, paidDate *time.Time) error
	CancelInvoice(ctx context.Context, id int64) error
	InvoiceExistsForOrder(ctx context.Context, serviceOrderID int64) (bool, error)
}

// Recorder appends payments to the financial ledger. *ledger.Service
// implements it.
type Recorder interface {
	Record(ctx context.Context, input ledger.TransactionInput) (ledger.Transaction, error)
}

// invoiceCreditDays is the default net term applied when an invoice carries
// no explicit due date.
const invoiceCreditDays = 30

// Service owns workshop business rules.
type Service struct {
	repo     Store
	recorder Recorder
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs the workshop service.
func NewService(repo Store, recorder Recorder) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

func newDocumentNumber(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}

// --- Service orders ---

func (s *Service) ListOrders(ctx context.Context, filters OrderFilters, page shared.PageRequest) (shared.PagedResponse[ServiceOrder], error) {
	page = page.Clamp()
	orders, total, err := s.repo.ListOrders(ctx, filters, page.Size, page.Offset())
	if err != nil {
		return shared.PagedResponse[ServiceOrder]{}, err
	}
	if orders == nil {
		orders = []ServiceOrder{}
	}
	return shared.PagedResponse[ServiceOrder]{Data: orders, TotalCount: total, PageNumber: page.Number, PageSize: page.Size}, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (ServiceOrder, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *Service) CreateOrder(ctx context.Context, input ServiceOrderInput) (ServiceOrder, error) {
	if err := s.validate.Struct(input); err != nil {
		return ServiceOrder{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if input.OrderDate.IsZero() {
		input.OrderDate = s.now().UTC()
	}
	return s.repo.CreateOrder(ctx, newDocumentNumber("SO"), input)
}

func (s *Service) UpdateOrder(ctx context.Context, id int64, input ServiceOrderInput) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if input.OrderDate.IsZero() {
		input.OrderDate = s.now().UTC()
	}
	return s.repo.UpdateOrder(ctx, id, input)
}

func (s *Service) SetOrderStatus(ctx context.Context, id int64, status string) error {
	switch status {
	case OrderStatusOpen, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
	default:
		return fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, status)
	}
	return s.repo.SetOrderStatus(ctx, id, status)
}

// PayOrder records a customer payment against an un-invoiced service order:
// a ledger entry is appended, then the stored paid amount and payment status
// advance. Paid is terminal and overpayment is rejected.
func (s *Service) PayOrder(ctx context.Context, id int64, input PaymentInput) (ServiceOrder, error) {
	if err := s.validate.Struct(input); err != nil {
		return ServiceOrder{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return ServiceOrder{}, err
	}
	if order.PaymentStatus == PaymentPaid {
		return ServiceOrder{}, ErrAlreadySettled
	}
	remaining := order.FinalAmount - order.AmountPaid
	if input.Amount > remaining+0.001 {
		return ServiceOrder{}, fmt.Errorf("%w: %.2f remaining", ErrOverpayment, remaining)
	}

	date := input.PaymentDate
	if date.IsZero() {
		date = s.now().UTC()
	}
	_, err = s.recorder.Record(ctx, ledger.TransactionInput{
		TransactionType: ledger.TypeIncome,
		SourceType:      ledger.SourceServiceOrder,
		ReferenceID:     id,
		Amount:          input.Amount,
		Description:     input.Description,
		TransactionDate: date,
	})
	if err != nil {
		return ServiceOrder{}, err
	}

	status := statusForPaid(order.AmountPaid+input.Amount, order.FinalAmount)
	if err := s.repo.ApplyOrderPayment(ctx, id, input.Amount, status); err != nil {
		return ServiceOrder{}, err
	}
	return s.repo.GetOrder(ctx, id)
}

// --- Invoices ---

func (s *Service) ListInvoices(ctx context.Context, filters InvoiceFilters, page shared.PageRequest) (shared.PagedResponse[Invoice], error) {
	page = page.Clamp()
	invoices, total, err := s.repo.ListInvoices(ctx, filters, page.Size, page.Offset())
	if err != nil {
		return shared.PagedResponse[Invoice]{}, err
	}
	if invoices == nil {
		invoices = []Invoice{}
	}
	return shared.PagedResponse[Invoice]{Data: invoices, TotalCount: total, PageNumber: page.Number, PageSize: page.Size}, nil
}

func (s *Service) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

// CreateInvoice issues a standalone invoice. A missing due date defaults to
// issued date plus the net term.
func (s *Service) CreateInvoice(ctx context.Context, input InvoiceInput) (Invoice, error) {
	if err := s.validate.Struct(input); err != nil {
		return Invoice{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	issued := input.IssuedDate
	if issued.IsZero() {
		issued = s.now().UTC()
	}
	due := input.DueDate
	if due == nil {
		d := issued.AddDate(0, 0, invoiceCreditDays)
		due = &d
	}
	return s.repo.CreateInvoice(ctx, newDocumentNumber("INV"), input.CustomerID, nil,
		input.FinalAmount, 0, PaymentUnpaid, issued, due, input.Notes)
}

// InvoiceOrder issues an invoice claiming a service order. The invoice
// carries over the order's amounts and settlement progress; once claimed,
// the order drops out of receivables in favour of the invoice.
func (s *Service) InvoiceOrder(ctx context.Context, serviceOrderID int64, due *time.Time, notes string) (Invoice, error) {
	order, err := s.repo.GetOrder(ctx, serviceOrderID)
	if err != nil {
		return Invoice{}, err
	}
	if order.Status == OrderStatusCancelled || order.FinalAmount <= 0 {
		return Invoice{}, ErrNotBillable
	}
	claimed, err := s.repo.InvoiceExistsForOrder(ctx, serviceOrderID)
	if err != nil {
		return Invoice{}, err
	}
	if claimed {
		return Invoice{}, ErrAlreadyInvoiced
	}

	issued := s.now().UTC()
	if due == nil {
		d := issued.AddDate(0, 0, invoiceCreditDays)
		due = &d
	}
	status := statusForPaid(order.AmountPaid, order.FinalAmount)
	return s.repo.CreateInvoice(ctx, newDocumentNumber("INV"), order.CustomerID, &serviceOrderID,
		order.FinalAmount, order.AmountPaid, status, issued, due, notes)
}

// PayInvoice records a customer payment against an invoice through the
// ledger, mirroring PayOrder.
func (s *Service) PayInvoice(ctx context.Context, id int64, input PaymentInput) (Invoice, error) {
	if err := s.validate.Struct(input); err != nil {
		return Invoice{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	invoice, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if invoice.Status == InvoiceStatusCancelled {
		return Invoice{}, fmt.Errorf("%w: invoice cancelled", httpx.ErrValidation)
	}
	if invoice.PaymentStatus == PaymentPaid {
		return Invoice{}, ErrAlreadySettled
	}
	remaining := invoice.FinalAmount - invoice.PaidAmount
	if input.Amount > remaining+0.001 {
		return Invoice{}, fmt.Errorf("%w: %.2f remaining", ErrOverpayment, remaining)
	}

	date := input.PaymentDate
	if date.IsZero() {
		date = s.now().UTC()
	}
	_, err = s.recorder.Record(ctx, ledger.TransactionInput{
		TransactionType: ledger.TypeIncome,
		SourceType:      ledger.SourceInvoice,
		ReferenceID:     id,
		Amount:          input.Amount,
		Description:     input.Description,
		TransactionDate: date,
	})
	if err != nil {
		return Invoice{}, err
	}

	status := statusForPaid(invoice.PaidAmount+input.Amount, invoice.FinalAmount)
	var paidDate *time.Time
	if status == PaymentPaid {
		paidDate = &date
	}
	if err := s.repo.ApplyInvoicePayment(ctx, id, input.Amount, status, paidDate); err != nil {
		return Invoice{}, err
	}
	return s.repo.GetInvoice(ctx, id)
}

// CancelInvoice voids the invoice and releases its service order claim.
func (s *Service) CancelInvoice(ctx context.Context, id int64) error {
	return s.repo.CancelInvoice(ctx, id)
}
