package workshop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pitstop-erp/pitstop-erp/internal/ledger"
	"github.com/pitstop-erp/pitstop-erp/internal/platform/httpx"
)

type memoryWorkshopStore struct {
	orders        map[int64]*ServiceOrder
	invoices      map[int64]*Invoice
	nextOrderID   int64
	nextInvoiceID int64
}

func newMemoryWorkshopStore() *memoryWorkshopStore {
	return &memoryWorkshopStore{
		orders:   make(map[int64]*ServiceOrder),
		invoices: make(map[int64]*Invoice),
	}
}

func (s *memoryWorkshopStore) ListOrders(ctx context.Context, filters OrderFilters, limit, offset int) ([]ServiceOrder, int, error) {
	var out []ServiceOrder
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (s *memoryWorkshopStore) GetOrder(ctx context.Context, id int64) (ServiceOrder, error) {
	o, ok := s.orders[id]
	if !ok {
		return ServiceOrder{}, httpx.ErrNotFound
	}
	return *o, nil
}

func (s *memoryWorkshopStore) CreateOrder(ctx context.Context, number string, input ServiceOrderInput) (ServiceOrder, error) {
	s.nextOrderID++
	o := ServiceOrder{
		ID:            s.nextOrderID,
		OrderNumber:   number,
		CustomerID:    input.CustomerID,
		VehicleID:     input.VehicleID,
		Status:        OrderStatusOpen,
		LaborCost:     input.LaborCost,
		PartsCost:     input.PartsCost,
		FinalAmount:   input.LaborCost + input.PartsCost,
		PaymentStatus: PaymentUnpaid,
		OrderDate:     input.OrderDate,
		Notes:         input.Notes,
	}
	s.orders[o.ID] = &o
	return o, nil
}

func (s *memoryWorkshopStore) UpdateOrder(ctx context.Context, id int64, input ServiceOrderInput) error {
	o, ok := s.orders[id]
	if !ok {
		return httpx.ErrNotFound
	}
	o.LaborCost = input.LaborCost
	o.PartsCost = input.PartsCost
	o.FinalAmount = input.LaborCost + input.PartsCost
	return nil
}

func (s *memoryWorkshopStore) SetOrderStatus(ctx context.Context, id int64, status string) error {
	o, ok := s.orders[id]
	if !ok {
		return httpx.ErrNotFound
	}
	o.Status = status
	return nil
}

func (s *memoryWorkshopStore) ApplyOrderPayment(ctx context.Context, id int64, amount float64, status PaymentStatus) error {
	o, ok := s.orders[id]
	if !ok {
		return httpx.ErrNotFound
	}
	o.AmountPaid += amount
	o.PaymentStatus = status
	return nil
}

func (s *memoryWorkshopStore) ListInvoices(ctx context.Context, filters InvoiceFilters, limit, offset int) ([]Invoice, int, error) {
	var out []Invoice
	for _, inv := range s.invoices {
		out = append(out, *inv)
	}
	return out, len(out), nil
}

func (s *memoryWorkshopStore) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	inv, ok := s.invoices[id]
	if !ok {
		return Invoice{}, httpx.ErrNotFound
	}
	return *inv, nil
}

func (s *memoryWorkshopStore) CreateInvoice(ctx context.Context, number string, customerID int64, serviceOrderID *int64, finalAmount, paidAmount float64, status PaymentStatus, issued time.Time, due *time.Time, notes string) (Invoice, error) {
	s.nextInvoiceID++
	inv := Invoice{
		ID:             s.nextInvoiceID,
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
	s.invoices[inv.ID] = &inv
	return inv, nil
}

func (s *memoryWorkshopStore) ApplyInvoicePayment(ctx context.Context, id int64, amount float64, status PaymentStatus, paidDate *time.Time) error {
	inv, ok := s.invoices[id]
	if !ok {
		return httpx.ErrNotFound
	}
	inv.PaidAmount += amount
	inv.PaymentStatus = status
	if inv.PaidDate == nil {
		inv.PaidDate = paidDate
	}
	return nil
}

func (s *memoryWorkshopStore) CancelInvoice(ctx context.Context, id int64) error {
	inv, ok := s.invoices[id]
	if !ok {
		return httpx.ErrNotFound
	}
	inv.Status = InvoiceStatusCancelled
	return nil
}

func (s *memoryWorkshopStore) InvoiceExistsForOrder(ctx context.Context, serviceOrderID int64) (bool, error) {
	for _, inv := range s.invoices {
		if inv.ServiceOrderID != nil && *inv.ServiceOrderID == serviceOrderID && inv.Status != InvoiceStatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

type memoryRecorder struct {
	entries []ledger.TransactionInput
}

func (r *memoryRecorder) Record(ctx context.Context, input ledger.TransactionInput) (ledger.Transaction, error) {
	r.entries = append(r.entries, input)
	return ledger.Transaction{ID: int64(len(r.entries)), Amount: input.Amount}, nil
}

func newTestWorkshop() (*Service, *memoryWorkshopStore, *memoryRecorder) {
	store := newMemoryWorkshopStore()
	recorder := &memoryRecorder{}
	return NewService(store, recorder), store, recorder
}

func TestCreateOrderComputesFinalAmount(t *testing.T) {
	service, _, _ := newTestWorkshop()

	order, err := service.CreateOrder(context.Background(), ServiceOrderInput{
		CustomerID: 1, VehicleID: 2, LaborCost: 300, PartsCost: 450,
	})
	require.NoError(t, err)
	require.Equal(t, float64(750), order.FinalAmount)
	require.Equal(t, PaymentUnpaid, order.PaymentStatus)
	require.Equal(t, OrderStatusOpen, order.Status)
	require.NotEmpty(t, order.OrderNumber)
	require.False(t, order.OrderDate.IsZero())
}

func TestPayOrderAppendsLedgerAndAdvancesStatus(t *testing.T) {
	service, _, recorder := newTestWorkshop()
	ctx := context.Background()

	order, err := service.CreateOrder(ctx, ServiceOrderInput{CustomerID: 1, VehicleID: 2, LaborCost: 600, PartsCost: 400})
	require.NoError(t, err)

	order, err = service.PayOrder(ctx, order.ID, PaymentInput{Amount: 400})
	require.NoError(t, err)
	require.Equal(t, PaymentPartial, order.PaymentStatus)
	require.Equal(t, float64(400), order.AmountPaid)
	require.Len(t, recorder.entries, 1)
	require.Equal(t, ledger.TypeIncome, recorder.entries[0].TransactionType)
	require.Equal(t, ledger.SourceServiceOrder, recorder.entries[0].SourceType)
	require.Equal(t, order.ID, recorder.entries[0].ReferenceID)

	order, err = service.PayOrder(ctx, order.ID, PaymentInput{Amount: 600})
	require.NoError(t, err)
	require.Equal(t, PaymentPaid, order.PaymentStatus)
	require.Len(t, recorder.entries, 2)

	// Paid is terminal.
	_, err = service.PayOrder(ctx, order.ID, PaymentInput{Amount: 1})
	require.ErrorIs(t, err, ErrAlreadySettled)
	require.Len(t, recorder.entries, 2)
}

func TestPayOrderRejectsOverpayment(t *testing.T) {
	service, _, recorder := newTestWorkshop()
	ctx := context.Background()

	order, err := service.CreateOrder(ctx, ServiceOrderInput{CustomerID: 1, VehicleID: 2, LaborCost: 100})
	require.NoError(t, err)

	_, err = service.PayOrder(ctx, order.ID, PaymentInput{Amount: 150})
	require.ErrorIs(t, err, ErrOverpayment)
	require.Empty(t, recorder.entries)
}

func TestInvoiceOrderClaimsOnce(t *testing.T) {
	service, _, _ := newTestWorkshop()
	ctx := context.Background()

	order, err := service.CreateOrder(ctx, ServiceOrderInput{CustomerID: 1, VehicleID: 2, LaborCost: 500})
	require.NoError(t, err)

	invoice, err := service.InvoiceOrder(ctx, order.ID, nil, "")
	require.NoError(t, err)
	require.NotNil(t, invoice.ServiceOrderID)
	require.Equal(t, order.ID, *invoice.ServiceOrderID)
	require.Equal(t, order.FinalAmount, invoice.FinalAmount)
	require.NotNil(t, invoice.DueDate)

	_, err = service.InvoiceOrder(ctx, order.ID, nil, "")
	require.ErrorIs(t, err, ErrAlreadyInvoiced)
}

func TestInvoiceOrderCancelReleasesClaim(t *testing.T) {
	service, _, _ := newTestWorkshop()
	ctx := context.Background()

	order, err := service.CreateOrder(ctx, ServiceOrderInput{CustomerID: 1, VehicleID: 2, LaborCost: 500})
	require.NoError(t, err)

	invoice, err := service.InvoiceOrder(ctx, order.ID, nil, "")
	require.NoError(t, err)
	require.NoError(t, service.CancelInvoice(ctx, invoice.ID))

	_, err = service.InvoiceOrder(ctx, order.ID, nil, "")
	require.NoError(t, err)
}

func TestInvoiceOrderCarriesSettlementProgress(t *testing.T) {
	service, _, _ := newTestWorkshop()
	ctx := context.Background()

	order, err := service.CreateOrder(ctx, ServiceOrderInput{CustomerID: 1, VehicleID: 2, LaborCost: 1000})
	require.NoError(t, err)
	_, err = service.PayOrder(ctx, order.ID, PaymentInput{Amount: 250})
	require.NoError(t, err)

	invoice, err := service.InvoiceOrder(ctx, order.ID, nil, "")
	require.NoError(t, err)
	require.Equal(t, float64(250), invoice.PaidAmount)
	require.Equal(t, PaymentPartial, invoice.PaymentStatus)
}

func TestInvoiceOrderRejectsCancelled(t *testing.T) {
	service, _, _ := newTestWorkshop()
	ctx := context.Background()

	order, err := service.CreateOrder(ctx, ServiceOrderInput{CustomerID: 1, VehicleID: 2, LaborCost: 500})
	require.NoError(t, err)
	require.NoError(t, service.SetOrderStatus(ctx, order.ID, OrderStatusCancelled))

	_, err = service.InvoiceOrder(ctx, order.ID, nil, "")
	require.ErrorIs(t, err, ErrNotBillable)
}

func TestPayInvoiceStampsPaidDateOnSettlement(t *testing.T) {
	service, store, recorder := newTestWorkshop()
	ctx := context.Background()

	invoice, err := service.CreateInvoice(ctx, InvoiceInput{CustomerID: 1, FinalAmount: 300})
	require.NoError(t, err)

	invoice, err = service.PayInvoice(ctx, invoice.ID, PaymentInput{Amount: 300})
	require.NoError(t, err)
	require.Equal(t, PaymentPaid, invoice.PaymentStatus)
	require.NotNil(t, store.invoices[invoice.ID].PaidDate)
	require.Len(t, recorder.entries, 1)
	require.Equal(t, ledger.SourceInvoice, recorder.entries[0].SourceType)
}

func TestStatusForPaid(t *testing.T) {
	require.Equal(t, PaymentUnpaid, statusForPaid(0, 100))
	require.Equal(t, PaymentPartial, statusForPaid(50, 100))
	require.Equal(t, PaymentPaid, statusForPaid(100, 100))
	require.Equal(t, PaymentPaid, statusForPaid(99.9995, 100))
}
