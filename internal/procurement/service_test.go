package procurement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pitstop-erp/pitstop-erp/internal/ledger"
	"github.com/pitstop-erp/pitstop-erp/internal/platform/httpx"
)

type memoryProcurementStore struct {
	orders map[int64]*PurchaseOrder
	nextID int64
}

func newMemoryProcurementStore() *memoryProcurementStore {
	return &memoryProcurementStore{orders: make(map[int64]*PurchaseOrder)}
}

func (s *memoryProcurementStore) List(ctx context.Context, filters ListFilters, limit, offset int) ([]PurchaseOrder, int, error) {
	var out []PurchaseOrder
	for _, po := range s.orders {
		out = append(out, *po)
	}
	return out, len(out), nil
}

func (s *memoryProcurementStore) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	po, ok := s.orders[id]
	if !ok {
		return PurchaseOrder{}, httpx.ErrNotFound
	}
	return *po, nil
}

func (s *memoryProcurementStore) Create(ctx context.Context, number string, input PurchaseOrderInput) (PurchaseOrder, error) {
	s.nextID++
	po := PurchaseOrder{
		ID:           s.nextID,
		OrderNumber:  number,
		SupplierID:   input.SupplierID,
		Status:       StatusPending,
		TotalAmount:  input.TotalAmount,
		OrderDate:    input.OrderDate,
		CreditDays:   input.CreditDays,
		PaymentTerms: input.PaymentTerms,
		Notes:        input.Notes,
	}
	s.orders[po.ID] = &po
	return po, nil
}

func (s *memoryProcurementStore) Update(ctx context.Context, id int64, input PurchaseOrderInput) error {
	po, ok := s.orders[id]
	if !ok {
		return httpx.ErrNotFound
	}
	po.TotalAmount = input.TotalAmount
	return nil
}

func (s *memoryProcurementStore) SetStatus(ctx context.Context, id int64, status string) error {
	po, ok := s.orders[id]
	if !ok {
		return httpx.ErrNotFound
	}
	po.Status = status
	return nil
}

func (s *memoryProcurementStore) MarkReceived(ctx context.Context, id int64, receivedDate time.Time) error {
	po, ok := s.orders[id]
	if !ok {
		return ErrNotReceivable
	}
	if po.Status != StatusPending && po.Status != StatusOrdered {
		return ErrNotReceivable
	}
	po.Status = StatusReceived
	po.ReceivedDate = &receivedDate
	return nil
}

func (s *memoryProcurementStore) Delete(ctx context.Context, id int64) error {
	if _, ok := s.orders[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

type memoryRecorder struct {
	entries []ledger.TransactionInput
}

func (r *memoryRecorder) Record(ctx context.Context, input ledger.TransactionInput) (ledger.Transaction, error) {
	r.entries = append(r.entries, input)
	return ledger.Transaction{ID: int64(len(r.entries)), Amount: input.Amount}, nil
}

func newTestProcurement() (*Service, *memoryProcurementStore, *memoryRecorder) {
	store := newMemoryProcurementStore()
	recorder := &memoryRecorder{}
	return NewService(store, recorder), store, recorder
}

func TestMarkReceivedStampsDate(t *testing.T) {
	service, _, _ := newTestProcurement()
	ctx := context.Background()

	order, err := service.Create(ctx, PurchaseOrderInput{SupplierID: 5, TotalAmount: 1000, PaymentTerms: "Net 30"})
	require.NoError(t, err)
	require.Equal(t, StatusPending, order.Status)

	received := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	order, err = service.MarkReceived(ctx, order.ID, received)
	require.NoError(t, err)
	require.Equal(t, StatusReceived, order.Status)
	require.NotNil(t, order.ReceivedDate)
	require.Equal(t, received, *order.ReceivedDate)

	// Receiving twice is rejected.
	_, err = service.MarkReceived(ctx, order.ID, received)
	require.ErrorIs(t, err, ErrNotReceivable)
}

func TestPayRequiresReceivedStatus(t *testing.T) {
	service, _, recorder := newTestProcurement()
	ctx := context.Background()

	order, err := service.Create(ctx, PurchaseOrderInput{SupplierID: 5, TotalAmount: 1000})
	require.NoError(t, err)

	_, err = service.Pay(ctx, order.ID, PaymentInput{Amount: 500})
	require.ErrorIs(t, err, ErrNotPayable)
	require.Empty(t, recorder.entries)

	_, err = service.MarkReceived(ctx, order.ID, time.Now())
	require.NoError(t, err)

	transaction, err := service.Pay(ctx, order.ID, PaymentInput{Amount: 500})
	require.NoError(t, err)
	require.Equal(t, float64(500), transaction.Amount)
	require.Len(t, recorder.entries, 1)
	require.Equal(t, ledger.TypeExpense, recorder.entries[0].TransactionType)
	require.Equal(t, ledger.SourcePurchaseOrder, recorder.entries[0].SourceType)
	require.Equal(t, order.ID, recorder.entries[0].ReferenceID)
}

func TestCancelRejectsReceived(t *testing.T) {
	service, _, _ := newTestProcurement()
	ctx := context.Background()

	order, err := service.Create(ctx, PurchaseOrderInput{SupplierID: 5, TotalAmount: 1000})
	require.NoError(t, err)
	_, err = service.MarkReceived(ctx, order.ID, time.Now())
	require.NoError(t, err)

	require.ErrorIs(t, service.Cancel(ctx, order.ID), httpx.ErrValidation)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	service, _, _ := newTestProcurement()

	_, err := service.Create(context.Background(), PurchaseOrderInput{SupplierID: 0, TotalAmount: 1000})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = service.Create(context.Background(), PurchaseOrderInput{SupplierID: 5, TotalAmount: 0})
	require.ErrorIs(t, err, httpx.ErrValidation)
}
