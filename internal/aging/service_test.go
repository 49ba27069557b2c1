package aging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pitstop-erp/pitstop-erp/internal/shared"
)

type memoryAgingRepo struct {
	purchaseOrders []PurchaseOrderRecord
	invoices       []InvoiceRecord
	serviceOrders  []ServiceOrderRecord
	ledger         []LedgerEntry

	failLedger  bool
	failSources bool
}

func (r *memoryAgingRepo) FetchPurchaseOrders(ctx context.Context, filter SourceFilter) ([]PurchaseOrderRecord, error) {
	if r.failSources {
		return nil, errors.New("connection refused")
	}
	return r.purchaseOrders, nil
}

func (r *memoryAgingRepo) FetchInvoices(ctx context.Context, filter SourceFilter) ([]InvoiceRecord, error) {
	if r.failSources {
		return nil, errors.New("connection refused")
	}
	return r.invoices, nil
}

func (r *memoryAgingRepo) FetchServiceOrders(ctx context.Context, filter SourceFilter) ([]ServiceOrderRecord, error) {
	if r.failSources {
		return nil, errors.New("connection refused")
	}
	return r.serviceOrders, nil
}

func (r *memoryAgingRepo) FetchClaimedServiceOrderIDs(ctx context.Context) ([]int64, error) {
	if r.failSources {
		return nil, errors.New("connection refused")
	}
	var ids []int64
	for _, inv := range r.invoices {
		if inv.IsDeleted || inv.Status == "Cancelled" || inv.ServiceOrderID == nil {
			continue
		}
		ids = append(ids, *inv.ServiceOrderID)
	}
	return ids, nil
}

func (r *memoryAgingRepo) FetchLedgerEntries(ctx context.Context, side Side) ([]LedgerEntry, error) {
	if r.failLedger {
		return nil, errors.New("connection refused")
	}
	return r.ledger, nil
}

type memoryLookup struct {
	contacts map[int64]Counterparty
	err      error
}

func (l *memoryLookup) Lookup(ctx context.Context, side Side, ids []int64) (map[int64]Counterparty, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.contacts, nil
}

func newTestService(repo Repository, directory CounterpartyLookup) *Service {
	return NewService(repo, directory, DefaultLedgerPolicy, slog.New(slog.DiscardHandler))
}

func TestListPayablesEndToEnd(t *testing.T) {
	received := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	repo := &memoryAgingRepo{
		purchaseOrders: []PurchaseOrderRecord{{
			ID: 1, SupplierID: 5, Status: "Received", TotalAmount: 10_000_000,
			OrderDate: received, ReceivedDate: datePtr(received), PaymentTerms: "Net 30",
			OrderNumber: "PO-001",
		}},
		ledger: []LedgerEntry{{
			ID: 1, TransactionType: "Expense", SourceType: SourcePurchaseOrder,
			ReferenceID: 1, Amount: 4_000_000,
			TransactionDate: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		}},
	}
	lookup := &memoryLookup{contacts: map[int64]Counterparty{
		5: {ID: 5, Name: "Apex Parts", Phone: "0812", Email: "apex@example.com"},
	}}

	result, err := newTestService(repo, lookup).List(context.Background(), Payables, Query{}, shared.PageRequest{Number: 1, Size: 10}, asOf)
	require.NoError(t, err)
	require.Equal(t, 1, result.TotalCount)
	require.Len(t, result.Data, 1)

	balance := result.Data[0]
	require.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), balance.DueDate)
	require.Equal(t, 15, balance.OverdueDays)
	require.Equal(t, float64(6_000_000), balance.RemainingAmount)
	require.Equal(t, StatusPartial, balance.PaymentStatus)
	require.Equal(t, "Apex Parts", balance.CounterpartyName)
}

func TestListSortsByOverdueThenIssueDate(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jan10 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb1 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	shortTerm := 21
	repo := &memoryAgingRepo{
		purchaseOrders: []PurchaseOrderRecord{
			// Due Jan 31 via Net 30.
			{ID: 1, SupplierID: 5, Status: "Received", TotalAmount: 100, OrderDate: jan1, ReceivedDate: datePtr(jan1), PaymentTerms: "Net 30"},
			// Also due Jan 31, newer issue date.
			{ID: 2, SupplierID: 5, Status: "Received", TotalAmount: 100, OrderDate: jan10, ReceivedDate: datePtr(jan10), CreditDays: &shortTerm},
			// Not yet due.
			{ID: 3, SupplierID: 5, Status: "Received", TotalAmount: 100, OrderDate: feb1, ReceivedDate: datePtr(feb1), PaymentTerms: "Net 30"},
		},
	}

	result, err := newTestService(repo, nil).List(context.Background(), Payables, Query{}, shared.PageRequest{Number: 1, Size: 10}, asOf)
	require.NoError(t, err)
	require.Len(t, result.Data, 3)

	// Most overdue first; equal overdue ties break on newer issue date.
	require.Equal(t, int64(2), result.Data[0].ReferenceID)
	require.Equal(t, int64(1), result.Data[1].ReferenceID)
	require.Equal(t, int64(3), result.Data[2].ReferenceID)
	require.Equal(t, result.Data[0].OverdueDays, result.Data[1].OverdueDays)
}

func TestListPaginationClamped(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &memoryAgingRepo{}
	for i := int64(1); i <= 150; i++ {
		repo.purchaseOrders = append(repo.purchaseOrders, PurchaseOrderRecord{
			ID: i, SupplierID: 5, Status: "Received", TotalAmount: 100,
			OrderDate: jan, ReceivedDate: datePtr(jan),
		})
	}

	result, err := newTestService(repo, nil).List(context.Background(), Payables, Query{}, shared.PageRequest{Number: 0, Size: 10_000}, asOf)
	require.NoError(t, err)
	require.Equal(t, 1, result.PageNumber)
	require.Equal(t, shared.MaxPageSize, result.PageSize)
	require.Len(t, result.Data, shared.MaxPageSize)
	require.Equal(t, 150, result.TotalCount)
}

func TestListRejectsInvertedDateRange(t *testing.T) {
	repo := &memoryAgingRepo{}
	_, err := newTestService(repo, nil).List(context.Background(), Payables, Query{
		FromDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		ToDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}, shared.PageRequest{Number: 1, Size: 10}, time.Now())
	require.ErrorIs(t, err, shared.ErrInvalidDateRange)
}

func TestListSourceFailureIsFatal(t *testing.T) {
	repo := &memoryAgingRepo{failSources: true}
	_, err := newTestService(repo, nil).List(context.Background(), Receivables, Query{}, shared.PageRequest{Number: 1, Size: 10}, time.Now())
	require.ErrorIs(t, err, ErrDataSource)
}

func TestListLedgerFailureIsFatal(t *testing.T) {
	repo := &memoryAgingRepo{failLedger: true}
	_, err := newTestService(repo, nil).List(context.Background(), Payables, Query{}, shared.PageRequest{Number: 1, Size: 10}, time.Now())
	require.ErrorIs(t, err, ErrDataSource)
}

func TestListEnrichmentFailureDegrades(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &memoryAgingRepo{
		purchaseOrders: []PurchaseOrderRecord{{
			ID: 1, SupplierID: 5, Status: "Received", TotalAmount: 100,
			OrderDate: jan, ReceivedDate: datePtr(jan),
		}},
	}
	lookup := &memoryLookup{err: errors.New("directory down")}

	result, err := newTestService(repo, lookup).List(context.Background(), Payables, Query{}, shared.PageRequest{Number: 1, Size: 10}, jan.AddDate(0, 0, 45))
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	require.Empty(t, result.Data[0].CounterpartyName)
}

func TestListPostFilters(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb20 := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	repo := &memoryAgingRepo{
		purchaseOrders: []PurchaseOrderRecord{
			{ID: 1, SupplierID: 5, Status: "Received", TotalAmount: 100, OrderDate: jan1, ReceivedDate: datePtr(jan1)},
			{ID: 2, SupplierID: 5, Status: "Received", TotalAmount: 100, OrderDate: feb20, ReceivedDate: datePtr(feb20)},
		},
		ledger: []LedgerEntry{{
			ID: 1, SourceType: SourcePurchaseOrder, ReferenceID: 1, Amount: 40, TransactionDate: feb20,
		}},
	}
	service := newTestService(repo, nil)

	minDays := 15
	result, err := service.List(context.Background(), Payables, Query{MinOverdueDays: &minDays}, shared.PageRequest{Number: 1, Size: 10}, asOf)
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	require.Equal(t, int64(1), result.Data[0].ReferenceID)

	result, err = service.List(context.Background(), Payables, Query{PaymentStatus: StatusUnpaid}, shared.PageRequest{Number: 1, Size: 10}, asOf)
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	require.Equal(t, int64(2), result.Data[0].ReferenceID)
}

func TestListReceivablesCountsPreInvoicePayments(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	soID := int64(20)
	repo := &memoryAgingRepo{
		invoices: []InvoiceRecord{{
			ID: 10, InvoiceNumber: "INV-10", CustomerID: 1, PaymentStatus: "Partial",
			FinalAmount: 500, IssuedDate: datePtr(issued), ServiceOrderID: &soID,
		}},
		serviceOrders: []ServiceOrderRecord{{
			ID: 20, OrderNumber: "SO-20", CustomerID: 1, PaymentStatus: "Partial",
			FinalAmount: 500, OrderDate: issued,
		}},
		// Payment recorded against the service order before invoicing.
		ledger: []LedgerEntry{{
			ID: 1, TransactionType: "Income", SourceType: SourceServiceOrder,
			ReferenceID: 20, Amount: 200,
			TransactionDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		}},
	}

	result, err := newTestService(repo, nil).List(context.Background(), Receivables, Query{}, shared.PageRequest{Number: 1, Size: 10}, asOf)
	require.NoError(t, err)
	require.Len(t, result.Data, 1)

	balance := result.Data[0]
	require.Equal(t, SourceInvoice, balance.SourceType)
	require.Equal(t, float64(200), balance.PaidAmount)
	require.Equal(t, float64(300), balance.RemainingAmount)
	require.Equal(t, StatusPartial, balance.PaymentStatus)
}

func TestSummarizeEmptySources(t *testing.T) {
	summary, err := newTestService(&memoryAgingRepo{}, nil).Summarize(context.Background(), Receivables, Query{}, time.Now())
	require.NoError(t, err)
	require.Zero(t, summary.TotalOutstanding)
	require.Zero(t, summary.TotalCount)
	require.NotNil(t, summary.ByCounterparty)
	require.Empty(t, summary.ByCounterparty)
}

func TestSummarizeReceivablesSkipsClaimedServiceOrders(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	soID := int64(20)
	repo := &memoryAgingRepo{
		invoices: []InvoiceRecord{{
			ID: 10, InvoiceNumber: "INV-10", CustomerID: 1, PaymentStatus: "Unpaid",
			FinalAmount: 500, IssuedDate: datePtr(issued), ServiceOrderID: &soID,
		}},
		serviceOrders: []ServiceOrderRecord{
			{ID: 20, OrderNumber: "SO-20", CustomerID: 1, PaymentStatus: "Unpaid", FinalAmount: 500, OrderDate: issued},
			{ID: 21, OrderNumber: "SO-21", CustomerID: 2, PaymentStatus: "Unpaid", FinalAmount: 300, OrderDate: issued},
		},
	}

	summary, err := newTestService(repo, nil).Summarize(context.Background(), Receivables, Query{}, asOf)
	require.NoError(t, err)
	require.Equal(t, 2, summary.TotalCount)
	require.Equal(t, float64(800), summary.TotalOutstanding)
}
