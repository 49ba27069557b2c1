package aging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func datePtr(t time.Time) *time.Time { return &t }

func TestSelectPayablesFiltersUnsettleable(t *testing.T) {
	orderDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	orders := []PurchaseOrderRecord{
		{ID: 1, SupplierID: 5, Status: "Received", TotalAmount: 1000, OrderDate: orderDate, OrderNumber: "PO-1"},
		{ID: 2, SupplierID: 5, Status: "Pending", TotalAmount: 1000, OrderDate: orderDate},
		{ID: 3, SupplierID: 5, Status: "Received", TotalAmount: 0, OrderDate: orderDate},
		{ID: 4, SupplierID: 5, Status: "Received", TotalAmount: 1000, OrderDate: orderDate, IsDeleted: true},
	}

	obligations := SelectPayables(orders, SourceFilter{})
	require.Len(t, obligations, 1)
	require.Equal(t, int64(1), obligations[0].ReferenceID)
	require.Equal(t, SourcePurchaseOrder, obligations[0].SourceType)
	require.Equal(t, "PO-1", obligations[0].ReferenceNumber)
}

func TestSelectPayablesReferenceDateBase(t *testing.T) {
	orderDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	receivedDate := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	orders := []PurchaseOrderRecord{
		{ID: 1, SupplierID: 5, Status: "Received", TotalAmount: 100, OrderDate: orderDate, ReceivedDate: datePtr(receivedDate)},
		{ID: 2, SupplierID: 5, Status: "Received", TotalAmount: 100, OrderDate: orderDate},
	}

	obligations := SelectPayables(orders, SourceFilter{})
	require.Len(t, obligations, 2)
	require.Equal(t, receivedDate, obligations[0].ReferenceDateBase)
	require.Equal(t, orderDate, obligations[1].ReferenceDateBase)
}

func TestSelectPayablesCreditResolution(t *testing.T) {
	orderDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	explicit := 45
	orders := []PurchaseOrderRecord{
		{ID: 1, SupplierID: 5, Status: "Received", TotalAmount: 100, OrderDate: orderDate, CreditDays: &explicit, PaymentTerms: "Net 30"},
		{ID: 2, SupplierID: 5, Status: "Received", TotalAmount: 100, OrderDate: orderDate, PaymentTerms: "Net 30"},
		{ID: 3, SupplierID: 5, Status: "Received", TotalAmount: 100, OrderDate: orderDate},
	}

	obligations := SelectPayables(orders, SourceFilter{})
	require.Equal(t, 45, obligations[0].CreditDays)
	require.Equal(t, 30, obligations[1].CreditDays)
	require.Equal(t, DefaultCreditDays, obligations[2].CreditDays)
}

func TestSelectPayablesSourceFilter(t *testing.T) {
	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	orders := []PurchaseOrderRecord{
		{ID: 1, SupplierID: 5, Status: "Received", TotalAmount: 100, OrderDate: jan},
		{ID: 2, SupplierID: 6, Status: "Received", TotalAmount: 100, OrderDate: jan},
		{ID: 3, SupplierID: 5, Status: "Received", TotalAmount: 100, OrderDate: mar},
	}

	obligations := SelectPayables(orders, SourceFilter{
		CounterpartyID: 5,
		FromDate:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ToDate:         time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	})
	require.Len(t, obligations, 1)
	require.Equal(t, int64(1), obligations[0].ReferenceID)
}

func TestSelectReceivablesMergesInvoicesAndServiceOrders(t *testing.T) {
	issued := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	invoices := []InvoiceRecord{
		{ID: 10, InvoiceNumber: "INV-10", CustomerID: 1, PaymentStatus: "Unpaid", FinalAmount: 500, IssuedDate: datePtr(issued)},
	}
	serviceOrders := []ServiceOrderRecord{
		{ID: 20, OrderNumber: "SO-20", CustomerID: 2, PaymentStatus: "Partial", FinalAmount: 300, OrderDate: issued},
	}

	obligations := SelectReceivables(invoices, serviceOrders, ClaimedServiceOrderIDs(invoices), SourceFilter{})
	require.Len(t, obligations, 2)
	require.Equal(t, SourceInvoice, obligations[0].SourceType)
	require.Equal(t, SourceServiceOrder, obligations[1].SourceType)
	require.Equal(t, int64(20)+ServiceOrderIDOffset, obligations[1].MergedID())
}

func TestSelectReceivablesExcludesClaimedServiceOrders(t *testing.T) {
	issued := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	soID := int64(20)
	invoices := []InvoiceRecord{
		{ID: 10, InvoiceNumber: "INV-10", CustomerID: 1, PaymentStatus: "Unpaid", FinalAmount: 500, IssuedDate: datePtr(issued), ServiceOrderID: &soID},
	}
	serviceOrders := []ServiceOrderRecord{
		{ID: 20, OrderNumber: "SO-20", CustomerID: 1, PaymentStatus: "Unpaid", FinalAmount: 500, OrderDate: issued},
	}

	obligations := SelectReceivables(invoices, serviceOrders, ClaimedServiceOrderIDs(invoices), SourceFilter{})
	require.Len(t, obligations, 1)
	require.Equal(t, SourceInvoice, obligations[0].SourceType)
}

func TestClaimedSetIgnoresCancelledInvoices(t *testing.T) {
	soID := int64(20)
	invoices := []InvoiceRecord{
		{ID: 10, CustomerID: 1, Status: "Cancelled", PaymentStatus: "Unpaid", FinalAmount: 500, ServiceOrderID: &soID},
	}

	claimed := ClaimedServiceOrderIDs(invoices)
	require.Empty(t, claimed)
}

func TestSelectReceivablesExcludesSettledAndCancelled(t *testing.T) {
	issued := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	invoices := []InvoiceRecord{
		{ID: 1, CustomerID: 1, PaymentStatus: "Paid", FinalAmount: 500, IssuedDate: datePtr(issued)},
		{ID: 2, CustomerID: 1, PaymentStatus: "Unpaid", Status: "Cancelled", FinalAmount: 500, IssuedDate: datePtr(issued)},
		{ID: 3, CustomerID: 1, PaymentStatus: "Unpaid", FinalAmount: 0, IssuedDate: datePtr(issued)},
		{ID: 4, CustomerID: 1, PaymentStatus: "Unpaid", FinalAmount: 500, IssuedDate: datePtr(issued), IsDeleted: true},
	}

	obligations := SelectReceivables(invoices, nil, ClaimedServiceOrderIDs(invoices), SourceFilter{})
	require.Empty(t, obligations)
}

func TestSelectReceivablesInvoiceDueDateOverride(t *testing.T) {
	issued := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	invoices := []InvoiceRecord{
		{ID: 1, CustomerID: 1, PaymentStatus: "Unpaid", FinalAmount: 500, IssuedDate: datePtr(issued), DueDate: datePtr(due)},
	}

	obligations := SelectReceivables(invoices, nil, ClaimedServiceOrderIDs(invoices), SourceFilter{})
	require.Len(t, obligations, 1)
	require.NotNil(t, obligations[0].DueDateOverride)
	require.Equal(t, due, *obligations[0].DueDateOverride)
}
