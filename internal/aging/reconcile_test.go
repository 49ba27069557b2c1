package aging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAggregateLedgerSumsPerReference(t *testing.T) {
	jan5 := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	jan9 := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)
	entries := []LedgerEntry{
		{ID: 1, SourceType: SourcePurchaseOrder, ReferenceID: 1, Amount: 1_000_000, TransactionDate: jan5},
		{ID: 2, SourceType: SourcePurchaseOrder, ReferenceID: 1, Amount: 3_000_000, TransactionDate: jan9},
		{ID: 3, SourceType: SourcePurchaseOrder, ReferenceID: 2, Amount: 500, TransactionDate: jan5},
		{ID: 4, SourceType: SourcePurchaseOrder, ReferenceID: 1, Amount: 999, TransactionDate: jan9, IsDeleted: true},
	}

	index := AggregateLedger(entries, DefaultLedgerPolicy)
	agg := index.Lookup(SourcePurchaseOrder, 1)
	require.Equal(t, float64(4_000_000), agg.Paid)
	require.Equal(t, jan9, *agg.LastPaymentDate)

	// Same numeric id under a different source type is a different key.
	require.Zero(t, index.Lookup(SourceInvoice, 1).Paid)
}

func TestAggregateLedgerRefundPolicy(t *testing.T) {
	jan := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	entries := []LedgerEntry{
		{ID: 1, SourceType: SourceInvoice, ReferenceID: 1, Amount: 1000, TransactionDate: jan},
		{ID: 2, SourceType: SourceInvoice, ReferenceID: 1, Amount: -200, TransactionDate: jan.AddDate(0, 0, 1)},
	}

	withRefunds := AggregateLedger(entries, LedgerPolicy{IncludeRefunds: true})
	require.Equal(t, float64(800), withRefunds.Lookup(SourceInvoice, 1).Paid)

	withoutRefunds := AggregateLedger(entries, LedgerPolicy{IncludeRefunds: false})
	require.Equal(t, float64(1000), withoutRefunds.Lookup(SourceInvoice, 1).Paid)
}

func TestReconcilePartialPayment(t *testing.T) {
	received := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	obligations := []Obligation{{
		SourceType:        SourcePurchaseOrder,
		ReferenceID:       1,
		GrossAmount:       10_000_000,
		IssueDate:         received,
		ReferenceDateBase: received,
		CreditDays:        30,
	}}
	paymentDate := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	ledger := AggregateLedger([]LedgerEntry{
		{ID: 1, SourceType: SourcePurchaseOrder, ReferenceID: 1, Amount: 4_000_000, TransactionDate: paymentDate},
	}, DefaultLedgerPolicy)

	balances := Reconcile(obligations, ledger, asOf)
	require.Len(t, balances, 1)

	balance := balances[0]
	require.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), balance.DueDate)
	require.Equal(t, 15, balance.OverdueDays)
	require.Equal(t, float64(6_000_000), balance.RemainingAmount)
	require.Equal(t, StatusPartial, balance.PaymentStatus)
	require.Equal(t, paymentDate, *balance.LastPaymentDate)
	require.Equal(t, Bucket1To30, Classify(balance.OverdueDays))
}

func TestReconcileInvoiceInheritsServiceOrderPayments(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	soID := int64(20)
	obligations := []Obligation{{
		SourceType:            SourceInvoice,
		ReferenceID:           10,
		GrossAmount:           500,
		IssueDate:             issued,
		ReferenceDateBase:     issued,
		CreditDays:            30,
		ClaimedServiceOrderID: &soID,
	}}
	feb1 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	feb5 := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	ledger := AggregateLedger([]LedgerEntry{
		// Paid against the service order before it was invoiced.
		{ID: 1, SourceType: SourceServiceOrder, ReferenceID: 20, Amount: 200, TransactionDate: feb1},
		{ID: 2, SourceType: SourceInvoice, ReferenceID: 10, Amount: 100, TransactionDate: feb5},
	}, DefaultLedgerPolicy)

	balances := Reconcile(obligations, ledger, asOf)
	require.Len(t, balances, 1)
	require.Equal(t, float64(300), balances[0].PaidAmount)
	require.Equal(t, float64(200), balances[0].RemainingAmount)
	require.Equal(t, StatusPartial, balances[0].PaymentStatus)
	require.Equal(t, feb5, *balances[0].LastPaymentDate)
}

func TestReconcileDropsFullySettled(t *testing.T) {
	asOf := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	obligations := []Obligation{
		{SourceType: SourceInvoice, ReferenceID: 1, GrossAmount: 1000, ReferenceDateBase: asOf, CreditDays: 30},
		{SourceType: SourceInvoice, ReferenceID: 2, GrossAmount: 1000, ReferenceDateBase: asOf, CreditDays: 30},
	}
	ledger := AggregateLedger([]LedgerEntry{
		{ID: 1, SourceType: SourceInvoice, ReferenceID: 1, Amount: 1000, TransactionDate: asOf},
		{ID: 2, SourceType: SourceInvoice, ReferenceID: 2, Amount: 1200, TransactionDate: asOf},
	}, DefaultLedgerPolicy)

	require.Empty(t, Reconcile(obligations, ledger, asOf))
}

func TestReconcileUnpaidWithoutLedgerEntries(t *testing.T) {
	asOf := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	obligations := []Obligation{
		{SourceType: SourceServiceOrder, ReferenceID: 1, GrossAmount: 750, ReferenceDateBase: asOf, CreditDays: 30},
	}

	balances := Reconcile(obligations, LedgerIndex{}, asOf)
	require.Len(t, balances, 1)
	require.Equal(t, StatusUnpaid, balances[0].PaymentStatus)
	require.Zero(t, balances[0].PaidAmount)
	require.Nil(t, balances[0].LastPaymentDate)
	require.Equal(t, float64(750), balances[0].RemainingAmount)
}

func TestReconcileNonPositiveCreditDaysDueAtBase(t *testing.T) {
	received := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	creditDays := -5
	obligations := []Obligation{{
		SourceType:        SourcePurchaseOrder,
		ReferenceID:       1,
		GrossAmount:       100,
		ReferenceDateBase: received,
		CreditDays:        creditDays,
	}}

	balances := Reconcile(obligations, LedgerIndex{}, asOf)
	require.Len(t, balances, 1)
	require.Equal(t, received, balances[0].DueDate)
	require.Equal(t, 10, balances[0].OverdueDays)
}

func TestReconcileDueDateOverrideWins(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	override := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	obligations := []Obligation{{
		SourceType:        SourceInvoice,
		ReferenceID:       1,
		GrossAmount:       100,
		ReferenceDateBase: issued,
		CreditDays:        30,
		DueDateOverride:   &override,
	}}

	balances := Reconcile(obligations, LedgerIndex{}, asOf)
	require.Len(t, balances, 1)
	require.Equal(t, override, balances[0].DueDate)
	require.Zero(t, balances[0].OverdueDays)
}

func TestClassifyBucketBoundaries(t *testing.T) {
	require.Equal(t, BucketOnTime, Classify(0))
	require.Equal(t, Bucket1To30, Classify(1))
	require.Equal(t, Bucket1To30, Classify(30))
	require.Equal(t, Bucket31To60, Classify(31))
	require.Equal(t, Bucket31To60, Classify(60))
	require.Equal(t, BucketOver60, Classify(61))
}

func TestDaysOverdueFlooredAtZero(t *testing.T) {
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.Zero(t, daysOverdue(due, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)))
	require.Zero(t, daysOverdue(due, due))
	require.Equal(t, 1, daysOverdue(due, time.Date(2024, 3, 2, 23, 59, 0, 0, time.UTC)))
}
