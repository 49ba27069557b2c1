package aging

import "time"

// Reconcile joins obligations with their ledger aggregates, resolves due
// dates, and computes remaining balances and overdue days against the
// injected as-of date. Fully settled obligations are dropped.
//
// Pure function of its inputs; safe for concurrent, independent invocation.
func Reconcile(obligations []Obligation, ledger LedgerIndex, asOf time.Time) []ReconciledBalance {
	balances := make([]ReconciledBalance, 0, len(obligations))
	for _, obligation := range obligations {
		agg := ledger.Lookup(obligation.SourceType, obligation.ReferenceID)

		// An invoice inherits payments recorded against its claimed service
		// order before the invoice existed. The claimed order itself is not
		// an obligation, so the money is counted exactly once.
		if obligation.ClaimedServiceOrderID != nil {
			carried := ledger.Lookup(SourceServiceOrder, *obligation.ClaimedServiceOrderID)
			agg.Paid += carried.Paid
			if carried.LastPaymentDate != nil &&
				(agg.LastPaymentDate == nil || carried.LastPaymentDate.After(*agg.LastPaymentDate)) {
				agg.LastPaymentDate = carried.LastPaymentDate
			}
		}

		remaining := obligation.GrossAmount - agg.Paid
		if remaining <= 0 {
			continue
		}

		status := StatusPartial
		if agg.Paid == 0 {
			status = StatusUnpaid
		}

		dueDate := ResolveDueDate(obligation.ReferenceDateBase, obligation.CreditDays, asOf)
		if obligation.DueDateOverride != nil {
			dueDate = *obligation.DueDateOverride
		}

		balances = append(balances, ReconciledBalance{
			Obligation:      obligation,
			PaidAmount:      agg.Paid,
			LastPaymentDate: agg.LastPaymentDate,
			RemainingAmount: remaining,
			PaymentStatus:   status,
			DueDate:         dueDate,
			OverdueDays:     daysOverdue(dueDate, asOf),
		})
	}
	return balances
}
