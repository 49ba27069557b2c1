package aging

import "time"

// SourceFilter narrows source document selection before reconciliation.
// These filters depend only on stored fields, so stores may also push them
// into their queries; the adapter re-applies them to stay deterministic
// regardless of what the fetch returned.
type SourceFilter struct {
	CounterpartyID int64
	FromDate       time.Time
	ToDate         time.Time
}

func (f SourceFilter) matches(counterpartyID int64, issueDate time.Time) bool {
	if f.CounterpartyID > 0 && counterpartyID != f.CounterpartyID {
		return false
	}
	if !f.FromDate.IsZero() && issueDate.Before(f.FromDate) {
		return false
	}
	if !f.ToDate.IsZero() && issueDate.After(f.ToDate) {
		return false
	}
	return true
}

// SelectPayables normalises settleable purchase orders into obligations:
// received, positive amount, not deleted.
func SelectPayables(orders []PurchaseOrderRecord, filter SourceFilter) []Obligation {
	obligations := make([]Obligation, 0, len(orders))
	for _, po := range orders {
		if po.IsDeleted || po.Status != "Received" || po.TotalAmount <= 0 {
			continue
		}
		if !filter.matches(po.SupplierID, po.OrderDate) {
			continue
		}
		base := po.OrderDate
		if po.ReceivedDate != nil {
			base = *po.ReceivedDate
		}
		obligations = append(obligations, Obligation{
			SourceType:        SourcePurchaseOrder,
			ReferenceID:       po.ID,
			ReferenceNumber:   po.OrderNumber,
			CounterpartyID:    po.SupplierID,
			GrossAmount:       po.TotalAmount,
			IssueDate:         po.OrderDate,
			Notes:             po.Notes,
			ReferenceDateBase: base,
			CreditDays:        ResolveCreditDays(po.CreditDays, po.PaymentTerms),
		})
	}
	return obligations
}

// ClaimedServiceOrderIDs materialises the set of service order ids already
// claimed by any non-cancelled invoice. The set is computed once and
// subtracted, never checked per row, so the same economic claim is never
// counted twice.
func ClaimedServiceOrderIDs(invoices []InvoiceRecord) map[int64]struct{} {
	claimed := make(map[int64]struct{})
	for _, inv := range invoices {
		if inv.IsDeleted || inv.Status == "Cancelled" || inv.ServiceOrderID == nil {
			continue
		}
		claimed[*inv.ServiceOrderID] = struct{}{}
	}
	return claimed
}

// SelectReceivables normalises settleable invoices and un-invoiced service
// orders into obligations. claimed is the id set from
// ClaimedServiceOrderIDs, computed over all invoices rather than the
// filtered subset.
func SelectReceivables(invoices []InvoiceRecord, serviceOrders []ServiceOrderRecord, claimed map[int64]struct{}, filter SourceFilter) []Obligation {
	obligations := make([]Obligation, 0, len(invoices)+len(serviceOrders))

	for _, inv := range invoices {
		if !invoiceSettleable(inv) {
			continue
		}
		var issue time.Time
		if inv.IssuedDate != nil {
			issue = *inv.IssuedDate
		}
		if !filter.matches(inv.CustomerID, issue) {
			continue
		}
		obligations = append(obligations, Obligation{
			SourceType:            SourceInvoice,
			ReferenceID:           inv.ID,
			ReferenceNumber:       inv.InvoiceNumber,
			CounterpartyID:        inv.CustomerID,
			GrossAmount:           inv.FinalAmount,
			IssueDate:             issue,
			Notes:                 inv.Notes,
			ReferenceDateBase:     issue,
			CreditDays:            DefaultCreditDays,
			DueDateOverride:       inv.DueDate,
			ClaimedServiceOrderID: inv.ServiceOrderID,
		})
	}

	for _, so := range serviceOrders {
		if !serviceOrderSettleable(so) {
			continue
		}
		if _, ok := claimed[so.ID]; ok {
			continue
		}
		if !filter.matches(so.CustomerID, so.OrderDate) {
			continue
		}
		obligations = append(obligations, Obligation{
			SourceType:        SourceServiceOrder,
			ReferenceID:       so.ID,
			ReferenceNumber:   so.OrderNumber,
			CounterpartyID:    so.CustomerID,
			GrossAmount:       so.FinalAmount,
			IssueDate:         so.OrderDate,
			Notes:             so.Notes,
			ReferenceDateBase: so.OrderDate,
			CreditDays:        DefaultCreditDays,
		})
	}

	return obligations
}

func invoiceSettleable(inv InvoiceRecord) bool {
	if inv.IsDeleted || inv.Status == "Cancelled" || inv.FinalAmount <= 0 {
		return false
	}
	if inv.PaymentStatus != string(StatusUnpaid) && inv.PaymentStatus != string(StatusPartial) {
		return false
	}
	return true
}

func serviceOrderSettleable(so ServiceOrderRecord) bool {
	if so.IsDeleted || so.Status == "Cancelled" || so.FinalAmount <= 0 {
		return false
	}
	if so.PaymentStatus != string(StatusUnpaid) && so.PaymentStatus != string(StatusPartial) {
		return false
	}
	return true
}
