// Package aging implements the accounts aging and reconciliation engine.
// It unifies obligations from purchase orders, invoices, and un-invoiced
// service orders, reconciles them against the append-only financial ledger,
// and classifies the remaining balances by days past due.
package aging

import (
	"errors"
	"time"
)

// Side selects which half of the ledger the engine operates on.
type Side string

const (
	// Payables covers money owed to suppliers (purchase orders).
	Payables Side = "payables"
	// Receivables covers money owed by customers (invoices and service orders).
	Receivables Side = "receivables"
)

// SourceType identifies the document family an obligation originates from.
type SourceType string

const (
	SourcePurchaseOrder SourceType = "PurchaseOrder"
	SourceInvoice       SourceType = "Invoice"
	SourceServiceOrder  SourceType = "ServiceOrder"
)

// PaymentStatus reflects how much of an obligation has been settled.
// Paid is terminal: fully settled obligations drop out of engine output.
type PaymentStatus string

const (
	StatusUnpaid  PaymentStatus = "Unpaid"
	StatusPartial PaymentStatus = "Partial"
	StatusPaid    PaymentStatus = "Paid"
)

// ServiceOrderIDOffset keeps ServiceOrder-origin rows from colliding with
// Invoice ids in the merged receivable key space.
const ServiceOrderIDOffset int64 = 1_000_000

// ErrDataSource marks a collaborator store fetch failure. The whole request
// fails; the engine never returns a partial result.
var ErrDataSource = errors.New("aging: data source fetch failed")

// Obligation is a derived, non-persisted unit of money owed, normalised from
// one of the three source document families.
type Obligation struct {
	SourceType        SourceType `json:"type"`
	ReferenceID       int64      `json:"referenceId"`
	ReferenceNumber   string     `json:"referenceNumber"`
	CounterpartyID    int64      `json:"counterpartyId"`
	CounterpartyName  string     `json:"counterpartyName"`
	CounterpartyPhone string     `json:"counterpartyPhone,omitempty"`
	CounterpartyEmail string     `json:"counterpartyEmail,omitempty"`
	GrossAmount       float64    `json:"totalAmount"`
	IssueDate         time.Time  `json:"issueDate"`
	Notes             string     `json:"notes,omitempty"`

	// ReferenceDateBase anchors the due-date policy: fulfilled/received date
	// when available, otherwise the order/issue date. Zero means unknown and
	// falls back to the as-of date at resolution time.
	ReferenceDateBase time.Time `json:"-"`
	// CreditDays is the resolved credit term. See ResolveCreditDays.
	CreditDays int `json:"creditDays"`
	// DueDateOverride carries a due date stored on the source document
	// (invoices); when set it wins over the credit-term policy.
	DueDateOverride *time.Time `json:"-"`
	// ClaimedServiceOrderID links an invoice obligation to the service order
	// it claims. Payments recorded against that order before invoicing are
	// keyed (ServiceOrder, id) in the ledger and still settle this invoice.
	ClaimedServiceOrderID *int64 `json:"-"`
}

// MergedID returns the obligation id in the merged key space, offsetting
// ServiceOrder-origin ids so they never collide with Invoice ids.
func (o Obligation) MergedID() int64 {
	if o.SourceType == SourceServiceOrder {
		return o.ReferenceID + ServiceOrderIDOffset
	}
	return o.ReferenceID
}

// ReconciledBalance joins an obligation with its ledger aggregate and
// resolved due date.
type ReconciledBalance struct {
	Obligation
	PaidAmount      float64       `json:"paidAmount"`
	LastPaymentDate *time.Time    `json:"lastPaymentDate,omitempty"`
	RemainingAmount float64       `json:"remainingAmount"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	DueDate         time.Time     `json:"dueDate"`
	OverdueDays     int           `json:"overdueDays"`
}

// LedgerEntry is an append-only record of money moved against a referenced
// document. Entries are created by payment recording and never mutated here.
type LedgerEntry struct {
	ID              int64
	TransactionType string
	SourceType      SourceType
	ReferenceID     int64
	Amount          float64
	TransactionDate time.Time
	IsDeleted       bool
}

// Counterparty is the directory record used for display enrichment.
type Counterparty struct {
	ID    int64
	Name  string
	Phone string
	Email string
}

// PurchaseOrderRecord is the raw payable source shape consumed from the
// purchase order store.
type PurchaseOrderRecord struct {
	ID           int64
	SupplierID   int64
	Status       string
	TotalAmount  float64
	OrderDate    time.Time
	ReceivedDate *time.Time
	CreditDays   *int
	PaymentTerms string
	OrderNumber  string
	Notes        string
	IsDeleted    bool
}

// InvoiceRecord is the raw receivable source shape consumed from the
// invoice store.
type InvoiceRecord struct {
	ID             int64
	InvoiceNumber  string
	CustomerID     int64
	PaymentStatus  string
	Status         string
	FinalAmount    float64
	PaidAmount     float64
	IssuedDate     *time.Time
	DueDate        *time.Time
	PaidDate       *time.Time
	ServiceOrderID *int64
	Notes          string
	IsDeleted      bool
}

// ServiceOrderRecord is the raw receivable source shape consumed from the
// service order store.
type ServiceOrderRecord struct {
	ID            int64
	OrderNumber   string
	CustomerID    int64
	PaymentStatus string
	Status        string
	FinalAmount   float64
	AmountPaid    float64
	OrderDate     time.Time
	Notes         string
	IsDeleted     bool
}

// startOfDay truncates to day granularity; overdue arithmetic ignores
// time of day.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// daysOverdue returns whole days between due date and as-of date, floored
// at zero.
func daysOverdue(dueDate, asOf time.Time) int {
	days := int(startOfDay(asOf).Sub(startOfDay(dueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
