// Package ledger is the append-only financial transaction store. Entries are
// created and soft-deleted, never updated; reconciliation reads them as the
// sole authority on paid amounts.
package ledger

import "time"

// TransactionType is the money direction.
type TransactionType string

const (
	TypeIncome  TransactionType = "Income"
	TypeExpense TransactionType = "Expense"
)

// SourceType names the document family a transaction settles.
type SourceType string

const (
	SourceInvoice       SourceType = "Invoice"
	SourcePurchaseOrder SourceType = "PurchaseOrder"
	SourceServiceOrder  SourceType = "ServiceOrder"
)

// Transaction is one ledger row. Negative amounts are refunds.
type Transaction struct {
	ID                int64           `json:"id"`
	TransactionNumber string          `json:"transactionNumber"`
	TransactionType   TransactionType `json:"transactionType"`
	SourceType        SourceType      `json:"sourceType"`
	ReferenceID       int64           `json:"referenceId"`
	Amount            float64         `json:"amount"`
	Description       string          `json:"description,omitempty"`
	TransactionDate   time.Time       `json:"transactionDate"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// TransactionInput carries create fields.
type TransactionInput struct {
	TransactionType TransactionType `json:"transactionType" validate:"required,oneof=Income Expense"`
	SourceType      SourceType      `json:"sourceType" validate:"required,oneof=Invoice PurchaseOrder ServiceOrder"`
	ReferenceID     int64           `json:"referenceId" validate:"required,gt=0"`
	Amount          float64         `json:"amount" validate:"required,ne=0"`
	Description     string          `json:"description" validate:"max=255"`
	TransactionDate time.Time       `json:"transactionDate"`
}

// ListFilters narrows transaction listings.
type ListFilters struct {
	TransactionType TransactionType
	SourceType      SourceType
	ReferenceID     int64
	FromDate        time.Time
	ToDate          time.Time
}
