// Package procurement manages purchase orders placed with suppliers.
package procurement

import (
	"errors"
	"time"
)

var (
	// ErrNotReceivable occurs when marking a cancelled or already received
	// order as received.
	ErrNotReceivable = errors.New("procurement: order cannot be received")
	// ErrNotPayable occurs when paying an order that has not been received.
	ErrNotPayable = errors.New("procurement: only received orders are payable")
)

// Purchase order lifecycle states.
const (
	StatusPending   = "Pending"
	StatusOrdered   = "Ordered"
	StatusReceived  = "Received"
	StatusCancelled = "Cancelled"
)

// PurchaseOrder is an order placed with a supplier. Once Received it enters
// accounts payable.
type PurchaseOrder struct {
	ID           int64      `json:"id"`
	OrderNumber  string     `json:"orderNumber"`
	SupplierID   int64      `json:"supplierId"`
	Status       string     `json:"status"`
	TotalAmount  float64    `json:"totalAmount"`
	OrderDate    time.Time  `json:"orderDate"`
	ReceivedDate *time.Time `json:"receivedDate,omitempty"`
	CreditDays   *int       `json:"creditDays,omitempty"`
	PaymentTerms string     `json:"paymentTerms,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// PurchaseOrderInput carries create/update fields.
type PurchaseOrderInput struct {
	SupplierID   int64     `json:"supplierId" validate:"required,gt=0"`
	TotalAmount  float64   `json:"totalAmount" validate:"required,gt=0"`
	OrderDate    time.Time `json:"orderDate"`
	CreditDays   *int      `json:"creditDays" validate:"omitempty,gte=-1,lte=365"`
	PaymentTerms string    `json:"paymentTerms" validate:"max=64"`
	Notes        string    `json:"notes" validate:"max=1000"`
}

// PaymentInput records money paid to the supplier.
type PaymentInput struct {
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	PaymentDate time.Time `json:"paymentDate"`
	Description string    `json:"description" validate:"max=255"`
}

// ListFilters narrows purchase order listings.
type ListFilters struct {
	SupplierID int64
	Status     string
	FromDate   time.Time
	ToDate     time.Time
}
