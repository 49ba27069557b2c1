// Package workshop manages service orders and customer invoices, including
// payment recording against the financial ledger.
package workshop

import (
	"errors"
	"time"
)

var (
	// ErrAlreadySettled occurs when recording a payment against a fully
	// paid document.
	ErrAlreadySettled = errors.New("workshop: document already settled")
	// ErrOverpayment occurs when a payment exceeds the remaining balance.
	ErrOverpayment = errors.New("workshop: payment exceeds remaining balance")
	// ErrAlreadyInvoiced occurs when a service order is claimed by an
	// existing invoice.
	ErrAlreadyInvoiced = errors.New("workshop: service order already invoiced")
	// ErrNotBillable occurs when invoicing a cancelled or zero-amount
	// service order.
	ErrNotBillable = errors.New("workshop: service order not billable")
)

// PaymentStatus tracks settlement progress. Paid is terminal.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "Unpaid"
	PaymentPartial PaymentStatus = "Partial"
	PaymentPaid    PaymentStatus = "Paid"
)

// statusForPaid derives the payment status from amounts. Floating point dust
// below a tenth of a cent counts as settled.
func statusForPaid(paid, total float64) PaymentStatus {
	switch {
	case paid <= 0:
		return PaymentUnpaid
	case total-paid < 0.001:
		return PaymentPaid
	default:
		return PaymentPartial
	}
}

// ServiceOrder is one workshop job for a customer vehicle.
type ServiceOrder struct {
	ID            int64         `json:"id"`
	OrderNumber   string        `json:"orderNumber"`
	CustomerID    int64         `json:"customerId"`
	VehicleID     int64         `json:"vehicleId"`
	Status        string        `json:"status"`
	LaborCost     float64       `json:"laborCost"`
	PartsCost     float64       `json:"partsCost"`
	FinalAmount   float64       `json:"finalAmount"`
	AmountPaid    float64       `json:"amountPaid"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	OrderDate     time.Time     `json:"orderDate"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Service order lifecycle states.
const (
	OrderStatusOpen       = "Open"
	OrderStatusInProgress = "InProgress"
	OrderStatusCompleted  = "Completed"
	OrderStatusCancelled  = "Cancelled"
)

// ServiceOrderInput carries create/update fields.
type ServiceOrderInput struct {
	CustomerID int64     `json:"customerId" validate:"required,gt=0"`
	VehicleID  int64     `json:"vehicleId" validate:"required,gt=0"`
	LaborCost  float64   `json:"laborCost" validate:"gte=0"`
	PartsCost  float64   `json:"partsCost" validate:"gte=0"`
	OrderDate  time.Time `json:"orderDate"`
	Notes      string    `json:"notes" validate:"max=1000"`
}

// Invoice bills a customer, optionally claiming a service order so the same
// work is never billed twice.
type Invoice struct {
	ID             int64         `json:"id"`
	InvoiceNumber  string        `json:"invoiceNumber"`
	CustomerID     int64         `json:"customerId"`
	ServiceOrderID *int64        `json:"serviceOrderId,omitempty"`
	Status         string        `json:"status"`
	FinalAmount    float64       `json:"finalAmount"`
	PaidAmount     float64       `json:"paidAmount"`
	PaymentStatus  PaymentStatus `json:"paymentStatus"`
	IssuedDate     time.Time     `json:"issuedDate"`
	DueDate        *time.Time    `json:"dueDate,omitempty"`
	PaidDate       *time.Time    `json:"paidDate,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// Invoice lifecycle states.
const (
	InvoiceStatusIssued    = "Issued"
	InvoiceStatusCancelled = "Cancelled"
)

// InvoiceInput carries create fields for a standalone invoice.
type InvoiceInput struct {
	CustomerID  int64      `json:"customerId" validate:"required,gt=0"`
	FinalAmount float64    `json:"finalAmount" validate:"required,gt=0"`
	IssuedDate  time.Time  `json:"issuedDate"`
	DueDate     *time.Time `json:"dueDate"`
	Notes       string     `json:"notes" validate:"max=1000"`
}

// PaymentInput records money received against a document.
type PaymentInput struct {
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	PaymentDate time.Time `json:"paymentDate"`
	Description string    `json:"description" validate:"max=255"`
}

// OrderFilters narrows service order listings.
type OrderFilters struct {
	CustomerID    int64
	VehicleID     int64
	Status        string
	PaymentStatus PaymentStatus
}

// InvoiceFilters narrows invoice listings.
type InvoiceFilters struct {
	CustomerID    int64
	Status        string
	PaymentStatus PaymentStatus
}
