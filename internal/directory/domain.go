// Package directory manages the customer and supplier registries and serves
// counterparty contact details to the rest of the system.
package directory

import "time"

// Customer is a registered vehicle owner.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Supplier is a parts vendor the workshop purchases from.
type Supplier struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contactPerson,omitempty"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	PaymentTerms  string    `json:"paymentTerms,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CustomerInput carries create/update fields for a customer.
type CustomerInput struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Phone   string `json:"phone" validate:"required,min=5,max=32"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address" validate:"max=255"`
	Notes   string `json:"notes" validate:"max=1000"`
}

// SupplierInput carries create/update fields for a supplier.
type SupplierInput struct {
	Name          string `json:"name" validate:"required,min=2,max=120"`
	ContactPerson string `json:"contactPerson" validate:"max=120"`
	Phone         string `json:"phone" validate:"required,min=5,max=32"`
	Email         string `json:"email" validate:"omitempty,email"`
	Address       string `json:"address" validate:"max=255"`
	PaymentTerms  string `json:"paymentTerms" validate:"max=64"`
}

// ListFilters narrows directory listings.
type ListFilters struct {
	Search string
}

// Contact is the minimal display tuple served to other packages and cached
// in Redis.
type Contact struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}
