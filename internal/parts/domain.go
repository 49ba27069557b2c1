// Package parts manages the spare-parts catalogue and stock levels.
package parts

import (
	"errors"
	"time"
)

// ErrInsufficientStock occurs when a deduction would push stock negative.
var ErrInsufficientStock = errors.New("parts: insufficient stock")

// Part is a catalogue item with its current stock position.
type Part struct {
	ID            int64     `json:"id"`
	PartNumber    string    `json:"partNumber"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category,omitempty"`
	UnitPrice     float64   `json:"unitPrice"`
	CostPrice     float64   `json:"costPrice"`
	StockQuantity int       `json:"stockQuantity"`
	MinimumStock  int       `json:"minimumStock"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// LowStock reports whether the part is at or below its reorder point.
func (p Part) LowStock() bool {
	return p.StockQuantity <= p.MinimumStock
}

// PartInput carries create/update fields.
type PartInput struct {
	PartNumber    string  `json:"partNumber" validate:"required,min=2,max=64"`
	Name          string  `json:"name" validate:"required,min=2,max=120"`
	Description   string  `json:"description" validate:"max=1000"`
	Category      string  `json:"category" validate:"max=64"`
	UnitPrice     float64 `json:"unitPrice" validate:"gte=0"`
	CostPrice     float64 `json:"costPrice" validate:"gte=0"`
	StockQuantity int     `json:"stockQuantity" validate:"gte=0"`
	MinimumStock  int     `json:"minimumStock" validate:"gte=0"`
}

// StockAdjustment moves stock by a signed delta with an audit reason.
type StockAdjustment struct {
	Delta  int    `json:"delta" validate:"required,ne=0"`
	Reason string `json:"reason" validate:"required,max=255"`
}

// ListFilters narrows part listings.
type ListFilters struct {
	Search   string
	Category string
	LowStock bool
}
