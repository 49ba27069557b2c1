// Package vehicles manages the vehicle registry. Every vehicle belongs to a
// customer from the directory.
package vehicles

import "time"

// Vehicle is a registered customer vehicle.
type Vehicle struct {
	ID           int64     `json:"id"`
	CustomerID   int64     `json:"customerId"`
	LicensePlate string    `json:"licensePlate"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year,omitempty"`
	VIN          string    `json:"vin,omitempty"`
	Color        string    `json:"color,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// VehicleInput carries create/update fields.
type VehicleInput struct {
	CustomerID   int64  `json:"customerId" validate:"required,gt=0"`
	LicensePlate string `json:"licensePlate" validate:"required,min=2,max=16"`
	Make         string `json:"make" validate:"required,max=64"`
	Model        string `json:"model" validate:"required,max=64"`
	Year         int    `json:"year" validate:"omitempty,gte=1950,lte=2100"`
	VIN          string `json:"vin" validate:"omitempty,len=17"`
	Color        string `json:"color" validate:"max=32"`
	Notes        string `json:"notes" validate:"max=1000"`
}

// ListFilters narrows vehicle listings.
type ListFilters struct {
	CustomerID int64
	Search     string
}
