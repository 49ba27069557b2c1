// Package appointments manages workshop bookings.
package appointments

import (
	"errors"
	"time"
)

// ErrInvalidTransition occurs when a status change is not allowed from the
// current status.
var ErrInvalidTransition = errors.New("appointments: invalid status transition")

// Status is the appointment lifecycle state.
type Status string

const (
	StatusScheduled  Status = "Scheduled"
	StatusConfirmed  Status = "Confirmed"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
	StatusNoShow     Status = "NoShow"
)

// allowedTransitions encodes the lifecycle. Completed, Cancelled, and NoShow
// are terminal.
var allowedTransitions = map[Status][]Status{
	StatusScheduled:  {StatusConfirmed, StatusInProgress, StatusCancelled, StatusNoShow},
	StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to Status) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Appointment is a scheduled workshop visit.
type Appointment struct {
	ID            int64     `json:"id"`
	CustomerID    int64     `json:"customerId"`
	VehicleID     int64     `json:"vehicleId"`
	ScheduledAt   time.Time `json:"scheduledAt"`
	EstimatedMins int       `json:"estimatedMinutes"`
	ServiceType   string    `json:"serviceType"`
	Status        Status    `json:"status"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// AppointmentInput carries create/update fields.
type AppointmentInput struct {
	CustomerID    int64     `json:"customerId" validate:"required,gt=0"`
	VehicleID     int64     `json:"vehicleId" validate:"required,gt=0"`
	ScheduledAt   time.Time `json:"scheduledAt" validate:"required"`
	EstimatedMins int       `json:"estimatedMinutes" validate:"gte=0,lte=1440"`
	ServiceType   string    `json:"serviceType" validate:"required,max=120"`
	Notes         string    `json:"notes" validate:"max=1000"`
}

// ListFilters narrows appointment listings.
type ListFilters struct {
	CustomerID int64
	VehicleID  int64
	Status     Status
	FromDate   time.Time
	ToDate     time.Time
}
