package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidDateRange occurs when a from date is after the to date.
	ErrInvalidDateRange = errors.New("from date must not be after to date")
)
