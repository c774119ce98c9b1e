package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the seat inventory domain. Handlers map these to
// HTTP status codes; services wrap them with context where useful.
var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrBookingNotFound = errors.New("booking not found")
)

// ValidationError indicates a malformed or incomplete request
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a formatted message
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// SeatConflictError is returned when one or more requested seats cannot be
// taken. The whole request fails; UnavailableSeats names every offender.
type SeatConflictError struct {
	UnavailableSeats []int `json:"unavailable_seats"`
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("%d seat(s) unavailable: %v", len(e.UnavailableSeats), e.UnavailableSeats)
}
