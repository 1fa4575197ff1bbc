package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for order operations.
var (
	ErrNotFound       = errors.New("order not found")
	ErrEmptyItems     = errors.New("items required")
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// IllegalTransitionError indicates the requested status is not reachable
// from the current one.
type IllegalTransitionError struct {
	From string
	To   string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition from %s to %s", e.From, e.To)
}

// MissingRequiredFieldError indicates a field the target status requires
// was not supplied.
type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// OdometerRegressionError indicates an odometer reading below the vehicle's
// previously recorded maximum.
type OdometerRegressionError struct {
	Provided int
	PriorMax int
}

func (e *OdometerRegressionError) Error() string {
	return fmt.Sprintf("odometer %d km is below previously recorded %d km", e.Provided, e.PriorMax)
}

// LockedError indicates an attempt to edit an order outside its editable
// statuses.
type LockedError struct {
	Status string
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("order in status %s can not be edited", e.Status)
}
