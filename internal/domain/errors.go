package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrEventAlreadyExists   = errors.New("event already exists")
	ErrEventNameRequired    = errors.New("event name required")
	ErrInvalidCapacity      = errors.New("attendance cap must be positive")
	ErrInvalidEventTimes    = errors.New("event must end after it starts")
	ErrReservationNotFound  = errors.New("no active reservation found")
	ErrUnauthorized         = errors.New("not authorized to cancel this reservation")
	ErrPastEvent            = errors.New("registration closed: event has already started")
	ErrCancellationWindow   = errors.New("cancellations are not allowed within 24 hours of the event")
	ErrDuplicateReservation = errors.New("reservation already exists")
	ErrWriteConflict        = errors.New("reservation write conflict, retry the submission")
)

// ValidationError reports malformed input rejected before any store access.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// DuplicateError is returned when every attendee in a batch already holds an
// active reservation. Names are surfaced so the caller can adjust and resubmit.
type DuplicateError struct {
	Names []string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("already registered: %s", strings.Join(e.Names, ", "))
}

// CapacityError rejects a whole batch that would exceed the attendance cap.
// Remaining tells the caller how many slots are still open.
type CapacityError struct {
	Current   int
	Cap       int
	Remaining int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("event is at capacity: %d of %d registered, %d remaining", e.Current, e.Cap, e.Remaining)
}
