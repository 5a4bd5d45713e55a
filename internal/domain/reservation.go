package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// Reservation is one attendee's registration for one event and the unit of
// capacity consumption. Cancelled reservations are tombstoned rather than
// deleted so the history stays auditable.
type Reservation struct {
	ID            string
	EventID       string
	AttendeeID    string
	AttendeeType  AttendeeType
	GuardianEmail string
	FirstName     string
	LastName      string
	Age           int
	Status        ReservationStatus
	CreatedAt     time.Time
	CancelledAt   *time.Time
}

func (r Reservation) FullName() string {
	name := r.FirstName
	if r.LastName != "" {
		if name != "" {
			name += " "
		}
		name += r.LastName
	}
	return name
}
