package domain

import "time"

type EventStatus string

const (
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Event is a capacity-limited cleanup event. The catalog owns these records;
// the reservation core reads them and never mutates them.
type Event struct {
	ID            string
	Name          string
	StartsAt      time.Time
	EndsAt        time.Time
	AttendanceCap int
	Status        EventStatus
	CreatedAt     time.Time
}
