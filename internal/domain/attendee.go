package domain

import "strings"

type AttendeeType string

const (
	AttendeeTypeVolunteer AttendeeType = "volunteer"
	AttendeeTypeMinor     AttendeeType = "minor"
)

// Attendee is one person in a submission: an adult volunteer identified by
// email, or a minor identified by a registry-issued minor ID.
type Attendee struct {
	Type      AttendeeType
	Email     string
	MinorID   string
	FirstName string
	LastName  string
	Age       int
}

// ID returns the reservation key for the attendee: the volunteer email or
// the minor ID.
func (a Attendee) ID() string {
	if a.Type == AttendeeTypeMinor {
		return a.MinorID
	}
	return strings.ToLower(a.Email)
}

func (a Attendee) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Minor is a guardian/minor registry entry. The registry is externally
// owned and read-only here.
type Minor struct {
	ID            string
	GuardianEmail string
	FirstName     string
	LastName      string
	Age           int
}
