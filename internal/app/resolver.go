package app

import (
	"strings"

	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/domain"
)

// AttendeeInput is one attendee descriptor in a submission.
type AttendeeInput struct {
	Type      string
	Email     string
	MinorID   string
	FirstName string
	LastName  string
	Age       int
}

// SubmitInput carries both accepted submission shapes: the explicit
// attendees list, and the legacy single-volunteer fields (email plus names
// at the top level). When both are present the explicit list wins.
type SubmitInput struct {
	EventID        string
	RequesterEmail string
	FirstName      string
	LastName       string
	Attendees      []AttendeeInput
}

// resolveAttendees normalizes a submission into a non-empty ordered attendee
// list plus the submitting guardian's email. It is pure: no store access, no
// side effects.
func resolveAttendees(in SubmitInput) ([]domain.Attendee, string, error) {
	if in.EventID == "" {
		return nil, "", domain.Validationf("event_id is required")
	}

	// A present-but-empty list is distinct from an absent one: the caller
	// asked for the explicit shape and supplied nobody.
	if in.Attendees != nil && len(in.Attendees) == 0 {
		return nil, "", domain.Validationf("attendees list is empty")
	}

	if len(in.Attendees) == 0 {
		return resolveLegacy(in)
	}

	attendees := make([]domain.Attendee, 0, len(in.Attendees))
	for i, d := range in.Attendees {
		a, err := resolveDescriptor(i, d)
		if err != nil {
			return nil, "", err
		}
		attendees = append(attendees, a)
	}

	guardian := normalizeEmail(in.RequesterEmail)
	if guardian == "" {
		for _, a := range attendees {
			if a.Type == domain.AttendeeTypeVolunteer {
				guardian = a.ID()
				break
			}
		}
	}
	if guardian == "" {
		return nil, "", domain.Validationf("no identifying email in submission")
	}
	return attendees, guardian, nil
}

func resolveLegacy(in SubmitInput) ([]domain.Attendee, string, error) {
	email := normalizeEmail(in.RequesterEmail)
	if email == "" {
		return nil, "", domain.Validationf("no identifying email in submission")
	}
	if in.FirstName == "" || in.LastName == "" {
		return nil, "", domain.Validationf("first_name and last_name are required")
	}
	attendee := domain.Attendee{
		Type:      domain.AttendeeTypeVolunteer,
		Email:     email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	return []domain.Attendee{attendee}, email, nil
}

func resolveDescriptor(i int, d AttendeeInput) (domain.Attendee, error) {
	switch domain.AttendeeType(d.Type) {
	case domain.AttendeeTypeVolunteer:
		email := normalizeEmail(d.Email)
		if email == "" {
			return domain.Attendee{}, domain.Validationf("attendee %d: volunteer missing email", i)
		}
		return domain.Attendee{
			Type:      domain.AttendeeTypeVolunteer,
			Email:     email,
			FirstName: d.FirstName,
			LastName:  d.LastName,
		}, nil
	case domain.AttendeeTypeMinor:
		if d.MinorID == "" {
			return domain.Attendee{}, domain.Validationf("attendee %d: minor missing minor_id", i)
		}
		if d.FirstName == "" || d.LastName == "" {
			return domain.Attendee{}, domain.Validationf("attendee %d: minor missing name", i)
		}
		return domain.Attendee{
			Type:      domain.AttendeeTypeMinor,
			MinorID:   d.MinorID,
			FirstName: d.FirstName,
			LastName:  d.LastName,
			Age:       d.Age,
		}, nil
	default:
		return domain.Attendee{}, domain.Validationf("attendee %d: type must be volunteer or minor", i)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
