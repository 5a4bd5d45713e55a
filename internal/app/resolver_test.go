package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/domain"
)

func TestResolveAttendees(t *testing.T) {
	t.Parallel()

	t.Run("legacy shape yields one volunteer", func(t *testing.T) {
		attendees, guardian, err := resolveAttendees(SubmitInput{
			EventID:        "cleanup-1",
			RequesterEmail: "Jane@Example.com",
			FirstName:      "Jane",
			LastName:       "Smith",
		})
		require.NoError(t, err)
		require.Equal(t, "jane@example.com", guardian)
		require.Len(t, attendees, 1)
		require.Equal(t, domain.AttendeeTypeVolunteer, attendees[0].Type)
		require.Equal(t, "jane@example.com", attendees[0].ID())
	})

	t.Run("explicit list preserves order and types", func(t *testing.T) {
		attendees, guardian, err := resolveAttendees(SubmitInput{
			EventID:        "cleanup-1",
			RequesterEmail: "guardian@example.com",
			Attendees: []AttendeeInput{
				{Type: "volunteer", Email: "guardian@example.com", FirstName: "Jane", LastName: "Smith"},
				{Type: "minor", MinorID: "minor-123", FirstName: "Billy", LastName: "Smith", Age: 10},
			},
		})
		require.NoError(t, err)
		require.Equal(t, "guardian@example.com", guardian)
		require.Len(t, attendees, 2)
		require.Equal(t, domain.AttendeeTypeVolunteer, attendees[0].Type)
		require.Equal(t, domain.AttendeeTypeMinor, attendees[1].Type)
		require.Equal(t, "minor-123", attendees[1].ID())
		require.Equal(t, 10, attendees[1].Age)
	})

	t.Run("explicit list takes precedence over legacy fields", func(t *testing.T) {
		attendees, _, err := resolveAttendees(SubmitInput{
			EventID:        "cleanup-1",
			RequesterEmail: "guardian@example.com",
			FirstName:      "Legacy",
			LastName:       "Fields",
			Attendees: []AttendeeInput{
				{Type: "volunteer", Email: "other@example.com", FirstName: "Explicit", LastName: "Wins"},
			},
		})
		require.NoError(t, err)
		require.Len(t, attendees, 1)
		require.Equal(t, "other@example.com", attendees[0].ID())
	})

	t.Run("guardian falls back to first volunteer email", func(t *testing.T) {
		_, guardian, err := resolveAttendees(SubmitInput{
			EventID: "cleanup-1",
			Attendees: []AttendeeInput{
				{Type: "minor", MinorID: "minor-1", FirstName: "Billy", LastName: "Smith"},
				{Type: "volunteer", Email: "adult@example.com", FirstName: "Jane", LastName: "Smith"},
			},
		})
		require.NoError(t, err)
		require.Equal(t, "adult@example.com", guardian)
	})

	t.Run("present but empty list is rejected", func(t *testing.T) {
		_, _, err := resolveAttendees(SubmitInput{
			EventID:        "cleanup-1",
			RequesterEmail: "jane@example.com",
			Attendees:      []AttendeeInput{},
		})
		var validation *domain.ValidationError
		require.ErrorAs(t, err, &validation)
	})

	t.Run("no identifying email anywhere", func(t *testing.T) {
		_, _, err := resolveAttendees(SubmitInput{
			EventID: "cleanup-1",
			Attendees: []AttendeeInput{
				{Type: "minor", MinorID: "minor-1", FirstName: "Billy", LastName: "Smith"},
			},
		})
		var validation *domain.ValidationError
		require.ErrorAs(t, err, &validation)
	})

	t.Run("volunteer missing email", func(t *testing.T) {
		_, _, err := resolveAttendees(SubmitInput{
			EventID:        "cleanup-1",
			RequesterEmail: "jane@example.com",
			Attendees: []AttendeeInput{
				{Type: "volunteer", FirstName: "Jane", LastName: "Smith"},
			},
		})
		var validation *domain.ValidationError
		require.ErrorAs(t, err, &validation)
	})

	t.Run("minor missing minor_id", func(t *testing.T) {
		_, _, err := resolveAttendees(SubmitInput{
			EventID:        "cleanup-1",
			RequesterEmail: "jane@example.com",
			Attendees: []AttendeeInput{
				{Type: "minor", FirstName: "Billy", LastName: "Smith"},
			},
		})
		var validation *domain.ValidationError
		require.ErrorAs(t, err, &validation)
	})

	t.Run("minor missing name", func(t *testing.T) {
		_, _, err := resolveAttendees(SubmitInput{
			EventID:        "cleanup-1",
			RequesterEmail: "jane@example.com",
			Attendees: []AttendeeInput{
				{Type: "minor", MinorID: "minor-1"},
			},
		})
		var validation *domain.ValidationError
		require.ErrorAs(t, err, &validation)
	})

	t.Run("unknown attendee type", func(t *testing.T) {
		_, _, err := resolveAttendees(SubmitInput{
			EventID:        "cleanup-1",
			RequesterEmail: "jane@example.com",
			Attendees: []AttendeeInput{
				{Type: "pet", FirstName: "Rex", LastName: "Smith"},
			},
		})
		var validation *domain.ValidationError
		require.ErrorAs(t, err, &validation)
	})

	t.Run("missing event id", func(t *testing.T) {
		_, _, err := resolveAttendees(SubmitInput{
			RequesterEmail: "jane@example.com",
			FirstName:      "Jane",
			LastName:       "Smith",
		})
		var validation *domain.ValidationError
		require.ErrorAs(t, err, &validation)
	})
}
