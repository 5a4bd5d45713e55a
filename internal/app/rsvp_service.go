package app

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/clock"
	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/domain"
	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/platform/metrics"
)

// RSVPRepository is what the submit path needs from the reservation store.
// GetEventForUpdate must lock the event row so concurrent admissions for the
// same event serialize at the store.
type RSVPRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEventForUpdate(ctx context.Context, eventID string) (domain.Event, error)
	FindActiveByAttendeeIDs(ctx context.Context, eventID string, attendeeIDs []string) ([]domain.Reservation, error)
	CountActive(ctx context.Context, eventID string) (int, error)
	CreateReservations(ctx context.Context, reservations []domain.Reservation) error
}

// MinorRegistry is the externally owned guardian/minor link store, read-only.
type MinorRegistry interface {
	FindByIDs(ctx context.Context, minorIDs []string) (map[string]domain.Minor, error)
}

type RSVPService struct {
	repo    RSVPRepository
	minors  MinorRegistry
	clock   clock.Clock
	metrics *metrics.Metrics
}

func NewRSVPService(repo RSVPRepository, minors MinorRegistry, clk clock.Clock, m *metrics.Metrics) *RSVPService {
	return &RSVPService{
		repo:    repo,
		minors:  minors,
		clock:   clk,
		metrics: m,
	}
}

// SubmitResult reports the outcome of an admitted batch. AlreadyRegistered
// carries the non-blocking duplicates skipped on partial overlap.
type SubmitResult struct {
	Registered        []domain.Reservation
	AlreadyRegistered []domain.Reservation
	CurrentAttendance int
	AttendanceCap     int
}

// Submit normalizes a submission, filters duplicates, admits the batch
// against live attendance, and writes all new reservations atomically. The
// whole decision runs in one transaction holding the event row lock, so two
// racing submissions for the same event cannot both pass the capacity check.
func (s *RSVPService) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	attendees, guardian, err := resolveAttendees(in)
	if err != nil {
		s.metrics.IncRejections("validation")
		return SubmitResult{}, err
	}
	attendees = dedupeAttendees(attendees)

	if err := s.verifyGuardianship(ctx, attendees, guardian); err != nil {
		s.metrics.IncRejections("validation")
		return SubmitResult{}, err
	}

	now := s.clock.Now()
	var result SubmitResult

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEventForUpdate(txCtx, in.EventID)
		if err != nil {
			return err
		}
		if err := checkRegistrationOpen(now, event.StartsAt); err != nil {
			return err
		}

		ids := make([]string, len(attendees))
		for i, a := range attendees {
			ids[i] = a.ID()
		}
		existing, err := s.repo.FindActiveByAttendeeIDs(txCtx, in.EventID, ids)
		if err != nil {
			return err
		}
		registered := make(map[string]domain.Reservation, len(existing))
		for _, r := range existing {
			registered[r.AttendeeID] = r
		}

		var newAttendees []domain.Attendee
		var duplicates []domain.Reservation
		for _, a := range attendees {
			if r, ok := registered[a.ID()]; ok {
				duplicates = append(duplicates, r)
				continue
			}
			newAttendees = append(newAttendees, a)
		}
		if len(newAttendees) == 0 {
			names := make([]string, len(duplicates))
			for i, r := range duplicates {
				names[i] = r.FullName()
			}
			return &domain.DuplicateError{Names: names}
		}

		current, err := s.repo.CountActive(txCtx, in.EventID)
		if err != nil {
			return err
		}
		if current+len(newAttendees) > event.AttendanceCap {
			remaining := event.AttendanceCap - current
			if remaining < 0 {
				remaining = 0
			}
			return &domain.CapacityError{
				Current:   current,
				Cap:       event.AttendanceCap,
				Remaining: remaining,
			}
		}

		batch := make([]domain.Reservation, len(newAttendees))
		for i, a := range newAttendees {
			r := domain.Reservation{
				ID:           uuid.NewString(),
				EventID:      in.EventID,
				AttendeeID:   a.ID(),
				AttendeeType: a.Type,
				FirstName:    a.FirstName,
				LastName:     a.LastName,
				Status:       domain.ReservationStatusActive,
				CreatedAt:    now,
			}
			if a.Type == domain.AttendeeTypeMinor {
				r.GuardianEmail = guardian
				r.Age = a.Age
			}
			batch[i] = r
		}

		if err := s.repo.CreateReservations(txCtx, batch); err != nil {
			// A unique violation means a concurrent writer registered one of
			// these attendees between our filter and the insert. The whole
			// batch aborted; a resubmission goes back through the duplicate
			// filter, so the retry is safe.
			if errors.Is(err, domain.ErrDuplicateReservation) {
				return domain.ErrWriteConflict
			}
			return err
		}

		result = SubmitResult{
			Registered:        batch,
			AlreadyRegistered: duplicates,
			CurrentAttendance: current + len(batch),
			AttendanceCap:     event.AttendanceCap,
		}
		return nil
	})
	if err != nil {
		s.countSubmitRejection(err)
		return SubmitResult{}, err
	}

	for _, r := range result.Registered {
		s.metrics.IncReservationsCreated(string(r.AttendeeType), 1)
	}
	return result, nil
}

// verifyGuardianship checks every minor in the batch against the registry
// before any reservation write: a minor not linked to the submitting
// guardian is malformed input and never reaches the admission check.
func (s *RSVPService) verifyGuardianship(ctx context.Context, attendees []domain.Attendee, guardian string) error {
	var minorIDs []string
	for _, a := range attendees {
		if a.Type == domain.AttendeeTypeMinor {
			minorIDs = append(minorIDs, a.MinorID)
		}
	}
	if len(minorIDs) == 0 {
		return nil
	}

	links, err := s.minors.FindByIDs(ctx, minorIDs)
	if err != nil {
		return err
	}
	for _, id := range minorIDs {
		link, ok := links[id]
		if !ok {
			return domain.Validationf("minor %s is not registered", id)
		}
		if normalizeEmail(link.GuardianEmail) != guardian {
			return domain.Validationf("minor %s is not linked to %s", id, guardian)
		}
	}
	return nil
}

func (s *RSVPService) countSubmitRejection(err error) {
	var dup *domain.DuplicateError
	var capErr *domain.CapacityError
	switch {
	case errors.As(err, &dup):
		s.metrics.IncRejections("duplicate")
	case errors.As(err, &capErr):
		s.metrics.IncRejections("capacity")
	case errors.Is(err, domain.ErrPastEvent):
		s.metrics.IncRejections("past_event")
	}
}

// dedupeAttendees drops repeats of the same attendee within one batch,
// keeping the first occurrence. Without this a batch listing an attendee
// twice would trip the conditional write and abort itself.
func dedupeAttendees(attendees []domain.Attendee) []domain.Attendee {
	seen := make(map[string]bool, len(attendees))
	out := attendees[:0]
	for _, a := range attendees {
		if seen[a.ID()] {
			continue
		}
		seen[a.ID()] = true
		out = append(out, a)
	}
	return out
}
