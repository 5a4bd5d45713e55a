package app

import (
	"context"
	"errors"
	"time"

	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/clock"
	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/domain"
	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/platform/metrics"
)

// CancelRepository is what the cancellation path needs from the reservation
// store. The event lock serializes cancellations against admissions so a
// freed slot is visible to the next admission decision.
type CancelRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEventForUpdate(ctx context.Context, eventID string) (domain.Event, error)
	GetActiveReservation(ctx context.Context, eventID, attendeeID string) (domain.Reservation, error)
	CancelReservation(ctx context.Context, eventID, attendeeID string, at time.Time) error
	CancelMinorsByGuardian(ctx context.Context, eventID, guardianEmail string, at time.Time) ([]string, error)
}

type CancelService struct {
	repo    CancelRepository
	clock   clock.Clock
	metrics *metrics.Metrics
}

func NewCancelService(repo CancelRepository, clk clock.Clock, m *metrics.Metrics) *CancelService {
	return &CancelService{
		repo:    repo,
		clock:   clk,
		metrics: m,
	}
}

type CancelInput struct {
	EventID      string
	AttendeeID   string
	AttendeeType string
	Requester    string
}

// CancelResult reports a completed cancellation. CancelledMinors lists the
// attendee IDs swept up by a guardian cascade; HoursBeforeEvent is
// informational only.
type CancelResult struct {
	AttendeeID       string
	AttendeeType     domain.AttendeeType
	HoursBeforeEvent float64
	CancelledMinors  []string
}

// Cancel tombstones a reservation after verifying the requester owns it:
// volunteers cancel themselves, guardians cancel their minors. Cancelling a
// guardian's own reservation cascades to that guardian's minors for the same
// event, because a minor cannot stay registered without an accompanying
// adult.
func (s *CancelService) Cancel(ctx context.Context, in CancelInput) (CancelResult, error) {
	if in.EventID == "" || in.AttendeeID == "" {
		return CancelResult{}, domain.Validationf("event_id and attendee_id are required")
	}
	switch domain.AttendeeType(in.AttendeeType) {
	case domain.AttendeeTypeVolunteer, domain.AttendeeTypeMinor:
	default:
		return CancelResult{}, domain.Validationf("attendee_type must be volunteer or minor")
	}
	requester := normalizeEmail(in.Requester)
	if requester == "" {
		return CancelResult{}, domain.ErrUnauthorized
	}

	now := s.clock.Now()
	var result CancelResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEventForUpdate(txCtx, in.EventID)
		if err != nil {
			return err
		}

		reservation, err := s.repo.GetActiveReservation(txCtx, in.EventID, in.AttendeeID)
		if err != nil {
			return err
		}

		// Ownership is decided by the stored record, not the request's
		// claimed attendee_type.
		switch reservation.AttendeeType {
		case domain.AttendeeTypeVolunteer:
			if reservation.AttendeeID != requester {
				return domain.ErrUnauthorized
			}
		case domain.AttendeeTypeMinor:
			if normalizeEmail(reservation.GuardianEmail) != requester {
				return domain.ErrUnauthorized
			}
		}

		if err := checkCancellationWindow(now, event.StartsAt); err != nil {
			return err
		}

		if err := s.repo.CancelReservation(txCtx, in.EventID, in.AttendeeID, now); err != nil {
			return err
		}

		result = CancelResult{
			AttendeeID:       reservation.AttendeeID,
			AttendeeType:     reservation.AttendeeType,
			HoursBeforeEvent: hoursBeforeEvent(now, event.StartsAt),
		}

		// Cancelling a single minor never touches siblings; only the
		// guardian's own cancellation cascades.
		if reservation.AttendeeType == domain.AttendeeTypeVolunteer {
			cancelled, err := s.repo.CancelMinorsByGuardian(txCtx, in.EventID, reservation.AttendeeID, now)
			if err != nil {
				return err
			}
			result.CancelledMinors = cancelled
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrCancellationWindow) {
			s.metrics.IncRejections("window")
		}
		return CancelResult{}, err
	}

	s.metrics.IncCancellations()
	s.metrics.AddCascadeCancels(len(result.CancelledMinors))
	return result, nil
}
