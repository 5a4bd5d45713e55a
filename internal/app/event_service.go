package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/clock"
	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/domain"
)

type EventRepository interface {
	CreateEvent(ctx context.Context, event domain.Event) error
	ListEvents(ctx context.Context) ([]domain.Event, error)
	ListActiveReservations(ctx context.Context, eventID string) ([]domain.Reservation, error)
	FindActiveByAttendeeIDs(ctx context.Context, eventID string, attendeeIDs []string) ([]domain.Reservation, error)
}

// EventService covers the catalog endpoints: creating and listing events,
// listing an event's active reservations, and the registration status check.
type EventService struct {
	repo  EventRepository
	clock clock.Clock
}

func NewEventService(repo EventRepository, clk clock.Clock) *EventService {
	return &EventService{
		repo:  repo,
		clock: clk,
	}
}

type CreateEventInput struct {
	ID            string
	Name          string
	StartsAt      time.Time
	EndsAt        time.Time
	AttendanceCap int
}

func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	if in.Name == "" {
		return domain.Event{}, domain.ErrEventNameRequired
	}
	if in.AttendanceCap <= 0 {
		return domain.Event{}, domain.ErrInvalidCapacity
	}
	if in.StartsAt.IsZero() {
		return domain.Event{}, domain.Validationf("starts_at is required")
	}
	endsAt := in.EndsAt
	if endsAt.IsZero() {
		endsAt = in.StartsAt.Add(2 * time.Hour)
	}
	if !endsAt.After(in.StartsAt) {
		return domain.Event{}, domain.ErrInvalidEventTimes
	}

	// Callers may pass a readable slug as the ID; otherwise one is minted.
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	event := domain.Event{
		ID:            id,
		Name:          in.Name,
		StartsAt:      in.StartsAt,
		EndsAt:        endsAt,
		AttendanceCap: in.AttendanceCap,
		Status:        domain.EventStatusScheduled,
		CreatedAt:     s.clock.Now(),
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}

func (s *EventService) ListReservations(ctx context.Context, eventID string) ([]domain.Reservation, error) {
	if eventID == "" {
		return nil, domain.Validationf("event_id is required")
	}
	return s.repo.ListActiveReservations(ctx, eventID)
}

// RegistrationStatus reports, per attendee ID, whether an active reservation
// exists for the event. Read-only; used by callers probing before submit.
func (s *EventService) RegistrationStatus(ctx context.Context, eventID string, attendeeIDs []string) (map[string]bool, error) {
	if eventID == "" {
		return nil, domain.Validationf("event_id is required")
	}
	if len(attendeeIDs) == 0 {
		return nil, domain.Validationf("at least one attendee_id is required")
	}

	existing, err := s.repo.FindActiveByAttendeeIDs(ctx, eventID, attendeeIDs)
	if err != nil {
		return nil, err
	}
	status := make(map[string]bool, len(attendeeIDs))
	for _, id := range attendeeIDs {
		status[id] = false
	}
	for _, r := range existing {
		status[r.AttendeeID] = true
	}
	return status, nil
}
