package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/domain"
)

// EventRepository owns the events table for the catalog endpoints. The
// reservation path reads events through ReservationRepository so the read
// shares its transaction and row lock.
type EventRepository struct {
	pool         *pgxpool.Pool
	reservations *ReservationRepository
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{
		pool:         pool,
		reservations: NewReservationRepository(pool),
	}
}

func (r *EventRepository) CreateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `
INSERT INTO events (id, name, starts_at, ends_at, attendance_cap, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, stmt,
		event.ID,
		event.Name,
		event.StartsAt,
		event.EndsAt,
		event.AttendanceCap,
		event.Status,
		event.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEventAlreadyExists
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const query = `
SELECT id, name, starts_at, ends_at, attendance_cap, status, created_at
FROM events
ORDER BY starts_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.StartsAt, &e.EndsAt, &e.AttendanceCap, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventRepository) ListActiveReservations(ctx context.Context, eventID string) ([]domain.Reservation, error) {
	return r.reservations.ListActiveReservations(ctx, eventID)
}

func (r *EventRepository) FindActiveByAttendeeIDs(ctx context.Context, eventID string, attendeeIDs []string) ([]domain.Reservation, error) {
	return r.reservations.FindActiveByAttendeeIDs(ctx, eventID, attendeeIDs)
}
