package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/domain"
)

// ReservationRepository owns the reservations table. A partial unique index
// on (event_id, attendee_id) over active rows is the conditional write that
// closes the check-then-act window; the event row lock taken by
// GetEventForUpdate serializes admission decisions per event.
type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *ReservationRepository) GetEventForUpdate(ctx context.Context, eventID string) (domain.Event, error) {
	const query = `
SELECT id, name, starts_at, ends_at, attendance_cap, status, created_at
FROM events
WHERE id = $1
FOR UPDATE`

	var e domain.Event
	err := r.queryRow(ctx, query, eventID).
		Scan(&e.ID, &e.Name, &e.StartsAt, &e.EndsAt, &e.AttendanceCap, &e.Status, &e.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event for update: %w", err)
	}
	return e, nil
}

func (r *ReservationRepository) FindActiveByAttendeeIDs(ctx context.Context, eventID string, attendeeIDs []string) ([]domain.Reservation, error) {
	const query = `
SELECT id, event_id, attendee_id, attendee_type, COALESCE(guardian_email, ''), first_name, last_name, COALESCE(age, 0), status, created_at, cancelled_at
FROM reservations
WHERE event_id = $1 AND attendee_id = ANY($2) AND status = 'active'`

	rows, err := r.query(ctx, query, eventID, attendeeIDs)
	if err != nil {
		return nil, fmt.Errorf("find active reservations: %w", err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

func (r *ReservationRepository) CountActive(ctx context.Context, eventID string) (int, error) {
	const query = `SELECT COUNT(*) FROM reservations WHERE event_id = $1 AND status = 'active'`

	var total int
	if err := r.queryRow(ctx, query, eventID).Scan(&total); err != nil {
		return 0, fmt.Errorf("count active reservations: %w", err)
	}
	return total, nil
}

// CreateReservations inserts the whole batch; any failure aborts the
// surrounding transaction so no partial batch ever lands.
func (r *ReservationRepository) CreateReservations(ctx context.Context, reservations []domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (id, event_id, attendee_id, attendee_type, guardian_email, first_name, last_name, age, status, created_at)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, NULLIF($8, 0), $9, $10)`

	for _, res := range reservations {
		_, err := r.exec(ctx, stmt,
			res.ID,
			res.EventID,
			res.AttendeeID,
			res.AttendeeType,
			res.GuardianEmail,
			res.FirstName,
			res.LastName,
			res.Age,
			res.Status,
			res.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateReservation
			}
			if isForeignKeyViolation(err) {
				return domain.ErrEventNotFound
			}
			return fmt.Errorf("create reservation %s: %w", res.AttendeeID, err)
		}
	}
	return nil
}

func (r *ReservationRepository) GetActiveReservation(ctx context.Context, eventID, attendeeID string) (domain.Reservation, error) {
	const query = `
SELECT id, event_id, attendee_id, attendee_type, COALESCE(guardian_email, ''), first_name, last_name, COALESCE(age, 0), status, created_at, cancelled_at
FROM reservations
WHERE event_id = $1 AND attendee_id = $2 AND status = 'active'`

	rows, err := r.query(ctx, query, eventID, attendeeID)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("get active reservation: %w", err)
	}
	defer rows.Close()

	found, err := scanReservations(rows)
	if err != nil {
		return domain.Reservation{}, err
	}
	if len(found) == 0 {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	return found[0], nil
}

// CancelReservation tombstones one active reservation. Cancelling something
// already cancelled (or never created) reports not found, which keeps
// repeated cancels idempotent from the caller's view.
func (r *ReservationRepository) CancelReservation(ctx context.Context, eventID, attendeeID string, at time.Time) error {
	const stmt = `
UPDATE reservations
SET status = 'cancelled', cancelled_at = $3
WHERE event_id = $1 AND attendee_id = $2 AND status = 'active'`

	tag, err := r.exec(ctx, stmt, eventID, attendeeID, at)
	if err != nil {
		return fmt.Errorf("cancel reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

// CancelMinorsByGuardian tombstones every active minor reservation the
// guardian holds for the event and returns their attendee IDs. Scoped to
// one event; other events' reservations are untouched.
func (r *ReservationRepository) CancelMinorsByGuardian(ctx context.Context, eventID, guardianEmail string, at time.Time) ([]string, error) {
	const stmt = `
UPDATE reservations
SET status = 'cancelled', cancelled_at = $3
WHERE event_id = $1 AND guardian_email = $2 AND attendee_type = 'minor' AND status = 'active'
RETURNING attendee_id`

	rows, err := r.query(ctx, stmt, eventID, guardianEmail, at)
	if err != nil {
		return nil, fmt.Errorf("cascade cancel minors: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("cascade cancel minors: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ReservationRepository) ListActiveReservations(ctx context.Context, eventID string) ([]domain.Reservation, error) {
	const query = `
SELECT id, event_id, attendee_id, attendee_type, COALESCE(guardian_email, ''), first_name, last_name, COALESCE(age, 0), status, created_at, cancelled_at
FROM reservations
WHERE event_id = $1 AND status = 'active'
ORDER BY created_at, attendee_id`

	rows, err := r.query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list active reservations: %w", err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

func scanReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(
			&res.ID,
			&res.EventID,
			&res.AttendeeID,
			&res.AttendeeType,
			&res.GuardianEmail,
			&res.FirstName,
			&res.LastName,
			&res.Age,
			&res.Status,
			&res.CreatedAt,
			&res.CancelledAt,
		); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *ReservationRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ReservationRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *ReservationRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
