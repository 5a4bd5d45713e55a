package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/app"
	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/clock"
	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/domain"
	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/storage/postgres"
	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/testutil"
)

func activeReservation(eventID, attendeeID string) domain.Reservation {
	return domain.Reservation{
		ID:           uuid.NewString(),
		EventID:      eventID,
		AttendeeID:   attendeeID,
		AttendeeType: domain.AttendeeTypeVolunteer,
		FirstName:    "Ada",
		LastName:     "Rivers",
		Status:       domain.ReservationStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestReservationRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)

	repo := postgres.NewReservationRepository(pool)
	startsAt := time.Now().UTC().Add(72 * time.Hour)

	t.Run("create batch and count", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		testutil.InsertEvent(t, ctx, pool, "cleanup-1", "River Cleanup", startsAt, 15)

		batch := []domain.Reservation{
			activeReservation("cleanup-1", "a@example.com"),
			activeReservation("cleanup-1", "minor-1"),
		}
		batch[1].AttendeeType = domain.AttendeeTypeMinor
		batch[1].GuardianEmail = "a@example.com"
		batch[1].Age = 9

		require.NoError(t, repo.CreateReservations(ctx, batch))

		count, err := repo.CountActive(ctx, "cleanup-1")
		require.NoError(t, err)
		require.Equal(t, 2, count)

		listed, err := repo.ListActiveReservations(ctx, "cleanup-1")
		require.NoError(t, err)
		require.Len(t, listed, 2)
		require.Equal(t, "a@example.com", listed[1].GuardianEmail)
		require.Equal(t, 9, listed[1].Age)
	})

	t.Run("active unique index rejects a second active reservation", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		testutil.InsertEvent(t, ctx, pool, "cleanup-1", "River Cleanup", startsAt, 15)

		require.NoError(t, repo.CreateReservations(ctx, []domain.Reservation{activeReservation("cleanup-1", "a@example.com")}))

		err := repo.CreateReservations(ctx, []domain.Reservation{activeReservation("cleanup-1", "a@example.com")})
		require.ErrorIs(t, err, domain.ErrDuplicateReservation)
	})

	t.Run("cancel tombstones and frees the slot", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		testutil.InsertEvent(t, ctx, pool, "cleanup-1", "River Cleanup", startsAt, 15)

		require.NoError(t, repo.CreateReservations(ctx, []domain.Reservation{activeReservation("cleanup-1", "a@example.com")}))
		require.NoError(t, repo.CancelReservation(ctx, "cleanup-1", "a@example.com", time.Now().UTC()))

		_, err := repo.GetActiveReservation(ctx, "cleanup-1", "a@example.com")
		require.ErrorIs(t, err, domain.ErrReservationNotFound)

		err = repo.CancelReservation(ctx, "cleanup-1", "a@example.com", time.Now().UTC())
		require.ErrorIs(t, err, domain.ErrReservationNotFound)

		// The cancelled row no longer blocks the partial unique index.
		require.NoError(t, repo.CreateReservations(ctx, []domain.Reservation{activeReservation("cleanup-1", "a@example.com")}))

		count, err := repo.CountActive(ctx, "cleanup-1")
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	t.Run("guardian cascade is scoped to one event", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		testutil.InsertEvent(t, ctx, pool, "cleanup-1", "River Cleanup", startsAt, 15)
		testutil.InsertEvent(t, ctx, pool, "cleanup-2", "Beach Cleanup", startsAt, 15)

		minorRes := func(eventID, id string) domain.Reservation {
			r := activeReservation(eventID, id)
			r.AttendeeType = domain.AttendeeTypeMinor
			r.GuardianEmail = "a@example.com"
			r.Age = 9
			return r
		}
		require.NoError(t, repo.CreateReservations(ctx, []domain.Reservation{
			minorRes("cleanup-1", "minor-1"),
			minorRes("cleanup-1", "minor-2"),
			minorRes("cleanup-2", "minor-1"),
		}))

		cancelled, err := repo.CancelMinorsByGuardian(ctx, "cleanup-1", "a@example.com", time.Now().UTC())
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"minor-1", "minor-2"}, cancelled)

		_, err = repo.GetActiveReservation(ctx, "cleanup-2", "minor-1")
		require.NoError(t, err)
	})

	t.Run("unknown event", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		_, err := repo.GetEventForUpdate(ctx, "nope")
		require.ErrorIs(t, err, domain.ErrEventNotFound)

		err = repo.CreateReservations(ctx, []domain.Reservation{activeReservation("nope", "a@example.com")})
		require.ErrorIs(t, err, domain.ErrEventNotFound)
	})

	t.Run("find active by attendee ids skips cancelled rows", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		testutil.InsertEvent(t, ctx, pool, "cleanup-1", "River Cleanup", startsAt, 15)

		require.NoError(t, repo.CreateReservations(ctx, []domain.Reservation{
			activeReservation("cleanup-1", "a@example.com"),
			activeReservation("cleanup-1", "b@example.com"),
		}))
		require.NoError(t, repo.CancelReservation(ctx, "cleanup-1", "b@example.com", time.Now().UTC()))

		found, err := repo.FindActiveByAttendeeIDs(ctx, "cleanup-1", []string{"a@example.com", "b@example.com"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		require.Equal(t, "a@example.com", found[0].AttendeeID)
	})
}

// Racing submissions for the last slots must never overshoot the cap: the
// event row lock serializes the recount and the write.
func TestConcurrentAdmission(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	startsAt := time.Now().UTC().Add(72 * time.Hour)
	testutil.InsertEvent(t, ctx, pool, "cleanup-1", "River Cleanup", startsAt, 3)

	repo := postgres.NewReservationRepository(pool)
	minors := postgres.NewMinorRepository(pool)
	svc := app.NewRSVPService(repo, minors, clock.NewSystem(), nil)

	const submitters = 8
	errs := make([]error, submitters)
	var wg sync.WaitGroup
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(ctx, app.SubmitInput{
				EventID:        "cleanup-1",
				RequesterEmail: fmt.Sprintf("v%d@example.com", i),
				FirstName:      "Vol",
				LastName:       fmt.Sprintf("Unteer%d", i),
			})
		}(i)
	}
	wg.Wait()

	var admitted, rejected int
	for _, err := range errs {
		var capErr *domain.CapacityError
		switch {
		case err == nil:
			admitted++
		case errors.As(err, &capErr):
			rejected++
		default:
			t.Fatalf("unexpected submit error: %v", err)
		}
	}
	require.Equal(t, 3, admitted)
	require.Equal(t, submitters-3, rejected)

	count, err := repo.CountActive(ctx, "cleanup-1")
	require.NoError(t, err)
	require.Equal(t, 3, count)
}
