package app

import (
	"math"
	"time"

	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/domain"
)

// cancellationWindow is how close to the event start cancellations are
// refused. Landing exactly on the boundary still blocks.
const cancellationWindow = 24 * time.Hour

// checkRegistrationOpen rejects registration once the event has started,
// regardless of remaining capacity.
func checkRegistrationOpen(now, startsAt time.Time) error {
	if !startsAt.After(now) {
		return domain.ErrPastEvent
	}
	return nil
}

// checkCancellationWindow rejects cancellations when the event starts in 24
// hours or less. Past events fall inside the window too.
func checkCancellationWindow(now, startsAt time.Time) error {
	if startsAt.Sub(now) <= cancellationWindow {
		return domain.ErrCancellationWindow
	}
	return nil
}

// hoursBeforeEvent reports the time until the event starts, rounded to one
// decimal place for display. Negative when the event has passed.
func hoursBeforeEvent(now, startsAt time.Time) float64 {
	hours := startsAt.Sub(now).Hours()
	return math.Round(hours*10) / 10
}
