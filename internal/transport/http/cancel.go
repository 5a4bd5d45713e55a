package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/app"
	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/domain"
)

// ReservationCanceller is the minimal interface needed to cancel a
// reservation.
type ReservationCanceller interface {
	Cancel(ctx context.Context, in app.CancelInput) (app.CancelResult, error)
}

// HandleCancelRSVP returns an HTTP handler for ownership-verified
// cancellation. The requester identity comes exclusively from the session
// token; the route sits behind RequireIdentity.
func HandleCancelRSVP(svc ReservationCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cancelRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		result, err := svc.Cancel(r.Context(), app.CancelInput{
			EventID:      chi.URLParam(r, "eventID"),
			AttendeeID:   req.AttendeeID,
			AttendeeType: req.AttendeeType,
			Requester:    identityFrom(r.Context()),
		})
		if err != nil {
			writeCancelError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, cancelResponse{
			Success:          true,
			AttendeeID:       result.AttendeeID,
			AttendeeType:     string(result.AttendeeType),
			HoursBeforeEvent: result.HoursBeforeEvent,
			CancelledMinors:  result.CancelledMinors,
		})
	}
}

func writeCancelError(w http.ResponseWriter, err error) {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, codeValidationFailed, validation.Msg)
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, codeForbidden, err.Error())
	case errors.Is(err, domain.ErrEventNotFound):
		writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
	case errors.Is(err, domain.ErrReservationNotFound):
		writeError(w, http.StatusNotFound, codeReservationNotFound, err.Error())
	case errors.Is(err, domain.ErrCancellationWindow):
		writeError(w, http.StatusConflict, codeCancellationWindow, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type cancelRequest struct {
	AttendeeID   string `json:"attendee_id"`
	AttendeeType string `json:"attendee_type"`
}

type cancelResponse struct {
	Success          bool     `json:"success"`
	AttendeeID       string   `json:"attendee_id"`
	AttendeeType     string   `json:"attendee_type"`
	HoursBeforeEvent float64  `json:"hours_before_event"`
	CancelledMinors  []string `json:"cancelled_minors,omitempty"`
}
