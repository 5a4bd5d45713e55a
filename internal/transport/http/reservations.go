package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/domain"
)

// ReservationReader covers the read-only reservation endpoints: listing an
// event's active reservations and checking registration status.
type ReservationReader interface {
	ListReservations(ctx context.Context, eventID string) ([]domain.Reservation, error)
	RegistrationStatus(ctx context.Context, eventID string, attendeeIDs []string) (map[string]bool, error)
}

// HandleListRSVPs returns the active reservations for an event.
func HandleListRSVPs(svc ReservationReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "eventID")
		reservations, err := svc.ListReservations(r.Context(), eventID)
		if err != nil {
			writeReadError(w, err)
			return
		}

		resp := listResponse{
			Success: true,
			EventID: eventID,
			Count:   len(reservations),
			RSVPs:   make([]reservationView, len(reservations)),
		}
		for i, res := range reservations {
			resp.RSVPs[i] = reservationView{
				AttendeeID:    res.AttendeeID,
				AttendeeType:  string(res.AttendeeType),
				GuardianEmail: res.GuardianEmail,
				FirstName:     res.FirstName,
				LastName:      res.LastName,
				CreatedAt:     res.CreatedAt,
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleCheckRSVP reports whether each attendee_id query parameter holds an
// active reservation for the event.
func HandleCheckRSVP(svc ReservationReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "eventID")
		attendeeIDs := r.URL.Query()["attendee_id"]

		status, err := svc.RegistrationStatus(r.Context(), eventID, attendeeIDs)
		if err != nil {
			writeReadError(w, err)
			return
		}

		resp := checkResponse{
			Success: true,
			EventID: eventID,
			Results: make([]checkResult, 0, len(attendeeIDs)),
		}
		for _, id := range attendeeIDs {
			resp.Results = append(resp.Results, checkResult{
				AttendeeID: id,
				Registered: status[id],
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeReadError(w http.ResponseWriter, err error) {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, codeValidationFailed, validation.Msg)
	case errors.Is(err, domain.ErrEventNotFound):
		writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type reservationView struct {
	AttendeeID    string    `json:"attendee_id"`
	AttendeeType  string    `json:"attendee_type"`
	GuardianEmail string    `json:"guardian_email,omitempty"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	CreatedAt     time.Time `json:"created_at"`
}

type listResponse struct {
	Success bool              `json:"success"`
	EventID string            `json:"event_id"`
	Count   int               `json:"count"`
	RSVPs   []reservationView `json:"rsvps"`
}

type checkResult struct {
	AttendeeID string `json:"attendee_id"`
	Registered bool   `json:"registered"`
}

type checkResponse struct {
	Success bool          `json:"success"`
	EventID string        `json:"event_id"`
	Results []checkResult `json:"results"`
}
