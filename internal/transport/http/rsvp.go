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

// RSVPSubmitter is the minimal interface needed to submit a reservation
// batch.
type RSVPSubmitter interface {
	Submit(ctx context.Context, in app.SubmitInput) (app.SubmitResult, error)
}

// HandleSubmitRSVP returns an HTTP handler for batch (or legacy
// single-volunteer) RSVP submissions. A valid session token overrides the
// requester email in the body; anonymous submissions fall back to it.
func HandleSubmitRSVP(svc RSVPSubmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Submissions arrive from several client generations, so unknown
		// keys are tolerated rather than rejected.
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		requester := req.RequesterEmail
		if requester == "" {
			requester = req.Email
		}
		if identity := identityFrom(r.Context()); identity != "" {
			requester = identity
		}

		in := app.SubmitInput{
			EventID:        chi.URLParam(r, "eventID"),
			RequesterEmail: requester,
			FirstName:      req.FirstName,
			LastName:       req.LastName,
		}
		if req.Attendees != nil {
			in.Attendees = make([]app.AttendeeInput, len(req.Attendees))
			for i, a := range req.Attendees {
				in.Attendees[i] = app.AttendeeInput{
					Type:      a.Type,
					Email:     a.Email,
					MinorID:   a.MinorID,
					FirstName: a.FirstName,
					LastName:  a.LastName,
					Age:       a.Age,
				}
			}
		}

		result, err := svc.Submit(r.Context(), in)
		if err != nil {
			writeSubmitError(w, err)
			return
		}

		resp := submitResponse{
			Success:           true,
			Results:           make([]attendeeResult, len(result.Registered)),
			CurrentAttendance: result.CurrentAttendance,
			AttendanceCap:     result.AttendanceCap,
		}
		for i, res := range result.Registered {
			resp.Results[i] = attendeeResult{
				AttendeeID:   res.AttendeeID,
				AttendeeType: string(res.AttendeeType),
				Status:       "registered",
			}
		}
		for _, dup := range result.AlreadyRegistered {
			resp.DuplicateAttendees = append(resp.DuplicateAttendees, dup.FullName())
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}

func writeSubmitError(w http.ResponseWriter, err error) {
	var validation *domain.ValidationError
	var duplicates *domain.DuplicateError
	var capacity *domain.CapacityError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, codeValidationFailed, validation.Msg)
	case errors.As(err, &duplicates):
		writeJSON(w, http.StatusConflict, duplicateResponse{
			Success:            false,
			Code:               codeAlreadyRegistered,
			Message:            err.Error(),
			DuplicateAttendees: duplicates.Names,
		})
	case errors.As(err, &capacity):
		writeJSON(w, http.StatusConflict, capacityResponse{
			Success:           false,
			Code:              codeCapacityExceeded,
			Message:           err.Error(),
			RemainingCapacity: capacity.Remaining,
			CurrentAttendance: capacity.Current,
			AttendanceCap:     capacity.Cap,
		})
	case errors.Is(err, domain.ErrEventNotFound):
		writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
	case errors.Is(err, domain.ErrPastEvent):
		writeError(w, http.StatusConflict, codePastEvent, err.Error())
	case errors.Is(err, domain.ErrWriteConflict):
		writeError(w, http.StatusServiceUnavailable, codeWriteConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type submitRequest struct {
	Email          string            `json:"email"`
	RequesterEmail string            `json:"requester_email"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	Attendees      []attendeeRequest `json:"attendees"`
}

type attendeeRequest struct {
	Type      string `json:"type"`
	Email     string `json:"email"`
	MinorID   string `json:"minor_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       int    `json:"age"`
}

type attendeeResult struct {
	AttendeeID   string `json:"attendee_id"`
	AttendeeType string `json:"attendee_type"`
	Status       string `json:"status"`
}

type submitResponse struct {
	Success            bool             `json:"success"`
	Results            []attendeeResult `json:"results"`
	DuplicateAttendees []string         `json:"duplicate_attendees,omitempty"`
	CurrentAttendance  int              `json:"current_attendance"`
	AttendanceCap      int              `json:"attendance_cap"`
}

type duplicateResponse struct {
	Success            bool     `json:"success"`
	Code               string   `json:"code"`
	Message            string   `json:"message"`
	DuplicateAttendees []string `json:"duplicate_attendees"`
}

type capacityResponse struct {
	Success           bool   `json:"success"`
	Code              string `json:"code"`
	Message           string `json:"message"`
	RemainingCapacity int    `json:"remaining_capacity"`
	CurrentAttendance int    `json:"current_attendance"`
	AttendanceCap     int    `json:"attendance_cap"`
}
