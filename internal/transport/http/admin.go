package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/app"
	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/domain"
)

// EventAdmin is the minimal interface for the catalog endpoints.
type EventAdmin interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

// HandleCreateEvent returns an HTTP handler for creating catalog events.
func HandleCreateEvent(svc EventAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createEventRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		in := app.CreateEventInput{
			ID:            req.ID,
			Name:          req.Name,
			AttendanceCap: req.AttendanceCap,
		}
		if req.StartsAt != nil {
			in.StartsAt = *req.StartsAt
		}
		if req.EndsAt != nil {
			in.EndsAt = *req.EndsAt
		}

		event, err := svc.CreateEvent(r.Context(), in)
		if err != nil {
			writeAdminError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, eventView{
			ID:            event.ID,
			Name:          event.Name,
			StartsAt:      event.StartsAt,
			EndsAt:        event.EndsAt,
			AttendanceCap: event.AttendanceCap,
			Status:        string(event.Status),
		})
	}
}

// HandleListEvents returns an HTTP handler listing catalog events.
func HandleListEvents(svc EventAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := svc.ListEvents(r.Context())
		if err != nil {
			writeAdminError(w, err)
			return
		}

		views := make([]eventView, len(events))
		for i, e := range events {
			views[i] = eventView{
				ID:            e.ID,
				Name:          e.Name,
				StartsAt:      e.StartsAt,
				EndsAt:        e.EndsAt,
				AttendanceCap: e.AttendanceCap,
				Status:        string(e.Status),
			}
		}
		writeJSON(w, http.StatusOK, listEventsResponse{Success: true, Events: views})
	}
}

func writeAdminError(w http.ResponseWriter, err error) {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, codeValidationFailed, validation.Msg)
	case errors.Is(err, domain.ErrEventNameRequired):
		writeError(w, http.StatusBadRequest, codeEventNameRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidCapacity):
		writeError(w, http.StatusBadRequest, codeInvalidCapacity, err.Error())
	case errors.Is(err, domain.ErrInvalidEventTimes):
		writeError(w, http.StatusBadRequest, codeInvalidEventTimes, err.Error())
	case errors.Is(err, domain.ErrEventAlreadyExists):
		writeError(w, http.StatusConflict, codeEventAlreadyExists, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type createEventRequest struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	StartsAt      *time.Time `json:"starts_at"`
	EndsAt        *time.Time `json:"ends_at"`
	AttendanceCap int        `json:"attendance_cap"`
}

type eventView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	AttendanceCap int       `json:"attendance_cap"`
	Status        string    `json:"status"`
}

type listEventsResponse struct {
	Success bool        `json:"success"`
	Events  []eventView `json:"events"`
}
