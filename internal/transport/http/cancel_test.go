package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/app"
	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/domain"
)

type fakeCanceller struct {
	result app.CancelResult
	err    error
	gotIn  app.CancelInput
}

func (f *fakeCanceller) Cancel(_ context.Context, in app.CancelInput) (app.CancelResult, error) {
	f.gotIn = in
	if f.err != nil {
		return app.CancelResult{}, f.err
	}
	return f.result, nil
}

func deleteRSVP(t *testing.T, svc ReservationCanceller, body string, identity string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Delete("/events/{eventID}/rsvps", HandleCancelRSVP(svc))

	req := httptest.NewRequest(http.MethodDelete, "/events/cleanup-1/rsvps", strings.NewReader(body))
	if identity != "" {
		req = req.WithContext(context.WithValue(req.Context(), identityKey{}, identity))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandleCancelRSVP(t *testing.T) {
	t.Parallel()

	t.Run("success reports hours before event and cascaded minors", func(t *testing.T) {
		svc := &fakeCanceller{
			result: app.CancelResult{
				AttendeeID:       "a@example.com",
				AttendeeType:     domain.AttendeeTypeVolunteer,
				HoursBeforeEvent: 72.0,
				CancelledMinors:  []string{"minor-1"},
			},
		}
		rec := deleteRSVP(t, svc, `{"attendee_id":"a@example.com","attendee_type":"volunteer"}`, "a@example.com")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp cancelResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.True(t, resp.Success)
		require.Equal(t, "a@example.com", resp.AttendeeID)
		require.Equal(t, 72.0, resp.HoursBeforeEvent)
		require.Equal(t, []string{"minor-1"}, resp.CancelledMinors)

		require.Equal(t, "cleanup-1", svc.gotIn.EventID)
		require.Equal(t, "a@example.com", svc.gotIn.Requester)
	})

	t.Run("requester comes from the session not the body", func(t *testing.T) {
		svc := &fakeCanceller{result: app.CancelResult{}}
		rec := deleteRSVP(t, svc, `{"attendee_id":"b@example.com","attendee_type":"volunteer"}`, "a@example.com")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "a@example.com", svc.gotIn.Requester)
		require.Equal(t, "b@example.com", svc.gotIn.AttendeeID)
	})

	t.Run("error mapping", func(t *testing.T) {
		cases := []struct {
			name       string
			err        error
			wantStatus int
			wantCode   string
		}{
			{"ownership", domain.ErrUnauthorized, http.StatusForbidden, codeForbidden},
			{"event not found", domain.ErrEventNotFound, http.StatusNotFound, codeEventNotFound},
			{"reservation not found", domain.ErrReservationNotFound, http.StatusNotFound, codeReservationNotFound},
			{"inside cancellation window", domain.ErrCancellationWindow, http.StatusConflict, codeCancellationWindow},
			{"validation", domain.Validationf("attendee_id is required"), http.StatusBadRequest, codeValidationFailed},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				svc := &fakeCanceller{err: tc.err}
				rec := deleteRSVP(t, svc, `{"attendee_id":"a@example.com","attendee_type":"volunteer"}`, "a@example.com")
				require.Equal(t, tc.wantStatus, rec.Code)

				var resp errorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				require.Equal(t, tc.wantCode, resp.Code)
			})
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := deleteRSVP(t, &fakeCanceller{}, `{"attendee_id"`, "a@example.com")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
