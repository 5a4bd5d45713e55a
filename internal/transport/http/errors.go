package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeValidationFailed    = "validation_failed"
	codeEventNotFound       = "event_not_found"
	codeEventAlreadyExists  = "event_already_exists"
	codeEventNameRequired   = "event_name_required"
	codeInvalidCapacity     = "invalid_capacity"
	codeInvalidEventTimes   = "invalid_event_times"
	codeAlreadyRegistered   = "already_registered"
	codeCapacityExceeded    = "capacity_exceeded"
	codePastEvent           = "past_event"
	codeCancellationWindow  = "cancellation_window"
	codeReservationNotFound = "reservation_not_found"
	codeInvalidSession      = "invalid_session"
	codeForbidden           = "forbidden"
	codeWriteConflict       = "write_conflict"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{
		Success: false,
		Code:    code,
		Message: msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		_, _ = w.Write([]byte(`{"success":false,"code":"internal_error","message":"internal error"}`))
	}
}
