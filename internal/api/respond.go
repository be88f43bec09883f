// Package api provides the JSON API handlers and shared response
// helpers. Error responses use a stable envelope with deterministic
// reason codes so clients can branch without parsing messages.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taskrooms/taskrooms/internal/fault"
	"github.com/taskrooms/taskrooms/internal/identity"
	"github.com/taskrooms/taskrooms/internal/rooms"
)

// Deterministic reason codes for stable error classification.
const (
	ReasonUnauthenticated    = "unauthenticated"
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonRateLimited        = "rate_limited"
	ReasonBadRequest         = "bad_request"
	ReasonForbidden          = "forbidden"
	ReasonNotFound           = "not_found"
	ReasonConflict           = "conflict"
	ReasonUnavailable        = "unavailable"
	ReasonInternalError      = "internal_error"
)

// ErrorEnvelope is the standard error response format.
type ErrorEnvelope struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code       string `json:"code"`        // HTTP status text
	ReasonCode string `json:"reason_code"` // deterministic reason code
	Message    string `json:"message"`     // human-readable message
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes a standardized JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, reasonCode, message string) {
	WriteJSON(w, statusCode, ErrorEnvelope{
		Error: ErrorDetail{
			Code:       http.StatusText(statusCode),
			ReasonCode: reasonCode,
			Message:    message,
		},
	})
}

// WriteUnauthorized writes a 401 Unauthorized error.
func WriteUnauthorized(w http.ResponseWriter, reasonCode, message string) {
	WriteError(w, http.StatusUnauthorized, reasonCode, message)
}

// WriteBadRequest writes a 400 Bad Request error.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, ReasonBadRequest, message)
}

// WriteTooManyRequests writes a 429 Too Many Requests error.
func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, ReasonRateLimited, message)
}

// WriteFault maps a service error onto the wire. Message text comes
// from the error itself; services phrase their errors for end users
// and never embed internals in the sentinel-wrapped message.
func WriteFault(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, ReasonInvalidCredentials, "invalid email or password")
	case errors.Is(err, rooms.ErrDuplicateName):
		WriteError(w, http.StatusConflict, ReasonConflict, err.Error())
	case errors.Is(err, fault.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, ReasonBadRequest, err.Error())
	case errors.Is(err, fault.ErrNotFound):
		WriteError(w, http.StatusNotFound, ReasonNotFound, "not found")
	case errors.Is(err, fault.ErrForbidden):
		WriteError(w, http.StatusForbidden, ReasonForbidden, err.Error())
	case errors.Is(err, fault.ErrAlreadyInState):
		WriteError(w, http.StatusConflict, ReasonConflict, err.Error())
	case errors.Is(err, fault.ErrUnavailable):
		WriteError(w, http.StatusBadGateway, ReasonUnavailable, "service temporarily unavailable")
	default:
		WriteError(w, http.StatusInternalServerError, ReasonInternalError, "internal error")
	}
}
