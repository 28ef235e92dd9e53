// Package respond writes JSON bodies and maps rule rejections to HTTP status
// codes.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/chris/fairtask-ledger/pkg/api"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/chris/fairtask-ledger/pkg/storage"
)

// Maintenance is the error code of requests refused in maintenance mode.
const Maintenance = "MAINTENANCE"

var statusByKind = map[ruleerr.Kind]int{
	ruleerr.EmergencyPaused:     http.StatusServiceUnavailable,
	ruleerr.LimitReached:        http.StatusTooManyRequests,
	ruleerr.AccountNotActive:    http.StatusForbidden,
	ruleerr.KycRequired:         http.StatusForbidden,
	ruleerr.Forbidden:           http.StatusForbidden,
	ruleerr.BelowMinimum:        http.StatusBadRequest,
	ruleerr.InvalidArgument:     http.StatusBadRequest,
	ruleerr.InsufficientBalance: http.StatusUnprocessableEntity,
	ruleerr.RequirementNotMet:   http.StatusConflict,
	ruleerr.NoBalance:           http.StatusConflict,
	ruleerr.InvalidState:        http.StatusConflict,
	ruleerr.HoldNotDue:          http.StatusConflict,
	ruleerr.NotFound:            http.StatusNotFound,
}

// Status returns the HTTP status and error code for err.
func Status(err error) (int, string) {
	if kind, ok := ruleerr.KindOf(err); ok {
		if status, found := statusByKind[kind]; found {
			return status, string(kind)
		}
	}
	if errors.Is(err, storage.ErrConflict) {
		return http.StatusConflict, "CONFLICT"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Error writes err as an api.Error. Faults are logged and their details are
// not sent to the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, code := Status(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		message = "internal error"
	}
	JSON(w, status, api.Error{Code: code, Message: message})
}

// BadRequest writes a 400 for a malformed body or parameter.
func BadRequest(w http.ResponseWriter, err error) {
	JSON(w, http.StatusBadRequest, api.Error{
		Code:    string(ruleerr.InvalidArgument),
		Message: fmt.Sprintf("Invalid request: %v", err),
	})
}

// Decode reads a JSON body into dest, writing a 400 on failure.
func Decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}
