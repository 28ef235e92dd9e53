package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/chris/fairtask-ledger/pkg/api"
	"github.com/chris/fairtask-ledger/pkg/handlers/respond"
)

// MaintenanceCheck reports whether the platform is in maintenance mode.
type MaintenanceCheck func(ctx context.Context) (bool, error)

// Maintenance refuses requests with 503 while check reports maintenance.
// If the check itself fails the request is let through.
func Maintenance(check MaintenanceCheck, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			on, err := check(r.Context())
			if err != nil {
				logger.Error("failed to read maintenance mode", "error", err)
			}
			if on {
				respond.JSON(w, http.StatusServiceUnavailable, api.Error{
					Code:    respond.Maintenance,
					Message: "the platform is under maintenance, please try again later",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
