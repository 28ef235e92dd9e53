package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/fairtask-ledger/pkg/api"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/chris/fairtask-ledger/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	cases := map[ruleerr.Kind]int{
		ruleerr.EmergencyPaused:     http.StatusServiceUnavailable,
		ruleerr.LimitReached:        http.StatusTooManyRequests,
		ruleerr.KycRequired:         http.StatusForbidden,
		ruleerr.BelowMinimum:        http.StatusBadRequest,
		ruleerr.InsufficientBalance: http.StatusUnprocessableEntity,
		ruleerr.NoBalance:           http.StatusConflict,
		ruleerr.NotFound:            http.StatusNotFound,
	}
	for kind, want := range cases {
		status, code := Status(fmt.Errorf("wrapped: %w", ruleerr.New(kind, "rejected")))
		assert.Equal(t, want, status, kind)
		assert.Equal(t, string(kind), code)
	}

	status, _ := Status(fmt.Errorf("failed to update user: %w", storage.ErrConflict))
	assert.Equal(t, http.StatusConflict, status)

	status, code := Status(errors.New("dynamodb is down"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL", code)
}

func TestError(t *testing.T) {
	t.Run("Rejection Message Is Returned", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/u-1/tasks", nil)

		Error(rr, req, ruleerr.New(ruleerr.LimitReached, "daily VIDEO limit of 8 reached"))

		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		var body api.Error
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "LIMIT_REACHED", body.Code)
		assert.Equal(t, "daily VIDEO limit of 8 reached", body.Message)
	})

	t.Run("Fault Details Are Hidden", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/users/u-1", nil)

		Error(rr, req, errors.New("failed to get user: table missing"))

		var body api.Error
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "internal error", body.Message)
	})
}
