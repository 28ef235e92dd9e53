package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	adminsvc "github.com/chris/fairtask-ledger/pkg/admin"
	"github.com/chris/fairtask-ledger/pkg/api"
	"github.com/chris/fairtask-ledger/pkg/engine"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/storage"
	"github.com/chris/fairtask-ledger/pkg/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rootAdmin = "admin-root"

type server struct {
	router http.Handler
	store  *memory.Store
}

func newServer(t *testing.T) *server {
	t.Helper()
	store := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	eng := engine.New(store, logger, engine.WithClock(func() time.Time { return now }))
	ops := adminsvc.New(store, eng, logger)
	_, err := ops.Bootstrap(context.Background(), rootAdmin, "Root")
	require.NoError(t, err)

	router := NewRouter(RouterConfig{Engine: eng, Admin: ops, Logger: logger, CORSOrigins: []string{"*"}})
	return &server{router: router, store: store}
}

func (s *server) do(t *testing.T, method, path string, body any, adminID string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if adminID != "" {
		req.Header.Set(api.AdminHeader, adminID)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func (s *server) signup(t *testing.T, name string) api.User {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/users", api.NewUser{Name: name}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[api.User](t, rr)
}

func (s *server) edit(t *testing.T, userID string, fn func(u *models.User)) {
	t.Helper()
	_, err := s.store.UpdateUser(context.Background(), userID, func(u *models.User) (*storage.Mutation, error) {
		fn(u)
		return nil, nil
	})
	require.NoError(t, err)
}

func TestUserRoutes(t *testing.T) {
	s := newServer(t)
	user := s.signup(t, "Asha Rao")

	t.Run("Signup Starts On Trial", func(t *testing.T) {
		assert.Equal(t, "TRIAL", user.PlanId)
		assert.NotEmpty(t, user.ReferralCode)
		assert.True(t, user.Wallet.Total.IsZero())
	})

	t.Run("Complete Task Until Limit", func(t *testing.T) {
		for i := 0; i < 8; i++ {
			rr := s.do(t, http.MethodPost, "/users/"+user.Uid+"/tasks", api.NewTask{Type: "VIDEO"}, "")
			require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		}

		rr := s.do(t, http.MethodPost, "/users/"+user.Uid+"/tasks", api.NewTask{Type: "VIDEO"}, "")
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, "LIMIT_REACHED", decode[api.Error](t, rr).Code)

		rr = s.do(t, http.MethodGet, "/users/"+user.Uid, nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		got := decode[api.User](t, rr)
		assert.True(t, decimal.RequireFromString("0.48").Equal(got.Wallet.Pending), got.Wallet.Pending.String())
		assert.Equal(t, 8, got.PendingHolds)
	})

	t.Run("Task Status", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/users/"+user.Uid+"/tasks", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		status := decode[api.TaskStatus](t, rr)
		assert.Equal(t, 0, status.VideosRemaining)
		assert.Equal(t, 3, status.LinksRemaining)
	})

	t.Run("Ledger Honours Limit", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/users/"+user.Uid+"/ledger?limit=3", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		entries := decode[[]api.LedgerEntry](t, rr)
		assert.Len(t, entries, 3)
		assert.Equal(t, "EARN_VIDEO", entries[0].Type)
		assert.Equal(t, "PENDING", entries[0].Status)
	})

	t.Run("Malformed Limit", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/users/"+user.Uid+"/ledger?limit=many", nil, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Withdrawal Needs Kyc", func(t *testing.T) {
		s.edit(t, user.Uid, func(u *models.User) { u.Wallet.Main = decimal.NewFromInt(20) })
		in := api.NewWithdrawal{Amount: decimal.NewFromInt(10), Method: "UPI", Details: "asha@upi"}

		rr := s.do(t, http.MethodPost, "/users/"+user.Uid+"/withdrawals", in, "")
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "KYC_REQUIRED", decode[api.Error](t, rr).Code)
	})

	t.Run("Bonus Unlock With Nothing Locked", func(t *testing.T) {
		rr := s.do(t, http.MethodPost, "/users/"+user.Uid+"/bonus/unlock", nil, "")
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "NO_BALANCE", decode[api.Error](t, rr).Code)
	})

	t.Run("Unknown User", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/users/ghost", nil, "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Bad Body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString("{"))
		rr := httptest.NewRecorder()
		s.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestKycAndPayoutFlow(t *testing.T) {
	// Arrange
	s := newServer(t)
	user := s.signup(t, "Ravi Kumar")
	s.edit(t, user.Uid, func(u *models.User) { u.Wallet.Main = decimal.NewFromInt(150) })

	rr := s.do(t, http.MethodPost, "/users/"+user.Uid+"/kyc", api.NewKycSubmission{
		FullName: "Ravi Kumar", DocumentType: "PAN", DocumentNumber: "ABCDE1234F",
	}, "")
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	// Act
	rr = s.do(t, http.MethodPost, "/admin/kyc/"+user.Uid, api.KycReview{Status: "approved"}, rootAdmin)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodPost, "/users/"+user.Uid+"/withdrawals",
		api.NewWithdrawal{Amount: decimal.NewFromInt(100), Method: "BANK", Details: "IFSC0001"}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	withdrawal := decode[api.Withdrawal](t, rr)

	rr = s.do(t, http.MethodPost, "/admin/withdrawals/"+withdrawal.Id, api.WithdrawalOutcome{Status: "FAILED"}, rootAdmin)

	// Assert
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "FAILED", decode[api.Withdrawal](t, rr).Status)
	assert.True(t, decimal.RequireFromString("85").Equal(withdrawal.NetAmount))

	rr = s.do(t, http.MethodGet, "/users/"+user.Uid, nil, "")
	got := decode[api.User](t, rr)
	assert.True(t, decimal.NewFromInt(150).Equal(got.Wallet.Main), got.Wallet.Main.String())

	rr = s.do(t, http.MethodGet, "/admin/audit", nil, rootAdmin)
	require.Equal(t, http.StatusOK, rr.Code)
	audit := decode[[]api.AuditEntry](t, rr)
	require.Len(t, audit, 2)
	assert.Equal(t, "PAYOUT_FAILED", audit[0].Action)
	assert.Equal(t, "KYC_APPROVED", audit[1].Action)
}

func TestAdminRoutes(t *testing.T) {
	s := newServer(t)

	t.Run("Missing Identity", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/admin/users", nil, "")
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("Whoami", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/admin/me", nil, rootAdmin)
		require.Equal(t, http.StatusOK, rr.Code)
		me := decode[api.Admin](t, rr)
		assert.Equal(t, "SUPER_ADMIN", me.Role)
		assert.Contains(t, me.Capabilities, "EMERGENCY_CONTROL")
	})

	t.Run("Create And Delete Admin", func(t *testing.T) {
		rr := s.do(t, http.MethodPost, "/admin/admins", api.NewAdmin{Name: "Kiran", Role: "FINANCE_ADMIN"}, rootAdmin)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		created := decode[api.Admin](t, rr)

		rr = s.do(t, http.MethodPut, "/admin/settings", api.Settings{}, created.Id)
		assert.Equal(t, http.StatusForbidden, rr.Code)

		rr = s.do(t, http.MethodDelete, "/admin/admins/"+created.Id, nil, rootAdmin)
		assert.Equal(t, http.StatusNoContent, rr.Code)

		rr = s.do(t, http.MethodGet, "/admin/audit?admin_id="+created.Id, nil, rootAdmin)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, decode[[]api.AuditEntry](t, rr))
	})

	t.Run("Emergency Pause Returns 503", func(t *testing.T) {
		user := s.signup(t, "Meera")
		rr := s.do(t, http.MethodPut, "/admin/emergency", api.EmergencyToggle{Flag: "earnings_paused", Value: true}, rootAdmin)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.True(t, decode[api.EmergencyState](t, rr).EarningsPaused)

		rr = s.do(t, http.MethodPost, "/users/"+user.Uid+"/tasks", api.NewTask{Type: "LINK"}, "")
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, "EMERGENCY_PAUSED", decode[api.Error](t, rr).Code)
	})

	t.Run("Maintenance Mode Blocks User Routes Only", func(t *testing.T) {
		settings := models.DefaultSettings()
		settings.MaintenanceMode = true
		rr := s.do(t, http.MethodPut, "/admin/settings", api.Settings(settings), rootAdmin)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		rr = s.do(t, http.MethodGet, "/plans", nil, "")
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

		rr = s.do(t, http.MethodGet, "/admin/dashboard", nil, rootAdmin)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestPublicRoutes(t *testing.T) {
	s := newServer(t)

	t.Run("Plans", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/plans", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		catalog := decode[[]api.Plan](t, rr)
		require.Len(t, catalog, 5)
		assert.Equal(t, "TRIAL", catalog[0].Id)
	})

	t.Run("Leaderboard Accepts Lowercase", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/leaderboard/weekly", nil, "")
		assert.Equal(t, http.StatusOK, rr.Code)

		rr = s.do(t, http.MethodGet, "/leaderboard/hourly", nil, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Metrics", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/metrics", nil, "")
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
