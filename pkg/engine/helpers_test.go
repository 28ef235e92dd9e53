package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/storage"
	"github.com/chris/fairtask-ledger/pkg/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *memory.Store, *testClock) {
	t.Helper()
	store := memory.New()
	clock := &testClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return New(store, logger, opts...), store, clock
}

func createUser(t *testing.T, e *Engine, name, referralCode string) *models.User {
	t.Helper()
	u, err := e.CreateUser(context.Background(), NewUser{Name: name, ReferralCode: referralCode})
	require.NoError(t, err)
	return u
}

// setUser edits a stored user directly, bypassing the rules.
func setUser(t *testing.T, s *memory.Store, userID string, fn func(u *models.User)) {
	t.Helper()
	_, err := s.UpdateUser(context.Background(), userID, func(u *models.User) (*storage.Mutation, error) {
		fn(u)
		return nil, nil
	})
	require.NoError(t, err)
}

func getUser(t *testing.T, s *memory.Store, userID string) *models.User {
	t.Helper()
	u, err := s.GetUser(context.Background(), userID)
	require.NoError(t, err)
	return u
}

func ledger(t *testing.T, s *memory.Store, userID string) []models.LedgerEntry {
	t.Helper()
	entries, err := s.ListLedgerEntries(context.Background(), userID, 0)
	require.NoError(t, err)
	return entries
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func approveKyc(t *testing.T, s *memory.Store, userID string) {
	t.Helper()
	setUser(t, s, userID, func(u *models.User) { u.Kyc.Status = models.KYC_APPROVED })
}

func fund(t *testing.T, s *memory.Store, userID string, main string) {
	t.Helper()
	setUser(t, s, userID, func(u *models.User) { u.Wallet.Main = decimal.RequireFromString(main) })
}
