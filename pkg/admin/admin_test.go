package admin

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/chris/fairtask-ledger/pkg/engine"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/storage"
	"github.com/chris/fairtask-ledger/pkg/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const root = "admin-root"

type fixture struct {
	svc    *Service
	engine *engine.Engine
	store  *memory.Store
	now    time.Time
}

func newFixture(t *testing.T, opts ...engine.Option) *fixture {
	t.Helper()
	f := &fixture{store: memory.New(), now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]engine.Option{engine.WithClock(func() time.Time { return f.now })}, opts...)
	f.engine = engine.New(f.store, logger, opts...)
	f.svc = New(f.store, f.engine, logger)
	_, err := f.svc.Bootstrap(context.Background(), root, "Root")
	require.NoError(t, err)
	return f
}

func (f *fixture) addAdmin(t *testing.T, role models.AdminRole, perms ...models.Capability) string {
	t.Helper()
	a, err := f.svc.CreateAdmin(context.Background(), root, NewAdmin{Name: string(role), Role: role, Permissions: perms})
	require.NoError(t, err)
	return a.ID
}

func (f *fixture) addUser(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.engine.CreateUser(context.Background(), engine.NewUser{Name: name})
	require.NoError(t, err)
	return u
}

func (f *fixture) edit(t *testing.T, userID string, fn func(u *models.User)) {
	t.Helper()
	_, err := f.store.UpdateUser(context.Background(), userID, func(u *models.User) (*storage.Mutation, error) {
		fn(u)
		return nil, nil
	})
	require.NoError(t, err)
}

func (f *fixture) user(t *testing.T, userID string) *models.User {
	t.Helper()
	u, err := f.store.GetUser(context.Background(), userID)
	require.NoError(t, err)
	return u
}

func (f *fixture) lastAudit(t *testing.T) models.AuditLogEntry {
	t.Helper()
	entries, err := f.store.ListAudit(context.Background(), "")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	return entries[0]
}

// pendingWithdrawal files a 100 USD request for a funded, verified user.
func (f *fixture) pendingWithdrawal(t *testing.T) (*models.User, *models.WithdrawalRequest) {
	t.Helper()
	u := f.addUser(t, "Payee")
	f.edit(t, u.UID, func(u *models.User) {
		u.Kyc.Status = models.KYC_APPROVED
		u.Wallet.Main = decimal.NewFromInt(150)
	})
	w, err := f.engine.RequestWithdrawal(context.Background(), u.UID, engine.WithdrawalInput{
		Amount: decimal.NewFromInt(100), Method: models.BANK, Details: "IFSC0001",
	})
	require.NoError(t, err)
	return u, w
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}
