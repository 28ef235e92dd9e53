package admin

import (
	"context"
	"testing"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminDirectory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("Bootstrap Is Idempotent", func(t *testing.T) {
		a, err := f.svc.Bootstrap(ctx, root, "Another Name")
		require.NoError(t, err)
		assert.Equal(t, "Root", a.Name)
	})

	t.Run("Create With Explicit Permissions", func(t *testing.T) {
		created, err := f.svc.CreateAdmin(ctx, root, NewAdmin{
			Name: "Kiran", Role: models.CONTENT_ADMIN, Permissions: []models.Capability{models.VIEW_AUDIT},
		})

		require.NoError(t, err)
		assert.True(t, created.Active)
		_, caps, err := f.svc.Whoami(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, []models.Capability{models.VIEW_AUDIT}, caps)

		admins, err := f.svc.ListAdmins(ctx, root)
		require.NoError(t, err)
		assert.Len(t, admins, 2)
	})

	t.Run("Create Rejects Unknown Role Or Capability", func(t *testing.T) {
		_, err := f.svc.CreateAdmin(ctx, root, NewAdmin{Name: "X", Role: "JANITOR"})
		assert.ErrorIs(t, err, ruleerr.ErrInvalidArgument)

		_, err = f.svc.CreateAdmin(ctx, root, NewAdmin{Name: "X", Role: models.AUDITOR, Permissions: []models.Capability{"FLY"}})
		assert.ErrorIs(t, err, ruleerr.ErrInvalidArgument)
	})

	t.Run("Delete", func(t *testing.T) {
		target := f.addAdmin(t, models.AUDITOR)

		require.NoError(t, f.svc.DeleteAdmin(ctx, root, target))
		assert.Equal(t, ActionDeleteAdmin, f.lastAudit(t).Action)

		_, err := f.svc.GetAuditLog(ctx, target, "")
		assert.ErrorIs(t, err, ruleerr.ErrForbidden)

		err = f.svc.DeleteAdmin(ctx, root, target)
		assert.ErrorIs(t, err, ruleerr.ErrNotFound)
	})

	t.Run("Cannot Delete Self", func(t *testing.T) {
		err := f.svc.DeleteAdmin(ctx, root, root)
		assert.ErrorIs(t, err, ruleerr.ErrInvalidState)
	})
}

func TestGetDashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.pendingWithdrawal(t)
	u := f.addUser(t, "Ravi")
	submitKyc(t, f, u.UID)
	_, err := f.svc.SetUserStatus(ctx, root, u.UID, models.SUSPENDED)
	require.NoError(t, err)
	_, err = f.svc.AdjustBalance(ctx, root, Adjustment{UserID: u.UID, Bucket: BucketBonus, Amount: decimal.NewFromInt(3), Reason: "promo"})
	require.NoError(t, err)

	d, err := f.svc.GetDashboard(ctx, root)

	require.NoError(t, err)
	assert.Equal(t, 2, d.TotalUsers)
	assert.Equal(t, 1, d.ActiveUsers)
	assert.Equal(t, 1, d.PendingKyc)
	assert.Equal(t, 1, d.PendingWithdrawals)
	assertDecimal(t, "85", d.PendingPayout)
	assertDecimal(t, "50", d.TotalMain)
	assertDecimal(t, "3", d.TotalBonus)
	assert.False(t, d.Emergency.EarningsPaused)
}
