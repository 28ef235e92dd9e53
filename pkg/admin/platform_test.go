package admin

import (
	"context"
	"testing"
	"time"

	"github.com/chris/fairtask-ledger/pkg/engine"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleEmergencyFlag(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, w := f.pendingWithdrawal(t)
	u := f.user(t, w.UserID)

	t.Run("Pause Withdrawals", func(t *testing.T) {
		state, err := f.svc.ToggleEmergencyFlag(ctx, root, models.WithdrawalsPaused, true)

		require.NoError(t, err)
		assert.True(t, state.WithdrawalsPaused)
		assert.Equal(t, ActionEmergency, f.lastAudit(t).Action)

		_, err = f.engine.RequestWithdrawal(ctx, u.UID, engine.WithdrawalInput{
			Amount: decimal.NewFromInt(10), Method: models.UPI, Details: "payee@upi",
		})
		assert.ErrorIs(t, err, ruleerr.ErrEmergencyPaused)
	})

	t.Run("Resume", func(t *testing.T) {
		state, err := f.svc.ToggleEmergencyFlag(ctx, root, models.WithdrawalsPaused, false)
		require.NoError(t, err)
		assert.False(t, state.WithdrawalsPaused)

		got, err := f.svc.GetEmergencyState(ctx, root)
		require.NoError(t, err)
		assert.Equal(t, state, got)
	})

	t.Run("Unknown Flag", func(t *testing.T) {
		_, err := f.svc.ToggleEmergencyFlag(ctx, root, "everything_paused", true)
		assert.ErrorIs(t, err, ruleerr.ErrInvalidArgument)
	})
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("New Fees Apply To Next Withdrawal", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		settings, err := f.svc.GetSettings(ctx, root)
		require.NoError(t, err)
		settings.PlatformFeePercent = decimal.NewFromInt(2)
		settings.TransactionFeePercent = decimal.NewFromInt(1)

		// Act
		_, err = f.svc.UpdateSettings(ctx, root, settings)

		// Assert
		require.NoError(t, err)
		_, w := f.pendingWithdrawal(t)
		assertDecimal(t, "97", w.NetAmount)
		assertDecimal(t, "2", w.PlatformFee)
		assertDecimal(t, "1", w.TransactionFee)
		assert.Equal(t, ActionUpdateSettings, f.lastAudit(t).Action)
	})

	t.Run("Validation", func(t *testing.T) {
		f := newFixture(t)
		base := models.DefaultSettings()

		bad := base
		bad.PlatformFeePercent = decimal.NewFromInt(-1)
		_, err := f.svc.UpdateSettings(ctx, root, bad)
		assert.ErrorIs(t, err, ruleerr.ErrInvalidArgument)

		bad = base
		bad.PlatformFeePercent = decimal.NewFromInt(60)
		bad.TransactionFeePercent = decimal.NewFromInt(40)
		_, err = f.svc.UpdateSettings(ctx, root, bad)
		assert.ErrorIs(t, err, ruleerr.ErrInvalidArgument)

		bad = base
		bad.MinWithdrawalPaid = decimal.NewFromInt(-10)
		_, err = f.svc.UpdateSettings(ctx, root, bad)
		assert.ErrorIs(t, err, ruleerr.ErrInvalidArgument)

		got, err := f.svc.GetSettings(ctx, root)
		require.NoError(t, err)
		assertDecimal(t, "10", got.PlatformFeePercent)
	})

	t.Run("Finance Admin Cannot Change Settings", func(t *testing.T) {
		f := newFixture(t)
		finance := f.addAdmin(t, models.FINANCE_ADMIN)

		_, err := f.svc.UpdateSettings(ctx, finance, models.DefaultSettings())
		assert.ErrorIs(t, err, ruleerr.ErrForbidden)
	})
}

func TestAwardLeaderboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, engine.WithHoldDuration(0))
	u := f.addUser(t, "Meera Iyer")
	_, err := f.engine.CompleteTask(ctx, u.UID, models.VIDEO)
	require.NoError(t, err)
	f.now = f.now.Add(time.Minute)
	_, err = f.engine.ReconcileHolds(ctx)
	require.NoError(t, err)

	t.Run("Pays And Audits", func(t *testing.T) {
		awards, err := f.svc.AwardLeaderboard(ctx, root, engine.DAILY)

		require.NoError(t, err)
		require.Len(t, awards, 1)
		assert.Equal(t, u.UID, awards[0].UserID)
		assertDecimal(t, "2.0", f.user(t, u.UID).Wallet.Bonus)

		audit := f.lastAudit(t)
		assert.Equal(t, ActionLeaderboardAward, audit.Action)
		assert.Equal(t, string(engine.DAILY), audit.TargetID)
	})

	t.Run("Second Award Rejected", func(t *testing.T) {
		_, err := f.svc.AwardLeaderboard(ctx, root, engine.DAILY)
		assert.ErrorIs(t, err, ruleerr.ErrInvalidState)
	})

	t.Run("Unknown Timeframe", func(t *testing.T) {
		_, err := f.svc.AwardLeaderboard(ctx, root, "HOURLY")
		assert.ErrorIs(t, err, ruleerr.ErrInvalidArgument)
	})
}

func TestGetAuditLog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	auditor := f.addAdmin(t, models.AUDITOR)
	u := f.addUser(t, "Ravi")
	_, err := f.svc.SetUserStatus(ctx, root, u.UID, models.BANNED)
	require.NoError(t, err)

	t.Run("All Entries Newest First", func(t *testing.T) {
		entries, err := f.svc.GetAuditLog(ctx, auditor, "")

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, ActionUserStatusChange, entries[0].Action)
		assert.Equal(t, ActionCreateAdmin, entries[1].Action)
	})

	t.Run("Filtered By Admin", func(t *testing.T) {
		entries, err := f.svc.GetAuditLog(ctx, auditor, auditor)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Support Admin Forbidden", func(t *testing.T) {
		support := f.addAdmin(t, models.SUPPORT_ADMIN)
		_, err := f.svc.GetAuditLog(ctx, support, "")
		assert.ErrorIs(t, err, ruleerr.ErrForbidden)
	})
}
