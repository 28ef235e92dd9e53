package engine

import (
	"context"
	"testing"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnlockBonus(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty Bonus Is Always No Balance", func(t *testing.T) {
		e, s, _ := newTestEngine(t)
		u := createUser(t, e, "Alice", "")
		setUser(t, s, u.UID, func(u *models.User) { u.BonusUnlock.HasCompletedWithdrawal = true })

		for i := 0; i < 2; i++ {
			_, err := e.UnlockBonus(ctx, u.UID)
			assert.ErrorIs(t, err, ruleerr.ErrNoBalance)
		}
		assert.Empty(t, ledger(t, s, u.UID))
	})

	t.Run("Neither Condition Met", func(t *testing.T) {
		e, s, _ := newTestEngine(t)
		u := createUser(t, e, "Bob", "")
		setUser(t, s, u.UID, func(u *models.User) {
			u.Wallet.Bonus = decimal.NewFromInt(5)
			u.BonusUnlock.ConsecutiveDaysActive = 6
		})

		_, err := e.UnlockBonus(ctx, u.UID)

		assert.ErrorIs(t, err, ruleerr.ErrRequirementNotMet)
		assertDecimal(t, "5", getUser(t, s, u.UID).Wallet.Bonus)
	})

	t.Run("Withdrawal Alone Is Enough", func(t *testing.T) {
		// Arrange
		e, s, _ := newTestEngine(t)
		u := createUser(t, e, "Carol", "")
		setUser(t, s, u.UID, func(u *models.User) {
			u.Wallet.Main = decimal.NewFromInt(2)
			u.Wallet.Bonus = decimal.RequireFromString("3.25")
			u.BonusUnlock.HasCompletedWithdrawal = true
		})

		// Act
		moved, err := e.UnlockBonus(ctx, u.UID)

		// Assert
		require.NoError(t, err)
		assertDecimal(t, "3.25", moved)
		got := getUser(t, s, u.UID)
		assertDecimal(t, "5.25", got.Wallet.Main)
		assert.True(t, got.Wallet.Bonus.IsZero())

		entries := ledger(t, s, u.UID)
		require.Len(t, entries, 1)
		assert.Equal(t, models.BONUS_UNLOCK, entries[0].Type)
		assert.Equal(t, models.COMPLETED, entries[0].Status)
		assertDecimal(t, "3.25", entries[0].Amount)
	})

	t.Run("Seven Day Streak Is Enough", func(t *testing.T) {
		e, s, _ := newTestEngine(t)
		u := createUser(t, e, "Dave", "")
		setUser(t, s, u.UID, func(u *models.User) {
			u.Wallet.Bonus = decimal.NewFromInt(1)
			u.BonusUnlock.ConsecutiveDaysActive = 7
		})

		_, err := e.UnlockBonus(ctx, u.UID)

		assert.NoError(t, err)
	})
}
