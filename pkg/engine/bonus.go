package engine

import (
	"context"
	"time"

	"github.com/chris/fairtask-ledger/pkg/metrics"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/plans"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/chris/fairtask-ledger/pkg/storage"
	"github.com/shopspring/decimal"
)

// BonusUnlocked reports whether the user may move the bonus bucket to main:
// a streak of plans.RequiredDays active days, or any withdrawal requested.
func BonusUnlocked(p models.BonusUnlockProgress) bool {
	return p.ConsecutiveDaysActive >= plans.RequiredDays || p.HasCompletedWithdrawal
}

// UnlockBonus moves the whole bonus bucket to main and returns the amount.
// An empty bucket is rejected before eligibility is considered.
func (e *Engine) UnlockBonus(ctx context.Context, userID string) (moved decimal.Decimal, err error) {
	defer func(start time.Time) { metrics.Observe("unlock_bonus", start, err) }(time.Now())

	now := e.now()
	var entry models.LedgerEntry
	updated, err := e.store.UpdateUser(ctx, userID, func(u *models.User) (*storage.Mutation, error) {
		if !u.Wallet.Bonus.IsPositive() {
			return nil, ruleerr.New(ruleerr.NoBalance, "bonus balance is empty")
		}
		if !BonusUnlocked(u.BonusUnlock) {
			return nil, ruleerr.New(ruleerr.RequirementNotMet,
				"bonus unlocks after %d active days or a withdrawal", plans.RequiredDays)
		}

		moved = u.Wallet.Bonus
		u.Wallet.Main = u.Wallet.Main.Add(moved)
		u.Wallet.Bonus = decimal.Zero
		entry = e.NewEntry(u, models.BONUS_UNLOCK, moved, models.USD, models.COMPLETED, now, "Bonus unlocked to main wallet")
		return &storage.Mutation{Entries: []models.LedgerEntry{entry}}, nil
	})
	if err != nil {
		return decimal.Zero, userErr(err, userID, "unlock bonus")
	}

	e.Publish(ctx, updated, entry)
	return moved, nil
}
