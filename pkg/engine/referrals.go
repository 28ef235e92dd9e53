package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/chris/fairtask-ledger/pkg/metrics"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/plans"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/chris/fairtask-ledger/pkg/storage"
	"github.com/shopspring/decimal"
)

// ReferralLevels is how far up the ReferredBy chain commissions are paid.
const ReferralLevels = 3

// Commission shares per level, L1 first.
var (
	planCommission = [ReferralLevels]decimal.Decimal{
		decimal.RequireFromString("0.08"),
		decimal.RequireFromString("0.04"),
		decimal.RequireFromString("0.02"),
	}
	taskCommission = [ReferralLevels]decimal.Decimal{
		decimal.RequireFromString("0.03"),
		decimal.RequireFromString("0.02"),
		decimal.RequireFromString("0.01"),
	}
)

// PlanCommission returns the plan-purchase share paid to level (1-based).
func PlanCommission(level int) decimal.Decimal {
	if level < 1 || level > ReferralLevels {
		return decimal.Zero
	}
	return planCommission[level-1]
}

// TaskCommission returns the task-completion share paid to level (1-based).
func TaskCommission(level int) decimal.Decimal {
	if level < 1 || level > ReferralLevels {
		return decimal.Zero
	}
	return taskCommission[level-1]
}

// referralsOpen reports whether commissions may be paid right now.
func (e *Engine) referralsOpen(ctx context.Context) (bool, error) {
	state, err := e.EmergencyState(ctx)
	if err != nil {
		return false, err
	}
	if state.ReferralsPaused {
		return false, nil
	}
	settings, err := e.Settings(ctx)
	if err != nil {
		return false, err
	}
	return settings.ReferralsEnabled, nil
}

// payReferrals credits the bonus bucket of up to three referrers of source.
// Each credit is its own atomic write; a failure stops the walk and is logged,
// since the event that triggered it has already been committed.
func (e *Engine) payReferrals(ctx context.Context, source *models.User, amount decimal.Decimal, rates [ReferralLevels]decimal.Decimal, sourceRef string) {
	if source.ReferredBy == "" || !amount.IsPositive() {
		return
	}
	open, err := e.referralsOpen(ctx)
	if err != nil {
		e.logger.Error("failed to check referral gate", "user_id", source.UID, "error", err)
		return
	}
	if !open {
		return
	}

	referrerID := source.ReferredBy
	for level := 1; level <= ReferralLevels && referrerID != "" && referrerID != source.UID; level++ {
		commission := amount.Mul(rates[level-1]).Round(plans.RewardPrecision)
		next, err := e.creditReferral(ctx, referrerID, level, commission, source, sourceRef)
		if err != nil {
			if !errors.Is(err, ruleerr.ErrNotFound) {
				e.logger.Error("failed to credit referral commission",
					"referrer_id", referrerID, "level", level, "source_user_id", source.UID, "error", err)
			}
			return
		}
		referrerID = next
	}
}

func (e *Engine) creditReferral(ctx context.Context, referrerID string, level int, commission decimal.Decimal, source *models.User, sourceRef string) (string, error) {
	now := e.now()
	var entry models.LedgerEntry
	var next string
	updated, err := e.store.UpdateUser(ctx, referrerID, func(u *models.User) (*storage.Mutation, error) {
		next = u.ReferredBy
		if !commission.IsPositive() {
			return nil, nil
		}
		u.Wallet.Bonus = u.Wallet.Bonus.Add(commission)
		u.ReferralStats.TotalEarnings = u.ReferralStats.TotalEarnings.Add(commission)
		entry = e.NewEntry(u, models.REFERRAL_BONUS, commission, models.USD, models.COMPLETED, now,
			fmt.Sprintf("Level %d referral commission from %s", level, source.Name))
		entry.ReferenceID = sourceRef
		return &storage.Mutation{Entries: []models.LedgerEntry{entry}}, nil
	})
	if err != nil {
		return "", userErr(err, referrerID, "credit referral")
	}
	if entry.ID != "" {
		e.Publish(ctx, updated, entry)
		metrics.Credited(string(models.REFERRAL_BONUS), commission)
	}
	return next, nil
}
