package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/chris/fairtask-ledger/pkg/metrics"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/plans"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/chris/fairtask-ledger/pkg/storage"
)

// PurchasePlan switches the user to a paid tier and records the INR payment.
// Buying the tier the user already holds extends it from the current expiry.
// Referrers earn plan commission on the USD value of the price.
func (e *Engine) PurchasePlan(ctx context.Context, userID string, tier models.PlanTier) (user *models.User, err error) {
	defer func(start time.Time) { metrics.Observe("purchase_plan", start, err) }(time.Now())

	plan, err := plans.Lookup(tier)
	if err != nil || tier == models.TRIAL {
		return nil, ruleerr.New(ruleerr.InvalidArgument, "plan %q cannot be purchased", tier)
	}

	now := e.now()
	var entry models.LedgerEntry
	updated, err := e.store.UpdateUser(ctx, userID, func(u *models.User) (*storage.Mutation, error) {
		if u.Status != models.ACTIVE {
			return nil, ruleerr.New(ruleerr.AccountNotActive, "account is %s", u.Status)
		}

		start := now
		if u.PlanID == tier && u.PlanExpiry.After(now) {
			start = u.PlanExpiry
		}
		u.PlanID = tier
		u.PlanExpiry = start.AddDate(0, 0, plan.DurationDays)

		entry = e.NewEntry(u, models.PLAN_PURCHASE, plan.PriceINR.Neg(), models.INR, models.COMPLETED, now,
			fmt.Sprintf("Purchased %s plan", tier))
		return &storage.Mutation{Entries: []models.LedgerEntry{entry}}, nil
	})
	if err != nil {
		return nil, userErr(err, userID, "purchase plan")
	}

	e.logger.Info("plan purchased", "user_id", userID, "plan", tier, "expires_at", updated.PlanExpiry)
	e.payReferrals(ctx, updated, plan.PriceUSD(), planCommission, entry.ID)
	return updated, nil
}
