package admin

import (
	"context"
	"fmt"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/chris/fairtask-ledger/pkg/storage"
)

// ListWithdrawals returns every payout request, newest first.
func (s *Service) ListWithdrawals(ctx context.Context, adminID string) ([]models.WithdrawalRequest, error) {
	if _, err := s.requireCapability(ctx, adminID, models.VIEW_FINANCE); err != nil {
		return nil, err
	}
	out, err := s.store.ListWithdrawals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	return out, nil
}

// ProcessWithdrawal resolves a PENDING request. The request's ledger entries
// take the same status; a FAILED payout refunds the gross amount to main.
func (s *Service) ProcessWithdrawal(ctx context.Context, adminID, requestID string, outcome models.TransactionStatus) (*models.WithdrawalRequest, error) {
	if outcome != models.COMPLETED && outcome != models.FAILED {
		return nil, ruleerr.New(ruleerr.InvalidArgument, "outcome must be COMPLETED or FAILED")
	}
	actor, err := s.requireCapability(ctx, adminID, models.APPROVE_WITHDRAWALS)
	if err != nil {
		return nil, err
	}

	now := s.engine.Now()
	var owner *models.User
	var refund models.LedgerEntry
	w, err := s.store.UpdateWithdrawal(ctx, requestID, func(w *models.WithdrawalRequest, u *models.User) (*storage.Mutation, error) {
		if w.Status != models.PENDING {
			return nil, ruleerr.New(ruleerr.NotFound, "no pending withdrawal %s", requestID)
		}
		w.Status = outcome
		w.ProcessedBy = actor.ID
		w.UpdatedAt = now

		m := &storage.Mutation{SettleEntries: w.EntryIDs, SettleStatus: outcome}
		if outcome == models.FAILED {
			u.Wallet.Main = u.Wallet.Main.Add(w.Amount)
			refund = s.engine.NewEntry(u, models.ADMIN_ADJUSTMENT, w.Amount, models.USD, models.COMPLETED, now,
				"Refund of failed withdrawal")
			refund.ReferenceID = w.ID
			m.Entries = []models.LedgerEntry{refund}
		}
		owner = u
		return m, nil
	})
	if err != nil {
		return nil, storeErr(err, "withdrawal", requestID, "process withdrawal")
	}

	action := ActionPayoutCompleted
	if outcome == models.FAILED {
		action = ActionPayoutFailed
		s.engine.Publish(ctx, owner, refund)
	}
	s.audit(ctx, actor, action, w.ID, fmt.Sprintf("%s %s to %s via %s", outcome, w.Amount.StringFixed(2), w.UserID, w.Method))
	return w, nil
}
