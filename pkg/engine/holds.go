package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chris/fairtask-ledger/pkg/metrics"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/chris/fairtask-ledger/pkg/scheduler"
	"github.com/chris/fairtask-ledger/pkg/storage"
)

var errHoldGone = errors.New("hold already released")

func (e *Engine) scheduleHold(ctx context.Context, userID string, hold models.Hold) {
	if e.scheduler == nil {
		return
	}
	msg := scheduler.ReleaseMessage{UserID: userID, EntryID: hold.EntryID, ReleaseAt: hold.ReleaseAt}
	if err := e.scheduler.ScheduleRelease(ctx, msg); err != nil {
		metrics.ScheduleFailed()
		e.logger.Error("CRITICAL: reward committed but release was not scheduled, reconciliation will pick it up",
			"user_id", userID, "entry_id", hold.EntryID, "error", err)
	}
}

// ReleaseHold moves a verified reward from pending to main. It returns false
// when the hold was already released, and HoldNotDue before its release time.
func (e *Engine) ReleaseHold(ctx context.Context, userID, entryID string) (released bool, err error) {
	defer func(start time.Time) { metrics.Observe("release_hold", start, err) }(time.Now())

	now := e.now()
	var entry models.LedgerEntry
	updated, err := e.store.UpdateUser(ctx, userID, func(u *models.User) (*storage.Mutation, error) {
		idx := -1
		for i, h := range u.Holds {
			if h.EntryID == entryID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, errHoldGone
		}
		h := u.Holds[idx]
		if now.Before(h.ReleaseAt) {
			return nil, ruleerr.New(ruleerr.HoldNotDue, "hold %s releases at %s", entryID, h.ReleaseAt.Format(time.RFC3339))
		}

		amount := h.Amount
		if amount.GreaterThan(u.Wallet.Pending) {
			amount = u.Wallet.Pending
		}
		u.Wallet.Pending = u.Wallet.Pending.Sub(amount)
		u.Wallet.Main = u.Wallet.Main.Add(amount)
		u.Holds = append(u.Holds[:idx:idx], u.Holds[idx+1:]...)

		entry = e.NewEntry(u, models.EarnType(h.TaskType), amount, models.USD, models.COMPLETED, now, "Verified: "+taskDescription(h.TaskType))
		entry.ReferenceID = h.EntryID
		return &storage.Mutation{Entries: []models.LedgerEntry{entry}}, nil
	})
	if errors.Is(err, errHoldGone) {
		return false, nil
	}
	if err != nil {
		return false, userErr(err, userID, "release hold")
	}

	e.Publish(ctx, updated, entry)
	return true, nil
}

// ProcessRelease handles a scheduled release. A release delivered early is
// scheduled again for its due time.
func (e *Engine) ProcessRelease(ctx context.Context, msg scheduler.ReleaseMessage) error {
	released, err := e.ReleaseHold(ctx, msg.UserID, msg.EntryID)
	switch {
	case errors.Is(err, ruleerr.ErrHoldNotDue):
		if e.scheduler == nil {
			return err
		}
		return e.scheduler.ScheduleRelease(ctx, msg)
	case errors.Is(err, ruleerr.ErrNotFound):
		e.logger.Warn("dropping release for unknown user", "user_id", msg.UserID, "entry_id", msg.EntryID)
		return nil
	case err != nil:
		return err
	}

	if released {
		e.logger.Info("hold released", "user_id", msg.UserID, "entry_id", msg.EntryID)
	}
	return nil
}

// ReconcileHolds finds holds that are past due and enqueues them again, or
// releases them directly when no scheduler is configured. It returns the
// number of holds handled.
func (e *Engine) ReconcileHolds(ctx context.Context) (int, error) {
	due, err := e.store.ListDueHolds(ctx, e.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list due holds: %w", err)
	}

	var errs []error
	handled := 0
	for _, d := range due {
		msg := scheduler.ReleaseMessage{UserID: d.UserID, EntryID: d.Hold.EntryID, ReleaseAt: d.Hold.ReleaseAt}
		if e.scheduler != nil {
			err = e.scheduler.ScheduleRelease(ctx, msg)
		} else {
			err = e.ProcessRelease(ctx, msg)
		}
		if err != nil {
			e.logger.Error("failed to reconcile hold", "user_id", d.UserID, "entry_id", d.Hold.EntryID, "error", err)
			errs = append(errs, err)
			continue
		}
		handled++
	}

	return handled, errors.Join(errs...)
}
