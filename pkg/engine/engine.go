// Package engine is the rules engine of the ledger. It decides how value is
// credited to a user's wallet, held for verification, unlocked and paid out.
// Every wallet change goes through a single storage.UserWriter.UpdateUser
// call, so the checks and the write are atomic per user.
package engine

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/chris/fairtask-ledger/pkg/scheduler"
	"github.com/chris/fairtask-ledger/pkg/storage"
	"github.com/chris/fairtask-ledger/pkg/websockets"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// DefaultHoldDuration is how long task rewards stay in the pending bucket.
const DefaultHoldDuration = 24 * time.Hour

// Engine applies the earning and payout rules.
type Engine struct {
	store     storage.EngineStore
	scheduler scheduler.Scheduler
	publisher websockets.Publisher
	logger    *slog.Logger
	now       func() time.Time
	holdFor   time.Duration

	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler sets where hold releases are enqueued. Without one, holds are
// only released by ReconcileHolds.
func WithScheduler(s scheduler.Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithPublisher sets where wallet updates are pushed.
func WithPublisher(p websockets.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithHoldDuration overrides DefaultHoldDuration.
func WithHoldDuration(d time.Duration) Option {
	return func(e *Engine) { e.holdFor = d }
}

// New creates an Engine over store.
func New(store storage.EngineStore, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		publisher: &websockets.NoOpPublisher{},
		logger:    logger,
		now:       time.Now,
		holdFor:   DefaultHoldDuration,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Store returns the store the engine writes to.
func (e *Engine) Store() storage.EngineStore {
	return e.store
}

// NewEntryID returns a time-ordered ledger entry id.
func (e *Engine) NewEntryID(t time.Time) string {
	e.idMu.Lock()
	defer e.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), e.entropy).String()
}

// NewEntry builds a ledger entry for u, snapshotting the wallet as it is now.
// Callers change the wallet first.
func (e *Engine) NewEntry(u *models.User, t models.TransactionType, amount decimal.Decimal, currency models.Currency, status models.TransactionStatus, at time.Time, description string) models.LedgerEntry {
	return models.LedgerEntry{
		ID:           e.NewEntryID(at),
		UserID:       u.UID,
		Type:         t,
		Amount:       amount,
		Currency:     currency,
		Status:       status,
		Timestamp:    at,
		Description:  description,
		BalanceAfter: u.Wallet,
	}
}

// dateKey is the UTC calendar date used by the daily counters.
func dateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// rollDaily resets the counters when the stored date is not today.
func rollDaily(u *models.User, now time.Time) {
	today := dateKey(now)
	if u.DailyStats.Date != today {
		u.DailyStats = models.DailyStats{Date: today}
	}
}

// userErr turns a storage error for userID into a rejection or a wrapped fault.
func userErr(err error, userID, action string) error {
	if _, ok := ruleerr.KindOf(err); ok {
		return err
	}
	if errors.Is(err, storage.ErrNotFound) {
		return ruleerr.New(ruleerr.NotFound, "user %s not found", userID)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// Publish pushes a wallet update for entry. Delivery is best effort.
func (e *Engine) Publish(ctx context.Context, u *models.User, entry models.LedgerEntry) {
	msg := websockets.WalletUpdate(u.UID, entry.Type, entry.ID, entry.Amount.String(), u.Wallet)
	if err := e.publisher.Publish(ctx, msg); err != nil {
		e.logger.Error("failed to publish wallet update", "user_id", u.UID, "error", err)
	}
}
