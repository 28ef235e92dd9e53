package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/plans"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/chris/fairtask-ledger/pkg/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewUser is the data supplied at signup.
type NewUser struct {
	UID          string
	Name         string
	Email        string
	Phone        string
	ReferralCode string
}

// CreateUser registers a user on the TRIAL plan and links it to the owner of
// ReferralCode, if any. Referral counts of up to three ancestors are bumped.
func (e *Engine) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ruleerr.New(ruleerr.InvalidArgument, "name is required")
	}
	if in.UID == "" {
		in.UID = uuid.New().String()
	}

	var referrer *models.User
	if in.ReferralCode != "" {
		r, err := e.store.FindUserByReferralCode(ctx, strings.ToUpper(in.ReferralCode))
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ruleerr.New(ruleerr.InvalidArgument, "unknown referral code %q", in.ReferralCode)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve referral code: %w", err)
		}
		referrer = r
	}

	trial, err := plans.Lookup(models.TRIAL)
	if err != nil {
		return nil, err
	}

	now := e.now()
	u := &models.User{
		UID:        in.UID,
		Name:       strings.TrimSpace(in.Name),
		Email:      in.Email,
		Phone:      in.Phone,
		Status:     models.ACTIVE,
		PlanID:     models.TRIAL,
		PlanExpiry: now.AddDate(0, 0, trial.DurationDays),
		Wallet: models.Wallet{
			Main:    decimal.Zero,
			Pending: decimal.Zero,
			Bonus:   decimal.Zero,
		},
		ReferralStats: models.ReferralStats{TotalEarnings: decimal.Zero},
		DailyStats:    models.DailyStats{Date: dateKey(now)},
		Kyc:           models.KycRecord{Status: models.KYC_NOT_STARTED},
		CreatedAt:     now,
	}
	if referrer != nil {
		u.ReferredBy = referrer.UID
	}

	switch _, err := e.store.GetUser(ctx, u.UID); {
	case err == nil:
		return nil, ruleerr.New(ruleerr.InvalidState, "user %s already exists", u.UID)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("failed to check for user %s: %w", u.UID, err)
	}

	// A taken id is ruled out above, so a conflict here is a referral code clash.
	var created *models.User
	for attempt := 0; attempt < 3; attempt++ {
		u.ReferralCode = e.newReferralCode(now)
		created, err = e.store.CreateUser(ctx, u)
		if !errors.Is(err, storage.ErrAlreadyExists) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	e.countReferral(ctx, created)
	return created, nil
}

// newReferralCode derives an 8 character code from the random part of a ULID.
func (e *Engine) newReferralCode(now time.Time) string {
	id := e.NewEntryID(now)
	return "FT" + id[len(id)-6:]
}

// countReferral increments the per-level referral counts of the new user's
// ancestors.
func (e *Engine) countReferral(ctx context.Context, u *models.User) {
	ancestorID := u.ReferredBy
	for level := 1; level <= ReferralLevels && ancestorID != "" && ancestorID != u.UID; level++ {
		var next string
		_, err := e.store.UpdateUser(ctx, ancestorID, func(a *models.User) (*storage.Mutation, error) {
			next = a.ReferredBy
			switch level {
			case 1:
				a.ReferralStats.L1Count++
			case 2:
				a.ReferralStats.L2Count++
			case 3:
				a.ReferralStats.L3Count++
			}
			return nil, nil
		})
		if err != nil {
			e.logger.Error("failed to update referral counts", "ancestor_id", ancestorID, "level", level, "error", err)
			return
		}
		ancestorID = next
	}
}

// GetUser returns a user with today's counters applied.
func (e *Engine) GetUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, userErr(err, userID, "get user")
	}
	rollDaily(u, e.now())
	return u, nil
}

// GetLedger returns the user's most recent ledger entries, newest first.
func (e *Engine) GetLedger(ctx context.Context, userID string, limit int32) ([]models.LedgerEntry, error) {
	if _, err := e.store.GetUser(ctx, userID); err != nil {
		return nil, userErr(err, userID, "get user")
	}
	entries, err := e.store.ListLedgerEntries(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}
