package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/chris/fairtask-ledger/pkg/metrics"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/chris/fairtask-ledger/pkg/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Fees is the split of a gross withdrawal. Net + PlatformFee + TransactionFee == Gross.
type Fees struct {
	Gross          decimal.Decimal
	Net            decimal.Decimal
	PlatformFee    decimal.Decimal
	TransactionFee decimal.Decimal
}

// ComputeFees splits gross using the fee percentages in settings. Both fees
// are rounded to cents and net takes the remainder, so no part is negative.
func ComputeFees(gross decimal.Decimal, settings models.Settings) Fees {
	platform := gross.Mul(settings.PlatformFeePercent).Div(hundred).Round(2)
	tx := gross.Mul(settings.TransactionFeePercent).Div(hundred).Round(2)
	if over := platform.Add(tx).Sub(gross); over.IsPositive() {
		tx = decimal.Max(tx.Sub(over), decimal.Zero)
	}
	return Fees{
		Gross:          gross,
		Net:            gross.Sub(platform).Sub(tx),
		PlatformFee:    platform,
		TransactionFee: tx,
	}
}

// MinimumWithdrawal returns the smallest gross amount the plan may request.
func MinimumWithdrawal(plan models.PlanTier, settings models.Settings) decimal.Decimal {
	if plan == models.TRIAL {
		return settings.MinWithdrawalTrial
	}
	return settings.MinWithdrawalPaid
}

// WithdrawalInput is a user's payout request.
type WithdrawalInput struct {
	Amount  decimal.Decimal
	Method  models.WithdrawalMethod
	Details string
}

// RequestWithdrawal debits main by the gross amount and files a PENDING
// request with its WITHDRAWAL, FEE_PLATFORM and FEE_TX ledger entries.
func (e *Engine) RequestWithdrawal(ctx context.Context, userID string, in WithdrawalInput) (req *models.WithdrawalRequest, err error) {
	defer func(start time.Time) { metrics.Observe("request_withdrawal", start, err) }(time.Now())

	if err := e.checkGate(ctx, models.WithdrawalsPaused); err != nil {
		return nil, err
	}
	settings, err := e.Settings(ctx)
	if err != nil {
		return nil, err
	}

	now := e.now()
	var withdrawal *models.WithdrawalRequest
	var netEntry models.LedgerEntry
	updated, err := e.store.UpdateUser(ctx, userID, func(u *models.User) (*storage.Mutation, error) {
		if u.Kyc.Status != models.KYC_APPROVED {
			return nil, ruleerr.New(ruleerr.KycRequired, "identity verification is %s", u.Kyc.Status)
		}
		if !in.Amount.IsPositive() {
			return nil, ruleerr.New(ruleerr.InvalidArgument, "amount must be positive")
		}
		if !in.Method.Valid() {
			return nil, ruleerr.New(ruleerr.InvalidArgument, "unknown withdrawal method %q", in.Method)
		}
		if minimum := MinimumWithdrawal(u.PlanID, settings); in.Amount.LessThan(minimum) {
			return nil, ruleerr.New(ruleerr.BelowMinimum, "minimum withdrawal is %s", minimum.StringFixed(2))
		}
		if u.Wallet.Main.LessThan(in.Amount) {
			return nil, ruleerr.New(ruleerr.InsufficientBalance, "main balance %s is below %s", u.Wallet.Main.StringFixed(2), in.Amount.StringFixed(2))
		}

		u.Wallet.Main = u.Wallet.Main.Sub(in.Amount)
		u.BonusUnlock.HasCompletedWithdrawal = true

		fees := ComputeFees(in.Amount, settings)
		id := uuid.New().String()
		entries := []models.LedgerEntry{
			e.NewEntry(u, models.WITHDRAWAL, fees.Net.Neg(), models.USD, models.PENDING, now, fmt.Sprintf("Withdrawal via %s", in.Method)),
			e.NewEntry(u, models.FEE_PLATFORM, fees.PlatformFee.Neg(), models.USD, models.PENDING, now, "Platform fee"),
			e.NewEntry(u, models.FEE_TX, fees.TransactionFee.Neg(), models.USD, models.PENDING, now, "Transaction fee"),
		}
		ids := make([]string, len(entries))
		for i := range entries {
			entries[i].ReferenceID = id
			ids[i] = entries[i].ID
		}
		netEntry = entries[0]

		withdrawal = &models.WithdrawalRequest{
			ID:             id,
			UserID:         u.UID,
			Amount:         fees.Gross,
			NetAmount:      fees.Net,
			PlatformFee:    fees.PlatformFee,
			TransactionFee: fees.TransactionFee,
			Status:         models.PENDING,
			Method:         in.Method,
			Details:        in.Details,
			UserKycStatus:  u.Kyc.Status,
			EntryIDs:       ids,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		return &storage.Mutation{Entries: entries, Withdrawal: withdrawal}, nil
	})
	if err != nil {
		return nil, userErr(err, userID, "request withdrawal")
	}

	e.logger.Info("withdrawal requested", "user_id", userID, "withdrawal_id", withdrawal.ID, "amount", in.Amount.String())
	e.Publish(ctx, updated, netEntry)
	return withdrawal, nil
}
