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

func withdraw(amount string) WithdrawalInput {
	return WithdrawalInput{Amount: decimal.RequireFromString(amount), Method: models.UPI, Details: "alice@upi"}
}

func TestComputeFees(t *testing.T) {
	settings := models.DefaultSettings()

	t.Run("Default Fees On One Hundred", func(t *testing.T) {
		fees := ComputeFees(decimal.NewFromInt(100), settings)

		assertDecimal(t, "85.00", fees.Net)
		assertDecimal(t, "10.00", fees.PlatformFee)
		assertDecimal(t, "5.00", fees.TransactionFee)
	})

	t.Run("Parts Always Sum To Gross", func(t *testing.T) {
		for _, g := range []string{"10", "33.33", "57.77", "1234.56", "10.01"} {
			gross := decimal.RequireFromString(g)
			fees := ComputeFees(gross, settings)
			assert.True(t, gross.Equal(fees.Net.Add(fees.PlatformFee).Add(fees.TransactionFee)), g)
			assert.False(t, fees.TransactionFee.IsNegative(), g)
		}
	})

	t.Run("Rounding Never Turns A Fee Into A Credit", func(t *testing.T) {
		noTx := models.DefaultSettings()
		noTx.PlatformFeePercent = decimal.NewFromInt(10)
		noTx.TransactionFeePercent = decimal.Zero

		fees := ComputeFees(decimal.RequireFromString("10.05"), noTx)

		assertDecimal(t, "1.01", fees.PlatformFee)
		assertDecimal(t, "0", fees.TransactionFee)
		assertDecimal(t, "9.04", fees.Net)
		assertDecimal(t, "10.05", fees.Net.Add(fees.PlatformFee).Add(fees.TransactionFee))
	})
}

func TestRequestWithdrawal(t *testing.T) {
	ctx := context.Background()

	t.Run("KYC Required Until Approved", func(t *testing.T) {
		// Arrange
		e, s, _ := newTestEngine(t)
		u := createUser(t, e, "Alice", "")
		fund(t, s, u.UID, "50")

		// Act
		_, err := e.RequestWithdrawal(ctx, u.UID, withdraw("20"))

		// Assert
		assert.ErrorIs(t, err, ruleerr.ErrKycRequired)
		assertDecimal(t, "50", getUser(t, s, u.UID).Wallet.Main)

		approveKyc(t, s, u.UID)
		req, err := e.RequestWithdrawal(ctx, u.UID, withdraw("20"))
		require.NoError(t, err)
		assert.Equal(t, models.KYC_APPROVED, req.UserKycStatus)
	})

	t.Run("Trial Minimum Boundary", func(t *testing.T) {
		e, s, _ := newTestEngine(t)
		u := createUser(t, e, "Bob", "")
		approveKyc(t, s, u.UID)
		fund(t, s, u.UID, "100")

		_, err := e.RequestWithdrawal(ctx, u.UID, withdraw("9.99"))
		assert.ErrorIs(t, err, ruleerr.ErrBelowMinimum)

		_, err = e.RequestWithdrawal(ctx, u.UID, withdraw("10.00"))
		assert.NoError(t, err)
	})

	t.Run("Paid Plan Minimum", func(t *testing.T) {
		e, s, _ := newTestEngine(t)
		u := createUser(t, e, "Carol", "")
		approveKyc(t, s, u.UID)
		fund(t, s, u.UID, "100")
		setUser(t, s, u.UID, func(u *models.User) { u.PlanID = models.PRO })

		_, err := e.RequestWithdrawal(ctx, u.UID, withdraw("49.99"))
		assert.ErrorIs(t, err, ruleerr.ErrBelowMinimum)
	})

	t.Run("Debits Gross And Records Fee Entries", func(t *testing.T) {
		e, s, _ := newTestEngine(t)
		u := createUser(t, e, "Dave", "")
		approveKyc(t, s, u.UID)
		fund(t, s, u.UID, "150")

		req, err := e.RequestWithdrawal(ctx, u.UID, withdraw("100"))

		require.NoError(t, err)
		assertDecimal(t, "85.00", req.NetAmount)
		assertDecimal(t, "10.00", req.PlatformFee)
		assertDecimal(t, "5.00", req.TransactionFee)
		assert.Equal(t, models.PENDING, req.Status)
		assert.Len(t, req.EntryIDs, 3)

		got := getUser(t, s, u.UID)
		assertDecimal(t, "50", got.Wallet.Main)
		assert.True(t, got.BonusUnlock.HasCompletedWithdrawal)

		sum := decimal.Zero
		types := map[models.TransactionType]bool{}
		for _, entry := range ledger(t, s, u.UID) {
			assert.Equal(t, models.PENDING, entry.Status)
			assert.Equal(t, req.ID, entry.ReferenceID)
			sum = sum.Add(entry.Amount)
			types[entry.Type] = true
		}
		assertDecimal(t, "-100", sum)
		assert.True(t, types[models.WITHDRAWAL] && types[models.FEE_PLATFORM] && types[models.FEE_TX])

		stored, err := s.GetWithdrawal(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, u.UID, stored.UserID)
	})

	t.Run("Insufficient Balance", func(t *testing.T) {
		e, s, _ := newTestEngine(t)
		u := createUser(t, e, "Eve", "")
		approveKyc(t, s, u.UID)
		fund(t, s, u.UID, "15")

		_, err := e.RequestWithdrawal(ctx, u.UID, withdraw("20"))

		assert.ErrorIs(t, err, ruleerr.ErrInsufficientBalance)
		assert.False(t, getUser(t, s, u.UID).BonusUnlock.HasCompletedWithdrawal)
	})

	t.Run("Paused Until Toggled Back", func(t *testing.T) {
		e, s, _ := newTestEngine(t)
		u := createUser(t, e, "Frank", "")
		approveKyc(t, s, u.UID)
		fund(t, s, u.UID, "100")
		_, err := s.SetEmergencyFlag(ctx, models.WithdrawalsPaused, true)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err = e.RequestWithdrawal(ctx, u.UID, withdraw("10"))
			assert.ErrorIs(t, err, ruleerr.ErrEmergencyPaused)
		}
		assertDecimal(t, "100", getUser(t, s, u.UID).Wallet.Main)

		_, err = s.SetEmergencyFlag(ctx, models.WithdrawalsPaused, false)
		require.NoError(t, err)
		_, err = e.RequestWithdrawal(ctx, u.UID, withdraw("10"))
		assert.NoError(t, err)
	})

	t.Run("Invalid Input", func(t *testing.T) {
		e, s, _ := newTestEngine(t)
		u := createUser(t, e, "Grace", "")
		approveKyc(t, s, u.UID)
		fund(t, s, u.UID, "100")

		_, err := e.RequestWithdrawal(ctx, u.UID, withdraw("0"))
		assert.ErrorIs(t, err, ruleerr.ErrInvalidArgument)

		_, err = e.RequestWithdrawal(ctx, u.UID, WithdrawalInput{Amount: decimal.NewFromInt(20), Method: "PAYPAL"})
		assert.ErrorIs(t, err, ruleerr.ErrInvalidArgument)
	})

	t.Run("Unverified User Gets KYC Required For Any Input", func(t *testing.T) {
		e, _, _ := newTestEngine(t)
		u := createUser(t, e, "Hana", "")

		_, err := e.RequestWithdrawal(ctx, u.UID, withdraw("0"))
		assert.ErrorIs(t, err, ruleerr.ErrKycRequired)

		_, err = e.RequestWithdrawal(ctx, u.UID, WithdrawalInput{Amount: decimal.NewFromInt(20), Method: "PAYPAL"})
		assert.ErrorIs(t, err, ruleerr.ErrKycRequired)
	})
}
