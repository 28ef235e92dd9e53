package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	EARN_VIDEO        TransactionType = "EARN_VIDEO"
	EARN_LINK         TransactionType = "EARN_LINK"
	REFERRAL_BONUS    TransactionType = "REFERRAL_BONUS"
	LEADERBOARD_BONUS TransactionType = "LEADERBOARD_BONUS"
	PLAN_PURCHASE     TransactionType = "PLAN_PURCHASE"
	WITHDRAWAL        TransactionType = "WITHDRAWAL"
	FEE_PLATFORM      TransactionType = "FEE_PLATFORM"
	FEE_TX            TransactionType = "FEE_TX"
	BONUS_UNLOCK      TransactionType = "BONUS_UNLOCK"
	ADMIN_ADJUSTMENT  TransactionType = "ADMIN_ADJUSTMENT"
)

// EarnType maps a task type to its ledger transaction type.
func EarnType(t TaskType) TransactionType {
	if t == VIDEO {
		return EARN_VIDEO
	}
	return EARN_LINK
}

// TransactionStatus defines the possible states of a ledger entry or withdrawal.
type TransactionStatus string

const (
	PENDING   TransactionStatus = "PENDING"
	COMPLETED TransactionStatus = "COMPLETED"
	FAILED    TransactionStatus = "FAILED"
	CANCELLED TransactionStatus = "CANCELLED"
)

// Currency of a ledger amount. Earnings are USD, plan payments INR.
type Currency string

const (
	USD Currency = "USD"
	INR Currency = "INR"
)

// LedgerEntry is a single immutable posting against a user's wallet.
type LedgerEntry struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id"`
	Type         TransactionType   `json:"type"`
	Amount       decimal.Decimal   `json:"amount"`
	Currency     Currency          `json:"currency"`
	Status       TransactionStatus `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Description  string            `json:"description"`
	BalanceAfter Wallet            `json:"balance_after"`
	ReferenceID  string            `json:"reference_id,omitempty"`
}

// WithdrawalMethod is the payout rail chosen by the user.
type WithdrawalMethod string

const (
	UPI  WithdrawalMethod = "UPI"
	BANK WithdrawalMethod = "BANK"
)

// Valid reports whether m is a supported payout rail.
func (m WithdrawalMethod) Valid() bool {
	return m == UPI || m == BANK
}

// WithdrawalRequest is a payout awaiting admin resolution.
type WithdrawalRequest struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	Amount         decimal.Decimal   `json:"amount"`
	NetAmount      decimal.Decimal   `json:"net_amount"`
	PlatformFee    decimal.Decimal   `json:"platform_fee"`
	TransactionFee decimal.Decimal   `json:"transaction_fee"`
	Status         TransactionStatus `json:"status"`
	Method         WithdrawalMethod  `json:"method"`
	Details        string            `json:"details"`
	UserKycStatus  KycStatus         `json:"user_kyc_status"`
	EntryIDs       []string          `json:"entry_ids"`
	ProcessedBy    string            `json:"processed_by,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
