// Package api defines the HTTP contract of the ledger: request and response
// bodies, the server interface and its chi binding.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewUser is the signup request.
type NewUser struct {
	Uid          *string `json:"uid,omitempty"`
	Name         string  `json:"name"`
	Email        string  `json:"email,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	ReferralCode string  `json:"referral_code,omitempty"`
}

// Wallet is a balance snapshot.
type Wallet struct {
	Main    decimal.Decimal `json:"main"`
	Pending decimal.Decimal `json:"pending"`
	Bonus   decimal.Decimal `json:"bonus"`
	Total   decimal.Decimal `json:"total"`
}

// DailyStats are today's task counters.
type DailyStats struct {
	Date          string `json:"date"`
	VideosWatched int    `json:"videos_watched"`
	LinksVisited  int    `json:"links_visited"`
}

// ReferralStats are downstream counts and lifetime commission.
type ReferralStats struct {
	L1Count       int             `json:"l1_count"`
	L2Count       int             `json:"l2_count"`
	L3Count       int             `json:"l3_count"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
}

// BonusProgress reports progress towards unlocking the bonus bucket.
type BonusProgress struct {
	ConsecutiveDaysActive  int  `json:"consecutive_days_active"`
	RequiredDays           int  `json:"required_days"`
	HasCompletedWithdrawal bool `json:"has_completed_withdrawal"`
	Unlocked               bool `json:"unlocked"`
}

// Kyc is the verification state shown to users and admins.
type Kyc struct {
	Status          string     `json:"status"`
	DocumentType    string     `json:"document_type,omitempty"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

// User is a user profile with balances.
type User struct {
	Uid           string        `json:"uid"`
	Name          string        `json:"name"`
	Email         string        `json:"email,omitempty"`
	Phone         string        `json:"phone,omitempty"`
	Status        string        `json:"status"`
	PlanId        string        `json:"plan_id"`
	PlanExpiry    time.Time     `json:"plan_expiry"`
	Wallet        Wallet        `json:"wallet"`
	ReferralCode  string        `json:"referral_code"`
	ReferredBy    string        `json:"referred_by,omitempty"`
	ReferralStats ReferralStats `json:"referral_stats"`
	DailyStats    DailyStats    `json:"daily_stats"`
	BonusProgress BonusProgress `json:"bonus_unlock_progress"`
	Kyc           Kyc           `json:"kyc"`
	PendingHolds  int           `json:"pending_holds"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NewTask is a task completion request.
type NewTask struct {
	Type string `json:"type"`
}

// TaskResult is the outcome of a completed task.
type TaskResult struct {
	Reward     decimal.Decimal `json:"reward"`
	EntryId    string          `json:"entry_id"`
	Wallet     Wallet          `json:"wallet"`
	DailyStats DailyStats      `json:"daily_stats"`
}

// TaskStatus lists today's remaining tasks.
type TaskStatus struct {
	Date            string          `json:"date"`
	VideosRemaining int             `json:"videos_remaining"`
	LinksRemaining  int             `json:"links_remaining"`
	VideoReward     decimal.Decimal `json:"video_reward"`
	LinkReward      decimal.Decimal `json:"link_reward"`
}

// NewWithdrawal is a payout request.
type NewWithdrawal struct {
	Amount  decimal.Decimal `json:"amount"`
	Method  string          `json:"method"`
	Details string          `json:"details"`
}

// Withdrawal is a payout request and its fees.
type Withdrawal struct {
	Id             string          `json:"id"`
	UserId         string          `json:"user_id"`
	Amount         decimal.Decimal `json:"amount"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	PlatformFee    decimal.Decimal `json:"platform_fee"`
	TransactionFee decimal.Decimal `json:"transaction_fee"`
	Status         string          `json:"status"`
	Method         string          `json:"method"`
	Details        string          `json:"details"`
	UserKycStatus  string          `json:"user_kyc_status"`
	ProcessedBy    string          `json:"processed_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// BonusUnlockResult reports the amount moved from bonus to main.
type BonusUnlockResult struct {
	Moved  decimal.Decimal `json:"moved"`
	Wallet Wallet          `json:"wallet"`
}

// NewKycSubmission is the identity document upload.
type NewKycSubmission struct {
	FullName           string `json:"full_name"`
	DocumentType       string `json:"document_type"`
	DocumentNumber     string `json:"document_number"`
	DocumentImageFront string `json:"document_image_front,omitempty"`
	DocumentImageBack  string `json:"document_image_back,omitempty"`
}

// PlanPurchase selects a plan tier.
type PlanPurchase struct {
	PlanId string `json:"plan_id"`
}

// LedgerEntry is one posting.
type LedgerEntry struct {
	Id           string          `json:"id"`
	UserId       string          `json:"user_id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Status       string          `json:"status"`
	Timestamp    time.Time       `json:"timestamp"`
	Description  string          `json:"description"`
	BalanceAfter Wallet          `json:"balance_after"`
	ReferenceId  string          `json:"reference_id,omitempty"`
}

// LeaderboardRow is one ranked user.
type LeaderboardRow struct {
	Rank        int             `json:"rank"`
	Name        string          `json:"name"`
	Earnings    decimal.Decimal `json:"earnings"`
	Reward      decimal.Decimal `json:"reward"`
	BonusLocked bool            `json:"bonus_locked"`
}

// LeaderboardAward is a reward credited to one user.
type LeaderboardAward struct {
	Rank    int             `json:"rank"`
	UserId  string          `json:"user_id"`
	Amount  decimal.Decimal `json:"amount"`
	EntryId string          `json:"entry_id"`
}

// Plan is a catalog entry.
type Plan struct {
	Id              string          `json:"id"`
	PriceInr        decimal.Decimal `json:"price_inr"`
	PriceUsd        decimal.Decimal `json:"price_usd"`
	DurationDays    int             `json:"duration_days"`
	DailyVideoLimit int             `json:"daily_video_limit"`
	DailyLinkLimit  int             `json:"daily_link_limit"`
	VideoReward     decimal.Decimal `json:"video_reward"`
	LinkReward      decimal.Decimal `json:"link_reward"`
	MinWithdrawal   decimal.Decimal `json:"min_withdrawal"`
}

// WithdrawalOutcome resolves a pending payout.
type WithdrawalOutcome struct {
	Status string `json:"status"`
}

// KycReview resolves a pending verification.
type KycReview struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// UserStatusChange sets a moderation status.
type UserStatusChange struct {
	Status string `json:"status"`
}

// BalanceAdjustment is a manual bucket correction.
type BalanceAdjustment struct {
	Bucket string          `json:"bucket"`
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

// AdminUser is a user with their recent ledger.
type AdminUser struct {
	User   User          `json:"user"`
	Ledger []LedgerEntry `json:"ledger"`
}

// EmergencyState holds the kill switches.
type EmergencyState struct {
	WithdrawalsPaused bool `json:"withdrawals_paused"`
	EarningsPaused    bool `json:"earnings_paused"`
	ReferralsPaused   bool `json:"referrals_paused"`
}

// EmergencyToggle sets one kill switch.
type EmergencyToggle struct {
	Flag  string `json:"flag"`
	Value bool   `json:"value"`
}

// Settings is the platform configuration.
type Settings struct {
	PlatformFeePercent    decimal.Decimal `json:"platform_fee_percent"`
	TransactionFeePercent decimal.Decimal `json:"transaction_fee_percent"`
	MinWithdrawalTrial    decimal.Decimal `json:"min_withdrawal_trial"`
	MinWithdrawalPaid     decimal.Decimal `json:"min_withdrawal_paid"`
	ReferralsEnabled      bool            `json:"referrals_enabled"`
	MaintenanceMode       bool            `json:"maintenance_mode"`
}

// AuditEntry is one administrative action.
type AuditEntry struct {
	Id        string    `json:"id"`
	AdminId   string    `json:"admin_id"`
	Role      string    `json:"role"`
	Action    string    `json:"action"`
	TargetId  string    `json:"target_id,omitempty"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAdmin creates an operator.
type NewAdmin struct {
	Name        string   `json:"name"`
	Phone       string   `json:"phone,omitempty"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

// Admin is an operator.
type Admin struct {
	Id           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`
	Capabilities []string  `json:"capabilities"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Dashboard is the admin overview.
type Dashboard struct {
	TotalUsers         int             `json:"total_users"`
	ActiveUsers        int             `json:"active_users"`
	PendingKyc         int             `json:"pending_kyc"`
	PendingWithdrawals int             `json:"pending_withdrawals"`
	PendingPayout      decimal.Decimal `json:"pending_payout"`
	TotalMain          decimal.Decimal `json:"total_main"`
	TotalPending       decimal.Decimal `json:"total_pending"`
	TotalBonus         decimal.Decimal `json:"total_bonus"`
	Emergency          EmergencyState  `json:"emergency"`
}
