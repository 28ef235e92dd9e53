package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserStatus defines the moderation state of an account.
type UserStatus string

const (
	ACTIVE    UserStatus = "ACTIVE"
	SUSPENDED UserStatus = "SUSPENDED"
	BANNED    UserStatus = "BANNED"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	switch s {
	case ACTIVE, SUSPENDED, BANNED:
		return true
	}
	return false
}

// TaskType is the kind of earning task a user completes.
type TaskType string

const (
	VIDEO TaskType = "VIDEO"
	LINK  TaskType = "LINK"
)

// Valid reports whether t is a known task type.
func (t TaskType) Valid() bool {
	return t == VIDEO || t == LINK
}

// PlanTier identifies a subscription plan.
type PlanTier string

const (
	TRIAL   PlanTier = "TRIAL"
	STARTER PlanTier = "STARTER"
	BASIC   PlanTier = "BASIC"
	PRO     PlanTier = "PRO"
	ULTRA   PlanTier = "ULTRA"
)

// Wallet holds the three balance buckets of a user.
// Main is withdrawable, Pending awaits verification and Bonus is locked
// until the unlock rule is met.
type Wallet struct {
	Main    decimal.Decimal `json:"main"`
	Pending decimal.Decimal `json:"pending"`
	Bonus   decimal.Decimal `json:"bonus"`
}

// NonNegative reports whether every bucket is >= 0.
func (w Wallet) NonNegative() bool {
	return !w.Main.IsNegative() && !w.Pending.IsNegative() && !w.Bonus.IsNegative()
}

// DailyStats are the task counters for a single UTC date.
type DailyStats struct {
	Date          string `json:"date"`
	VideosWatched int    `json:"videos_watched"`
	LinksVisited  int    `json:"links_visited"`
}

// Count returns the counter for the given task type.
func (d DailyStats) Count(t TaskType) int {
	if t == VIDEO {
		return d.VideosWatched
	}
	return d.LinksVisited
}

// BonusUnlockProgress tracks the conditions for moving bonus funds to main.
type BonusUnlockProgress struct {
	ConsecutiveDaysActive  int    `json:"consecutive_days_active"`
	HasCompletedWithdrawal bool   `json:"has_completed_withdrawal"`
	LastActiveDate         string `json:"last_active_date,omitempty"`
}

// ReferralStats counts downstream referrals per level and lifetime commission.
type ReferralStats struct {
	L1Count       int             `json:"l1_count"`
	L2Count       int             `json:"l2_count"`
	L3Count       int             `json:"l3_count"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
}

// Hold is a task reward sitting in the pending bucket until its verification
// window has passed.
type Hold struct {
	EntryID   string          `json:"entry_id"`
	TaskType  TaskType        `json:"task_type"`
	Amount    decimal.Decimal `json:"amount"`
	ReleaseAt time.Time       `json:"release_at"`
}

// User is the aggregate root for everything the ledger tracks about a person.
type User struct {
	UID           string              `json:"uid"`
	Name          string              `json:"name"`
	Email         string              `json:"email,omitempty"`
	Phone         string              `json:"phone,omitempty"`
	Status        UserStatus          `json:"status"`
	PlanID        PlanTier            `json:"plan_id"`
	PlanExpiry    time.Time           `json:"plan_expiry"`
	Wallet        Wallet              `json:"wallet"`
	ReferralCode  string              `json:"referral_code"`
	ReferredBy    string              `json:"referred_by,omitempty"`
	ReferralStats ReferralStats       `json:"referral_stats"`
	DailyStats    DailyStats          `json:"daily_stats"`
	BonusUnlock   BonusUnlockProgress `json:"bonus_unlock_progress"`
	Kyc           KycRecord           `json:"kyc"`
	Holds         []Hold              `json:"holds,omitempty"`

	// AwardedPeriods maps leaderboard periods paid to the user to the payout time.
	AwardedPeriods map[string]time.Time `json:"awarded_periods,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy of the user so mutators never share slices.
func (u *User) Clone() *User {
	c := *u
	if u.Holds != nil {
		c.Holds = make([]Hold, len(u.Holds))
		copy(c.Holds, u.Holds)
	}
	if u.AwardedPeriods != nil {
		c.AwardedPeriods = make(map[string]time.Time, len(u.AwardedPeriods))
		for p, at := range u.AwardedPeriods {
			c.AwardedPeriods[p] = at
		}
	}
	return &c
}

// NextHoldRelease returns the earliest hold release time, or the zero time
// when the user has no holds.
func (u *User) NextHoldRelease() time.Time {
	var next time.Time
	for _, h := range u.Holds {
		if next.IsZero() || h.ReleaseAt.Before(next) {
			next = h.ReleaseAt
		}
	}
	return next
}
