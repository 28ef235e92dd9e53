package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AwardWinner is one paid rank of a leaderboard period.
type AwardWinner struct {
	Rank   int             `json:"rank"`
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// AwardClaim reserves a leaderboard period and freezes its winners, so every
// attempt to pay the period pays the same users.
type AwardClaim struct {
	Period    string        `json:"period"`
	Timeframe string        `json:"timeframe"`
	Winners   []AwardWinner `json:"winners"`
	ClaimedAt time.Time     `json:"claimed_at"`
}

// AwardMemory is how long a user remembers the periods it was paid for.
const AwardMemory = 400 * 24 * time.Hour

// HasAward reports whether the user was already paid for period.
func (u *User) HasAward(period string) bool {
	_, ok := u.AwardedPeriods[period]
	return ok
}

// RecordAward marks period as paid and forgets periods older than AwardMemory.
func (u *User) RecordAward(period string, now time.Time) {
	if u.AwardedPeriods == nil {
		u.AwardedPeriods = make(map[string]time.Time)
	}
	for p, at := range u.AwardedPeriods {
		if now.Sub(at) > AwardMemory {
			delete(u.AwardedPeriods, p)
		}
	}
	u.AwardedPeriods[period] = now
}
