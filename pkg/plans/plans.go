// Package plans is the static catalog of subscription tiers.
package plans

import (
	"fmt"
	"sort"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/shopspring/decimal"
)

// RewardPrecision is the number of decimal places per-task rewards keep.
const RewardPrecision = 6

// ExchangeRate converts INR plan prices into the USD earnings currency.
var ExchangeRate = decimal.NewFromInt(83)

// Config describes one plan tier. Rates are paid per RateBasis completions,
// so the per-task reward is Rate / RateBasis.
type Config struct {
	Tier            models.PlanTier `json:"id"`
	PriceINR        decimal.Decimal `json:"price_inr"`
	DurationDays    int             `json:"duration_days"`
	DailyVideoLimit int             `json:"daily_video_limit"`
	DailyLinkLimit  int             `json:"daily_link_limit"`
	VideoRate       decimal.Decimal `json:"video_rate"`
	VideoRateBasis  int64           `json:"video_rate_basis"`
	LinkRate        decimal.Decimal `json:"link_rate"`
	LinkRateBasis   int64           `json:"link_rate_basis"`
	MinWithdrawal   decimal.Decimal `json:"min_withdrawal"`
}

// DailyLimit returns the plan's daily cap for the given task type.
func (c Config) DailyLimit(t models.TaskType) int {
	if t == models.VIDEO {
		return c.DailyVideoLimit
	}
	return c.DailyLinkLimit
}

// PerTaskReward returns rate / rateBasis for the given task type.
func (c Config) PerTaskReward(t models.TaskType) decimal.Decimal {
	rate, basis := c.LinkRate, c.LinkRateBasis
	if t == models.VIDEO {
		rate, basis = c.VideoRate, c.VideoRateBasis
	}
	return rate.DivRound(decimal.NewFromInt(basis), RewardPrecision)
}

// ActiveDayThreshold is the number of tasks that make a day count towards the
// bonus-unlock streak: 60% of the combined daily limit, rounded up.
func (c Config) ActiveDayThreshold() int {
	total := decimal.NewFromInt(int64(c.DailyVideoLimit + c.DailyLinkLimit))
	return int(total.Mul(unlockTaskShare).Ceil().IntPart())
}

// PriceUSD converts the INR price with the fixed exchange rate.
func (c Config) PriceUSD() decimal.Decimal {
	return c.PriceINR.DivRound(ExchangeRate, 4)
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var catalog = map[models.PlanTier]Config{
	models.TRIAL: {
		Tier: models.TRIAL, PriceINR: d("59"), DurationDays: 7,
		DailyVideoLimit: 8, DailyLinkLimit: 3,
		VideoRate: d("0.3"), VideoRateBasis: 5,
		LinkRate: d("0.5"), LinkRateBasis: 5,
		MinWithdrawal: d("10"),
	},
	models.STARTER: {
		Tier: models.STARTER, PriceINR: d("199"), DurationDays: 30,
		DailyVideoLimit: 15, DailyLinkLimit: 8,
		VideoRate: d("0.5"), VideoRateBasis: 5,
		LinkRate: d("0.7"), LinkRateBasis: 5,
		MinWithdrawal: d("50"),
	},
	models.BASIC: {
		Tier: models.BASIC, PriceINR: d("259"), DurationDays: 30,
		DailyVideoLimit: 15, DailyLinkLimit: 10,
		VideoRate: d("0.7"), VideoRateBasis: 5,
		LinkRate: d("0.9"), LinkRateBasis: 5,
		MinWithdrawal: d("50"),
	},
	models.PRO: {
		Tier: models.PRO, PriceINR: d("599"), DurationDays: 30,
		DailyVideoLimit: 20, DailyLinkLimit: 15,
		VideoRate: d("0.7"), VideoRateBasis: 5,
		LinkRate: d("0.9"), LinkRateBasis: 5,
		MinWithdrawal: d("50"),
	},
	models.ULTRA: {
		Tier: models.ULTRA, PriceINR: d("999"), DurationDays: 30,
		DailyVideoLimit: 50, DailyLinkLimit: 20,
		VideoRate: d("1.0"), VideoRateBasis: 6,
		LinkRate: d("1.0"), LinkRateBasis: 7,
		MinWithdrawal: d("50"),
	},
}

// RequiredDays is the active-day streak that unlocks the bonus bucket.
const RequiredDays = 7

var unlockTaskShare = d("0.60")

// UnlockTaskShare is the share of the combined daily limit that makes a day
// count toward the streak.
func UnlockTaskShare() decimal.Decimal {
	return unlockTaskShare
}

// Lookup returns the configuration for a tier.
func Lookup(tier models.PlanTier) (Config, error) {
	c, ok := catalog[tier]
	if !ok {
		return Config{}, fmt.Errorf("unknown plan tier %q", tier)
	}
	return c, nil
}

// All returns every tier ordered by price.
func All() []Config {
	out := make([]Config, 0, len(catalog))
	for _, c := range catalog {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PriceINR.LessThan(out[j].PriceINR)
	})
	return out
}
