package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chris/fairtask-ledger/pkg/metrics"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/chris/fairtask-ledger/pkg/storage"
	"github.com/shopspring/decimal"
)

// Timeframe is a leaderboard window.
type Timeframe string

const (
	DAILY    Timeframe = "DAILY"
	WEEKLY   Timeframe = "WEEKLY"
	MONTHLY  Timeframe = "MONTHLY"
	YEARLY   Timeframe = "YEARLY"
	LIFETIME Timeframe = "LIFETIME"
)

// Valid reports whether t is a known window.
func (t Timeframe) Valid() bool {
	switch t {
	case DAILY, WEEKLY, MONTHLY, YEARLY, LIFETIME:
		return true
	}
	return false
}

var rewardTable = map[Timeframe][]decimal.Decimal{
	DAILY: {
		decimal.RequireFromString("2.0"),
		decimal.RequireFromString("1.5"),
		decimal.RequireFromString("1.0"),
	},
	WEEKLY: {
		decimal.NewFromInt(10),
		decimal.NewFromInt(7),
		decimal.NewFromInt(5),
		decimal.NewFromInt(3),
		decimal.NewFromInt(2),
	},
	MONTHLY: {
		decimal.NewFromInt(50),
		decimal.NewFromInt(35),
		decimal.NewFromInt(25),
	},
}

// LeaderboardReward returns the bonus paid to rank (1-based) in a timeframe.
func LeaderboardReward(tf Timeframe, rank int) decimal.Decimal {
	if rank < 1 {
		return decimal.Zero
	}
	table := rewardTable[tf]
	if rank <= len(table) {
		return table[rank-1]
	}
	if tf == MONTHLY && rank <= 10 {
		return decimal.NewFromInt(10)
	}
	return decimal.Zero
}

// windowStart returns the start of the calendar period of tf containing now.
// Weeks are ISO weeks starting on Monday. LIFETIME counts everything and
// returns the zero time.
func windowStart(tf Timeframe, now time.Time) time.Time {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch tf {
	case DAILY:
		return day
	case WEEKLY:
		sinceMonday := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -sinceMonday)
	case MONTHLY:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	case YEARLY:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Time{}
}

// periodKey labels the calendar period ranked by windowStart.
func periodKey(tf Timeframe, now time.Time) string {
	now = now.UTC()
	switch tf {
	case WEEKLY:
		year, week := now.ISOWeek()
		return fmt.Sprintf("LEADERBOARD:%s:%d-W%02d", tf, year, week)
	case MONTHLY:
		return fmt.Sprintf("LEADERBOARD:%s:%s", tf, now.Format("2006-01"))
	case YEARLY:
		return fmt.Sprintf("LEADERBOARD:%s:%d", tf, now.Year())
	}
	return fmt.Sprintf("LEADERBOARD:%s:%s", tf, dateKey(now))
}

// countsTowardRanking reports whether an entry is verified earnings.
func countsTowardRanking(e models.LedgerEntry) bool {
	if e.Status != models.COMPLETED {
		return false
	}
	switch e.Type {
	case models.EARN_VIDEO, models.EARN_LINK, models.REFERRAL_BONUS:
		return true
	}
	return false
}

// MaskName hides all but the first letter of each word of a display name.
func MaskName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		r := []rune(w)
		words[i] = string(r[0]) + strings.Repeat("*", len(r)-1)
	}
	return strings.Join(words, " ")
}

// LeaderboardRow is one ranked user.
type LeaderboardRow struct {
	Rank        int             `json:"rank"`
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	Earnings    decimal.Decimal `json:"earnings"`
	Reward      decimal.Decimal `json:"reward"`
	BonusLocked bool            `json:"bonus_locked"`
}

// Leaderboard ranks users by verified earnings within tf. Ties go to the
// lower user id. Users without earnings in the window are left out.
func (e *Engine) Leaderboard(ctx context.Context, tf Timeframe, limit int) ([]LeaderboardRow, error) {
	if !tf.Valid() {
		return nil, ruleerr.New(ruleerr.InvalidArgument, "unknown timeframe %q", tf)
	}

	entries, err := e.store.ListLedgerEntriesSince(ctx, windowStart(tf, e.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	// Users are never deleted, so every ledger owner is in this list.
	users, err := e.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	totals := make(map[string]decimal.Decimal)
	for _, entry := range entries {
		if countsTowardRanking(entry) {
			totals[entry.UserID] = totals[entry.UserID].Add(entry.Amount)
		}
	}

	rows := make([]LeaderboardRow, 0, len(totals))
	for _, u := range users {
		total, ok := totals[u.UID]
		if !ok || !total.IsPositive() {
			continue
		}
		rows = append(rows, LeaderboardRow{
			UserID:      u.UID,
			Name:        MaskName(u.Name),
			Earnings:    total,
			BonusLocked: !BonusUnlocked(u.BonusUnlock),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Earnings.Cmp(rows[j].Earnings); c != 0 {
			return c > 0
		}
		return rows[i].UserID < rows[j].UserID
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for i := range rows {
		rows[i].Rank = i + 1
		rows[i].Reward = LeaderboardReward(tf, i+1)
	}
	return rows, nil
}

// LeaderboardAward is a reward credited to one user.
type LeaderboardAward struct {
	Rank    int             `json:"rank"`
	UserID  string          `json:"user_id"`
	Amount  decimal.Decimal `json:"amount"`
	EntryID string          `json:"entry_id"`
}

// errAlreadyAwarded aborts a payout to a user already paid for the period.
var errAlreadyAwarded = errors.New("already awarded")

// AwardLeaderboard credits the rewards of the current period of tf to the
// bonus buckets of the ranked users. The first call claims the period and
// freezes its winners. Later calls pay only winners still unpaid, so a failed
// payout can be retried. A period with nobody left to pay is rejected.
func (e *Engine) AwardLeaderboard(ctx context.Context, tf Timeframe) (awards []LeaderboardAward, err error) {
	defer func(start time.Time) { metrics.Observe("award_leaderboard", start, err) }(time.Now())

	if LeaderboardReward(tf, 1).IsZero() {
		return nil, ruleerr.New(ruleerr.InvalidArgument, "timeframe %q has no rewards", tf)
	}

	now := e.now()
	key := periodKey(tf, now)

	rows, err := e.Leaderboard(ctx, tf, 0)
	if err != nil {
		return nil, err
	}
	claim := &models.AwardClaim{Period: key, Timeframe: string(tf), ClaimedAt: now}
	for _, row := range rows {
		if !row.Reward.IsPositive() {
			break
		}
		claim.Winners = append(claim.Winners, models.AwardWinner{Rank: row.Rank, UserID: row.UserID, Amount: row.Reward})
	}

	claim, created, err := e.store.ClaimAward(ctx, claim)
	if err != nil {
		return nil, fmt.Errorf("failed to claim %s: %w", key, err)
	}

	for _, w := range claim.Winners {
		var entry models.LedgerEntry
		updated, err := e.store.UpdateUser(ctx, w.UserID, func(u *models.User) (*storage.Mutation, error) {
			if u.HasAward(key) {
				return nil, errAlreadyAwarded
			}
			u.Wallet.Bonus = u.Wallet.Bonus.Add(w.Amount)
			u.RecordAward(key, now)
			entry = e.NewEntry(u, models.LEADERBOARD_BONUS, w.Amount, models.USD, models.COMPLETED, now,
				fmt.Sprintf("%s leaderboard rank %d", tf, w.Rank))
			entry.ReferenceID = key
			return &storage.Mutation{Entries: []models.LedgerEntry{entry}}, nil
		})
		if errors.Is(err, errAlreadyAwarded) {
			continue
		}
		if err != nil {
			return awards, userErr(err, w.UserID, "award leaderboard bonus")
		}
		e.Publish(ctx, updated, entry)
		metrics.Credited(string(models.LEADERBOARD_BONUS), w.Amount)
		awards = append(awards, LeaderboardAward{Rank: w.Rank, UserID: w.UserID, Amount: w.Amount, EntryID: entry.ID})
	}

	if !created && len(awards) == 0 {
		return nil, ruleerr.New(ruleerr.InvalidState, "%s leaderboard already awarded for this period", tf)
	}
	e.logger.Info("leaderboard awarded", "timeframe", tf, "period", key, "winners", len(awards), "resumed", !created)
	return awards, nil
}
