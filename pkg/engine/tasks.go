package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/chris/fairtask-ledger/pkg/metrics"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/plans"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/chris/fairtask-ledger/pkg/storage"
	"github.com/shopspring/decimal"
)

// TaskResult is the outcome of a completed task.
type TaskResult struct {
	Reward decimal.Decimal
	Entry  models.LedgerEntry
	User   *models.User
}

// CompleteTask credits the plan's per-task reward to the pending bucket and
// holds it for verification. Referral commissions are paid after the commit.
func (e *Engine) CompleteTask(ctx context.Context, userID string, taskType models.TaskType) (res *TaskResult, err error) {
	defer func(start time.Time) { metrics.Observe("complete_task", start, err) }(time.Now())

	if !taskType.Valid() {
		return nil, ruleerr.New(ruleerr.InvalidArgument, "unknown task type %q", taskType)
	}
	if err := e.checkGate(ctx, models.EarningsPaused); err != nil {
		return nil, err
	}

	now := e.now()
	res = &TaskResult{}
	var hold models.Hold
	updated, err := e.store.UpdateUser(ctx, userID, func(u *models.User) (*storage.Mutation, error) {
		rollDaily(u, now)

		plan, err := plans.Lookup(u.PlanID)
		if err != nil {
			return nil, ruleerr.New(ruleerr.InvalidState, "user %s has %v", u.UID, err)
		}
		limit := plan.DailyLimit(taskType)
		if u.DailyStats.Count(taskType) >= limit {
			return nil, ruleerr.New(ruleerr.LimitReached, "daily %s limit of %d reached", taskType, limit)
		}
		if u.Status != models.ACTIVE {
			return nil, ruleerr.New(ruleerr.AccountNotActive, "account is %s", u.Status)
		}

		reward := plan.PerTaskReward(taskType)
		u.Wallet.Pending = u.Wallet.Pending.Add(reward)
		if taskType == models.VIDEO {
			u.DailyStats.VideosWatched++
		} else {
			u.DailyStats.LinksVisited++
		}
		trackActivity(u, plan, now)

		entry := e.NewEntry(u, models.EarnType(taskType), reward, models.USD, models.PENDING, now, taskDescription(taskType))
		hold = models.Hold{
			EntryID:   entry.ID,
			TaskType:  taskType,
			Amount:    reward,
			ReleaseAt: now.Add(e.holdFor),
		}
		u.Holds = append(u.Holds, hold)

		res.Reward = reward
		res.Entry = entry
		return &storage.Mutation{Entries: []models.LedgerEntry{entry}}, nil
	})
	if err != nil {
		return nil, userErr(err, userID, "complete task")
	}
	res.User = updated

	e.scheduleHold(ctx, userID, hold)
	e.Publish(ctx, updated, res.Entry)
	metrics.Credited(string(res.Entry.Type), res.Reward)
	e.payReferrals(ctx, updated, res.Reward, taskCommission, res.Entry.ID)

	return res, nil
}

func taskDescription(t models.TaskType) string {
	if t == models.VIDEO {
		return "Watched Ad Video"
	}
	return "Visited Sponsored Link"
}

// trackActivity advances the bonus-unlock streak on the first completion of
// the day that reaches the plan's activity threshold.
func trackActivity(u *models.User, plan plans.Config, now time.Time) {
	today := dateKey(now)
	if u.BonusUnlock.LastActiveDate == today {
		return
	}
	done := u.DailyStats.VideosWatched + u.DailyStats.LinksVisited
	if done < plan.ActiveDayThreshold() {
		return
	}
	if u.BonusUnlock.LastActiveDate == dateKey(now.AddDate(0, 0, -1)) {
		u.BonusUnlock.ConsecutiveDaysActive++
	} else {
		u.BonusUnlock.ConsecutiveDaysActive = 1
	}
	u.BonusUnlock.LastActiveDate = today
}

// TaskStatus describes what a user can still do today.
type TaskStatus struct {
	Date            string          `json:"date"`
	VideosRemaining int             `json:"videos_remaining"`
	LinksRemaining  int             `json:"links_remaining"`
	VideoReward     decimal.Decimal `json:"video_reward"`
	LinkReward      decimal.Decimal `json:"link_reward"`
}

// GetTaskStatus returns today's remaining tasks without modifying the user.
func (e *Engine) GetTaskStatus(ctx context.Context, userID string) (*TaskStatus, error) {
	u, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, userErr(err, userID, "get user")
	}
	plan, err := plans.Lookup(u.PlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve plan of user %s: %w", userID, err)
	}
	rollDaily(u, e.now())
	return &TaskStatus{
		Date:            u.DailyStats.Date,
		VideosRemaining: max(plan.DailyVideoLimit-u.DailyStats.VideosWatched, 0),
		LinksRemaining:  max(plan.DailyLinkLimit-u.DailyStats.LinksVisited, 0),
		VideoReward:     plan.PerTaskReward(models.VIDEO),
		LinkReward:      plan.PerTaskReward(models.LINK),
	}, nil
}
