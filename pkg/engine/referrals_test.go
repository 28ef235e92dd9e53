package engine

import (
	"context"
	"testing"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// referralChain creates five users where each is referred by the previous one.
func referralChain(t *testing.T, e *Engine) []*models.User {
	t.Helper()
	chain := []*models.User{createUser(t, e, "Level Zero", "")}
	for _, name := range []string{"Level One", "Level Two", "Level Three", "Level Four"} {
		prev := chain[len(chain)-1]
		chain = append(chain, createUser(t, e, name, prev.ReferralCode))
	}
	return chain
}

func TestReferralCounts(t *testing.T) {
	e, s, _ := newTestEngine(t)
	chain := referralChain(t, e)

	assert.Equal(t, chain[0].UID, chain[1].ReferredBy)

	top := getUser(t, s, chain[0].UID).ReferralStats
	assert.Equal(t, 1, top.L1Count)
	assert.Equal(t, 1, top.L2Count)
	assert.Equal(t, 1, top.L3Count)

	mid := getUser(t, s, chain[3].UID).ReferralStats
	assert.Equal(t, 1, mid.L1Count)
	assert.Equal(t, 0, mid.L2Count)
}

func TestTaskCommission(t *testing.T) {
	ctx := context.Background()

	t.Run("Pays Three Levels Into Bonus", func(t *testing.T) {
		// Arrange
		e, s, _ := newTestEngine(t)
		chain := referralChain(t, e)
		actor := chain[4]

		// Act
		res, err := e.CompleteTask(ctx, actor.UID, models.VIDEO)

		// Assert
		require.NoError(t, err)
		assertDecimal(t, "0.06", res.Reward)
		assertDecimal(t, "0.0018", getUser(t, s, chain[3].UID).Wallet.Bonus)
		assertDecimal(t, "0.0012", getUser(t, s, chain[2].UID).Wallet.Bonus)
		assertDecimal(t, "0.0006", getUser(t, s, chain[1].UID).Wallet.Bonus)
		assert.True(t, getUser(t, s, chain[0].UID).Wallet.Bonus.IsZero())

		l1 := getUser(t, s, chain[3].UID)
		assertDecimal(t, "0.0018", l1.ReferralStats.TotalEarnings)
		assert.True(t, l1.Wallet.Main.IsZero())
		entries := ledger(t, s, chain[3].UID)
		require.Len(t, entries, 1)
		assert.Equal(t, models.REFERRAL_BONUS, entries[0].Type)
		assert.Equal(t, models.COMPLETED, entries[0].Status)
		assert.Equal(t, res.Entry.ID, entries[0].ReferenceID)
	})

	t.Run("Paused Referrals Pay Nothing", func(t *testing.T) {
		e, s, _ := newTestEngine(t)
		chain := referralChain(t, e)
		_, err := s.SetEmergencyFlag(ctx, models.ReferralsPaused, true)
		require.NoError(t, err)

		_, err = e.CompleteTask(ctx, chain[4].UID, models.VIDEO)

		require.NoError(t, err)
		assert.True(t, getUser(t, s, chain[3].UID).Wallet.Bonus.IsZero())
	})

	t.Run("Disabled In Settings Pays Nothing", func(t *testing.T) {
		e, s, _ := newTestEngine(t)
		chain := referralChain(t, e)
		settings := models.DefaultSettings()
		settings.ReferralsEnabled = false
		require.NoError(t, s.PutSettings(ctx, settings))

		_, err := e.CompleteTask(ctx, chain[4].UID, models.VIDEO)

		require.NoError(t, err)
		assert.Empty(t, ledger(t, s, chain[3].UID))
	})
}

func TestPlanCommission(t *testing.T) {
	ctx := context.Background()
	e, s, _ := newTestEngine(t)
	chain := referralChain(t, e)

	_, err := e.PurchasePlan(ctx, chain[4].UID, models.STARTER)

	require.NoError(t, err)
	// 199 INR at 83 per USD is 2.3976; L1 earns 8%, L2 4%, L3 2%.
	assertDecimal(t, "0.191808", getUser(t, s, chain[3].UID).Wallet.Bonus)
	assertDecimal(t, "0.095904", getUser(t, s, chain[2].UID).Wallet.Bonus)
	assertDecimal(t, "0.047952", getUser(t, s, chain[1].UID).Wallet.Bonus)
}

func TestCommissionTables(t *testing.T) {
	assertDecimal(t, "0.08", PlanCommission(1))
	assertDecimal(t, "0.02", PlanCommission(3))
	assertDecimal(t, "0.02", TaskCommission(2))
	assert.True(t, TaskCommission(4).IsZero())
	assert.True(t, PlanCommission(0).IsZero())
}
