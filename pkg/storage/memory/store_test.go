package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s *Store, id string) *models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), &models.User{
		UID:          id,
		Name:         "User " + id,
		Status:       models.ACTIVE,
		PlanID:       models.TRIAL,
		ReferralCode: "REF-" + id,
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
	return u
}

func TestCreateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		s := New()
		u := seedUser(t, s, "u1")

		assert.Equal(t, int64(1), u.Version)
		got, err := s.GetUser(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, "User u1", got.Name)
	})

	t.Run("Duplicate ID", func(t *testing.T) {
		s := New()
		seedUser(t, s, "u1")

		_, err := s.CreateUser(context.Background(), &models.User{UID: "u1"})
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})

	t.Run("Duplicate Referral Code", func(t *testing.T) {
		s := New()
		seedUser(t, s, "u1")

		_, err := s.CreateUser(context.Background(), &models.User{UID: "u2", ReferralCode: "REF-u1"})
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})

	t.Run("Unknown User", func(t *testing.T) {
		_, err := New().GetUser(context.Background(), "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Commits User And Entries", func(t *testing.T) {
		// Arrange
		s := New()
		seedUser(t, s, "u1")

		// Act
		updated, err := s.UpdateUser(ctx, "u1", func(u *models.User) (*storage.Mutation, error) {
			u.Wallet.Pending = u.Wallet.Pending.Add(decimal.RequireFromString("0.06"))
			return &storage.Mutation{Entries: []models.LedgerEntry{
				{ID: "01A", UserID: u.UID, Type: models.EARN_VIDEO, Amount: decimal.RequireFromString("0.06"), Status: models.PENDING, Timestamp: time.Now()},
			}}, nil
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(2), updated.Version)
		assert.Equal(t, "0.06", updated.Wallet.Pending.String())
		entries, err := s.ListLedgerEntries(ctx, "u1", 0)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("Mutator Error Leaves State Unchanged", func(t *testing.T) {
		s := New()
		seedUser(t, s, "u1")
		boom := errors.New("rejected")

		_, err := s.UpdateUser(ctx, "u1", func(u *models.User) (*storage.Mutation, error) {
			u.Wallet.Main = decimal.NewFromInt(1000)
			return nil, boom
		})

		assert.ErrorIs(t, err, boom)
		got, _ := s.GetUser(ctx, "u1")
		assert.True(t, got.Wallet.Main.IsZero())
		assert.Equal(t, int64(1), got.Version)
	})

	t.Run("Concurrent Mutators Are Serialised", func(t *testing.T) {
		s := New()
		seedUser(t, s, "u1")

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.UpdateUser(ctx, "u1", func(u *models.User) (*storage.Mutation, error) {
					u.Wallet.Main = u.Wallet.Main.Add(decimal.NewFromInt(1))
					return nil, nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, _ := s.GetUser(ctx, "u1")
		assert.Equal(t, "50", got.Wallet.Main.String())
		assert.Equal(t, int64(51), got.Version)
	})

	t.Run("Unknown User", func(t *testing.T) {
		_, err := New().UpdateUser(ctx, "missing", func(u *models.User) (*storage.Mutation, error) {
			return nil, nil
		})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestUpdateWithdrawal(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedUser(t, s, "u1")

	_, err := s.UpdateUser(ctx, "u1", func(u *models.User) (*storage.Mutation, error) {
		return &storage.Mutation{
			Entries: []models.LedgerEntry{
				{ID: "01A", UserID: "u1", Type: models.WITHDRAWAL, Status: models.PENDING},
				{ID: "01B", UserID: "u1", Type: models.FEE_PLATFORM, Status: models.PENDING},
			},
			Withdrawal: &models.WithdrawalRequest{ID: "w1", UserID: "u1", Status: models.PENDING, EntryIDs: []string{"01A", "01B"}},
		}, nil
	})
	require.NoError(t, err)

	t.Run("Settles Entries With The Request", func(t *testing.T) {
		w, err := s.UpdateWithdrawal(ctx, "w1", func(w *models.WithdrawalRequest, owner *models.User) (*storage.Mutation, error) {
			w.Status = models.COMPLETED
			return &storage.Mutation{SettleEntries: w.EntryIDs, SettleStatus: models.COMPLETED}, nil
		})

		require.NoError(t, err)
		assert.Equal(t, models.COMPLETED, w.Status)
		entries, _ := s.ListLedgerEntries(ctx, "u1", 0)
		for _, e := range entries {
			assert.Equal(t, models.COMPLETED, e.Status, e.ID)
		}
	})

	t.Run("Unknown Request", func(t *testing.T) {
		_, err := s.UpdateWithdrawal(ctx, "nope", func(w *models.WithdrawalRequest, owner *models.User) (*storage.Mutation, error) {
			return nil, nil
		})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestReaders(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedUser(t, s, "u1")
	now := time.Now()

	_, err := s.UpdateUser(ctx, "u1", func(u *models.User) (*storage.Mutation, error) {
		u.Holds = []models.Hold{
			{EntryID: "01A", ReleaseAt: now.Add(-time.Minute)},
			{EntryID: "01B", ReleaseAt: now.Add(time.Hour)},
		}
		return &storage.Mutation{Entries: []models.LedgerEntry{
			{ID: "01A", UserID: "u1", Timestamp: now.Add(-48 * time.Hour)},
			{ID: "01B", UserID: "u1", Timestamp: now},
		}}, nil
	})
	require.NoError(t, err)

	t.Run("Ledger Newest First With Limit", func(t *testing.T) {
		entries, err := s.ListLedgerEntries(ctx, "u1", 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "01B", entries[0].ID)
	})

	t.Run("Ledger Since", func(t *testing.T) {
		entries, err := s.ListLedgerEntriesSince(ctx, now.Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "01B", entries[0].ID)
	})

	t.Run("Due Holds", func(t *testing.T) {
		due, err := s.ListDueHolds(ctx, now)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, "u1", due[0].UserID)
		assert.Equal(t, "01A", due[0].Hold.EntryID)
	})

	t.Run("Audit Filter", func(t *testing.T) {
		require.NoError(t, s.AppendAudit(ctx, &models.AuditLogEntry{ID: "a1", AdminID: "root"}))
		require.NoError(t, s.AppendAudit(ctx, &models.AuditLogEntry{ID: "a2", AdminID: "fin"}))
		require.NoError(t, s.AppendAudit(ctx, &models.AuditLogEntry{ID: "a3", AdminID: "root"}))

		all, _ := s.ListAudit(ctx, "")
		assert.Equal(t, "a3", all[0].ID)
		assert.Len(t, all, 3)

		mine, _ := s.ListAudit(ctx, "root")
		assert.Len(t, mine, 2)
	})

	t.Run("Emergency Flag", func(t *testing.T) {
		state, err := s.SetEmergencyFlag(ctx, models.WithdrawalsPaused, true)
		require.NoError(t, err)
		assert.True(t, state.WithdrawalsPaused)
		assert.False(t, state.EarningsPaused)
	})
}

func TestClaimAward(t *testing.T) {
	ctx := context.Background()
	s := New()
	claim := &models.AwardClaim{Period: "LEADERBOARD:DAILY:2026-03-10", Winners: []models.AwardWinner{{Rank: 1, UserID: "u1"}}}

	stored, created, err := s.ClaimAward(ctx, claim)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "u1", stored.Winners[0].UserID)

	again, created, err := s.ClaimAward(ctx, &models.AwardClaim{Period: claim.Period, Winners: []models.AwardWinner{{Rank: 1, UserID: "u2"}}})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "u1", again.Winners[0].UserID)
}
