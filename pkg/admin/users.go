package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/chris/fairtask-ledger/pkg/storage"
	"github.com/shopspring/decimal"
)

// ListUsers returns every user.
func (s *Service) ListUsers(ctx context.Context, adminID string) ([]models.User, error) {
	if _, err := s.requireCapability(ctx, adminID, models.VIEW_USERS); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns one user with their recent ledger.
func (s *Service) GetUser(ctx context.Context, adminID, userID string, ledgerLimit int32) (*models.User, []models.LedgerEntry, error) {
	if _, err := s.requireCapability(ctx, adminID, models.VIEW_USERS); err != nil {
		return nil, nil, err
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, storeErr(err, "user", userID, "get user")
	}
	entries, err := s.store.ListLedgerEntries(ctx, userID, ledgerLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return u, entries, nil
}

// SetUserStatus overwrites the moderation status of a user.
func (s *Service) SetUserStatus(ctx context.Context, adminID, userID string, status models.UserStatus) (*models.User, error) {
	if !status.Valid() {
		return nil, ruleerr.New(ruleerr.InvalidArgument, "unknown status %q", status)
	}
	actor, err := s.requireCapability(ctx, adminID, models.EDIT_USERS)
	if err != nil {
		return nil, err
	}

	var previous models.UserStatus
	updated, err := s.store.UpdateUser(ctx, userID, func(u *models.User) (*storage.Mutation, error) {
		previous = u.Status
		u.Status = status
		return nil, nil
	})
	if err != nil {
		return nil, storeErr(err, "user", userID, "set user status")
	}

	s.audit(ctx, actor, ActionUserStatusChange, userID, fmt.Sprintf("status %s -> %s", previous, status))
	return updated, nil
}

// Bucket names a wallet bucket.
type Bucket string

const (
	BucketMain    Bucket = "main"
	BucketPending Bucket = "pending"
	BucketBonus   Bucket = "bonus"
)

// Adjustment is a signed manual correction of one bucket.
type Adjustment struct {
	UserID string
	Bucket Bucket
	Amount decimal.Decimal
	Reason string
}

// AdjustBalance credits or debits one bucket. A debit may not take the
// bucket below zero.
func (s *Service) AdjustBalance(ctx context.Context, adminID string, adj Adjustment) (*models.User, error) {
	if adj.Amount.IsZero() {
		return nil, ruleerr.New(ruleerr.InvalidArgument, "amount must not be zero")
	}
	if strings.TrimSpace(adj.Reason) == "" {
		return nil, ruleerr.New(ruleerr.InvalidArgument, "a reason is required")
	}
	if adj.Bucket != BucketMain && adj.Bucket != BucketPending && adj.Bucket != BucketBonus {
		return nil, ruleerr.New(ruleerr.InvalidArgument, "unknown bucket %q", adj.Bucket)
	}
	actor, err := s.requireCapability(ctx, adminID, models.EDIT_USERS, models.VIEW_FINANCE)
	if err != nil {
		return nil, err
	}

	now := s.engine.Now()
	var entry models.LedgerEntry
	updated, err := s.store.UpdateUser(ctx, adj.UserID, func(u *models.User) (*storage.Mutation, error) {
		bucket := &u.Wallet.Main
		switch adj.Bucket {
		case BucketPending:
			bucket = &u.Wallet.Pending
		case BucketBonus:
			bucket = &u.Wallet.Bonus
		}
		next := bucket.Add(adj.Amount)
		if next.IsNegative() {
			return nil, ruleerr.New(ruleerr.InsufficientBalance, "%s balance %s cannot cover %s", adj.Bucket, bucket.String(), adj.Amount.String())
		}
		*bucket = next

		entry = s.engine.NewEntry(u, models.ADMIN_ADJUSTMENT, adj.Amount, models.USD, models.COMPLETED, now,
			fmt.Sprintf("Manual %s adjustment: %s", adj.Bucket, adj.Reason))
		return &storage.Mutation{Entries: []models.LedgerEntry{entry}}, nil
	})
	if err != nil {
		return nil, storeErr(err, "user", adj.UserID, "adjust balance")
	}

	s.engine.Publish(ctx, updated, entry)
	s.audit(ctx, actor, ActionBalanceAdjustment, adj.UserID, fmt.Sprintf("%s %s: %s", adj.Bucket, adj.Amount.String(), adj.Reason))
	return updated, nil
}
