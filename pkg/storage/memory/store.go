// Package memory implements the storage interfaces in process memory. It is
// the backend used for local development and for tests of the layers above.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/storage"
)

// Store keeps every record in maps. A per-user mutex serialises mutators on
// the same user, and mu is held for writing only while a finished mutation is
// committed, so readers always observe whole mutations.
type Store struct {
	mu          sync.RWMutex
	users       map[string]*models.User
	ledger      map[string][]models.LedgerEntry
	withdrawals map[string]*models.WithdrawalRequest
	audit       []models.AuditLogEntry
	admins      map[string]*models.Admin
	settings    models.Settings
	emergency   models.EmergencyState
	awards      map[string]*models.AwardClaim

	locksMu   sync.Mutex
	userLocks map[string]*sync.Mutex
}

// New creates an empty Store with default settings and all switches off.
func New() *Store {
	return &Store{
		users:       make(map[string]*models.User),
		ledger:      make(map[string][]models.LedgerEntry),
		withdrawals: make(map[string]*models.WithdrawalRequest),
		admins:      make(map[string]*models.Admin),
		awards:      make(map[string]*models.AwardClaim),
		settings:    models.DefaultSettings(),
		userLocks:   make(map[string]*sync.Mutex),
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

func (s *Store) lockUser(userID string) func() {
	s.locksMu.Lock()
	l, ok := s.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.userLocks[userID] = l
	}
	s.locksMu.Unlock()

	l.Lock()
	return l.Unlock
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s with ID %s: %w", kind, id, storage.ErrNotFound)
}

// CreateUser stores a copy of user.
func (s *Store) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.UID]; ok {
		return nil, fmt.Errorf("user with ID %s: %w", user.UID, storage.ErrAlreadyExists)
	}
	for _, u := range s.users {
		if user.ReferralCode != "" && u.ReferralCode == user.ReferralCode {
			return nil, fmt.Errorf("referral code %s: %w", user.ReferralCode, storage.ErrAlreadyExists)
		}
	}

	stored := user.Clone()
	stored.Version = 1
	s.users[user.UID] = stored
	return stored.Clone(), nil
}

// GetUser returns a copy of the user.
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, notFound("user", userID)
	}
	return u.Clone(), nil
}

// FindUserByReferralCode scans users for the code.
func (s *Store) FindUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ReferralCode == code {
			return u.Clone(), nil
		}
	}
	return nil, notFound("referral code", code)
}

// ListUsers returns every user ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].UID < out[j].UID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ListPendingKyc returns users with a submitted, unreviewed verification.
func (s *Store) ListPendingKyc(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.User
	for _, u := range s.users {
		if u.Kyc.Status == models.KYC_SUBMITTED {
			out = append(out, *u.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Kyc.SubmittedAt, out[j].Kyc.SubmittedAt
		if a == nil || b == nil || a.Equal(*b) {
			return out[i].UID < out[j].UID
		}
		return a.Before(*b)
	})
	return out, nil
}

// UpdateUser runs fn on a private copy of the user while holding the user's
// lock and commits the result with the returned mutation.
func (s *Store) UpdateUser(ctx context.Context, userID string, fn storage.UserMutator) (*models.User, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	current, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	m, err := fn(current)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.commitLocked(current, m); err != nil {
		return nil, err
	}
	return current.Clone(), nil
}

// commitLocked persists u and m. The caller holds mu and the user's lock.
func (s *Store) commitLocked(u *models.User, m *storage.Mutation) error {
	if m != nil && m.Withdrawal != nil {
		if _, ok := s.withdrawals[m.Withdrawal.ID]; ok {
			return fmt.Errorf("withdrawal with ID %s: %w", m.Withdrawal.ID, storage.ErrAlreadyExists)
		}
	}

	u.Version++
	s.users[u.UID] = u.Clone()
	if m == nil {
		return nil
	}

	s.ledger[u.UID] = append(s.ledger[u.UID], m.Entries...)
	if len(m.SettleEntries) > 0 {
		settle := make(map[string]bool, len(m.SettleEntries))
		for _, id := range m.SettleEntries {
			settle[id] = true
		}
		entries := s.ledger[u.UID]
		for i := range entries {
			if settle[entries[i].ID] {
				entries[i].Status = m.SettleStatus
			}
		}
	}
	if m.Withdrawal != nil {
		s.withdrawals[m.Withdrawal.ID] = cloneWithdrawal(m.Withdrawal)
	}
	return nil
}

// ListLedgerEntries returns the user's entries newest first. A limit <= 0
// returns all of them.
func (s *Store) ListLedgerEntries(ctx context.Context, userID string, limit int32) ([]models.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.ledger[userID]
	n := len(entries)
	if limit > 0 && int(limit) < n {
		n = int(limit)
	}
	out := make([]models.LedgerEntry, 0, n)
	for i := len(entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

// ListLedgerEntriesSince returns every entry at or after since, oldest first.
func (s *Store) ListLedgerEntriesSince(ctx context.Context, since time.Time) ([]models.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.LedgerEntry
	for _, entries := range s.ledger {
		for _, e := range entries {
			if !e.Timestamp.Before(since) {
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListDueHolds returns the holds whose release time has passed.
func (s *Store) ListDueHolds(ctx context.Context, cutoff time.Time) ([]storage.DueHold, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []storage.DueHold
	for _, u := range s.users {
		for _, h := range u.Holds {
			if !h.ReleaseAt.After(cutoff) {
				out = append(out, storage.DueHold{UserID: u.UID, Hold: h})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hold.EntryID < out[j].Hold.EntryID })
	return out, nil
}
