package memory

import (
	"context"
	"sort"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/storage"
)

func cloneWithdrawal(w *models.WithdrawalRequest) *models.WithdrawalRequest {
	c := *w
	c.EntryIDs = append([]string(nil), w.EntryIDs...)
	return &c
}

// GetWithdrawal returns a copy of the request.
func (s *Store) GetWithdrawal(ctx context.Context, id string) (*models.WithdrawalRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.withdrawals[id]
	if !ok {
		return nil, notFound("withdrawal", id)
	}
	return cloneWithdrawal(w), nil
}

// ListWithdrawals returns every request, newest first.
func (s *Store) ListWithdrawals(ctx context.Context) ([]models.WithdrawalRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.WithdrawalRequest, 0, len(s.withdrawals))
	for _, w := range s.withdrawals {
		out = append(out, *cloneWithdrawal(w))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateWithdrawal locks the owner of the request and commits the request,
// the owner and the returned mutation together.
func (s *Store) UpdateWithdrawal(ctx context.Context, id string, fn storage.WithdrawalMutator) (*models.WithdrawalRequest, error) {
	w, err := s.GetWithdrawal(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := s.lockUser(w.UserID)
	defer unlock()

	// Re-read under the owner's lock; all writers of a request hold it.
	w, err = s.GetWithdrawal(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := s.GetUser(ctx, w.UserID)
	if err != nil {
		return nil, err
	}

	m, err := fn(w, owner)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.withdrawals[id] = cloneWithdrawal(w)
	if err := s.commitLocked(owner, m); err != nil {
		return nil, err
	}
	return cloneWithdrawal(w), nil
}
