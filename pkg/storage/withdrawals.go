package storage

import (
	"context"

	"github.com/chris/fairtask-ledger/pkg/models"
)

// WithdrawalMutator validates and modifies private copies of a withdrawal and
// its owner. Returning an error aborts the write.
type WithdrawalMutator func(w *models.WithdrawalRequest, owner *models.User) (*Mutation, error)

// WithdrawalStore defines the interface for reading and resolving payouts.
// New requests are created through a user Mutation.
type WithdrawalStore interface {
	// GetWithdrawal retrieves a withdrawal request by id.
	GetWithdrawal(ctx context.Context, id string) (*models.WithdrawalRequest, error)

	// ListWithdrawals returns every request, newest first.
	ListWithdrawals(ctx context.Context) ([]models.WithdrawalRequest, error)

	// UpdateWithdrawal atomically mutates a request and its owner.
	UpdateWithdrawal(ctx context.Context, id string, fn WithdrawalMutator) (*models.WithdrawalRequest, error)
}
