package storage

import (
	"context"

	"github.com/chris/fairtask-ledger/pkg/models"
)

// Mutation lists the records written atomically together with a user update.
type Mutation struct {
	// Entries are appended to the ledger.
	Entries []models.LedgerEntry
	// Withdrawal, when set, is inserted as a new request.
	Withdrawal *models.WithdrawalRequest
	// SettleEntries moves the listed ledger entries of the user to SettleStatus.
	SettleEntries []string
	SettleStatus  models.TransactionStatus
}

// UserMutator validates and modifies a private copy of the user. Returning an
// error aborts the write; nothing is persisted.
type UserMutator func(u *models.User) (*Mutation, error)

// UserReader defines the interface for reading users.
type UserReader interface {
	// GetUser retrieves a user by id.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// FindUserByReferralCode resolves a referral code to its owner.
	FindUserByReferralCode(ctx context.Context, code string) (*models.User, error)

	// ListUsers returns a consistent snapshot of every user.
	ListUsers(ctx context.Context) ([]models.User, error)

	// ListPendingKyc returns users whose verification is awaiting review,
	// oldest submission first.
	ListPendingKyc(ctx context.Context) ([]models.User, error)
}

// UserWriter defines the interface for creating and mutating users.
type UserWriter interface {
	// CreateUser stores a new user. It fails with ErrAlreadyExists when the id is taken.
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)

	// UpdateUser runs fn against the current user and persists the result
	// together with the returned mutation. The read-validate-write cycle is
	// atomic with respect to every other UpdateUser on the same user.
	UpdateUser(ctx context.Context, userID string, fn UserMutator) (*models.User, error)
}

// UserStore combines the reader and writer interfaces.
type UserStore interface {
	UserReader
	UserWriter
}
