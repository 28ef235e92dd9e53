package storage

import (
	"context"
	"time"

	"github.com/chris/fairtask-ledger/pkg/models"
)

// LedgerReader defines the interface for reading ledger data.
type LedgerReader interface {
	// ListLedgerEntries retrieves the most recent entries of a user, newest first.
	ListLedgerEntries(ctx context.Context, userID string, limit int32) ([]models.LedgerEntry, error)

	// ListLedgerEntriesSince retrieves every entry posted at or after since,
	// across all users. A zero since returns the whole ledger.
	ListLedgerEntriesSince(ctx context.Context, since time.Time) ([]models.LedgerEntry, error)
}
