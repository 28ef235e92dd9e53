package storage

import (
	"context"
	"time"

	"github.com/chris/fairtask-ledger/pkg/models"
)

// HoldReader finds verification holds that are ready to be released.
type HoldReader interface {
	// ListDueHolds returns every hold whose release time is at or before cutoff.
	ListDueHolds(ctx context.Context, cutoff time.Time) ([]DueHold, error)
}

// DueHold pairs a hold with its owner.
type DueHold struct {
	UserID string
	Hold   models.Hold
}
