package storage

import (
	"context"

	"github.com/chris/fairtask-ledger/pkg/models"
)

// AwardStore reserves leaderboard award periods.
type AwardStore interface {
	// ClaimAward stores claim unless its period was claimed before. It returns
	// the claim on record and whether this call created it.
	ClaimAward(ctx context.Context, claim *models.AwardClaim) (stored *models.AwardClaim, created bool, err error)
}
