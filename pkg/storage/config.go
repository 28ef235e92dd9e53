package storage

import (
	"context"

	"github.com/chris/fairtask-ledger/pkg/models"
)

// ConfigStore holds the platform settings and the emergency switches.
type ConfigStore interface {
	GetSettings(ctx context.Context) (models.Settings, error)
	PutSettings(ctx context.Context, settings models.Settings) error
	GetEmergencyState(ctx context.Context) (models.EmergencyState, error)
	// SetEmergencyFlag overwrites one switch and returns the resulting state.
	SetEmergencyFlag(ctx context.Context, flag models.EmergencyFlag, value bool) (models.EmergencyState, error)
}
