package engine

import (
	"context"
	"fmt"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
)

// EmergencyState returns the current kill switches.
func (e *Engine) EmergencyState(ctx context.Context) (models.EmergencyState, error) {
	state, err := e.store.GetEmergencyState(ctx)
	if err != nil {
		return models.EmergencyState{}, fmt.Errorf("failed to get emergency state: %w", err)
	}
	return state, nil
}

// Settings returns the platform settings in effect.
func (e *Engine) Settings(ctx context.Context) (models.Settings, error) {
	settings, err := e.store.GetSettings(ctx)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// checkGate fails with EmergencyPaused when flag is on.
func (e *Engine) checkGate(ctx context.Context, flag models.EmergencyFlag) error {
	state, err := e.EmergencyState(ctx)
	if err != nil {
		return err
	}
	if state.Enabled(flag) {
		return ruleerr.New(ruleerr.EmergencyPaused, "%s is active", flag)
	}
	return nil
}
