package admin

import (
	"context"
	"fmt"

	"github.com/chris/fairtask-ledger/pkg/engine"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/shopspring/decimal"
)

// GetEmergencyState returns the kill switches.
func (s *Service) GetEmergencyState(ctx context.Context, adminID string) (models.EmergencyState, error) {
	if _, err := s.requireCapability(ctx, adminID, models.VIEW_DASHBOARD); err != nil {
		return models.EmergencyState{}, err
	}
	return s.engine.EmergencyState(ctx)
}

// ToggleEmergencyFlag sets one kill switch. It takes effect for the next
// engine call.
func (s *Service) ToggleEmergencyFlag(ctx context.Context, adminID string, flag models.EmergencyFlag, value bool) (models.EmergencyState, error) {
	if !flag.Valid() {
		return models.EmergencyState{}, ruleerr.New(ruleerr.InvalidArgument, "unknown emergency flag %q", flag)
	}
	actor, err := s.requireCapability(ctx, adminID, models.EMERGENCY_CONTROL)
	if err != nil {
		return models.EmergencyState{}, err
	}

	state, err := s.store.SetEmergencyFlag(ctx, flag, value)
	if err != nil {
		return models.EmergencyState{}, fmt.Errorf("failed to set emergency flag: %w", err)
	}

	s.audit(ctx, actor, ActionEmergency, string(flag), fmt.Sprintf("%s set to %t", flag, value))
	return state, nil
}

// GetSettings returns the platform settings.
func (s *Service) GetSettings(ctx context.Context, adminID string) (models.Settings, error) {
	if _, err := s.requireCapability(ctx, adminID, models.VIEW_DASHBOARD); err != nil {
		return models.Settings{}, err
	}
	return s.engine.Settings(ctx)
}

var hundred = decimal.NewFromInt(100)

// ValidateSettings checks fee percentages are in [0, 100) and leave a
// positive payout, and that minimums are not negative.
func ValidateSettings(settings models.Settings) error {
	for name, pct := range map[string]decimal.Decimal{
		"platform fee":    settings.PlatformFeePercent,
		"transaction fee": settings.TransactionFeePercent,
	} {
		if pct.IsNegative() || pct.GreaterThanOrEqual(hundred) {
			return ruleerr.New(ruleerr.InvalidArgument, "%s must be between 0 and 100", name)
		}
	}
	if settings.PlatformFeePercent.Add(settings.TransactionFeePercent).GreaterThanOrEqual(hundred) {
		return ruleerr.New(ruleerr.InvalidArgument, "combined fees must be below 100")
	}
	if settings.MinWithdrawalTrial.IsNegative() || settings.MinWithdrawalPaid.IsNegative() {
		return ruleerr.New(ruleerr.InvalidArgument, "minimum withdrawals must not be negative")
	}
	return nil
}

// UpdateSettings replaces the platform settings.
func (s *Service) UpdateSettings(ctx context.Context, adminID string, settings models.Settings) (models.Settings, error) {
	if err := ValidateSettings(settings); err != nil {
		return models.Settings{}, err
	}
	actor, err := s.requireCapability(ctx, adminID, models.MANAGE_SETTINGS)
	if err != nil {
		return models.Settings{}, err
	}

	if err := s.store.PutSettings(ctx, settings); err != nil {
		return models.Settings{}, fmt.Errorf("failed to put settings: %w", err)
	}

	s.audit(ctx, actor, ActionUpdateSettings, "", fmt.Sprintf(
		"fees %s%%/%s%%, minimums %s/%s, referrals %t, maintenance %t",
		settings.PlatformFeePercent, settings.TransactionFeePercent,
		settings.MinWithdrawalTrial, settings.MinWithdrawalPaid,
		settings.ReferralsEnabled, settings.MaintenanceMode))
	return settings, nil
}

// AwardLeaderboard pays the current period's leaderboard rewards.
func (s *Service) AwardLeaderboard(ctx context.Context, adminID string, tf engine.Timeframe) ([]engine.LeaderboardAward, error) {
	if !tf.Valid() {
		return nil, ruleerr.New(ruleerr.InvalidArgument, "unknown timeframe %q", tf)
	}
	actor, err := s.requireCapability(ctx, adminID, models.MANAGE_SETTINGS)
	if err != nil {
		return nil, err
	}

	awards, err := s.engine.AwardLeaderboard(ctx, tf)
	if len(awards) > 0 {
		total := decimal.Zero
		for _, a := range awards {
			total = total.Add(a.Amount)
		}
		s.audit(ctx, actor, ActionLeaderboardAward, string(tf), fmt.Sprintf("%d winners, %s total", len(awards), total))
	}
	return awards, err
}

// GetAuditLog returns audit entries newest first, optionally for one admin.
func (s *Service) GetAuditLog(ctx context.Context, adminID, filterAdminID string) ([]models.AuditLogEntry, error) {
	if _, err := s.requireCapability(ctx, adminID, models.VIEW_AUDIT); err != nil {
		return nil, err
	}
	entries, err := s.store.ListAudit(ctx, filterAdminID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log: %w", err)
	}
	return entries, nil
}
