// Package admin implements the back-office operations. Every operation
// resolves the acting admin, checks a capability once, mutates state through
// the store and then appends an audit entry.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chris/fairtask-ledger/pkg/engine"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/chris/fairtask-ledger/pkg/storage"
	"github.com/google/uuid"
)

// Audit actions.
const (
	ActionPayoutCompleted   = "PAYOUT_COMPLETED"
	ActionPayoutFailed      = "PAYOUT_FAILED"
	ActionKycApproved       = "KYC_APPROVED"
	ActionKycRejected       = "KYC_REJECTED"
	ActionUserStatusChange  = "USER_STATUS_CHANGE"
	ActionBalanceAdjustment = "BALANCE_ADJUSTMENT"
	ActionEmergency         = "EMERGENCY_ACTION"
	ActionUpdateSettings    = "UPDATE_SETTINGS"
	ActionCreateAdmin       = "CREATE_ADMIN"
	ActionDeleteAdmin       = "DELETE_ADMIN"
	ActionLeaderboardAward  = "LEADERBOARD_AWARD"
)

// Service performs admin operations.
type Service struct {
	store  storage.Storage
	engine *engine.Engine
	logger *slog.Logger
}

// New creates a Service. The engine supplies the clock, ledger entry ids and
// wallet-update notifications so admin writes look like engine writes.
func New(store storage.Storage, eng *engine.Engine, logger *slog.Logger) *Service {
	return &Service{store: store, engine: eng, logger: logger}
}

// audit appends an entry for a committed action. The action already took
// effect, so a failure is logged rather than returned.
func (s *Service) audit(ctx context.Context, actor *models.Admin, action, targetID, details string) {
	entry := &models.AuditLogEntry{
		ID:        uuid.New().String(),
		AdminID:   actor.ID,
		Role:      actor.Role,
		Action:    action,
		TargetID:  targetID,
		Details:   details,
		Timestamp: s.engine.Now(),
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		s.logger.Error("CRITICAL: admin action committed but audit entry was not written",
			"admin_id", actor.ID, "action", action, "target_id", targetID, "error", err)
		return
	}
	s.logger.Info("admin action", "admin_id", actor.ID, "action", action, "target_id", targetID)
}

// storeErr maps a storage error on a kind/id record to a rejection or a fault.
func storeErr(err error, kind, id, action string) error {
	if _, ok := ruleerr.KindOf(err); ok {
		return err
	}
	if errors.Is(err, storage.ErrNotFound) {
		return ruleerr.New(ruleerr.NotFound, "%s %s not found", kind, id)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
