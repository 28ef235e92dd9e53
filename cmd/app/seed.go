package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chris/fairtask-ledger/pkg/engine"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
)

// seedDemo creates a two-level referral chain with some completed tasks so a
// fresh local server has something to show. Already seeded users are kept.
func seedDemo(ctx context.Context, eng *engine.Engine, logger *slog.Logger) error {
	root, err := eng.CreateUser(ctx, engine.NewUser{UID: "demo-priya", Name: "Priya Sharma", Email: "priya@example.com"})
	if err != nil {
		if kind, ok := ruleerr.KindOf(err); ok && kind == ruleerr.InvalidState {
			logger.Info("demo data already present")
			return nil
		}
		return fmt.Errorf("failed to seed root user: %w", err)
	}

	child, err := eng.CreateUser(ctx, engine.NewUser{UID: "demo-rahul", Name: "Rahul Verma", ReferralCode: root.ReferralCode})
	if err != nil {
		return fmt.Errorf("failed to seed referred user: %w", err)
	}

	for _, task := range []models.TaskType{models.VIDEO, models.VIDEO, models.VIDEO, models.LINK} {
		if _, err := eng.CompleteTask(ctx, child.UID, task); err != nil {
			return fmt.Errorf("failed to seed task for %s: %w", child.UID, err)
		}
	}

	logger.Info("seeded demo data", "users", []string{root.UID, child.UID})
	return nil
}
