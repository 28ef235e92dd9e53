package ledger

import (
	"context"
	"net/http"
	"strings"

	"github.com/chris/fairtask-ledger/pkg/api"
	"github.com/chris/fairtask-ledger/pkg/engine"
	"github.com/chris/fairtask-ledger/pkg/handlers/respond"
	"github.com/chris/fairtask-ledger/pkg/mapping"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/plans"
)

const (
	defaultLimit = 20
	maxLimit     = 200
)

// Reader is the part of the rules engine the read-only routes call.
type Reader interface {
	GetLedger(ctx context.Context, userID string, limit int32) ([]models.LedgerEntry, error)
	Leaderboard(ctx context.Context, tf engine.Timeframe, limit int) ([]engine.LeaderboardRow, error)
}

// LedgerHandler holds the dependencies for ledger, leaderboard and catalog
// handlers.
type LedgerHandler struct {
	Reader Reader
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(reader Reader) *LedgerHandler {
	return &LedgerHandler{Reader: reader}
}

func clampLimit(limit *int) int {
	if limit == nil || *limit <= 0 {
		return defaultLimit
	}
	return min(*limit, maxLimit)
}

// GetLedger returns the user's entries, newest first.
func (h *LedgerHandler) GetLedger(w http.ResponseWriter, r *http.Request, userId string, params api.GetLedgerParams) {
	entries, err := h.Reader.GetLedger(r.Context(), userId, int32(clampLimit(params.Limit)))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiLedgerEntries(entries))
}

// GetLeaderboard ranks users by verified earnings in a timeframe.
func (h *LedgerHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request, timeframe string, params api.GetLeaderboardParams) {
	rows, err := h.Reader.Leaderboard(r.Context(), engine.Timeframe(strings.ToUpper(timeframe)), clampLimit(params.Limit))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiLeaderboard(rows))
}

// ListPlans returns the plan catalog ordered by price.
func (h *LedgerHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	all := plans.All()
	out := make([]api.Plan, len(all))
	for i, c := range all {
		out[i] = mapping.ToApiPlan(c)
	}
	respond.JSON(w, http.StatusOK, out)
}
