package admin

import (
	"context"
	"fmt"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/shopspring/decimal"
)

// Dashboard is a platform overview.
type Dashboard struct {
	TotalUsers         int                   `json:"total_users"`
	ActiveUsers        int                   `json:"active_users"`
	PendingKyc         int                   `json:"pending_kyc"`
	PendingWithdrawals int                   `json:"pending_withdrawals"`
	PendingPayout      decimal.Decimal       `json:"pending_payout"`
	TotalMain          decimal.Decimal       `json:"total_main"`
	TotalPending       decimal.Decimal       `json:"total_pending"`
	TotalBonus         decimal.Decimal       `json:"total_bonus"`
	Emergency          models.EmergencyState `json:"emergency"`
}

// GetDashboard summarises users, balances and the payout queue.
func (s *Service) GetDashboard(ctx context.Context, adminID string) (*Dashboard, error) {
	if _, err := s.requireCapability(ctx, adminID, models.VIEW_DASHBOARD); err != nil {
		return nil, err
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	withdrawals, err := s.store.ListWithdrawals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	state, err := s.engine.EmergencyState(ctx)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		TotalUsers:    len(users),
		PendingPayout: decimal.Zero,
		TotalMain:     decimal.Zero,
		TotalPending:  decimal.Zero,
		TotalBonus:    decimal.Zero,
		Emergency:     state,
	}
	for _, u := range users {
		if u.Status == models.ACTIVE {
			d.ActiveUsers++
		}
		if u.Kyc.Status == models.KYC_SUBMITTED {
			d.PendingKyc++
		}
		d.TotalMain = d.TotalMain.Add(u.Wallet.Main)
		d.TotalPending = d.TotalPending.Add(u.Wallet.Pending)
		d.TotalBonus = d.TotalBonus.Add(u.Wallet.Bonus)
	}
	for _, w := range withdrawals {
		if w.Status == models.PENDING {
			d.PendingWithdrawals++
			d.PendingPayout = d.PendingPayout.Add(w.NetAmount)
		}
	}
	return d, nil
}
