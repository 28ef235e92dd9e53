package admin

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/chris/fairtask-ledger/pkg/storage"
)

var allCapabilities = []models.Capability{
	models.MANAGE_ADMINS,
	models.VIEW_DASHBOARD,
	models.VIEW_USERS,
	models.EDIT_USERS,
	models.VIEW_FINANCE,
	models.APPROVE_WITHDRAWALS,
	models.VIEW_KYC,
	models.APPROVE_KYC,
	models.VIEW_AUDIT,
	models.MANAGE_SETTINGS,
	models.EMERGENCY_CONTROL,
}

var roleCapabilities = map[models.AdminRole][]models.Capability{
	models.SUPER_ADMIN:   allCapabilities,
	models.FINANCE_ADMIN: {models.VIEW_DASHBOARD, models.VIEW_FINANCE, models.APPROVE_WITHDRAWALS},
	models.KYC_ADMIN:     {models.VIEW_KYC, models.APPROVE_KYC},
	models.SUPPORT_ADMIN: {models.VIEW_USERS, models.EDIT_USERS},
	models.FRAUD_ANALYST: {models.VIEW_USERS, models.EDIT_USERS, models.VIEW_FINANCE, models.VIEW_AUDIT},
	models.CONTENT_ADMIN: {models.VIEW_DASHBOARD},
	models.AUDITOR:       {models.VIEW_USERS, models.VIEW_FINANCE, models.VIEW_KYC, models.VIEW_AUDIT},
}

// ValidRole reports whether r is a known role.
func ValidRole(r models.AdminRole) bool {
	_, ok := roleCapabilities[r]
	return ok
}

// ValidCapability reports whether c is a known capability.
func ValidCapability(c models.Capability) bool {
	return slices.Contains(allCapabilities, c)
}

// Capabilities returns what a may do. Explicit permissions replace the role
// defaults.
func Capabilities(a *models.Admin) []models.Capability {
	if len(a.Permissions) > 0 {
		return a.Permissions
	}
	return roleCapabilities[a.Role]
}

// HasCapability reports whether a holds c. Inactive admins hold nothing.
func HasCapability(a *models.Admin, c models.Capability) bool {
	return a.Active && slices.Contains(Capabilities(a), c)
}

// requireCapability resolves the acting admin and checks every capability.
func (s *Service) requireCapability(ctx context.Context, adminID string, caps ...models.Capability) (*models.Admin, error) {
	if adminID == "" {
		return nil, ruleerr.New(ruleerr.Forbidden, "admin identity is required")
	}
	actor, err := s.store.GetAdmin(ctx, adminID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ruleerr.New(ruleerr.Forbidden, "unknown admin %s", adminID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	if !actor.Active {
		return nil, ruleerr.New(ruleerr.Forbidden, "admin %s is inactive", adminID)
	}
	for _, c := range caps {
		if !HasCapability(actor, c) {
			return nil, ruleerr.New(ruleerr.Forbidden, "admin %s lacks %s", adminID, c)
		}
	}
	return actor, nil
}

// Whoami returns the acting admin and their effective capabilities.
func (s *Service) Whoami(ctx context.Context, adminID string) (*models.Admin, []models.Capability, error) {
	actor, err := s.requireCapability(ctx, adminID)
	if err != nil {
		return nil, nil, err
	}
	return actor, Capabilities(actor), nil
}
