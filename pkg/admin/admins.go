package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/chris/fairtask-ledger/pkg/storage"
	"github.com/google/uuid"
)

// NewAdmin is the data for creating an operator.
type NewAdmin struct {
	Name        string
	Phone       string
	Role        models.AdminRole
	Permissions []models.Capability
}

// ListAdmins returns every operator.
func (s *Service) ListAdmins(ctx context.Context, adminID string) ([]models.Admin, error) {
	if _, err := s.requireCapability(ctx, adminID, models.MANAGE_ADMINS); err != nil {
		return nil, err
	}
	admins, err := s.store.ListAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, nil
}

// CreateAdmin adds an active operator.
func (s *Service) CreateAdmin(ctx context.Context, adminID string, in NewAdmin) (*models.Admin, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ruleerr.New(ruleerr.InvalidArgument, "name is required")
	}
	if !ValidRole(in.Role) {
		return nil, ruleerr.New(ruleerr.InvalidArgument, "unknown role %q", in.Role)
	}
	for _, c := range in.Permissions {
		if !ValidCapability(c) {
			return nil, ruleerr.New(ruleerr.InvalidArgument, "unknown capability %q", c)
		}
	}
	actor, err := s.requireCapability(ctx, adminID, models.MANAGE_ADMINS)
	if err != nil {
		return nil, err
	}

	created, err := s.store.CreateAdmin(ctx, &models.Admin{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Phone:       in.Phone,
		Role:        in.Role,
		Permissions: in.Permissions,
		Active:      true,
		CreatedAt:   s.engine.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	s.audit(ctx, actor, ActionCreateAdmin, created.ID, fmt.Sprintf("%s as %s", created.Name, created.Role))
	return created, nil
}

// DeleteAdmin removes an operator. Admins cannot remove themselves.
func (s *Service) DeleteAdmin(ctx context.Context, adminID, targetID string) error {
	actor, err := s.requireCapability(ctx, adminID, models.MANAGE_ADMINS)
	if err != nil {
		return err
	}
	if targetID == actor.ID {
		return ruleerr.New(ruleerr.InvalidState, "admins cannot delete themselves")
	}

	if err := s.store.DeleteAdmin(ctx, targetID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ruleerr.New(ruleerr.NotFound, "admin %s not found", targetID)
		}
		return fmt.Errorf("failed to delete admin: %w", err)
	}

	s.audit(ctx, actor, ActionDeleteAdmin, targetID, "admin removed")
	return nil
}

// Bootstrap creates the first super admin when the directory has none with
// that id. It bypasses capability checks and is meant for process startup.
func (s *Service) Bootstrap(ctx context.Context, id, name string) (*models.Admin, error) {
	existing, err := s.store.GetAdmin(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	created, err := s.store.CreateAdmin(ctx, &models.Admin{
		ID:        id,
		Name:      name,
		Role:      models.SUPER_ADMIN,
		Active:    true,
		CreatedAt: s.engine.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	s.logger.Info("bootstrap admin created", "admin_id", id)
	return created, nil
}
