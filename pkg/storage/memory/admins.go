package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/storage"
)

func cloneAdmin(a *models.Admin) *models.Admin {
	c := *a
	c.Permissions = append([]models.Capability(nil), a.Permissions...)
	return &c
}

func (s *Store) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.admins[id]
	if !ok {
		return nil, notFound("admin", id)
	}
	return cloneAdmin(a), nil
}

func (s *Store) CreateAdmin(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.admins[admin.ID]; ok {
		return nil, fmt.Errorf("admin with ID %s: %w", admin.ID, storage.ErrAlreadyExists)
	}
	s.admins[admin.ID] = cloneAdmin(admin)
	return cloneAdmin(admin), nil
}

func (s *Store) DeleteAdmin(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.admins[id]; !ok {
		return notFound("admin", id)
	}
	delete(s.admins, id)
	return nil
}

// ListAdmins returns admins ordered by creation time.
func (s *Store) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Admin, 0, len(s.admins))
	for _, a := range s.admins {
		out = append(out, *cloneAdmin(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
