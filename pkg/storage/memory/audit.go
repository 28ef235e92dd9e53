package memory

import (
	"context"

	"github.com/chris/fairtask-ledger/pkg/models"
)

// AppendAudit appends an entry to the trail.
func (s *Store) AppendAudit(ctx context.Context, entry *models.AuditLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audit = append(s.audit, *entry)
	return nil
}

// ListAudit returns entries newest first, optionally for a single admin.
func (s *Store) ListAudit(ctx context.Context, adminID string) ([]models.AuditLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AuditLogEntry
	for i := len(s.audit) - 1; i >= 0; i-- {
		if adminID == "" || s.audit[i].AdminID == adminID {
			out = append(out, s.audit[i])
		}
	}
	return out, nil
}
