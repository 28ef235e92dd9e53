package storage

import (
	"context"

	"github.com/chris/fairtask-ledger/pkg/models"
)

// AuditStore is the append-only trail of administrative actions.
type AuditStore interface {
	// AppendAudit stores a new entry.
	AppendAudit(ctx context.Context, entry *models.AuditLogEntry) error

	// ListAudit returns entries newest first, restricted to adminID when it is non-empty.
	ListAudit(ctx context.Context, adminID string) ([]models.AuditLogEntry, error)
}
