package storage

import (
	"context"

	"github.com/chris/fairtask-ledger/pkg/models"
)

// AdminDirectory stores back-office operators.
type AdminDirectory interface {
	GetAdmin(ctx context.Context, id string) (*models.Admin, error)
	CreateAdmin(ctx context.Context, admin *models.Admin) (*models.Admin, error)
	DeleteAdmin(ctx context.Context, id string) error
	ListAdmins(ctx context.Context) ([]models.Admin, error)
}
