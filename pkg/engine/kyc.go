package engine

import (
	"context"
	"strings"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/chris/fairtask-ledger/pkg/storage"
)

// SubmitKyc files identity documents for review. A user may submit when they
// have never submitted or after a rejection.
func (e *Engine) SubmitKyc(ctx context.Context, userID string, in models.KycSubmission) (*models.User, error) {
	if strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.DocumentNumber) == "" {
		return nil, ruleerr.New(ruleerr.InvalidArgument, "full name and document number are required")
	}
	if !in.DocumentType.Valid() {
		return nil, ruleerr.New(ruleerr.InvalidArgument, "unknown document type %q", in.DocumentType)
	}

	now := e.now()
	updated, err := e.store.UpdateUser(ctx, userID, func(u *models.User) (*storage.Mutation, error) {
		switch u.Kyc.Status {
		case models.KYC_NOT_STARTED, models.KYC_REJECTED, "":
		default:
			return nil, ruleerr.New(ruleerr.InvalidState, "verification is already %s", u.Kyc.Status)
		}
		u.Kyc = models.KycRecord{
			Status:             models.KYC_SUBMITTED,
			FullName:           strings.TrimSpace(in.FullName),
			DocumentType:       in.DocumentType,
			DocumentNumber:     strings.TrimSpace(in.DocumentNumber),
			DocumentImageFront: in.DocumentImageFront,
			DocumentImageBack:  in.DocumentImageBack,
			SubmittedAt:        &now,
		}
		return nil, nil
	})
	if err != nil {
		return nil, userErr(err, userID, "submit kyc")
	}

	e.logger.Info("kyc submitted", "user_id", userID, "document_type", in.DocumentType)
	return updated, nil
}
