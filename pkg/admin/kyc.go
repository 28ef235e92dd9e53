package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/chris/fairtask-ledger/pkg/storage"
)

// ListPendingKyc returns users awaiting verification review.
func (s *Service) ListPendingKyc(ctx context.Context, adminID string) ([]models.User, error) {
	if _, err := s.requireCapability(ctx, adminID, models.VIEW_KYC); err != nil {
		return nil, err
	}
	users, err := s.store.ListPendingKyc(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending kyc: %w", err)
	}
	return users, nil
}

// ReviewKyc approves or rejects a submitted verification. A rejection needs
// a reason, which is shown to the user.
func (s *Service) ReviewKyc(ctx context.Context, adminID, userID string, outcome models.KycStatus, reason string) (*models.User, error) {
	reason = strings.TrimSpace(reason)
	switch {
	case outcome != models.KYC_APPROVED && outcome != models.KYC_REJECTED:
		return nil, ruleerr.New(ruleerr.InvalidArgument, "outcome must be APPROVED or REJECTED")
	case outcome == models.KYC_REJECTED && reason == "":
		return nil, ruleerr.New(ruleerr.InvalidArgument, "a rejection reason is required")
	}
	actor, err := s.requireCapability(ctx, adminID, models.APPROVE_KYC)
	if err != nil {
		return nil, err
	}

	now := s.engine.Now()
	updated, err := s.store.UpdateUser(ctx, userID, func(u *models.User) (*storage.Mutation, error) {
		if u.Kyc.Status != models.KYC_SUBMITTED {
			return nil, ruleerr.New(ruleerr.NotFound, "no pending verification for user %s", userID)
		}
		u.Kyc.Status = outcome
		u.Kyc.ReviewedAt = &now
		u.Kyc.RejectionReason = ""
		if outcome == models.KYC_REJECTED {
			u.Kyc.RejectionReason = reason
		}
		return nil, nil
	})
	if err != nil {
		return nil, storeErr(err, "user", userID, "review kyc")
	}

	action, details := ActionKycApproved, "verification approved"
	if outcome == models.KYC_REJECTED {
		action, details = ActionKycRejected, "verification rejected: "+reason
	}
	s.audit(ctx, actor, action, userID, details)
	return updated, nil
}
