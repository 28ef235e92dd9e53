package users

import (
	"context"
	"net/http"

	"github.com/chris/fairtask-ledger/pkg/api"
	"github.com/chris/fairtask-ledger/pkg/engine"
	"github.com/chris/fairtask-ledger/pkg/handlers/respond"
	"github.com/chris/fairtask-ledger/pkg/mapping"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/shopspring/decimal"
)

// Rules is the part of the rules engine the user routes call.
type Rules interface {
	CreateUser(ctx context.Context, in engine.NewUser) (*models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetTaskStatus(ctx context.Context, userID string) (*engine.TaskStatus, error)
	CompleteTask(ctx context.Context, userID string, taskType models.TaskType) (*engine.TaskResult, error)
	RequestWithdrawal(ctx context.Context, userID string, in engine.WithdrawalInput) (*models.WithdrawalRequest, error)
	UnlockBonus(ctx context.Context, userID string) (decimal.Decimal, error)
	SubmitKyc(ctx context.Context, userID string, in models.KycSubmission) (*models.User, error)
	PurchasePlan(ctx context.Context, userID string, tier models.PlanTier) (*models.User, error)
}

// UsersHandler holds the dependencies for user-facing handlers.
type UsersHandler struct {
	Rules Rules
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(rules Rules) *UsersHandler {
	return &UsersHandler{Rules: rules}
}

// CreateUser registers a user on the trial plan.
func (h *UsersHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in api.NewUser
	if !respond.Decode(w, r, &in) {
		return
	}

	created, err := h.Rules.CreateUser(r.Context(), mapping.ToDomainNewUser(&in))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, mapping.ToApiUser(created))
}

// GetUser returns a user and their wallet.
func (h *UsersHandler) GetUser(w http.ResponseWriter, r *http.Request, userId string) {
	u, err := h.Rules.GetUser(r.Context(), userId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiUser(u))
}

// GetTaskStatus returns what the user can still do today.
func (h *UsersHandler) GetTaskStatus(w http.ResponseWriter, r *http.Request, userId string) {
	status, err := h.Rules.GetTaskStatus(r.Context(), userId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiTaskStatus(status))
}

// CompleteTask credits one task reward to the pending bucket.
func (h *UsersHandler) CompleteTask(w http.ResponseWriter, r *http.Request, userId string) {
	var in api.NewTask
	if !respond.Decode(w, r, &in) {
		return
	}

	res, err := h.Rules.CompleteTask(r.Context(), userId, models.TaskType(in.Type))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, mapping.ToApiTaskResult(res))
}

// RequestWithdrawal files a payout request.
func (h *UsersHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request, userId string) {
	var in api.NewWithdrawal
	if !respond.Decode(w, r, &in) {
		return
	}

	req, err := h.Rules.RequestWithdrawal(r.Context(), userId, mapping.ToDomainWithdrawalInput(&in))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, mapping.ToApiWithdrawal(req))
}

// UnlockBonus moves the bonus bucket to main.
func (h *UsersHandler) UnlockBonus(w http.ResponseWriter, r *http.Request, userId string) {
	moved, err := h.Rules.UnlockBonus(r.Context(), userId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	u, err := h.Rules.GetUser(r.Context(), userId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, api.BonusUnlockResult{Moved: moved, Wallet: mapping.ToApiWallet(u.Wallet)})
}

// SubmitKyc files identity documents for review.
func (h *UsersHandler) SubmitKyc(w http.ResponseWriter, r *http.Request, userId string) {
	var in api.NewKycSubmission
	if !respond.Decode(w, r, &in) {
		return
	}

	u, err := h.Rules.SubmitKyc(r.Context(), userId, mapping.ToDomainKycSubmission(&in))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusAccepted, mapping.ToApiUser(u))
}

// PurchasePlan switches the user to a paid plan.
func (h *UsersHandler) PurchasePlan(w http.ResponseWriter, r *http.Request, userId string) {
	var in api.PlanPurchase
	if !respond.Decode(w, r, &in) {
		return
	}

	u, err := h.Rules.PurchasePlan(r.Context(), userId, models.PlanTier(in.PlanId))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiUser(u))
}
