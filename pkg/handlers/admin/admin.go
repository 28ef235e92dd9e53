package admin

import (
	"context"
	"net/http"
	"strings"

	adminsvc "github.com/chris/fairtask-ledger/pkg/admin"
	"github.com/chris/fairtask-ledger/pkg/api"
	"github.com/chris/fairtask-ledger/pkg/engine"
	"github.com/chris/fairtask-ledger/pkg/handlers/respond"
	"github.com/chris/fairtask-ledger/pkg/mapping"
	"github.com/chris/fairtask-ledger/pkg/models"
)

const defaultLedgerLimit = 50

// Operations is the admin service as seen by the admin routes.
type Operations interface {
	Whoami(ctx context.Context, adminID string) (*models.Admin, []models.Capability, error)
	GetDashboard(ctx context.Context, adminID string) (*adminsvc.Dashboard, error)
	ListWithdrawals(ctx context.Context, adminID string) ([]models.WithdrawalRequest, error)
	ProcessWithdrawal(ctx context.Context, adminID, requestID string, outcome models.TransactionStatus) (*models.WithdrawalRequest, error)
	ListPendingKyc(ctx context.Context, adminID string) ([]models.User, error)
	ReviewKyc(ctx context.Context, adminID, userID string, outcome models.KycStatus, reason string) (*models.User, error)
	ListUsers(ctx context.Context, adminID string) ([]models.User, error)
	GetUser(ctx context.Context, adminID, userID string, ledgerLimit int32) (*models.User, []models.LedgerEntry, error)
	SetUserStatus(ctx context.Context, adminID, userID string, status models.UserStatus) (*models.User, error)
	AdjustBalance(ctx context.Context, adminID string, adj adminsvc.Adjustment) (*models.User, error)
	GetEmergencyState(ctx context.Context, adminID string) (models.EmergencyState, error)
	ToggleEmergencyFlag(ctx context.Context, adminID string, flag models.EmergencyFlag, value bool) (models.EmergencyState, error)
	GetSettings(ctx context.Context, adminID string) (models.Settings, error)
	UpdateSettings(ctx context.Context, adminID string, settings models.Settings) (models.Settings, error)
	GetAuditLog(ctx context.Context, adminID, filterAdminID string) ([]models.AuditLogEntry, error)
	ListAdmins(ctx context.Context, adminID string) ([]models.Admin, error)
	CreateAdmin(ctx context.Context, adminID string, in adminsvc.NewAdmin) (*models.Admin, error)
	DeleteAdmin(ctx context.Context, adminID, targetID string) error
	AwardLeaderboard(ctx context.Context, adminID string, tf engine.Timeframe) ([]engine.LeaderboardAward, error)
}

// AdminHandler holds the dependencies for back-office handlers.
type AdminHandler struct {
	Ops Operations
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(ops Operations) *AdminHandler {
	return &AdminHandler{Ops: ops}
}

// GetAdminMe returns the calling admin and their capabilities.
func (h *AdminHandler) GetAdminMe(w http.ResponseWriter, r *http.Request, params api.AdminParams) {
	a, _, err := h.Ops.Whoami(r.Context(), params.XAdminID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiAdmin(a))
}

// GetDashboard returns the platform overview.
func (h *AdminHandler) GetDashboard(w http.ResponseWriter, r *http.Request, params api.AdminParams) {
	d, err := h.Ops.GetDashboard(r.Context(), params.XAdminID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiDashboard(d))
}

// ListWithdrawals returns every payout request, newest first.
func (h *AdminHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request, params api.AdminParams) {
	out, err := h.Ops.ListWithdrawals(r.Context(), params.XAdminID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiWithdrawals(out))
}

// ProcessWithdrawal marks a pending payout COMPLETED or FAILED.
func (h *AdminHandler) ProcessWithdrawal(w http.ResponseWriter, r *http.Request, requestId string, params api.AdminParams) {
	var in api.WithdrawalOutcome
	if !respond.Decode(w, r, &in) {
		return
	}

	req, err := h.Ops.ProcessWithdrawal(r.Context(), params.XAdminID, requestId, models.TransactionStatus(strings.ToUpper(in.Status)))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiWithdrawal(req))
}

// ListPendingKyc returns users awaiting verification review.
func (h *AdminHandler) ListPendingKyc(w http.ResponseWriter, r *http.Request, params api.AdminParams) {
	users, err := h.Ops.ListPendingKyc(r.Context(), params.XAdminID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiUsers(users))
}

// ReviewKyc approves or rejects a submitted verification.
func (h *AdminHandler) ReviewKyc(w http.ResponseWriter, r *http.Request, userId string, params api.AdminParams) {
	var in api.KycReview
	if !respond.Decode(w, r, &in) {
		return
	}

	u, err := h.Ops.ReviewKyc(r.Context(), params.XAdminID, userId, models.KycStatus(strings.ToUpper(in.Status)), in.Reason)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiUser(u))
}

// ListUsers returns every user.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request, params api.AdminParams) {
	users, err := h.Ops.ListUsers(r.Context(), params.XAdminID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiUsers(users))
}

// GetAdminUser returns a user with their recent ledger.
func (h *AdminHandler) GetAdminUser(w http.ResponseWriter, r *http.Request, userId string, params api.GetAdminUserParams) {
	limit := int32(defaultLedgerLimit)
	if params.Limit != nil && *params.Limit > 0 {
		limit = int32(*params.Limit)
	}

	u, entries, err := h.Ops.GetUser(r.Context(), params.XAdminID, userId, limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	ledger := make([]api.LedgerEntry, len(entries))
	for i := range entries {
		ledger[i] = *mapping.ToApiLedgerEntry(&entries[i])
	}
	respond.JSON(w, http.StatusOK, api.AdminUser{User: *mapping.ToApiUser(u), Ledger: ledger})
}

// SetUserStatus changes a user's moderation status.
func (h *AdminHandler) SetUserStatus(w http.ResponseWriter, r *http.Request, userId string, params api.AdminParams) {
	var in api.UserStatusChange
	if !respond.Decode(w, r, &in) {
		return
	}

	u, err := h.Ops.SetUserStatus(r.Context(), params.XAdminID, userId, models.UserStatus(strings.ToUpper(in.Status)))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiUser(u))
}

// AdjustBalance applies a manual correction to one bucket.
func (h *AdminHandler) AdjustBalance(w http.ResponseWriter, r *http.Request, userId string, params api.AdminParams) {
	var in api.BalanceAdjustment
	if !respond.Decode(w, r, &in) {
		return
	}

	u, err := h.Ops.AdjustBalance(r.Context(), params.XAdminID, adminsvc.Adjustment{
		UserID: userId,
		Bucket: adminsvc.Bucket(strings.ToLower(in.Bucket)),
		Amount: in.Amount,
		Reason: in.Reason,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiUser(u))
}

// GetEmergencyState returns the kill switches.
func (h *AdminHandler) GetEmergencyState(w http.ResponseWriter, r *http.Request, params api.AdminParams) {
	state, err := h.Ops.GetEmergencyState(r.Context(), params.XAdminID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiEmergencyState(state))
}

// ToggleEmergency sets one kill switch.
func (h *AdminHandler) ToggleEmergency(w http.ResponseWriter, r *http.Request, params api.AdminParams) {
	var in api.EmergencyToggle
	if !respond.Decode(w, r, &in) {
		return
	}

	state, err := h.Ops.ToggleEmergencyFlag(r.Context(), params.XAdminID, models.EmergencyFlag(in.Flag), in.Value)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiEmergencyState(state))
}

// GetSettings returns the platform settings.
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request, params api.AdminParams) {
	settings, err := h.Ops.GetSettings(r.Context(), params.XAdminID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiSettings(settings))
}

// UpdateSettings replaces the platform settings.
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request, params api.AdminParams) {
	var in api.Settings
	if !respond.Decode(w, r, &in) {
		return
	}

	settings, err := h.Ops.UpdateSettings(r.Context(), params.XAdminID, mapping.ToDomainSettings(&in))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiSettings(settings))
}

// ListAuditLog returns audit entries, optionally for one admin.
func (h *AdminHandler) ListAuditLog(w http.ResponseWriter, r *http.Request, params api.ListAuditLogParams) {
	filter := ""
	if params.AdminId != nil {
		filter = *params.AdminId
	}

	entries, err := h.Ops.GetAuditLog(r.Context(), params.XAdminID, filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiAuditEntries(entries))
}

// ListAdmins returns every operator.
func (h *AdminHandler) ListAdmins(w http.ResponseWriter, r *http.Request, params api.AdminParams) {
	admins, err := h.Ops.ListAdmins(r.Context(), params.XAdminID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiAdmins(admins))
}

// CreateAdmin adds an operator.
func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request, params api.AdminParams) {
	var in api.NewAdmin
	if !respond.Decode(w, r, &in) {
		return
	}

	created, err := h.Ops.CreateAdmin(r.Context(), params.XAdminID, mapping.ToDomainNewAdmin(&in))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, mapping.ToApiAdmin(created))
}

// DeleteAdmin removes an operator.
func (h *AdminHandler) DeleteAdmin(w http.ResponseWriter, r *http.Request, adminId string, params api.AdminParams) {
	if err := h.Ops.DeleteAdmin(r.Context(), params.XAdminID, adminId); err != nil {
		respond.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AwardLeaderboard pays the current period's leaderboard rewards.
func (h *AdminHandler) AwardLeaderboard(w http.ResponseWriter, r *http.Request, timeframe string, params api.AdminParams) {
	awards, err := h.Ops.AwardLeaderboard(r.Context(), params.XAdminID, engine.Timeframe(strings.ToUpper(timeframe)))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiLeaderboardAwards(awards))
}
