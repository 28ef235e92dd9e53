package mapping

import (
	"github.com/chris/fairtask-ledger/pkg/admin"
	"github.com/chris/fairtask-ledger/pkg/api"
	"github.com/chris/fairtask-ledger/pkg/engine"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/plans"
)

// ToApiWallet converts a domain Wallet to an API Wallet with its total.
func ToApiWallet(w models.Wallet) api.Wallet {
	return api.Wallet{
		Main:    w.Main,
		Pending: w.Pending,
		Bonus:   w.Bonus,
		Total:   w.Main.Add(w.Pending).Add(w.Bonus),
	}
}

func toApiDailyStats(d models.DailyStats) api.DailyStats {
	return api.DailyStats{Date: d.Date, VideosWatched: d.VideosWatched, LinksVisited: d.LinksVisited}
}

// ToApiUser converts a domain User to an API User. Document numbers and
// images are never exposed.
func ToApiUser(u *models.User) *api.User {
	return &api.User{
		Uid:          u.UID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Status:       string(u.Status),
		PlanId:       string(u.PlanID),
		PlanExpiry:   u.PlanExpiry,
		Wallet:       ToApiWallet(u.Wallet),
		ReferralCode: u.ReferralCode,
		ReferredBy:   u.ReferredBy,
		ReferralStats: api.ReferralStats{
			L1Count:       u.ReferralStats.L1Count,
			L2Count:       u.ReferralStats.L2Count,
			L3Count:       u.ReferralStats.L3Count,
			TotalEarnings: u.ReferralStats.TotalEarnings,
		},
		DailyStats: toApiDailyStats(u.DailyStats),
		BonusProgress: api.BonusProgress{
			ConsecutiveDaysActive:  u.BonusUnlock.ConsecutiveDaysActive,
			RequiredDays:           plans.RequiredDays,
			HasCompletedWithdrawal: u.BonusUnlock.HasCompletedWithdrawal,
			Unlocked:               engine.BonusUnlocked(u.BonusUnlock),
		},
		Kyc: api.Kyc{
			Status:          string(u.Kyc.Status),
			DocumentType:    string(u.Kyc.DocumentType),
			SubmittedAt:     u.Kyc.SubmittedAt,
			ReviewedAt:      u.Kyc.ReviewedAt,
			RejectionReason: u.Kyc.RejectionReason,
		},
		PendingHolds: len(u.Holds),
		CreatedAt:    u.CreatedAt,
	}
}

// ToApiUsers converts a list of domain users.
func ToApiUsers(users []models.User) []*api.User {
	out := make([]*api.User, len(users))
	for i := range users {
		out[i] = ToApiUser(&users[i])
	}
	return out
}

// ToDomainNewUser converts a signup request.
func ToDomainNewUser(in *api.NewUser) engine.NewUser {
	out := engine.NewUser{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		ReferralCode: in.ReferralCode,
	}
	if in.Uid != nil {
		out.UID = *in.Uid
	}
	return out
}

// ToApiTaskResult converts the outcome of a completed task.
func ToApiTaskResult(res *engine.TaskResult) *api.TaskResult {
	return &api.TaskResult{
		Reward:     res.Reward,
		EntryId:    res.Entry.ID,
		Wallet:     ToApiWallet(res.User.Wallet),
		DailyStats: toApiDailyStats(res.User.DailyStats),
	}
}

// ToApiTaskStatus converts today's remaining tasks.
func ToApiTaskStatus(s *engine.TaskStatus) *api.TaskStatus {
	return &api.TaskStatus{
		Date:            s.Date,
		VideosRemaining: s.VideosRemaining,
		LinksRemaining:  s.LinksRemaining,
		VideoReward:     s.VideoReward,
		LinkReward:      s.LinkReward,
	}
}

// ToDomainWithdrawalInput converts a payout request.
func ToDomainWithdrawalInput(in *api.NewWithdrawal) engine.WithdrawalInput {
	return engine.WithdrawalInput{
		Amount:  in.Amount,
		Method:  models.WithdrawalMethod(in.Method),
		Details: in.Details,
	}
}

// ToApiWithdrawal converts a domain WithdrawalRequest.
func ToApiWithdrawal(w *models.WithdrawalRequest) *api.Withdrawal {
	return &api.Withdrawal{
		Id:             w.ID,
		UserId:         w.UserID,
		Amount:         w.Amount,
		NetAmount:      w.NetAmount,
		PlatformFee:    w.PlatformFee,
		TransactionFee: w.TransactionFee,
		Status:         string(w.Status),
		Method:         string(w.Method),
		Details:        w.Details,
		UserKycStatus:  string(w.UserKycStatus),
		ProcessedBy:    w.ProcessedBy,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

// ToApiWithdrawals converts a list of withdrawals.
func ToApiWithdrawals(ws []models.WithdrawalRequest) []*api.Withdrawal {
	out := make([]*api.Withdrawal, len(ws))
	for i := range ws {
		out[i] = ToApiWithdrawal(&ws[i])
	}
	return out
}

// ToDomainKycSubmission converts an identity document upload.
func ToDomainKycSubmission(in *api.NewKycSubmission) models.KycSubmission {
	return models.KycSubmission{
		FullName:           in.FullName,
		DocumentType:       models.KycDocumentType(in.DocumentType),
		DocumentNumber:     in.DocumentNumber,
		DocumentImageFront: in.DocumentImageFront,
		DocumentImageBack:  in.DocumentImageBack,
	}
}

// ToApiLedgerEntry converts a domain LedgerEntry.
func ToApiLedgerEntry(entry *models.LedgerEntry) *api.LedgerEntry {
	return &api.LedgerEntry{
		Id:           entry.ID,
		UserId:       entry.UserID,
		Type:         string(entry.Type),
		Amount:       entry.Amount,
		Currency:     string(entry.Currency),
		Status:       string(entry.Status),
		Timestamp:    entry.Timestamp,
		Description:  entry.Description,
		BalanceAfter: ToApiWallet(entry.BalanceAfter),
		ReferenceId:  entry.ReferenceID,
	}
}

// ToApiLedgerEntries converts a list of ledger entries.
func ToApiLedgerEntries(entries []models.LedgerEntry) []*api.LedgerEntry {
	out := make([]*api.LedgerEntry, len(entries))
	for i := range entries {
		out[i] = ToApiLedgerEntry(&entries[i])
	}
	return out
}

// ToApiLeaderboard converts ranked rows. User ids stay server side.
func ToApiLeaderboard(rows []engine.LeaderboardRow) []api.LeaderboardRow {
	out := make([]api.LeaderboardRow, len(rows))
	for i, r := range rows {
		out[i] = api.LeaderboardRow{
			Rank:        r.Rank,
			Name:        r.Name,
			Earnings:    r.Earnings,
			Reward:      r.Reward,
			BonusLocked: r.BonusLocked,
		}
	}
	return out
}

// ToApiLeaderboardAwards converts paid rewards.
func ToApiLeaderboardAwards(awards []engine.LeaderboardAward) []api.LeaderboardAward {
	out := make([]api.LeaderboardAward, len(awards))
	for i, a := range awards {
		out[i] = api.LeaderboardAward{Rank: a.Rank, UserId: a.UserID, Amount: a.Amount, EntryId: a.EntryID}
	}
	return out
}

// ToApiPlan converts a catalog entry.
func ToApiPlan(c plans.Config) api.Plan {
	return api.Plan{
		Id:              string(c.Tier),
		PriceInr:        c.PriceINR,
		PriceUsd:        c.PriceUSD(),
		DurationDays:    c.DurationDays,
		DailyVideoLimit: c.DailyVideoLimit,
		DailyLinkLimit:  c.DailyLinkLimit,
		VideoReward:     c.PerTaskReward(models.VIDEO),
		LinkReward:      c.PerTaskReward(models.LINK),
		MinWithdrawal:   c.MinWithdrawal,
	}
}

// ToApiEmergencyState converts the kill switches.
func ToApiEmergencyState(s models.EmergencyState) api.EmergencyState {
	return api.EmergencyState{
		WithdrawalsPaused: s.WithdrawalsPaused,
		EarningsPaused:    s.EarningsPaused,
		ReferralsPaused:   s.ReferralsPaused,
	}
}

// ToApiSettings converts the platform settings.
func ToApiSettings(s models.Settings) api.Settings {
	return api.Settings(s)
}

// ToDomainSettings converts a settings update.
func ToDomainSettings(s *api.Settings) models.Settings {
	return models.Settings(*s)
}

// ToApiAuditEntries converts audit log entries.
func ToApiAuditEntries(entries []models.AuditLogEntry) []api.AuditEntry {
	out := make([]api.AuditEntry, len(entries))
	for i, e := range entries {
		out[i] = api.AuditEntry{
			Id:        e.ID,
			AdminId:   e.AdminID,
			Role:      string(e.Role),
			Action:    e.Action,
			TargetId:  e.TargetID,
			Details:   e.Details,
			Timestamp: e.Timestamp,
		}
	}
	return out
}

// ToApiAdmin converts an operator with their effective capabilities.
func ToApiAdmin(a *models.Admin) *api.Admin {
	caps := admin.Capabilities(a)
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = string(c)
	}
	return &api.Admin{
		Id:           a.ID,
		Name:         a.Name,
		Phone:        a.Phone,
		Role:         string(a.Role),
		Capabilities: names,
		Active:       a.Active,
		CreatedAt:    a.CreatedAt,
	}
}

// ToApiAdmins converts a list of operators.
func ToApiAdmins(admins []models.Admin) []*api.Admin {
	out := make([]*api.Admin, len(admins))
	for i := range admins {
		out[i] = ToApiAdmin(&admins[i])
	}
	return out
}

// ToDomainNewAdmin converts an operator creation request.
func ToDomainNewAdmin(in *api.NewAdmin) admin.NewAdmin {
	perms := make([]models.Capability, len(in.Permissions))
	for i, p := range in.Permissions {
		perms[i] = models.Capability(p)
	}
	return admin.NewAdmin{
		Name:        in.Name,
		Phone:       in.Phone,
		Role:        models.AdminRole(in.Role),
		Permissions: perms,
	}
}

// ToApiDashboard converts the admin overview.
func ToApiDashboard(d *admin.Dashboard) *api.Dashboard {
	return &api.Dashboard{
		TotalUsers:         d.TotalUsers,
		ActiveUsers:        d.ActiveUsers,
		PendingKyc:         d.PendingKyc,
		PendingWithdrawals: d.PendingWithdrawals,
		PendingPayout:      d.PendingPayout,
		TotalMain:          d.TotalMain,
		TotalPending:       d.TotalPending,
		TotalBonus:         d.TotalBonus,
		Emergency:          ToApiEmergencyState(d.Emergency),
	}
}
