package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdminRole is the job function of a back-office operator.
type AdminRole string

const (
	SUPER_ADMIN   AdminRole = "SUPER_ADMIN"
	FINANCE_ADMIN AdminRole = "FINANCE_ADMIN"
	KYC_ADMIN     AdminRole = "KYC_ADMIN"
	SUPPORT_ADMIN AdminRole = "SUPPORT_ADMIN"
	FRAUD_ANALYST AdminRole = "FRAUD_ANALYST"
	CONTENT_ADMIN AdminRole = "CONTENT_ADMIN"
	AUDITOR       AdminRole = "AUDITOR"
)

// Capability is a single admin permission.
type Capability string

const (
	MANAGE_ADMINS       Capability = "MANAGE_ADMINS"
	VIEW_DASHBOARD      Capability = "VIEW_DASHBOARD"
	VIEW_USERS          Capability = "VIEW_USERS"
	EDIT_USERS          Capability = "EDIT_USERS"
	VIEW_FINANCE        Capability = "VIEW_FINANCE"
	APPROVE_WITHDRAWALS Capability = "APPROVE_WITHDRAWALS"
	VIEW_KYC            Capability = "VIEW_KYC"
	APPROVE_KYC         Capability = "APPROVE_KYC"
	VIEW_AUDIT          Capability = "VIEW_AUDIT"
	MANAGE_SETTINGS     Capability = "MANAGE_SETTINGS"
	EMERGENCY_CONTROL   Capability = "EMERGENCY_CONTROL"
)

// Admin is an operator allowed to act on the ledger.
// Permissions, when non-empty, replace the role's default capability set.
type Admin struct {
	ID          string       `json:"id" dynamodbav:"id"`
	Name        string       `json:"name" dynamodbav:"name"`
	Phone       string       `json:"phone" dynamodbav:"phone"`
	Role        AdminRole    `json:"role" dynamodbav:"role"`
	Permissions []Capability `json:"permissions,omitempty" dynamodbav:"permissions,omitempty"`
	Active      bool         `json:"active" dynamodbav:"active"`
	CreatedAt   time.Time    `json:"created_at" dynamodbav:"created_at"`
}

// AuditLogEntry records one administrative action.
type AuditLogEntry struct {
	ID        string    `json:"id" dynamodbav:"id"`
	AdminID   string    `json:"admin_id" dynamodbav:"admin_id"`
	Role      AdminRole `json:"role" dynamodbav:"role"`
	Action    string    `json:"action" dynamodbav:"action"`
	TargetID  string    `json:"target_id,omitempty" dynamodbav:"target_id,omitempty"`
	Details   string    `json:"details" dynamodbav:"details"`
	Timestamp time.Time `json:"timestamp" dynamodbav:"timestamp"`
}

// EmergencyState holds the platform-wide kill switches.
type EmergencyState struct {
	WithdrawalsPaused bool `json:"withdrawals_paused" dynamodbav:"withdrawals_paused"`
	EarningsPaused    bool `json:"earnings_paused" dynamodbav:"earnings_paused"`
	ReferralsPaused   bool `json:"referrals_paused" dynamodbav:"referrals_paused"`
}

// EmergencyFlag names one of the kill switches.
type EmergencyFlag string

const (
	WithdrawalsPaused EmergencyFlag = "withdrawals_paused"
	EarningsPaused    EmergencyFlag = "earnings_paused"
	ReferralsPaused   EmergencyFlag = "referrals_paused"
)

// Valid reports whether f names a known switch.
func (f EmergencyFlag) Valid() bool {
	switch f {
	case WithdrawalsPaused, EarningsPaused, ReferralsPaused:
		return true
	}
	return false
}

// Enabled reports whether flag is on.
func (e EmergencyState) Enabled(flag EmergencyFlag) bool {
	switch flag {
	case WithdrawalsPaused:
		return e.WithdrawalsPaused
	case EarningsPaused:
		return e.EarningsPaused
	case ReferralsPaused:
		return e.ReferralsPaused
	}
	return false
}

// With returns a copy of the state with flag set to value.
func (e EmergencyState) With(flag EmergencyFlag, value bool) EmergencyState {
	switch flag {
	case WithdrawalsPaused:
		e.WithdrawalsPaused = value
	case EarningsPaused:
		e.EarningsPaused = value
	case ReferralsPaused:
		e.ReferralsPaused = value
	}
	return e
}

// Settings is the mutable platform configuration.
// Fee values are percentages (10 means 10%).
type Settings struct {
	PlatformFeePercent    decimal.Decimal `json:"platform_fee_percent"`
	TransactionFeePercent decimal.Decimal `json:"transaction_fee_percent"`
	MinWithdrawalTrial    decimal.Decimal `json:"min_withdrawal_trial"`
	MinWithdrawalPaid     decimal.Decimal `json:"min_withdrawal_paid"`
	ReferralsEnabled      bool            `json:"referrals_enabled"`
	MaintenanceMode       bool            `json:"maintenance_mode"`
}

// DefaultSettings returns the configuration a fresh platform starts with.
func DefaultSettings() Settings {
	return Settings{
		PlatformFeePercent:    decimal.NewFromInt(10),
		TransactionFeePercent: decimal.NewFromInt(5),
		MinWithdrawalTrial:    decimal.NewFromInt(10),
		MinWithdrawalPaid:     decimal.NewFromInt(50),
		ReferralsEnabled:      true,
	}
}
