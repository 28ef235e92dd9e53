// Package ruleerr defines the business-rule rejections returned by the rules
// engine and admin operations. They are recoverable, user-facing conditions
// and are kept distinct from storage faults, which are plain wrapped errors.
package ruleerr

import (
	"errors"
	"fmt"
)

// Kind classifies a rejection.
type Kind string

const (
	EmergencyPaused     Kind = "EMERGENCY_PAUSED"
	LimitReached        Kind = "LIMIT_REACHED"
	AccountNotActive    Kind = "ACCOUNT_NOT_ACTIVE"
	KycRequired         Kind = "KYC_REQUIRED"
	BelowMinimum        Kind = "BELOW_MINIMUM"
	InsufficientBalance Kind = "INSUFFICIENT_BALANCE"
	RequirementNotMet   Kind = "REQUIREMENT_NOT_MET"
	NoBalance           Kind = "NO_BALANCE"
	NotFound            Kind = "NOT_FOUND"
	InvalidArgument     Kind = "INVALID_ARGUMENT"
	InvalidState        Kind = "INVALID_STATE"
	Forbidden           Kind = "FORBIDDEN"
	HoldNotDue          Kind = "HOLD_NOT_DUE"
)

// Error is a structured rejection.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// New returns a rejection of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of a rejection. ok is false for any other error,
// which callers must treat as a system fault.
func KindOf(err error) (kind Kind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Sentinels for errors.Is comparisons.
var (
	ErrEmergencyPaused     = &Error{Kind: EmergencyPaused}
	ErrLimitReached        = &Error{Kind: LimitReached}
	ErrAccountNotActive    = &Error{Kind: AccountNotActive}
	ErrKycRequired         = &Error{Kind: KycRequired}
	ErrBelowMinimum        = &Error{Kind: BelowMinimum}
	ErrInsufficientBalance = &Error{Kind: InsufficientBalance}
	ErrRequirementNotMet   = &Error{Kind: RequirementNotMet}
	ErrNoBalance           = &Error{Kind: NoBalance}
	ErrNotFound            = &Error{Kind: NotFound}
	ErrInvalidArgument     = &Error{Kind: InvalidArgument}
	ErrInvalidState        = &Error{Kind: InvalidState}
	ErrForbidden           = &Error{Kind: Forbidden}
	ErrHoldNotDue          = &Error{Kind: HoldNotDue}
)
