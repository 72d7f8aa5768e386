// internal/services/errors.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type ErrorKind string

const (
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindInvalidInput       ErrorKind = "INVALID_INPUT"
	KindPreconditionFailed ErrorKind = "PRECONDITION_FAILED"
	KindUnauthorized       ErrorKind = "UNAUTHORIZED"
)

// Sentinels for errors.Is matching on kind.
var (
	ErrNotFound           = &LedgerError{Kind: KindNotFound}
	ErrInvalidInput       = &LedgerError{Kind: KindInvalidInput}
	ErrPreconditionFailed = &LedgerError{Kind: KindPreconditionFailed}
	ErrUnauthorized       = &LedgerError{Kind: KindUnauthorized}
)

// Codes
const (
	CodeAssetNotFound        = "ASSET_NOT_FOUND"
	CodeLicenseNotFound      = "LICENSE_NOT_FOUND"
	CodeDisputeNotFound      = "DISPUTE_NOT_FOUND"
	CodeArbitrationNotFound  = "ARBITRATION_NOT_FOUND"
	CodeNotRegistered        = "NOT_REGISTERED"
	CodePaymentNotFound      = "PAYMENT_NOT_FOUND"
	CodeInvalidAmount        = "INVALID_AMOUNT"
	CodeInvalidAddress       = "INVALID_ADDRESS"
	CodeInvalidArgument      = "INVALID_ARGUMENT"
	CodeRoyaltyShareExceeded = "ROYALTY_SHARE_EXCEEDED"
	CodeBelowMinimumStake    = "BELOW_MINIMUM_STAKE"
	CodeNothingToClaim       = "NOTHING_TO_CLAIM"
	CodeAlreadyAssigned      = "ALREADY_ASSIGNED"
	CodeArbitratorNotActive  = "ARBITRATOR_NOT_ACTIVE"
	CodeNotAssigned          = "NOT_ASSIGNED"
	CodeAlreadyVoted         = "ALREADY_VOTED"
	CodeDeadlinePassed       = "DEADLINE_PASSED"
	CodeDeadlineNotReached   = "DEADLINE_NOT_REACHED"
	CodeQuorumNotReached     = "QUORUM_NOT_REACHED"
	CodeCooldownNotElapsed   = "COOLDOWN_NOT_ELAPSED"
	CodeAlreadyResolved      = "ALREADY_RESOLVED"
	CodeArbitratorsAssigned  = "ARBITRATORS_ASSIGNED"
	CodeActiveDisputes       = "ACTIVE_DISPUTES"
	CodeAlreadyRegistered    = "ALREADY_REGISTERED"
	CodeLicenseInactive      = "LICENSE_INACTIVE"
	CodePaymentNotSucceeded  = "PAYMENT_NOT_SUCCEEDED"
	CodePaymentsDisabled     = "PAYMENTS_DISABLED"
	CodeMetadataNotFound     = "METADATA_NOT_FOUND"
	CodeMetadataUnavailable  = "METADATA_UNAVAILABLE"
	CodeInvalidMetadata      = "INVALID_METADATA"
	CodeNotOwner             = "NOT_OWNER"
	CodeNotOperator          = "NOT_OPERATOR"
	CodeNotDisputer          = "NOT_DISPUTER"
)

// LedgerError is a domain failure reported to the caller. Details carry the
// context needed to act on it, such as blocking dispute ids.
type LedgerError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details map[string]interface{}
}

func (e *LedgerError) Error() string {
	if e.Code == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on kind so errors.Is(err, ErrNotFound) works for any code.
func (e *LedgerError) Is(target error) bool {
	t, ok := target.(*LedgerError)
	if !ok {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	return t.Kind == e.Kind
}

func (e *LedgerError) With(key string, value interface{}) *LedgerError {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

func newLedgerError(kind ErrorKind, code, format string, args ...interface{}) *LedgerError {
	return &LedgerError{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func notFound(code, format string, args ...interface{}) *LedgerError {
	return newLedgerError(KindNotFound, code, format, args...)
}

func invalidInput(code, format string, args ...interface{}) *LedgerError {
	return newLedgerError(KindInvalidInput, code, format, args...)
}

func preconditionFailed(code, format string, args ...interface{}) *LedgerError {
	return newLedgerError(KindPreconditionFailed, code, format, args...)
}

func unauthorized(code, format string, args ...interface{}) *LedgerError {
	return newLedgerError(KindUnauthorized, code, format, args...)
}

// CodeOf returns the ledger error code carried by err, or "".
func CodeOf(err error) string {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

// lookupErr converts gorm's record-not-found into a NotFound ledger error.
func lookupErr(err error, nf *LedgerError, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nf
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
