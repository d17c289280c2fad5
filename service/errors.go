package service

import (
	"errors"
	"fmt"
)

// Kind groups errors by how a caller should react to them.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindNotFound          Kind = "not_found"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindUnauthorized      Kind = "unauthorized"
	KindConflict          Kind = "conflict"
	KindStorageFailure    Kind = "storage_failure"
)

// Error is the structured failure returned by every service operation.
// Two Errors match under errors.Is when their codes are equal, so callers
// compare against the sentinels below even when a cause is attached.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// With returns a copy of e carrying cause.
func (e *Error) With(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrInvalidAmount        = newError(KindValidation, "invalid_amount", "amount must be a positive value with at most two decimal places")
	ErrInvalidDestination   = newError(KindValidation, "invalid_destination", "target account must be a 20-digit account number")
	ErrSameAccountTransfer  = newError(KindValidation, "same_account_transfer", "cannot transfer money to the same account")
	ErrBalanceLimitExceeded = newError(KindValidation, "balance_limit_exceeded", "resulting balance exceeds the supported maximum")
	ErrUsernameTaken        = newError(KindValidation, "username_taken", "username is already taken")

	ErrAccountNotFound            = newError(KindNotFound, "account_not_found", "account not found")
	ErrSourceAccountNotFound      = newError(KindNotFound, "source_account_not_found", "source account not found")
	ErrDestinationAccountNotFound = newError(KindNotFound, "destination_account_not_found", "destination account not found")

	ErrInsufficientFunds = newError(KindInsufficientFunds, "insufficient_funds", "insufficient funds")
	ErrPermissionDenied  = newError(KindUnauthorized, "permission_denied", "you can only operate on your own account")
	ErrConflict          = newError(KindConflict, "conflict", "the operation conflicted with a concurrent update")

	ErrStorageFailure         = newError(KindStorageFailure, "storage_failure", "storage failure")
	ErrAccountNumberExhausted = newError(KindStorageFailure, "account_number_exhausted", "could not generate a unique account number")
)

// KindOf returns the kind of the first *Error in err's chain. Errors that
// did not come from this package are storage failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorageFailure
}
