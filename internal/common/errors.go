// Package common defines shared constants and error kinds used across the
// gophauth server and client. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level error kinds. Every failure returned by the account
	// services matches exactly one of them.
	ErrParams           = errors.New("params error")
	ErrNotLoggedIn      = errors.New("not logged in")
	ErrForbidden        = errors.New("forbidden")
	ErrOperation        = errors.New("operation error")
	ErrSystem           = errors.New("system error")
	ErrResourceNotFound = errors.New("resource not found")
)

// AccountError carries an error kind, a reason that is safe to show to the
// caller and, optionally, the underlying cause. The cause never leaks into
// Error().
type AccountError struct {
	Kind   error
	Reason string
	Err    error
}

func (e *AccountError) Error() string {
	if e.Reason == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Reason)
}

// Is reports whether target is the kind of e.
func (e *AccountError) Is(target error) bool {
	return target == e.Kind
}

func (e *AccountError) Unwrap() error {
	return e.Err
}

// NewParamsError reports malformed or rejected caller input.
func NewParamsError(reason string) error {
	return &AccountError{Kind: ErrParams, Reason: reason}
}

// NewNotLoggedInError reports a missing or stale session binding.
func NewNotLoggedInError() error {
	return &AccountError{Kind: ErrNotLoggedIn, Reason: "not logged in"}
}

// NewForbiddenError reports an authenticated caller that may not proceed.
func NewForbiddenError(reason string) error {
	return &AccountError{Kind: ErrForbidden, Reason: reason}
}

// NewOperationError reports a well-formed request that could not be applied.
func NewOperationError(reason string) error {
	return &AccountError{Kind: ErrOperation, Reason: reason}
}

// NewNotFoundError reports a missing resource addressed by id.
func NewNotFoundError(reason string) error {
	return &AccountError{Kind: ErrResourceNotFound, Reason: reason}
}

// NewSystemError reports a store or I/O failure. cause is kept for logging
// and errors.Is checks, reason is what the caller sees.
func NewSystemError(reason string, cause error) error {
	return &AccountError{Kind: ErrSystem, Reason: reason, Err: cause}
}

// Reason returns the caller-facing reason of err, or the generic kind message
// when err is not an AccountError.
func Reason(err error) string {
	var ae *AccountError
	if errors.As(err, &ae) {
		if ae.Reason != "" {
			return ae.Reason
		}
		return ae.Kind.Error()
	}
	return ErrSystem.Error()
}
