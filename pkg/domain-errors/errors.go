// Package domainerrors provides coded errors shared across the engine.
//
// Errors are values the caller branches on, not exceptions: every pipeline
// surface returns a coded error and the caller decides remediation (retry,
// resolve a duplicate, re-edit the draft). Codes are stable identifiers;
// messages are for humans.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for caller-side branching.
type Code string

const (
	// CodeValidation marks a draft rejected before any store call.
	CodeValidation Code = "validation"
	// CodeDuplicate marks a member-id collision that requires an explicit
	// caller decision (create anyway, merge, or abandon).
	CodeDuplicate Code = "duplicate_detected"
	// CodeNotFound marks a lookup that resolved to nothing.
	CodeNotFound Code = "not_found"
	// CodeNotADependent marks a relieve attempt on a member without a spocId.
	CodeNotADependent Code = "not_a_dependent"
	// CodeSpocNotFound marks a dependent whose family head cannot be located.
	CodeSpocNotFound Code = "spoc_not_found"
	// CodeLinkResolution marks a covered-member entry that could not be
	// matched safely (e.g. ambiguous name+dob candidates).
	CodeLinkResolution Code = "link_resolution"
	// CodePersistence wraps a store-call failure.
	CodePersistence Code = "persistence"
	// CodeConflict marks a uniqueness or state conflict at the store boundary.
	CodeConflict Code = "conflict"
	// CodeBadRequest marks a malformed request at a transport boundary.
	CodeBadRequest Code = "bad_request"
	// CodeInternal marks an unexpected failure.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. It may wrap an underlying cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err
// returns nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	for errors.As(err, &domainErr) {
		if domainErr.Code == code {
			return true
		}
		err = domainErr.cause
		domainErr = nil
	}
	return false
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries no code.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}
