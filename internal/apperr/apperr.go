// Package apperr defines the application's error taxonomy. Callers dispatch
// on the Kind discriminant rather than on message text.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	// KindStorage covers relational and keyed-store I/O failures.
	KindStorage Kind = iota
	// KindConflict marks duplicate slugs and lost tag-name races.
	KindConflict
	// KindNotFound marks missing topics, sessions and gated units.
	KindNotFound
	// KindAuth marks missing, expired or invalid sessions and bad credentials.
	KindAuth
	// KindVerification marks a failed human-verification check.
	KindVerification
)

func (k Kind) String() string {
	switch k {
	case KindStorage:
		return "storage"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindVerification:
		return "verification"
	}
	return "unknown"
}

// Error is the application error type. Message is optional human-readable
// text; Err is the optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Conflict returns a conflict error with a human-readable message.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// NotFound returns a not-found error with a human-readable message.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Auth returns an authentication/authorization error.
func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

// Verification returns a human-verification failure.
func Verification(msg string) *Error {
	return &Error{Kind: KindVerification, Message: msg}
}

// Storage wraps a store-level failure.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Err: err}
}

// Storagef wraps a store-level failure with contextual text.
func Storagef(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindStorage, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the Kind of err, or (0, false) if err is not an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
