// Package apperr defines the error kinds resolved at the workflow boundary.
// Remote failure kinds (rejection, revert, network) live in internal/chain;
// these are the purely local ones.
package apperr

import (
	"errors"
	"fmt"
)

// Kind distinguishes local failure classes.
type Kind string

const (
	// KindValidation means a local precondition failed and no remote call
	// was made.
	KindValidation Kind = "validation"
	// KindPending means the same operation is already in flight and the
	// duplicate invocation was rejected.
	KindPending Kind = "operation-pending"
)

// Error is a local workflow error.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Validation builds a validation error.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Pending builds a duplicate-operation error.
func Pending(format string, args ...interface{}) *Error {
	return &Error{Kind: KindPending, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return isKind(err, KindValidation)
}

// IsPending reports whether err is a duplicate-operation error.
func IsPending(err error) bool {
	return isKind(err, KindPending)
}

func isKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
