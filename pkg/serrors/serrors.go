// Package serrors defines semantic error kinds shared by the services and the
// HTTP layer. A kind says what went wrong from the caller's point of view; the
// HTTP layer decides how each kind is rendered.
package serrors

import (
	"errors"
	"fmt"
)

// Kind is a semantic error category. Kinds are sentinels created with NewKind.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a new semantic error kind.
func NewKind(name string) Kind { return kind{s: name} }

var (
	// ErrBadRequest indicates the client sent data that could not be decoded or validated.
	ErrBadRequest = NewKind("BAD_REQUEST")
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = NewKind("UNAUTHORIZED")
	// ErrForbidden indicates the caller is authenticated but not allowed to act on the resource.
	ErrForbidden = NewKind("FORBIDDEN")
	// ErrNotFound indicates the requested entity or route does not exist.
	ErrNotFound = NewKind("NOT_FOUND")
	// ErrConflict indicates a state conflict such as a duplicate email or an order that
	// can no longer be cancelled.
	ErrConflict = NewKind("CONFLICT")
	// ErrRateLimited indicates the caller exceeded its request budget.
	ErrRateLimited = NewKind("RATE_LIMITED")
	// ErrInternal indicates a failure the caller cannot act upon.
	ErrInternal = NewKind("INTERNAL")
)

// Error carries a kind, an optional cause and an optional message.
//
// errors.Is and errors.As match either the kind or anything in the cause chain.
// Error() renders "<msg>: <cause>", "<msg>", "<cause>" or the kind name, in that
// order of preference.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With creates an error of kind k with a formatted message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap creates an error of kind k that wraps err and adds a formatted message.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly creates an error carrying only the kind.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}

	return e.err != nil && errors.Is(e.err, target)
}

func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}

	return e.err != nil && errors.As(e.err, target)
}

// Kind returns the kind of e.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message attached to e. It never includes the cause, so it
// is safe to show to clients.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped error, if any.
func (e *Error) Cause() error { return e.err }

// KindOf returns the kind of the outermost *Error in err's chain, or nil when err
// carries no kind.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}

	return nil
}

// PublicMessage returns a client-safe description of err: the message of the
// outermost *Error when it has one, otherwise the kind name.
func PublicMessage(err error) string {
	var se *Error
	if errors.As(err, &se) && se.msg != "" {
		return se.msg
	}
	if k := KindOf(err); k != nil {
		return k.Error()
	}

	return ""
}
