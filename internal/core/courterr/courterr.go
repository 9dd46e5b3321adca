// Package courterr defines the error taxonomy shared by every layer.
// Services classify failures by Kind so that inbound adapters (CLI, HTTP
// interactions) can decide how to present them without string matching.
package courterr

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind string

const (
	KindUnknown     Kind = "unknown"
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindPermission  Kind = "permission"
	KindConflict    Kind = "conflict"
	KindExternal    Kind = "external"
	KindPersistence Kind = "persistence"
)

// Error is a classified error. Op names the operation that failed
// ("case.claim", "evidence.remove") and Msg is safe to show to users.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, courterr.ErrConflict)
// works for any conflict.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrPermission  = &Error{Kind: KindPermission}
	ErrConflict    = &Error{Kind: KindConflict}
	ErrExternal    = &Error{Kind: KindExternal}
	ErrPersistence = &Error{Kind: KindPersistence}
)

// KindOf returns the kind of the outermost classified error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the user-facing message of the outermost classified error,
// falling back to err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Validation reports malformed input.
func Validation(op, format string, args ...any) *Error {
	return newf(KindValidation, op, format, args...)
}

// NotFound reports an absent case, evidence item, category or judge.
func NotFound(op, format string, args ...any) *Error {
	return newf(KindNotFound, op, format, args...)
}

// Permission reports a failed capability check.
func Permission(op, format string, args ...any) *Error {
	return newf(KindPermission, op, format, args...)
}

// Conflict reports a uniqueness violation or a lost state race.
func Conflict(op, format string, args ...any) *Error {
	return newf(KindConflict, op, format, args...)
}

// External wraps a chat platform failure.
func External(op string, err error, format string, args ...any) *Error {
	e := newf(KindExternal, op, format, args...)
	e.Err = err
	return e
}

// Persistence wraps a store failure.
func Persistence(op string, err error, format string, args ...any) *Error {
	e := newf(KindPersistence, op, format, args...)
	e.Err = err
	return e
}
