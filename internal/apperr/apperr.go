// Package apperr carries the outcome kinds that services report upward.
// Transports map a Kind to their own status codes.
package apperr

import "errors"

type Kind int

const (
	KindStore Kind = iota // unexpected persistence fault
	KindAuth
	KindValidation
	KindOwnership
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "AUTH_FAILURE"
	case KindValidation:
		return "VALIDATION_FAILURE"
	case KindOwnership:
		return "OWNERSHIP_FAILURE"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	}
	return "STORE_FAULT"
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(k Kind, msg string) *Error { return &Error{Kind: k, Msg: msg} }

func Wrap(k Kind, msg string, err error) *Error { return &Error{Kind: k, Msg: msg, Err: err} }

func Auth(msg string) *Error       { return New(KindAuth, msg) }
func Validation(msg string) *Error { return New(KindValidation, msg) }
func Forbidden(msg string) *Error  { return New(KindOwnership, msg) }
func NotFound(msg string) *Error   { return New(KindNotFound, msg) }
func Conflict(msg string) *Error   { return New(KindConflict, msg) }

// Internal hides err behind a generic message; err is kept for logging only.
func Internal(err error) *Error { return Wrap(KindStore, "internal error", err) }

// KindOf reports the kind of the first *Error in err's chain. Errors that
// are not *Error count as store faults.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// Message is the caller-safe text of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}
