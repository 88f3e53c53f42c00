// Package apperr defines the error kinds every core operation reports.
//
// Callers branch on Kind rather than on message text: a Not-Found account and
// a Conflict on account deletion need different handling even though both come
// from the same operation.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a classified failure. Field is set for validation errors that
// concern one input.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Field)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a missing or out-of-scope ledger, account or transaction.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation reports bad input on a single field.
func Validation(field, format string, args ...any) error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports an operation refused because of existing state.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps a store or unit-of-work failure.
func Internal(err error, format string, args ...any) error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain. Unclassified
// errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is a Not-Found failure.
func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }

// IsValidation reports whether err is a Validation failure.
func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }

// IsConflict reports whether err is a Conflict failure.
func IsConflict(err error) bool { return err != nil && KindOf(err) == KindConflict }
