// Package apperror defines the error kinds the service layer surfaces to
// callers. The HTTP layer inspects the kind to pick a status code; nothing
// else about an error is needed to decide how to respond.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation: the payload failed required-field or format checks.
	KindValidation
	// KindNotFound: no record matches the requested identifier.
	KindNotFound
	// KindInvalidArgument: the identifier itself is malformed.
	KindInvalidArgument
	// KindInternal: the store failed for a reason unrelated to existence.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// FieldViolation is one failed rule on one payload field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified error. Msg is what callers see; Err, when set, is
// the underlying cause.
type Error struct {
	Kind   Kind
	Msg    string
	Err    error
	Fields []FieldViolation
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a KindValidation error. Its message is the field
// messages joined with ", ".
func Validation(fields ...FieldViolation) *Error {
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f.Message)
	}
	return &Error{Kind: KindValidation, Msg: strings.Join(msgs, ", "), Fields: fields}
}

// BadPayload builds a KindValidation error for a body that could not be
// decoded at all.
func BadPayload(err error) *Error {
	return &Error{Kind: KindValidation, Msg: err.Error(), Err: err}
}

// PersonNotFound builds the KindNotFound error for id. The message format is
// relied upon by clients.
func PersonNotFound(id string) *Error {
	return &Error{Kind: KindNotFound, Msg: notFoundMessage(id)}
}

// InvalidID builds the KindInvalidArgument error for a malformed id.
func InvalidID(id string, err error) *Error {
	return &Error{Kind: KindInvalidArgument, Msg: notFoundMessage(id), Err: err}
}

// Internal wraps a store fault. The fault's own message is kept.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Msg: err.Error(), Err: err}
}

// KindOf reports the kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// FieldsOf returns the field violations carried by err, if any.
func FieldsOf(err error) []FieldViolation {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

func notFoundMessage(id string) string {
	return fmt.Sprintf("Person with ID '%s' not found", id)
}
