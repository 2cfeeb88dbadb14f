// Package apperr defines the error kinds the core distinguishes between.
// Row-level kinds (validation, reference) are collected during ingestion and
// never abort a batch; request-level kinds (config, not_found, transaction)
// surface immediately.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation  Kind = "validation"  // single row, non-fatal
	KindReference   Kind = "reference"   // unresolved FK code, single row, non-fatal
	KindConfig      Kind = "config"      // whole request, fatal
	KindNotFound    Kind = "not_found"   // whole request, fatal
	KindTransaction Kind = "transaction" // systemic DB failure, whole batch, fatal
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind carried by err, or "" for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
