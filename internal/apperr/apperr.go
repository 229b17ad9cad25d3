// Package apperr defines the error taxonomy shared by the tournament services.
//
// Every error returned across a package boundary is either one of the kinds
// below or a plain error that callers treat as a collaborator failure.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindStateConflict Kind = "state_conflict"
	KindNotFound      Kind = "not_found"
	KindCollaborator  Kind = "collaborator"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable is true only for collaborator failures.
func (e *Error) Retryable() bool {
	return e.Kind == KindCollaborator
}

func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func Validationf(code, format string, args ...any) *Error {
	return Validation(code, fmt.Sprintf(format, args...))
}

func StateConflict(code, message string) *Error {
	return &Error{Kind: KindStateConflict, Code: code, Message: message}
}

func NotFound(entity, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    entity + "_not_found",
		Message: fmt.Sprintf("%s %q not found", entity, id),
	}
}

func Collaborator(op string, err error) *Error {
	return &Error{Kind: KindCollaborator, Code: "collaborator_failure", Message: op, Err: err}
}

// KindOf returns the kind of err, or KindCollaborator for errors outside the taxonomy.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindCollaborator
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
