// Package apperror defines the typed errors shared by the service and
// repository layers. Handlers translate these to HTTP status codes in one
// place (internal/handler/response.go); nothing below the handler layer
// knows about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors. Services and repositories wrap these with context via
// AppError or fmt.Errorf("...: %w", ...); callers check with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation error")
	ErrConflict      = errors.New("conflict")
	ErrDuplicateName = errors.New("duplicate name")
	ErrAuthRequired  = errors.New("authentication required")
	ErrDeactivated   = errors.New("account deactivated")
	ErrNotOwner      = errors.New("not owner")
	ErrAdminOnly     = errors.New("admin only")
	ErrInvalidTarget = errors.New("invalid target")
)

// AppError carries a sentinel error plus a human-readable message and,
// for validation-style failures, the form field the message belongs to.
type AppError struct {
	Err     error  // sentinel error, matched with errors.Is
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound covers both "no such entity" and "more than one match"; a name
// lookup that does not resolve to exactly one row is reported the same way,
// so callers cannot probe for corrupted duplicates.
func NotFound(resource, key string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, key),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a store-level uniqueness violation that is not a tag or
// item name collision (e.g. the users.email constraint during a concurrent
// first login). Callers that can recover re-read instead of failing.
func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, key),
	}
}

// DuplicateName is returned when a tag create or rename collides with an
// existing tag name. It is the only error recovered into form feedback
// rather than terminating the request.
func DuplicateName(field, name string) *AppError {
	return &AppError{
		Err:     ErrDuplicateName,
		Message: fmt.Sprintf("a tag already exists with the name %q", name),
		Field:   field,
	}
}

func AuthRequired() *AppError {
	return &AppError{
		Err:     ErrAuthRequired,
		Message: "you must be signed in to do that",
	}
}

func Deactivated() *AppError {
	return &AppError{
		Err:     ErrDeactivated,
		Message: "your account has been deactivated",
	}
}

func NotOwner(resource string) *AppError {
	return &AppError{
		Err:     ErrNotOwner,
		Message: fmt.Sprintf("only the owner of this %s may modify it", resource),
	}
}

func AdminOnly() *AppError {
	return &AppError{
		Err:     ErrAdminOnly,
		Message: "administrator access required",
	}
}

// InvalidTarget rejects an operation whose target is categorically wrong,
// not merely unauthorized, e.g. toggling activation on an admin account.
func InvalidTarget(message string) *AppError {
	return &AppError{
		Err:     ErrInvalidTarget,
		Message: message,
	}
}
