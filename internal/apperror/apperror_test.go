package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{"NotFound wraps ErrNotFound", NotFound("tag", "abc"), ErrNotFound, true},
		{"ValidationFailed wraps ErrValidation", ValidationFailed("name", "too short"), ErrValidation, true},
		{"Conflict wraps ErrConflict", Conflict("user", "a@b.com"), ErrConflict, true},
		{"DuplicateName wraps ErrDuplicateName", DuplicateName("name", "soccer"), ErrDuplicateName, true},
		{"AuthRequired wraps ErrAuthRequired", AuthRequired(), ErrAuthRequired, true},
		{"Deactivated wraps ErrDeactivated", Deactivated(), ErrDeactivated, true},
		{"NotOwner wraps ErrNotOwner", NotOwner("item"), ErrNotOwner, true},
		{"AdminOnly wraps ErrAdminOnly", AdminOnly(), ErrAdminOnly, true},
		{"InvalidTarget wraps ErrInvalidTarget", InvalidTarget("admin target"), ErrInvalidTarget, true},
		{"NotFound is not ErrValidation", NotFound("tag", "abc"), ErrValidation, false},
		{"DuplicateName is not plain ErrConflict", DuplicateName("name", "soccer"), ErrConflict, false},
		{"Deactivated is not ErrNotOwner", Deactivated(), ErrNotOwner, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorsIs_ThroughWrapping(t *testing.T) {
	// Services wrap repo errors with fmt.Errorf("%w", ...); the sentinel
	// must stay visible through the chain.
	err := fmt.Errorf("renaming tag: %w", DuplicateName("name", "soccer"))

	if !errors.Is(err, ErrDuplicateName) {
		t.Error("wrapped DuplicateName should match ErrDuplicateName")
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("wrapped error should expose *AppError via errors.As")
	}
	if appErr.Field != "name" {
		t.Errorf("Field = %q, want %q", appErr.Field, "name")
	}
}

func TestAppError_Message(t *testing.T) {
	err := NotFound("item", "abc123")

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("NotFound should be an *AppError")
	}
	if appErr.Message == "" {
		t.Error("AppError.Message should not be empty")
	}
	if err.Error() == "" {
		t.Error("Error() should not be empty")
	}
}
