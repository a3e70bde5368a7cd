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
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("meal", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("name", "name is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("username", "username already taken"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("password is incorrect"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Unauthenticated wraps ErrUnauthenticated",
			err:       Unauthenticated("session required"),
			target:    ErrUnauthenticated,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("meal", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Unauthenticated does NOT match ErrUnauthorized",
			err:       Unauthenticated("session required"),
			target:    ErrUnauthorized,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

// Services wrap repository errors with fmt.Errorf("...: %w", err); the
// sentinel must survive the extra wrapping for writeError to map it.
func TestErrorsIs_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("fetching meal: %w", NotFound("meal", "xyz"))
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("ErrNotFound not detected through fmt.Errorf wrapping")
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As failed to extract *AppError from wrapped error")
	}
	if appErr.Message == "" {
		t.Error("extracted AppError has empty message")
	}
}

func TestValidationFailed_CarriesField(t *testing.T) {
	err := ValidationFailed("username", "must be at least 3 characters")
	if err.Field != "username" {
		t.Errorf("Field = %q, want %q", err.Field, "username")
	}
	if err.Error() != "must be at least 3 characters" {
		t.Errorf("Error() = %q, want the message", err.Error())
	}
}
