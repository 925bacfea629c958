package apperror

import (
	"errors"
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
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("code", "code cannot be empty"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Busy wraps ErrBusy",
			err:       Busy(16),
			target:    ErrBusy,
			wantMatch: true,
		},
		{
			name:      "Busy does NOT match ErrValidation",
			err:       Busy(16),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "ValidationFailed does NOT match ErrBusy",
			err:       ValidationFailed("timeout_ms", "too large"),
			target:    ErrBusy,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("code", "code cannot be empty"),
			wantMessage: "code cannot be empty",
		},
		{
			name:        "Busy message includes capacity",
			err:         Busy(16),
			wantMessage: "execution queue is full (capacity 16), retry later",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := Busy(8)
	if unwrapped := err.Unwrap(); unwrapped != ErrBusy {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrBusy)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("timeout_ms", "timeout_ms exceeds the maximum")
	if err.Field != "timeout_ms" {
		t.Errorf("Field = %q, want %q", err.Field, "timeout_ms")
	}
}
