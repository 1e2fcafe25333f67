package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewFormatsCodeAndMessage(t *testing.T) {
	err := New(ErrCodeWidgetNotFound, "widget %q not found", "w1")

	if err.Code != ErrCodeWidgetNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeWidgetNotFound)
	}
	if want := `WIDGET_NOT_FOUND: widget "w1" not found`; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeStorage, cause, "write layout")

	if want := "STORAGE: write layout: connection refused"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable through errors.Is")
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap() did not return the cause")
	}
}

func TestCodeHelpers(t *testing.T) {
	wrapped := fmt.Errorf("move: %w", New(ErrCodeInvalidPosition, "col -1"))

	tests := []struct {
		name    string
		err     error
		code    Code
		message string
	}{
		{"coded", New(ErrCodeHistoryEmpty, "nothing to undo"), ErrCodeHistoryEmpty, "nothing to undo"},
		{"fmt wrapped", wrapped, ErrCodeInvalidPosition, "col -1"},
		{"outer code wins", Wrap(ErrCodeMigration, New(ErrCodeInvalidPosition, "inner"), "outer"), ErrCodeMigration, "outer"},
		{"plain", errors.New("disk full"), "", "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeInternal) {
				t.Error("Is(INTERNAL_ERROR) = true")
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
		})
	}

	if Is(nil, ErrCodeInvalidInput) || GetCode(nil) != "" {
		t.Error("nil error should carry no code")
	}
}

func TestCategories(t *testing.T) {
	tests := []struct {
		code     Code
		notFound bool
		invalid  bool
	}{
		{ErrCodeWidgetNotFound, true, false},
		{ErrCodeTypeNotFound, true, false},
		{ErrCodeUnsupportedSize, false, true},
		{ErrCodeInvalidKey, false, true},
		{ErrCodeStorage, false, false},
		{ErrCodePlacement, false, false},
	}

	for _, tt := range tests {
		err := New(tt.code, "x")
		if got := IsNotFound(err); got != tt.notFound {
			t.Errorf("IsNotFound(%s) = %v, want %v", tt.code, got, tt.notFound)
		}
		if got := IsInvalid(err); got != tt.invalid {
			t.Errorf("IsInvalid(%s) = %v, want %v", tt.code, got, tt.invalid)
		}
	}
	if IsInvalid(errors.New("plain")) {
		t.Error("IsInvalid(plain) = true")
	}
}
