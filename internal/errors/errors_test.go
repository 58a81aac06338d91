package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// -----------------------------------------------------------------------------
// Severity Tests
// -----------------------------------------------------------------------------

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// LaunchError Tests
// -----------------------------------------------------------------------------

func TestNewLaunchError(t *testing.T) {
	err := NewLaunchError("not on PATH", ErrExecutableNotFound)

	if err.message != "not on PATH" {
		t.Errorf("message = %q, want %q", err.message, "not on PATH")
	}
	if err.Severity() != SeverityError {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityError)
	}
	if !err.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
	if !err.IsUserFacing() {
		t.Error("IsUserFacing() = false, want true")
	}
}

func TestLaunchError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *LaunchError
		want string
	}{
		{
			name: "basic error",
			err:  NewLaunchError("boom", nil),
			want: "launch error: boom",
		},
		{
			name: "with cause",
			err:  NewLaunchError("boom", ErrLaunchFailed),
			want: "launch error: boom: failed to launch external process",
		},
		{
			name: "with executable and dir",
			err:  NewLaunchError("boom", nil).WithExecutable("code").WithDir("/opt/code"),
			want: "launch error [exe=code, dir=/opt/code]: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLaunchError_Is(t *testing.T) {
	err := NewLaunchError("test", ErrExecutableNotFound).WithExecutable("code")

	if !Is(err, &LaunchError{}) {
		t.Error("Is(LaunchError{}) = false, want true")
	}
	if !Is(err, ErrExecutableNotFound) {
		t.Error("Is(ErrExecutableNotFound) = false, want true")
	}
	if Is(err, ErrLaunchFailed) {
		t.Error("Is(ErrLaunchFailed) = true, want false")
	}
}

// -----------------------------------------------------------------------------
// WindowError Tests
// -----------------------------------------------------------------------------

func TestWindowError_WithMethods(t *testing.T) {
	err := NewWindowError("test", nil).
		WithWindow(0x10).
		WithContainer(0x20).
		WithPhase("reparent").
		WithSeverity(SeverityCritical).
		WithRetryable(false)

	if err.Window != 0x10 {
		t.Errorf("Window = %#x, want 0x10", err.Window)
	}
	if err.Container != 0x20 {
		t.Errorf("Container = %#x, want 0x20", err.Container)
	}
	if err.Phase != "reparent" {
		t.Errorf("Phase = %q, want %q", err.Phase, "reparent")
	}
	if err.Severity() != SeverityCritical {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityCritical)
	}
	if err.IsRetryable() {
		t.Error("IsRetryable() = true, want false")
	}
}

func TestWindowError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *WindowError
		want string
	}{
		{
			name: "basic error",
			err:  NewWindowError("gone", nil),
			want: "window error: gone",
		},
		{
			name: "full context",
			err:  NewWindowError("gone", ErrEmbedFailed).WithWindow(0x1a).WithContainer(0x2b).WithPhase("show"),
			want: "window error [window=0x1a, container=0x2b, phase=show]: gone: failed to embed external window",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWindowError_Is(t *testing.T) {
	err := NewWindowError("test", ErrStaleHandle)

	if !Is(err, &WindowError{}) {
		t.Error("Is(WindowError{}) = false, want true")
	}
	if !Is(err, ErrStaleHandle) {
		t.Error("Is(ErrStaleHandle) = false, want true")
	}
	if Is(err, &LaunchError{}) {
		t.Error("Is(LaunchError{}) = true, want false")
	}
}

// -----------------------------------------------------------------------------
// Semantic Error Tests
// -----------------------------------------------------------------------------

func TestValidationError_Error(t *testing.T) {
	err := NewValidationError("must be non-zero").WithField("container").WithValue(0)
	want := "validation error [field=container, value=0]: must be non-zero"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, ErrInvalidInput) {
		t.Error("Is(ErrInvalidInput) = false, want true")
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("waiting for external window", 10*time.Second).WithCause(ErrWindowNotFound)

	want := "timeout error: waiting for external window (timeout: 10s): external window not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, ErrTimeout) {
		t.Error("Is(ErrTimeout) = false, want true")
	}
	if !Is(err, ErrWindowNotFound) {
		t.Error("Is(ErrWindowNotFound) = false, want true")
	}
	if !err.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", New("x"), false},
		{"launch error", NewLaunchError("x", ErrLaunchFailed), true},
		{"window error not retryable", NewWindowError("x", nil).WithRetryable(false), false},
		{"wrapped timeout", fmt.Errorf("outer: %w", ErrTimeout), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"stale sentinel", ErrStaleHandle, true},
		{"wrapped stale", NewWindowError("x", ErrStaleHandle), true},
		{"canceled", Wrap(ErrCanceled, "embed"), true},
		{"embed failed", NewWindowError("x", ErrEmbedFailed), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRecoverable(tt.err); got != tt.want {
				t.Errorf("IsRecoverable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true, want false")
	}
	if IsUserFacing(New("internal")) {
		t.Error("IsUserFacing(plain) = true, want false")
	}
	if !IsUserFacing(NewLaunchError("x", nil)) {
		t.Error("IsUserFacing(LaunchError) = false, want true")
	}
	if !IsUserFacing(fmt.Errorf("wrapped: %w", NewValidationError("x"))) {
		t.Error("IsUserFacing(wrapped ValidationError) = false, want true")
	}
}

func TestGetSeverity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Severity
	}{
		{"nil", nil, SeverityDebug},
		{"plain", New("x"), SeverityError},
		{"stale sentinel", ErrStaleHandle, SeverityDebug},
		{"validation", NewValidationError("x"), SeverityWarning},
		{"window critical", NewWindowError("x", nil).WithSeverity(SeverityCritical), SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetSeverity(tt.err); got != tt.want {
				t.Errorf("GetSeverity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{NewLaunchError("x", ErrExecutableNotFound), "ExecutableNotFound"},
		{NewLaunchError("x", ErrLaunchFailed), "LaunchFailed"},
		{NewTimeoutError("x", time.Second).WithCause(ErrWindowNotFound), "WindowNotFound"},
		{NewWindowError("x", ErrEmbedFailed), "EmbedFailed"},
		{NewWindowError("x", ErrStaleHandle), "StaleHandle"},
		{Wrap(ErrCanceled, "x"), "Canceled"},
		{New("mystery"), "Internal"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "msg") != nil {
		t.Error("Wrap(nil) should return nil")
	}

	err := Wrap(ErrStaleHandle, "show window")
	if err.Error() != "show window: stale handle" {
		t.Errorf("Wrap() = %q, want %q", err.Error(), "show window: stale handle")
	}
	if !errors.Is(err, ErrStaleHandle) {
		t.Error("Wrap() should preserve the wrapped sentinel")
	}
}

func TestWrapf(t *testing.T) {
	if Wrapf(nil, "msg %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	err := Wrapf(ErrEmbedFailed, "window %#x", 0x10)
	if err.Error() != "window 0x10: failed to embed external window" {
		t.Errorf("Wrapf() = %q", err.Error())
	}
}
