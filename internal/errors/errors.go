// Package errors provides centralized error definitions and error handling utilities
// for the codedock codebase. It defines the embedding failure taxonomy, structured
// error types with context wrapping, and error classification helpers.
//
// # Error Types
//
// Domain-specific errors represent failures in a stage of the embed pipeline:
//   - LaunchError: resolving or spawning the external executable
//   - WindowError: locating, embedding, or manipulating an external window
//
// Semantic errors represent common error conditions:
//   - ValidationError: invalid input or state
//   - TimeoutError: a bounded wait ran out
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewLaunchError("executable not on PATH", errors.ErrExecutableNotFound).
//	    WithExecutable("code")
//
//	err := errors.NewWindowError("reparent failed", errors.ErrEmbedFailed).
//	    WithWindow(hwnd).WithContainer(container).WithPhase("reparent")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrStaleHandle) { ... }
//
//	var launchErr *errors.LaunchError
//	if errors.As(err, &launchErr) { ... }
//
//	if errors.IsRecoverable(err) { ... }
//	if errors.IsUserFacing(err) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: a later explicit user action may succeed
//   - Recoverable: the failure must be treated as a no-op, never fatal
//   - UserFacing: safe to surface to the host as a notification
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Embedding pipeline sentinel errors
var (
	// ErrExecutableNotFound indicates no search-path directory contains the executable.
	ErrExecutableNotFound = New("executable not found on search path")
	// ErrLaunchFailed indicates the operating system rejected the spawn.
	ErrLaunchFailed = New("failed to launch external process")
	// ErrWindowNotFound indicates the locator exhausted its attempts.
	ErrWindowNotFound = New("external window not found")
	// ErrEmbedFailed indicates reparenting or restyling failed.
	ErrEmbedFailed = New("failed to embed external window")
	// ErrStaleHandle indicates a window or process handle is no longer valid.
	ErrStaleHandle = New("stale handle")
	// ErrUnsupported indicates the window system is not available on this platform.
	ErrUnsupported = New("window embedding not supported on this platform")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// EmbedderError is the base interface for all codedock errors.
type EmbedderError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if a later attempt may succeed.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// LaunchError represents failures resolving or spawning the external executable.
//
// Example:
//
//	err := errors.NewLaunchError("spawn rejected", errors.ErrLaunchFailed).
//	    WithExecutable(`C:\bin\code.cmd`)
//	fmt.Println(err) // "launch error [exe=C:\bin\code.cmd]: spawn rejected: failed to launch external process"
type LaunchError struct {
	baseError
	Executable string
	Dir        string
}

// NewLaunchError creates a new LaunchError.
func NewLaunchError(message string, cause error) *LaunchError {
	return &LaunchError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  true,
			userFacing: true,
		},
	}
}

// WithExecutable adds the executable name or path to the error context.
func (e *LaunchError) WithExecutable(exe string) *LaunchError {
	e.Executable = exe
	return e
}

// WithDir adds the working directory to the error context.
func (e *LaunchError) WithDir(dir string) *LaunchError {
	e.Dir = dir
	return e
}

// WithSeverity sets the error severity.
func (e *LaunchError) WithSeverity(s Severity) *LaunchError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *LaunchError) Error() string {
	var parts []string
	if e.Executable != "" {
		parts = append(parts, fmt.Sprintf("exe=%s", e.Executable))
	}
	if e.Dir != "" {
		parts = append(parts, fmt.Sprintf("dir=%s", e.Dir))
	}

	prefix := "launch error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("launch error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *LaunchError) Is(target error) bool {
	if _, ok := target.(*LaunchError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// WindowError represents failures locating or manipulating an external window.
//
// Example:
//
//	err := errors.NewWindowError("container gone", errors.ErrEmbedFailed).
//	    WithWindow(0x1a2b).WithContainer(0x3c4d).WithPhase("reparent")
type WindowError struct {
	baseError
	Window    uintptr
	Container uintptr
	Phase     string
}

// NewWindowError creates a new WindowError.
func NewWindowError(message string, cause error) *WindowError {
	return &WindowError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  true,
			userFacing: true,
		},
	}
}

// WithWindow adds the external window handle to the error context.
func (e *WindowError) WithWindow(h uintptr) *WindowError {
	e.Window = h
	return e
}

// WithContainer adds the container handle to the error context.
func (e *WindowError) WithContainer(h uintptr) *WindowError {
	e.Container = h
	return e
}

// WithPhase adds the embed step that failed.
func (e *WindowError) WithPhase(phase string) *WindowError {
	e.Phase = phase
	return e
}

// WithSeverity sets the error severity.
func (e *WindowError) WithSeverity(s Severity) *WindowError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *WindowError) WithRetryable(r bool) *WindowError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *WindowError) Error() string {
	var parts []string
	if e.Window != 0 {
		parts = append(parts, fmt.Sprintf("window=%#x", e.Window))
	}
	if e.Container != 0 {
		parts = append(parts, fmt.Sprintf("container=%#x", e.Container))
	}
	if e.Phase != "" {
		parts = append(parts, fmt.Sprintf("phase=%s", e.Phase))
	}

	prefix := "window error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("window error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *WindowError) Is(target error) bool {
	if _, ok := target.(*WindowError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("container handle cannot be zero")
//	err = err.WithField("container").WithValue(0)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents a bounded wait that ran out.
//
// Example:
//
//	err := errors.NewTimeoutError("waiting for external window", 10*time.Second).
//	    WithCause(errors.ErrWindowNotFound)
//	fmt.Println(err) // "timeout error: waiting for external window (timeout: 10s): external window not found"
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if a later, explicitly requested attempt may
// succeed. Nothing in codedock retries automatically on this signal.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var embedErr EmbedderError
	if As(err, &embedErr) {
		return embedErr.IsRetryable()
	}

	if Is(err, ErrTimeout) {
		return true
	}

	return false
}

// IsRecoverable reports whether err must be treated as a no-op rather than
// a failure: the handle went away underneath us, or the caller canceled.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}
	return Is(err, ErrStaleHandle) || Is(err, ErrCanceled)
}

// IsUserFacing returns true if the error message is safe to display to end users.
//
// Example:
//
//	if errors.IsUserFacing(err) {
//	    notifyHost(err.Error())
//	} else {
//	    notifyHost("An internal error occurred")
//	    log.Error("internal error", "err", err)
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var embedErr EmbedderError
	if As(err, &embedErr) {
		return embedErr.IsUserFacing()
	}

	var validation *ValidationError
	var timeout *TimeoutError
	if As(err, &validation) || As(err, &timeout) {
		return true
	}

	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement EmbedderError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var embedErr EmbedderError
	if As(err, &embedErr) {
		return embedErr.Severity()
	}

	if Is(err, ErrStaleHandle) {
		return SeverityDebug
	}

	return SeverityError
}

// Kind returns the taxonomy name of err for notifications sent to the host.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrExecutableNotFound):
		return "ExecutableNotFound"
	case Is(err, ErrLaunchFailed):
		return "LaunchFailed"
	case Is(err, ErrWindowNotFound):
		return "WindowNotFound"
	case Is(err, ErrStaleHandle):
		return "StaleHandle"
	case Is(err, ErrEmbedFailed):
		return "EmbedFailed"
	case Is(err, ErrUnsupported):
		return "Unsupported"
	case Is(err, ErrCanceled):
		return "Canceled"
	case Is(err, ErrInvalidInput):
		return "InvalidInput"
	default:
		return "Internal"
	}
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to enumerate windows")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to restyle window %#x", hwnd)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
