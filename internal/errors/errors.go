package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorInput    = 3   // Indicates the observation table could not be used.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorFit      = 5   // Indicates the minimisation failed.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field (or column) that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// ColumnError reports a column that is absent from an observation table.
type ColumnError struct {
	// Column is the requested column identifier.
	Column string
}

func (e ColumnError) Error() string {
	return fmt.Sprintf("column %q not found in observation table", e.Column)
}

// FitStage names the step of a fit in which a failure occurred.
type FitStage string

// Stages of a fit, in execution order.
const (
	StageColumns    FitStage = "columns"
	StageResidual   FitStage = "residual"
	StageMinimize   FitStage = "minimize"
	StageStatistics FitStage = "statistics"
)

// FitError represents a failed parameter fit. It replaces an opaque failure
// marker: the caller can branch on Stage and inspect Cause.
type FitError struct {
	// Stage is the step of the fit that failed.
	Stage FitStage
	// Cause is the underlying error that triggered this fit error.
	Cause error
}

// Error returns the stage-prefixed message of the underlying cause.
func (e *FitError) Error() string {
	return fmt.Sprintf("fit failed during %s: %v", e.Stage, e.Cause)
}

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
func (e *FitError) Unwrap() error { return e.Cause }

// NewFitError wraps cause as a FitError for the given stage. It returns nil
// if cause is nil and returns cause unchanged if it already is a FitError.
func NewFitError(stage FitStage, cause error) error {
	if cause == nil {
		return nil
	}
	var fe *FitError
	if errors.As(cause, &fe) {
		return cause
	}
	return &FitError{Stage: stage, Cause: cause}
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps an error returned by the application to its exit code.
// Context errors take precedence over the error class that carries them.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	}

	var (
		configErr     ConfigError
		validationErr ValidationError
		columnErr     ColumnError
		fitErr        *FitError
		pathErr       *fs.PathError
	)
	switch {
	case errors.As(err, &configErr):
		return ExitErrorConfig
	case errors.As(err, &fitErr):
		return ExitErrorFit
	case errors.As(err, &validationErr), errors.As(err, &columnErr), errors.As(err, &pathErr):
		return ExitErrorInput
	}
	return ExitErrorGeneric
}
