// Package apperrors provides tests for application error types.
package apperrors

import (
	"context"
	"errors"
	"io/fs"
	"testing"
)

func TestConfigError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		err         error
		expected    string
		checkTypeAs bool
	}{
		{
			name:     "Error returns message",
			err:      ConfigError{Message: "invalid flag value"},
			expected: "invalid flag value",
		},
		{
			name:     "NewConfigError creates formatted error",
			err:      NewConfigError("invalid value %d for flag %s", -1, "--max-iter"),
			expected: "invalid value -1 for flag --max-iter",
		},
		{
			name:        "ConfigError type assertion",
			err:         NewConfigError("test error"),
			expected:    "test error",
			checkTypeAs: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.err.Error())
			}
			if tt.checkTypeAs {
				var configErr ConfigError
				if !errors.As(tt.err, &configErr) {
					t.Error("expected error to be ConfigError type")
				}
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	err := error(ValidationError{Field: "VPD", Message: `line 4: cannot parse "abc"`})
	expected := `validation error for "VPD": line 4: cannot parse "abc"`
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatal("expected error to be ValidationError type")
	}
	if validationErr.Field != "VPD" {
		t.Errorf("expected Field %q, got %q", "VPD", validationErr.Field)
	}
}

func TestColumnError(t *testing.T) {
	t.Parallel()
	err := error(ColumnError{Column: "CO2S"})
	if got, want := err.Error(), `column "CO2S" not found in observation table`; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFitError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		stage       FitStage
		cause       error
		expectedMsg string
		checkIs     error
	}{
		{
			name:        "Error includes stage and cause",
			stage:       StageMinimize,
			cause:       errors.New("did not converge"),
			expectedMsg: "fit failed during minimize: did not converge",
		},
		{
			name:        "errors.Is works through the cause",
			stage:       StageMinimize,
			cause:       context.Canceled,
			expectedMsg: "fit failed during minimize: context canceled",
			checkIs:     context.Canceled,
		},
		{
			name:        "column errors are reachable with errors.As",
			stage:       StageColumns,
			cause:       ColumnError{Column: "OBS"},
			expectedMsg: `fit failed during columns: column "OBS" not found in observation table`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := NewFitError(tt.stage, tt.cause)
			if err.Error() != tt.expectedMsg {
				t.Errorf("expected %q, got %q", tt.expectedMsg, err.Error())
			}
			var fitErr *FitError
			if !errors.As(err, &fitErr) {
				t.Fatal("expected error to be *FitError")
			}
			if fitErr.Stage != tt.stage {
				t.Errorf("expected stage %q, got %q", tt.stage, fitErr.Stage)
			}
			if fitErr.Unwrap() != tt.cause {
				t.Error("Unwrap should return the original cause")
			}
			if tt.checkIs != nil && !errors.Is(err, tt.checkIs) {
				t.Errorf("errors.Is should find %v in the chain", tt.checkIs)
			}
		})
	}
}

func TestNewFitError_NilAndNested(t *testing.T) {
	t.Parallel()
	if NewFitError(StageMinimize, nil) != nil {
		t.Error("NewFitError(nil) should return nil")
	}
	inner := NewFitError(StageColumns, ColumnError{Column: "VPD"})
	outer := NewFitError(StageMinimize, inner)
	if outer != inner {
		t.Error("NewFitError should not re-wrap an existing FitError")
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		original    error
		format      string
		args        []any
		expectedMsg string
		checkIs     error
		expectNil   bool
	}{
		{
			name:        "wraps error with context",
			original:    errors.New("file not found"),
			format:      "failed to load table",
			expectedMsg: "failed to load table: file not found",
		},
		{
			name:        "preserves error chain",
			original:    context.DeadlineExceeded,
			format:      "fit timed out",
			expectedMsg: "fit timed out: context deadline exceeded",
			checkIs:     context.DeadlineExceeded,
		},
		{
			name:      "returns nil for nil error",
			original:  nil,
			format:    "some context",
			expectNil: true,
		},
		{
			name:        "supports format arguments",
			original:    errors.New("permission denied"),
			format:      "failed to open %s",
			args:        []any{"data.csv"},
			expectedMsg: "failed to open data.csv: permission denied",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wrapped := WrapError(tt.original, tt.format, tt.args...)

			if tt.expectNil {
				if wrapped != nil {
					t.Error("WrapError(nil, ...) should return nil")
				}
				return
			}

			if wrapped == nil {
				t.Fatal("wrapped error should not be nil")
			}

			if wrapped.Error() != tt.expectedMsg {
				t.Errorf("expected %q, got %q", tt.expectedMsg, wrapped.Error())
			}

			if tt.checkIs != nil && !errors.Is(wrapped, tt.checkIs) {
				t.Errorf("wrapped error should preserve %v in the chain", tt.checkIs)
			}
		})
	}
}

func TestIsContextError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"context.Canceled", context.Canceled, true},
		{"context.DeadlineExceeded", context.DeadlineExceeded, true},
		{"wrapped context.Canceled", WrapError(context.Canceled, "fit canceled"), true},
		{"regular error", errors.New("some error"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := IsContextError(tt.err)
			if result != tt.expected {
				t.Errorf("IsContextError(%v) = %v, expected %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"config", NewConfigError("bad"), ExitErrorConfig},
		{"validation", ValidationError{Field: "VPD", Message: "bad"}, ExitErrorInput},
		{"wrapped column", WrapError(ColumnError{Column: "OBS"}, "load"), ExitErrorInput},
		{"fit", NewFitError(StageMinimize, errors.New("boom")), ExitErrorFit},
		{"fit on missing column", NewFitError(StageColumns, ColumnError{Column: "OBS"}), ExitErrorFit},
		{"timeout inside fit", NewFitError(StageMinimize, context.DeadlineExceeded), ExitErrorTimeout},
		{"canceled", context.Canceled, ExitErrorCanceled},
		{"unreadable input", WrapError(&fs.PathError{Op: "open", Path: "x.csv", Err: fs.ErrNotExist}, "open"), ExitErrorInput},
		{"generic", errors.New("boom"), ExitErrorGeneric},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExitCodeFor(tt.err); got != tt.want {
				t.Errorf("ExitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodes(t *testing.T) {
	t.Parallel()
	codes := map[string]int{
		"ExitSuccess":       ExitSuccess,
		"ExitErrorGeneric":  ExitErrorGeneric,
		"ExitErrorTimeout":  ExitErrorTimeout,
		"ExitErrorInput":    ExitErrorInput,
		"ExitErrorConfig":   ExitErrorConfig,
		"ExitErrorFit":      ExitErrorFit,
		"ExitErrorCanceled": ExitErrorCanceled,
	}

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess should be 0, got %d", ExitSuccess)
	}
	if ExitErrorCanceled != 130 {
		t.Errorf("ExitErrorCanceled should be 130 (SIGINT convention), got %d", ExitErrorCanceled)
	}

	seen := make(map[int]string)
	for name, code := range codes {
		if existing, ok := seen[code]; ok {
			t.Errorf("duplicate exit code %d: %s and %s", code, existing, name)
		}
		seen[code] = name
	}
}
