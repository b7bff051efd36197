// Package errors provides structured error types and exit codes for xcpipe.
package errors

import (
	"fmt"
)

// Exit codes used by the CLI.
const (
	ExitSuccess          = 0 // Success
	ExitRuntimeError     = 1 // Runtime error (operation failed, tests failed, etc.)
	ExitConfigError      = 2 // Configuration error (invalid config, bad flags, etc.)
	ExitEnvironmentError = 3 // Environment error (tool missing, bad working dir, etc.)
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindNotFound
	KindValidation
	KindSpawn
)

// PipelineError is the base error type for xcpipe.
type PipelineError struct {
	Kind      ErrorKind
	Message   string
	Operation string // Operation name if applicable ("build", "test", "diagnose")
	Cause     error  // Underlying error
}

func (e *PipelineError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("[%s] %s", e.Operation, e.Message)
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *PipelineError) ExitCode() int {
	switch e.Kind {
	case KindConfig, KindValidation:
		return ExitConfigError
	case KindSpawn:
		return ExitEnvironmentError
	default:
		return ExitRuntimeError
	}
}

// New creates a new runtime error.
func New(message string) *PipelineError {
	return &PipelineError{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...interface{}) *PipelineError {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *PipelineError {
	return &PipelineError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *PipelineError {
	return Config(fmt.Sprintf(format, args...))
}

// Spawn creates a spawn error: the external tool could not be started at all
// (executable missing, invalid working directory). Spawn errors abort an
// operation outright; every other failure degrades to a partial result.
func Spawn(message string, cause error) *PipelineError {
	return &PipelineError{
		Kind:    KindSpawn,
		Message: message,
		Cause:   cause,
	}
}

// Spawnf creates a spawn error with formatting.
func Spawnf(cause error, format string, args ...interface{}) *PipelineError {
	return Spawn(fmt.Sprintf(format, args...), cause)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *PipelineError {
	return &PipelineError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// OperationError creates an error for a specific operation.
func OperationError(operation, message string) *PipelineError {
	return &PipelineError{
		Kind:      KindRuntime,
		Operation: operation,
		Message:   message,
	}
}

// NotFound creates a not found error.
func NotFound(what, name string) *PipelineError {
	return &PipelineError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if pe, ok := err.(*PipelineError); ok {
		return pe.ExitCode()
	}
	return ExitRuntimeError
}
