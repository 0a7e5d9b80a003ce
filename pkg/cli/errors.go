package cli

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitRuntime    = 1 // Command ran and failed (fetch, storage, publish)
	ExitConfig     = 2 // Configuration could not be loaded or is invalid
	ExitValidation = 3 // Input files have errors (lint, expand)
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// ValidationError reports input files that failed validation.
type ValidationError struct {
	Files  int
	Errors int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d error(s) in %d file(s)", e.Errors, e.Files)
}

// RuntimeError represents an error from a command execution.
type RuntimeError struct {
	Command string
	Err     error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewValidationError creates a new ValidationError.
func NewValidationError(files, errs int) *ValidationError {
	return &ValidationError{Files: files, Errors: errs}
}

// NewRuntimeError creates a new RuntimeError.
func NewRuntimeError(command string, err error) *RuntimeError {
	return &RuntimeError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps err to a process exit code. Unclassified errors are
// runtime failures.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfig
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return ExitValidation
	}
	return ExitRuntime
}
