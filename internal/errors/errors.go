// Package errors provides the error types surfaced by the tool dispatcher.
package errors

import (
	"errors"
	"fmt"
)

// ToolError is the single error kind returned to MCP callers when a provider
// operation fails. Label names the operation's domain ("Summary", "Search", ...).
type ToolError struct {
	Tool  string // MCP tool name, e.g. "get_summary"
	Label string // domain label, e.g. "Summary error"
	Err   error  // underlying provider failure
}

func (e *ToolError) Error() string {
	if e.Err == nil {
		return e.Label
	}
	return fmt.Sprintf("%s: %s", e.Label, e.Err.Error())
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// NewToolError wraps a provider failure with the operation's label.
func NewToolError(tool, label string, err error) *ToolError {
	return &ToolError{
		Tool:  tool,
		Label: label,
		Err:   err,
	}
}

// ValidationError indicates invalid input parameters.
type ValidationError struct {
	Field   string // field name that failed validation
	Value   string // the invalid value (may be empty)
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s=%q: %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsToolError returns true if err is or wraps a ToolError.
func IsToolError(err error) bool {
	var te *ToolError
	return errors.As(err, &te)
}

// IsValidation returns true if err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
