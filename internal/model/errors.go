package model

import "fmt"

// ValidationError represents a rejected input payload. The compiler itself
// patches recoverable defects with defaults; validation errors are raised by
// the API/CLI boundary before the canonical Invoice is built.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("invalid %s: %s (value=%v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// SerializationError represents a tree-to-text writer failure. It is fatal
// for the compile call; no partial output accompanies it.
type SerializationError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *SerializationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("serialization failed [%s]: %s (%v)", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("serialization failed [%s]: %s", e.Stage, e.Message)
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}

// NewSerializationError creates a new serialization error
func NewSerializationError(stage, message string, cause error) *SerializationError {
	return &SerializationError{
		Stage:   stage,
		Message: message,
		Cause:   cause,
	}
}

// RenderError represents a failure while producing the visual PDF or the
// combined ZUGFeRD container.
type RenderError struct {
	Step    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render failed [%s]: %s (%v)", e.Step, e.Message, e.Cause)
	}
	return fmt.Sprintf("render failed [%s]: %s", e.Step, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// NewRenderError creates a new render error
func NewRenderError(step, message string, cause error) *RenderError {
	return &RenderError{
		Step:    step,
		Message: message,
		Cause:   cause,
	}
}
