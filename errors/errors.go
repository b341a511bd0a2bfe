/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when an entity or a referenced entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when attempting to create an entity that already exists
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidInput is returned when input or schema validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConditionFailed is returned when a conditional update fails
	ErrConditionFailed = errors.New("condition check failed")

	// ErrNoIndexMap is returned when no index map is found for an entity type
	ErrNoIndexMap = errors.New("no index map found for type")
)

// NotFoundError is the error surfaced when a lookup or a reference cannot be resolved.
// Message is already localized; Code and Param are stable and meant for programmatic checks.
type NotFoundError struct {
	Message string
	Code    ErrorCode
	Param   string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents a rejected write: a missing required field, a value outside an
// enumerated domain, or a malformed value.
type ValidationError struct {
	Field   string
	Message string
	Code    ErrorCode
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConditionFailedError represents a failed conditional operation
type ConditionFailedError struct {
	Operation string
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition check failed for %s operation: %s", e.Operation, e.Condition)
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError carrying an already translated message.
func NewNotFoundError(message string, code ErrorCode, param string) error {
	return &NotFoundError{Message: message, Code: code, Param: param}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(entityType, key string) error {
	return &AlreadyExistsError{Type: entityType, Key: key}
}

// NewValidationError creates a new ValidationError with the INVALID_INPUT code.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message, Code: CodeInvalidInput}
}

// NewSchemaError creates a ValidationError raised by a schema rule.
func NewSchemaError(field, message string) error {
	return &ValidationError{Field: field, Message: message, Code: CodeSchemaFailed}
}

// NewConditionFailedError creates a new ConditionFailedError
func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConditionFailed checks if an error is a condition failed error
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}

// CodeOf extracts the machine-readable code of err, looking through wrapping.
func CodeOf(err error) ErrorCode {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	switch {
	case err == nil:
		return ""
	case IsAlreadyExists(err):
		return CodeAlreadyExists
	case IsConditionFailed(err):
		return CodeConditionFailed
	case IsNotFound(err):
		return CodeNotFound
	}
	return CodeInternal
}
