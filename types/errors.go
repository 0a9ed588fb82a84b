package types

import (
	"errors"
	"fmt"
)

// Standard error types
type ErrorType string

const (
	ErrTypeConfig       ErrorType = "CONFIG_ERROR"
	ErrTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrTypeInvalidValue ErrorType = "INVALID_VALUE"
	ErrTypeDatabase     ErrorType = "DATABASE_ERROR"
	ErrTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrTypeNotFound     ErrorType = "NOT_FOUND"
	ErrTypeBadRequest   ErrorType = "BAD_REQUEST"
	ErrTypeDecode       ErrorType = "DECODE_ERROR"
	ErrTypeInvariant    ErrorType = "INVARIANT_VIOLATION"
	ErrTypeReorg        ErrorType = "REORG_DETECTED"
)

// StandardError provides consistent error formatting
type StandardError struct {
	Type    ErrorType
	Message string
	Details map[string]any
	Cause   error
}

func (e *StandardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// IsErrorType reports whether any error in err's chain is a StandardError of type t.
func IsErrorType(err error, t ErrorType) bool {
	var se *StandardError
	for err != nil {
		if !errors.As(err, &se) {
			return false
		}
		if se.Type == t {
			return true
		}
		err = se.Cause
	}
	return false
}

// Error constructors for common cases

func NewConfigError(msg string, cause error) error {
	return &StandardError{
		Type:    ErrTypeConfig,
		Message: msg,
		Cause:   cause,
	}
}

func NewValidationError(field, msg string) error {
	return &StandardError{
		Type:    ErrTypeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, msg),
		Details: map[string]any{"field": field},
	}
}

func NewInvalidValueError(field, value, msg string) error {
	return &StandardError{
		Type:    ErrTypeInvalidValue,
		Message: fmt.Sprintf("invalid value for %s: %s (%s)", field, value, msg),
		Details: map[string]any{"field": field, "value": value},
	}
}

func NewDatabaseError(operation string, cause error) error {
	return &StandardError{
		Type:    ErrTypeDatabase,
		Message: fmt.Sprintf("database %s failed", operation),
		Cause:   cause,
	}
}

func NewNotFoundError(resource string) error {
	return &StandardError{
		Type:    ErrTypeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Details: map[string]any{"resource": resource},
	}
}

func NewBadRequestError(msg string) error {
	return &StandardError{
		Type:    ErrTypeBadRequest,
		Message: msg,
	}
}

func NewInternalError(msg string, cause error) error {
	return &StandardError{
		Type:    ErrTypeInternal,
		Message: msg,
		Cause:   cause,
	}
}

func NewDecodeError(event string, cause error) error {
	return &StandardError{
		Type:    ErrTypeDecode,
		Message: fmt.Sprintf("failed to decode params of %s", event),
		Details: map[string]any{"event": event},
		Cause:   cause,
	}
}

// NewInvariantError reports derived state that would become inconsistent if the
// current event were applied. The event must not be acknowledged.
func NewInvariantError(entity, id, msg string) error {
	return &StandardError{
		Type:    ErrTypeInvariant,
		Message: fmt.Sprintf("%s %s: %s", entity, id, msg),
		Details: map[string]any{"entity": entity, "id": id},
	}
}

func NewReorgError(position string, appliedTx, receivedTx string) error {
	return &StandardError{
		Type:    ErrTypeReorg,
		Message: fmt.Sprintf("position %s already applied by tx %s, received tx %s", position, appliedTx, receivedTx),
		Details: map[string]any{"position": position, "applied_tx": appliedTx, "received_tx": receivedTx},
	}
}
