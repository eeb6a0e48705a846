package apperrors

import (
	"errors"
	"fmt"
)

// NotFoundError indicates a referenced entity does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// NewNotFound creates a NotFoundError for the given resource name.
func NewNotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// ValidationError indicates caller-fixable bad input, e.g. a seat that does
// not belong to the stated event or releasing a seat the caller never held.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError indicates the entity exists but its current state forbids the
// requested transition: a seat held by a rival, confirming without a completed
// payment, refunding a non-completed payment.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflict(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// FatalError is an operator-visible condition: reference generation exhausted,
// a refund that succeeded at the gateway but failed to persist locally.
type FatalError struct {
	Message string
}

func (e *FatalError) Error() string {
	return e.Message
}

func NewFatal(format string, args ...interface{}) error {
	return &FatalError{Message: fmt.Sprintf(format, args...)}
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsFatal(err error) bool {
	var target *FatalError
	return errors.As(err, &target)
}
