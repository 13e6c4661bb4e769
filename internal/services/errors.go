package services

import (
	"errors"
	"fmt"
)

// Error categories. Use errors.Is to classify a service error.
var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("not found")
	ErrAuthentication = errors.New("authentication failed")
)

// Reasons carried by ValidationError and NotFoundError.
var (
	ErrInvalidName          = errors.New("first and last name are both blank")
	ErrRequiredFields       = errors.New("required fields")
	ErrTraineeNotFound      = errors.New("trainee not found")
	ErrTrainerNotFound      = errors.New("trainer not found")
	ErrTrainerNotAssociated = errors.New("trainer not associated with trainee")
	ErrTrainingTypeNotFound = errors.New("training type not found")
	ErrIncorrectPassword    = errors.New("incorrect password")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidDate          = errors.New("invalid date")
)

// ValidationError reports input that the caller can correct.
type ValidationError struct {
	Reason  error
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a username or id that does not resolve.
type NotFoundError struct {
	Reason  error
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *NotFoundError) Unwrap() error { return e.Reason }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func invalid(reason error, format string, args ...any) error {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func notFound(reason error, format string, args ...any) error {
	return &NotFoundError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}
