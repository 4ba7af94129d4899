package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and handlers.
var (
	ErrDesignNotFound       = errors.New("design not found")
	ErrSubmissionInFlight   = errors.New("a design submission is already in progress")
	ErrConfirmationRequired = errors.New("draft has unsaved changes, confirmation required")
	ErrFormLocked           = errors.New("form is locked while a submission is in flight")
	ErrUnauthorized         = errors.New("unauthorized")
)

// ValidationError reports a missing required draft field. It is raised before
// dispatch, so it never reaches the network.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required field %q is empty", e.Field)
}

// ServiceError is a non-success response from the generation service.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("generation service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("generation service returned status %d: %s", e.StatusCode, e.Message)
}

// NetworkError is a transport failure talking to an external collaborator.
// Нет политики повторов: каждая попытка терминальна, пользователь повторяет сам.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError is a rejection from the auth provider. Message is surfaced to the
// user verbatim, as the login form did.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }
