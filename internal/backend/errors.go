package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessDenied is returned when the backend answers 403.
	ErrAccessDenied = errors.New("backend: access denied")
	// ErrUnauthenticated is returned when the backend answers 401 or no token is available.
	ErrUnauthenticated = errors.New("backend: unauthenticated")
	// ErrUnavailable wraps every other failure to load data.
	ErrUnavailable = errors.New("backend: unavailable")
)

// StatusError reports an unexpected HTTP status from the backend.
type StatusError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return fmt.Sprintf("backend: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("backend: unexpected status %d: %s", e.Status, e.Message)
}

// Unwrap lets callers match StatusError against ErrUnavailable.
func (e *StatusError) Unwrap() error {
	return ErrUnavailable
}
