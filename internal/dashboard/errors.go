package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/hr-dashboard/internal/backend"
)

// Messages shown to users for the two failure outcomes.
const (
	AccessDeniedMessage = "You do not have permission to view this data."
	LoadFailedMessage   = "Something went wrong while loading data. Please try again."
)

var (
	// ErrAccessDenied is returned when the caller may not see the requested data.
	ErrAccessDenied = errors.New("dashboard: access denied")
	// ErrUnavailable is returned for every other failure to load data.
	ErrUnavailable = errors.New("dashboard: data unavailable")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// mapBackendError folds backend failures into the two outcomes the views
// distinguish. Context errors pass through so callers can tell an abandoned
// load from a failed one.
func mapBackendError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, backend.ErrAccessDenied):
		return ErrAccessDenied
	default:
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}
