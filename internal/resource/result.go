// Package resource implements cache-or-fetch loading of backend data.
//
// A Loader keys every resource by identity (for example the caller's token
// fingerprint plus the period being viewed), shares concurrent fetches of
// the same key, and exposes each resource as a Result that renderers can
// inspect without triggering I/O.
package resource

import "time"

// State is the lifecycle stage of a resource.
type State int

const (
	StateLoading State = iota
	StateSuccess
	StateFailure
)

func (s State) String() string {
	switch s {
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return "loading"
	}
}

// Result is the observable state of one resource.
type Result[T any] struct {
	State     State
	Value     T
	Err       error
	FetchedAt time.Time
}

// Loading returns a Result in StateLoading.
func Loading[T any]() Result[T] {
	return Result[T]{State: StateLoading}
}

// Success wraps a fetched value.
func Success[T any](value T, fetchedAt time.Time) Result[T] {
	return Result[T]{State: StateSuccess, Value: value, FetchedAt: fetchedAt}
}

// Failure wraps a fetch error.
func Failure[T any](err error) Result[T] {
	return Result[T]{State: StateFailure, Err: err}
}

// Ready reports whether the value can be rendered.
func (r Result[T]) Ready() bool {
	return r.State == StateSuccess
}
