package testfixtures

import (
	"sync"
	"time"
)

// ReferenceTime is Wednesday 13 March 2024, 10:00 UTC. March 2024 starts on a
// Friday, so its grid opens with four February days.
var ReferenceTime = time.Date(2024, time.March, 13, 10, 0, 0, 0, time.UTC)

// Clock is a settable time source shared by a service and its test.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock starts at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime
	}
	return &Clock{current: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Set jumps to t, e.g. to cross a week or month boundary.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}
