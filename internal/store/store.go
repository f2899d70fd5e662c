// Package store holds the session state shared by dashboard views: the
// signed-in user and the timesheet records currently on screen.
package store

import (
	"sync"

	"github.com/example/hr-dashboard/internal/backend"
)

// Snapshot is a consistent copy of the store contents.
type Snapshot struct {
	User       *backend.User
	Timesheets []backend.TimesheetRecord
	Version    uint64
}

// Store is safe for concurrent use. Every write bumps Version.
type Store struct {
	mu         sync.RWMutex
	user       *backend.User
	timesheets []backend.TimesheetRecord
	version    uint64
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// SetCurrentUser replaces the signed-in user. A nil user signs out.
func (s *Store) SetCurrentUser(user *backend.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = cloneUser(user)
	s.version++
}

// ReplaceTimesheets swaps the whole timesheet set.
func (s *Store) ReplaceTimesheets(records []backend.TimesheetRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timesheets = cloneRecords(records)
	s.version++
}

// Reset clears the user and the timesheets.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.timesheets = nil
	s.version++
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *Store) CurrentUser() *backend.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.user)
}

// Timesheets returns a copy of the current records.
func (s *Store) Timesheets() []backend.TimesheetRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.timesheets)
}

// Version changes whenever the contents change.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot copies user, timesheets and version under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		User:       cloneUser(s.user),
		Timesheets: cloneRecords(s.timesheets),
		Version:    s.version,
	}
}

func cloneUser(user *backend.User) *backend.User {
	if user == nil {
		return nil
	}
	copied := *user
	return &copied
}

func cloneRecords(records []backend.TimesheetRecord) []backend.TimesheetRecord {
	if len(records) == 0 {
		return nil
	}
	out := make([]backend.TimesheetRecord, len(records))
	copy(out, records)
	return out
}
