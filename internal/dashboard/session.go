package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/example/hr-dashboard/internal/calendar"
	"github.com/example/hr-dashboard/internal/store"
)

// Session tracks the period shown by an interactive client and mirrors the
// most recent successful load into a Store.
type Session struct {
	service *Service
	store   *store.Store

	mu         sync.Mutex
	params     Params
	generation uint64
}

// NewSession starts a session at params. A zero Reference starts today.
func NewSession(service *Service, st *store.Store, params Params) *Session {
	if st == nil {
		st = store.New()
	}
	if params.Reference.IsZero() {
		params.Reference = service.Now()
	}
	return &Session{service: service, store: st, params: params}
}

// Params returns the period currently selected.
func (s *Session) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Store returns the store the session writes to.
func (s *Session) Store() *store.Store {
	return s.store
}

// Load builds the view for the current params. Results of loads overtaken by
// Navigate, Today or SetPeriod are returned but not written to the store.
func (s *Session) Load(ctx context.Context) (View, error) {
	s.mu.Lock()
	params := s.params
	generation := s.generation
	s.mu.Unlock()

	view, err := s.service.Build(ctx, params)

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return view, err
	}
	switch {
	case err == nil:
		user := view.User
		s.store.SetCurrentUser(&user)
		s.store.ReplaceTimesheets(view.Records)
	case errors.Is(err, ErrAccessDenied):
		s.store.ReplaceTimesheets(nil)
	}
	return view, err
}

// Reload drops cached data for the current params and loads again.
func (s *Session) Reload(ctx context.Context) (View, error) {
	s.service.Invalidate(ctx, s.Params())
	return s.Load(ctx)
}

// Navigate moves the selection by delta periods and returns the new params.
// Weeks move by seven days; months move to the first day of the target month.
func (s *Session) Navigate(delta int) Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.params.Period == PeriodMonth {
		s.params.Reference = calendar.AdvanceMonth(s.params.Reference, delta)
	} else {
		s.params.Reference = s.params.Reference.AddDate(0, 0, 7*delta)
	}
	s.generation++
	return s.params
}

// Today resets the selection to the current day.
func (s *Session) Today() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Reference = s.service.Now()
	s.generation++
	return s.params
}

// SetPeriod switches between week and month aggregation.
func (s *Session) SetPeriod(period Period) Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Period = period
	s.generation++
	return s.params
}
