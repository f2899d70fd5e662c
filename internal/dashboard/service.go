package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/example/hr-dashboard/internal/backend"
	"github.com/example/hr-dashboard/internal/calendar"
	"github.com/example/hr-dashboard/internal/resource"
	"github.com/example/hr-dashboard/internal/worktime"
)

// Options tune a Service. Zero values fall back to defaults.
type Options struct {
	Targets     Targets
	DonutRadius float64
	Location    *time.Location
	Calendar    calendar.Builder
	Caches      Caches
	Now         func() time.Time
	Logger      *slog.Logger
}

// Service composes backend data into dashboard views.
type Service struct {
	backend  Backend
	targets  Targets
	radius   float64
	location *time.Location
	calendar calendar.Builder
	now      func() time.Time
	logger   *slog.Logger

	users      *resource.Loader[backend.User]
	timesheets *resource.Loader[[]backend.TimesheetRecord]
	status     *resource.Loader[backend.StatusCounts]
}

// NewService wires a Service over the given backend.
func NewService(client Backend, opts Options) *Service {
	defaults := DefaultTargets()
	if opts.Targets.Weekly <= 0 {
		opts.Targets.Weekly = defaults.Weekly
	}
	if opts.Targets.Monthly <= 0 {
		opts.Targets.Monthly = defaults.Monthly
	}
	if opts.DonutRadius <= 0 {
		opts.DonutRadius = 80
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Caches.Users == nil || opts.Caches.Timesheets == nil || opts.Caches.Status == nil {
		memory := MemoryCaches(0, 0)
		if opts.Caches.Users == nil {
			opts.Caches.Users = memory.Users
		}
		if opts.Caches.Timesheets == nil {
			opts.Caches.Timesheets = memory.Timesheets
		}
		if opts.Caches.Status == nil {
			opts.Caches.Status = memory.Status
		}
	}

	return &Service{
		backend:    client,
		targets:    opts.Targets,
		radius:     opts.DonutRadius,
		location:   opts.Location,
		calendar:   opts.Calendar,
		now:        opts.Now,
		logger:     opts.Logger,
		users:      resource.NewLoader(opts.Caches.Users, opts.Now, opts.Logger),
		timesheets: resource.NewLoader(opts.Caches.Timesheets, opts.Now, opts.Logger),
		status:     resource.NewLoader(opts.Caches.Status, opts.Now, opts.Logger),
	}
}

// Now returns the service clock in the configured location.
func (s *Service) Now() time.Time {
	return s.now().In(s.location)
}

// Build loads the data for params and composes the view.
func (s *Service) Build(ctx context.Context, params Params) (View, error) {
	if s == nil {
		return View{}, fmt.Errorf("dashboard Service is nil")
	}

	params, vErr := s.normalize(params)
	logger := serviceLogger(ctx, s.logger, "Build",
		"mode", string(params.Mode),
		"period", string(params.Period),
	)
	if vErr.HasErrors() {
		logger.WarnContext(ctx, "dashboard params rejected", "error_kind", ErrorKind(vErr), "fields", vErr.FieldErrors)
		return View{}, vErr
	}

	token := backend.TokenFromContext(ctx)

	user, err := s.loadUser(ctx, token)
	if err != nil {
		return View{}, s.fail(ctx, logger, "load user", err)
	}
	if params.Mode == ModeAdmin && !user.Value.IsAdmin {
		logger.WarnContext(ctx, "admin view requested by non-admin", "user_id", user.Value.ID, "error_kind", ErrorKind(ErrAccessDenied))
		return View{}, ErrAccessDenied
	}

	from, to := periodRange(params.Period, params.Reference)
	view := View{
		User:      user.Value,
		Mode:      params.Mode,
		Period:    params.Period,
		Reference: params.Reference,
		From:      from,
		To:        to,
		Calendar:  s.calendar.Build(params.Reference),
		FetchedAt: user.FetchedAt,
	}

	records, err := s.loadTimesheets(ctx, token, params.Mode, backend.TimesheetQuery{From: from, To: to})
	if err != nil {
		return View{}, s.fail(ctx, logger, "load timesheets", err)
	}
	view.Records = records.Value
	view.FetchedAt = oldest(view.FetchedAt, records.FetchedAt)

	target := params.TargetHours
	if target <= 0 {
		target = s.targets.forPeriod(params.Period)
	}

	if params.Mode == ModeAdmin {
		status, err := s.loadStatus(ctx, token, params.Reference)
		if err != nil {
			return View{}, s.fail(ctx, logger, "load employee status", err)
		}
		counts := status.Value
		view.Status = &counts
		view.FetchedAt = oldest(view.FetchedAt, status.FetchedAt)
		if counts.Total > 0 {
			target *= float64(counts.Total)
		}
	}

	work := backend.WorkRecords(view.Records)
	view.Overview = worktime.Aggregate(work, target)
	view.ClockedHours = worktime.TotalWorkedHours(work)
	view.Anomalies = worktime.Anomalies(work)
	view.Donut = worktime.NewDonut(view.Overview.Percentage, s.radius)

	if len(view.Anomalies) > 0 {
		logger.WarnContext(ctx, "timesheets contain negative durations", "count", len(view.Anomalies))
	}
	logger.DebugContext(ctx, "dashboard built",
		"records", len(view.Records),
		"hours_worked", view.Overview.HoursWorked,
		"percentage", view.Overview.Percentage,
	)
	return view, nil
}

// Invalidate drops cached data behind params so the next Build refetches.
func (s *Service) Invalidate(ctx context.Context, params Params) {
	if s == nil {
		return
	}
	params, vErr := s.normalize(params)
	if vErr.HasErrors() {
		return
	}
	token := backend.TokenFromContext(ctx)
	from, to := periodRange(params.Period, params.Reference)

	s.users.Invalidate(ctx, resource.Key(token, "user"))
	s.timesheets.Invalidate(ctx, timesheetKey(token, params.Mode, from, to))
	if params.Mode == ModeAdmin {
		s.status.Invalidate(ctx, statusKey(token, params.Reference))
	}
}

// Grid builds a calendar for the month containing reference without loading data.
func (s *Service) Grid(reference time.Time) calendar.Grid {
	if reference.IsZero() {
		reference = s.Now()
	}
	return s.calendar.Build(reference.In(s.location))
}

func (s *Service) normalize(params Params) (Params, *ValidationError) {
	vErr := &ValidationError{}

	switch params.Mode {
	case "":
		params.Mode = ModeUser
	case ModeUser, ModeAdmin:
	default:
		vErr.add("view", "must be user or admin")
	}

	switch params.Period {
	case "":
		params.Period = PeriodWeek
	case PeriodWeek, PeriodMonth:
	default:
		vErr.add("period", "must be week or month")
	}

	if math.IsNaN(params.TargetHours) || math.IsInf(params.TargetHours, 0) || params.TargetHours < 0 {
		vErr.add("target", "must be a positive number of hours")
	}

	if params.Reference.IsZero() {
		params.Reference = s.now()
	}
	params.Reference = params.Reference.In(s.location)
	return params, vErr
}

func (s *Service) loadUser(ctx context.Context, token string) (resource.Result[backend.User], error) {
	result := s.users.Get(ctx, resource.Key(token, "user"), s.backend.CurrentUser)
	return result, result.Err
}

func (s *Service) loadTimesheets(ctx context.Context, token string, mode Mode, query backend.TimesheetQuery) (resource.Result[[]backend.TimesheetRecord], error) {
	fetch := s.backend.Timesheets
	if mode == ModeAdmin {
		fetch = s.backend.AdminTimesheets
	}
	result := s.timesheets.Get(ctx, timesheetKey(token, mode, query.From, query.To), func(ctx context.Context) ([]backend.TimesheetRecord, error) {
		return fetch(ctx, query)
	})
	return result, result.Err
}

func (s *Service) loadStatus(ctx context.Context, token string, date time.Time) (resource.Result[backend.StatusCounts], error) {
	result := s.status.Get(ctx, statusKey(token, date), func(ctx context.Context) (backend.StatusCounts, error) {
		return s.backend.EmployeeStatus(ctx, date)
	})
	return result, result.Err
}

func (s *Service) fail(ctx context.Context, logger *slog.Logger, step string, err error) error {
	mapped := mapBackendError(err)
	logger.WarnContext(ctx, "dashboard load failed", "step", step, "error_kind", ErrorKind(mapped), "error", err)
	return mapped
}

func timesheetKey(token string, mode Mode, from, to time.Time) string {
	return resource.Key(token, "timesheets", string(mode), from.Format(time.DateOnly), to.Format(time.DateOnly))
}

func statusKey(token string, date time.Time) string {
	return resource.Key(token, "status", date.Format(time.DateOnly))
}

func periodRange(period Period, reference time.Time) (time.Time, time.Time) {
	if period == PeriodMonth {
		return calendar.MonthRange(reference)
	}
	return calendar.WeekRange(reference)
}

func oldest(a, b time.Time) time.Time {
	switch {
	case a.IsZero():
		return b
	case b.IsZero() || a.Before(b):
		return a
	default:
		return b
	}
}
