package dashboard

import (
	"context"
	"time"

	"github.com/example/hr-dashboard/internal/backend"
	"github.com/example/hr-dashboard/internal/calendar"
	"github.com/example/hr-dashboard/internal/worktime"
)

// Backend is the subset of the HR backend client used by the dashboard.
type Backend interface {
	CurrentUser(ctx context.Context) (backend.User, error)
	Timesheets(ctx context.Context, query backend.TimesheetQuery) ([]backend.TimesheetRecord, error)
	AdminTimesheets(ctx context.Context, query backend.TimesheetQuery) ([]backend.TimesheetRecord, error)
	EmployeeStatus(ctx context.Context, date time.Time) (backend.StatusCounts, error)
}

// Mode selects between the personal and the organization wide view.
type Mode string

const (
	ModeUser  Mode = "user"
	ModeAdmin Mode = "admin"
)

// Period selects the aggregation window.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Params describes one dashboard view.
type Params struct {
	Mode      Mode
	Period    Period
	Reference time.Time
	// TargetHours overrides the configured per employee target when positive.
	TargetHours float64
}

// View is everything a renderer needs to draw the dashboard.
type View struct {
	User         backend.User
	Mode         Mode
	Period       Period
	Reference    time.Time
	From         time.Time
	To           time.Time
	Calendar     calendar.Grid
	Overview     worktime.Overview
	ClockedHours float64
	Donut        worktime.Donut
	Status       *backend.StatusCounts
	Records      []backend.TimesheetRecord
	Anomalies    []worktime.Anomaly
	// FetchedAt is the age of the oldest backend data in the view.
	FetchedAt time.Time
}

// Targets are the default per employee hour targets.
type Targets struct {
	Weekly  float64
	Monthly float64
}

// DefaultTargets returns a 40 hour week and a 160 hour month.
func DefaultTargets() Targets {
	return Targets{Weekly: 40, Monthly: 160}
}

func (t Targets) forPeriod(period Period) float64 {
	if period == PeriodMonth {
		return t.Monthly
	}
	return t.Weekly
}
