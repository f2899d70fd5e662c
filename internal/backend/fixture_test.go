package backend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/hr-dashboard/internal/backend"
	"github.com/example/hr-dashboard/internal/calendar"
	"github.com/example/hr-dashboard/internal/fixturebackend"
	"github.com/example/hr-dashboard/internal/testfixtures"
)

func TestClientAgainstFixtureBackend(t *testing.T) {
	fixture := testfixtures.NewBackend(t, nil)
	client := fixture.Client
	reference := fixture.Clock.Now()
	ctx := context.Background()

	employeeCtx := backend.ContextWithToken(ctx, fixturebackend.DemoEmployeeToken)
	adminCtx := backend.ContextWithToken(ctx, fixturebackend.DemoAdminToken)
	from, to := calendar.WeekRange(reference)

	t.Run("employee sees own records", func(t *testing.T) {
		user, err := client.CurrentUser(employeeCtx)
		if err != nil {
			t.Fatalf("CurrentUser failed: %v", err)
		}
		records, err := client.Timesheets(employeeCtx, backend.TimesheetQuery{From: from, To: to})
		if err != nil {
			t.Fatalf("Timesheets failed: %v", err)
		}
		if len(records) == 0 {
			t.Fatal("expected records for the current week")
		}
		for _, record := range records {
			if record.UserID != user.ID {
				t.Fatalf("record owned by %q leaked to %q", record.UserID, user.ID)
			}
		}
	})

	t.Run("employee is denied admin data", func(t *testing.T) {
		if _, err := client.AdminTimesheets(employeeCtx, backend.TimesheetQuery{From: from, To: to}); !errors.Is(err, backend.ErrAccessDenied) {
			t.Fatalf("expected ErrAccessDenied, got %v", err)
		}
		if _, err := client.EmployeeStatus(employeeCtx, reference); !errors.Is(err, backend.ErrAccessDenied) {
			t.Fatalf("expected ErrAccessDenied, got %v", err)
		}
	})

	t.Run("admin sees organization data", func(t *testing.T) {
		records, err := client.AdminTimesheets(adminCtx, backend.TimesheetQuery{From: from, To: to})
		if err != nil {
			t.Fatalf("AdminTimesheets failed: %v", err)
		}
		owners := map[string]bool{}
		for _, record := range records {
			owners[record.UserID] = true
		}
		if len(owners) != 2 {
			t.Fatalf("expected records from both users, got %v", owners)
		}

		counts, err := client.EmployeeStatus(adminCtx, reference)
		if err != nil {
			t.Fatalf("EmployeeStatus failed: %v", err)
		}
		if counts.Present() != 1 {
			t.Fatalf("expected one present employee, got %+v", counts)
		}
	})

	t.Run("unknown token is unauthenticated", func(t *testing.T) {
		if _, err := client.CurrentUser(backend.ContextWithToken(ctx, "stranger")); !errors.Is(err, backend.ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	})
}
