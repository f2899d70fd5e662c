package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/hr-dashboard/internal/config"
	"github.com/example/hr-dashboard/internal/dashboard"
	"github.com/example/hr-dashboard/internal/fixturebackend"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"BACKEND_URL", "API_TOKEN", "REDIS_ADDR", "FIXTURE_DSN", "LOCATION", "HTTP_PORT", "CACHE_SIZE"} {
		t.Setenv("DASHBOARD_"+name, "")
	}
	t.Setenv("DASHBOARD_LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCalendarCommand(t *testing.T) {
	clearEnv(t)

	out, _, err := run(t, "calendar", "--month", "2024-03")
	if err != nil {
		t.Fatalf("calendar failed: %v", err)
	}
	if !strings.Contains(out, "March 2024") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	if _, _, err := run(t, "calendar", "--month", "March"); err == nil {
		t.Fatal("expected malformed month to fail")
	}
}

func TestCalendarReference(t *testing.T) {
	now := time.Date(2024, time.March, 13, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		month    string
		expected time.Time
	}{
		{name: "default", expected: now},
		{name: "current month keeps today", month: "2024-03", expected: now},
		{name: "other month starts on day one", month: "2024-05", expected: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := calendarReference(tc.month, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestQueryFlagsParams(t *testing.T) {
	tests := []struct {
		name    string
		flags   queryFlags
		want    dashboard.Params
		wantErr bool
	}{
		{
			name:  "defaults",
			flags: queryFlags{view: "user", period: "week"},
			want:  dashboard.Params{Mode: dashboard.ModeUser, Period: dashboard.PeriodWeek},
		},
		{
			name:  "admin month with clock target",
			flags: queryFlags{view: "Admin", period: " MONTH ", date: "2024-02-29", target: "37:30"},
			want: dashboard.Params{
				Mode:        dashboard.ModeAdmin,
				Period:      dashboard.PeriodMonth,
				Reference:   time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
				TargetHours: 37.5,
			},
		},
		{name: "bad date", flags: queryFlags{date: "29/02/2024"}, wantErr: true},
		{name: "zero target", flags: queryFlags{target: "0"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.flags.params(time.UTC)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Mode != tc.want.Mode || got.Period != tc.want.Period || !got.Reference.Equal(tc.want.Reference) || got.TargetHours != tc.want.TargetHours {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestCommandsRequireBackend(t *testing.T) {
	clearEnv(t)

	_, _, err := run(t, "overview")
	if !errors.Is(err, config.ErrBackendNotConfigured) {
		t.Fatalf("expected ErrBackendNotConfigured, got %v", err)
	}
}

func TestOverviewCommand_Demo(t *testing.T) {
	clearEnv(t)

	out, _, err := run(t, "--demo", "overview", "--view", "admin", "--period", "month")
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	for _, want := range []string{"Alex Admin", "ORGANIZATION HOURS", "Employees: 2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestOverviewCommand_DemoEmployeeDenied(t *testing.T) {
	clearEnv(t)

	_, stderr, err := run(t, "--demo", "--token", fixturebackend.DemoEmployeeToken, "overview", "--view", "admin")
	if !errors.Is(err, dashboard.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	if !strings.Contains(stderr, dashboard.AccessDeniedMessage) {
		t.Fatalf("expected access denied message, got:\n%s", stderr)
	}
}

func TestExportCommand_Demo(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "hours.xlsx")
	out, _, err := run(t, "--demo", "export", "--period", "month", "-o", path)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected export file: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected non-empty export")
	}
	if !strings.HasPrefix(out, "wrote "+path) {
		t.Fatalf("unexpected output: %q", out)
	}
}
