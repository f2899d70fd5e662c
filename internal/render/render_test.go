package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/hr-dashboard/internal/backend"
	"github.com/example/hr-dashboard/internal/calendar"
	"github.com/example/hr-dashboard/internal/dashboard"
	"github.com/example/hr-dashboard/internal/logging"
	"github.com/example/hr-dashboard/internal/worktime"
)

var reference = time.Date(2024, time.March, 13, 10, 0, 0, 0, time.UTC)

type stubBackend struct {
	mu      sync.Mutex
	user    backend.User
	userErr error
	queries []backend.TimesheetQuery
	block   chan struct{}
}

func (s *stubBackend) CurrentUser(ctx context.Context) (backend.User, error) {
	return s.user, s.userErr
}

func (s *stubBackend) Timesheets(ctx context.Context, query backend.TimesheetQuery) ([]backend.TimesheetRecord, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	block := s.block
	s.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []backend.TimesheetRecord{{HoursWorked: "7:30"}}, nil
}

func (s *stubBackend) AdminTimesheets(ctx context.Context, query backend.TimesheetQuery) ([]backend.TimesheetRecord, error) {
	return s.Timesheets(ctx, query)
}

func (s *stubBackend) EmployeeStatus(ctx context.Context, date time.Time) (backend.StatusCounts, error) {
	return backend.StatusCounts{Total: 3, Absent: 1}, nil
}

func (s *stubBackend) lastQuery() backend.TimesheetQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[len(s.queries)-1]
}

func newSession(stub *stubBackend) *dashboard.Session {
	service := dashboard.NewService(stub, dashboard.Options{
		Location: time.UTC,
		Now:      func() time.Time { return reference },
		Logger:   logging.Discard(),
	})
	return dashboard.NewSession(service, nil, dashboard.Params{})
}

func TestCalendar(t *testing.T) {
	t.Parallel()

	out := Calendar(calendar.Build(reference))

	for _, want := range []string{"March 2024", "Mo", "Su", " 26", " 31", "  7"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected calendar to contain %q, got:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 8 {
		t.Fatalf("expected title, blank, labels and six weeks, got %d line breaks:\n%s", lines, out)
	}
}

func TestProgressBar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		percentage int
		width      int
		filled     int
	}{
		{percentage: 0, width: 10, filled: 0},
		{percentage: 50, width: 10, filled: 5},
		{percentage: 100, width: 10, filled: 10},
		{percentage: 150, width: 10, filled: 10},
		{percentage: -5, width: 10, filled: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(fmt.Sprintf("%d%%", tc.percentage), func(t *testing.T) {
			t.Parallel()

			bar := ProgressBar(tc.percentage, tc.width)
			if got := strings.Count(bar, "█"); got != tc.filled {
				t.Fatalf("expected %d filled cells, got %d in %q", tc.filled, got, bar)
			}
			if got := strings.Count(bar, "░"); got != tc.width-tc.filled {
				t.Fatalf("expected %d empty cells, got %d in %q", tc.width-tc.filled, got, bar)
			}
		})
	}

	if ProgressBar(50, 0) != "" {
		t.Fatal("expected empty bar for zero width")
	}
}

func TestOverview(t *testing.T) {
	t.Parallel()

	view := dashboard.View{
		Mode:         dashboard.ModeAdmin,
		Overview:     worktime.Aggregate([]worktime.Record{{HoursWorked: "20:00"}}, 80),
		ClockedHours: 19.5,
		Status:       &backend.StatusCounts{Total: 4, Absent: 1},
		Anomalies:    []worktime.Anomaly{{Index: 0, Duration: -time.Hour}},
		FetchedAt:    reference.Add(-3 * time.Minute),
	}

	out := Overview(view, reference)

	for _, want := range []string{
		"ORGANIZATION HOURS",
		"20:00",
		"of 80:00",
		"Remaining: 60:00",
		"Clocked:   19:30",
		"25%",
		"Employees: 4  Present: 3  Absent: 1",
		"1 record with negative worked time",
		"Updated 3 minutes ago",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected overview to contain %q, got:\n%s", want, out)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	if got := ErrorMessage(dashboard.ErrAccessDenied); got != dashboard.AccessDeniedMessage {
		t.Fatalf("unexpected message for access denied: %q", got)
	}
	wrapped := fmt.Errorf("%w: boom", dashboard.ErrUnavailable)
	if got := ErrorMessage(wrapped); got != dashboard.LoadFailedMessage {
		t.Fatalf("unexpected message for unavailable: %q", got)
	}
	if got := ErrorMessage(errors.New("other")); got != dashboard.LoadFailedMessage {
		t.Fatalf("unexpected message for unknown error: %q", got)
	}
}

func runCmd(t *testing.T, cmd tea.Cmd) loadedMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	raw := cmd()
	msg, ok := raw.(loadedMsg)
	if !ok {
		t.Fatalf("expected loadedMsg, got %T", raw)
	}
	return msg
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowseModel_LoadAndNavigate(t *testing.T) {
	t.Parallel()

	stub := &stubBackend{user: backend.User{ID: "u1", DisplayName: "Erin"}}
	model := NewBrowseModel(context.Background(), newSession(stub), func() time.Time { return reference })

	if out := model.View(); !strings.Contains(out, "Loading...") {
		t.Fatalf("expected loading placeholder, got:\n%s", out)
	}

	model.Update(runCmd(t, model.load(false)))
	if model.Loading() {
		t.Fatal("expected load to finish")
	}
	if out := model.View(); !strings.Contains(out, "Erin") || !strings.Contains(out, "of 40:00") {
		t.Fatalf("unexpected view after load:\n%s", out)
	}

	_, cmd := model.Update(key("left"))
	model.Update(runCmd(t, cmd))
	wantFrom := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	if got := stub.lastQuery().From; !got.Equal(wantFrom) {
		t.Fatalf("expected previous week from %v, got %v", wantFrom, got)
	}

	_, cmd = model.Update(key("m"))
	model.Update(runCmd(t, cmd))
	if out := model.View(); !strings.Contains(out, "of 160:00") {
		t.Fatalf("expected month target after switching period:\n%s", out)
	}

	_, cmd = model.Update(key("t"))
	model.Update(runCmd(t, cmd))
	wantFrom = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if got := stub.lastQuery().From; !got.Equal(wantFrom) {
		t.Fatalf("expected current month from %v, got %v", wantFrom, got)
	}
}

func TestBrowseModel_DropsSupersededLoads(t *testing.T) {
	t.Parallel()

	stub := &stubBackend{user: backend.User{ID: "u1"}, block: make(chan struct{})}
	model := NewBrowseModel(context.Background(), newSession(stub), nil)

	first := model.load(false)
	second := model.load(false)

	// The first load was cancelled by the second and unblocks on ctx.
	stale := runCmd(t, first)
	if !errors.Is(stale.err, context.Canceled) {
		t.Fatalf("expected superseded load to be cancelled, got %v", stale.err)
	}
	model.Update(stale)
	if !model.Loading() {
		t.Fatal("expected superseded result to be ignored")
	}
	if model.err != nil {
		t.Fatalf("expected no error from superseded load, got %v", model.err)
	}

	close(stub.block)
	model.Update(runCmd(t, second))
	if model.Loading() || model.view == nil {
		t.Fatal("expected current load to land")
	}
}

func TestBrowseModel_ShowsFailures(t *testing.T) {
	t.Parallel()

	stub := &stubBackend{userErr: backend.ErrAccessDenied}
	model := NewBrowseModel(context.Background(), newSession(stub), nil)

	model.Update(runCmd(t, model.load(false)))

	if out := model.View(); !strings.Contains(out, dashboard.AccessDeniedMessage) {
		t.Fatalf("expected access denied message, got:\n%s", out)
	}
}

func TestBrowseModel_Quit(t *testing.T) {
	t.Parallel()

	for _, k := range []string{"q", "esc"} {
		model := NewBrowseModel(context.Background(), newSession(&stubBackend{}), nil)
		_, cmd := model.Update(key(k))
		if cmd == nil {
			t.Fatalf("expected quit command for %q", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("expected QuitMsg for %q", k)
		}
	}
}
