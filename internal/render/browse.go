package render

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/example/hr-dashboard/internal/dashboard"
)

const refreshInterval = 30 * time.Second

type loadedMsg struct {
	seq  uint64
	view dashboard.View
	err  error
}

type tickMsg time.Time

// BrowseModel is an interactive dashboard over a Session. Every navigation
// starts a new load and cancels the one still in flight.
type BrowseModel struct {
	session *dashboard.Session
	parent  context.Context
	now     func() time.Time

	cancel  context.CancelFunc
	seq     uint64
	loading bool
	view    *dashboard.View
	err     error
	width   int
}

// NewBrowseModel returns a model bound to ctx. Loads stop when ctx ends.
func NewBrowseModel(ctx context.Context, session *dashboard.Session, now func() time.Time) *BrowseModel {
	if ctx == nil {
		ctx = context.Background()
	}
	if now == nil {
		now = time.Now
	}
	return &BrowseModel{session: session, parent: ctx, now: now}
}

func (m *BrowseModel) Init() tea.Cmd {
	return tea.Batch(m.load(false), tickCmd())
}

func (m *BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.stop()
			return m, tea.Quit
		case "left", "h":
			m.session.Navigate(-1)
			return m, m.load(false)
		case "right", "l":
			m.session.Navigate(1)
			return m, m.load(false)
		case "t":
			m.session.Today()
			return m, m.load(false)
		case "w":
			m.session.SetPeriod(dashboard.PeriodWeek)
			return m, m.load(false)
		case "m":
			m.session.SetPeriod(dashboard.PeriodMonth)
			return m, m.load(false)
		case "r":
			return m, m.load(true)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case loadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.cancel = nil
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		view := msg.view
		m.view = &view
		m.err = nil

	case tickMsg:
		return m, tickCmd()
	}

	return m, nil
}

func (m *BrowseModel) View() string {
	var body string
	switch {
	case m.err != nil:
		body = Error(m.err)
	case m.view == nil:
		body = "Loading..."
	default:
		body = Dashboard(*m.view, m.now())
	}

	status := ""
	if m.loading && m.view != nil {
		status = mutedStyle.Render("Refreshing...")
	}
	help := mutedStyle.Render("←/h previous · →/l next · t today · w week · m month · r reload · q quit")

	out := lipgloss.JoinVertical(lipgloss.Left, body, status, help)
	if m.width > 0 {
		out = lipgloss.NewStyle().MaxWidth(m.width).Render(out)
	}
	return out
}

// Loading reports whether a load is in flight.
func (m *BrowseModel) Loading() bool {
	return m.loading
}

func (m *BrowseModel) load(reload bool) tea.Cmd {
	m.stop()
	ctx, cancel := context.WithCancel(m.parent)
	m.cancel = cancel
	m.seq++
	m.loading = true

	seq := m.seq
	session := m.session
	return func() tea.Msg {
		defer cancel()
		var (
			view dashboard.View
			err  error
		)
		if reload {
			view, err = session.Reload(ctx)
		} else {
			view, err = session.Load(ctx)
		}
		return loadedMsg{seq: seq, view: view, err: err}
	}
}

func (m *BrowseModel) stop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
