// Package render draws dashboard views for the terminal.
package render

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/example/hr-dashboard/internal/calendar"
	"github.com/example/hr-dashboard/internal/dashboard"
	"github.com/example/hr-dashboard/internal/worktime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2)

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7DC6F")).
			Bold(true)

	workingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	primaryEventStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A90E2")).Bold(true)
	secondaryEventStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	selectedStyle       = lipgloss.NewStyle().Reverse(true)
)

// Calendar draws the grid as six rows of Monday-first weeks.
func Calendar(grid calendar.Grid) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(grid.Month.Format("January 2006")))
	b.WriteString("\n\n")

	labels := make([]string, 0, len(calendar.WeekdayLabels))
	for _, label := range calendar.WeekdayLabels {
		labels = append(labels, fmt.Sprintf("%3s", label[:2]))
	}
	b.WriteString(mutedStyle.Render(strings.Join(labels, " ")))

	for _, week := range grid.Weeks() {
		b.WriteString("\n")
		days := make([]string, 0, len(week))
		for _, cell := range week {
			days = append(days, cellStyle(cell).Render(fmt.Sprintf("%3d", cell.Day)))
		}
		b.WriteString(strings.Join(days, " "))
	}
	return b.String()
}

func cellStyle(cell calendar.Cell) lipgloss.Style {
	style := lipgloss.NewStyle()
	switch {
	case !cell.InDisplayedMonth:
		style = mutedStyle
	case cell.Event == calendar.EventPrimary:
		style = primaryEventStyle
	case cell.Event == calendar.EventSecondary:
		style = secondaryEventStyle
	}
	if cell.IsSelectedToday {
		style = style.Inherit(selectedStyle)
	}
	return style
}

// ProgressBar draws percentage as a bar of width cells.
func ProgressBar(percentage, width int) string {
	if width <= 0 {
		return ""
	}
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	filled := (percentage * width) / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return workingStyle.Render(bar)
}

// Overview draws the aggregate of view. now drives the "updated" line.
func Overview(view dashboard.View, now time.Time) string {
	title := "MY HOURS"
	if view.Mode == dashboard.ModeAdmin {
		title = "ORGANIZATION HOURS"
	}

	lines := []string{
		title,
		"",
		fmt.Sprintf("Worked:    %s of %s",
			workingStyle.Render(worktime.FormatHours(view.Overview.HoursWorked)),
			worktime.FormatHours(view.Overview.TargetHours)),
		fmt.Sprintf("Remaining: %s", worktime.FormatHours(view.Overview.RemainingHours)),
		fmt.Sprintf("Clocked:   %s", worktime.FormatHours(view.ClockedHours)),
		"",
		fmt.Sprintf("%s %s", ProgressBar(view.Overview.Percentage, 24), progressStyle.Render(fmt.Sprintf("%d%%", view.Overview.Percentage))),
	}

	if view.Status != nil {
		lines = append(lines, "",
			fmt.Sprintf("Employees: %d  Present: %d  Absent: %d", view.Status.Total, view.Status.Present(), view.Status.Absent))
	}
	if n := len(view.Anomalies); n > 0 {
		lines = append(lines, "", errorStyle.Render(fmt.Sprintf("%d %s with negative worked time", n, plural(n, "record", "records"))))
	}
	if !view.FetchedAt.IsZero() {
		lines = append(lines, "", mutedStyle.Render("Updated "+humanize.RelTime(view.FetchedAt, now, "ago", "from now")))
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}

// Header names the user and the period on screen.
func Header(view dashboard.View) string {
	name := view.User.DisplayName
	if name == "" {
		name = view.User.Email
	}
	last := view.To.AddDate(0, 0, -1)
	return titleStyle.Render(fmt.Sprintf("%s · %s %s · %s to %s",
		name, view.Mode, view.Period,
		view.From.Format("Jan 2"), last.Format("Jan 2, 2006")))
}

// Dashboard draws the calendar beside the overview.
func Dashboard(view dashboard.View, now time.Time) string {
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(Calendar(view.Calendar)),
		Overview(view, now),
	)
	return lipgloss.JoinVertical(lipgloss.Left, Header(view), body)
}

// ErrorMessage returns the text shown for a failed load. Access denial gets
// its own message; every other failure shares one.
func ErrorMessage(err error) string {
	if errors.Is(err, dashboard.ErrAccessDenied) {
		return dashboard.AccessDeniedMessage
	}
	return dashboard.LoadFailedMessage
}

// Error draws ErrorMessage in the error style.
func Error(err error) string {
	return errorStyle.Render(ErrorMessage(err))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
