package calendar

import "time"

// GridSize is the number of cells in a month grid: six Monday-first weeks.
const GridSize = 42

// EventKind classifies the marker drawn on a calendar cell.
type EventKind int

const (
	// EventNone marks a cell without an event.
	EventNone EventKind = iota
	// EventPrimary marks the leading event of a month.
	EventPrimary
	// EventSecondary marks any other event.
	EventSecondary
)

// String returns the lowercase label used in JSON payloads.
func (k EventKind) String() string {
	switch k {
	case EventPrimary:
		return "primary"
	case EventSecondary:
		return "secondary"
	default:
		return ""
	}
}

// Cell is a single day in a month grid.
type Cell struct {
	Day              int
	Date             time.Time
	InDisplayedMonth bool
	HasEvent         bool
	Event            EventKind
	IsSelectedToday  bool
}

// Grid is the 42 day view of a month.
type Grid struct {
	Month time.Time
	Cells []Cell
}

// Weeks splits the grid into rows of seven cells starting on Monday.
func (g Grid) Weeks() [][]Cell {
	weeks := make([][]Cell, 0, len(g.Cells)/7)
	for i := 0; i+7 <= len(g.Cells); i += 7 {
		weeks = append(weeks, g.Cells[i:i+7])
	}
	return weeks
}

// EventPolicy decides whether a day of the displayed month carries an event.
type EventPolicy func(date time.Time) EventKind

// DemoEvents marks day 1 as primary and day 12 as secondary. It is placeholder
// data carried over from the dashboard mockups, not a business rule.
func DemoEvents(date time.Time) EventKind {
	switch date.Day() {
	case 1:
		return EventPrimary
	case 12:
		return EventSecondary
	default:
		return EventNone
	}
}

// Builder produces month grids. The zero value uses DemoEvents.
type Builder struct {
	Events EventPolicy
}

// Build returns the grid for the month containing reference using DemoEvents.
func Build(reference time.Time) Grid {
	return Builder{}.Build(reference)
}

// Build returns the grid for the month containing reference.
//
// The grid is padded with the tail of the previous month so that it starts on a
// Monday and with the head of the next month until it holds GridSize cells.
// Only days of the displayed month can carry events or the selection flag.
func (b Builder) Build(reference time.Time) Grid {
	events := b.Events
	if events == nil {
		events = DemoEvents
	}

	loc := reference.Location()
	year, month, _ := reference.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	prev := first.AddDate(0, -1, 0)
	next := first.AddDate(0, 1, 0)

	startDay := MondayIndex(first.Weekday())
	daysInMonth := DaysIn(year, month, loc)
	daysInPrev := DaysIn(prev.Year(), prev.Month(), loc)

	cells := make([]Cell, 0, GridSize)

	for i := startDay - 1; i >= 0; i-- {
		day := daysInPrev - i
		cells = append(cells, Cell{
			Day:  day,
			Date: time.Date(prev.Year(), prev.Month(), day, 0, 0, 0, 0, loc),
		})
	}

	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, loc)
		kind := events(date)
		cells = append(cells, Cell{
			Day:              day,
			Date:             date,
			InDisplayedMonth: true,
			HasEvent:         kind != EventNone,
			Event:            kind,
			IsSelectedToday:  day == reference.Day(),
		})
	}

	for day := 1; len(cells) < GridSize; day++ {
		cells = append(cells, Cell{
			Day:  day,
			Date: time.Date(next.Year(), next.Month(), day, 0, 0, 0, 0, loc),
		})
	}

	return Grid{Month: first, Cells: cells}
}

// AdvanceMonth returns the first day of the month delta months away from current.
func AdvanceMonth(current time.Time, delta int) time.Time {
	year, month, _ := current.Date()
	return time.Date(year, month+time.Month(delta), 1, 0, 0, 0, 0, current.Location())
}
