package calendar

import "time"

// WeekdayLabels lists short weekday names in grid order.
var WeekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// MondayIndex converts a time.Weekday (Sunday == 0) to a Monday-first index.
func MondayIndex(day time.Weekday) int {
	return (int(day) + 6) % 7
}

// DaysIn reports the number of days in the given month.
func DaysIn(year int, month time.Month, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	// Day 0 of the following month normalizes to the last day of month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the Monday that begins the week containing t.
func StartOfWeek(t time.Time) time.Time {
	start := StartOfDay(t)
	return start.AddDate(0, 0, -MondayIndex(start.Weekday()))
}

// StartOfMonth returns midnight of the first day of the month containing t.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// WeekRange returns the half-open [Monday, next Monday) range containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	start := StartOfWeek(t)
	return start, start.AddDate(0, 0, 7)
}

// MonthRange returns the half-open range covering the month containing t.
func MonthRange(t time.Time) (time.Time, time.Time) {
	start := StartOfMonth(t)
	return start, start.AddDate(0, 1, 0)
}
