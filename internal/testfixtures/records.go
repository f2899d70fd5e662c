package testfixtures

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/hr-dashboard/internal/backend"
)

// Shift builds a record for userID on date. spans are "H:MM" clock times in
// the order clock in, clock out, break start, break end; missing ones stay
// absent. HoursWorked is left empty.
func Shift(userID string, date time.Time, spans ...string) backend.TimesheetRecord {
	record := backend.TimesheetRecord{
		ID:     fmt.Sprintf("%s-%s", userID, date.Format("20060102")),
		UserID: userID,
		Date:   date.Format(time.DateOnly),
	}
	stamps := []*backend.Timestamp{&record.ClockIn, &record.ClockOut, &record.BreakStart, &record.BreakEnd}
	for i, span := range spans {
		if i >= len(stamps) || strings.TrimSpace(span) == "" {
			continue
		}
		*stamps[i] = backend.At(At(date, span))
	}
	return record
}

// At returns the "H:MM" clock time on date's day, in date's location.
func At(date time.Time, clock string) time.Time {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		panic(fmt.Sprintf("testfixtures: bad clock time %q", clock))
	}
	year, month, day := date.Date()
	return time.Date(year, month, day, parsed.Hour(), parsed.Minute(), 0, 0, date.Location())
}
