package worktime

import "time"

// WorkedDuration returns the shift length of a record minus its break.
//
// The second result is false when the record has no complete clock-in/clock-out
// pair. The break is only subtracted when both of its timestamps are present.
// The returned duration may be negative for inconsistent data.
func WorkedDuration(record Record) (time.Duration, bool) {
	if record.ClockIn == nil || record.ClockOut == nil {
		return 0, false
	}
	worked := record.ClockOut.Sub(*record.ClockIn)
	if record.BreakStart != nil && record.BreakEnd != nil {
		worked -= record.BreakEnd.Sub(*record.BreakStart)
	}
	return worked, true
}

// TotalWorkedHours sums WorkedDuration across records, in hours, unrounded.
// Records with a negative duration contribute zero; see Anomalies.
func TotalWorkedHours(records []Record) float64 {
	var total time.Duration
	for _, record := range records {
		worked, ok := WorkedDuration(record)
		if !ok || worked < 0 {
			continue
		}
		total += worked
	}
	return total.Hours()
}

// Anomaly describes a record whose timestamps produce a negative duration.
type Anomaly struct {
	Index    int
	Duration time.Duration
}

// Anomalies lists the records excluded by TotalWorkedHours because clock-out
// precedes clock-in or the break outlasts the shift.
func Anomalies(records []Record) []Anomaly {
	var out []Anomaly
	for i, record := range records {
		worked, ok := WorkedDuration(record)
		if ok && worked < 0 {
			out = append(out, Anomaly{Index: i, Duration: worked})
		}
	}
	return out
}
