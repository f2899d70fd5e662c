package worktime

import (
	"math"
	"time"
)

// Record is a single day of timesheet data as consumed by the aggregator.
type Record struct {
	ClockIn     *time.Time
	ClockOut    *time.Time
	BreakStart  *time.Time
	BreakEnd    *time.Time
	HoursWorked string
}

// Overview summarizes worked hours against a target.
type Overview struct {
	HoursWorked    float64
	TargetHours    float64
	Percentage     int
	RemainingHours float64
}

// Aggregate sums the hours text of records and compares it with targetHours.
//
// HoursWorked is rounded to one decimal. Percentage is rounded half away from
// zero before being clamped to [0, 100], and is 0 when targetHours is not
// positive. Work beyond the target is reported as 100% with nothing remaining.
func Aggregate(records []Record, targetHours float64) Overview {
	var sum float64
	for _, record := range records {
		sum += ParseHours(record.HoursWorked)
	}
	worked := roundTo(sum, 1)

	overview := Overview{
		HoursWorked: worked,
		TargetHours: targetHours,
	}

	if targetHours > 0 {
		overview.Percentage = clampPercentage(math.Round(worked / targetHours * 100))
	}
	overview.RemainingHours = math.Max(0, targetHours-worked)

	return overview
}

func clampPercentage(value float64) int {
	switch {
	case math.IsNaN(value) || value < 0:
		return 0
	case value > 100:
		return 100
	default:
		return int(value)
	}
}
