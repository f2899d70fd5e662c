// Package worktime aggregates timesheet records into worked hours, progress
// against a target, and the donut geometry used to draw that progress.
//
// All parsing in this package fails soft: malformed input contributes zero
// instead of returning an error.
package worktime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseHours converts duration text such as "7:30" or "7.5" into hours.
//
// Text containing a colon is read as hours and minutes; a missing or
// non-numeric component counts as zero. Anything else is parsed as a decimal
// number. Unparseable, NaN and infinite values yield 0, as does any negative
// value, including a sign on either side of the colon.
func ParseHours(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	if hourPart, minutePart, ok := strings.Cut(text, ":"); ok {
		if negative(hourPart) || negative(minutePart) {
			return 0
		}
		hours := parseComponent(hourPart)
		minutes := parseComponent(minutePart)
		return hours + minutes/60
	}

	return sanitize(strconv.ParseFloat(text, 64))
}

func parseComponent(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	return sanitize(strconv.ParseFloat(value, 64))
}

func negative(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), "-")
}

func sanitize(value float64, err error) float64 {
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}

// FormatHours renders hours as "H:MM", rounding to the nearest minute.
func FormatHours(hours float64) string {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		hours = 0
	}
	sign := ""
	if hours < 0 {
		sign = "-"
		hours = -hours
	}
	totalMinutes := int(math.Round(hours * 60))
	return fmt.Sprintf("%s%d:%02d", sign, totalMinutes/60, totalMinutes%60)
}

// roundTo rounds half away from zero to the given number of decimals.
func roundTo(value float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(value*scale) / scale
}
