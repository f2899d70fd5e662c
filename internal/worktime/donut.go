package worktime

import (
	"math"
	"strconv"
)

// ArcLengths splits the circumference of a ring of the given radius into the
// arc covering percentage and the remainder.
func ArcLengths(percentage, radius float64) (filled, empty float64) {
	circumference := 2 * math.Pi * radius
	filled = circumference * percentage / 100
	empty = circumference - filled
	return filled, empty
}

// Donut carries the stroke geometry of a progress ring.
type Donut struct {
	Percentage    int
	Radius        float64
	Circumference float64
	Filled        float64
	Empty         float64
}

// NewDonut computes the ring geometry for percentage.
func NewDonut(percentage int, radius float64) Donut {
	filled, empty := ArcLengths(float64(percentage), radius)
	return Donut{
		Percentage:    percentage,
		Radius:        radius,
		Circumference: filled + empty,
		Filled:        filled,
		Empty:         empty,
	}
}

// DashArray formats the stroke-dasharray value "filled empty".
func (d Donut) DashArray() string {
	return formatLength(d.Filled) + " " + formatLength(d.Empty)
}

// DashOffset formats the stroke-dashoffset that hides the empty arc.
func (d Donut) DashOffset() string {
	return formatLength(d.Empty)
}

func formatLength(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
