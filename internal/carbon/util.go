package carbon

import (
	"fmt"
	"math"
	"strings"
)

// formatFloat formats a float for display.
// If the float is an integer, it is formatted as an integer.
// Otherwise, it is formatted with 2 decimal places.
func formatFloat(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.2f", f)
}

// Clamp restricts a value to the range [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Round rounds v half away from zero to places decimals.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// Rounded returns a copy of b with category totals and Total rounded to
// places decimals. Total is rounded from the full-precision sum, so it may
// differ from the sum of the rounded categories in the last place.
func (b Breakdown) Rounded(places int) Breakdown {
	r := b
	r.Transport = Round(b.Transport, places)
	r.Energy = Round(b.Energy, places)
	r.Food = Round(b.Food, places)
	r.Waste = Round(b.Waste, places)
	r.Total = Round(b.Total, places)
	return r
}

// Describe returns a one-line human-readable summary of the breakdown.
func (b Breakdown) Describe() string {
	var sb strings.Builder
	sb.WriteString("Monthly footprint ")
	sb.WriteString(formatFloat(Round(b.Total, DisplayPrecision)))
	sb.WriteString(" kgCO2e (")
	for i, c := range Categories() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(string(c))
		sb.WriteString(" ")
		sb.WriteString(formatFloat(Round(b.Category(c), DisplayPrecision)))
	}
	sb.WriteString("), factors v")
	sb.WriteString(b.FactorVersion)
	return sb.String()
}
