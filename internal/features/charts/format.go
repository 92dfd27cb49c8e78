package charts

import (
	"math"
	"strconv"
	"time"
)

// FormatNumber renders a Y axis value: 1.5M, 2.0K, 999.
func FormatNumber(v float64) string {
	switch {
	case v >= 1_000_000:
		return fixed1(v/1_000_000) + "M"
	case v >= 1_000:
		return fixed1(v/1_000) + "K"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// fixed1 formats v with one decimal, rounding exact ties up (1.25 -> 1.3).
// strconv rounds ties to even, and the only exact ties at one decimal are
// the quarters.
func fixed1(v float64) string {
	if q := v * 4; q == math.Trunc(q) && math.Mod(q, 2) == 1 {
		v += 0.05
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// FormatDate renders an X axis tick as an ISO calendar date in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// formatCoord prints a coordinate in its shortest exact form.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
