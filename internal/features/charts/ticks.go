package charts

import (
	"iter"
	"time"
)

// MonthTicks yields start, start+months, start+2*months ... while not after end.
// Each tick is computed from the previous one with calendar arithmetic in UTC,
// so Aug 31 + 6 months is Mar 3 (Feb 31 normalized). Ranging over the sequence
// again restarts it. A non-positive step yields nothing.
func MonthTicks(start, end time.Time, months int) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if months <= 0 {
			return
		}
		for t := start.UTC(); !t.After(end); t = t.AddDate(0, months, 0) {
			if !yield(t) {
				return
			}
		}
	}
}

// ValueTicks returns 0, top/4, top/2, 3top/4 and top.
func ValueTicks(top float64) []float64 {
	return []float64{0, top / 4, top / 2, top * 3 / 4, top}
}
