// Package charts turns a download history into a line chart, as SVG markup
// or as a PNG raster. Both outputs share the geometry computed by Build.
package charts

import (
	"fmt"
	"time"
)

// Sample is one cumulative download count observation.
type Sample struct {
	Time      time.Time
	Downloads int64
}

type Point struct {
	X, Y float64
}

type ValueTick struct {
	Value float64
	Y     float64
	Label string
}

type DateTick struct {
	Time  time.Time
	X     float64
	Label string
}

// Chart is the laid out chart: every coordinate is final.
type Chart struct {
	Title   string
	Theme   Theme
	Palette Palette
	Layout  Layout

	ValueTicks []ValueTick
	DateTicks  []DateTick
	Points     []Point
}

// scales maps data values to canvas coordinates.
//
// Degenerate domains do not produce NaN: when every sample shares one
// timestamp the points sit on the horizontal midpoint, and when the largest
// count is zero they sit on the baseline.
type scales struct {
	layout       Layout
	minDate      time.Time
	maxDate      time.Time
	maxDownloads float64
}

func newScales(samples []Sample, layout Layout) scales {
	s := scales{layout: layout}
	for i, sample := range samples {
		if i == 0 || sample.Time.Before(s.minDate) {
			s.minDate = sample.Time
		}
		if i == 0 || sample.Time.After(s.maxDate) {
			s.maxDate = sample.Time
		}
		if d := float64(sample.Downloads); i == 0 || d > s.maxDownloads {
			s.maxDownloads = d
		}
	}
	return s
}

func (s scales) x(t time.Time) float64 {
	span := s.sinceMin(s.maxDate)
	if span <= 0 {
		return s.layout.MarginLeft + s.layout.ChartWidth()/2
	}
	return s.layout.MarginLeft + s.sinceMin(t)/span*s.layout.ChartWidth()
}

// sinceMin is t - minDate in seconds. time.Duration saturates at about 292
// years, so the difference is taken on Unix seconds instead.
func (s scales) sinceMin(t time.Time) float64 {
	return float64(t.Unix()-s.minDate.Unix()) + float64(t.Nanosecond()-s.minDate.Nanosecond())/1e9
}

func (s scales) y(v float64) float64 {
	bottom := s.layout.MarginTop + s.layout.ChartHeight()
	if s.maxDownloads <= 0 {
		return bottom
	}
	return bottom - v/s.maxDownloads*s.layout.ChartHeight()
}

// Title is the heading drawn above a chart of owner/repo.
func Title(owner, repo string) string {
	return fmt.Sprintf("%s/%s Release Stats: Total Downloads", owner, repo)
}

// Build lays out samples, in the order given, on a chart titled for owner/repo.
func Build(samples []Sample, owner, repo string, theme Theme, layout Layout) *Chart {
	s := newScales(samples, layout)
	c := &Chart{
		Title:   Title(owner, repo),
		Theme:   theme,
		Palette: PaletteFor(theme),
		Layout:  layout,
	}

	for _, v := range ValueTicks(s.maxDownloads) {
		c.ValueTicks = append(c.ValueTicks, ValueTick{Value: v, Y: s.y(v), Label: FormatNumber(v)})
	}

	if len(samples) > 0 {
		for t := range MonthTicks(s.minDate, s.maxDate, layout.TickMonths) {
			c.DateTicks = append(c.DateTicks, DateTick{Time: t, X: s.x(t), Label: FormatDate(t)})
		}
	}

	c.Points = make([]Point, 0, len(samples))
	for _, sample := range samples {
		c.Points = append(c.Points, Point{X: s.x(sample.Time), Y: s.y(float64(sample.Downloads))})
	}
	return c
}
