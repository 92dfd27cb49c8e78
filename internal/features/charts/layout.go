package charts

// Layout is the canvas geometry in pixels.
type Layout struct {
	Width        float64
	Height       float64
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64
	TickMonths   int // months between X axis ticks
}

// DefaultLayout is an 800x400 canvas with the Y axis labels on the right.
func DefaultLayout() Layout {
	return Layout{
		Width:        800,
		Height:       400,
		MarginTop:    40,
		MarginRight:  70,
		MarginBottom: 60,
		MarginLeft:   40,
		TickMonths:   6,
	}
}

func (l Layout) ChartWidth() float64  { return l.Width - l.MarginLeft - l.MarginRight }
func (l Layout) ChartHeight() float64 { return l.Height - l.MarginTop - l.MarginBottom }

// AxisX is the x coordinate of the right-hand Y axis.
func (l Layout) AxisX() float64 { return l.Width - l.MarginRight }

// AxisY is the y coordinate of the X axis.
func (l Layout) AxisY() float64 { return l.Height - l.MarginBottom }
