package charts

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	logging "github.com/haya14busa/github-release-stats/internal/infra/log"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
)

const (
	titleFontSize = 16.0
	labelFontSize = 12.0
)

// fontPaths are tried in order; gg's built-in face is used when none loads.
var fontPaths = []string{
	"etc/fonts/Arial.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/Library/Fonts/Arial.ttf",
	"/usr/share/fonts/truetype/msttcorefonts/Arial.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"~/Library/Fonts/Arial.ttf",
}

func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// findFont returns the first font in fontPaths gg can load, or "".
func findFont(dc *gg.Context) string {
	for _, p := range fontPaths {
		path := expandHome(p)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := dc.LoadFontFace(path, labelFontSize); err != nil {
			logging.LogWarn("Font file exists but failed to load", zap.String("path", path), zap.Error(err))
			continue
		}
		return path
	}
	return ""
}

// WritePNG rasterizes the chart with the same geometry as SVG.
func (c *Chart) WritePNG(w io.Writer) error {
	l := c.Layout
	p := c.Palette
	axisX, axisY := l.AxisX(), l.AxisY()

	dc := gg.NewContext(int(l.Width), int(l.Height))
	font := findFont(dc)
	setFont := func(size float64) {
		if font != "" {
			_ = dc.LoadFontFace(font, size)
		}
	}

	dc.SetHexColor(p.Background)
	dc.Clear()

	setFont(titleFontSize)
	dc.SetHexColor(p.Text)
	dc.DrawStringAnchored(c.Title, l.Width/2, 20, 0.5, 0)

	setFont(labelFontSize)

	// grid first so the axes paint over it
	dc.SetHexColor(p.Grid)
	dc.SetLineWidth(1)
	dc.SetDash(2, 2)
	for _, tick := range c.ValueTicks {
		dc.DrawLine(l.MarginLeft, tick.Y, axisX, tick.Y)
		dc.Stroke()
	}
	for _, tick := range c.DateTicks {
		dc.DrawLine(tick.X, l.MarginTop, tick.X, axisY)
		dc.Stroke()
	}
	dc.SetDash()

	dc.SetHexColor(p.Axis)
	dc.SetLineWidth(2)
	dc.DrawLine(axisX, l.MarginTop, axisX, axisY)
	dc.Stroke()
	dc.DrawLine(l.MarginLeft, axisY, axisX, axisY)
	dc.Stroke()
	for _, tick := range c.ValueTicks {
		dc.DrawLine(axisX, tick.Y, axisX+5, tick.Y)
		dc.Stroke()
	}
	for _, tick := range c.DateTicks {
		dc.DrawLine(tick.X, axisY, tick.X, axisY+5)
		dc.Stroke()
	}

	dc.SetHexColor(p.Text)
	for _, tick := range c.ValueTicks {
		dc.DrawStringAnchored(tick.Label, axisX+10, tick.Y, 0, 0.5)
	}
	for _, tick := range c.DateTicks {
		dc.DrawStringAnchored(tick.Label, tick.X, axisY+20, 0.5, 0)
	}
	dc.DrawStringAnchored("Date", l.Width/2, l.Height-10, 0.5, 0)

	dc.Push()
	dc.RotateAbout(gg.Radians(90), axisX+55, l.Height/2)
	dc.DrawStringAnchored("Total Downloads", axisX+55, l.Height/2, 0.5, 0)
	dc.Pop()

	dc.SetHexColor(p.Line)
	if len(c.Points) > 0 {
		dc.SetLineWidth(1.5)
		dc.MoveTo(c.Points[0].X, c.Points[0].Y)
		for _, pt := range c.Points[1:] {
			dc.LineTo(pt.X, pt.Y)
		}
		dc.Stroke()
	}
	for _, pt := range c.Points {
		dc.DrawCircle(pt.X, pt.Y, 2)
		dc.Fill()
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// PNG is WritePNG into memory.
func (c *Chart) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.WritePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
