package charts

import (
	"bytes"
	"fmt"
	"html"
	"strings"
)

const svgStyle = `    <style>
      .chart-bg { fill: %[1]s; }
      .chart-line { fill: none; stroke: %[5]s; stroke-width: 1.5; }
      .axis { stroke: %[4]s; stroke-width: 2; }
      .grid { stroke: %[3]s; stroke-dasharray: 2,2; }
      .axis-label { font-family: Arial, sans-serif; font-size: 12px; fill: %[2]s; }
      .title { font-family: Arial, sans-serif; font-size: 16px; font-weight: bold; fill: %[2]s; }
    </style>
`

// SVG renders the chart as a standalone SVG document.
func (c *Chart) SVG() []byte {
	l := c.Layout
	p := c.Palette
	axisX, axisY := l.AxisX(), l.AxisY()
	f := formatCoord

	var b bytes.Buffer
	fmt.Fprintf(&b, "<svg width=\"%s\" height=\"%s\" xmlns=\"http://www.w3.org/2000/svg\">\n", f(l.Width), f(l.Height))
	fmt.Fprintf(&b, svgStyle, p.Background, p.Text, p.Grid, p.Axis, p.Line)
	b.WriteString("\n")

	fmt.Fprintf(&b, "    <rect width=\"%s\" height=\"%s\" class=\"chart-bg\" />\n", f(l.Width), f(l.Height))
	fmt.Fprintf(&b, "    <text x=\"%s\" y=\"20\" text-anchor=\"middle\" class=\"title\">%s</text>\n",
		f(l.Width/2), html.EscapeString(c.Title))

	b.WriteString("\n    <!-- Y axis (right) -->\n")
	fmt.Fprintf(&b, "    <line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" class=\"axis\" />\n",
		f(axisX), f(l.MarginTop), f(axisX), f(axisY))
	for _, tick := range c.ValueTicks {
		y := f(tick.Y)
		fmt.Fprintf(&b, "    <line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" class=\"grid\" />\n", f(l.MarginLeft), y, f(axisX), y)
		fmt.Fprintf(&b, "    <line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" class=\"axis\" />\n", f(axisX), y, f(axisX+5), y)
		fmt.Fprintf(&b, "    <text x=\"%s\" y=\"%s\" dy=\".32em\" text-anchor=\"start\" class=\"axis-label\">%s</text>\n",
			f(axisX+10), y, tick.Label)
	}
	labelX, labelY := f(axisX+55), f(l.Height/2)
	fmt.Fprintf(&b, "    <text x=\"%s\" y=\"%s\" transform=\"rotate(90 %s %s)\" text-anchor=\"middle\" class=\"axis-label\">Total Downloads</text>\n",
		labelX, labelY, labelX, labelY)

	b.WriteString("\n    <!-- X axis -->\n")
	fmt.Fprintf(&b, "    <line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" class=\"axis\" />\n",
		f(l.MarginLeft), f(axisY), f(axisX), f(axisY))
	for _, tick := range c.DateTicks {
		x := f(tick.X)
		fmt.Fprintf(&b, "    <line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" class=\"grid\" />\n", x, f(l.MarginTop), x, f(axisY))
		fmt.Fprintf(&b, "    <line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" class=\"axis\" />\n", x, f(axisY), x, f(axisY+5))
		fmt.Fprintf(&b, "    <text x=\"%s\" y=\"%s\" text-anchor=\"middle\" class=\"axis-label\">%s</text>\n",
			x, f(axisY+20), tick.Label)
	}
	fmt.Fprintf(&b, "    <text x=\"%s\" y=\"%s\" text-anchor=\"middle\" class=\"axis-label\">Date</text>\n",
		f(l.Width/2), f(l.Height-10))

	b.WriteString("\n    <!-- Data line -->\n")
	points := make([]string, 0, len(c.Points))
	for _, pt := range c.Points {
		points = append(points, f(pt.X)+","+f(pt.Y))
	}
	fmt.Fprintf(&b, "    <polyline points=\"%s\" class=\"chart-line\" />\n", strings.Join(points, " "))

	b.WriteString("\n    <!-- Data points -->\n")
	for _, pt := range c.Points {
		fmt.Fprintf(&b, "    <circle cx=\"%s\" cy=\"%s\" r=\"2\" fill=\"%s\" />\n", f(pt.X), f(pt.Y), p.Line)
	}
	b.WriteString("</svg>\n")
	return b.Bytes()
}

// RenderSVG is Build followed by SVG.
func RenderSVG(samples []Sample, owner, repo string, theme Theme, layout Layout) []byte {
	return Build(samples, owner, repo, theme, layout).SVG()
}
