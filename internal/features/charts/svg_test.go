package charts

import (
	"bytes"
	"encoding/xml"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type svgElement struct {
	Name  string
	Attrs map[string]string
	Text  string
}

// parseSVG decodes doc and returns every element in document order.
func parseSVG(t *testing.T, doc []byte) []svgElement {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(doc))
	var (
		elements []svgElement
		stack    []int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err, "svg must be well-formed XML")
		switch tok := tok.(type) {
		case xml.StartElement:
			el := svgElement{Name: tok.Name.Local, Attrs: map[string]string{}}
			for _, a := range tok.Attr {
				el.Attrs[a.Name.Local] = a.Value
			}
			elements = append(elements, el)
			stack = append(stack, len(elements)-1)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				elements[stack[len(stack)-1]].Text += string(tok)
			}
		}
	}
	require.Empty(t, stack)
	return elements
}

func byName(elements []svgElement, name string) []svgElement {
	var out []svgElement
	for _, el := range elements {
		if el.Name == name {
			out = append(out, el)
		}
	}
	return out
}

func TestRenderSVGTwoSamples(t *testing.T) {
	samples := []Sample{sample(1700000000, 10), sample(1705000000, 50)}
	for _, theme := range Themes {
		t.Run(string(theme), func(t *testing.T) {
			elements := parseSVG(t, RenderSVG(samples, "owner", "repo", theme, DefaultLayout()))

			require.Equal(t, "svg", elements[0].Name)
			assert.Equal(t, "800", elements[0].Attrs["width"])
			assert.Equal(t, "400", elements[0].Attrs["height"])

			var title []svgElement
			for _, el := range byName(elements, "text") {
				if el.Attrs["class"] == "title" {
					title = append(title, el)
				}
			}
			require.Len(t, title, 1)
			assert.Equal(t, "owner/repo Release Stats: Total Downloads", title[0].Text)
			assert.Equal(t, "400", title[0].Attrs["x"])

			polylines := byName(elements, "polyline")
			require.Len(t, polylines, 1)
			assert.Equal(t, "40,280 730,40", polylines[0].Attrs["points"])
			assert.Len(t, strings.Fields(polylines[0].Attrs["points"]), 2)

			circles := byName(elements, "circle")
			require.Len(t, circles, 2)
			for _, c := range circles {
				assert.Equal(t, "2", c.Attrs["r"])
				assert.Equal(t, PaletteFor(theme).Line, c.Attrs["fill"])
			}

			style := byName(elements, "style")
			require.Len(t, style, 1)
			assert.Contains(t, style[0].Text, ".chart-line { fill: none; stroke: "+PaletteFor(theme).Line)
			assert.Contains(t, style[0].Text, ".chart-bg { fill: "+PaletteFor(theme).Background)
		})
	}
}

func TestRenderSVGTicks(t *testing.T) {
	elements := parseSVG(t, RenderSVG([]Sample{sample(1600000000, 0), sample(1700000000, 2_000_000)}, "o", "r", ThemeLight, DefaultLayout()))

	var grid, labels []svgElement
	for _, el := range elements {
		switch {
		case el.Name == "line" && el.Attrs["class"] == "grid":
			grid = append(grid, el)
		case el.Name == "text" && el.Attrs["class"] == "axis-label":
			labels = append(labels, el)
		}
	}

	var horizontal, vertical int
	for _, g := range grid {
		if g.Attrs["y1"] == g.Attrs["y2"] {
			horizontal++
			assert.Equal(t, "40", g.Attrs["x1"])
			assert.Equal(t, "730", g.Attrs["x2"])
		} else {
			vertical++
		}
	}
	assert.Equal(t, 5, horizontal)
	assert.Equal(t, 7, vertical) // 2020-09-13 .. 2023-09-13 every 6 months

	var texts []string
	for _, l := range labels {
		texts = append(texts, l.Text)
	}
	assert.Subset(t, texts, []string{"0", "500.0K", "1.0M", "1.5M", "2.0M", "2020-09-13", "2023-09-13", "Total Downloads", "Date"})
}

func TestRenderSVGRightAxis(t *testing.T) {
	elements := parseSVG(t, RenderSVG([]Sample{sample(1600000000, 1), sample(1700000000, 2)}, "o", "r", ThemeLight, DefaultLayout()))
	axes := 0
	for _, el := range byName(elements, "line") {
		if el.Attrs["class"] == "axis" && el.Attrs["x1"] == "730" && el.Attrs["x2"] == "730" {
			assert.Equal(t, "40", el.Attrs["y1"])
			assert.Equal(t, "340", el.Attrs["y2"])
			axes++
		}
	}
	assert.Equal(t, 1, axes)
}

func TestRenderSVGDarkUsesDarkLineColorOnly(t *testing.T) {
	doc := string(RenderSVG([]Sample{sample(1700000000, 10), sample(1705000000, 50)}, "o", "r", ThemeDark, DefaultLayout()))
	assert.Contains(t, doc, `fill="#bb86fc"`)
	assert.NotContains(t, doc, "#8884d8")

	other := string(RenderSVG([]Sample{sample(1700000000, 10)}, "o", "r", Theme("neon"), DefaultLayout()))
	assert.Contains(t, other, `fill="#8884d8"`)
	assert.NotContains(t, other, "#bb86fc")
}

func TestRenderSVGEmptyIsWellFormed(t *testing.T) {
	for _, theme := range Themes {
		doc := RenderSVG(nil, "owner", "repo", theme, DefaultLayout())
		assert.NotContains(t, string(doc), "NaN")
		assert.NotContains(t, string(doc), "Inf")

		elements := parseSVG(t, doc)
		polylines := byName(elements, "polyline")
		require.Len(t, polylines, 1)
		assert.Equal(t, "", polylines[0].Attrs["points"])
		assert.Empty(t, byName(elements, "circle"))
	}
}

func TestRenderSVGEscapesTitle(t *testing.T) {
	elements := parseSVG(t, RenderSVG(nil, "a&b", "<repo>", ThemeLight, DefaultLayout()))
	for _, el := range byName(elements, "text") {
		if el.Attrs["class"] == "title" {
			assert.Equal(t, "a&b/<repo> Release Stats: Total Downloads", el.Text)
		}
	}
}

func TestRenderSVGIsDeterministic(t *testing.T) {
	samples := []Sample{sample(1600000000, 3), sample(1650000000, 30), sample(1700000000, 300)}
	assert.Equal(t, RenderSVG(samples, "o", "r", ThemeLight, DefaultLayout()), RenderSVG(samples, "o", "r", ThemeLight, DefaultLayout()))
}

func TestWritePNG(t *testing.T) {
	for _, samples := range [][]Sample{nil, {sample(1700000000, 10), sample(1705000000, 50)}} {
		data, err := Build(samples, "o", "r", ThemeDark, DefaultLayout()).PNG()
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 800, img.Bounds().Dx())
		assert.Equal(t, 400, img.Bounds().Dy())

		r, g, b, _ := img.At(1, 399).RGBA()
		assert.Equal(t, [3]uint32{0x1a, 0x1a, 0x1a}, [3]uint32{r >> 8, g >> 8, b >> 8})
	}
}
