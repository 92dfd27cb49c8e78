package charts

import "strings"

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Themes lists the themes rendered by the chart command, in output order.
var Themes = []Theme{ThemeLight, ThemeDark}

// Palette is the five colors a chart is drawn with, as #rrggbb.
type Palette struct {
	Background string
	Text       string
	Grid       string
	Axis       string
	Line       string
}

var (
	lightPalette = Palette{
		Background: "#ffffff",
		Text:       "#333333",
		Grid:       "#dddddd",
		Axis:       "#666666",
		Line:       "#8884d8",
	}
	darkPalette = Palette{
		Background: "#1a1a1a",
		Text:       "#ffffff",
		Grid:       "#333333",
		Axis:       "#999999",
		Line:       "#bb86fc",
	}
)

// PaletteFor returns the palette of t. Unknown themes get the light palette.
func PaletteFor(t Theme) Palette {
	if t == ThemeDark {
		return darkPalette
	}
	return lightPalette
}

// ParseTheme maps user input to a Theme, falling back to light.
func ParseTheme(s string) Theme {
	if Theme(strings.ToLower(strings.TrimSpace(s))) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// Label is the human name used in console output, e.g. "Dark".
func (t Theme) Label() string {
	if t == ThemeDark {
		return "Dark"
	}
	return "Light"
}
