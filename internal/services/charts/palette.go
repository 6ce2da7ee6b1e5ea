package charts

import (
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
)

// tab20 palette, assigned in order of first appearance.
var tab20 = []models.Color{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 174, G: 199, B: 232, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 255, G: 187, B: 120, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 152, G: 223, B: 138, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 255, G: 152, B: 150, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
	{R: 197, G: 176, B: 213, A: 255},
	{R: 140, G: 86, B: 75, A: 255},
	{R: 196, G: 156, B: 148, A: 255},
	{R: 227, G: 119, B: 194, A: 255},
	{R: 247, G: 182, B: 210, A: 255},
	{R: 127, G: 127, B: 127, A: 255},
	{R: 199, G: 199, B: 199, A: 255},
	{R: 188, G: 189, B: 34, A: 255},
	{R: 219, G: 219, B: 141, A: 255},
	{R: 23, G: 190, B: 207, A: 255},
	{R: 158, G: 218, B: 229, A: 255},
}

// Fixed colours for non-salesperson series.
var (
	colorRevenue  = models.Color{R: 31, G: 119, B: 180, A: 255}
	colorProfit   = models.Color{R: 44, G: 160, B: 44, A: 255}
	colorDiscount = models.Color{R: 255, G: 127, B: 14, A: 255}
	colorReturn   = models.Color{R: 214, G: 39, B: 40, A: 255}
	colorIPCA     = models.Color{R: 148, G: 103, B: 189, A: 255}
	colorSELIC    = models.Color{R: 23, G: 190, B: 207, A: 255}
	colorUnknown  = models.Color{R: 127, G: 127, B: 127, A: 255}
)

// ColorMap assigns one stable colour per entity for a whole run.
type ColorMap struct {
	colors map[string]models.Color
}

// NewColorMap assigns palette colours to names in order; the palette wraps
// when there are more names than colours.
func NewColorMap(names []string) ColorMap {
	m := ColorMap{colors: make(map[string]models.Color, len(names))}
	for _, name := range names {
		if _, ok := m.colors[name]; ok {
			continue
		}
		m.colors[name] = tab20[len(m.colors)%len(tab20)]
	}
	return m
}

// Color returns the colour of name, grey when unknown.
func (m ColorMap) Color(name string) models.Color {
	if c, ok := m.colors[name]; ok {
		return c
	}
	return colorUnknown
}

// paletteColor picks the i-th palette colour for categorical charts.
func paletteColor(i int) models.Color {
	return tab20[(i*2)%len(tab20)]
}
