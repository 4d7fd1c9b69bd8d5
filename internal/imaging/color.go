package imaging

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-patterns-mcp/internal/links"
)

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// SymbolColor describes the colour behind a symbol.
type SymbolColor struct {
	Symbol links.Symbol `json:"symbol"`
	Hex    string       `json:"hex"` // "#RRGGBB", alpha excluded
	Alpha  uint8        `json:"alpha"`
	HSL    HSLColor     `json:"hsl"`
}

// DescribeSymbol converts a symbol to its colour representations.
func DescribeSymbol(s links.Symbol) SymbolColor {
	r, g, b, a := s.RGBA()
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, sat, l := c.Hsl()
	return SymbolColor{
		Symbol: s,
		Hex:    fmt.Sprintf("#%02X%02X%02X", r, g, b),
		Alpha:  a,
		HSL:    HSLColor{H: int(h), S: int(sat * 100), L: int(l * 100)},
	}
}

// PaletteColor is a palette entry with its colour description.
type PaletteColor struct {
	SymbolColor
	Pixels     int     `json:"pixels"`
	Percentage float64 `json:"percentage"` // 0-100
}

// DescribePalette returns up to count palette entries of r, most common
// first. count <= 0 returns all of them.
func DescribePalette(r *Raster, count int) []PaletteColor {
	palette := r.Palette()
	if count > 0 && len(palette) > count {
		palette = palette[:count]
	}
	total := float64(r.Width() * r.Height())
	out := make([]PaletteColor, len(palette))
	for i, p := range palette {
		out[i] = PaletteColor{
			SymbolColor: DescribeSymbol(p.Symbol),
			Pixels:      p.Pixels,
			Percentage:  float64(p.Pixels) / total * 100,
		}
	}
	return out
}
