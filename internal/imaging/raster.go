package imaging

import (
	"image"
	"sort"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-patterns-mcp/internal/links"
)

// Raster is an image reduced to one symbol per pixel. Two pixels share a
// symbol exactly when their non-premultiplied RGBA values are equal.
type Raster struct {
	width  int
	height int
	pix    []links.Symbol
}

// NewRaster converts img. The origin of the raster is the top-left pixel of
// img regardless of img.Bounds().Min.
func NewRaster(img image.Image) *Raster {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	r := &Raster{
		width:  b.Dx(),
		height: b.Dy(),
		pix:    make([]links.Symbol, b.Dx()*b.Dy()),
	}
	for y := 0; y < r.height; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < r.width; x++ {
			p := row[x*4 : x*4+4]
			r.pix[y*r.width+x] = links.SymbolFromRGBA(p[0], p[1], p[2], p[3])
		}
	}
	return r
}

// Width returns the number of columns.
func (r *Raster) Width() int { return r.width }

// Height returns the number of rows.
func (r *Raster) Height() int { return r.height }

// SymbolAt returns the symbol of pixel (x, y).
func (r *Raster) SymbolAt(x, y int) links.Symbol {
	return r.pix[y*r.width+x]
}

// PaletteEntry is one distinct symbol and how many pixels carry it.
type PaletteEntry struct {
	Symbol links.Symbol `json:"symbol"`
	Pixels int          `json:"pixels"`
}

// Palette returns the distinct symbols, most common first. Ties are ordered
// by symbol value.
func (r *Raster) Palette() []PaletteEntry {
	counts := make(map[links.Symbol]int)
	for _, s := range r.pix {
		counts[s]++
	}
	out := make([]PaletteEntry, 0, len(counts))
	for s, n := range counts {
		out = append(out, PaletteEntry{Symbol: s, Pixels: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pixels != out[j].Pixels {
			return out[i].Pixels > out[j].Pixels
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
