package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LevelGrid is a matrix of optional levels.
type LevelGrid interface {
	Width() int
	Height() int
	At(x, y int) (uint64, bool)
	Max() uint64
}

// Ramp endpoints, blended in HCL space.
var (
	rampLow  = colorful.Color{R: 0.07, G: 0.09, B: 0.28}
	rampHigh = colorful.Color{R: 1.0, G: 0.85, B: 0.2}
	unsetRGB = color.NRGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xFF}
)

// HeatmapOptions controls heatmap rendering.
type HeatmapOptions struct {
	// Scale is the size in pixels of one cell. Values below 1 mean 1.
	Scale int

	// Legend draws the maximum level in the top-left corner.
	Legend bool

	// Background, when set, is drawn under the heatmap. It is resized to the
	// heatmap size.
	Background image.Image

	// Opacity of the heatmap over Background, 0-1. 0 means 0.6.
	Opacity float64
}

// HeatmapResult contains a rendered heatmap as PNG.
type HeatmapResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	MaxLevel    uint64 `json:"max_level"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// LevelColor maps a level to the heatmap ramp; top is the largest level in
// the matrix.
func LevelColor(level, top uint64) color.NRGBA {
	t := 0.0
	if top > 0 {
		t = float64(level) / float64(top)
	}
	r, g, b := rampLow.BlendHcl(rampHigh, t).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}
}

// MaxHeatmapSide bounds both sides of a rendered heatmap in pixels.
const MaxHeatmapSide = 8192

// ErrHeatmapTooLarge is returned when the scaled heatmap would exceed
// MaxHeatmapSide.
var ErrHeatmapTooLarge = errors.New("heatmap too large")

// Heatmap renders m with one colour per cell. Unset cells are grey.
func Heatmap(m LevelGrid, opts HeatmapOptions) (image.Image, error) {
	w, h := m.Width(), m.Height()
	top := m.Max()

	scale := opts.Scale
	if scale < 1 {
		scale = 1
	}
	if side := max(w, h); side > 0 && scale > MaxHeatmapSide/side {
		return nil, fmt.Errorf("%w: %dx%d cells at scale %d exceeds %d pixels",
			ErrHeatmapTooLarge, w, h, scale, MaxHeatmapSide)
	}

	cells := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if v, ok := m.At(x, y); ok {
				cells.SetNRGBA(x, y, LevelColor(v, top))
			} else {
				cells.SetNRGBA(x, y, unsetRGB)
			}
		}
	}

	var out *image.RGBA
	if scale == 1 {
		out = image.NewRGBA(cells.Bounds())
		draw.Draw(out, out.Bounds(), cells, image.Point{}, draw.Src)
	} else {
		out = transform.Resize(cells, w*scale, h*scale, transform.NearestNeighbor)
	}

	if opts.Background != nil && w > 0 && h > 0 {
		opacity := opts.Opacity
		if opacity <= 0 {
			opacity = 0.6
		}
		bg := transform.Resize(opts.Background, out.Bounds().Dx(), out.Bounds().Dy(), transform.NearestNeighbor)
		out = blend.Opacity(bg, out, opacity)
	}

	if opts.Legend {
		drawLegend(out, fmt.Sprintf("max %d", top))
	}
	return out, nil
}

// EncodeHeatmap renders m and encodes it as base64 PNG.
func EncodeHeatmap(m LevelGrid, opts HeatmapOptions) (*HeatmapResult, error) {
	img, err := Heatmap(m, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode heatmap: %w", err)
	}

	return &HeatmapResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		MaxLevel:    m.Max(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// SaveHeatmap renders m and writes it to path as PNG.
func SaveHeatmap(path string, m LevelGrid, opts HeatmapOptions) error {
	img, err := Heatmap(m, opts)
	if err != nil {
		return err
	}
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save heatmap: %w", err)
	}
	return nil
}

// drawLegend writes text at the top-left corner on a dark box, clipped to
// the image.
func drawLegend(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	box := image.Rect(0, 0, len(text)*face.Advance+4, face.Height+2).Intersect(img.Bounds())
	draw.Draw(img, box, image.NewUniform(color.RGBA{0, 0, 0, 180}), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(2, face.Ascent+1),
	}
	d.DrawString(text)
}
