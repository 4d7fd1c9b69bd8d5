package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Region represents a rectangular region within an image.
//
// Coordinates are relative to the top-left pixel:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Region struct {
	X1 int `json:"x1" yaml:"x1"`
	Y1 int `json:"y1" yaml:"y1"`
	X2 int `json:"x2" yaml:"x2"`
	Y2 int `json:"y2" yaml:"y2"`
}

// Empty reports whether the region covers no pixels.
func (r Region) Empty() bool { return r.X1 >= r.X2 || r.Y1 >= r.Y2 }

// QuadrantRegion returns the named region of a width x height image.
func QuadrantRegion(name string, width, height int) (Region, error) {
	midX, midY := width/2, height/2

	switch name {
	case "top-left":
		return Region{0, 0, midX, midY}, nil
	case "top-right":
		return Region{midX, 0, width, midY}, nil
	case "bottom-left":
		return Region{0, midY, midX, height}, nil
	case "bottom-right":
		return Region{midX, midY, width, height}, nil
	case "top-half":
		return Region{0, 0, width, midY}, nil
	case "bottom-half":
		return Region{0, midY, width, height}, nil
	case "left-half":
		return Region{0, 0, midX, height}, nil
	case "right-half":
		return Region{midX, 0, width, height}, nil
	case "center":
		// Center 50% of the image
		qW, qH := width/4, height/4
		return Region{qW, qH, width - qW, height - qH}, nil
	default:
		return Region{}, fmt.Errorf("unknown region: %s", name)
	}
}

// PrepareOptions selects the part of an image that is analysed.
type PrepareOptions struct {
	// Region crops the image first. Nil means the whole image.
	Region *Region

	// Quadrant crops to a named region; ignored when Region is set.
	Quadrant string

	// MaxDimension downscales so that neither side exceeds it. 0 disables.
	MaxDimension int
}

// Prepare crops and downscales img. Downscaling samples the nearest pixel so
// that no new colours, and therefore no new symbols, are introduced.
func Prepare(img image.Image, opts PrepareOptions) (image.Image, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var region *Region
	switch {
	case opts.Region != nil:
		region = opts.Region
	case opts.Quadrant != "":
		r, err := QuadrantRegion(opts.Quadrant, w, h)
		if err != nil {
			return nil, err
		}
		region = &r
	}

	out := img
	if region != nil {
		if region.X1 < 0 || region.Y1 < 0 || region.X2 > w || region.Y2 > h {
			return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (0,0)-(%d,%d)",
				region.X1, region.Y1, region.X2, region.Y2, w, h)
		}
		if region.Empty() {
			return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
		}
		rect := image.Rect(region.X1, region.Y1, region.X2, region.Y2).Add(bounds.Min)
		out = imaging.Crop(img, rect)
	}

	if opts.MaxDimension > 0 {
		b := out.Bounds()
		if b.Dx() > opts.MaxDimension || b.Dy() > opts.MaxDimension {
			out = imaging.Fit(out, opts.MaxDimension, opts.MaxDimension, imaging.NearestNeighbor)
		}
	}
	return out, nil
}
