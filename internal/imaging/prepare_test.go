package imaging

import (
	"image/color"
	"strings"
	"testing"

	"github.com/ironsheep/image-patterns-mcp/internal/links"
)

func TestPrepare_NoOptions(t *testing.T) {
	img := createPatternImage(40, 30)

	out, err := Prepare(img, PrepareOptions{})
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if out != img {
		t.Error("Prepare without options should return the input image")
	}
}

func TestPrepare_Region(t *testing.T) {
	img := createPatternImage(100, 100)

	out, err := Prepare(img, PrepareOptions{Region: &Region{X1: 60, Y1: 10, X2: 90, Y2: 30}})
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	b := out.Bounds()
	if b.Dx() != 30 || b.Dy() != 20 {
		t.Errorf("dimensions: got %dx%d, want 30x20", b.Dx(), b.Dy())
	}

	// Entirely inside the green quadrant
	r := NewRaster(out)
	if got := r.SymbolAt(0, 0); got != links.SymbolFromRGBA(0, 255, 0, 255) {
		t.Errorf("cropped content: got %v, want green", got)
	}
}

func TestPrepare_RegionErrors(t *testing.T) {
	img := createPatternImage(100, 100)

	tests := []struct {
		name   string
		region Region
		errMsg string
	}{
		{"x2 past edge", Region{0, 0, 150, 50}, "outside image bounds"},
		{"negative", Region{-1, 0, 50, 50}, "outside image bounds"},
		{"inverted", Region{50, 50, 10, 10}, "invalid crop region"},
		{"zero width", Region{10, 10, 10, 20}, "invalid crop region"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region := tt.region
			_, err := Prepare(img, PrepareOptions{Region: &region})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error %q should contain %q", err, tt.errMsg)
			}
		})
	}
}

func TestQuadrantRegion(t *testing.T) {
	tests := []struct {
		name string
		want Region
	}{
		{"top-left", Region{0, 0, 50, 40}},
		{"top-right", Region{50, 0, 100, 40}},
		{"bottom-left", Region{0, 40, 50, 80}},
		{"bottom-right", Region{50, 40, 100, 80}},
		{"top-half", Region{0, 0, 100, 40}},
		{"bottom-half", Region{0, 40, 100, 80}},
		{"left-half", Region{0, 0, 50, 80}},
		{"right-half", Region{50, 0, 100, 80}},
		{"center", Region{25, 20, 75, 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QuadrantRegion(tt.name, 100, 80)
			if err != nil {
				t.Fatalf("QuadrantRegion failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := QuadrantRegion("middle-ish", 100, 80); err == nil {
		t.Error("unknown region should fail")
	}
}

func TestPrepare_Quadrant(t *testing.T) {
	img := createPatternImage(100, 100)

	out, err := Prepare(img, PrepareOptions{Quadrant: "bottom-right"})
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	r := NewRaster(out)
	if len(r.Palette()) != 1 {
		t.Errorf("bottom-right quadrant should be a single color, got %d", len(r.Palette()))
	}
	if got := r.SymbolAt(0, 0); got != links.SymbolFromRGBA(255, 255, 255, 255) {
		t.Errorf("quadrant content: got %v, want white", got)
	}

	if _, err := Prepare(img, PrepareOptions{Quadrant: "nowhere"}); err == nil {
		t.Error("unknown quadrant should fail")
	}
}

func TestPrepare_MaxDimensionKeepsPalette(t *testing.T) {
	img := createPatternImage(200, 100)

	out, err := Prepare(img, PrepareOptions{MaxDimension: 50})
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	b := out.Bounds()
	if b.Dx() != 50 || b.Dy() != 25 {
		t.Errorf("dimensions: got %dx%d, want 50x25", b.Dx(), b.Dy())
	}

	// Nearest-neighbour sampling introduces no blended colours.
	if got := len(NewRaster(out).Palette()); got != 4 {
		t.Errorf("palette size after downscale: got %d, want 4", got)
	}
}

func TestPrepare_MaxDimensionSmallImage(t *testing.T) {
	img := createInMemoryImage(20, 10, color.NRGBA{1, 2, 3, 255})

	out, err := Prepare(img, PrepareOptions{MaxDimension: 64})
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if out != img {
		t.Error("images within the limit should not be resampled")
	}
}
