package detection

import (
	"fmt"
	"sort"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge (exclusive)
	Y2 int `json:"y2"` // Bottom edge (exclusive)
}

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// LevelGrid is a matrix of optional levels.
type LevelGrid interface {
	Width() int
	Height() int
	At(x, y int) (uint64, bool)
	Max() uint64
}

// Hotspot is a connected region of pixels whose level reaches the threshold.
type Hotspot struct {
	// Bounds is the bounding box enclosing the region.
	Bounds Bounds `json:"bounds"`

	// Peak is the location of the highest level in the region, the first one
	// in row-major order on ties.
	Peak Point `json:"peak"`

	// Area is the number of pixels in the region.
	Area int `json:"area"`

	// MaxLevel and MeanLevel summarize the levels inside the region.
	MaxLevel  uint64  `json:"max_level"`
	MeanLevel float64 `json:"mean_level"`
}

// HotspotsResult contains all hotspots found in a level matrix.
type HotspotsResult struct {
	// Hotspots is sorted by MaxLevel, then Area, both descending, then by
	// position.
	Hotspots []Hotspot `json:"hotspots"`

	// Count is the number of hotspots.
	Count int `json:"count"`

	// Threshold is the level a pixel had to reach, after defaulting.
	Threshold uint64 `json:"threshold"`
}

// DefaultThreshold returns three quarters of the largest level, rounded up,
// and at least 1.
func DefaultThreshold(m LevelGrid) uint64 {
	t := (3*m.Max() + 3) / 4
	if t < 1 {
		t = 1
	}
	return t
}

// DetectHotspots finds regions of elevated level.
//
// Parameters:
//   - m: The level matrix. Unset cells never belong to a hotspot.
//   - threshold: Minimum level for a pixel to count. 0 selects
//     DefaultThreshold.
//   - minArea: Regions with fewer pixels are dropped.
//
// Returns:
//   - *HotspotsResult: The hotspots, strongest first.
//   - error: Non-nil if minArea is negative.
//
// # Algorithm
//
//  1. Thresholding: Mark every set cell with level >= threshold
//  2. Region Finding: Use flood-fill to group 8-connected marked cells
//  3. Filtering: Remove regions below minArea
//  4. Summary: Bounding box, peak and mean level per region
func DetectHotspots(m LevelGrid, threshold uint64, minArea int) (*HotspotsResult, error) {
	if minArea < 0 {
		return nil, fmt.Errorf("minArea must be non-negative, got %d", minArea)
	}
	if threshold == 0 {
		threshold = DefaultThreshold(m)
	}

	width, height := m.Width(), m.Height()
	hot := make([][]bool, height)
	for y := 0; y < height; y++ {
		hot[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			if v, ok := m.At(x, y); ok && v >= threshold {
				hot[y][x] = true
			}
		}
	}

	hotspots := make([]Hotspot, 0)
	for _, region := range findRegions(hot, width, height) {
		if len(region) < minArea {
			continue
		}
		hotspots = append(hotspots, summarize(m, region))
	}

	sort.Slice(hotspots, func(i, j int) bool {
		a, b := hotspots[i], hotspots[j]
		if a.MaxLevel != b.MaxLevel {
			return a.MaxLevel > b.MaxLevel
		}
		if a.Area != b.Area {
			return a.Area > b.Area
		}
		if a.Bounds.Y1 != b.Bounds.Y1 {
			return a.Bounds.Y1 < b.Bounds.Y1
		}
		return a.Bounds.X1 < b.Bounds.X1
	})

	return &HotspotsResult{
		Hotspots:  hotspots,
		Count:     len(hotspots),
		Threshold: threshold,
	}, nil
}

func summarize(m LevelGrid, region []Point) Hotspot {
	h := Hotspot{
		Bounds: Bounds{X1: region[0].X, Y1: region[0].Y, X2: region[0].X + 1, Y2: region[0].Y + 1},
		Area:   len(region),
	}
	var sum float64
	first := true
	for _, p := range region {
		h.Bounds.X1 = min(h.Bounds.X1, p.X)
		h.Bounds.Y1 = min(h.Bounds.Y1, p.Y)
		h.Bounds.X2 = max(h.Bounds.X2, p.X+1)
		h.Bounds.Y2 = max(h.Bounds.Y2, p.Y+1)

		v, _ := m.At(p.X, p.Y)
		sum += float64(v)
		if first || v > h.MaxLevel || (v == h.MaxLevel && before(p, h.Peak)) {
			h.MaxLevel, h.Peak = v, p
			first = false
		}
	}
	h.MeanLevel = sum / float64(len(region))
	return h
}

// before reports whether a precedes b in row-major order.
func before(a, b Point) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// findRegions groups marked cells into 8-connected regions, scanning in
// row-major order.
func findRegions(marked [][]bool, width, height int) [][]Point {
	visited := make([][]bool, height)
	for y := 0; y < height; y++ {
		visited[y] = make([]bool, width)
	}

	regions := make([][]Point, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if marked[y][x] && !visited[y][x] {
				region := make([]Point, 0)
				floodFill(marked, visited, x, y, width, height, &region)
				regions = append(regions, region)
			}
		}
	}
	return regions
}

// floodFill performs iterative flood-fill from a starting point, marking
// visited cells and appending them to region. Uses 8-connectivity.
func floodFill(marked, visited [][]bool, startX, startY, width, height int, region *[]Point) {
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !marked[p.Y][p.X] {
			continue
		}

		visited[p.Y][p.X] = true
		*region = append(*region, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
}
