package levels

import (
	"fmt"

	"github.com/ironsheep/image-patterns-mcp/internal/links"
	"github.com/ironsheep/image-patterns-mcp/internal/sequence"
)

// Scorer scores placing two elements next to each other.
type Scorer interface {
	Between(a, b links.Element) uint64
}

// Grid holds the components of every pixel, once from its row tree and once
// from its column tree.
type Grid struct {
	// Rows is indexed [y][x].
	Rows [][]Side
	// Columns is indexed [x][y].
	Columns [][]Side
}

// Left returns the row left component of (x, y).
func (g *Grid) Left(x, y int) links.Element { return g.Rows[y][x].Source }

// Bottom returns the column bottom component of (x, y).
func (g *Grid) Bottom(x, y int) links.Element { return g.Columns[x][y].Target }

// Depth returns the deeper of the pixel's positions in its row and column
// trees.
func (g *Grid) Depth(x, y int) int {
	return max(g.Rows[y][x].Depth, g.Columns[x][y].Depth)
}

// Builder computes level matrices.
type Builder struct {
	structure sequence.Structure
	scorer    Scorer
}

// NewBuilder creates a builder that reads trees from structure and scores
// neighbouring components with scorer.
func NewBuilder(structure sequence.Structure, scorer Scorer) *Builder {
	return &Builder{structure: structure, scorer: scorer}
}

// Build computes the level matrix for an image whose rows compressed to
// rowRoots (top to bottom) and whose columns compressed to colRoots (left to
// right).
func (b *Builder) Build(rowRoots, colRoots []links.Element) (*Matrix, *Grid, error) {
	width, height := len(colRoots), len(rowRoots)

	grid := &Grid{
		Rows:    make([][]Side, height),
		Columns: make([][]Side, width),
	}
	for y, root := range rowRoots {
		sides, err := Components(b.structure, root, width)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row %d: %w", y, err)
		}
		grid.Rows[y] = sides
	}
	for x, root := range colRoots {
		sides, err := Components(b.structure, root, height)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read column %d: %w", x, err)
		}
		grid.Columns[x] = sides
	}

	m := NewMatrix(width, height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			m.Set(x, y, b.level(grid, x, y))
		}
	}
	return m, grid, nil
}

func (b *Builder) level(g *Grid, x, y int) uint64 {
	topBottom := b.scorer.Between(g.Bottom(x-1, y), g.Bottom(x, y))
	leftRight := b.scorer.Between(g.Left(x, y-1), g.Left(x, y))
	bottomTop := b.scorer.Between(g.Bottom(x, y), g.Bottom(x+1, y))
	rightLeft := b.scorer.Between(g.Left(x, y), g.Left(x, y+1))
	return max(topBottom, leftRight, bottomTop, rightLeft)
}
