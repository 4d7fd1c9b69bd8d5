package levels

import (
	"fmt"

	"github.com/ironsheep/image-patterns-mcp/internal/links"
	"github.com/ironsheep/image-patterns-mcp/internal/sequence"
)

// Side holds the two sides of the relation directly above a pixel in its
// row or column tree.
type Side struct {
	Source links.Element `json:"source"`
	Target links.Element `json:"target"`
	// Depth is the number of composites enclosing the pixel.
	Depth int `json:"depth"`
}

// Components walks the tree rooted at root and returns one Side per leaf.
// n is the expected sequence length; any other leaf count means the tree
// does not belong to that sequence.
func Components(s sequence.Structure, root links.Element, n int) ([]Side, error) {
	sides := make([]Side, 0, n)
	parents := make(map[links.Element]links.Relation)

	var resolveErr error
	_, err := sequence.Walk(s, root, sequence.Visitor{
		Leaf: func(leaf links.Element, path []links.Element) bool {
			if len(path) == 0 {
				sides = append(sides, Side{Source: leaf, Target: leaf})
				return true
			}
			parent := path[len(path)-1]
			rel, ok := parents[parent]
			if !ok {
				id, _ := parent.Link()
				r, err := s.Resolve(id)
				if err != nil {
					resolveErr = err
					return false
				}
				parents[parent] = r
				rel = r
			}
			sides = append(sides, Side{Source: rel.Source, Target: rel.Target, Depth: len(path)})
			return true
		},
	})
	if err != nil {
		return nil, err
	}
	if resolveErr != nil {
		return nil, fmt.Errorf("%w: %v: %w", sequence.ErrCorruptStructure, root, resolveErr)
	}
	if len(sides) != n {
		return nil, fmt.Errorf("%w: %v expands to %d elements, want %d", sequence.ErrCorruptStructure, root, len(sides), n)
	}
	return sides, nil
}
