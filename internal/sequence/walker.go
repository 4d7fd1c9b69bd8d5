package sequence

import (
	"errors"
	"fmt"

	"github.com/ironsheep/image-patterns-mcp/internal/links"
)

// ErrCorruptStructure is returned when a compressed tree references a link
// that is neither a leaf nor resolvable to two components.
var ErrCorruptStructure = errors.New("corrupt sequence structure")

// Structure exposes the tree shape of compressed sequences.
type Structure interface {
	IsLeaf(e links.Element) (bool, error)
	Resolve(id links.Link) (links.Relation, error)
}

// Visitor receives walk events. Leaf is required; the rest are optional.
type Visitor struct {
	// Enter is called before descending into a composite.
	Enter func(e links.Element)

	// Exit is called after both halves of a composite were walked.
	Exit func(e links.Element)

	// Descend decides whether to open a composite. A composite that is not
	// opened is reported to Leaf as a single element. Nil means always.
	Descend func(e links.Element) bool

	// Leaf is called for every leaf with the path of composites enclosing it,
	// outermost first. The path slice is reused; copy it to keep it.
	// Returning false stops the walk.
	Leaf func(leaf links.Element, path []links.Element) bool
}

type frame struct {
	elem  links.Element
	rel   links.Relation
	state uint8
}

// Walk traverses the tree rooted at root depth-first, left to right. It
// reports whether the walk ran to completion, false meaning Leaf stopped it.
func Walk(s Structure, root links.Element, v Visitor) (bool, error) {
	if v.Leaf == nil {
		return false, errors.New("walk requires a leaf callback")
	}

	var (
		stack []frame
		path  []links.Element
	)

	// visit reports a leaf or opens a composite; false means stop.
	visit := func(e links.Element) (bool, error) {
		leaf, err := s.IsLeaf(e)
		if err != nil {
			return false, fmt.Errorf("%w: %v: %w", ErrCorruptStructure, e, err)
		}
		if leaf || (v.Descend != nil && !v.Descend(e)) {
			return v.Leaf(e, path), nil
		}
		id, _ := e.Link()
		rel, err := s.Resolve(id)
		if err != nil {
			return false, fmt.Errorf("%w: %v: %w", ErrCorruptStructure, e, err)
		}
		if v.Enter != nil {
			v.Enter(e)
		}
		path = append(path, e)
		stack = append(stack, frame{elem: e, rel: rel})
		return true, nil
	}

	if ok, err := visit(root); err != nil || !ok {
		return false, err
	}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		var next links.Element
		switch top.state {
		case 0:
			top.state = 1
			next = top.rel.Source
		case 1:
			top.state = 2
			next = top.rel.Target
		default:
			e := top.elem
			stack = stack[:len(stack)-1]
			path = path[:len(path)-1]
			if v.Exit != nil {
				v.Exit(e)
			}
			continue
		}
		if ok, err := visit(next); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Expand fully decompresses the tree rooted at root.
func Expand(s Structure, root links.Element) ([]links.Element, error) {
	var out []links.Element
	_, err := Walk(s, root, Visitor{
		Leaf: func(leaf links.Element, _ []links.Element) bool {
			out = append(out, leaf)
			return true
		},
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// First returns the outermost-left leaf of root and a copy of the path of
// composites enclosing it, without walking the rest of the tree.
func First(s Structure, root links.Element) (links.Element, []links.Element, error) {
	var (
		first links.Element
		trail []links.Element
	)
	_, err := Walk(s, root, Visitor{
		Leaf: func(leaf links.Element, path []links.Element) bool {
			first = leaf
			trail = append([]links.Element(nil), path...)
			return false
		},
	})
	if err != nil {
		return links.Element{}, nil, err
	}
	return first, trail, nil
}
