package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-patterns-mcp/internal/links"
)

// buildTree creates ((1 2) (3 (4 5))) and returns the root with its inner
// links.
func buildTree(t *testing.T, s *links.Store) (root, left, right, inner links.Element) {
	t.Helper()
	e := syms(1, 2, 3, 4, 5)

	l, err := s.CreateOrFind(e[0], e[1])
	require.NoError(t, err)
	in, err := s.CreateOrFind(e[3], e[4])
	require.NoError(t, err)
	r, err := s.CreateOrFind(e[2], links.LinkElement(in))
	require.NoError(t, err)
	top, err := s.CreateOrFind(links.LinkElement(l), links.LinkElement(r))
	require.NoError(t, err)

	return links.LinkElement(top), links.LinkElement(l), links.LinkElement(r), links.LinkElement(in)
}

func TestExpand(t *testing.T) {
	s := links.NewStore()
	root, _, _, _ := buildTree(t, s)

	got, err := Expand(s, root)
	require.NoError(t, err)
	assert.Equal(t, syms(1, 2, 3, 4, 5), got)

	got, err = Expand(s, syms(9)[0])
	require.NoError(t, err)
	assert.Equal(t, syms(9), got)
}

func TestWalk_EnterExitOrder(t *testing.T) {
	s := links.NewStore()
	root, left, right, inner := buildTree(t, s)

	var events []string
	completed, err := Walk(s, root, Visitor{
		Enter: func(e links.Element) { events = append(events, "enter "+e.String()) },
		Exit:  func(e links.Element) { events = append(events, "exit "+e.String()) },
		Leaf: func(leaf links.Element, _ []links.Element) bool {
			events = append(events, "leaf "+leaf.String())
			return true
		},
	})
	require.NoError(t, err)
	assert.True(t, completed)

	leaf := func(v uint32) string { return "leaf " + syms(v)[0].String() }
	assert.Equal(t, []string{
		"enter " + root.String(),
		"enter " + left.String(),
		leaf(1), leaf(2),
		"exit " + left.String(),
		"enter " + right.String(),
		leaf(3),
		"enter " + inner.String(),
		leaf(4), leaf(5),
		"exit " + inner.String(),
		"exit " + right.String(),
		"exit " + root.String(),
	}, events)
}

func TestWalk_LeafPath(t *testing.T) {
	s := links.NewStore()
	root, _, right, inner := buildTree(t, s)

	paths := map[links.Element][]links.Element{}
	_, err := Walk(s, root, Visitor{
		Leaf: func(leaf links.Element, path []links.Element) bool {
			paths[leaf] = append([]links.Element(nil), path...)
			return true
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []links.Element{root, right, inner}, paths[syms(5)[0]])
	assert.Equal(t, []links.Element{root, right}, paths[syms(3)[0]])
}

func TestWalk_DescendFalseTreatsCompositeAsLeaf(t *testing.T) {
	s := links.NewStore()
	root, left, right, _ := buildTree(t, s)

	var leaves []links.Element
	_, err := Walk(s, root, Visitor{
		Descend: func(e links.Element) bool { return e == root },
		Leaf: func(leaf links.Element, _ []links.Element) bool {
			leaves = append(leaves, leaf)
			return true
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []links.Element{left, right}, leaves)
}

func TestFirst_StopsEarly(t *testing.T) {
	s := links.NewStore()
	root, left, _, _ := buildTree(t, s)

	var calls int
	completed, err := Walk(s, root, Visitor{
		Leaf: func(links.Element, []links.Element) bool {
			calls++
			return false
		},
	})
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, 1, calls)

	first, path, err := First(s, root)
	require.NoError(t, err)
	assert.Equal(t, syms(1)[0], first)
	assert.Equal(t, []links.Element{root, left}, path)

	first, path, err = First(s, syms(7)[0])
	require.NoError(t, err)
	assert.Equal(t, syms(7)[0], first)
	assert.Empty(t, path)
}

func TestWalk_CorruptStructure(t *testing.T) {
	s := links.NewStore()

	_, err := Expand(s, links.LinkElement(3))
	assert.ErrorIs(t, err, ErrCorruptStructure)
	assert.ErrorIs(t, err, links.ErrUnknownLink)

	_, err = Walk(s, syms(1)[0], Visitor{})
	assert.Error(t, err)
}
