package sequence

import (
	"container/heap"
	"errors"
	"fmt"

	"github.com/ironsheep/image-patterns-mcp/internal/frequency"
	"github.com/ironsheep/image-patterns-mcp/internal/links"
)

// ErrEmptySequence is returned when compressing a sequence with no elements.
var ErrEmptySequence = errors.New("empty sequence")

// Merge describes one step of a compression.
type Merge struct {
	// Position is the index, in the original sequence, of the first symbol
	// covered by the merged pair.
	Position int
	Left     links.Element
	Right    links.Element
	Result   links.Element
	Score    uint64
}

// Compressor reduces sequences to single elements by greedy highest-score
// pair merging.
type Compressor struct {
	store  *links.Store
	scorer Scorer
	cache  *frequency.Cache
	trace  func(Merge)
}

// CompressorOption configures a Compressor.
type CompressorOption func(*Compressor)

// WithTrace registers a callback invoked after every merge.
func WithTrace(fn func(Merge)) CompressorOption {
	return func(c *Compressor) {
		c.trace = fn
	}
}

// NewCompressor creates a compressor that scores candidate merges with
// cache.Between and records merges in store.
func NewCompressor(store *links.Store, cache *frequency.Cache, opts ...CompressorOption) *Compressor {
	c := &Compressor{store: store, scorer: cache, cache: cache}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// node is one element of the working sequence.
type node struct {
	elem  links.Element
	pos   int
	prev  *node
	next  *node
	alive bool
}

type candidate struct {
	left  *node
	right *node
	score uint64
}

// candidateHeap orders candidates by score, highest first, then by position,
// leftmost first. Positions of live nodes increase along the working
// sequence, so this is the order a left-to-right rescan would choose.
type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score > h[j].score
	}
	return h[i].left.pos < h[j].left.pos
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x interface{}) { *h = append(*h, x.(candidate)) }

func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Compress reduces seq to a single element. A one-element sequence is
// returned unchanged without touching the store.
//
// The result expands back to seq exactly. Compressing the same sequence
// twice against the same statistics performs the same merges in the same
// order and returns the same element.
func (c *Compressor) Compress(seq []links.Element) (links.Element, error) {
	switch len(seq) {
	case 0:
		return links.Element{}, ErrEmptySequence
	case 1:
		return seq[0], nil
	}

	nodes := make([]*node, len(seq))
	for i, e := range seq {
		nodes[i] = &node{elem: e, pos: i, alive: true}
		if i > 0 {
			nodes[i].prev = nodes[i-1]
			nodes[i-1].next = nodes[i]
		}
	}

	h := make(candidateHeap, 0, 2*len(seq))
	for i := 0; i+1 < len(nodes); i++ {
		h = append(h, c.candidate(nodes[i], nodes[i+1]))
	}
	heap.Init(&h)

	var last *node
	for remaining := len(seq); remaining > 1; remaining-- {
		cand, ok := popLive(&h)
		if !ok {
			return links.Element{}, fmt.Errorf("%w: merge queue drained with %d elements left", ErrCorruptStructure, remaining)
		}
		left, right := cand.left, cand.right

		id, err := c.store.CreateOrFind(left.elem, right.elem)
		if err != nil {
			return links.Element{}, fmt.Errorf("failed to merge at position %d: %w", left.pos, err)
		}
		c.cache.Touch(left.elem, right.elem)

		merged := &node{
			elem:  links.LinkElement(id),
			pos:   left.pos,
			prev:  left.prev,
			next:  right.next,
			alive: true,
		}
		left.alive, right.alive = false, false
		if merged.prev != nil {
			merged.prev.next = merged
			heap.Push(&h, c.candidate(merged.prev, merged))
		}
		if merged.next != nil {
			merged.next.prev = merged
			heap.Push(&h, c.candidate(merged, merged.next))
		}

		if c.trace != nil {
			c.trace(Merge{
				Position: left.pos,
				Left:     left.elem,
				Right:    right.elem,
				Result:   merged.elem,
				Score:    cand.score,
			})
		}
		last = merged
	}
	return last.elem, nil
}

func (c *Compressor) candidate(left, right *node) candidate {
	return candidate{left: left, right: right, score: c.scorer.Between(left.elem, right.elem)}
}

// popLive pops candidates until one whose nodes are still adjacent and alive
// surfaces.
func popLive(h *candidateHeap) (candidate, bool) {
	for h.Len() > 0 {
		cand := heap.Pop(h).(candidate)
		if cand.left.alive && cand.right.alive && cand.left.next == cand.right {
			return cand, true
		}
	}
	return candidate{}, false
}
