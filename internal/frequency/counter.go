package frequency

import (
	"fmt"
	"sync"

	"github.com/ironsheep/image-patterns-mcp/internal/links"
)

// Resolver resolves links to their relations.
type Resolver interface {
	Resolve(id links.Link) (links.Relation, error)
}

// Counter counts occurrences of elements inside anchored sequences.
//
// Every call to Add walks the full expansion of one root and increments each
// node it passes, so an element that appears three times in one row gains
// three. The walk touches 2N-1 nodes for a root covering N symbols.
type Counter struct {
	mu          sync.RWMutex
	resolver    Resolver
	occurrences map[links.Element]uint64
}

// NewCounter creates an empty counter reading structure from resolver.
func NewCounter(resolver Resolver) *Counter {
	return &Counter{
		resolver:    resolver,
		occurrences: make(map[links.Element]uint64),
	}
}

// Add counts every node in the expansion of root, root included.
func (c *Counter) Add(root links.Element) error {
	if !root.IsValid() {
		return fmt.Errorf("failed to count occurrences: %w: %v", links.ErrInvalidElement, root)
	}

	// Resolve first so a corrupt tree leaves the counts untouched.
	seen := make(map[links.Element]uint64)
	stack := []links.Element{root}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		seen[e]++

		id, ok := e.Link()
		if !ok {
			continue
		}
		rel, err := c.resolver.Resolve(id)
		if err != nil {
			return fmt.Errorf("failed to count occurrences: %w", err)
		}
		stack = append(stack, rel.Target, rel.Source)
	}

	c.mu.Lock()
	for e, n := range seen {
		c.occurrences[e] += n
	}
	c.mu.Unlock()
	return nil
}

// Occurrences returns how many times e occurs inside anchored sequences.
func (c *Counter) Occurrences(e links.Element) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.occurrences[e]
}
