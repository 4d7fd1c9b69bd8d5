package frequency

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ironsheep/image-patterns-mcp/internal/links"
)

// Pair is an ordered (source, target) element pair.
type Pair struct {
	Source links.Element
	Target links.Element
}

// PairCount is a pair together with its observed count.
type PairCount struct {
	Pair
	Count uint64
}

// Store is the part of the relation store the cache needs.
type Store interface {
	Resolver
	Search(source, target links.Element) (links.Link, bool)
}

// Cache stores pair frequencies.
type Cache struct {
	mu      sync.RWMutex
	store   Store
	counter *Counter
	counts  map[Pair]uint64
}

// NewCache creates an empty cache. counter supplies the occurrence fallback
// for relations without a direct count; it may be nil.
func NewCache(store Store, counter *Counter) *Cache {
	return &Cache{
		store:   store,
		counter: counter,
		counts:  make(map[Pair]uint64),
	}
}

// Observe increments the count of the ordered pair (source, target).
func (c *Cache) Observe(source, target links.Element) {
	c.mu.Lock()
	c.counts[Pair{Source: source, Target: target}]++
	c.mu.Unlock()
}

// Touch creates a zero entry for (source, target) if none exists.
func (c *Cache) Touch(source, target links.Element) {
	p := Pair{Source: source, Target: target}
	c.mu.Lock()
	if _, ok := c.counts[p]; !ok {
		c.counts[p] = 0
	}
	c.mu.Unlock()
}

// Frequency returns the observed count of (source, target), or 0.
func (c *Cache) Frequency(source, target links.Element) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counts[Pair{Source: source, Target: target}]
}

// FrequencyOf returns the frequency of the pair behind a link. When that
// pair was never observed, it falls back to the number of times the link
// occurs inside anchored sequences.
func (c *Cache) FrequencyOf(id links.Link) (uint64, error) {
	rel, err := c.store.Resolve(id)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve frequency: %w", err)
	}
	if n := c.Frequency(rel.Source, rel.Target); n > 0 {
		return n, nil
	}
	return c.occurrences(links.LinkElement(id)), nil
}

// Between scores placing a next to b. It is the observed count of (a, b) if
// positive; otherwise, if the relation (a, b) already exists, the link's
// occurrence count; otherwise 0. Between never creates links.
func (c *Cache) Between(a, b links.Element) uint64 {
	if n := c.Frequency(a, b); n > 0 {
		return n
	}
	id, ok := c.store.Search(a, b)
	if !ok {
		return 0
	}
	return c.occurrences(links.LinkElement(id))
}

// Len returns the number of pair entries, zero entries included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.counts)
}

// Pairs returns every entry ordered by source then target.
func (c *Cache) Pairs() []PairCount {
	c.mu.RLock()
	out := make([]PairCount, 0, len(c.counts))
	for p, n := range c.counts {
		out = append(out, PairCount{Pair: p, Count: n})
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return elementLess(out[i].Source, out[j].Source)
		}
		return elementLess(out[i].Target, out[j].Target)
	})
	return out
}

func (c *Cache) occurrences(e links.Element) uint64 {
	if c.counter == nil {
		return 0
	}
	return c.counter.Occurrences(e)
}

func elementLess(a, b links.Element) bool {
	if a.Kind() != b.Kind() {
		return a.Kind() < b.Kind()
	}
	return a.Raw() < b.Raw()
}
