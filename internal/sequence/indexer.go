package sequence

import (
	"fmt"

	"github.com/ironsheep/image-patterns-mcp/internal/frequency"
	"github.com/ironsheep/image-patterns-mcp/internal/links"
)

// Indexer records adjacent-pair statistics for raw sequences.
type Indexer struct {
	store *links.Store
	cache *frequency.Cache
}

// NewIndexer creates an indexer writing to store and cache.
func NewIndexer(store *links.Store, cache *frequency.Cache) *Indexer {
	return &Indexer{store: store, cache: cache}
}

// Index creates (or finds) the relation for every adjacent pair of seq and
// counts one observation of it. Sequences shorter than two elements
// contribute nothing.
func (ix *Indexer) Index(seq []links.Element) error {
	for i := 1; i < len(seq); i++ {
		id, err := ix.store.CreateOrFind(seq[i-1], seq[i])
		if err != nil {
			return fmt.Errorf("failed to index pair at position %d: %w", i-1, err)
		}
		rel, err := ix.store.Resolve(id)
		if err != nil {
			return fmt.Errorf("failed to index pair at position %d: %w", i-1, err)
		}
		ix.cache.Observe(rel.Source, rel.Target)
	}
	return nil
}

// Scorer scores placing two elements next to each other.
type Scorer interface {
	Between(a, b links.Element) uint64
}

// LocalLevels returns, for each position of seq, the larger score of the
// pairs it forms with its left and right neighbours. The first and last
// positions have a single neighbour; a one-element sequence has level 0.
func LocalLevels(scorer Scorer, seq []links.Element) []uint64 {
	levels := make([]uint64, len(seq))
	if len(seq) < 2 {
		return levels
	}
	pairs := make([]uint64, len(seq)-1)
	for i := range pairs {
		pairs[i] = scorer.Between(seq[i], seq[i+1])
	}
	levels[0] = pairs[0]
	levels[len(seq)-1] = pairs[len(pairs)-1]
	for i := 1; i < len(seq)-1; i++ {
		levels[i] = max(pairs[i-1], pairs[i])
	}
	return levels
}
