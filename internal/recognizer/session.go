package recognizer

import (
	"errors"
	"fmt"

	"github.com/ironsheep/image-patterns-mcp/internal/frequency"
	"github.com/ironsheep/image-patterns-mcp/internal/links"
	"github.com/ironsheep/image-patterns-mcp/internal/sequence"
)

var (
	// ErrIndexingOpen is returned when a sequence is compressed before
	// indexing was closed.
	ErrIndexingOpen = errors.New("indexing phase still open")

	// ErrIndexingClosed is returned when a sequence is indexed after
	// indexing was closed.
	ErrIndexingClosed = errors.New("indexing phase closed")
)

// Session owns the accumulated state of one recognition run: the relation
// store and both frequency statistics. Sequences are indexed first; once
// indexing is closed they can be compressed and anchored.
type Session struct {
	store      *links.Store
	counter    *frequency.Counter
	cache      *frequency.Cache
	indexer    *sequence.Indexer
	compressor *sequence.Compressor
	indexed    bool
}

// NewSession creates an empty session. maxLinks caps the store size; 0
// means unlimited.
func NewSession(maxLinks int, opts ...sequence.CompressorOption) *Session {
	store := links.NewStore(links.WithMaxLinks(maxLinks))
	counter := frequency.NewCounter(store)
	cache := frequency.NewCache(store, counter)
	return &Session{
		store:      store,
		counter:    counter,
		cache:      cache,
		indexer:    sequence.NewIndexer(store, cache),
		compressor: sequence.NewCompressor(store, cache, opts...),
	}
}

// Store returns the relation store.
func (s *Session) Store() *links.Store { return s.store }

// Cache returns the pair frequency cache.
func (s *Session) Cache() *frequency.Cache { return s.cache }

// Index records the adjacent pairs of seq.
func (s *Session) Index(seq []links.Element) error {
	if s.indexed {
		return ErrIndexingClosed
	}
	return s.indexer.Index(seq)
}

// CloseIndexing ends the indexing phase.
func (s *Session) CloseIndexing() { s.indexed = true }

// Compress reduces seq to a single element.
func (s *Session) Compress(seq []links.Element) (links.Element, error) {
	if !s.indexed {
		return links.Element{}, ErrIndexingOpen
	}
	return s.compressor.Compress(seq)
}

// Anchor records root as the top of a compressed sequence. It counts as a
// usage of root and adds its expansion to the occurrence statistics.
func (s *Session) Anchor(root links.Element) error {
	if err := s.store.Anchor(root); err != nil {
		return fmt.Errorf("failed to anchor %v: %w", root, err)
	}
	if err := s.counter.Add(root); err != nil {
		return fmt.Errorf("failed to anchor %v: %w", root, err)
	}
	return nil
}

// Expand decompresses a sequence root.
func (s *Session) Expand(root links.Element) ([]links.Element, error) {
	return sequence.Expand(s.store, root)
}
