package links

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnknownLink is returned when a link id was never issued by the store.
	ErrUnknownLink = errors.New("unknown link")

	// ErrInvalidElement is returned for zero or wildcard elements where a
	// concrete symbol or link is required.
	ErrInvalidElement = errors.New("invalid element")

	// ErrCapacityExceeded is returned when creating a link would grow the
	// store past its configured limit.
	ErrCapacityExceeded = errors.New("link capacity exceeded")
)

// Relation is the ordered (source, target) pair behind a link.
type Relation struct {
	Source Element `json:"source"`
	Target Element `json:"target"`
}

// Query selects relations by source and target. Either side may be Any.
type Query struct {
	Source Element
	Target Element
}

// AnyQuery matches every relation in the store.
var AnyQuery = Query{Source: Any, Target: Any}

// Store is an append-only, deduplicating relation store.
//
// Every (source, target) pair maps to exactly one Link. The store also keeps
// a reverse index from each element to the links that reference it, which
// makes usage counts and wildcard queries proportional to the number of
// matches rather than to the size of the store.
type Store struct {
	mu        sync.RWMutex
	relations []Relation
	index     map[Relation]Link
	usages    map[Element][]Link
	anchors   map[Element]uint64
	maxLinks  int
}

// Option configures a Store.
type Option func(*Store)

// WithMaxLinks limits how many links the store may hold. Zero or a negative
// value means unlimited.
func WithMaxLinks(n int) Option {
	return func(s *Store) {
		s.maxLinks = n
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		index:   make(map[Relation]Link),
		usages:  make(map[Element][]Link),
		anchors: make(map[Element]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrFind returns the link for (source, target), creating it on first
// request. The same pair always yields the same link.
//
// # Errors
//
//   - ErrInvalidElement if either side is the zero element or Any
//   - ErrUnknownLink if either side references a link this store never issued
//   - ErrCapacityExceeded if a new link would exceed the configured limit
func (s *Store) CreateOrFind(source, target Element) (Link, error) {
	rel := Relation{Source: source, Target: target}

	s.mu.RLock()
	id, ok := s.index[rel]
	s.mu.RUnlock()
	if ok {
		return id, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.index[rel]; ok {
		return id, nil
	}
	if err := s.checkLocked(source); err != nil {
		return 0, err
	}
	if err := s.checkLocked(target); err != nil {
		return 0, err
	}
	if s.maxLinks > 0 && len(s.relations) >= s.maxLinks {
		return 0, fmt.Errorf("%w: limit %d reached creating %v->%v", ErrCapacityExceeded, s.maxLinks, source, target)
	}

	s.relations = append(s.relations, rel)
	id = Link(len(s.relations))
	s.index[rel] = id
	s.usages[source] = append(s.usages[source], id)
	if target != source {
		s.usages[target] = append(s.usages[target], id)
	}
	return id, nil
}

// Search returns the link for (source, target) without creating it.
func (s *Store) Search(source, target Element) (Link, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.index[Relation{Source: source, Target: target}]
	return id, ok
}

// Resolve returns the relation behind a link.
func (s *Store) Resolve(id Link) (Relation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id == 0 || uint64(id) > uint64(len(s.relations)) {
		return Relation{}, fmt.Errorf("%w: %v", ErrUnknownLink, id)
	}
	return s.relations[id-1], nil
}

// IsLeaf reports whether e is atomic. Symbols are leaves; links issued by this
// store are composites.
func (s *Store) IsLeaf(e Element) (bool, error) {
	switch e.Kind() {
	case SymbolKind:
		return true, nil
	case LinkKind:
		s.mu.RLock()
		defer s.mu.RUnlock()
		if err := s.checkLocked(e); err != nil {
			return false, err
		}
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrInvalidElement, e)
	}
}

// Len returns the number of links in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.relations)
}

// Anchor records e as the root of one complete sequence. Each anchor counts
// as one usage of e.
func (s *Store) Anchor(e Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(e); err != nil {
		return err
	}
	s.anchors[e]++
	return nil
}

// Anchors returns how many times e was anchored as a sequence root.
func (s *Store) Anchors(e Element) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.anchors[e]
}

// CountUsages returns the number of links referencing e as source or target
// (a link referencing it on both sides counts once), plus its anchors.
func (s *Store) CountUsages(e Element) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.usages[e])) + s.anchors[e]
}

// Count returns the number of relations matching q.
func (s *Store) Count(q Query) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if q.Source.IsAny() && q.Target.IsAny() {
		return uint64(len(s.relations))
	}
	var n uint64
	for _, id := range s.candidatesLocked(q) {
		if s.matchesLocked(id, q) {
			n++
		}
	}
	return n
}

// Each calls visit for every relation matching q in ascending id order until
// visit returns false. It reports whether the enumeration ran to completion.
//
// The matching ids are collected before the first callback, so visit may call
// back into the store, including CreateOrFind. Links created during the
// enumeration are not visited.
func (s *Store) Each(q Query, visit func(Link, Relation) bool) bool {
	s.mu.RLock()
	var ids []Link
	if q.Source.IsAny() && q.Target.IsAny() {
		ids = make([]Link, len(s.relations))
		for i := range s.relations {
			ids[i] = Link(i + 1)
		}
	} else {
		for _, id := range s.candidatesLocked(q) {
			if s.matchesLocked(id, q) {
				ids = append(ids, id)
			}
		}
	}
	rels := make([]Relation, len(ids))
	for i, id := range ids {
		rels[i] = s.relations[id-1]
	}
	s.mu.RUnlock()

	for i, id := range ids {
		if !visit(id, rels[i]) {
			return false
		}
	}
	return true
}

// candidatesLocked narrows a query with at least one concrete side to the
// links referencing that side. The usage lists are in ascending id order.
func (s *Store) candidatesLocked(q Query) []Link {
	if !q.Source.IsAny() {
		return s.usages[q.Source]
	}
	return s.usages[q.Target]
}

func (s *Store) matchesLocked(id Link, q Query) bool {
	rel := s.relations[id-1]
	return rel.Source.matches(q.Source) && rel.Target.matches(q.Target)
}

func (s *Store) checkLocked(e Element) error {
	switch e.Kind() {
	case SymbolKind:
		return nil
	case LinkKind:
		id, _ := e.Link()
		if id == 0 || uint64(id) > uint64(len(s.relations)) {
			return fmt.Errorf("%w: %v", ErrUnknownLink, id)
		}
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrInvalidElement, e)
	}
}
