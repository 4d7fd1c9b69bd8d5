package ranking

import (
	"fmt"
	"sort"

	"github.com/ironsheep/image-patterns-mcp/internal/links"
)

// Buckets groups link ids by a numeric value. Order inside a bucket is the
// order links were created and carries no meaning.
type Buckets map[uint64][]links.Link

// Keys returns the bucket values in ascending order.
func (b Buckets) Keys() []uint64 {
	keys := make([]uint64, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Top returns up to n links from the highest buckets down. n <= 0 returns
// every link.
func (b Buckets) Top(n int) []Entry {
	keys := b.Keys()
	var out []Entry
	for i := len(keys) - 1; i >= 0; i-- {
		for _, id := range b[keys[i]] {
			if n > 0 && len(out) == n {
				return out
			}
			out = append(out, Entry{Link: id, Value: keys[i]})
		}
	}
	return out
}

// Entry is one ranked link.
type Entry struct {
	Link  links.Link `json:"link"`
	Value uint64     `json:"value"`
}

// Candidate is a link annotated with both ranking statistics.
type Candidate struct {
	Link      links.Link     `json:"link"`
	Relation  links.Relation `json:"relation"`
	Usages    uint64         `json:"usages"`
	Frequency uint64         `json:"frequency"`
}

// Store is the part of the relation store the ranker reads.
type Store interface {
	Each(q links.Query, visit func(links.Link, links.Relation) bool) bool
	CountUsages(e links.Element) uint64
}

// Frequencies supplies link frequencies.
type Frequencies interface {
	FrequencyOf(id links.Link) (uint64, error)
}

// Ranker ranks every link in a store.
type Ranker struct {
	store Store
	freq  Frequencies
}

// NewRanker creates a ranker.
func NewRanker(store Store, freq Frequencies) *Ranker {
	return &Ranker{store: store, freq: freq}
}

// ByUsage buckets every link by its usage count. Links nothing refers to and
// that were never anchored land in bucket 0.
func (r *Ranker) ByUsage() Buckets {
	out := make(Buckets)
	r.store.Each(links.AnyQuery, func(id links.Link, _ links.Relation) bool {
		n := r.store.CountUsages(links.LinkElement(id))
		out[n] = append(out[n], id)
		return true
	})
	return out
}

// ByFrequency buckets every link by its frequency.
func (r *Ranker) ByFrequency() (Buckets, error) {
	out := make(Buckets)
	var err error
	r.store.Each(links.AnyQuery, func(id links.Link, _ links.Relation) bool {
		var n uint64
		n, err = r.freq.FrequencyOf(id)
		if err != nil {
			err = fmt.Errorf("failed to rank %v: %w", id, err)
			return false
		}
		out[n] = append(out[n], id)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Candidates returns every link with its usage and frequency, in creation
// order.
func (r *Ranker) Candidates() ([]Candidate, error) {
	var (
		out []Candidate
		err error
	)
	r.store.Each(links.AnyQuery, func(id links.Link, rel links.Relation) bool {
		var n uint64
		n, err = r.freq.FrequencyOf(id)
		if err != nil {
			err = fmt.Errorf("failed to rank %v: %w", id, err)
			return false
		}
		out = append(out, Candidate{
			Link:      id,
			Relation:  rel,
			Usages:    r.store.CountUsages(links.LinkElement(id)),
			Frequency: n,
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
