package ranking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-patterns-mcp/internal/frequency"
	"github.com/ironsheep/image-patterns-mcp/internal/links"
)

func sym(v uint32) links.Element {
	return links.SymbolElement(links.Symbol(v))
}

func TestBuckets(t *testing.T) {
	b := Buckets{
		3: {4, 7},
		0: {1},
		9: {2},
	}
	assert.Equal(t, []uint64{0, 3, 9}, b.Keys())
	assert.Equal(t, []Entry{{Link: 2, Value: 9}, {Link: 4, Value: 3}, {Link: 7, Value: 3}}, b.Top(3))
	assert.Len(t, b.Top(0), 4)
	assert.Len(t, b.Top(100), 4)
	assert.Empty(t, Buckets{}.Top(5))
}

func TestRanker_EmptyStore(t *testing.T) {
	store := links.NewStore()
	r := NewRanker(store, frequency.NewCache(store, nil))

	assert.Empty(t, r.ByUsage())
	byFreq, err := r.ByFrequency()
	require.NoError(t, err)
	assert.Empty(t, byFreq)
}

func TestRanker(t *testing.T) {
	store := links.NewStore()
	counter := frequency.NewCounter(store)
	cache := frequency.NewCache(store, counter)

	ab, _ := store.CreateOrFind(sym(1), sym(2))
	cache.Observe(sym(1), sym(2))
	cache.Observe(sym(1), sym(2))
	root, _ := store.CreateOrFind(links.LinkElement(ab), links.LinkElement(ab))
	orphan, _ := store.CreateOrFind(sym(3), sym(4))

	require.NoError(t, store.Anchor(links.LinkElement(root)))
	require.NoError(t, counter.Add(links.LinkElement(root)))

	r := NewRanker(store, cache)

	assert.Equal(t, Buckets{
		0: {orphan},
		1: {ab, root},
	}, r.ByUsage())

	byFreq, err := r.ByFrequency()
	require.NoError(t, err)
	assert.Equal(t, Buckets{
		2: {ab},
		1: {root},
		0: {orphan},
	}, byFreq)

	candidates, err := r.Candidates()
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, Candidate{
		Link:      ab,
		Relation:  links.Relation{Source: sym(1), Target: sym(2)},
		Usages:    1,
		Frequency: 2,
	}, candidates[0])
	assert.Equal(t, uint64(0), candidates[2].Usages)
}

type failingFrequencies struct{}

func (failingFrequencies) FrequencyOf(links.Link) (uint64, error) {
	return 0, errors.New("boom")
}

func TestRanker_FrequencyError(t *testing.T) {
	store := links.NewStore()
	_, _ = store.CreateOrFind(sym(1), sym(2))

	_, err := NewRanker(store, failingFrequencies{}).ByFrequency()
	assert.ErrorContains(t, err, "boom")
	_, err = NewRanker(store, failingFrequencies{}).Candidates()
	assert.Error(t, err)
}
