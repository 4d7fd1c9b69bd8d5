package pipeline

import (
	"fmt"

	"github.com/ironsheep/image-patterns-mcp/internal/links"
	"github.com/ironsheep/image-patterns-mcp/internal/ranking"
)

// Ranking orders.
const (
	ByUsage     = "usage"
	ByFrequency = "frequency"
)

// RankedLink is one ranked link with its relation and both statistics.
type RankedLink struct {
	Link      links.Link     `json:"link"`
	Relation  links.Relation `json:"relation"`
	Value     uint64         `json:"value"`
	Usages    uint64         `json:"usages"`
	Frequency uint64         `json:"frequency"`
}

// Rank returns up to top links ordered by the named statistic, highest first.
// top <= 0 returns every link.
func (a *Analysis) Rank(by string, top int) ([]RankedLink, error) {
	r := a.Result.Ranker()

	var (
		buckets ranking.Buckets
		err     error
	)
	switch by {
	case ByUsage, "":
		buckets = r.ByUsage()
	case ByFrequency:
		if buckets, err = r.ByFrequency(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown ranking %q (use %s or %s)", by, ByUsage, ByFrequency)
	}

	store := a.Result.Session.Store()
	cache := a.Result.Session.Cache()
	entries := buckets.Top(top)
	out := make([]RankedLink, 0, len(entries))
	for _, e := range entries {
		rel, err := store.Resolve(e.Link)
		if err != nil {
			return nil, err
		}
		freq, err := cache.FrequencyOf(e.Link)
		if err != nil {
			return nil, err
		}
		out = append(out, RankedLink{
			Link:      e.Link,
			Relation:  rel,
			Value:     e.Value,
			Usages:    store.CountUsages(links.LinkElement(e.Link)),
			Frequency: freq,
		})
	}
	return out, nil
}
