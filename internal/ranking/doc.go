// Package ranking orders the links of a run as pattern candidates.
//
// A Ranker reads a relation store and groups every link into Buckets by
// one statistic:
//   - ByUsage: how many other links or anchors refer to the link
//   - ByFrequency: how often the link's pair occurred in the sequences
//
// Buckets.Top walks the buckets from the highest value down. Order inside a
// bucket follows creation order and carries no meaning.
package ranking
