// Package frequency tracks how often ordered pairs of elements occur across
// all indexed sequences.
//
// The Cache holds one counter per ordered (source, target) pair. Counts only
// grow during a run: Observe increments, Touch creates an entry at zero, and
// nothing ever decrements. Two links with the same pair share one count no
// matter which sequence contributed it.
//
// The Counter holds a second statistic: how many times each element occurs
// inside the expansions of all anchored sequence roots. It is the fallback
// used when a relation has no direct pair count, which happens for links that
// were formed by merging composites rather than observed while indexing.
package frequency
