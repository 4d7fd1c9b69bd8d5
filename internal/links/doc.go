// Package links implements the deduplicated relation store that backs pattern
// recognition.
//
// A relation (a "link") is an ordered pair of elements, where each element is
// either a raw Symbol derived from one pixel or the identifier of another link.
// The store assigns identifiers canonically: asking twice for the same
// (source, target) pair yields the same Link, so every recurring sub-sequence
// anywhere in an image collapses to one identifier.
//
// # Elements
//
// Element is a tagged union of Symbol and Link. Keeping the two apart in the
// type system means a raw pixel value can never be mistaken for a link id,
// and the tree walker can tell leaves from composites without consulting the
// store. The special value Any acts as a wildcard in queries.
//
// # Identity
//
// Link identifiers start at 1 and grow in creation order. The store is
// append-only: links are never deleted for the lifetime of a run.
//
// # Usages and Anchors
//
// A link is "used" by every other link that references it as source or
// target. Top-level sequence roots have no parent link, so the recognizer
// anchors them explicitly; each anchor counts as one usage.
//
// # Thread Safety
//
// Store is safe for concurrent use. Mutations are serialized, so
// CreateOrFind is atomic per pair.
package links
