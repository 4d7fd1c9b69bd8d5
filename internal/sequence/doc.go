// Package sequence turns symbol sequences into deduplicated merge trees and
// walks them back.
//
// # Pipeline
//
//  1. Indexer feeds every adjacent pair of every row and column into the
//     frequency cache. All sequences must be indexed before the first
//     compression, so that merge decisions see the whole image.
//  2. Compressor reduces a sequence to one element by repeatedly merging the
//     adjacent pair with the highest frequency score, leftmost first on ties.
//     Merges go through the relation store, so a sub-sequence that recurs
//     anywhere in the image becomes the same link.
//  3. Walk traverses a compressed tree depth-first, left to right, reporting
//     leaves together with their enclosing path and supporting early stop.
//
// # Algorithm
//
// The compressor is a frequency-biased grammar inducer in the Re-Pair family.
// Instead of rescanning all pairs after each merge it keeps a max-heap of
// candidate merges keyed by (score, left position) and discards stale entries
// lazily when they surface. Scores do not change while one sequence is being
// compressed, so the heap picks exactly the pair a full rescan would pick.
//
// # Errors
//
// A link that cannot be resolved while walking a tree means the compression
// result is corrupt; Walk reports ErrCorruptStructure wrapping the store
// error. Store failures during indexing or merging are returned as is.
package sequence
