// Package recognizer drives one pattern recognition run over an image.
//
// A run turns every row and column of the image into a symbol sequence,
// indexes all of them, compresses each into one merge tree, anchors the tree
// roots and finally scores each pixel with the levels builder. The Session
// carries the store and statistics between these phases and rejects
// compression before indexing is complete.
package recognizer
