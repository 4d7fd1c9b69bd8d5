// Package levels scores every pixel of an image by how strongly the structure
// around it repeats elsewhere.
//
// # Components
//
// After compression each row and each column is a single merge tree. For a
// pixel, the relation one level up from it in its row tree has two sides: the
// row "left" component is that relation's source. The same pixel in its
// column tree yields the column "bottom" component, the relation's target. A
// sequence of one pixel has no parent relation, so both sides are the pixel
// itself.
//
// # Levels
//
// For every interior pixel (x, y), 1 <= x < width-1 and 1 <= y < height-1,
// the builder looks up four pair scores:
//
//	topBottom = Between(bottom(x-1, y), bottom(x, y))
//	leftRight = Between(left(x, y-1),   left(x, y))
//	bottomTop = Between(bottom(x, y),   bottom(x+1, y))
//	rightLeft = Between(left(x, y),     left(x, y+1))
//
// and stores the largest. A high level means the component at that pixel
// often sits next to its neighbour's component elsewhere in the image.
// Boundary cells have no predecessor or successor in one direction and are
// never set.
//
// # Coordinate System
//
// Origin (0, 0) is the top-left pixel. X increases rightward and Y increases
// downward, matching the image package.
package levels
