// Package detection finds regions of interest in level matrices.
//
// A hotspot is an 8-connected group of pixels whose level reaches a
// threshold. Repeated structure in an image shows up as plateaus of raised
// level, so hotspots point at the places where a pattern recurs.
//
// # Algorithm Overview
//
//  1. Thresholding: Keep set cells whose level is at least the threshold
//  2. Region Finding: Flood-fill the kept cells into connected regions
//  3. Filtering: Drop regions smaller than the minimum area
//  4. Summary: Bounding box, peak location, maximum and mean level
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// The border of a level matrix is unset and never part of a hotspot.
package detection
