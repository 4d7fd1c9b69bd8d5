// Package pipeline runs recognition on image files.
//
// Run takes a Request through these steps:
//   - load the file through a shared imaging.ImageCache
//   - crop and downscale with imaging.Prepare
//   - map pixels to symbols with imaging.NewRaster
//   - recognize rows and columns with recognizer.Recognize
//   - save the run to a snapshot database when requested
//
// The resulting Analysis keeps the prepared image, the raster and the
// recognizer result, so the CLI and the MCP server can rank links, find
// hotspots or render heatmaps from one run without analysing the image
// again.
package pipeline
