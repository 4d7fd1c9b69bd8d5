// Package imaging turns image files into symbol rasters and renders level
// matrices back into images.
//
// # Input
//
// ImageCache decodes files once and keeps them by path. Prepare optionally
// crops to a region or named quadrant and downscales to a maximum dimension.
// Downscaling uses nearest-neighbour sampling so that the palette of the
// output is a subset of the palette of the input. NewRaster then maps every
// pixel to a links.Symbol built from its non-premultiplied RGBA channels.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Output
//
// Heatmap colours each level on a dark-to-bright ramp blended in HCL space.
// Unset cells, which are the image border, are grey. The result can be
// scaled up, laid over the source image, returned as base64 PNG for MCP
// clients or written to disk. Neither side of a heatmap may exceed
// MaxHeatmapSide pixels; larger requests fail with ErrHeatmapTooLarge.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Rasters are immutable after
// construction.
package imaging
