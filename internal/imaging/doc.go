// Package imaging holds the image side of the shape tools: decoding and
// caching input files, cropping to regions, turning photographs into binary
// edge masks, and rendering label rasters and traced outlines back into PNGs.
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X growing
// right and Y growing down. Rectangles follow image.Rectangle: Min is
// inclusive, Max is exclusive.
//
// ImageCache is safe for concurrent use. The remaining functions are
// stateless and never modify the images they are given.
package imaging
