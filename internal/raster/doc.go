// Package raster holds the pixel grids consumed by the shape analysis core.
//
// A Binary raster is a row-major grid of bytes where zero is background and any
// non-zero value is foreground. A Markers raster is a row-major grid of signed
// labels used as watershed seeds and results.
//
// # Coordinate System
//
// Coordinates are 0-based with (0,0) at the top-left corner, X increasing
// rightward and Y increasing downward. Index of (x, y) is y*Width + x.
//
// # Ownership
//
// The analysis packages never write into a raster they are given. Tracing works
// on a private padded copy and labeling allocates a fresh label grid, so one
// raster can be fed to several calls. Callers must not mutate a raster while a
// call that reads it is in flight.
package raster
