// Package contour traces region boundaries in binary rasters and arranges them
// into a nesting forest.
//
// # Algorithm
//
// Trace implements Suzuki–Abe border following. The raster is copied into a
// zero-padded int32 arena; a row-major scan starts a new border at every
// foreground pixel whose left neighbour is background (an outer border) or
// whose right neighbour is background and that is not already an outer start
// (a hole border). Each border is walked with an explicit 8-direction table,
// writing its sequence number into the arena (negated where the walk sees
// background to the east) so later scans neither restart it nor lose track of
// the innermost enclosing border. No recursion is used, so stack depth does not
// grow with raster size.
//
// Foreground is 8-connected and background is 4-connected.
//
// # Orientation
//
// With y pointing down, outer boundaries are walked counter-clockwise as
// displayed and holes clockwise as displayed. In raw coordinates the shoelace
// sum of an outer boundary is therefore negative and that of a hole positive.
// An outer boundary begins at its first pixel in row-major order; a hole begins
// at the foreground pixel left of the first background pixel of the hole.
//
// # Hierarchy
//
// Boundaries are numbered in discovery order. Result.Hierarchy holds one Node
// per boundary with next/previous sibling, first child and parent indices, or
// None. Top-level boundaries are siblings of each other.
//
// Retention depends on Mode:
//   - ModeExternal keeps only outermost boundaries
//   - ModeList keeps everything as one flat sibling list
//   - ModeCComp keeps outermost boundaries and their immediate holes
//   - ModeTree keeps the full forest
//
// Boundaries below the retained depth are dropped, not merged, and the
// remaining ids are renumbered densely.
package contour
