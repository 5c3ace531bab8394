// Package geometry computes shape descriptors of 2D point sets: polygon area,
// contour moments, convex hulls and their defects, fitted ellipses and the
// minimum-area bounding rectangle.
//
// # Coordinates
//
// Points are r2.Point values used exactly as given. No axis flip happens here,
// so a boundary traced from a raster (y down) keeps its raster orientation.
// Signed quantities follow the usual x-right, y-up convention: a polygon whose
// vertices turn left has positive area, and a "clockwise" hull has negative
// area.
//
// # Minimum sizes
//
//   - Area and ConvexHull need at least 3 points
//   - ComputeMoments and MinAreaRect need at least 1
//   - the ellipse fits need at least 5
//   - ConvexityDefects needs 3 contour points and 3 hull indices
//
// Smaller inputs fail with ErrInsufficientPoints rather than a zero or NaN
// result. Fits whose linear systems are singular, or whose conic is not an
// ellipse, fail with ErrDegenerate.
package geometry
