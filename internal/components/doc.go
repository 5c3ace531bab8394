// Package components labels the connected foreground regions of a binary
// raster.
//
// Label assigns every foreground pixel a positive label such that two pixels
// share a label exactly when they are connected under the chosen adjacency.
// Background pixels keep label 0. Labels are dense, 1..Count, and numbered in
// the order each region's first pixel appears in a row-major scan, so every
// strategy produces identical output for the same input.
//
// # Strategies
//
// Two labeling strategies are available:
//   - AlgorithmUnionFind makes one raster pass, merging provisional labels in
//     a disjoint-set forest, then resolves every pixel to its set root.
//   - AlgorithmMultiPass propagates the minimum provisional label forwards
//     and backwards over the raster until nothing changes.
//
// AlgorithmDefault selects union-find.
package components
