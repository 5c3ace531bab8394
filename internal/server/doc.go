// Package server implements the MCP (Model Context Protocol) server for the
// shape analysis tools.
//
// The server speaks JSON-RPC 2.0 over a line-oriented stream, normally stdio:
// one request per input line, one response per output line. Supported
// methods are initialize, tools/list, tools/call and ping.
//
// # Available Tools
//
// Image information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Raster analysis. The image is binarized by a luminance threshold (or an
// edge mask), optionally restricted to a region, before analysis:
//   - shape_find_contours: Trace region and hole boundaries with their hierarchy
//   - shape_draw_contours: Draw traced boundaries over the image
//   - shape_connected_components: Label connected regions
//   - shape_render_labels: Colorize a labeling or a watershed as PNG
//   - shape_watershed: Flood an image from labeled markers
//
// Point-set geometry, on x and y coordinate arrays:
//   - shape_contour_area, shape_moments
//   - shape_convex_hull, shape_convexity_defects
//   - shape_fit_ellipse, shape_min_area_rect
//
// # Image Caching
//
// Decoded images are cached by path and reused across tool calls. The cache
// can be bounded with WithCacheLimit, in which case the oldest image is
// evicted first.
//
// # Error Handling
//
// Arguments that fail to decode or validate are reported with code -32602,
// listing every problem found. Other tool failures use -32000 with the error
// text as data. Unknown methods get -32601.
//
// # Usage
//
//	srv := server.New(server.WithLogger(log), server.WithCacheLimit(32))
//	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
package server
