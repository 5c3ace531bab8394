package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

type schema = map[string]interface{}

func object(props schema, required ...string) schema {
	s := schema{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func pathProp() schema {
	return schema{"type": "string", "description": "Absolute path to the image file"}
}

// rasterProps describes how an image becomes a binary raster. Every tool that
// reads shapes from an image file shares them.
func rasterProps() schema {
	return schema{
		"path": pathProp(),
		"threshold": schema{
			"type":        "integer",
			"description": "Luminance level (0-255). Pixels at or above it are foreground. Default 128",
			"default":     128,
			"minimum":     0,
			"maximum":     255,
		},
		"invert": schema{
			"type":        "boolean",
			"description": "Treat pixels below the threshold as foreground (dark shapes on a light background)",
			"default":     false,
		},
		"source": schema{
			"type":        "string",
			"enum":        []string{"threshold", "edges"},
			"description": "How to binarize: luminance threshold, or a Canny-style edge mask. Default threshold",
			"default":     "threshold",
		},
		"edge_low": schema{
			"type":        "integer",
			"description": "Weak edge gradient threshold when source is edges. Default 50",
			"default":     50,
		},
		"edge_high": schema{
			"type":        "integer",
			"description": "Strong edge gradient threshold when source is edges. Default 150",
			"default":     150,
		},
		"region": schema{
			"type":        "string",
			"enum":        []string{"top-left", "top-right", "bottom-left", "bottom-right", "top-half", "bottom-half", "left-half", "right-half", "center"},
			"description": "Only analyze this named part of the image",
		},
		"roi": object(schema{
			"x1": schema{"type": "integer", "description": "Left edge X coordinate (0-based)"},
			"y1": schema{"type": "integer", "description": "Top edge Y coordinate (0-based)"},
			"x2": schema{"type": "integer", "description": "Right edge X coordinate (exclusive)"},
			"y2": schema{"type": "integer", "description": "Bottom edge Y coordinate (exclusive)"},
		}, "x1", "y1", "x2", "y2"),
	}
}

func contourProps() schema {
	props := rasterProps()
	props["mode"] = schema{
		"type":        "string",
		"enum":        []string{"external", "list", "ccomp", "tree"},
		"description": "Which boundaries to keep and how to link them. Default tree",
		"default":     "tree",
	}
	props["method"] = schema{
		"type":        "string",
		"enum":        []string{"none", "simple"},
		"description": "none keeps every boundary pixel; simple keeps only the ends of straight runs. Default none",
		"default":     "none",
	}
	props["offset_x"] = schema{"type": "integer", "description": "Added to every returned x", "default": 0}
	props["offset_y"] = schema{"type": "integer", "description": "Added to every returned y", "default": 0}
	return props
}

func labelProps() schema {
	props := rasterProps()
	props["connectivity"] = schema{
		"type":        "integer",
		"enum":        []int{4, 8},
		"description": "Pixel adjacency. Default 8",
		"default":     8,
	}
	props["algorithm"] = schema{
		"type":        "string",
		"enum":        []string{"default", "union-find", "multi-pass"},
		"description": "Labeling strategy. All strategies give identical labels. Default default",
		"default":     "default",
	}
	return props
}

func pointProps() schema {
	return schema{
		"x": schema{"type": "array", "items": schema{"type": "number"}, "description": "X coordinates of the points, in order"},
		"y": schema{"type": "array", "items": schema{"type": "number"}, "description": "Y coordinates of the points, same length as x"},
	}
}

func with(props schema, extra schema) schema {
	for k, v := range extra {
		props[k] = v
	}
	return props
}

func without(props schema, keys ...string) schema {
	for _, k := range keys {
		delete(props, k)
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and whether it is already black and white.",
			InputSchema: object(schema{"path": pathProp()}, "path"),
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: object(schema{"path": pathProp()}, "path"),
		},

		// Raster analysis
		{
			Name:        "shape_find_contours",
			Description: "Trace the boundaries of foreground regions and holes in a binarized image. Returns every boundary point tagged with its boundary id, and one hierarchy row (next, prev, child, parent, -1 for none) per boundary.",
			InputSchema: object(contourProps(), "path"),
		},
		{
			Name:        "shape_draw_contours",
			Description: "Trace boundaries like shape_find_contours and draw them over the image. Returns a base64-encoded PNG.",
			InputSchema: object(with(without(contourProps(), "offset_x", "offset_y"), schema{
				"color":      schema{"type": "string", "description": "Hex color (#RRGGBB) for all outlines. Default: one color per boundary"},
				"hole_color": schema{"type": "string", "description": "Hex color (#RRGGBB) for hole outlines"},
				"show_ids":   schema{"type": "boolean", "description": "Print boundary ids next to each outline", "default": false},
			}), "path"),
		},
		{
			Name:        "shape_connected_components",
			Description: "Label the connected foreground regions of a binarized image. Returns the region count and one record per foreground pixel with x counted from 1 and y counted up from the bottom row of the whole image, also when region or roi restricts labeling.",
			InputSchema: object(with(labelProps(), schema{
				"include_stats": schema{"type": "boolean", "description": "Also return area, bounding box and centroid per region", "default": false},
			}), "path"),
		},
		{
			Name:        "shape_render_labels",
			Description: "Label connected regions, or flood from markers when markers_path is given, and return the label raster as a colorized base64-encoded PNG.",
			InputSchema: object(with(labelProps(), schema{
				"markers_path": schema{"type": "string", "description": "Optional marker image; when set, render the watershed of path from these markers instead"},
			}), "path"),
		},
		{
			Name:        "shape_watershed",
			Description: "Grow labeled markers over an image in order of increasing contrast. Each gray level of the marker image is a label, 0 is unlabeled. Returns the label raster with -1 where basins meet.",
			InputSchema: object(schema{
				"path":         pathProp(),
				"markers_path": schema{"type": "string", "description": "Absolute path to the marker image, same size as path"},
			}, "path", "markers_path"),
		},

		// Point-set geometry
		{
			Name:        "shape_contour_area",
			Description: "Area enclosed by a polygon given as ordered points. The oriented area is positive for counter-clockwise order in a y-up frame.",
			InputSchema: object(with(pointProps(), schema{
				"oriented": schema{"type": "boolean", "description": "Return the signed area", "default": false},
			}), "x", "y"),
		},
		{
			Name:        "shape_moments",
			Description: "Spatial, central and normalized central moments of a polygon (24 named values).",
			InputSchema: object(pointProps(), "x", "y"),
		},
		{
			Name:        "shape_convex_hull",
			Description: "Indices of the points on the convex hull, in hull order.",
			InputSchema: object(with(pointProps(), schema{
				"clockwise": schema{"type": "boolean", "description": "Return the hull in clockwise order", "default": false},
			}), "x", "y"),
		},
		{
			Name:        "shape_convexity_defects",
			Description: "Deviations of a contour from its convex hull: start, end and farthest point index plus depth for each defect.",
			InputSchema: object(with(pointProps(), schema{
				"hull": schema{"type": "array", "items": schema{"type": "integer"}, "description": "Hull indices as returned by shape_convex_hull. Computed when omitted"},
			}), "x", "y"),
		},
		{
			Name:        "shape_fit_ellipse",
			Description: "Fit an ellipse to at least 5 points. Returns center, axis lengths (width <= height) and the angle of the width axis in degrees.",
			InputSchema: object(with(pointProps(), schema{
				"method": schema{
					"type":        "string",
					"enum":        []string{"ls", "ams", "direct"},
					"description": "Least squares, approximate mean square, or direct (always an ellipse). Default ls",
					"default":     "ls",
				},
			}), "x", "y"),
		},
		{
			Name:        "shape_min_area_rect",
			Description: "Smallest rotated rectangle enclosing the points.",
			InputSchema: object(pointProps(), "x", "y"),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
