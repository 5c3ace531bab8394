package server

import (
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/ironsheep/shape-tools-mcp/internal/assemble"
	"github.com/ironsheep/shape-tools-mcp/internal/components"
	"github.com/ironsheep/shape-tools-mcp/internal/contour"
	"github.com/ironsheep/shape-tools-mcp/internal/geometry"
	"github.com/ironsheep/shape-tools-mcp/internal/imaging"
	"github.com/ironsheep/shape-tools-mcp/internal/raster"
	"github.com/ironsheep/shape-tools-mcp/internal/watershed"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "shape_find_contours").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// argumentError marks tool arguments that failed to decode or validate.
// Such failures are reported as invalid params rather than tool failures.
type argumentError struct{ err error }

func (e *argumentError) Error() string { return "invalid arguments: " + e.err.Error() }

func (e *argumentError) Unwrap() error { return e.err }

func decode(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &argumentError{err}
	}
	return nil
}

// check combines every validation failure into one argument error.
func check(errs ...error) error {
	if err := multierr.Combine(errs...); err != nil {
		return &argumentError{err}
	}
	return nil
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Malformed or invalid arguments return -32602; any other tool failure
// returns -32000 with the error text as data.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Infow("tool failed", "tool", params.Name, "error", err)
		var argErr *argumentError
		if errors.As(err, &argErr) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	s.log.Debugw("tool call", "tool", params.Name, "elapsed", time.Since(start))

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON and applies defaults
//  2. Validates every argument, reporting all problems together
//  3. Loads images from cache as needed
//  4. Runs the analysis and flattens it with the assemble package
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Raster analysis
	case "shape_find_contours":
		return s.handleFindContours(args)
	case "shape_draw_contours":
		return s.handleDrawContours(args)
	case "shape_connected_components":
		return s.handleConnectedComponents(args)
	case "shape_render_labels":
		return s.handleRenderLabels(args)
	case "shape_watershed":
		return s.handleWatershed(args)

	// Point-set geometry
	case "shape_contour_area":
		return s.handleContourArea(args)
	case "shape_moments":
		return s.handleMoments(args)
	case "shape_convex_hull":
		return s.handleConvexHull(args)
	case "shape_convexity_defects":
		return s.handleConvexityDefects(args)
	case "shape_fit_ellipse":
		return s.handleFitEllipse(args)
	case "shape_min_area_rect":
		return s.handleMinAreaRect(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if err := check(requirePath("path", a.Path)); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if err := check(requirePath("path", a.Path)); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

func requirePath(name, path string) error {
	if path == "" {
		return errors.Errorf("%s is required", name)
	}
	return nil
}

// === Raster Analysis Handlers ===

type roiArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// rasterArgs select an image and say how to binarize it.
type rasterArgs struct {
	Path      string   `json:"path"`
	Threshold *int     `json:"threshold"`
	Invert    bool     `json:"invert"`
	Source    string   `json:"source"`
	EdgeLow   *int     `json:"edge_low"`
	EdgeHigh  *int     `json:"edge_high"`
	Region    string   `json:"region"`
	ROI       *roiArgs `json:"roi"`
}

const (
	defaultThreshold = 128
	defaultEdgeLow   = 50
	defaultEdgeHigh  = 150
)

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func (a *rasterArgs) validate() []error {
	var errs []error
	errs = append(errs, requirePath("path", a.Path))
	if t := intOr(a.Threshold, defaultThreshold); t < 0 || t > 255 {
		errs = append(errs, errors.Errorf("threshold %d outside 0-255", t))
	}
	switch a.Source {
	case "", "threshold":
	case "edges":
		low, high := intOr(a.EdgeLow, defaultEdgeLow), intOr(a.EdgeHigh, defaultEdgeHigh)
		if low < 0 || high < low {
			errs = append(errs, errors.Errorf("edge thresholds need 0 <= edge_low <= edge_high, got %d and %d", low, high))
		}
	default:
		errs = append(errs, errors.Errorf("unknown source %q", a.Source))
	}
	if a.Region != "" && a.ROI != nil {
		errs = append(errs, errors.New("region and roi are mutually exclusive"))
	}
	return errs
}

// binarize loads the image named by a and turns the selected part of it into
// a binary raster. origin is the position of the raster's (0,0) in the image.
func (s *Server) binarize(a *rasterArgs) (b *raster.Binary, img image.Image, origin image.Point, err error) {
	img, err = s.cache.Load(a.Path)
	if err != nil {
		return nil, nil, image.Point{}, err
	}
	bounds := img.Bounds()
	rect := bounds
	switch {
	case a.Region != "":
		if rect, err = imaging.NamedRegion(bounds, a.Region); err != nil {
			return nil, nil, image.Point{}, err
		}
	case a.ROI != nil:
		rect = image.Rect(a.ROI.X1, a.ROI.Y1, a.ROI.X2, a.ROI.Y2).Add(bounds.Min)
	}

	src := img
	if rect != bounds {
		if src, err = imaging.Crop(img, rect); err != nil {
			return nil, nil, image.Point{}, err
		}
	}
	origin = rect.Min.Sub(bounds.Min)

	if a.Source == "edges" {
		mask := imaging.EdgeMask(src, intOr(a.EdgeLow, defaultEdgeLow), intOr(a.EdgeHigh, defaultEdgeHigh))
		return raster.FromImage(mask, 128, a.Invert), img, origin, nil
	}
	return raster.FromImage(src, uint8(intOr(a.Threshold, defaultThreshold)), a.Invert), img, origin, nil
}

type contourArgs struct {
	rasterArgs
	Mode    string `json:"mode"`
	Method  string `json:"method"`
	OffsetX int    `json:"offset_x"`
	OffsetY int    `json:"offset_y"`
}

func (a *contourArgs) parse() (contour.Mode, contour.Approximation, error) {
	if a.Mode == "" {
		a.Mode = "tree"
	}
	if a.Method == "" {
		a.Method = "none"
	}
	mode, modeErr := contour.ParseMode(a.Mode)
	approx, approxErr := contour.ParseApproximation(a.Method)
	errs := append(a.validate(), modeErr, approxErr)
	return mode, approx, check(errs...)
}

type contoursResult struct {
	Count  int    `json:"count"`
	Mode   string `json:"mode"`
	Method string `json:"method"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	assemble.ContourTable
}

func (s *Server) handleFindContours(args json.RawMessage) (interface{}, error) {
	var a contourArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	mode, approx, err := a.parse()
	if err != nil {
		return nil, err
	}
	b, _, origin, err := s.binarize(&a.rasterArgs)
	if err != nil {
		return nil, err
	}
	res, err := contour.Trace(b, mode, approx, origin.Add(image.Pt(a.OffsetX, a.OffsetY)))
	if err != nil {
		return nil, err
	}
	return &contoursResult{
		Count:        res.Len(),
		Mode:         mode.String(),
		Method:       approx.String(),
		Width:        b.Width,
		Height:       b.Height,
		ContourTable: assemble.Contours(res),
	}, nil
}

type drawContoursArgs struct {
	contourArgs
	Color     string `json:"color"`
	HoleColor string `json:"hole_color"`
	ShowIDs   bool   `json:"show_ids"`
}

type drawContoursResult struct {
	Count int `json:"count"`
	*imaging.RenderResult
}

func (s *Server) handleDrawContours(args json.RawMessage) (interface{}, error) {
	var a drawContoursArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	mode, approx, err := a.parse()
	if err != nil {
		return nil, err
	}
	b, img, origin, err := s.binarize(&a.rasterArgs)
	if err != nil {
		return nil, err
	}
	res, err := contour.Trace(b, mode, approx, origin)
	if err != nil {
		return nil, err
	}

	outlines := make([]imaging.Outline, res.Len())
	for id, boundary := range res.Boundaries {
		outlines[id] = imaging.Outline{ID: id, Hole: boundary.Hole, Points: boundary.Points}
	}
	drawn, err := imaging.DrawOutlines(img, outlines, imaging.OverlayOptions{
		Color:     a.Color,
		HoleColor: a.HoleColor,
		ShowIDs:   a.ShowIDs,
	})
	if err != nil {
		return nil, &argumentError{err}
	}
	encoded, err := imaging.EncodePNG(drawn)
	if err != nil {
		return nil, err
	}
	return &drawContoursResult{Count: res.Len(), RenderResult: encoded}, nil
}

type labelArgs struct {
	rasterArgs
	Connectivity *int   `json:"connectivity"`
	Algorithm    string `json:"algorithm"`
}

func (a *labelArgs) parse() (components.Connectivity, components.Algorithm, error) {
	conn := components.Connectivity(intOr(a.Connectivity, int(components.Eight)))
	var connErr error
	if !conn.Valid() {
		connErr = errors.Wrapf(components.ErrConnectivity, "got %d", conn)
	}
	if a.Algorithm == "" {
		a.Algorithm = components.AlgorithmDefault.String()
	}
	alg, algErr := components.ParseAlgorithm(a.Algorithm)
	errs := append(a.validate(), connErr, algErr)
	return conn, alg, check(errs...)
}

// labelImage labels the selected part of an image. frame is the full image
// rectangle translated so the labeled part starts at origin.
func (s *Server) labelImage(a *labelArgs) (l *components.Labels, origin image.Point, frame image.Rectangle, err error) {
	conn, alg, err := a.parse()
	if err != nil {
		return nil, origin, frame, err
	}
	b, img, origin, err := s.binarize(&a.rasterArgs)
	if err != nil {
		return nil, origin, frame, err
	}
	frame = img.Bounds().Sub(img.Bounds().Min)
	l, err = components.Label(b, conn, alg)
	return l, origin, frame, err
}

type componentsArgs struct {
	labelArgs
	IncludeStats bool `json:"include_stats"`
}

func (s *Server) handleConnectedComponents(args json.RawMessage) (interface{}, error) {
	var a componentsArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	l, origin, frame, err := s.labelImage(&a.labelArgs)
	if err != nil {
		return nil, err
	}
	table := assemble.ComponentsAt(l, a.IncludeStats, origin, frame.Dy())
	return &table, nil
}

type renderLabelsArgs struct {
	labelArgs
	MarkersPath string `json:"markers_path"`
}

type renderLabelsResult struct {
	Count int `json:"count"`
	*imaging.RenderResult
}

func (s *Server) handleRenderLabels(args json.RawMessage) (interface{}, error) {
	var a renderLabelsArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}

	var (
		pix           []int32
		width, height int
		count         int
	)
	if a.MarkersPath != "" {
		flooded, err := s.flood(a.Path, a.MarkersPath)
		if err != nil {
			return nil, err
		}
		pix, width, height = flooded.Pix, flooded.Width, flooded.Height
		for _, v := range pix {
			count = max(count, int(v))
		}
	} else {
		l, _, _, err := s.labelImage(&a.labelArgs)
		if err != nil {
			return nil, err
		}
		pix, width, height, count = l.Pix, l.Width, l.Height, l.Count
	}

	img, err := imaging.RenderLabels(pix, width, height, count)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}
	return &renderLabelsResult{Count: count, RenderResult: encoded}, nil
}

type watershedArgs struct {
	Path        string `json:"path"`
	MarkersPath string `json:"markers_path"`
}

func (s *Server) flood(path, markersPath string) (*raster.Markers, error) {
	if err := check(requirePath("path", path), requirePath("markers_path", markersPath)); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	seeds, err := s.cache.Load(markersPath)
	if err != nil {
		return nil, err
	}
	return watershed.Flood(img, raster.MarkersFromImage(seeds))
}

func (s *Server) handleWatershed(args json.RawMessage) (interface{}, error) {
	var a watershedArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	flooded, err := s.flood(a.Path, a.MarkersPath)
	if err != nil {
		return nil, err
	}
	table := assemble.Markers(flooded)
	return &table, nil
}

// === Point-Set Geometry Handlers ===

type pointsArgs struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

func (a *pointsArgs) points() ([]r2.Point, error) {
	pts, err := geometry.PointsFromXY(a.X, a.Y)
	if err != nil {
		return nil, &argumentError{err}
	}
	return pts, nil
}

func (s *Server) handleContourArea(args json.RawMessage) (interface{}, error) {
	var a struct {
		pointsArgs
		Oriented bool `json:"oriented"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	pts, err := a.points()
	if err != nil {
		return nil, err
	}
	area, err := geometry.Area(pts, a.Oriented)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"area": area, "oriented": a.Oriented}, nil
}

func (s *Server) handleMoments(args json.RawMessage) (interface{}, error) {
	var a pointsArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	pts, err := a.points()
	if err != nil {
		return nil, err
	}
	m, err := geometry.ComputeMoments(pts)
	if err != nil {
		return nil, err
	}
	c := m.Centroid()
	return map[string]interface{}{
		"moments":    assemble.Moments(m),
		"centroid_x": c.X,
		"centroid_y": c.Y,
	}, nil
}

func (s *Server) handleConvexHull(args json.RawMessage) (interface{}, error) {
	var a struct {
		pointsArgs
		Clockwise bool `json:"clockwise"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	pts, err := a.points()
	if err != nil {
		return nil, err
	}
	hull, err := geometry.ConvexHull(pts, a.Clockwise)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"indices": hull, "count": len(hull)}, nil
}

func (s *Server) handleConvexityDefects(args json.RawMessage) (interface{}, error) {
	var a struct {
		pointsArgs
		Hull []int `json:"hull"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	pts, err := a.points()
	if err != nil {
		return nil, err
	}
	hull := a.Hull
	if hull == nil {
		if hull, err = geometry.ConvexHull(pts, false); err != nil {
			return nil, err
		}
	}
	defects, err := geometry.ConvexityDefects(pts, hull)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"defects": assemble.Defects(defects), "hull": hull}, nil
}

var ellipseFits = map[string]func([]r2.Point) (geometry.RotatedRect, error){
	"ls":     geometry.FitEllipse,
	"ams":    geometry.FitEllipseAMS,
	"direct": geometry.FitEllipseDirect,
}

func (s *Server) handleFitEllipse(args json.RawMessage) (interface{}, error) {
	var a struct {
		pointsArgs
		Method string `json:"method"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Method == "" {
		a.Method = "ls"
	}
	fit, ok := ellipseFits[a.Method]
	if !ok {
		return nil, check(errors.Errorf("unknown ellipse fit method %q", a.Method))
	}
	pts, err := a.points()
	if err != nil {
		return nil, err
	}
	box, err := fit(pts)
	if err != nil {
		return nil, err
	}
	return assemble.Box(box), nil
}

func (s *Server) handleMinAreaRect(args json.RawMessage) (interface{}, error) {
	var a pointsArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	pts, err := a.points()
	if err != nil {
		return nil, err
	}
	box, err := geometry.MinAreaRect(pts)
	if err != nil {
		return nil, err
	}
	return assemble.Box(box), nil
}
