package assemble

import (
	"image"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/shape-tools-mcp/internal/components"
	"github.com/ironsheep/shape-tools-mcp/internal/contour"
	"github.com/ironsheep/shape-tools-mcp/internal/geometry"
	"github.com/ironsheep/shape-tools-mcp/internal/raster"
)

func TestContours(t *testing.T) {
	res := &contour.Result{
		Boundaries: []contour.Boundary{
			{Points: []image.Point{{X: 0, Y: 0}, {X: 0, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 0}}},
			{Points: []image.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}, Hole: true},
		},
		Hierarchy: []contour.Node{
			{Next: contour.None, Prev: contour.None, FirstChild: 1, Parent: contour.None},
			{Next: contour.None, Prev: contour.None, FirstChild: contour.None, Parent: 0},
		},
	}
	table := Contours(res)

	wantPoints := []ContourPoint{
		{0, 0, 0}, {0, 0, 4}, {0, 4, 4}, {0, 4, 0},
		{1, 1, 1}, {1, 2, 2},
	}
	if diff := cmp.Diff(wantPoints, table.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
	wantRows := []HierarchyRow{
		{ID: 0, Next: -1, Prev: -1, Child: 1, Parent: -1},
		{ID: 1, Next: -1, Prev: -1, Child: -1, Parent: 0, Hole: true},
	}
	if diff := cmp.Diff(wantRows, table.Hierarchy); diff != "" {
		t.Errorf("hierarchy mismatch (-want +got):\n%s", diff)
	}

	got := BoundaryPoints(table, 1)
	if diff := cmp.Diff([]r2.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}, got); diff != "" {
		t.Errorf("boundary points mismatch (-want +got):\n%s", diff)
	}
}

func TestContours_Empty(t *testing.T) {
	table := Contours(&contour.Result{})
	if table.Points == nil || table.Hierarchy == nil {
		t.Error("empty tables should be non-nil so they encode as []")
	}
}

func TestComponents_CallerCoordinates(t *testing.T) {
	b := raster.MustParse(`
		#..
		..#
	`)
	l, err := components.Label(b, components.Eight, components.AlgorithmDefault)
	if err != nil {
		t.Fatalf("Label failed: %v", err)
	}
	table := Components(l, true)

	want := []PixelRecord{
		{Label: 1, X: 1, Y: 2},
		{Label: 2, X: 3, Y: 1},
	}
	if diff := cmp.Diff(want, table.Pixels); diff != "" {
		t.Errorf("pixels mismatch (-want +got):\n%s", diff)
	}
	if table.Count != 2 {
		t.Errorf("count: got %d, want 2", table.Count)
	}
	wantStats := []ComponentStat{
		{Label: 1, Area: 1, Left: 0, Top: 0, Width: 1, Height: 1},
		{Label: 2, Area: 1, Left: 2, Top: 1, Width: 1, Height: 1, CentroidX: 2, CentroidY: 1},
	}
	if diff := cmp.Diff(wantStats, table.Stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestComponents_FilledSquare(t *testing.T) {
	b := raster.MustParse("###\n###\n###")
	l, err := components.Label(b, components.Four, components.AlgorithmMultiPass)
	if err != nil {
		t.Fatalf("Label failed: %v", err)
	}
	table := Components(l, false)
	if len(table.Pixels) != 9 {
		t.Fatalf("pixels: got %d, want 9", len(table.Pixels))
	}
	for _, p := range table.Pixels {
		if p.Label != 1 || p.X < 1 || p.X > 3 || p.Y < 1 || p.Y > 3 {
			t.Errorf("unexpected record %+v", p)
		}
	}
	if table.Stats != nil {
		t.Errorf("stats: got %v, want none", table.Stats)
	}
}

func TestComponentsAt_ImageCoordinates(t *testing.T) {
	// A 2x2 crop taken at (3,1) from an image 6 rows tall.
	b := raster.MustParse(`
		#.
		.#
	`)
	l, err := components.Label(b, components.Four, components.AlgorithmDefault)
	if err != nil {
		t.Fatalf("Label failed: %v", err)
	}
	table := ComponentsAt(l, true, image.Pt(3, 1), 6)

	want := []PixelRecord{
		{Label: 1, X: 4, Y: 5},
		{Label: 2, X: 5, Y: 4},
	}
	if diff := cmp.Diff(want, table.Pixels); diff != "" {
		t.Errorf("pixels mismatch (-want +got):\n%s", diff)
	}
	wantStats := []ComponentStat{
		{Label: 1, Area: 1, Left: 3, Top: 1, Width: 1, Height: 1, CentroidX: 3, CentroidY: 1},
		{Label: 2, Area: 1, Left: 4, Top: 2, Width: 1, Height: 1, CentroidX: 4, CentroidY: 2},
	}
	if diff := cmp.Diff(wantStats, table.Stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
	if table.OffsetX != 3 || table.OffsetY != 1 || table.Width != 2 || table.Height != 2 {
		t.Errorf("frame: got offset (%d,%d) size %dx%d", table.OffsetX, table.OffsetY, table.Width, table.Height)
	}
}

func TestGeometryRows(t *testing.T) {
	rows := Defects([]geometry.Defect{{Start: 2, End: 4, Farthest: 3, Depth: 2, FixedDepth: 512}})
	want := []DefectRow{{StartIndex: 2, EndIndex: 4, FarthestIndex: 3, FixptDepth: 512, Depth: 2}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("defects mismatch (-want +got):\n%s", diff)
	}

	m := Moments(geometry.Moments{M00: 4, Nu03: 0.5})
	if len(m) != 24 || m[0] != (MomentRow{"m00", 4}) || m[23] != (MomentRow{"nu03", 0.5}) {
		t.Errorf("moments: got %v", m)
	}

	box := Box(geometry.RotatedRect{Center: r2.Point{X: 1, Y: 2}, Width: 3, Height: 4, Angle: 5})
	if box != (BoxRow{Angle: 5, Width: 3, Height: 4, CenterX: 1, CenterY: 2}) {
		t.Errorf("box: got %+v", box)
	}
}

func TestMarkers(t *testing.T) {
	m := &raster.Markers{Width: 4, Height: 2, Pix: []int32{3, 3, -1, 1, 3, -1, 1, 1}}
	got := Markers(m)
	want := MarkerTable{
		Width:      4,
		Height:     2,
		Regions:    []int{1, 3},
		Boundaries: 2,
		Labels:     []int32{3, 3, -1, 1, 3, -1, 1, 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Markers mismatch (-want +got):\n%s", diff)
	}
	got.Labels[0] = 9
	if m.Pix[0] != 3 {
		t.Error("Markers aliased the input raster")
	}
}

func TestMarkers_Empty(t *testing.T) {
	got := Markers(raster.NewMarkers(2, 2))
	if len(got.Regions) != 0 || got.Boundaries != 0 {
		t.Errorf("got %+v, want no regions", got)
	}
}
