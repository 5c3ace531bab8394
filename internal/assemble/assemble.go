// Package assemble flattens tracing, labeling and geometry results into the
// row-oriented tables returned to callers.
//
// This is the only place coordinates change convention. Contour tables keep
// raster coordinates; component pixel tables use 1-based x and a y axis that
// counts rows up from the bottom.
package assemble

import (
	"image"
	"slices"

	"github.com/golang/geo/r2"
	"github.com/samber/lo"

	"github.com/ironsheep/shape-tools-mcp/internal/components"
	"github.com/ironsheep/shape-tools-mcp/internal/contour"
	"github.com/ironsheep/shape-tools-mcp/internal/geometry"
	"github.com/ironsheep/shape-tools-mcp/internal/raster"
)

// ContourPoint is one boundary vertex.
type ContourPoint struct {
	ID int `json:"id"`
	X  int `json:"x"`
	Y  int `json:"y"`
}

// HierarchyRow holds the links of one boundary, -1 meaning none.
type HierarchyRow struct {
	ID     int  `json:"id"`
	Next   int  `json:"next"`
	Prev   int  `json:"prev"`
	Child  int  `json:"child"`
	Parent int  `json:"parent"`
	Hole   bool `json:"hole"`
}

// ContourTable is a flattened trace.
type ContourTable struct {
	Points    []ContourPoint `json:"points"`
	Hierarchy []HierarchyRow `json:"hierarchy"`
}

// Contours flattens a trace, boundary by boundary.
func Contours(res *contour.Result) ContourTable {
	table := ContourTable{
		Points:    []ContourPoint{},
		Hierarchy: make([]HierarchyRow, 0, res.Len()),
	}
	for id, b := range res.Boundaries {
		table.Points = append(table.Points, lo.Map(b.Points, func(p image.Point, _ int) ContourPoint {
			return ContourPoint{ID: id, X: p.X, Y: p.Y}
		})...)
		n := res.Hierarchy[id]
		table.Hierarchy = append(table.Hierarchy, HierarchyRow{
			ID:     id,
			Next:   n.Next,
			Prev:   n.Prev,
			Child:  n.FirstChild,
			Parent: n.Parent,
			Hole:   b.Hole,
		})
	}
	return table
}

// BoundaryPoints returns the vertices of boundary id as geometry points.
func BoundaryPoints(table ContourTable, id int) []r2.Point {
	rows := lo.Filter(table.Points, func(p ContourPoint, _ int) bool { return p.ID == id })
	return lo.Map(rows, func(p ContourPoint, _ int) r2.Point {
		return r2.Point{X: float64(p.X), Y: float64(p.Y)}
	})
}

// PixelRecord is one labeled foreground pixel in caller coordinates.
type PixelRecord struct {
	Label int `json:"label"`
	X     int `json:"x"`
	Y     int `json:"y"`
}

// ComponentStat summarizes one region. Bounds use raster coordinates.
type ComponentStat struct {
	Label     int     `json:"label"`
	Area      int     `json:"area"`
	Left      int     `json:"left"`
	Top       int     `json:"top"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	CentroidX float64 `json:"centroid_x"`
	CentroidY float64 `json:"centroid_y"`
}

// ComponentTable is a flattened labeling. OffsetX and OffsetY give the
// position of the labeled raster inside its image when only part of the
// image was labeled.
type ComponentTable struct {
	Count   int             `json:"count"`
	Width   int             `json:"width"`
	Height  int             `json:"height"`
	OffsetX int             `json:"offset_x,omitempty"`
	OffsetY int             `json:"offset_y,omitempty"`
	Pixels  []PixelRecord   `json:"pixels"`
	Stats   []ComponentStat `json:"stats,omitempty"`
}

// Components flattens a labeling into one record per foreground pixel, in
// row-major raster order, mapping (x, y) to (x+1, height-y).
func Components(l *components.Labels, withStats bool) ComponentTable {
	return ComponentsAt(l, withStats, image.Point{}, l.Height)
}

// ComponentsAt is Components for a labeling of the part of an image
// imageHeight rows tall whose top-left corner is origin. Pixel records and
// stats are given in coordinates of the whole image.
func ComponentsAt(l *components.Labels, withStats bool, origin image.Point, imageHeight int) ComponentTable {
	table := ComponentTable{
		Count:   l.Count,
		Width:   l.Width,
		Height:  l.Height,
		OffsetX: origin.X,
		OffsetY: origin.Y,
		Pixels:  []PixelRecord{},
	}
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			if v := l.At(x, y); v != 0 {
				table.Pixels = append(table.Pixels, pixelRecord(int(v), x+origin.X, y+origin.Y, imageHeight))
			}
		}
	}
	if withStats {
		table.Stats = lo.Map(l.Stats(), func(s components.Stat, _ int) ComponentStat {
			return ComponentStat{
				Label:     s.Label,
				Area:      s.Area,
				Left:      s.Bounds.Min.X + origin.X,
				Top:       s.Bounds.Min.Y + origin.Y,
				Width:     s.Bounds.Dx(),
				Height:    s.Bounds.Dy(),
				CentroidX: s.Centroid.X + float64(origin.X),
				CentroidY: s.Centroid.Y + float64(origin.Y),
			}
		})
	}
	return table
}

func pixelRecord(label, x, y, height int) PixelRecord {
	return PixelRecord{Label: label, X: x + 1, Y: height - y}
}

// DefectRow is one convexity defect.
type DefectRow struct {
	StartIndex    int     `json:"start_index"`
	EndIndex      int     `json:"end_index"`
	FarthestIndex int     `json:"farthest_pt_index"`
	FixptDepth    int     `json:"fixpt_depth"`
	Depth         float64 `json:"depth"`
}

// Defects flattens convexity defects.
func Defects(defects []geometry.Defect) []DefectRow {
	return lo.Map(defects, func(d geometry.Defect, _ int) DefectRow {
		return DefectRow{
			StartIndex:    d.Start,
			EndIndex:      d.End,
			FarthestIndex: d.Farthest,
			FixptDepth:    d.FixedDepth,
			Depth:         d.Depth,
		}
	})
}

// MomentRow is one named moment.
type MomentRow struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Moments lists the moments by name in their canonical order.
func Moments(m geometry.Moments) []MomentRow {
	values := m.Values()
	return lo.Map(geometry.MomentNames[:], func(name string, i int) MomentRow {
		return MomentRow{Name: name, Value: values[i]}
	})
}

// BoxRow is a fitted ellipse or rectangle.
type BoxRow struct {
	Angle   float64 `json:"angle"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
}

// Box flattens a rotated rectangle.
func Box(r geometry.RotatedRect) BoxRow {
	return BoxRow{
		Angle:   r.Angle,
		Width:   r.Width,
		Height:  r.Height,
		CenterX: r.Center.X,
		CenterY: r.Center.Y,
	}
}

// MarkerTable is a flattened watershed result. Labels is row-major with -1
// on basin boundaries.
type MarkerTable struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Regions    []int   `json:"regions"`
	Boundaries int     `json:"boundary_pixels"`
	Labels     []int32 `json:"labels"`
}

// Markers flattens a marker raster, listing the distinct positive labels in
// ascending order.
func Markers(m *raster.Markers) MarkerTable {
	positive := lo.Filter(m.Pix, func(v int32, _ int) bool { return v > 0 })
	regions := lo.Map(lo.Uniq(positive), func(v int32, _ int) int { return int(v) })
	slices.Sort(regions)
	return MarkerTable{
		Width:      m.Width,
		Height:     m.Height,
		Regions:    regions,
		Boundaries: lo.CountBy(m.Pix, func(v int32) bool { return v < 0 }),
		Labels:     slices.Clone(m.Pix),
	}
}
