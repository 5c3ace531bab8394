package contour

import (
	"image"

	"github.com/ironsheep/shape-tools-mcp/internal/raster"
)

// Rasterize paints a traced result back into a width x height raster. Outer
// boundaries set every pixel inside or on their polygon and holes clear the
// pixels strictly inside theirs, in id order. offset is subtracted from the
// boundary points first, so passing the offset given to Trace places the
// pixels where they were found.
//
// For a ModeTree result Rasterize reproduces the traced raster exactly.
func Rasterize(res *Result, width, height int, offset image.Point) *raster.Binary {
	out := raster.New(width, height)
	for _, b := range res.Boundaries {
		poly := make([]image.Point, len(b.Points))
		for i, p := range b.Points {
			poly[i] = p.Sub(offset)
		}
		box := bounds(poly).Intersect(image.Rect(0, 0, width, height))
		for y := box.Min.Y; y < box.Max.Y; y++ {
			for x := box.Min.X; x < box.Max.X; x++ {
				on, inside := locate(poly, image.Point{X: x, Y: y})
				switch {
				case b.Hole && inside && !on:
					out.Set(x, y, 0)
				case !b.Hole && (inside || on):
					out.Set(x, y, 1)
				}
			}
		}
	}
	return out
}

// bounds returns the pixel rectangle covering poly.
func bounds(poly []image.Point) image.Rectangle {
	if len(poly) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: poly[0], Max: poly[0].Add(image.Point{X: 1, Y: 1})}
	for _, p := range poly[1:] {
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Point{X: 1, Y: 1})})
	}
	return r
}

// locate reports whether p lies on an edge of the closed polygon poly and
// whether it is inside by the even-odd rule.
func locate(poly []image.Point, p image.Point) (on, inside bool) {
	n := len(poly)
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[(i+1)%n]
		if onSegment(a, b, p) {
			return true, false
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			// x of the edge at row p.Y, compared without division.
			num := (p.Y-a.Y)*(b.X-a.X) + a.X*(b.Y-a.Y)
			den := b.Y - a.Y
			if den > 0 && p.X*den < num || den < 0 && p.X*den > num {
				inside = !inside
			}
		}
	}
	return false, inside
}

func onSegment(a, b, p image.Point) bool {
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	if cross != 0 {
		return false
	}
	return min(a.X, b.X) <= p.X && p.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= p.Y && p.Y <= max(a.Y, b.Y)
}
