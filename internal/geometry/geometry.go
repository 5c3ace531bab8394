package geometry

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

var (
	// ErrInsufficientPoints is returned when an operation gets fewer points
	// than it needs.
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrShapeMismatch is returned for coordinate lists of different lengths
	// and for indices outside the point set.
	ErrShapeMismatch = errors.New("point data shape mismatch")
	// ErrDegenerate is returned when a fit has no well-defined solution.
	ErrDegenerate = errors.New("degenerate point set")
)

// PointsFromXY zips parallel coordinate slices into points.
func PointsFromXY(xs, ys []float64) ([]r2.Point, error) {
	if len(xs) != len(ys) {
		return nil, errors.Wrapf(ErrShapeMismatch, "%d x values, %d y values", len(xs), len(ys))
	}
	pts := make([]r2.Point, len(xs))
	for i := range xs {
		pts[i] = r2.Point{X: xs[i], Y: ys[i]}
	}
	return pts, nil
}

func need(op string, pts []r2.Point, n int) error {
	if len(pts) < n {
		return errors.Wrapf(ErrInsufficientPoints, "%s needs %d points, got %d", op, n, len(pts))
	}
	return nil
}

// RotatedRect is a rectangle or an ellipse's bounding box. Angle is in degrees
// and gives the direction of the Width side, measured from the x axis towards
// the y axis.
type RotatedRect struct {
	Center r2.Point
	Width  float64
	Height float64
	Angle  float64
}

// Corners returns the four corners in order around the rectangle.
func (r RotatedRect) Corners() [4]r2.Point {
	rad := r.Angle * math.Pi / 180
	u := r2.Point{X: math.Cos(rad), Y: math.Sin(rad)}.Mul(r.Width / 2)
	v := r2.Point{X: -math.Sin(rad), Y: math.Cos(rad)}.Mul(r.Height / 2)
	return [4]r2.Point{
		r.Center.Sub(u).Sub(v),
		r.Center.Add(u).Sub(v),
		r.Center.Add(u).Add(v),
		r.Center.Sub(u).Add(v),
	}
}

// cross returns the z component of (a-o) x (b-o).
func cross(o, a, b r2.Point) float64 {
	return a.Sub(o).Cross(b.Sub(o))
}
