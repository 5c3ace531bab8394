package geometry

import (
	"math"

	"github.com/golang/geo/r2"
)

// Area returns the area of the closed polygon pts using the shoelace formula.
// With oriented set the sign is kept: positive when the vertices turn left in
// x-right, y-up axes.
func Area(pts []r2.Point, oriented bool) (float64, error) {
	if err := need("area", pts, 3); err != nil {
		return 0, err
	}
	a := signedArea(pts)
	if !oriented {
		a = math.Abs(a)
	}
	return a, nil
}

func signedArea(pts []r2.Point) float64 {
	sum := 0.0
	prev := pts[len(pts)-1]
	for _, p := range pts {
		sum += prev.Cross(p)
		prev = p
	}
	return sum / 2
}
