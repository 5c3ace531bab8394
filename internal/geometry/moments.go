package geometry

import (
	"math"

	"github.com/golang/geo/r2"
)

// Moments holds the raw, central and normalized central moments of a polygon
// up to order three.
type Moments struct {
	M00, M10, M01, M20, M11, M02, M30, M21, M12, M03 float64
	Mu20, Mu11, Mu02, Mu30, Mu21, Mu12, Mu03         float64
	Nu20, Nu11, Nu02, Nu30, Nu21, Nu12, Nu03         float64
}

// MomentNames lists the moments in the order of Values.
var MomentNames = [24]string{
	"m00", "m10", "m01", "m20", "m11", "m02", "m30", "m21", "m12", "m03",
	"mu20", "mu11", "mu02", "mu30", "mu21", "mu12", "mu03",
	"nu20", "nu11", "nu02", "nu30", "nu21", "nu12", "nu03",
}

// Values returns the moments in the order of MomentNames.
func (m Moments) Values() [24]float64 {
	return [24]float64{
		m.M00, m.M10, m.M01, m.M20, m.M11, m.M02, m.M30, m.M21, m.M12, m.M03,
		m.Mu20, m.Mu11, m.Mu02, m.Mu30, m.Mu21, m.Mu12, m.Mu03,
		m.Nu20, m.Nu11, m.Nu02, m.Nu30, m.Nu21, m.Nu12, m.Nu03,
	}
}

// Centroid returns (m10/m00, m01/m00), or the zero point for an empty
// polygon.
func (m Moments) Centroid() r2.Point {
	if m.M00 == 0 {
		return r2.Point{}
	}
	return r2.Point{X: m.M10 / m.M00, Y: m.M01 / m.M00}
}

// ComputeMoments integrates the moments over the region enclosed by the
// polygon pts, edge by edge with Green's theorem. The result does not depend
// on the winding direction. A polygon with zero area has all moments zero.
func ComputeMoments(pts []r2.Point) (Moments, error) {
	if err := need("moments", pts, 1); err != nil {
		return Moments{}, err
	}

	var a00, a10, a01, a20, a11, a02, a30, a21, a12, a03 float64
	prev := pts[len(pts)-1]
	xp, yp := prev.X, prev.Y
	xp2, yp2 := xp*xp, yp*yp
	for _, p := range pts {
		x, y := p.X, p.Y
		x2, y2 := x*x, y*y
		dxy := xp*y - x*yp
		xs := xp + x
		ys := yp + y

		a00 += dxy
		a10 += dxy * xs
		a01 += dxy * ys
		a20 += dxy * (xp*xs + x2)
		a11 += dxy * (xp*(ys+yp) + x*(ys+y))
		a02 += dxy * (yp*ys + y2)
		a30 += dxy * xs * (xp2 + x2)
		a03 += dxy * ys * (yp2 + y2)
		a21 += dxy * (xp2*(3*yp+y) + 2*x*xp*ys + x2*(yp+3*y))
		a12 += dxy * (yp2*(3*xp+x) + 2*y*yp*xs + y2*(xp+3*x))

		xp, yp, xp2, yp2 = x, y, x2, y2
	}

	if math.Abs(a00) <= 1e-12 {
		return Moments{}, nil
	}

	sign := 1.0
	if a00 < 0 {
		sign = -1
	}
	m := Moments{
		M00: a00 * sign / 2,
		M10: a10 * sign / 6,
		M01: a01 * sign / 6,
		M20: a20 * sign / 12,
		M11: a11 * sign / 24,
		M02: a02 * sign / 12,
		M30: a30 * sign / 20,
		M21: a21 * sign / 60,
		M12: a12 * sign / 60,
		M03: a03 * sign / 20,
	}
	m.central()
	return m, nil
}

func (m *Moments) central() {
	cx, cy := m.M10/m.M00, m.M01/m.M00

	m.Mu20 = m.M20 - m.M10*cx
	m.Mu11 = m.M11 - m.M10*cy
	m.Mu02 = m.M02 - m.M01*cy
	m.Mu30 = m.M30 - cx*(3*m.Mu20+cx*m.M10)
	m.Mu21 = m.M21 - cx*(2*m.Mu11+cx*m.M01) - cy*m.Mu20
	m.Mu12 = m.M12 - cy*(2*m.Mu11+cy*m.M10) - cx*m.Mu02
	m.Mu03 = m.M03 - cy*(3*m.Mu02+cy*m.M01)

	inv := 1 / m.M00
	s2 := inv * inv
	s3 := s2 * math.Sqrt(math.Abs(inv))
	m.Nu20 = m.Mu20 * s2
	m.Nu11 = m.Mu11 * s2
	m.Nu02 = m.Mu02 * s2
	m.Nu30 = m.Mu30 * s3
	m.Nu21 = m.Mu21 * s3
	m.Nu12 = m.Mu12 * s3
	m.Nu03 = m.Mu03 * s3
}
