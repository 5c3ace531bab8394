package geometry

import (
	"math"

	"github.com/golang/geo/r2"
)

// MinAreaRect returns the rotated rectangle of least area enclosing pts,
// found with rotating calipers over the convex hull. Angle is in [0, 90); a
// single point gives a zero-size rectangle and two distinct points a
// zero-height one.
func MinAreaRect(pts []r2.Point) (RotatedRect, error) {
	if err := need("minimum area rectangle", pts, 1); err != nil {
		return RotatedRect{}, err
	}
	idx := monotoneChain(pts)
	hull := make([]r2.Point, len(idx))
	for i, k := range idx {
		hull[i] = pts[k]
	}

	switch len(hull) {
	case 1:
		return RotatedRect{Center: hull[0]}, nil
	case 2:
		edge := hull[1].Sub(hull[0])
		return uprightRect(RotatedRect{
			Center: hull[0].Add(hull[1]).Mul(0.5),
			Width:  edge.Norm(),
			Angle:  math.Atan2(edge.Y, edge.X) * 180 / math.Pi,
		}), nil
	}

	best := RotatedRect{}
	bestArea := math.Inf(1)
	for i := range hull {
		u := hull[(i+1)%len(hull)].Sub(hull[i]).Normalize()
		v := u.Ortho()
		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			d := p.Sub(hull[i])
			pu, pv := d.Dot(u), d.Dot(v)
			minU, maxU = math.Min(minU, pu), math.Max(maxU, pu)
			minV, maxV = math.Min(minV, pv), math.Max(maxV, pv)
		}
		area := (maxU - minU) * (maxV - minV)
		if area < bestArea {
			bestArea = area
			mid := u.Mul((minU + maxU) / 2).Add(v.Mul((minV + maxV) / 2))
			best = RotatedRect{
				Center: hull[i].Add(mid),
				Width:  maxU - minU,
				Height: maxV - minV,
				Angle:  math.Atan2(u.Y, u.X) * 180 / math.Pi,
			}
		}
	}
	return uprightRect(best), nil
}

// uprightRect brings Angle into [0, 90), swapping the sides when the
// rectangle is turned a quarter.
func uprightRect(r RotatedRect) RotatedRect {
	r.Angle = normalizeAngle(r.Angle, 180)
	if r.Angle >= 90 {
		r.Angle -= 90
		r.Width, r.Height = r.Height, r.Width
	}
	return r
}
