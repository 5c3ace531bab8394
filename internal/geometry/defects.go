package geometry

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// Defect is a stretch of contour that leaves the convex hull. Start and End
// are the contour indices of the two hull vertices bounding it, Farthest the
// contour index deepest inside the hull and Depth its distance to the hull
// edge. FixedDepth is Depth in 8.8 fixed point.
type Defect struct {
	Start      int
	End        int
	Farthest   int
	Depth      float64
	FixedDepth int
}

// ConvexityDefects finds, for every pair of consecutive hull vertices, the
// contour point between them farthest from the hull edge. Pairs whose contour
// stays on the edge yield no defect. hull holds contour indices as returned by
// ConvexHull and may run in either direction.
func ConvexityDefects(contour []r2.Point, hull []int) ([]Defect, error) {
	if err := need("convexity defects", contour, 3); err != nil {
		return nil, err
	}
	if len(hull) < 3 {
		return nil, errors.Wrapf(ErrInsufficientPoints, "convexity defects needs 3 hull indices, got %d", len(hull))
	}
	n := len(contour)
	for _, h := range hull {
		if h < 0 || h >= n {
			return nil, errors.Wrapf(ErrShapeMismatch, "hull index %d outside %d contour points", h, n)
		}
	}

	// Walk the hull in the direction the contour indices increase.
	order := hull
	if ascents(hull) != 2 {
		order = make([]int, len(hull))
		for i, h := range hull {
			order[len(hull)-1-i] = h
		}
	}

	var defects []Defect
	cur := order[len(order)-1]
	for _, next := range order {
		a, b := contour[cur], contour[next]
		edge := b.Sub(a)
		scale := 0.0
		if l := edge.Norm(); l > 0 {
			scale = 1 / l
		}

		farthest, depth := -1, 0.0
		for j := (cur + 1) % n; j != next; j = (j + 1) % n {
			d := math.Abs(edge.Cross(contour[j].Sub(a))) * scale
			if d > depth {
				farthest, depth = j, d
			}
		}
		if farthest >= 0 {
			defects = append(defects, Defect{
				Start:      cur,
				End:        next,
				Farthest:   farthest,
				Depth:      depth,
				FixedDepth: int(math.Round(depth * 256)),
			})
		}
		cur = next
	}
	return defects, nil
}

// ascents counts increases among the first three hull indices, cyclically. A
// hull listed in contour order has exactly two.
func ascents(hull []int) int {
	c := 0
	if hull[1] > hull[0] {
		c++
	}
	if hull[2] > hull[1] {
		c++
	}
	if hull[0] > hull[2] {
		c++
	}
	return c
}
