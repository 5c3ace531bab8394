package geometry

import (
	"sort"

	"github.com/golang/geo/r2"
)

// ConvexHull returns the indices of the hull vertices of pts. The hull starts
// at the leftmost (then lowest) point and runs with positive signed area, or
// negative when clockwise is set. Points on a hull edge are not vertices, and
// of several equal points only the first is used.
func ConvexHull(pts []r2.Point, clockwise bool) ([]int, error) {
	if err := need("convex hull", pts, 3); err != nil {
		return nil, err
	}
	hull := monotoneChain(pts)
	if clockwise && len(hull) > 2 {
		for i, j := 1, len(hull)-1; i < j; i, j = i+1, j-1 {
			hull[i], hull[j] = hull[j], hull[i]
		}
	}
	return hull, nil
}

// monotoneChain is Andrew's algorithm over indices. The hull comes back with
// positive signed area.
func monotoneChain(pts []r2.Point) []int {
	order := make([]int, len(pts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := pts[order[a]], pts[order[b]]
		if pa.X != pb.X {
			return pa.X < pb.X
		}
		return pa.Y < pb.Y
	})
	uniq := order[:0]
	for _, i := range order {
		if len(uniq) > 0 && pts[uniq[len(uniq)-1]] == pts[i] {
			continue
		}
		uniq = append(uniq, i)
	}
	if len(uniq) < 3 {
		return append([]int(nil), uniq...)
	}

	hull := make([]int, 0, 2*len(uniq))
	for _, i := range uniq {
		for len(hull) >= 2 && cross(pts[hull[len(hull)-2]], pts[hull[len(hull)-1]], pts[i]) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, i)
	}
	lower := len(hull) + 1
	for k := len(uniq) - 2; k >= 0; k-- {
		i := uniq[k]
		for len(hull) >= lower && cross(pts[hull[len(hull)-2]], pts[hull[len(hull)-1]], pts[i]) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, i)
	}
	return hull[:len(hull)-1]
}
