package contour

import (
	"image"

	"github.com/pkg/errors"

	"github.com/ironsheep/shape-tools-mcp/internal/raster"
)

// Chain directions, counter-clockwise as displayed starting east.
var directions = [8]image.Point{
	{X: 1, Y: 0},   // E
	{X: 1, Y: -1},  // NE
	{X: 0, Y: -1},  // N
	{X: -1, Y: -1}, // NW
	{X: -1, Y: 0},  // W
	{X: -1, Y: 1},  // SW
	{X: 0, Y: 1},   // S
	{X: 1, Y: 1},   // SE
}

const (
	dirEast = 0
	dirWest = 4
)

// frame is the border number of the padding around the raster, which acts as
// the hole every top-level boundary sits in.
const frame = 1

// border is a traced border before retention and renumbering.
type border struct {
	hole   bool
	parent int32 // border number of the parent; frame for top level
	points []image.Point
}

// tracer owns the padded arena for one Trace call.
type tracer struct {
	width   int // padded width
	height  int // padded height
	grid    []int32
	step    [8]int // arena index delta per direction
	borders []border
}

// Trace follows every boundary of the foreground regions of b and returns them
// with their hierarchy, retained according to mode and compressed according to
// approx. offset is added to every emitted point.
//
// The input raster is not modified.
func Trace(b *raster.Binary, mode Mode, approx Approximation, offset image.Point) (*Result, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if !mode.Valid() {
		return nil, errors.Wrapf(ErrMode, "%d", int(mode))
	}
	if !approx.Valid() {
		return nil, errors.Wrapf(ErrApproximation, "%d", int(approx))
	}

	t := newTracer(b)
	t.scan()
	return t.assemble(mode, approx, offset), nil
}

func newTracer(b *raster.Binary) *tracer {
	t := &tracer{
		width:  b.Width + 2,
		height: b.Height + 2,
	}
	t.grid = make([]int32, t.width*t.height)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.Pix[y*b.Width+x] != 0 {
				t.grid[(y+1)*t.width+x+1] = 1
			}
		}
	}
	for d, v := range directions {
		t.step[d] = v.Y*t.width + v.X
	}
	return t
}

// scan performs the raster scan, starting a border walk wherever a new outer
// or hole border begins.
func (t *tracer) scan() {
	nbd := int32(frame)
	for y := 1; y < t.height-1; y++ {
		lnbd := int32(frame)
		for x := 1; x < t.width-1; x++ {
			i := y*t.width + x
			v := t.grid[i]
			if v == 0 {
				continue
			}

			start := -1
			hole := false
			switch {
			case v == 1 && t.grid[i-1] == 0:
				start = dirWest
			case v >= 1 && t.grid[i+1] == 0:
				start = dirEast
				hole = true
				if v > 1 {
					lnbd = v
				}
			}

			if start >= 0 {
				nbd++
				parent := t.parentOf(hole, lnbd)
				points := t.follow(x, y, start, nbd)
				t.borders = append(t.borders, border{hole: hole, parent: parent, points: points})
			}

			if v := t.grid[i]; v != 1 {
				lnbd = abs32(v)
			}
		}
	}
}

// parentOf decides the parent of a new border from the type of the last border
// met on the current row.
func (t *tracer) parentOf(hole bool, lnbd int32) int32 {
	prevHole := true
	prevParent := int32(frame)
	if lnbd != frame {
		prev := t.borders[lnbd-2]
		prevHole = prev.hole
		prevParent = prev.parent
	}
	if hole == prevHole {
		return prevParent
	}
	return lnbd
}

// follow walks one border starting at padded pixel (x0, y0). from is the
// direction of the background neighbour that triggered the start. Visited
// pixels are stamped with nbd, or -nbd where the walk examined background to
// the east. Returned points are in unpadded raster coordinates.
func (t *tracer) follow(x0, y0, from int, nbd int32) []image.Point {
	i0 := y0*t.width + x0

	// Look clockwise from the background neighbour for the first foreground one.
	first := -1
	for k := 0; k < 8; k++ {
		d := (from - k + 8) % 8
		if t.grid[i0+t.step[d]] != 0 {
			first = d
			break
		}
	}
	if first < 0 {
		t.grid[i0] = -nbd
		return []image.Point{{X: x0 - 1, Y: y0 - 1}}
	}

	i1 := i0 + t.step[first]
	cur, back := i0, first
	x, y := x0, y0
	var points []image.Point
	for {
		points = append(points, image.Point{X: x - 1, Y: y - 1})

		// Counter-clockwise from the pixel we came from.
		next := back
		eastSeen := false
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			if t.grid[cur+t.step[d]] != 0 {
				next = d
				break
			}
			if d == dirEast {
				eastSeen = true
			}
		}

		switch {
		case eastSeen:
			t.grid[cur] = -nbd
		case t.grid[cur] == 1:
			t.grid[cur] = nbd
		}

		nxt := cur + t.step[next]
		if nxt == i0 && cur == i1 {
			break
		}
		back = (next + 4) % 8
		cur = nxt
		x += directions[next].X
		y += directions[next].Y
	}
	return points
}

// assemble applies retention and approximation, renumbers the kept borders and
// links them into the hierarchy.
func (t *tracer) assemble(mode Mode, approx Approximation, offset image.Point) *Result {
	n := len(t.borders)
	depth := make([]int, n)
	for i, b := range t.borders {
		if b.parent != frame {
			depth[i] = depth[b.parent-2] + 1
		}
	}

	ids := make([]int, n)
	res := &Result{}
	for i, b := range t.borders {
		ids[i] = None
		if !retained(mode, depth[i]) {
			continue
		}
		ids[i] = len(res.Boundaries)

		points := b.points
		if approx == ApproxSimple {
			points = compress(points)
		}
		shifted := make([]image.Point, len(points))
		for j, p := range points {
			shifted[j] = p.Add(offset)
		}
		res.Boundaries = append(res.Boundaries, Boundary{Points: shifted, Hole: b.hole})
	}

	res.Hierarchy = make([]Node, len(res.Boundaries))
	for i := range res.Hierarchy {
		res.Hierarchy[i] = emptyNode()
	}
	lastChild := make([]int, len(res.Boundaries))
	for i := range lastChild {
		lastChild[i] = None
	}
	lastRoot := None

	for i, b := range t.borders {
		id := ids[i]
		if id == None {
			continue
		}
		parent := None
		if mode != ModeList && b.parent != frame {
			parent = ids[b.parent-2]
		}

		node := &res.Hierarchy[id]
		node.Parent = parent
		if parent == None {
			if lastRoot != None {
				res.Hierarchy[lastRoot].Next = id
				node.Prev = lastRoot
			}
			lastRoot = id
			continue
		}
		if last := lastChild[parent]; last != None {
			res.Hierarchy[last].Next = id
			node.Prev = last
		} else {
			res.Hierarchy[parent].FirstChild = id
		}
		lastChild[parent] = id
	}
	return res
}

func retained(mode Mode, depth int) bool {
	switch mode {
	case ModeExternal:
		return depth == 0
	case ModeCComp:
		return depth <= 1
	default:
		return true
	}
}

// compress drops points that continue a straight run, keeping only those where
// the chain direction changes. The polygon described is unchanged.
func compress(points []image.Point) []image.Point {
	n := len(points)
	if n <= 2 {
		return points
	}
	out := make([]image.Point, 0, n)
	for i, p := range points {
		prev := points[(i+n-1)%n]
		next := points[(i+1)%n]
		if p.Sub(prev) != next.Sub(p) {
			out = append(out, p)
		}
	}
	return out
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
