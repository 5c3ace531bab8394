package components

import (
	"fmt"
	"image"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/ironsheep/shape-tools-mcp/internal/raster"
)

// Connectivity is the pixel adjacency rule.
type Connectivity int

const (
	// Four connects pixels sharing an edge.
	Four Connectivity = 4
	// Eight connects pixels sharing an edge or a corner.
	Eight Connectivity = 8
)

// Valid reports whether c is Four or Eight.
func (c Connectivity) Valid() bool {
	return c == Four || c == Eight
}

// Algorithm selects the labeling strategy.
type Algorithm int

const (
	AlgorithmDefault Algorithm = iota
	AlgorithmUnionFind
	AlgorithmMultiPass
)

var (
	// ErrConnectivity is returned for an adjacency other than 4 or 8.
	ErrConnectivity = errors.New("connectivity must be 4 or 8")
	// ErrAlgorithm is returned for an unknown labeling strategy.
	ErrAlgorithm = errors.New("unknown labeling algorithm")
)

var algorithmNames = map[Algorithm]string{
	AlgorithmDefault:   "default",
	AlgorithmUnionFind: "union-find",
	AlgorithmMultiPass: "multi-pass",
}

func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// ParseAlgorithm parses "default", "union-find" or "multi-pass".
func ParseAlgorithm(s string) (Algorithm, error) {
	for a, name := range algorithmNames {
		if strings.EqualFold(s, name) {
			return a, nil
		}
	}
	return 0, errors.Wrapf(ErrAlgorithm, "%q", s)
}

// strategy writes provisional labels for b into out. Pixels of one region
// must end up with one positive value and distinct regions with distinct
// values; background must stay 0.
type strategy func(b *raster.Binary, c Connectivity, out []int32)

var strategies = map[Algorithm]strategy{
	AlgorithmDefault:   unionFind,
	AlgorithmUnionFind: unionFind,
	AlgorithmMultiPass: multiPass,
}

// Labels is a label raster. Pix is row-major; 0 is background.
type Labels struct {
	Count  int
	Width  int
	Height int
	Pix    []int32
}

// At returns the label at (x, y), or 0 outside the raster.
func (l *Labels) At(x, y int) int32 {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return 0
	}
	return l.Pix[y*l.Width+x]
}

// Label labels the connected foreground regions of b. The input is not
// modified. An all-background raster gives Count 0.
func Label(b *raster.Binary, c Connectivity, alg Algorithm) (*Labels, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if !c.Valid() {
		return nil, errors.Wrapf(ErrConnectivity, "got %d", int(c))
	}
	run, ok := strategies[alg]
	if !ok {
		return nil, errors.Wrapf(ErrAlgorithm, "%d", int(alg))
	}

	l := &Labels{Width: b.Width, Height: b.Height, Pix: make([]int32, len(b.Pix))}
	run(b, c, l.Pix)
	l.Count = densify(l.Pix)
	return l, nil
}

// densify renumbers provisional labels to 1..n in scan order of first use and
// returns n.
func densify(pix []int32) int {
	next := int32(0)
	dense := make(map[int32]int32)
	for i, v := range pix {
		if v == 0 {
			continue
		}
		d, ok := dense[v]
		if !ok {
			next++
			d = next
			dense[v] = d
		}
		pix[i] = d
	}
	return int(next)
}

// backward returns the raster offsets of the already scanned neighbours of a
// pixel in a forward scan.
func backward(c Connectivity) []image.Point {
	if c == Four {
		return []image.Point{{X: -1, Y: 0}, {X: 0, Y: -1}}
	}
	return []image.Point{{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1}}
}

// Stat describes one labeled region.
type Stat struct {
	Label    int
	Area     int
	Bounds   image.Rectangle
	Centroid r2.Point
}

// Stats returns per-label area, bounding box and centroid, indexed by label-1.
func (l *Labels) Stats() []Stat {
	stats := make([]Stat, l.Count)
	sums := make([]r2.Point, l.Count)
	for i := range stats {
		stats[i].Label = i + 1
	}
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			v := l.Pix[y*l.Width+x]
			if v == 0 {
				continue
			}
			s := &stats[v-1]
			px := image.Rect(x, y, x+1, y+1)
			if s.Area == 0 {
				s.Bounds = px
			} else {
				s.Bounds = s.Bounds.Union(px)
			}
			s.Area++
			sums[v-1] = sums[v-1].Add(r2.Point{X: float64(x), Y: float64(y)})
		}
	}
	for i := range stats {
		if stats[i].Area > 0 {
			stats[i].Centroid = sums[i].Mul(1 / float64(stats[i].Area))
		}
	}
	return stats
}
