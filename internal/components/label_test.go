package components

import (
	"image"
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/ironsheep/shape-tools-mcp/internal/raster"
)

var allAlgorithms = []Algorithm{AlgorithmDefault, AlgorithmUnionFind, AlgorithmMultiPass}

// floodFill labels b with a breadth-first search, independently of the
// strategies under test.
func floodFill(b *raster.Binary, c Connectivity) (int, []int32) {
	steps := []image.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}
	if c == Eight {
		steps = append(steps, image.Point{X: 1, Y: 1}, image.Point{X: 1, Y: -1}, image.Point{X: -1, Y: 1}, image.Point{X: -1, Y: -1})
	}
	labels := make([]int32, len(b.Pix))
	count := 0
	for start := range b.Pix {
		if b.Pix[start] == 0 || labels[start] != 0 {
			continue
		}
		count++
		labels[start] = int32(count)
		queue := []int{start}
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			x, y := i%b.Width, i/b.Width
			for _, s := range steps {
				nx, ny := x+s.X, y+s.Y
				if !b.In(nx, ny) {
					continue
				}
				j := ny*b.Width + nx
				if b.Pix[j] != 0 && labels[j] == 0 {
					labels[j] = int32(count)
					queue = append(queue, j)
				}
			}
		}
	}
	return count, labels
}

func randomRaster(rng *rand.Rand) *raster.Binary {
	b := raster.New(1+rng.Intn(16), 1+rng.Intn(12))
	density := 0.2 + 0.5*rng.Float64()
	for i := range b.Pix {
		if rng.Float64() < density {
			b.Pix[i] = 1
		}
	}
	return b
}

func TestLabel_FilledSquare(t *testing.T) {
	b := raster.MustParse(`
		.....
		.###.
		.###.
		.###.
		.....
	`)
	for _, alg := range allAlgorithms {
		l, err := Label(b, Eight, alg)
		if err != nil {
			t.Fatalf("%v: Label failed: %v", alg, err)
		}
		if l.Count != 1 {
			t.Errorf("%v: count: got %d, want 1", alg, l.Count)
		}
		ones := 0
		for _, v := range l.Pix {
			if v == 1 {
				ones++
			}
		}
		if ones != 9 {
			t.Errorf("%v: pixels labeled 1: got %d, want 9", alg, ones)
		}
	}
}

func TestLabel_Adjacency(t *testing.T) {
	b := raster.MustParse(`
		.#.
		#.#
		.#.
	`)
	tests := []struct {
		c     Connectivity
		count int
		pix   []int32
	}{
		{Four, 4, []int32{0, 1, 0, 2, 0, 3, 0, 4, 0}},
		{Eight, 1, []int32{0, 1, 0, 1, 0, 1, 0, 1, 0}},
	}
	for _, tt := range tests {
		for _, alg := range allAlgorithms {
			l, err := Label(b, tt.c, alg)
			if err != nil {
				t.Fatalf("Label failed: %v", err)
			}
			if l.Count != tt.count {
				t.Errorf("%d/%v: count: got %d, want %d", tt.c, alg, l.Count, tt.count)
			}
			if diff := cmp.Diff(tt.pix, l.Pix); diff != "" {
				t.Errorf("%d/%v: labels mismatch (-want +got):\n%s", tt.c, alg, diff)
			}
		}
	}
}

func TestLabel_UShape(t *testing.T) {
	// Two arms meet only at the bottom, after both got provisional labels.
	b := raster.MustParse(`
		#.#.#
		#.#.#
		###.#
		#...#
		#####
	`)
	for _, alg := range allAlgorithms {
		l, err := Label(b, Four, alg)
		if err != nil {
			t.Fatalf("Label failed: %v", err)
		}
		if l.Count != 1 {
			t.Errorf("%v: count: got %d, want 1", alg, l.Count)
		}
	}
}

func TestLabel_Empty(t *testing.T) {
	b := raster.New(7, 3)
	for _, alg := range allAlgorithms {
		l, err := Label(b, Four, alg)
		if err != nil {
			t.Fatalf("Label failed: %v", err)
		}
		if l.Count != 0 {
			t.Errorf("%v: count: got %d, want 0", alg, l.Count)
		}
		if diff := cmp.Diff(make([]int32, 21), l.Pix); diff != "" {
			t.Errorf("%v: labels not all zero:\n%s", alg, diff)
		}
	}
}

func TestLabel_InvalidArguments(t *testing.T) {
	b := raster.MustParse("#.#")
	if _, err := Label(b, Connectivity(6), AlgorithmDefault); !errors.Is(err, ErrConnectivity) {
		t.Errorf("connectivity 6: got %v, want ErrConnectivity", err)
	}
	if _, err := Label(b, Four, Algorithm(42)); !errors.Is(err, ErrAlgorithm) {
		t.Errorf("algorithm 42: got %v, want ErrAlgorithm", err)
	}
	bad := &raster.Binary{Width: 2, Height: 2, Pix: []uint8{1}}
	if _, err := Label(bad, Four, AlgorithmDefault); !errors.Is(err, raster.ErrShape) {
		t.Errorf("bad raster: got %v, want ErrShape", err)
	}
}

func TestLabel_MatchesFloodFill(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 0; n < 300; n++ {
		b := randomRaster(rng)
		before := b.Clone()
		for _, c := range []Connectivity{Four, Eight} {
			wantCount, wantPix := floodFill(b, c)
			for _, alg := range allAlgorithms {
				l, err := Label(b, c, alg)
				if err != nil {
					t.Fatalf("Label failed: %v", err)
				}
				if l.Count != wantCount {
					t.Fatalf("%d/%v: count: got %d, want %d for\n%s", c, alg, l.Count, wantCount, b)
				}
				// Both number regions by first pixel in scan order.
				if diff := cmp.Diff(wantPix, l.Pix); diff != "" {
					t.Fatalf("%d/%v: labels mismatch for\n%s(-want +got):\n%s", c, alg, b, diff)
				}
			}
		}
		if !b.Equal(before) {
			t.Fatal("Label modified its input")
		}
	}
}

func TestLabel_Partition(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for n := 0; n < 40; n++ {
		b := randomRaster(rng)
		for _, c := range []Connectivity{Four, Eight} {
			_, ref := floodFill(b, c)
			l, err := Label(b, c, AlgorithmMultiPass)
			if err != nil {
				t.Fatalf("Label failed: %v", err)
			}
			used := make(map[int32]bool)
			for i := range l.Pix {
				if (l.Pix[i] == 0) != (b.Pix[i] == 0) {
					t.Fatalf("pixel %d: label %d on value %d", i, l.Pix[i], b.Pix[i])
				}
				if l.Pix[i] != 0 {
					used[l.Pix[i]] = true
				}
				for j := range l.Pix {
					if b.Pix[i] == 0 || b.Pix[j] == 0 {
						continue
					}
					if (l.Pix[i] == l.Pix[j]) != (ref[i] == ref[j]) {
						t.Fatalf("pixels %d and %d: same label %v, connected %v", i, j, l.Pix[i] == l.Pix[j], ref[i] == ref[j])
					}
				}
			}
			for v := int32(1); v <= int32(l.Count); v++ {
				if !used[v] {
					t.Fatalf("label %d unused of %d", v, l.Count)
				}
			}
		}
	}
}

func TestStats(t *testing.T) {
	b := raster.MustParse(`
		##...
		##..#
		....#
	`)
	l, err := Label(b, Eight, AlgorithmDefault)
	if err != nil {
		t.Fatalf("Label failed: %v", err)
	}
	want := []Stat{
		{Label: 1, Area: 4, Bounds: image.Rect(0, 0, 2, 2), Centroid: r2.Point{X: 0.5, Y: 0.5}},
		{Label: 2, Area: 2, Bounds: image.Rect(4, 1, 5, 3), Centroid: r2.Point{X: 4, Y: 1.5}},
	}
	if diff := cmp.Diff(want, l.Stats()); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAlgorithm(t *testing.T) {
	for _, a := range allAlgorithms {
		got, err := ParseAlgorithm(a.String())
		if err != nil || got != a {
			t.Errorf("ParseAlgorithm(%q): got %v, %v", a.String(), got, err)
		}
	}
	if _, err := ParseAlgorithm("grana"); !errors.Is(err, ErrAlgorithm) {
		t.Errorf("got %v, want ErrAlgorithm", err)
	}
}
