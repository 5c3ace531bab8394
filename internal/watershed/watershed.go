// Package watershed segments an image by flooding it from labeled markers.
package watershed

import (
	"container/heap"
	"image"

	"github.com/pkg/errors"

	"github.com/ironsheep/shape-tools-mcp/internal/raster"
)

// Boundary marks a pixel where two basins meet.
const Boundary int32 = -1

const queued int32 = -2

// Flood grows the positive labels of markers over img in order of increasing
// local contrast, writing Boundary wherever two different labels meet. Zero
// pixels are unlabeled; negative input pixels are left untouched and act as
// barriers. The contrast between two neighbours is the largest absolute
// difference of their 8-bit color channels. The markers are not modified.
func Flood(img image.Image, markers *raster.Markers) (*raster.Markers, error) {
	if err := markers.Validate(); err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	if bounds.Dx() != markers.Width || bounds.Dy() != markers.Height {
		return nil, errors.Wrapf(raster.ErrShape, "image is %dx%d, markers are %dx%d",
			bounds.Dx(), bounds.Dy(), markers.Width, markers.Height)
	}

	f := &flooder{
		w:      markers.Width,
		h:      markers.Height,
		colors: channels(img),
		out:    markers.Clone(),
	}
	f.seed()
	f.run()
	return f.out, nil
}

type flooder struct {
	w, h   int
	colors [][3]uint8
	out    *raster.Markers
	queue  pixelQueue
	seq    int
}

var steps = [4]image.Point{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}}

func channels(img image.Image) [][3]uint8 {
	b := img.Bounds()
	out := make([][3]uint8, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out = append(out, [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8)})
		}
	}
	return out
}

func (f *flooder) contrast(i, j int) int {
	d := 0
	for c := 0; c < 3; c++ {
		v := int(f.colors[i][c]) - int(f.colors[j][c])
		if v < 0 {
			v = -v
		}
		if v > d {
			d = v
		}
	}
	return d
}

func (f *flooder) push(i, priority int) {
	f.out.Pix[i] = queued
	heap.Push(&f.queue, pixel{index: i, priority: priority, seq: f.seq})
	f.seq++
}

// seed queues every unlabeled pixel touching a marker, at the lowest contrast
// to any of its labeled neighbours.
func (f *flooder) seed() {
	for y := 0; y < f.h; y++ {
		for x := 0; x < f.w; x++ {
			i := y*f.w + x
			if f.out.Pix[i] != 0 {
				continue
			}
			best := -1
			for _, s := range steps {
				nx, ny := x+s.X, y+s.Y
				if nx < 0 || ny < 0 || nx >= f.w || ny >= f.h {
					continue
				}
				j := ny*f.w + nx
				if f.out.Pix[j] <= 0 {
					continue
				}
				if d := f.contrast(i, j); best < 0 || d < best {
					best = d
				}
			}
			if best >= 0 {
				f.push(i, best)
			}
		}
	}
}

func (f *flooder) run() {
	for f.queue.Len() > 0 {
		p := heap.Pop(&f.queue).(pixel)
		x, y := p.index%f.w, p.index/f.w

		label := int32(0)
		for _, s := range steps {
			nx, ny := x+s.X, y+s.Y
			if nx < 0 || ny < 0 || nx >= f.w || ny >= f.h {
				continue
			}
			n := f.out.Pix[ny*f.w+nx]
			if n <= 0 {
				continue
			}
			if label == 0 {
				label = n
			} else if n != label {
				label = Boundary
			}
		}
		f.out.Pix[p.index] = label
		if label == Boundary {
			continue
		}

		for _, s := range steps {
			nx, ny := x+s.X, y+s.Y
			if nx < 0 || ny < 0 || nx >= f.w || ny >= f.h {
				continue
			}
			j := ny*f.w + nx
			if f.out.Pix[j] == 0 {
				f.push(j, f.contrast(p.index, j))
			}
		}
	}
}

type pixel struct {
	index    int
	priority int
	seq      int
}

// pixelQueue orders by priority, then by insertion.
type pixelQueue []pixel

func (q pixelQueue) Len() int { return len(q) }

func (q pixelQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	return q[i].seq < q[j].seq
}

func (q pixelQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *pixelQueue) Push(x any) { *q = append(*q, x.(pixel)) }

func (q *pixelQueue) Pop() any {
	old := *q
	p := old[len(old)-1]
	*q = old[:len(old)-1]
	return p
}
