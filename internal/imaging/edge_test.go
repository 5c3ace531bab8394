package imaging

import (
	"image"
	"image/color"
	"testing"
)

func squareImage(size int, r image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if image.Pt(x, y).In(r) {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestEdgeMask_Square(t *testing.T) {
	mask := EdgeMask(squareImage(40, image.Rect(10, 10, 30, 30)), 50, 150)
	if mask.Bounds() != image.Rect(0, 0, 40, 40) {
		t.Fatalf("bounds: got %v", mask.Bounds())
	}

	for _, p := range []image.Point{{20, 20}, {2, 2}, {37, 37}, {2, 20}} {
		if v := mask.GrayAt(p.X, p.Y).Y; v != 0 {
			t.Errorf("%v: got edge %d in a flat area", p, v)
		}
	}

	// Each side of the square must produce an edge somewhere near it.
	sides := []struct {
		name string
		at   func(d int) image.Point
	}{
		{"left", func(d int) image.Point { return image.Pt(d, 20) }},
		{"right", func(d int) image.Point { return image.Pt(20+d, 20) }},
		{"top", func(d int) image.Point { return image.Pt(20, d) }},
		{"bottom", func(d int) image.Point { return image.Pt(20, 20+d) }},
	}
	for _, s := range sides {
		found := false
		for d := 6; d <= 14; d++ {
			p := s.at(d)
			if mask.GrayAt(p.X, p.Y).Y == 255 {
				found = true
			}
		}
		if !found {
			t.Errorf("%s side: no edge found", s.name)
		}
	}
}

func TestEdgeMask_Flat(t *testing.T) {
	mask := EdgeMask(squareImage(16, image.Rectangle{}), 50, 150)
	for i, v := range mask.Pix {
		if v != 0 {
			t.Fatalf("pixel %d: got edge in a flat image", i)
		}
	}
}
