package watershed

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/ironsheep/shape-tools-mcp/internal/raster"
)

func grayRow(values ...uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, len(values), 1))
	copy(img.Pix, values)
	return img
}

func TestFlood_Row(t *testing.T) {
	tests := []struct {
		name   string
		img    *image.Gray
		seeds  map[int]int32
		expect []int32
	}{
		{
			name:   "ridge in the middle",
			img:    grayRow(0, 0, 0, 255, 0, 0, 0),
			seeds:  map[int]int32{0: 1, 6: 2},
			expect: []int32{1, 1, 1, Boundary, 2, 2, 2},
		},
		{
			name:   "ridge near one marker",
			img:    grayRow(0, 0, 0, 0, 0, 255, 0),
			seeds:  map[int]int32{0: 1, 6: 2},
			expect: []int32{1, 1, 1, 1, 1, Boundary, 2},
		},
		{
			name:   "single marker",
			img:    grayRow(10, 200, 30, 90),
			seeds:  map[int]int32{2: 5},
			expect: []int32{5, 5, 5, 5},
		},
		{
			name:   "no markers",
			img:    grayRow(1, 2, 3),
			expect: []int32{0, 0, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := raster.NewMarkers(len(tt.expect), 1)
			for x, v := range tt.seeds {
				m.Set(x, 0, v)
			}
			before := m.Clone()
			got, err := Flood(tt.img, m)
			if err != nil {
				t.Fatalf("Flood failed: %v", err)
			}
			if diff := cmp.Diff(tt.expect, got.Pix); diff != "" {
				t.Errorf("labels mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(before.Pix, m.Pix); diff != "" {
				t.Errorf("input markers modified:\n%s", diff)
			}
		})
	}
}

func TestFlood_Wall(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 7, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			c := color.RGBA{A: 255}
			if x == 3 {
				c.G = 240
			}
			img.Set(x, y, c)
		}
	}
	m := raster.NewMarkers(7, 5)
	m.Set(0, 2, 1)
	m.Set(6, 2, 2)

	got, err := Flood(img, m)
	if err != nil {
		t.Fatalf("Flood failed: %v", err)
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			want := int32(1)
			switch {
			case x == 3:
				want = Boundary
			case x > 3:
				want = 2
			}
			if v := got.At(x, y); v != want {
				t.Errorf("(%d,%d): got %d, want %d", x, y, v, want)
			}
		}
	}
}

func TestFlood_SizeMismatch(t *testing.T) {
	_, err := Flood(grayRow(1, 2, 3), raster.NewMarkers(2, 1))
	if !errors.Is(err, raster.ErrShape) {
		t.Errorf("got %v, want ErrShape", err)
	}
}
