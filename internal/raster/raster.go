package raster

import (
	"image"
	"image/color"
	"strings"

	"github.com/anthonynsimon/bild/segment"
	"github.com/pkg/errors"
)

// ErrShape is returned when raster dimensions and pixel storage disagree, or
// when two rasters that must match in size do not.
var ErrShape = errors.New("raster shape mismatch")

// Binary is a binary raster. Zero pixels are background, non-zero pixels are
// foreground.
type Binary struct {
	Width  int
	Height int
	Pix    []uint8
}

// New returns an all-background raster of the given size.
func New(width, height int) *Binary {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Binary{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// FromRows builds a raster from row slices. All rows must have the same length.
func FromRows(rows [][]uint8) (*Binary, error) {
	if len(rows) == 0 {
		return New(0, 0), nil
	}
	width := len(rows[0])
	b := New(width, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, errors.Wrapf(ErrShape, "row %d has %d pixels, want %d", y, len(row), width)
		}
		copy(b.Pix[y*width:], row)
	}
	return b, nil
}

// Parse builds a raster from a picture where '#' (or any character other than
// '.', '0', or ' ') marks foreground. Lines are separated by newlines.
// Surrounding tabs are ignored, so pictures can be indented with tabs, and
// lines that are empty after that are skipped. Spaces are pixels.
//
//	raster.Parse(`
//		###
//		# #
//		###`)
func Parse(picture string) (*Binary, error) {
	var rows [][]uint8
	for _, line := range strings.Split(picture, "\n") {
		line = strings.Trim(line, "\t\r")
		if line == "" {
			continue
		}
		row := make([]uint8, len(line))
		for i, ch := range line {
			switch ch {
			case '.', '0', ' ':
			default:
				row[i] = 1
			}
		}
		rows = append(rows, row)
	}
	return FromRows(rows)
}

// MustParse is like Parse but panics on malformed pictures. Intended for tests
// and fixed fixtures.
func MustParse(picture string) *Binary {
	b, err := Parse(picture)
	if err != nil {
		panic(err)
	}
	return b
}

// Validate checks that the pixel slice matches the declared dimensions.
func (b *Binary) Validate() error {
	if b == nil {
		return errors.Wrap(ErrShape, "nil raster")
	}
	if b.Width < 0 || b.Height < 0 {
		return errors.Wrapf(ErrShape, "negative dimensions %dx%d", b.Width, b.Height)
	}
	if len(b.Pix) != b.Width*b.Height {
		return errors.Wrapf(ErrShape, "%dx%d raster has %d pixels", b.Width, b.Height, len(b.Pix))
	}
	return nil
}

// In reports whether (x, y) lies inside the raster.
func (b *Binary) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// At returns the pixel value at (x, y), or 0 outside the raster.
func (b *Binary) At(x, y int) uint8 {
	if !b.In(x, y) {
		return 0
	}
	return b.Pix[y*b.Width+x]
}

// Set stores v at (x, y). Coordinates outside the raster are ignored.
func (b *Binary) Set(x, y int, v uint8) {
	if b.In(x, y) {
		b.Pix[y*b.Width+x] = v
	}
}

// Foreground reports whether (x, y) is a foreground pixel.
func (b *Binary) Foreground(x, y int) bool {
	return b.At(x, y) != 0
}

// Count returns the number of foreground pixels.
func (b *Binary) Count() int {
	n := 0
	for _, v := range b.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the raster.
func (b *Binary) Clone() *Binary {
	c := &Binary{Width: b.Width, Height: b.Height, Pix: make([]uint8, len(b.Pix))}
	copy(c.Pix, b.Pix)
	return c
}

// Equal reports whether two rasters have the same size and foreground set.
// Non-zero values are treated as equal to each other.
func (b *Binary) Equal(o *Binary) bool {
	if b.Width != o.Width || b.Height != o.Height || len(b.Pix) != len(o.Pix) {
		return false
	}
	for i := range b.Pix {
		if (b.Pix[i] != 0) != (o.Pix[i] != 0) {
			return false
		}
	}
	return true
}

// String renders the raster with '#' for foreground and '.' for background.
func (b *Binary) String() string {
	var sb strings.Builder
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.Foreground(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FromImage binarizes an image. Pixels whose luminance is at least level become
// foreground; with invert set, pixels below level become foreground instead,
// which suits dark shapes on a light page.
//
// The result is indexed from the image's Bounds().Min, so pixel (0,0) of the
// raster is the top-left pixel of img regardless of its origin.
func FromImage(img image.Image, level uint8, invert bool) *Binary {
	thresholded := segment.Threshold(img, level)
	bounds := thresholded.Bounds()
	b := New(bounds.Dx(), bounds.Dy())
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			on := thresholded.Pix[thresholded.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)] != 0
			if invert {
				on = !on
			}
			if on {
				b.Pix[y*b.Width+x] = 1
			}
		}
	}
	return b
}

// Image renders the raster as a grayscale image, foreground white.
func (b *Binary) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	for i, v := range b.Pix {
		if v != 0 {
			img.Pix[i] = 255
		}
	}
	return img
}

// Markers is a signed label raster. Positive values are region labels, zero
// means unassigned, and negative values mark boundaries between regions.
type Markers struct {
	Width  int
	Height int
	Pix    []int32
}

// NewMarkers returns an all-zero marker raster.
func NewMarkers(width, height int) *Markers {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Markers{Width: width, Height: height, Pix: make([]int32, width*height)}
}

// MarkersFromImage reads seed labels from an image. The gray level of each
// pixel is its label, so a PNG painted with values 1, 2, 3 on black yields three
// seeds.
func MarkersFromImage(img image.Image) *Markers {
	bounds := img.Bounds()
	m := NewMarkers(bounds.Dx(), bounds.Dy())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			g := color.Gray16Model.Convert(img.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.Gray16)
			m.Pix[y*m.Width+x] = int32(g.Y >> 8)
		}
	}
	return m
}

// Validate checks that the pixel slice matches the declared dimensions.
func (m *Markers) Validate() error {
	if m == nil {
		return errors.Wrap(ErrShape, "nil markers")
	}
	if m.Width < 0 || m.Height < 0 || len(m.Pix) != m.Width*m.Height {
		return errors.Wrapf(ErrShape, "%dx%d markers have %d pixels", m.Width, m.Height, len(m.Pix))
	}
	return nil
}

// At returns the label at (x, y), or 0 outside the raster.
func (m *Markers) At(x, y int) int32 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Pix[y*m.Width+x]
}

// Set stores v at (x, y). Coordinates outside the raster are ignored.
func (m *Markers) Set(x, y int, v int32) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// Clone returns a deep copy of the markers.
func (m *Markers) Clone() *Markers {
	c := &Markers{Width: m.Width, Height: m.Height, Pix: make([]int32, len(m.Pix))}
	copy(c.Pix, m.Pix)
	return c
}
