package imaging

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// ErrRegion is returned for a region that is empty, inverted or outside the
// image.
var ErrRegion = errors.New("invalid region")

// Crop extracts r from img as a new image whose top-left pixel is (0,0). r is
// in the coordinates of img.Bounds(); (x1,y1) is inclusive, (x2,y2) exclusive.
// Callers tracing inside the crop add r.Min.Sub(img.Bounds().Min) to recover
// full-image coordinates.
func Crop(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y {
		return nil, errors.Wrapf(ErrRegion, "(%d,%d)-(%d,%d): x1 must be < x2, y1 must be < y2",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
	}
	if !r.In(bounds) {
		return nil, errors.Wrapf(ErrRegion, "(%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	return imaging.Crop(img, r), nil
}

// NamedRegion resolves a region name against bounds. Known names are
// top-left, top-right, bottom-left, bottom-right, top-half, bottom-half,
// left-half, right-half and center (the middle half in each direction).
func NamedRegion(bounds image.Rectangle, name string) (image.Rectangle, error) {
	w, h := bounds.Dx(), bounds.Dy()
	midX, midY := w/2, h/2

	var r image.Rectangle
	switch name {
	case "top-left":
		r = image.Rect(0, 0, midX, midY)
	case "top-right":
		r = image.Rect(midX, 0, w, midY)
	case "bottom-left":
		r = image.Rect(0, midY, midX, h)
	case "bottom-right":
		r = image.Rect(midX, midY, w, h)
	case "top-half":
		r = image.Rect(0, 0, w, midY)
	case "bottom-half":
		r = image.Rect(0, midY, w, h)
	case "left-half":
		r = image.Rect(0, 0, midX, h)
	case "right-half":
		r = image.Rect(midX, 0, w, h)
	case "center":
		r = image.Rect(w/4, h/4, w-w/4, h-h/4)
	default:
		return image.Rectangle{}, errors.Wrapf(ErrRegion, "unknown region %q", name)
	}
	return r.Add(bounds.Min), nil
}
