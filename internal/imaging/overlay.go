package imaging

import (
	"image"
	"image/color"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"
)

// Outline is one closed polyline to draw, in the coordinates of the image it
// is drawn on.
type Outline struct {
	ID     int
	Hole   bool
	Points []image.Point
}

// OverlayOptions controls DrawOutlines.
type OverlayOptions struct {
	// Color is a hex color ("#RRGGBB") for every outline. Empty means one
	// palette color per outline.
	Color string
	// HoleColor, if set, overrides the color of hole outlines.
	HoleColor string
	// ShowIDs prints each outline's id next to its first point.
	ShowIDs bool
	// LineWidth of the outlines in pixels. Zero means 1.
	LineWidth float64
}

const labelSize = 10

var labelFont *truetype.Font

func init() {
	var err error
	labelFont, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// DrawOutlines copies img and draws the outlines over it. Vertices are pixel
// coordinates; lines run through pixel centers so a 1-pixel outline covers
// the boundary pixels themselves.
func DrawOutlines(img image.Image, outlines []Outline, opts OverlayOptions) (image.Image, error) {
	fixed, err := optionalColor(opts.Color)
	if err != nil {
		return nil, err
	}
	hole, err := optionalColor(opts.HoleColor)
	if err != nil {
		return nil, err
	}
	width := opts.LineWidth
	if width <= 0 {
		width = 1
	}

	bounds := img.Bounds()
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.DrawImage(img, -bounds.Min.X, -bounds.Min.Y)
	dc.SetLineWidth(width)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.SetLineCap(gg.LineCapRound)

	palette := Palette(len(outlines))
	for i, o := range outlines {
		var c color.Color = palette[i]
		if fixed != nil {
			c = *fixed
		}
		if o.Hole && hole != nil {
			c = *hole
		}
		dc.SetColor(c)
		strokeOutline(dc, o.Points, width)
	}

	if opts.ShowIDs {
		dc.SetFontFace(truetype.NewFace(labelFont, &truetype.Options{Size: labelSize}))
		for _, o := range outlines {
			if len(o.Points) > 0 {
				drawID(dc, strconv.Itoa(o.ID), o.Points[0])
			}
		}
	}
	return dc.Image(), nil
}

func strokeOutline(dc *gg.Context, pts []image.Point, width float64) {
	center := func(p image.Point) (float64, float64) { return float64(p.X) + 0.5, float64(p.Y) + 0.5 }
	switch len(pts) {
	case 0:
		return
	case 1:
		x, y := center(pts[0])
		dc.DrawCircle(x, y, width/2)
		dc.Fill()
		return
	}
	dc.NewSubPath()
	for _, p := range pts {
		dc.LineTo(center(p))
	}
	dc.ClosePath()
	dc.Stroke()
}

// drawID prints text on a dark box whose top-left corner sits just below and
// right of p.
func drawID(dc *gg.Context, text string, p image.Point) {
	w, h := dc.MeasureString(text)
	x, y := float64(p.X)+2, float64(p.Y)+2
	dc.SetRGBA(0, 0, 0, 0.7)
	dc.DrawRectangle(x-1, y-1, w+2, h+2)
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(text, x, y, 0, 1)
}

func optionalColor(hex string) (*color.NRGBA, error) {
	if hex == "" {
		return nil, nil
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid color %q", hex)
	}
	r, g, b := c.RGB255()
	return &color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
