package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// RenderResult is an encoded visualization.
type RenderResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Palette returns n distinct colors. Hues advance by the golden angle in HCL
// space so neighbouring labels never look alike, and the result is the same
// on every call.
func Palette(n int) []color.NRGBA {
	out := make([]color.NRGBA, n)
	for i := range out {
		hue := math.Mod(float64(i)*137.50776, 360)
		lightness := 0.62 + 0.12*float64(i%3)/2
		r, g, b := colorful.Hcl(hue, 0.55, lightness).Clamped().RGB255()
		out[i] = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}

// RenderLabels paints a label raster: 0 is black, negative values (watershed
// boundaries) are white and label k takes palette color k-1.
func RenderLabels(pix []int32, width, height, count int) (*image.NRGBA, error) {
	if width < 0 || height < 0 || len(pix) != width*height {
		return nil, errors.Errorf("%dx%d labels have %d pixels", width, height, len(pix))
	}
	palette := Palette(count)
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, v := range pix {
		c := color.NRGBA{A: 255}
		switch {
		case v < 0:
			c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		case v > 0 && int(v) <= count:
			c = palette[v-1]
		case v > 0:
			c = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
		}
		img.SetNRGBA(i%max(width, 1), i/max(width, 1), c)
	}
	return img, nil
}

// EncodePNG encodes img as a base64 PNG.
func EncodePNG(img image.Image) (*RenderResult, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "failed to encode image")
	}
	return &RenderResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
