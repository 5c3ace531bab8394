package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// EdgeMask runs Canny-style edge detection and returns a mask with edges at
// 255 and everything else at 0, positioned at (0,0). Tracing the mask instead
// of a thresholded image outlines drawn shapes whose interiors are not filled.
//
// # Algorithm
//
//  1. luminance with effect.Grayscale
//  2. Gaussian blur (radius 1.4) to suppress noise
//  3. Sobel gradients, magnitude and direction
//  4. non-maximum suppression along the gradient direction
//  5. hysteresis: pixels at or above high are edges, and pixels at or above
//     low are edges when 8-connected to one
//
// Thresholds apply to the raw Sobel magnitude of 8-bit luminance; 50 and 150
// suit clean diagrams.
func EdgeMask(img image.Image, low, high int) *image.Gray {
	gray := effect.Grayscale(blur.Gaussian(img, 1.4))
	gb := gray.Bounds()
	w, h := gb.Dx(), gb.Dy()
	lum := func(x, y int) float64 {
		x = clamp(x, 0, w-1)
		y = clamp(y, 0, h-1)
		return float64(gray.Pix[gray.PixOffset(gb.Min.X+x, gb.Min.Y+y)])
	}

	mag := make([]float64, w*h)
	dir := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := lum(x+1, y-1) + 2*lum(x+1, y) + lum(x+1, y+1) -
				lum(x-1, y-1) - 2*lum(x-1, y) - lum(x-1, y+1)
			gy := lum(x-1, y+1) + 2*lum(x, y+1) + lum(x+1, y+1) -
				lum(x-1, y-1) - 2*lum(x, y-1) - lum(x+1, y-1)
			mag[y*w+x] = math.Hypot(gx, gy)
			dir[y*w+x] = math.Atan2(gy, gx)
		}
	}

	thin := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			dx, dy := sector(dir[i])
			if mag[i] >= mag[i+dy*w+dx] && mag[i] >= mag[i-dy*w-dx] {
				thin[i] = mag[i]
			}
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	var stack []int
	for i, v := range thin {
		if v >= float64(high) && out.Pix[i] == 0 {
			out.Pix[i] = 255
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for ny := y - 1; ny <= y+1; ny++ {
			for nx := x - 1; nx <= x+1; nx++ {
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if out.Pix[j] == 0 && thin[j] >= float64(low) {
					out.Pix[j] = 255
					stack = append(stack, j)
				}
			}
		}
	}
	return out
}

// sector quantizes a gradient direction to the neighbour offset it points at.
func sector(angle float64) (dx, dy int) {
	a := math.Mod(angle+math.Pi, math.Pi) // fold opposite directions together
	switch {
	case a < math.Pi/8 || a >= 7*math.Pi/8:
		return 1, 0
	case a < 3*math.Pi/8:
		return 1, 1
	case a < 5*math.Pi/8:
		return 0, 1
	default:
		return -1, 1
	}
}

// clamp constrains val to [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

