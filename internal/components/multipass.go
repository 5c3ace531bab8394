package components

import "github.com/ironsheep/shape-tools-mcp/internal/raster"

// multiPass seeds every foreground pixel with its own label and sweeps the
// raster forwards then backwards, taking the minimum over each pixel and its
// scanned neighbours, until a full round changes nothing.
func multiPass(b *raster.Binary, c Connectivity, out []int32) {
	for i, v := range b.Pix {
		if v != 0 {
			out[i] = int32(i + 1)
		}
	}
	prior := backward(c)

	sweep := func(x, y, sign int) bool {
		i := y*b.Width + x
		cur := out[i]
		if cur == 0 {
			return false
		}
		low := cur
		for _, d := range prior {
			nx, ny := x+sign*d.X, y+sign*d.Y
			if nx < 0 || ny < 0 || nx >= b.Width || ny >= b.Height {
				continue
			}
			if n := out[ny*b.Width+nx]; n != 0 && n < low {
				low = n
			}
		}
		if low == cur {
			return false
		}
		out[i] = low
		return true
	}

	for changed := true; changed; {
		changed = false
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				if sweep(x, y, 1) {
					changed = true
				}
			}
		}
		for y := b.Height - 1; y >= 0; y-- {
			for x := b.Width - 1; x >= 0; x-- {
				if sweep(x, y, -1) {
					changed = true
				}
			}
		}
	}
}
