package components

import "github.com/ironsheep/shape-tools-mcp/internal/raster"

// disjointSet is a union-find forest over provisional labels. Index 0 is
// unused so labels can be stored directly.
type disjointSet struct {
	parent []int32
	rank   []uint8
}

func (d *disjointSet) add() int32 {
	id := int32(len(d.parent))
	d.parent = append(d.parent, id)
	d.rank = append(d.rank, 0)
	return id
}

func (d *disjointSet) find(x int32) int32 {
	root := x
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for d.parent[x] != root {
		d.parent[x], x = root, d.parent[x]
	}
	return root
}

func (d *disjointSet) union(a, b int32) int32 {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return ra
	}
	if d.rank[ra] < d.rank[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	if d.rank[ra] == d.rank[rb] {
		d.rank[ra]++
	}
	return ra
}

func unionFind(b *raster.Binary, c Connectivity, out []int32) {
	set := &disjointSet{parent: []int32{0}, rank: []uint8{0}}
	prior := backward(c)

	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			i := y*b.Width + x
			if b.Pix[i] == 0 {
				continue
			}
			var label int32
			for _, d := range prior {
				nx, ny := x+d.X, y+d.Y
				if nx < 0 || ny < 0 || nx >= b.Width {
					continue
				}
				n := out[ny*b.Width+nx]
				if n == 0 {
					continue
				}
				if label == 0 {
					label = n
				} else if n != label {
					label = set.union(label, n)
				}
			}
			if label == 0 {
				label = set.add()
			}
			out[i] = label
		}
	}

	for i, v := range out {
		if v != 0 {
			out[i] = set.find(v)
		}
	}
}
