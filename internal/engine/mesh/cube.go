package mesh

// face is one side of the unit cube: outward normal n and in-plane axes
// u, v with u x v = n so corners wind counter-clockwise from outside.
type face struct {
	n, u, v, color [3]float32
}

var cubeFaces = [6]face{
	{n: [3]float32{0, 0, 1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 1, 0}, color: [3]float32{0, 0, 1}},
	{n: [3]float32{1, 0, 0}, u: [3]float32{0, 0, -1}, v: [3]float32{0, 1, 0}, color: [3]float32{1, 0, 0}},
	{n: [3]float32{0, 0, -1}, u: [3]float32{-1, 0, 0}, v: [3]float32{0, 1, 0}, color: [3]float32{1, 1, 0}},
	{n: [3]float32{-1, 0, 0}, u: [3]float32{0, 0, 1}, v: [3]float32{0, 1, 0}, color: [3]float32{0, 1, 1}},
	{n: [3]float32{0, 1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, -1}, color: [3]float32{0, 1, 0}},
	{n: [3]float32{0, -1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, 1}, color: [3]float32{1, 0, 1}},
}

// Cube returns the built-in 2x2x2 cube centered on the origin with
// per-face normals and colors: 24 vertices, 36 indices.
func Cube() *Buffer {
	vertices := make([]float32, 0, 24*9)
	indices := make([]uint32, 0, 36)

	for _, f := range cubeFaces {
		base := uint32(len(vertices) / 9)
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			for k := 0; k < 3; k++ {
				vertices = append(vertices, f.n[k]+c[0]*f.u[k]+c[1]*f.v[k])
			}
			vertices = append(vertices, f.n[:]...)
			vertices = append(vertices, f.color[:]...)
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	b, err := NewPrimitive(vertices, indices, true, true)
	if err != nil {
		panic("mesh: invalid cube: " + err.Error())
	}
	return b
}
