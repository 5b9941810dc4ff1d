package gputest

import (
	"github.com/go-gl/mathgl/mgl32"
)

func (d *Device) mat(name string) mgl32.Mat4 {
	prog, ok := d.programs[d.current]
	if !ok {
		return mgl32.Ident4()
	}
	if m, ok := prog.values[name].(mgl32.Mat4); ok {
		return m
	}
	return mgl32.Ident4()
}

func (d *Device) uintUniform(name string) uint32 {
	prog, ok := d.programs[d.current]
	if !ok {
		return 0
	}
	v, _ := prog.values[name].(uint32)
	return v
}

// rasterize draws m's triangles into the bound ID target using the
// position attribute at location 0 and the current program's uProjMat,
// uViewMat and uModelMat. Both windings are filled.
func (d *Device) rasterize(m *mesh) {
	t := d.bound
	mvp := d.mat("uProjMat").Mul4(d.mat("uViewMat")).Mul4(d.mat("uModelMat"))
	id := [2]uint32{d.uintUniform("uObjectIndex"), d.uintUniform("uDrawIndex")}

	var posOffset int32 = -1
	for _, a := range m.layout.Attribs {
		if a.Location == 0 {
			posOffset = a.Offset / 4
		}
	}
	stride := m.layout.Stride / 4
	if posOffset < 0 || stride == 0 {
		return
	}

	project := func(i uint32) (mgl32.Vec3, bool) {
		base := int32(i)*stride + posOffset
		p := mgl32.Vec4{m.vertices[base], m.vertices[base+1], m.vertices[base+2], 1}
		c := mvp.Mul4x1(p)
		if c.W() <= 0 {
			return mgl32.Vec3{}, false
		}
		ndc := c.Vec3().Mul(1 / c.W())
		return mgl32.Vec3{
			(ndc.X() + 1) / 2 * float32(t.width),
			(ndc.Y() + 1) / 2 * float32(t.height),
			(ndc.Z() + 1) / 2,
		}, true
	}

	for i := 0; i+2 < len(m.indices); i += 3 {
		a, okA := project(m.indices[i])
		b, okB := project(m.indices[i+1])
		c, okC := project(m.indices[i+2])
		if !okA || !okB || !okC {
			continue
		}
		d.fill(t, a, b, c, id)
	}
}

func edge(a, b mgl32.Vec3, x, y float32) float32 {
	return (b.X()-a.X())*(y-a.Y()) - (b.Y()-a.Y())*(x-a.X())
}

func (d *Device) fill(t *target, a, b, c mgl32.Vec3, id [2]uint32) {
	area := edge(a, b, c.X(), c.Y())
	if area == 0 {
		return
	}
	minX := clamp(int32(min3(a.X(), b.X(), c.X())), 0, t.width-1)
	maxX := clamp(int32(max3(a.X(), b.X(), c.X())), 0, t.width-1)
	minY := clamp(int32(min3(a.Y(), b.Y(), c.Y())), 0, t.height-1)
	maxY := clamp(int32(max3(a.Y(), b.Y(), c.Y())), 0, t.height-1)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float32(x)+0.5, float32(y)+0.5
			w0 := edge(b, c, px, py) / area
			w1 := edge(c, a, px, py) / area
			w2 := edge(a, b, px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*a.Z() + w1*b.Z() + w2*c.Z()
			if z < 0 || z > 1 {
				continue
			}
			i := int(y)*int(t.width) + int(x)
			if d.depth && z > t.depth[i] {
				continue
			}
			t.depth[i] = z
			t.color[i] = id
		}
	}
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min3(a, b, c float32) float32 { return min(a, min(b, c)) }
func max3(a, b, c float32) float32 { return max(a, max(b, c)) }
