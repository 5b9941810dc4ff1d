// Package mesh holds immutable geometry buffers and their uploaded,
// shareable GPU form.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/composer/internal/engine/gpu"
	"github.com/Faultbox/composer/pkg/formats"
)

// Attribute locations shared by every program that draws geometry.
const (
	LocPosition uint32 = 0
	LocNormal   uint32 = 1
	LocTexCoord uint32 = 2
	LocColor    uint32 = 3
)

// Layout tags how vertex attributes are interleaved.
type Layout int

const (
	// LayoutPrimitive is position, normal?, color? (3 floats each).
	LayoutPrimitive Layout = iota
	// LayoutImported is position, texcoord? (2 floats), normal? (3 floats).
	LayoutImported
)

func (l Layout) String() string {
	if l == LayoutImported {
		return "imported"
	}
	return "primitive"
}

var (
	ErrEmpty          = errors.New("mesh has no triangles")
	ErrRaggedVertices = errors.New("vertex data is not a whole number of vertices")
	ErrIndexRange     = errors.New("index refers past the last vertex")
)

// Buffer is CPU-side geometry ready for upload. It is never modified after
// construction.
type Buffer struct {
	vertices  []float32
	indices16 []uint16
	indices32 []uint32
	count     int

	layout     Layout
	texturable bool
	hasNormals bool
	hasColors  bool
}

// FromOBJ wraps parsed OBJ data. Imported meshes are texturable iff they
// carry texture coordinates.
func FromOBJ(d formats.MeshData) (*Buffer, error) {
	b := &Buffer{
		vertices:   d.Vertices,
		layout:     LayoutImported,
		texturable: d.Texturable,
		hasNormals: d.HasNormals,
	}
	if err := b.setIndices(d.Indices); err != nil {
		return nil, err
	}
	return b, nil
}

// NewPrimitive builds an untexturable primitive mesh.
func NewPrimitive(vertices []float32, indices []uint32, hasNormals, hasColors bool) (*Buffer, error) {
	b := &Buffer{
		vertices:   vertices,
		layout:     LayoutPrimitive,
		hasNormals: hasNormals,
		hasColors:  hasColors,
	}
	if err := b.setIndices(indices); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Buffer) setIndices(indices []uint32) error {
	if len(indices) < 3 || len(indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrEmpty, len(indices))
	}
	floats := int(b.Stride() / 4)
	if len(b.vertices) == 0 || len(b.vertices)%floats != 0 {
		return fmt.Errorf("%w: %d floats, %d per vertex", ErrRaggedVertices, len(b.vertices), floats)
	}
	n := uint32(len(b.vertices) / floats)
	for _, i := range indices {
		if i >= n {
			return fmt.Errorf("%w: %d of %d", ErrIndexRange, i, n)
		}
	}

	b.count = len(indices)
	if b.count > formats.MaxShortIndex {
		b.indices32 = indices
		return nil
	}
	b.indices16 = make([]uint16, len(indices))
	for i, v := range indices {
		b.indices16[i] = uint16(v)
	}
	return nil
}

func (b *Buffer) Layout() Layout     { return b.layout }
func (b *Buffer) Texturable() bool   { return b.texturable }
func (b *Buffer) HasNormals() bool   { return b.hasNormals }
func (b *Buffer) HasColors() bool    { return b.hasColors }
func (b *Buffer) IndexCount() int    { return b.count }
func (b *Buffer) VertexCount() int   { return len(b.vertices) / int(b.Stride()/4) }
func (b *Buffer) Vertices() []float32 { return b.vertices }

// IndexType reports 32-bit indices when the index count exceeds 65535.
func (b *Buffer) IndexType() gpu.IndexType {
	if b.indices32 != nil {
		return gpu.Index32
	}
	return gpu.Index16
}

// Stride returns the size of one vertex in bytes.
func (b *Buffer) Stride() int32 {
	floats := int32(3)
	switch b.layout {
	case LayoutPrimitive:
		if b.hasNormals {
			floats += 3
		}
		if b.hasColors {
			floats += 3
		}
	case LayoutImported:
		if b.texturable {
			floats += 2
		}
		if b.hasNormals {
			floats += 3
		}
	}
	return floats * 4
}

// VertexLayout returns attribute offsets for the buffer's layout.
func (b *Buffer) VertexLayout() gpu.VertexLayout {
	vl := gpu.VertexLayout{Stride: b.Stride()}
	var offset int32
	add := func(loc uint32, size int32) {
		vl.Attribs = append(vl.Attribs, gpu.Attrib{Location: loc, Size: size, Offset: offset})
		offset += size * 4
	}

	add(LocPosition, 3)
	switch b.layout {
	case LayoutPrimitive:
		if b.hasNormals {
			add(LocNormal, 3)
		}
		if b.hasColors {
			add(LocColor, 3)
		}
	case LayoutImported:
		if b.texturable {
			add(LocTexCoord, 2)
		}
		if b.hasNormals {
			add(LocNormal, 3)
		}
	}
	return vl
}

// Upload creates the GPU mesh. The returned Geometry is the one shared
// handle for every instance drawing this buffer.
func (b *Buffer) Upload(dev gpu.Device) (*Geometry, error) {
	m, err := dev.CreateMesh(gpu.MeshData{
		Vertices:  b.vertices,
		Layout:    b.VertexLayout(),
		Indices16: b.indices16,
		Indices32: b.indices32,
	})
	if err != nil {
		return nil, fmt.Errorf("uploading mesh: %w", err)
	}
	return &Geometry{
		mesh:       m,
		layout:     b.layout,
		texturable: b.texturable,
		hasNormals: b.hasNormals,
		hasColors:  b.hasColors,
	}, nil
}

// Geometry is an uploaded Buffer. Instances reference it; only the owning
// cache entry frees it.
type Geometry struct {
	mesh  gpu.Mesh
	freed bool

	layout     Layout
	texturable bool
	hasNormals bool
	hasColors  bool
}

func (g *Geometry) Mesh() gpu.Mesh   { return g.mesh }
func (g *Geometry) Layout() Layout   { return g.layout }
func (g *Geometry) Texturable() bool { return g.texturable }
func (g *Geometry) HasNormals() bool { return g.hasNormals }
func (g *Geometry) HasColors() bool  { return g.hasColors }
func (g *Geometry) Freed() bool      { return g.freed }

// Free deletes the GPU mesh. Calling it again is a no-op.
func (g *Geometry) Free(dev gpu.Device) {
	if g.freed {
		return
	}
	dev.DeleteMesh(g.mesh)
	g.freed = true
}
