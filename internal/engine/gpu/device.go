// Package gpu defines the narrow set of graphics operations the composer
// issues, plus an OpenGL 4.1 implementation of it.
package gpu

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Stage identifies a shader stage.
type Stage int

// Shader stages.
const (
	VertexStage Stage = iota
	FragmentStage
)

// String returns the stage name used in compile errors.
func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return "unknown"
	}
}

// IndexType is the width of a mesh's index buffer.
type IndexType uint8

// Index widths.
const (
	Index16 IndexType = iota
	Index32
)

// Size returns the width in bytes.
func (t IndexType) Size() int {
	if t == Index32 {
		return 4
	}
	return 2
}

// CullMode selects which faces are discarded.
type CullMode int

// Culling modes.
const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

// Handles. Zero is never a valid object.
type (
	Shader  uint32
	Program uint32
	Texture uint32
)

// Attrib describes one float vertex attribute inside an interleaved buffer.
type Attrib struct {
	Location uint32
	Size     int32 // components
	Offset   int32 // bytes
}

// VertexLayout describes how an interleaved vertex buffer is read.
type VertexLayout struct {
	Stride  int32 // bytes
	Attribs []Attrib
}

// MeshData is what CreateMesh uploads. Exactly one of Indices16 and
// Indices32 is set.
type MeshData struct {
	Vertices  []float32
	Layout    VertexLayout
	Indices16 []uint16
	Indices32 []uint32
}

// Mesh is a vertex array with its vertex and index buffers.
type Mesh struct {
	VAO   uint32
	VBO   uint32
	IBO   uint32
	Count int32
	Index IndexType
}

// Target is an offscreen render target with an unsigned integer
// two-channel color attachment and a depth attachment.
type Target struct {
	FBO    uint32
	Color  uint32
	Depth  uint32
	Width  int32
	Height int32
}

// Device is the graphics API used by the engine. All methods must be
// called from the thread that owns the context.
type Device interface {
	CompileShader(stage Stage, src string) (Shader, error)
	DeleteShader(s Shader)
	LinkProgram(vs, fs Shader) (Program, error)
	DeleteProgram(p Program)

	// UniformLocation returns -1 when the program has no active uniform
	// with that name. Writes to -1 are ignored.
	UniformLocation(p Program, name string) int32
	UseProgram(p Program)
	UniformMat4(loc int32, m mgl32.Mat4)
	UniformInt(loc int32, v int32)
	UniformUint(loc int32, v uint32)
	UniformVec3(loc int32, v mgl32.Vec3)

	CreateMesh(data MeshData) (Mesh, error)
	DeleteMesh(m Mesh)
	DrawMesh(m Mesh)
	// DrawProcedural draws vertexCount vertices with no vertex buffers
	// bound; the vertex shader generates positions from gl_VertexID.
	DrawProcedural(vertexCount int32)

	CreateTexture(img *image.RGBA) (Texture, error)
	DeleteTexture(t Texture)
	BindTexture(unit uint32, t Texture)

	CreateIDTarget(width, height int32) (Target, error)
	ResizeIDTarget(t *Target, width, height int32)
	DeleteIDTarget(t *Target)
	// BindTarget makes t the render target; nil restores the default
	// framebuffer.
	BindTarget(t *Target)
	// ClearIDTarget zeroes the bound target's integer color attachment and
	// resets its depth.
	ClearIDTarget()
	ReadID(t *Target, x, y int32) [2]uint32

	Viewport(width, height int32)
	SetClearColor(r, g, b, a float32)
	Clear()
	SetDepthTest(enabled bool)
	SetCulling(mode CullMode)
	SetBlending(enabled bool)
}
