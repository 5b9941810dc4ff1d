package gpu

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/composer/internal/logger"
)

// ErrIncomplete is wrapped by CreateIDTarget when the framebuffer does not
// pass the completeness check.
var ErrIncomplete = errors.New("framebuffer incomplete")

// GL implements Device on top of an OpenGL 4.1 core context.
type GL struct {
	// emptyVAO is bound for procedural draws; core profile rejects draws
	// without a vertex array.
	emptyVAO uint32
}

// NewGL loads the OpenGL function pointers. The context must already be
// current on the calling thread.
func NewGL() (*GL, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)

	d := &GL{}
	gl.GenVertexArrays(1, &d.emptyVAO)
	return d, nil
}

// CompileShader compiles a single shader stage.
func (d *GL) CompileShader(stage Stage, src string) (Shader, error) {
	kind := uint32(gl.VERTEX_SHADER)
	if stage == FragmentStage {
		kind = gl.FRAGMENT_SHADER
	}

	shader := gl.CreateShader(kind)
	csource, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, errors.New(gl.GoStr(&log[0]))
	}
	return Shader(shader), nil
}

// DeleteShader releases a compiled stage.
func (d *GL) DeleteShader(s Shader) {
	gl.DeleteShader(uint32(s))
}

// LinkProgram links a vertex and fragment stage into a program.
func (d *GL) LinkProgram(vs, fs Shader) (Program, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, uint32(vs))
	gl.AttachShader(program, uint32(fs))
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, errors.New(gl.GoStr(&log[0]))
	}
	gl.DetachShader(program, uint32(vs))
	gl.DetachShader(program, uint32(fs))
	return Program(program), nil
}

// DeleteProgram releases a linked program.
func (d *GL) DeleteProgram(p Program) {
	gl.DeleteProgram(uint32(p))
}

// UniformLocation returns the location of a named uniform.
func (d *GL) UniformLocation(p Program, name string) int32 {
	return gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
}

// UseProgram binds p for subsequent uniform writes and draws.
func (d *GL) UseProgram(p Program) {
	gl.UseProgram(uint32(p))
}

func (d *GL) UniformMat4(loc int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}

func (d *GL) UniformInt(loc int32, v int32) {
	gl.Uniform1i(loc, v)
}

func (d *GL) UniformUint(loc int32, v uint32) {
	gl.Uniform1ui(loc, v)
}

func (d *GL) UniformVec3(loc int32, v mgl32.Vec3) {
	gl.Uniform3f(loc, v[0], v[1], v[2])
}

// CreateMesh uploads interleaved vertices and indices into a new VAO.
func (d *GL) CreateMesh(data MeshData) (Mesh, error) {
	if len(data.Vertices) == 0 {
		return Mesh{}, errors.New("mesh has no vertices")
	}
	if len(data.Indices16) == 0 && len(data.Indices32) == 0 {
		return Mesh{}, errors.New("mesh has no indices")
	}

	var m Mesh
	gl.GenVertexArrays(1, &m.VAO)
	gl.BindVertexArray(m.VAO)

	gl.GenBuffers(1, &m.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(data.Vertices)*4, unsafe.Pointer(&data.Vertices[0]), gl.STATIC_DRAW)

	for _, a := range data.Layout.Attribs {
		gl.VertexAttribPointerWithOffset(a.Location, a.Size, gl.FLOAT, false, data.Layout.Stride, uintptr(a.Offset))
		gl.EnableVertexAttribArray(a.Location)
	}

	gl.GenBuffers(1, &m.IBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.IBO)
	if len(data.Indices32) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices32)*4, unsafe.Pointer(&data.Indices32[0]), gl.STATIC_DRAW)
		m.Count = int32(len(data.Indices32))
		m.Index = Index32
	} else {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices16)*2, unsafe.Pointer(&data.Indices16[0]), gl.STATIC_DRAW)
		m.Count = int32(len(data.Indices16))
		m.Index = Index16
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return m, nil
}

// DeleteMesh releases the VAO and both buffers.
func (d *GL) DeleteMesh(m Mesh) {
	if m.VAO != 0 {
		gl.DeleteVertexArrays(1, &m.VAO)
	}
	if m.VBO != 0 {
		gl.DeleteBuffers(1, &m.VBO)
	}
	if m.IBO != 0 {
		gl.DeleteBuffers(1, &m.IBO)
	}
}

// DrawMesh issues an indexed triangle draw for m.
func (d *GL) DrawMesh(m Mesh) {
	indexType := uint32(gl.UNSIGNED_SHORT)
	if m.Index == Index32 {
		indexType = gl.UNSIGNED_INT
	}
	gl.BindVertexArray(m.VAO)
	gl.DrawElements(gl.TRIANGLES, m.Count, indexType, nil)
	gl.BindVertexArray(0)
}

func (d *GL) DrawProcedural(vertexCount int32) {
	gl.BindVertexArray(d.emptyVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, vertexCount)
	gl.BindVertexArray(0)
}

// CreateTexture uploads an RGBA image with mipmaps and linear filtering.
func (d *GL) CreateTexture(img *image.RGBA) (Texture, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return 0, errors.New("texture has zero size")
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return Texture(tex), nil
}

func (d *GL) DeleteTexture(t Texture) {
	tex := uint32(t)
	gl.DeleteTextures(1, &tex)
}

func (d *GL) BindTexture(unit uint32, t Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

// CreateIDTarget creates an RG32UI color texture and a 32-bit float depth
// texture attached to a new framebuffer.
func (d *GL) CreateIDTarget(width, height int32) (Target, error) {
	t := Target{Width: width, Height: height}

	gl.GenFramebuffers(1, &t.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)

	gl.GenTextures(1, &t.Color)
	gl.GenTextures(1, &t.Depth)
	d.allocIDTarget(&t)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.Color, 0)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, t.Depth, 0)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		d.DeleteIDTarget(&t)
		return Target{}, fmt.Errorf("%w: 0x%x", ErrIncomplete, status)
	}
	return t, nil
}

func (d *GL) allocIDTarget(t *Target) {
	gl.BindTexture(gl.TEXTURE_2D, t.Color)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RG32UI, t.Width, t.Height, 0, gl.RG_INTEGER, gl.UNSIGNED_INT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	gl.BindTexture(gl.TEXTURE_2D, t.Depth)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT32F, t.Width, t.Height, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// ResizeIDTarget reallocates both attachments at the new size.
func (d *GL) ResizeIDTarget(t *Target, width, height int32) {
	t.Width, t.Height = width, height
	d.allocIDTarget(t)
}

// DeleteIDTarget releases the framebuffer and its attachments.
func (d *GL) DeleteIDTarget(t *Target) {
	if t.FBO != 0 {
		gl.DeleteFramebuffers(1, &t.FBO)
		t.FBO = 0
	}
	if t.Color != 0 {
		gl.DeleteTextures(1, &t.Color)
		t.Color = 0
	}
	if t.Depth != 0 {
		gl.DeleteTextures(1, &t.Depth)
		t.Depth = 0
	}
}

func (d *GL) BindTarget(t *Target) {
	if t == nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
}

func (d *GL) ClearIDTarget() {
	zero := [4]uint32{}
	gl.ClearBufferuiv(gl.COLOR, 0, &zero[0])
	gl.Clear(gl.DEPTH_BUFFER_BIT)
}

// ReadID reads one texel of the integer color attachment.
func (d *GL) ReadID(t *Target, x, y int32) [2]uint32 {
	var px [2]uint32
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, t.FBO)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.ReadPixels(x, y, 1, 1, gl.RG_INTEGER, gl.UNSIGNED_INT, unsafe.Pointer(&px[0]))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return px
}

func (d *GL) Viewport(width, height int32) {
	gl.Viewport(0, 0, width, height)
}

func (d *GL) SetClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *GL) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *GL) SetDepthTest(enabled bool) {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LEQUAL)
		return
	}
	gl.Disable(gl.DEPTH_TEST)
}

func (d *GL) SetCulling(mode CullMode) {
	switch mode {
	case CullNone:
		gl.Disable(gl.CULL_FACE)
	case CullBack:
		gl.Enable(gl.CULL_FACE)
		gl.FrontFace(gl.CCW)
		gl.CullFace(gl.BACK)
	case CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.FrontFace(gl.CCW)
		gl.CullFace(gl.FRONT)
	}
}

func (d *GL) SetBlending(enabled bool) {
	if enabled {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		return
	}
	gl.Disable(gl.BLEND)
}

// Close releases objects owned by the device itself.
func (d *GL) Close() {
	if d.emptyVAO != 0 {
		gl.DeleteVertexArrays(1, &d.emptyVAO)
		d.emptyVAO = 0
	}
}

var _ Device = (*GL)(nil)
