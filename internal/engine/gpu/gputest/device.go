// Package gputest provides a software gpu.Device for tests. It tracks every
// object it hands out and rasterizes indexed triangles into integer ID
// targets so picking can be exercised without a GL context.
package gputest

import (
	"errors"
	"fmt"
	"image"
	"regexp"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/composer/internal/engine/gpu"
)

var uniformDecl = regexp.MustCompile(`uniform\s+\w+\s+(\w+)\s*;`)

type shader struct {
	stage    gpu.Stage
	uniforms []string
}

type program struct {
	locations map[string]int32
	names     map[int32]string
	values    map[string]any
}

type mesh struct {
	vertices []float32
	layout   gpu.VertexLayout
	indices  []uint32
}

type target struct {
	width, height int32
	color         [][2]uint32
	depth         []float32
}

// Device is an in-memory gpu.Device.
type Device struct {
	// Failure injection.
	FailCompile gpu.Stage
	CompileErr  error
	LinkErr     error
	MeshErr     error
	TextureErr  error
	TargetErr   error

	next uint32

	shaders  map[gpu.Shader]*shader
	programs map[gpu.Program]*program
	meshes   map[uint32]*mesh
	textures map[gpu.Texture]image.Rectangle
	targets  map[uint32]*target

	current  gpu.Program
	bound    *target
	viewport [2]int32
	cull     gpu.CullMode
	depth    bool
	blend    bool
	bindings map[uint32]gpu.Texture

	// Counters.
	MeshesCreated    int
	MeshesDeleted    int
	TexturesCreated  int
	TexturesDeleted  int
	ProgramsCreated  int
	ProgramsDeleted  int
	TargetsCreated   int
	TargetsDeleted   int
	TargetResizes    int
	Draws            int
	ProceduralDraws  int
	IDDraws          int
	Clears           int
	DrawnMeshes      []uint32
	UniformWrites    int
	DeletedMeshVAOs  []uint32
	DeletedTextureID []gpu.Texture
}

// New returns an empty device.
func New() *Device {
	return &Device{
		FailCompile: -1,
		shaders:     make(map[gpu.Shader]*shader),
		programs:    make(map[gpu.Program]*program),
		meshes:      make(map[uint32]*mesh),
		textures:    make(map[gpu.Texture]image.Rectangle),
		targets:     make(map[uint32]*target),
		bindings:    make(map[uint32]gpu.Texture),
	}
}

func (d *Device) id() uint32 {
	d.next++
	return d.next
}

func (d *Device) CompileShader(stage gpu.Stage, src string) (gpu.Shader, error) {
	if stage == d.FailCompile {
		if d.CompileErr != nil {
			return 0, d.CompileErr
		}
		return 0, errors.New("0:1(1): error: syntax error")
	}
	s := &shader{stage: stage}
	for _, m := range uniformDecl.FindAllStringSubmatch(src, -1) {
		s.uniforms = append(s.uniforms, m[1])
	}
	h := gpu.Shader(d.id())
	d.shaders[h] = s
	return h, nil
}

func (d *Device) DeleteShader(s gpu.Shader) {
	delete(d.shaders, s)
}

func (d *Device) LinkProgram(vs, fs gpu.Shader) (gpu.Program, error) {
	if d.LinkErr != nil {
		return 0, d.LinkErr
	}
	v, ok1 := d.shaders[vs]
	f, ok2 := d.shaders[fs]
	if !ok1 || !ok2 {
		return 0, errors.New("link: unknown shader")
	}
	p := &program{
		locations: make(map[string]int32),
		names:     make(map[int32]string),
		values:    make(map[string]any),
	}
	for _, name := range append(append([]string{}, v.uniforms...), f.uniforms...) {
		if _, dup := p.locations[name]; dup {
			continue
		}
		loc := int32(len(p.locations))
		p.locations[name] = loc
		p.names[loc] = name
	}
	h := gpu.Program(d.id())
	d.programs[h] = p
	d.ProgramsCreated++
	return h, nil
}

func (d *Device) DeleteProgram(p gpu.Program) {
	if _, ok := d.programs[p]; ok {
		delete(d.programs, p)
		d.ProgramsDeleted++
	}
}

func (d *Device) UniformLocation(p gpu.Program, name string) int32 {
	prog, ok := d.programs[p]
	if !ok {
		return -1
	}
	if loc, ok := prog.locations[name]; ok {
		return loc
	}
	return -1
}

func (d *Device) UseProgram(p gpu.Program) {
	d.current = p
}

func (d *Device) setUniform(loc int32, v any) {
	if loc < 0 {
		return
	}
	prog, ok := d.programs[d.current]
	if !ok {
		return
	}
	if name, ok := prog.names[loc]; ok {
		prog.values[name] = v
		d.UniformWrites++
	}
}

func (d *Device) UniformMat4(loc int32, m mgl32.Mat4) { d.setUniform(loc, m) }
func (d *Device) UniformInt(loc int32, v int32)       { d.setUniform(loc, v) }
func (d *Device) UniformUint(loc int32, v uint32)     { d.setUniform(loc, v) }
func (d *Device) UniformVec3(loc int32, v mgl32.Vec3) { d.setUniform(loc, v) }

// Uniform returns the last value written to a named uniform of p.
func (d *Device) Uniform(p gpu.Program, name string) (any, bool) {
	prog, ok := d.programs[p]
	if !ok {
		return nil, false
	}
	v, ok := prog.values[name]
	return v, ok
}

func (d *Device) CreateMesh(data gpu.MeshData) (gpu.Mesh, error) {
	if d.MeshErr != nil {
		return gpu.Mesh{}, d.MeshErr
	}
	m := &mesh{vertices: data.Vertices, layout: data.Layout}
	out := gpu.Mesh{VAO: d.id(), VBO: d.id(), IBO: d.id()}
	if len(data.Indices32) > 0 {
		m.indices = append(m.indices, data.Indices32...)
		out.Index = gpu.Index32
	} else {
		for _, i := range data.Indices16 {
			m.indices = append(m.indices, uint32(i))
		}
		out.Index = gpu.Index16
	}
	out.Count = int32(len(m.indices))
	d.meshes[out.VAO] = m
	d.MeshesCreated++
	return out, nil
}

func (d *Device) DeleteMesh(m gpu.Mesh) {
	if _, ok := d.meshes[m.VAO]; !ok {
		panic(fmt.Sprintf("gputest: mesh %d deleted twice or never created", m.VAO))
	}
	delete(d.meshes, m.VAO)
	d.MeshesDeleted++
	d.DeletedMeshVAOs = append(d.DeletedMeshVAOs, m.VAO)
}

// LiveMeshes returns the number of meshes not yet deleted.
func (d *Device) LiveMeshes() int { return len(d.meshes) }

// LiveTextures returns the number of textures not yet deleted.
func (d *Device) LiveTextures() int { return len(d.textures) }

func (d *Device) DrawMesh(m gpu.Mesh) {
	msh, ok := d.meshes[m.VAO]
	if !ok {
		panic(fmt.Sprintf("gputest: draw of deleted mesh %d", m.VAO))
	}
	d.Draws++
	d.DrawnMeshes = append(d.DrawnMeshes, m.VAO)
	if d.bound != nil {
		d.IDDraws++
		d.rasterize(msh)
	}
}

func (d *Device) DrawProcedural(vertexCount int32) {
	d.ProceduralDraws++
}

func (d *Device) CreateTexture(img *image.RGBA) (gpu.Texture, error) {
	if d.TextureErr != nil {
		return 0, d.TextureErr
	}
	t := gpu.Texture(d.id())
	d.textures[t] = img.Bounds()
	d.TexturesCreated++
	return t, nil
}

func (d *Device) DeleteTexture(t gpu.Texture) {
	if _, ok := d.textures[t]; !ok {
		panic(fmt.Sprintf("gputest: texture %d deleted twice or never created", t))
	}
	delete(d.textures, t)
	d.TexturesDeleted++
	d.DeletedTextureID = append(d.DeletedTextureID, t)
}

func (d *Device) BindTexture(unit uint32, t gpu.Texture) {
	d.bindings[unit] = t
}

// BoundTexture returns the texture last bound to unit.
func (d *Device) BoundTexture(unit uint32) gpu.Texture {
	return d.bindings[unit]
}

func (d *Device) CreateIDTarget(width, height int32) (gpu.Target, error) {
	if d.TargetErr != nil {
		return gpu.Target{}, d.TargetErr
	}
	t := gpu.Target{FBO: d.id(), Color: d.id(), Depth: d.id(), Width: width, Height: height}
	d.targets[t.FBO] = newTarget(width, height)
	d.TargetsCreated++
	return t, nil
}

func newTarget(w, h int32) *target {
	n := int(w) * int(h)
	t := &target{width: w, height: h, color: make([][2]uint32, n), depth: make([]float32, n)}
	for i := range t.depth {
		t.depth[i] = 1
	}
	return t
}

func (d *Device) ResizeIDTarget(t *gpu.Target, width, height int32) {
	t.Width, t.Height = width, height
	d.targets[t.FBO] = newTarget(width, height)
	d.TargetResizes++
}

func (d *Device) DeleteIDTarget(t *gpu.Target) {
	if _, ok := d.targets[t.FBO]; ok {
		delete(d.targets, t.FBO)
		d.TargetsDeleted++
	}
	*t = gpu.Target{}
}

func (d *Device) BindTarget(t *gpu.Target) {
	if t == nil {
		d.bound = nil
		return
	}
	d.bound = d.targets[t.FBO]
}

// BoundToTarget reports whether an offscreen target is currently bound.
func (d *Device) BoundToTarget() bool { return d.bound != nil }

func (d *Device) ClearIDTarget() {
	if d.bound == nil {
		return
	}
	for i := range d.bound.color {
		d.bound.color[i] = [2]uint32{}
		d.bound.depth[i] = 1
	}
}

func (d *Device) ReadID(t *gpu.Target, x, y int32) [2]uint32 {
	tg, ok := d.targets[t.FBO]
	if !ok || x < 0 || y < 0 || x >= tg.width || y >= tg.height {
		return [2]uint32{}
	}
	return tg.color[int(y)*int(tg.width)+int(x)]
}

func (d *Device) Viewport(width, height int32) {
	d.viewport = [2]int32{width, height}
}

// CurrentViewport returns the last viewport size set.
func (d *Device) CurrentViewport() (int32, int32) {
	return d.viewport[0], d.viewport[1]
}

func (d *Device) SetClearColor(r, g, b, a float32) {}

func (d *Device) Clear() { d.Clears++ }

func (d *Device) SetDepthTest(enabled bool) { d.depth = enabled }

func (d *Device) SetCulling(mode gpu.CullMode) { d.cull = mode }

// Culling returns the current cull mode.
func (d *Device) Culling() gpu.CullMode { return d.cull }

func (d *Device) SetBlending(enabled bool) { d.blend = enabled }

// Blending reports whether blending is enabled.
func (d *Device) Blending() bool { return d.blend }

var _ gpu.Device = (*Device)(nil)
