// Package shader links GLSL programs through a gpu.Device and exposes their
// uniforms as a fixed set of slots resolved once at link time.
package shader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/composer/internal/engine/gpu"
	"github.com/Faultbox/composer/internal/logger"
)

// Uniform names a uniform slot shared by every program.
type Uniform int

// Uniform slots.
const (
	ModelMat Uniform = iota
	NormalMat
	ViewMat
	ProjMat
	HasTexture
	HasNormals
	HasColors
	Sampler
	ObjectIndex
	DrawIndex
	CamPos
	LightDir

	numUniforms
)

var uniformNames = [numUniforms]string{
	ModelMat:    "uModelMat",
	NormalMat:   "uNormalMat",
	ViewMat:     "uViewMat",
	ProjMat:     "uProjMat",
	HasTexture:  "uHasTexture",
	HasNormals:  "uHasNormals",
	HasColors:   "uHasColors",
	Sampler:     "uSampler",
	ObjectIndex: "uObjectIndex",
	DrawIndex:   "uDrawIndex",
	CamPos:      "uCamPos",
	LightDir:    "uLightDir",
}

// String returns the GLSL name of the slot.
func (u Uniform) String() string {
	if u < 0 || u >= numUniforms {
		return fmt.Sprintf("Uniform(%d)", int(u))
	}
	return uniformNames[u]
}

// CompileError reports a shader stage that failed to compile.
type CompileError struct {
	Program string
	Stage   gpu.Stage
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling %s %s shader: %v", e.Program, e.Stage, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// LinkError reports a program that failed to link.
type LinkError struct {
	Program string
	Err     error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("linking %s program: %v", e.Program, e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }

// MissingUniformError describes a write to a slot the program does not
// have. It is logged, never returned.
type MissingUniformError struct {
	Program string
	Uniform Uniform
}

func (e *MissingUniformError) Error() string {
	return fmt.Sprintf("program %s has no active uniform %s", e.Program, e.Uniform)
}

// Program is a linked program with its resolved uniform slots.
type Program struct {
	dev    gpu.Device
	name   string
	id     gpu.Program
	locs   [numUniforms]int32
	warned [numUniforms]bool
	log    *zap.Logger
}

// Link compiles both stages, links them and resolves every uniform slot.
func Link(dev gpu.Device, name, vertexSrc, fragmentSrc string) (*Program, error) {
	vs, err := dev.CompileShader(gpu.VertexStage, vertexSrc)
	if err != nil {
		return nil, &CompileError{Program: name, Stage: gpu.VertexStage, Err: err}
	}
	defer dev.DeleteShader(vs)

	fs, err := dev.CompileShader(gpu.FragmentStage, fragmentSrc)
	if err != nil {
		return nil, &CompileError{Program: name, Stage: gpu.FragmentStage, Err: err}
	}
	defer dev.DeleteShader(fs)

	id, err := dev.LinkProgram(vs, fs)
	if err != nil {
		return nil, &LinkError{Program: name, Err: err}
	}

	p := &Program{
		dev:  dev,
		name: name,
		id:   id,
		log:  logger.Named("shader").With(zap.String("program", name)),
	}
	active := 0
	for u := Uniform(0); u < numUniforms; u++ {
		p.locs[u] = dev.UniformLocation(id, uniformNames[u])
		if p.locs[u] >= 0 {
			active++
		}
	}
	p.log.Debug("linked", zap.Uint32("id", uint32(id)), zap.Int("uniforms", active))
	return p, nil
}

// Name returns the program's name.
func (p *Program) Name() string { return p.name }

// ID returns the device handle.
func (p *Program) ID() gpu.Program { return p.id }

// Has reports whether the slot is active in this program.
func (p *Program) Has(u Uniform) bool { return p.locs[u] >= 0 }

// Use makes p the current program. The setters below write to the current
// program, so callers must Use it first.
func (p *Program) Use() {
	p.dev.UseProgram(p.id)
}

// location returns the slot's location or -1, logging the first write to
// a missing slot.
func (p *Program) location(u Uniform) int32 {
	loc := p.locs[u]
	if loc < 0 && !p.warned[u] {
		p.warned[u] = true
		p.log.Warn("missing uniform", zap.Error(&MissingUniformError{Program: p.name, Uniform: u}))
	}
	return loc
}

// SetMat4 writes a 4x4 matrix.
func (p *Program) SetMat4(u Uniform, m mgl32.Mat4) {
	if loc := p.location(u); loc >= 0 {
		p.dev.UniformMat4(loc, m)
	}
}

// SetBool writes a bool as 0 or 1.
func (p *Program) SetBool(u Uniform, b bool) {
	var v int32
	if b {
		v = 1
	}
	p.SetInt(u, v)
}

// SetInt writes a signed integer.
func (p *Program) SetInt(u Uniform, v int32) {
	if loc := p.location(u); loc >= 0 {
		p.dev.UniformInt(loc, v)
	}
}

// SetUint writes an unsigned integer.
func (p *Program) SetUint(u Uniform, v uint32) {
	if loc := p.location(u); loc >= 0 {
		p.dev.UniformUint(loc, v)
	}
}

// SetVec3 writes a 3-component vector.
func (p *Program) SetVec3(u Uniform, v mgl32.Vec3) {
	if loc := p.location(u); loc >= 0 {
		p.dev.UniformVec3(loc, v)
	}
}

// BindTextureUnit binds t to unit and points the sampler slot u at it.
func (p *Program) BindTextureUnit(u Uniform, unit uint32, t gpu.Texture) {
	p.dev.BindTexture(unit, t)
	p.SetInt(u, int32(unit))
}

// Delete releases the program.
func (p *Program) Delete() {
	if p.id != 0 {
		p.dev.DeleteProgram(p.id)
		p.id = 0
	}
}
