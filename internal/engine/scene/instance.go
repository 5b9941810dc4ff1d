package scene

import (
	"github.com/Faultbox/composer/internal/engine/gpu"
	"github.com/Faultbox/composer/internal/engine/mesh"
	"github.com/Faultbox/composer/internal/engine/resource"
	"github.com/Faultbox/composer/internal/engine/shader"
	"github.com/Faultbox/composer/pkg/math"
)

// InstanceID identifies a placed instance. IDs come from a per-scene
// counter starting at 1 and are never reused; 0 means no instance. At one
// placement per millisecond the counter lasts about seven weeks, so
// wraparound is not handled.
type InstanceID uint32

// NoInstance is the zero identity.
const NoInstance InstanceID = 0

// MinScale is the floor below which no scale axis may go.
const MinScale float32 = 0.1

// Delta is a batched move: a position offset plus rotation offsets in
// degrees (X pitch, Y yaw, Z roll).
type Delta struct {
	Position math.Vec3
	Rotation math.Vec3
}

// Instance is one placement of shared geometry with its own transform and
// optional texture.
type Instance struct {
	id      InstanceID
	geom    *mesh.Geometry
	meshKey resource.Key

	texture *TextureRef

	pos              math.Vec3
	pitch, yaw, roll float32
	scale            math.Vec3

	model  math.Mat4
	normal math.Mat4
}

func newInstance(id InstanceID, key resource.Key, geom *mesh.Geometry) *Instance {
	in := &Instance{
		id:      id,
		geom:    geom,
		meshKey: key,
		scale:   math.Vec3{1, 1, 1},
	}
	in.update()
	return in
}

// update recomputes both matrices. Every mutator calls it before
// returning, so the pair is always consistent.
func (in *Instance) update() {
	in.model = math.ModelMatrix(in.pos, in.yaw, in.pitch, in.roll, in.scale)
	in.normal = math.NormalMatrix(in.model)
}

func (in *Instance) ID() InstanceID           { return in.id }
func (in *Instance) MeshKey() resource.Key    { return in.meshKey }
func (in *Instance) Geometry() *mesh.Geometry { return in.geom }
func (in *Instance) Position() math.Vec3      { return in.pos }
func (in *Instance) Scale() math.Vec3         { return in.scale }
func (in *Instance) ModelMatrix() math.Mat4   { return in.model }
func (in *Instance) NormalMatrix() math.Mat4  { return in.normal }
func (in *Instance) Texturable() bool         { return in.geom.Texturable() }
func (in *Instance) HasTexture() bool         { return in.texture != nil }

// Rotation returns pitch, yaw and roll in degrees, each in [0, 360).
func (in *Instance) Rotation() (pitch, yaw, roll float32) {
	return in.pitch, in.yaw, in.roll
}

// TextureKey returns the key of the assigned texture, if any.
func (in *Instance) TextureKey() (resource.Key, bool) {
	if in.texture == nil {
		return "", false
	}
	return in.texture.key, true
}

func (in *Instance) MoveX(d float32) { in.pos[0] += d; in.update() }
func (in *Instance) MoveY(d float32) { in.pos[1] += d; in.update() }
func (in *Instance) MoveZ(d float32) { in.pos[2] += d; in.update() }

// RotatePitch rotates about the X axis by deg degrees.
func (in *Instance) RotatePitch(deg float32) {
	in.pitch = math.WrapDegrees(in.pitch + deg)
	in.update()
}

// RotateYaw rotates about the Y axis by deg degrees.
func (in *Instance) RotateYaw(deg float32) {
	in.yaw = math.WrapDegrees(in.yaw + deg)
	in.update()
}

// RotateRoll rotates about the Z axis by deg degrees.
func (in *Instance) RotateRoll(deg float32) {
	in.roll = math.WrapDegrees(in.roll + deg)
	in.update()
}

func (in *Instance) ScaleX(d float32) bool { return in.scaleAxis(0, d) }
func (in *Instance) ScaleY(d float32) bool { return in.scaleAxis(1, d) }
func (in *Instance) ScaleZ(d float32) bool { return in.scaleAxis(2, d) }

// scaleAxis applies d unless the axis would end at or below MinScale, in
// which case the call is ignored and false returned.
func (in *Instance) scaleAxis(axis int, d float32) bool {
	s := in.scale[axis] + d
	if s <= MinScale {
		return false
	}
	in.scale[axis] = s
	in.update()
	return true
}

// SetScale sets absolute scale factors. Axes at or below MinScale keep
// their current value.
func (in *Instance) SetScale(s math.Vec3) {
	for i := range 3 {
		if s[i] > MinScale {
			in.scale[i] = s[i]
		}
	}
	in.update()
}

// Move applies a whole delta with a single matrix update.
func (in *Instance) Move(d Delta) {
	in.pos = in.pos.Add(d.Position)
	in.pitch = math.WrapDegrees(in.pitch + d.Rotation.X())
	in.yaw = math.WrapDegrees(in.yaw + d.Rotation.Y())
	in.roll = math.WrapDegrees(in.roll + d.Rotation.Z())
	in.update()
}

// Draw issues the instance's indexed draw with prog, which must be in use.
func (in *Instance) Draw(dev gpu.Device, prog *shader.Program) {
	prog.SetMat4(shader.ModelMat, in.model)
	prog.SetMat4(shader.NormalMat, in.normal)
	prog.SetBool(shader.HasNormals, in.geom.HasNormals())
	prog.SetBool(shader.HasColors, in.geom.HasColors())
	prog.SetBool(shader.HasTexture, in.texture != nil)
	if in.texture != nil {
		prog.BindTextureUnit(shader.Sampler, 0, in.texture.tex)
	}
	dev.DrawMesh(in.geom.Mesh())
}
