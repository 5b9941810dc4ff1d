// Package camera implements the fly-through camera frame: a world position
// plus an orthonormal basis (u right, v up, n backward) from which the view
// matrix is built directly.
package camera

import (
	"github.com/Faultbox/composer/internal/engine/shader"
	"github.com/Faultbox/composer/pkg/math"
)

// Input is the per-frame view of user input the camera consumes. The Take
// methods return the delta accumulated since the previous call and reset
// it.
type Input interface {
	KeyDown(name string) bool
	FreeLookActive() bool
	PanActive() bool
	TakeRotation() (dx, dy float32)
	TakePan() (dx, dy float32)
	TakeZoom() float32
}

// Sensitivity scales each kind of input.
type Sensitivity struct {
	Move   float32 // world units per frame a key is held
	Rotate float32 // degrees per pixel
	Zoom   float32 // world units per scroll unit
	Pan    float32 // world units per pixel
}

// DefaultSensitivity matches the composer's stock navigation feel.
var DefaultSensitivity = Sensitivity{Move: 0.15, Rotate: 0.07, Zoom: 0.01, Pan: 0.01}

// Keys names the keys that dolly and strafe.
type Keys struct {
	Forward, Back, Left, Right string
}

// DefaultKeys are WASD.
var DefaultKeys = Keys{Forward: "W", Back: "S", Left: "A", Right: "D"}

// Frame is the camera state.
type Frame struct {
	pos     math.Vec3
	u, v, n math.Vec3

	sens Sensitivity
	keys Keys

	moved   bool // changed during the current Update
	pending bool // changed since the last Apply
	first   bool
	view    math.Mat4
}

// New places the camera at pos looking down -Z, then pitches it by pitch
// degrees about its right axis (negative looks down).
func New(pos math.Vec3, pitch float32, sens Sensitivity, keys Keys) *Frame {
	f := &Frame{
		pos:   pos,
		u:     math.Vec3{1, 0, 0},
		v:     math.Vec3{0, 1, 0},
		n:     math.Vec3{0, 0, 1},
		sens:  sens,
		keys:  keys,
		first: true,
	}
	f.n = math.RotateVec(f.n, f.u, pitch)
	f.v = f.n.Cross(f.u)
	f.normalize()
	f.view = f.buildView()
	return f
}

// Default returns the stock start frame: above and behind the origin,
// tilted 20 degrees down.
func Default() *Frame {
	return New(math.Vec3{0, 4, 12}, -20, DefaultSensitivity, DefaultKeys)
}

func (f *Frame) normalize() {
	f.u = math.Normalize(f.u)
	f.v = math.Normalize(f.v)
	f.n = math.Normalize(f.n)
}

// Position returns the camera's world position.
func (f *Frame) Position() math.Vec3 { return f.pos }

// Basis returns the right, up and backward axes.
func (f *Frame) Basis() (u, v, n math.Vec3) { return f.u, f.v, f.n }

// View returns the view matrix for the current state.
func (f *Frame) View() math.Mat4 { return f.view }

// Moved reports whether the last Update changed the frame.
func (f *Frame) Moved() bool { return f.moved }

func (f *Frame) changed() {
	f.view = f.buildView()
	f.moved = true
	f.pending = true
}

// Dolly moves along the viewing direction; positive is forward.
func (f *Frame) Dolly(amount float32) {
	f.pos = f.pos.Sub(f.n.Mul(amount))
	f.changed()
}

// Strafe moves along u; positive is right.
func (f *Frame) Strafe(amount float32) {
	f.pos = f.pos.Add(f.u.Mul(amount))
	f.changed()
}

// FreeLook yaws about world up by -dx degrees, then pitches about the new
// right axis by -dy degrees.
func (f *Frame) FreeLook(dx, dy float32) {
	f.n = math.RotateVec(f.n, math.WorldUp, -dx)
	f.u = math.Normalize(math.WorldUp.Cross(f.n))

	f.n = math.RotateVec(f.n, f.u, -dy)
	f.v = f.n.Cross(f.u)

	f.normalize()
	f.changed()
}

// Pan translates by pointer deltas already scaled to world units. X moves
// against u on the world X axis only; Y follows v on the world Y and Z
// axes.
func (f *Frame) Pan(dx, dy float32) {
	f.pos[0] -= f.u.X() * dx
	f.pos[1] += f.v.Y() * dy
	f.pos[2] += f.v.Z() * dy
	f.changed()
}

// Zoom moves along n; positive moves away from the view direction.
func (f *Frame) Zoom(amount float32) {
	f.pos = f.pos.Add(f.n.Mul(amount))
	f.changed()
}

// Update applies one frame of input and reports whether the frame moved.
// Rotation and pan deltas are consumed only while their button is held;
// the zoom delta is consumed every frame.
func (f *Frame) Update(in Input) bool {
	f.moved = false

	if in.KeyDown(f.keys.Forward) {
		f.Dolly(f.sens.Move)
	}
	if in.KeyDown(f.keys.Left) {
		f.Strafe(-f.sens.Move)
	}
	if in.KeyDown(f.keys.Back) {
		f.Dolly(-f.sens.Move)
	}
	if in.KeyDown(f.keys.Right) {
		f.Strafe(f.sens.Move)
	}

	if in.FreeLookActive() {
		dx, dy := in.TakeRotation()
		f.FreeLook(dx*f.sens.Rotate, dy*f.sens.Rotate)
	} else if in.PanActive() {
		dx, dy := in.TakePan()
		f.Pan(dx*f.sens.Pan, dy*f.sens.Pan)
	}

	if z := in.TakeZoom(); z != 0 {
		f.Zoom(z * f.sens.Zoom)
	}

	return f.moved
}

func (f *Frame) buildView() math.Mat4 {
	return math.BasisView(f.u, f.v, f.n, f.pos)
}

// Apply uploads the view matrix, and the camera position where a program
// uses it, to every program. It does nothing unless the frame moved since
// the previous Apply or has never been applied.
func (f *Frame) Apply(progs ...*shader.Program) bool {
	if !f.pending && !f.first {
		return false
	}
	for _, p := range progs {
		p.Use()
		p.SetMat4(shader.ViewMat, f.view)
		if p.Has(shader.CamPos) {
			p.SetVec3(shader.CamPos, f.pos)
		}
	}
	f.first = false
	f.pending = false
	return true
}
