// Package lighting provides the scene's directional light.
package lighting

import (
	"github.com/Faultbox/composer/internal/engine/shader"
	"github.com/Faultbox/composer/pkg/math"
)

// DefaultDirection is the light direction before any adjustment.
var DefaultDirection = math.Vec3{-0.5, -1, -0.3}

// DirectionalLight is a light at infinity shining along a unit direction.
// The direction is re-normalized after every adjustment, so repeated
// moves along one axis converge instead of growing without bound.
type DirectionalLight struct {
	dir   math.Vec3
	dirty bool
}

// NewDirectionalLight returns a light shining along DefaultDirection.
func NewDirectionalLight() *DirectionalLight {
	return &DirectionalLight{dir: math.Normalize(DefaultDirection), dirty: true}
}

// Direction returns the unit light direction.
func (l *DirectionalLight) Direction() math.Vec3 { return l.dir }

// MoveX shifts the X component by dx. The move is ignored when the
// component would leave [-1, 1].
func (l *DirectionalLight) MoveX(dx float32) bool {
	return l.move(0, dx)
}

// MoveZ shifts the Z component by dz, with the same bounds as MoveX.
func (l *DirectionalLight) MoveZ(dz float32) bool {
	return l.move(2, dz)
}

func (l *DirectionalLight) move(axis int, d float32) bool {
	c := l.dir[axis] + d
	if c > 1 || c < -1 {
		return false
	}
	l.dir[axis] = c
	l.dir = math.Normalize(l.dir)
	l.dirty = true
	return true
}

// Apply uploads the direction to p if it changed since the last upload.
func (l *DirectionalLight) Apply(p *shader.Program) {
	if !l.dirty {
		return
	}
	p.Use()
	p.SetVec3(shader.LightDir, l.dir)
	l.dirty = false
}
