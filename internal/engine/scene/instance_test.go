package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/composer/internal/engine/mesh"
	"github.com/Faultbox/composer/internal/engine/resource"
	"github.com/Faultbox/composer/pkg/math"
)

func bareInstance() *Instance {
	return newInstance(1, resource.BuiltinKey("test"), &mesh.Geometry{})
}

func assertConsistent(t *testing.T, in *Instance) {
	t.Helper()
	p, y, r := in.Rotation()
	assert.Equal(t, math.ModelMatrix(in.Position(), y, p, r, in.Scale()), in.ModelMatrix())
	assert.Equal(t, math.NormalMatrix(in.ModelMatrix()), in.NormalMatrix())
}

func TestNewInstanceIsIdentity(t *testing.T) {
	in := bareInstance()
	assert.Equal(t, math.Identity(), in.ModelMatrix())
	assert.Equal(t, math.Identity(), in.NormalMatrix())
	assert.Equal(t, math.Vec3{1, 1, 1}, in.Scale())
}

func TestMutatorsKeepMatricesCurrent(t *testing.T) {
	in := bareInstance()
	steps := []func(){
		func() { in.MoveX(1) },
		func() { in.MoveY(-2) },
		func() { in.MoveZ(0.5) },
		func() { in.RotateYaw(30) },
		func() { in.RotatePitch(-45) },
		func() { in.RotateRoll(400) },
		func() { in.ScaleX(0.5) },
		func() { in.ScaleY(1) },
		func() { in.ScaleZ(-0.5) },
		func() { in.SetScale(math.Vec3{2, 3, 4}) },
		func() { in.Move(Delta{Position: math.Vec3{1, 1, 1}, Rotation: math.Vec3{10, 20, 30}}) },
	}
	for _, step := range steps {
		step()
		assertConsistent(t, in)
	}
}

func TestRotationWraps(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*Instance)
		want  [3]float32 // pitch, yaw, roll
	}{
		{"yaw past 360", func(in *Instance) { in.RotateYaw(370) }, [3]float32{0, 10, 0}},
		{"negative pitch", func(in *Instance) { in.RotatePitch(-10) }, [3]float32{350, 0, 0}},
		{"full turn roll", func(in *Instance) { in.RotateRoll(360) }, [3]float32{0, 0, 0}},
		{"batched", func(in *Instance) {
			in.Move(Delta{Rotation: math.Vec3{-90, 720, 45}})
		}, [3]float32{270, 0, 45}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := bareInstance()
			tt.apply(in)
			p, y, r := in.Rotation()
			assert.InDelta(t, tt.want[0], p, 1e-4)
			assert.InDelta(t, tt.want[1], y, 1e-4)
			assert.InDelta(t, tt.want[2], r, 1e-4)
		})
	}
}

func TestScaleFloor(t *testing.T) {
	in := bareInstance()

	assert.False(t, in.ScaleX(-0.95))
	assert.Equal(t, float32(1), in.Scale().X())

	assert.True(t, in.ScaleX(-0.85))
	assert.InDelta(t, 0.15, in.Scale().X(), 1e-6)

	assert.False(t, in.ScaleX(-0.1))
	assert.InDelta(t, 0.15, in.Scale().X(), 1e-6)

	assert.False(t, in.ScaleY(-5))
	assert.True(t, in.ScaleZ(2))
	assert.Equal(t, math.Vec3{in.Scale().X(), 1, 3}, in.Scale())
}

func TestSetScaleIgnoresAxesAtFloor(t *testing.T) {
	in := bareInstance()
	in.SetScale(math.Vec3{0.1, 2, -1})
	assert.Equal(t, math.Vec3{1, 2, 1}, in.Scale())
}

func TestMoveBatchesPosition(t *testing.T) {
	in := bareInstance()
	in.Move(Delta{Position: math.Vec3{1, 2, 3}})
	in.Move(Delta{Position: math.Vec3{-1, 0, 1}})
	assert.Equal(t, math.Vec3{0, 2, 4}, in.Position())

	o := math.TransformPoint(in.ModelMatrix(), math.Vec3{})
	assert.InDelta(t, 2, o.Y(), 1e-6)
	assert.InDelta(t, 4, o.Z(), 1e-6)
}

func TestScaleAffectsNormalMatrix(t *testing.T) {
	in := bareInstance()
	in.SetScale(math.Vec3{2, 1, 1})
	n := in.NormalMatrix()
	// Inverse-transpose of diag(2,1,1) is diag(0.5,1,1).
	assert.InDelta(t, 0.5, n.At(0, 0), 1e-6)
	assert.InDelta(t, 1, n.At(1, 1), 1e-6)
}
