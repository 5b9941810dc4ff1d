package shader

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/composer/internal/engine/gpu"
	"github.com/Faultbox/composer/internal/engine/gpu/gputest"
)

const testVS = `
uniform mat4 uModelMat;
uniform mat4 uViewMat;
void main() {}
`

const testFS = `
uniform bool uHasTexture;
void main() {}
`

func TestLinkResolvesSlots(t *testing.T) {
	dev := gputest.New()
	p, err := Link(dev, "test", testVS, testFS)
	require.NoError(t, err)

	assert.True(t, p.Has(ModelMat))
	assert.True(t, p.Has(ViewMat))
	assert.True(t, p.Has(HasTexture))
	assert.False(t, p.Has(ProjMat))
	assert.False(t, p.Has(ObjectIndex))
	assert.Equal(t, "test", p.Name())
}

func TestSettersWriteActiveSlots(t *testing.T) {
	dev := gputest.New()
	p, err := Link(dev, "test", testVS, testFS)
	require.NoError(t, err)
	p.Use()

	m := mgl32.Translate3D(1, 2, 3)
	p.SetMat4(ModelMat, m)
	p.SetBool(HasTexture, true)

	v, ok := dev.Uniform(p.ID(), "uModelMat")
	require.True(t, ok)
	assert.Equal(t, m, v)
	v, ok = dev.Uniform(p.ID(), "uHasTexture")
	require.True(t, ok)
	assert.Equal(t, int32(1), v)
}

func TestMissingSlotIsNoOp(t *testing.T) {
	dev := gputest.New()
	p, err := Link(dev, "test", testVS, testFS)
	require.NoError(t, err)
	p.Use()

	before := dev.UniformWrites
	p.SetMat4(ProjMat, mgl32.Ident4())
	p.SetMat4(ProjMat, mgl32.Ident4())
	p.SetUint(ObjectIndex, 7)
	assert.Equal(t, before, dev.UniformWrites)
	assert.True(t, p.warned[ProjMat])
	assert.True(t, p.warned[ObjectIndex])
	assert.False(t, p.warned[ModelMat])
}

func TestLinkErrors(t *testing.T) {
	t.Run("vertex compile", func(t *testing.T) {
		dev := gputest.New()
		dev.FailCompile = gpu.VertexStage
		_, err := Link(dev, "bad", testVS, testFS)
		var ce *CompileError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, gpu.VertexStage, ce.Stage)
		assert.Equal(t, "bad", ce.Program)
	})
	t.Run("fragment compile", func(t *testing.T) {
		dev := gputest.New()
		dev.FailCompile = gpu.FragmentStage
		_, err := Link(dev, "bad", testVS, testFS)
		var ce *CompileError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, gpu.FragmentStage, ce.Stage)
	})
	t.Run("link", func(t *testing.T) {
		dev := gputest.New()
		dev.LinkErr = errors.New("varying mismatch")
		_, err := Link(dev, "bad", testVS, testFS)
		var le *LinkError
		require.True(t, errors.As(err, &le))
		assert.ErrorContains(t, err, "varying mismatch")
	})
}

func TestUniformString(t *testing.T) {
	assert.Equal(t, "uLightDir", LightDir.String())
	assert.Equal(t, "Uniform(99)", Uniform(99).String())
}

func TestLinkSet(t *testing.T) {
	dev := gputest.New()
	s, err := LinkSet(dev)
	require.NoError(t, err)
	require.Len(t, s.All(), 4)

	for _, p := range s.All() {
		assert.True(t, p.Has(ProjMat), p.Name())
		assert.True(t, p.Has(ViewMat), p.Name())
	}
	assert.True(t, s.Regular.Has(NormalMat))
	assert.True(t, s.Regular.Has(LightDir))
	assert.True(t, s.Picking.Has(ObjectIndex))
	assert.True(t, s.Picking.Has(DrawIndex))
	assert.True(t, s.Grid.Has(CamPos))
	assert.False(t, s.Outline.Has(NormalMat))

	s.Delete()
	assert.Equal(t, 4, dev.ProgramsDeleted)
}

func TestLinkSetCleansUpOnFailure(t *testing.T) {
	dev := gputest.New()
	dev.LinkErr = errors.New("boom")
	_, err := LinkSet(dev)
	require.Error(t, err)
	assert.Equal(t, 0, dev.ProgramsCreated)
}
