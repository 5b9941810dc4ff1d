package lighting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/composer/internal/engine/gpu/gputest"
	"github.com/Faultbox/composer/internal/engine/shader"
	"github.com/Faultbox/composer/pkg/math"
)

func TestDefaultDirectionIsUnit(t *testing.T) {
	l := NewDirectionalLight()
	assert.InDelta(t, 1, l.Direction().Len(), 1e-5)
	assert.Less(t, l.Direction().Y(), float32(0))
}

func TestMoveRenormalizes(t *testing.T) {
	l := NewDirectionalLight()
	before := l.Direction()
	require.True(t, l.MoveX(0.2))

	d := l.Direction()
	assert.InDelta(t, 1, d.Len(), 1e-5)
	assert.Greater(t, d.X(), before.X())
}

func TestMoveRejectedOutOfRange(t *testing.T) {
	l := NewDirectionalLight()
	before := l.Direction()

	assert.False(t, l.MoveX(2))
	assert.False(t, l.MoveZ(-1.9))
	assert.Equal(t, before, l.Direction())
}

func TestRepeatedMovesStayBounded(t *testing.T) {
	l := NewDirectionalLight()
	for range 200 {
		l.MoveZ(0.05)
	}
	d := l.Direction()
	assert.LessOrEqual(t, d.Z(), float32(1))
	assert.InDelta(t, 1, d.Len(), 1e-5)
}

func TestApplyUploadsOnlyChanges(t *testing.T) {
	dev := gputest.New()
	set, err := shader.LinkSet(dev)
	require.NoError(t, err)
	l := NewDirectionalLight()

	l.Apply(set.Regular)
	got, ok := dev.Uniform(set.Regular.ID(), "uLightDir")
	require.True(t, ok)
	assert.Equal(t, l.Direction(), got)

	writes := dev.UniformWrites
	l.Apply(set.Regular)
	assert.Equal(t, writes, dev.UniformWrites)

	l.MoveX(-0.1)
	l.Apply(set.Regular)
	got, _ = dev.Uniform(set.Regular.ID(), "uLightDir")
	assert.Equal(t, l.Direction(), got.(math.Vec3))
}
