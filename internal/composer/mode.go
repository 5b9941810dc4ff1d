package composer

import (
	"github.com/Faultbox/composer/internal/engine/scene"
	"github.com/Faultbox/composer/pkg/math"
)

// Mode is the active transformation tool.
type Mode int

// Transformation modes.
const (
	ModeIdle Mode = iota
	ModeMove
	ModeRotate
	ModeScale
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeMove:
		return "move"
	case ModeRotate:
		return "rotate"
	case ModeScale:
		return "scale"
	default:
		return "unknown"
	}
}

// Toggle returns the mode after the user picks next: picking the active
// mode again returns to idle.
func (m Mode) Toggle(next Mode) Mode {
	if m == next {
		return ModeIdle
	}
	return next
}

// Steps holds the per-press increments of the keyboard transforms.
type Steps struct {
	Move   float32
	Rotate float32 // degrees
	Scale  float32
	Light  float32
}

type axisKey struct {
	axis int
	sign float32
}

// Arrow keys work on X and Z, PageUp/PageDown on Y. In rotate mode the
// same keys turn about Y, X and Z respectively.
var transformKeys = map[string]axisKey{
	"Left":     {0, -1},
	"Right":    {0, 1},
	"PageDown": {1, -1},
	"PageUp":   {1, 1},
	"Up":       {2, -1},
	"Down":     {2, 1},
}

// transform applies the delta bound to key in mode m. It reports whether
// key is a transform key and the instance changed.
func transform(in *scene.Instance, m Mode, key string, steps Steps) bool {
	ak, ok := transformKeys[key]
	if !ok || in == nil {
		return false
	}

	switch m {
	case ModeMove:
		var d math.Vec3
		d[ak.axis] = ak.sign * steps.Move
		in.Move(scene.Delta{Position: d})
		return true

	case ModeRotate:
		var d math.Vec3
		switch ak.axis {
		case 0:
			d[1] = ak.sign * steps.Rotate // yaw
		case 1:
			d[2] = ak.sign * steps.Rotate // roll
		case 2:
			d[0] = ak.sign * steps.Rotate // pitch
		}
		in.Move(scene.Delta{Rotation: d})
		return true

	case ModeScale:
		d := ak.sign * steps.Scale
		switch ak.axis {
		case 0:
			return in.ScaleX(d)
		case 1:
			return in.ScaleY(d)
		default:
			return in.ScaleZ(d)
		}
	}
	return false
}
