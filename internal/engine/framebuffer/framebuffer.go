// Package framebuffer provides the offscreen integer ID target used for
// picking.
package framebuffer

import (
	"fmt"

	"github.com/Faultbox/composer/internal/engine/gpu"
)

// ConfigError reports a target the device could not complete.
type ConfigError struct {
	Width, Height int32
	Err           error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuring %dx%d id target: %v", e.Width, e.Height, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// IDTarget is a render target whose color attachment stores two unsigned
// integers per pixel, with its own depth attachment.
type IDTarget struct {
	dev    gpu.Device
	target gpu.Target
}

// New creates a target of the given size. Sizes below 1 are clamped.
func New(dev gpu.Device, width, height int32) (*IDTarget, error) {
	width, height = clampSize(width, height)
	t, err := dev.CreateIDTarget(width, height)
	if err != nil {
		return nil, &ConfigError{Width: width, Height: height, Err: err}
	}
	return &IDTarget{dev: dev, target: t}, nil
}

func clampSize(w, h int32) (int32, int32) {
	return max(w, 1), max(h, 1)
}

// Resize reallocates both attachments when the size changes.
func (fb *IDTarget) Resize(width, height int32) {
	width, height = clampSize(width, height)
	if width == fb.target.Width && height == fb.target.Height {
		return
	}
	fb.dev.ResizeIDTarget(&fb.target, width, height)
}

// Bind makes the target current and sets the viewport to cover it.
func (fb *IDTarget) Bind() {
	fb.dev.BindTarget(&fb.target)
	fb.dev.Viewport(fb.target.Width, fb.target.Height)
}

// Unbind restores the default framebuffer and the given viewport.
func (fb *IDTarget) Unbind(width, height int32) {
	fb.dev.BindTarget(nil)
	fb.dev.Viewport(width, height)
}

// Clear zeroes the ID attachment and resets depth. The target must be
// bound.
func (fb *IDTarget) Clear() {
	fb.dev.ClearIDTarget()
}

// ReadID returns the two integers stored at (x, y), with y counted from the
// bottom row.
func (fb *IDTarget) ReadID(x, y int32) [2]uint32 {
	return fb.dev.ReadID(&fb.target, x, y)
}

// Size returns the target dimensions.
func (fb *IDTarget) Size() (width, height int32) {
	return fb.target.Width, fb.target.Height
}

// Destroy releases the target. Calling it twice is harmless.
func (fb *IDTarget) Destroy() {
	if fb.target.FBO != 0 {
		fb.dev.DeleteIDTarget(&fb.target)
	}
}
