// Package picking resolves window coordinates to instance identities by
// rendering identities into an offscreen integer target.
package picking

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/composer/internal/engine/framebuffer"
	"github.com/Faultbox/composer/internal/engine/gpu"
	"github.com/Faultbox/composer/internal/engine/shader"
	"github.com/Faultbox/composer/internal/logger"
)

var (
	// ErrUnavailable is returned by every pick once the ID target could not
	// be created.
	ErrUnavailable = errors.New("picking unavailable")
	// ErrStaleTarget is returned when the ID target no longer matches the
	// viewport it is asked to resolve.
	ErrStaleTarget = errors.New("pick target size does not match viewport")
)

// Item is one drawable entry of the pick pass.
type Item struct {
	ID    uint32
	Mesh  gpu.Mesh
	Model mgl32.Mat4
}

// Picker owns the ID target and draws pick passes with the picking
// program. The program's view and projection uniforms are maintained by
// the camera and renderer like every other program's.
type Picker struct {
	dev    gpu.Device
	prog   *shader.Program
	target *framebuffer.IDTarget
	err    error
	log    *zap.Logger
}

// New creates a picker sized to vp. If the target cannot be configured the
// picker is returned permanently unavailable and the error is logged;
// rendering is unaffected.
func New(dev gpu.Device, prog *shader.Program, vp gpu.ViewportSize) *Picker {
	p := &Picker{dev: dev, prog: prog, log: logger.Named("picking")}
	target, err := framebuffer.New(dev, vp.Width, vp.Height)
	if err != nil {
		p.err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		p.log.Error("picking disabled", zap.Error(err))
		return p
	}
	p.target = target
	return p
}

// Available reports whether picks can be served.
func (p *Picker) Available() bool { return p.target != nil }

// Err returns why the picker is unavailable, or nil.
func (p *Picker) Err() error { return p.err }

// Resize reallocates the target for a new viewport. It must be called on
// every viewport change, before the next pick.
func (p *Picker) Resize(vp gpu.ViewportSize) {
	if p.target == nil {
		return
	}
	p.target.Resize(vp.Width, vp.Height)
	w, h := p.target.Size()
	p.log.Debug("resized", zap.Int32("width", w), zap.Int32("height", h))
}

// Pick draws items into the ID target and returns the identity at window
// coordinate (x, y), y counted from the top. ok is false when nothing
// covers the pixel or the coordinate is outside vp. The default framebuffer
// and viewport are restored before returning.
func (p *Picker) Pick(items []Item, x, y int32, vp gpu.ViewportSize) (id uint32, ok bool, err error) {
	if p.target == nil {
		return 0, false, p.err
	}
	if !vp.Contains(x, y) {
		return 0, false, nil
	}
	if w, h := p.target.Size(); w != vp.Width || h != vp.Height {
		return 0, false, fmt.Errorf("%w: target %dx%d, viewport %dx%d", ErrStaleTarget, w, h, vp.Width, vp.Height)
	}

	p.target.Bind()
	defer p.target.Unbind(vp.Width, vp.Height)

	p.target.Clear()
	p.dev.SetDepthTest(true)

	p.prog.Use()
	for _, it := range items {
		p.prog.SetMat4(shader.ModelMat, it.Model)
		p.prog.SetUint(shader.ObjectIndex, it.ID)
		p.prog.SetUint(shader.DrawIndex, 0)
		p.dev.DrawMesh(it.Mesh)
	}

	px := p.target.ReadID(x, vp.Height-y-1)
	if px[0] == 0 {
		return 0, false, nil
	}
	return px[0], true, nil
}

// Destroy releases the target.
func (p *Picker) Destroy() {
	if p.target != nil {
		p.target.Destroy()
		p.target = nil
		p.err = ErrUnavailable
	}
}
