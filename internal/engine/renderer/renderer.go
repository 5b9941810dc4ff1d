// Package renderer owns the per-window rendering context: viewport size,
// projection, the built-in programs, the picker and the light.
package renderer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/composer/internal/engine/gpu"
	"github.com/Faultbox/composer/internal/engine/lighting"
	"github.com/Faultbox/composer/internal/engine/picking"
	"github.com/Faultbox/composer/internal/engine/shader"
	"github.com/Faultbox/composer/internal/logger"
	"github.com/Faultbox/composer/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	FOV        float32 // vertical, degrees
	Near       float32
	Far        float32
	ClearColor [4]float32
	Picking    bool
}

// Renderer holds GPU state shared by everything drawn into the window.
type Renderer struct {
	dev    gpu.Device
	config Config

	progs  *shader.Set
	picker *picking.Picker
	light  *lighting.DirectionalLight

	vp     gpu.ViewportSize
	proj   math.Mat4
	frames uint64

	log *zap.Logger
}

// New links the built-in programs and sets up default state. Shader
// compile and link errors are returned as is; nothing can be drawn without
// them. A picker that cannot be created only disables picking.
// IMPORTANT: Must be called AFTER the GL context is current!
func New(dev gpu.Device, cfg Config, vp gpu.ViewportSize) (*Renderer, error) {
	progs, err := shader.LinkSet(dev)
	if err != nil {
		return nil, fmt.Errorf("creating programs: %w", err)
	}

	r := &Renderer{
		dev:    dev,
		config: cfg,
		progs:  progs,
		light:  lighting.NewDirectionalLight(),
		log:    logger.Named("renderer"),
	}

	c := cfg.ClearColor
	dev.SetClearColor(c[0], c[1], c[2], c[3])
	dev.SetDepthTest(true)
	dev.SetCulling(gpu.CullBack)
	dev.SetBlending(false)

	progs.Regular.Use()
	progs.Regular.SetInt(shader.Sampler, 0)

	if cfg.Picking {
		r.picker = picking.New(dev, progs.Picking, vp)
	} else {
		r.log.Info("picking disabled by configuration")
	}

	r.Resize(vp)
	return r, nil
}

// Resize adopts a new viewport: sets the device viewport, rebuilds the
// projection for the new aspect, uploads it to every program and resizes
// the pick target. An empty viewport (minimized window) is recorded but
// otherwise ignored.
func (r *Renderer) Resize(vp gpu.ViewportSize) {
	r.vp = vp
	if vp.Empty() {
		return
	}

	r.dev.Viewport(vp.Width, vp.Height)
	r.proj = math.Perspective(r.config.FOV, vp.Aspect(), r.config.Near, r.config.Far)
	for _, p := range r.progs.All() {
		p.Use()
		p.SetMat4(shader.ProjMat, r.proj)
	}
	if r.picker != nil {
		r.picker.Resize(vp)
	}

	r.log.Debug("resized",
		zap.Int32("width", vp.Width),
		zap.Int32("height", vp.Height),
	)
}

// Viewport returns the current viewport size.
func (r *Renderer) Viewport() gpu.ViewportSize { return r.vp }

// Projection returns the current projection matrix.
func (r *Renderer) Projection() math.Mat4 { return r.proj }

// Programs returns the built-in programs.
func (r *Renderer) Programs() *shader.Set { return r.progs }

// Picker returns the picker, or nil when picking is disabled.
func (r *Renderer) Picker() *picking.Picker { return r.picker }

// Light returns the scene light.
func (r *Renderer) Light() *lighting.DirectionalLight { return r.light }

// Frames returns the number of completed frames.
func (r *Renderer) Frames() uint64 { return r.frames }

// Begin starts a new frame.
func (r *Renderer) Begin() {
	r.dev.Clear()
	r.light.Apply(r.progs.Regular)
}

// End finishes the current frame.
func (r *Renderer) End() {
	r.frames++
}

// Close releases the picker and programs.
func (r *Renderer) Close() {
	r.log.Info("closing renderer", zap.Uint64("frames", r.frames))
	if r.picker != nil {
		r.picker.Destroy()
	}
	r.progs.Delete()
}
