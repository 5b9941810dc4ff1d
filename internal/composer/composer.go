// Package composer runs the scene composer: it owns the window, the frame
// loop and the bindings from input to scene commands.
package composer

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/composer/internal/assets"
	"github.com/Faultbox/composer/internal/config"
	"github.com/Faultbox/composer/internal/engine/camera"
	"github.com/Faultbox/composer/internal/engine/gpu"
	"github.com/Faultbox/composer/internal/engine/input"
	"github.com/Faultbox/composer/internal/engine/picking"
	"github.com/Faultbox/composer/internal/engine/renderer"
	"github.com/Faultbox/composer/internal/engine/scene"
	"github.com/Faultbox/composer/internal/engine/window"
	"github.com/Faultbox/composer/internal/logger"
	"github.com/Faultbox/composer/pkg/math"
)

const title = "Composer"

// App is the running composer.
type App struct {
	cfg *config.Config

	window   *window.Window
	dev      *gpu.GL
	renderer *renderer.Renderer
	input    *input.State
	camera   *camera.Frame
	queue    *assets.Queue
	assets   *assets.Manager
	scene    *scene.Scene
	editor   *Editor

	clicks [][2]int32
	log    *zap.Logger
}

// New creates the window and every subsystem. Shader failures are
// returned; the caller should exit.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg: cfg,
		log: logger.Named("composer"),
	}

	var err error
	a.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Everything below needs the GL context.
	a.dev, err = gpu.NewGL()
	if err != nil {
		a.window.Close()
		return nil, err
	}

	a.renderer, err = renderer.New(a.dev, renderer.Config{
		FOV:        cfg.Graphics.FOV,
		Near:       cfg.Graphics.Near,
		Far:        cfg.Graphics.Far,
		ClearColor: cfg.Graphics.ClearColor,
		Picking:    cfg.Picking.Enabled,
	}, a.window.DrawableSize())
	if err != nil {
		a.dev.Close()
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.queue = assets.NewQueue()
	a.assets = assets.NewManager(a.queue, cfg.Assets.Workers, cfg.Assets.MaxTextureSize)
	for _, root := range cfg.Assets.Roots {
		if err := a.assets.AddRoot(root); err != nil {
			a.log.Warn("skipping asset root", zap.String("root", root), zap.Error(err))
		}
	}

	a.scene = scene.New(a.dev, a.assets, a.renderer.Programs(), a.renderer.Picker())
	a.scene.ShowGrid = cfg.Editor.ShowGrid
	a.scene.OnSelect(func(in *scene.Instance) {
		if in == nil {
			a.log.Debug("selection cleared")
			return
		}
		a.log.Debug("selected", zap.Uint32("id", uint32(in.ID())), zap.Bool("texturable", in.Texturable()))
	})

	a.camera = camera.New(
		math.Vec3(cfg.Camera.StartPosition),
		cfg.Camera.StartPitch,
		camera.Sensitivity{
			Move:   cfg.Camera.MoveSensitivity,
			Rotate: cfg.Camera.RotateSensitivity,
			Zoom:   cfg.Camera.ZoomSensitivity,
			Pan:    cfg.Camera.PanSensitivity,
		},
		camera.Keys{
			Forward: cfg.Camera.Keys.Forward,
			Back:    cfg.Camera.Keys.Back,
			Left:    cfg.Camera.Keys.Left,
			Right:   cfg.Camera.Keys.Right,
		},
	)

	a.input = input.New()
	a.input.OnClick(func(x, y int32) {
		a.clicks = append(a.clicks, [2]int32{x, y})
	})

	a.editor = NewEditor(a.scene, a.renderer.Light(), a.queue, NativePicker{}, Steps{
		Move:   cfg.Editor.MoveStep,
		Rotate: cfg.Editor.RotateStep,
		Scale:  cfg.Editor.ScaleStep,
		Light:  cfg.Editor.LightStep,
	})

	LoadPreset(a.scene, cfg.Scene.Preset, a.log)

	a.log.Info("composer initialized", zap.Int("preset", len(cfg.Scene.Preset)))
	return a, nil
}

// Run executes the frame loop until the window is closed or Escape is
// pressed.
func (a *App) Run() error {
	frameCount := 0
	fpsTimer := time.Now()
	mode := a.editor.Mode()

	a.log.Info("starting frame loop")

	for {
		a.input.BeginFrame()
		a.queue.Drain()

		if a.input.Poll() {
			break
		}
		if a.input.Resized() {
			a.renderer.Resize(a.window.DrawableSize())
		}

		quit := false
		for _, kp := range a.input.Presses() {
			if kp.Name == "Escape" {
				quit = true
				break
			}
			a.editor.HandleKey(kp)
		}
		if quit {
			break
		}
		if m := a.editor.Mode(); m != mode {
			mode = m
			a.window.SetTitle(fmt.Sprintf("%s [%s]", title, mode))
		}

		a.camera.Update(a.input)
		a.camera.Apply(a.renderer.Programs().All()...)

		a.renderer.Begin()
		a.scene.Draw()
		a.pick()
		a.scene.Collect()
		a.renderer.End()

		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount), zap.Int("instances", a.scene.Len()))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// pick resolves the clicks of this frame, last one wins.
func (a *App) pick() {
	if len(a.clicks) == 0 {
		return
	}
	clicks := a.clicks
	a.clicks = a.clicks[:0]

	sx, sy := a.window.PixelScale()
	vp := a.renderer.Viewport()
	for _, c := range clicks {
		x := int32(float32(c[0]) * sx)
		y := int32(float32(c[1]) * sy)

		id, hit, err := a.scene.Pick(x, y, vp)
		if err != nil {
			if !errors.Is(err, picking.ErrUnavailable) {
				a.log.Warn("pick failed", zap.Error(err))
			}
			continue
		}
		if !hit {
			id = scene.NoInstance
		}
		if err := a.scene.Select(id); err != nil {
			a.log.Warn("select failed", zap.Error(err))
		}
	}
}

// Close releases everything in reverse order of creation. Loads still in
// flight are cancelled; their completions release what they acquired.
func (a *App) Close() {
	a.log.Info("closing composer")

	if a.assets != nil {
		a.assets.Close()
	}
	if a.scene != nil {
		a.scene.Close()
	}
	if a.queue != nil {
		a.queue.Drain()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.dev != nil {
		a.dev.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
