package composer

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/composer/internal/assets"
	"github.com/Faultbox/composer/internal/engine/input"
	"github.com/Faultbox/composer/internal/engine/lighting"
	"github.com/Faultbox/composer/internal/engine/scene"
	"github.com/Faultbox/composer/internal/logger"
)

// ErrCancelled is returned by a FilePicker when the user dismisses it.
var ErrCancelled = errors.New("file selection cancelled")

// FilePicker asks the user for a file to open. It may block and is called
// off the main thread.
type FilePicker interface {
	OpenFile(title, filter string, exts ...string) (string, error)
}

// NativePicker shows the platform's open-file dialog.
type NativePicker struct{}

func (NativePicker) OpenFile(title, filter string, exts ...string) (string, error) {
	path, err := dialog.File().Filter(filter, exts...).Title(title).Load()
	if errors.Is(err, dialog.ErrCancelled) {
		return "", ErrCancelled
	}
	return path, err
}

// Editor maps key presses to scene commands. All methods run on the main
// thread; dialogs run on their own goroutine and hand their result back
// through the asset queue.
type Editor struct {
	scene *scene.Scene
	light *lighting.DirectionalLight
	queue *assets.Queue
	files FilePicker
	steps Steps
	mode  Mode
	log   *zap.Logger
}

// NewEditor creates an editor in idle mode.
func NewEditor(sc *scene.Scene, light *lighting.DirectionalLight, queue *assets.Queue, files FilePicker, steps Steps) *Editor {
	return &Editor{
		scene: sc,
		light: light,
		queue: queue,
		files: files,
		steps: steps,
		log:   logger.Named("editor"),
	}
}

// Mode returns the active transformation mode.
func (e *Editor) Mode() Mode { return e.mode }

// HandleKey runs the command bound to kp and reports whether one was.
func (e *Editor) HandleKey(kp input.KeyPress) bool {
	if kp.Ctrl {
		switch kp.Name {
		case "O":
			e.ImportModel()
			return true
		case "T":
			e.TextureSelection()
			return true
		}
		return false
	}

	switch kp.Name {
	case "1":
		e.setMode(ModeMove)
	case "2":
		e.setMode(ModeRotate)
	case "3":
		e.setMode(ModeScale)
	case "Delete":
		e.scene.DeleteSelected()
	case "C":
		e.scene.LoadCube(e.placed("cube"))
	case "G":
		e.scene.ShowGrid = !e.scene.ShowGrid
	case "J":
		e.light.MoveX(-e.steps.Light)
	case "L":
		e.light.MoveX(e.steps.Light)
	case "I":
		e.light.MoveZ(-e.steps.Light)
	case "K":
		e.light.MoveZ(e.steps.Light)
	default:
		return transform(e.scene.SelectedInstance(), e.mode, kp.Name, e.steps)
	}
	return true
}

func (e *Editor) setMode(m Mode) {
	e.mode = e.mode.Toggle(m)
	e.log.Debug("mode", zap.Stringer("mode", e.mode))
}

// placed selects a freshly loaded instance.
func (e *Editor) placed(what string) func(*scene.Instance, error) {
	return func(in *scene.Instance, err error) {
		if err != nil {
			e.log.Error("load failed", zap.String("model", what), zap.Error(err))
			return
		}
		if err := e.scene.Select(in.ID()); err != nil {
			e.log.Warn("select failed", zap.Error(err))
		}
	}
}

// ImportModel asks for an OBJ file and places it as an upload, keyed by
// its content.
func (e *Editor) ImportModel() {
	e.pickFile("Import model", "Wavefront OBJ", []string{"obj"}, func(src assets.Source) {
		e.scene.LoadModel(src, e.placed(src.Name()))
	})
}

// TextureSelection asks for an image and applies it to the selected
// instance. It does nothing when the selection cannot take a texture.
func (e *Editor) TextureSelection() {
	in := e.scene.SelectedInstance()
	if in == nil || !in.Texturable() {
		e.log.Debug("texture command unavailable")
		return
	}
	id := in.ID()
	e.pickFile("Apply texture", "Images", []string{"png", "jpg", "jpeg"}, func(src assets.Source) {
		e.scene.TextureInstance(id, src, func(err error) {
			if err != nil {
				e.log.Error("texture failed", zap.String("texture", src.Name()), zap.Error(err))
			}
		})
	})
}

func (e *Editor) pickFile(title, filter string, exts []string, then func(assets.Source)) {
	go func() {
		path, err := e.files.OpenFile(title, filter, exts...)
		if err != nil {
			if !errors.Is(err, ErrCancelled) {
				e.log.Error("file dialog failed", zap.Error(err))
			}
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			e.log.Error("reading selected file", zap.String("path", path), zap.Error(err))
			return
		}
		src := assets.FromUpload(filepath.Base(path), data)
		e.queue.Post(func() { then(src) })
	}()
}
