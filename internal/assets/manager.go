package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/Faultbox/composer/internal/engine/resource"
	"github.com/Faultbox/composer/internal/engine/texture"
	"github.com/Faultbox/composer/internal/logger"
	"github.com/Faultbox/composer/pkg/formats"
)

var (
	// ErrNotFound is returned when a path exists under no search root.
	ErrNotFound = errors.New("asset not found")
	// ErrClosed is delivered to loads started after Close.
	ErrClosed = errors.New("asset manager closed")
)

// Manager resolves asset paths against search roots and runs loads on
// a bounded set of goroutines. Every completion is delivered through the
// Queue, so callbacks run on whichever goroutine drains it.
type Manager struct {
	mu    sync.RWMutex
	roots []string

	queue      *Queue
	sem        *semaphore.Weighted
	maxTexture int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *zap.Logger
}

// NewManager creates a manager that runs at most workers loads at once and
// down-scales textures larger than maxTextureSize (0 disables scaling).
func NewManager(queue *Queue, workers, maxTextureSize int) *Manager {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		queue:      queue,
		sem:        semaphore.NewWeighted(int64(workers)),
		maxTexture: maxTextureSize,
		ctx:        ctx,
		cancel:     cancel,
		log:        logger.Named("assets"),
	}
}

// Queue returns the completion queue.
func (m *Manager) Queue() *Queue { return m.queue }

// AddRoot appends a search root. Roots are searched in the order added.
func (m *Manager) AddRoot(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("adding asset root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("adding asset root: %s is not a directory", dir)
	}

	m.mu.Lock()
	m.roots = append(m.roots, dir)
	m.mu.Unlock()
	return nil
}

// Roots returns the search roots.
func (m *Manager) Roots() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.roots)
}

// Resolve maps an asset path to a file on disk. Absolute paths are used
// as-is; relative paths are tried under each root in turn.
func (m *Manager) Resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return path, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, root := range m.roots {
		full := filepath.Join(root, path)
		if _, err := os.Stat(full); err == nil {
			return full, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, path)
}

// Key derives the cache key for src. Path sources are keyed by their
// resolved path and answered immediately; uploads are hashed in the
// background and answered through the queue.
func (m *Manager) Key(src Source, done func(resource.Key, error)) {
	if !src.IsUpload() {
		full, err := m.Resolve(src.Path)
		if err != nil {
			done("", err)
			return
		}
		done(resource.PathKey(full), nil)
		return
	}
	data := src.Upload.Data
	spawn(m, src, func() (resource.Key, error) {
		return resource.ContentKey(data), nil
	}, done)
}

// ReadSource delivers the raw bytes of src.
func (m *Manager) ReadSource(src Source, done func([]byte, error)) {
	spawn(m, src, func() ([]byte, error) {
		return m.read(src)
	}, done)
}

// LoadText delivers the contents of src as a string.
func (m *Manager) LoadText(src Source, done func(string, error)) {
	spawn(m, src, func() (string, error) {
		data, err := m.read(src)
		return string(data), err
	}, done)
}

// LoadMesh reads, parses and triangulates an OBJ source.
func (m *Manager) LoadMesh(src Source, done func(formats.MeshData, error)) {
	spawn(m, src, func() (formats.MeshData, error) {
		data, err := m.read(src)
		if err != nil {
			return formats.MeshData{}, err
		}
		obj, err := formats.ParseOBJ(data)
		if err != nil {
			return formats.MeshData{}, err
		}
		return obj.BuildMesh(), nil
	}, done)
}

// LoadImage reads and decodes a PNG or JPEG source into bottom-up RGBA
// ready for upload.
func (m *Manager) LoadImage(src Source, done func(*image.RGBA, error)) {
	spawn(m, src, func() (*image.RGBA, error) {
		data, err := m.read(src)
		if err != nil {
			return nil, err
		}
		img, err := texture.Decode(data)
		if err != nil {
			return nil, err
		}
		return texture.ToRGBA(img, true, m.maxTexture), nil
	}, done)
}

func (m *Manager) read(src Source) ([]byte, error) {
	if src.IsUpload() {
		return src.Upload.Data, nil
	}
	full, err := m.Resolve(src.Path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// spawn runs work on a goroutine once a worker slot is free and posts the
// result to the queue.
func spawn[T any](m *Manager, src Source, work func() (T, error), done func(T, error)) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		var (
			v   T
			err error
		)
		if m.ctx.Err() != nil || m.sem.Acquire(m.ctx, 1) != nil {
			err = ErrClosed
		} else {
			v, err = work()
			m.sem.Release(1)
		}
		if err != nil {
			err = fmt.Errorf("loading %s: %w", src, err)
			m.log.Debug("load failed", zap.Stringer("source", src), zap.Error(err))
		}
		m.queue.Post(func() { done(v, err) })
	}()
}

// Wait blocks until every started load has posted its completion.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Close stops loads that have not yet started and waits for running ones.
// Their completions are still posted.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}
