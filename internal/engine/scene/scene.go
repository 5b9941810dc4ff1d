// Package scene holds the placed instances of the composer, the shared
// mesh and texture caches they draw from, selection and picking.
package scene

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/composer/internal/assets"
	"github.com/Faultbox/composer/internal/engine/gpu"
	"github.com/Faultbox/composer/internal/engine/mesh"
	"github.com/Faultbox/composer/internal/engine/picking"
	"github.com/Faultbox/composer/internal/engine/resource"
	"github.com/Faultbox/composer/internal/engine/shader"
	"github.com/Faultbox/composer/internal/logger"
	"github.com/Faultbox/composer/pkg/formats"
)

var (
	// ErrUnknownInstance is returned for identities that are not live.
	ErrUnknownInstance = errors.New("unknown instance")
	// ErrNotTexturable is returned when texturing geometry without
	// texture coordinates.
	ErrNotTexturable = errors.New("instance is not texturable")
	// ErrClosed is returned by loads requested after Close.
	ErrClosed = errors.New("scene closed")
)

// Loader fetches and decodes assets. Completions may arrive later, but
// always on the goroutine that drives the scene.
type Loader interface {
	Key(src assets.Source, done func(resource.Key, error))
	LoadMesh(src assets.Source, done func(formats.MeshData, error))
	LoadImage(src assets.Source, done func(*image.RGBA, error))
}

// TextureRef is one counted reference to a cached texture. Assigning it to
// an instance hands the reference over; otherwise release it with
// Scene.ReleaseTexture.
type TextureRef struct {
	key resource.Key
	tex gpu.Texture
}

// Key returns the cache key.
func (r *TextureRef) Key() resource.Key { return r.key }

// Texture returns the device handle.
func (r *TextureRef) Texture() gpu.Texture { return r.tex }

// Stats summarizes the scene for logs and the status line.
type Stats struct {
	Instances int
	Meshes    resource.Stats
	Textures  resource.Stats
	LiveMesh  int
	LiveTex   int
}

// Scene owns every instance and the caches of the GPU objects they share.
// It is not safe for concurrent use.
type Scene struct {
	dev    gpu.Device
	loader Loader
	progs  *shader.Set
	picker *picking.Picker

	meshes   *resource.Cache[*mesh.Geometry]
	textures *resource.Cache[gpu.Texture]

	instances map[InstanceID]*Instance
	order     []InstanceID
	lastID    InstanceID
	selected  InstanceID
	onSelect  func(*Instance)

	// GPU objects whose last reference was released this frame; freed by
	// Collect once no draw can still use them.
	deadMeshes   []*mesh.Geometry
	deadTextures []gpu.Texture

	ShowGrid bool
	closed   bool
	log      *zap.Logger
}

// New creates an empty scene. picker may be nil, in which case Pick
// always reports picking.ErrUnavailable.
func New(dev gpu.Device, loader Loader, progs *shader.Set, picker *picking.Picker) *Scene {
	return &Scene{
		dev:       dev,
		loader:    loader,
		progs:     progs,
		picker:    picker,
		meshes:    resource.New[*mesh.Geometry]("mesh"),
		textures:  resource.New[gpu.Texture]("texture"),
		instances: make(map[InstanceID]*Instance),
		ShowGrid:  true,
		log:       logger.Named("scene"),
	}
}

// LoadModel places a new instance of the OBJ model at src. The geometry is
// shared with every other instance loaded from the same key, and loaded at
// most once however many requests overlap.
func (s *Scene) LoadModel(src assets.Source, done func(*Instance, error)) {
	if s.closed {
		done(nil, ErrClosed)
		return
	}
	s.loader.Key(src, func(key resource.Key, err error) {
		if err != nil {
			done(nil, &resource.LoadError{Kind: "mesh", Key: resource.PathKey(src.Path), Err: err})
			return
		}
		s.meshes.Acquire(key, func(complete func(*mesh.Geometry, error)) {
			s.loader.LoadMesh(src, func(md formats.MeshData, err error) {
				if err != nil {
					complete(nil, err)
					return
				}
				complete(s.upload(func() (*mesh.Buffer, error) { return mesh.FromOBJ(md) }))
			})
		}, func(g *mesh.Geometry, err error) {
			s.placed(key, g, err, done)
		})
	})
}

// LoadCube places a new instance of the built-in cube.
func (s *Scene) LoadCube(done func(*Instance, error)) {
	if s.closed {
		done(nil, ErrClosed)
		return
	}
	key := resource.BuiltinKey("cube")
	g, err := s.meshes.AcquireNow(key, func() (*mesh.Geometry, error) {
		return s.upload(func() (*mesh.Buffer, error) { return mesh.Cube(), nil })
	})
	s.placed(key, g, err, done)
}

func (s *Scene) upload(build func() (*mesh.Buffer, error)) (*mesh.Geometry, error) {
	buf, err := build()
	if err != nil {
		return nil, err
	}
	return buf.Upload(s.dev)
}

// placed finishes a model load: on success it creates the instance that
// owns the acquired reference.
func (s *Scene) placed(key resource.Key, g *mesh.Geometry, err error, done func(*Instance, error)) {
	if err != nil {
		done(nil, err)
		return
	}
	if s.closed {
		// The requester is gone; drop the reference the load produced.
		s.releaseMesh(key)
		s.Collect()
		done(nil, ErrClosed)
		return
	}

	s.lastID++
	in := newInstance(s.lastID, key, g)
	s.instances[in.id] = in
	s.order = append(s.order, in.id)
	s.log.Debug("placed", zap.Uint32("id", uint32(in.id)), zap.String("mesh", key.Short()),
		zap.Int("refs", s.meshes.Refs(key)))
	done(in, nil)
}

// LoadTexture acquires a reference to the texture at src.
func (s *Scene) LoadTexture(src assets.Source, done func(*TextureRef, error)) {
	if s.closed {
		done(nil, ErrClosed)
		return
	}
	s.loader.Key(src, func(key resource.Key, err error) {
		if err != nil {
			done(nil, &resource.LoadError{Kind: "texture", Key: resource.PathKey(src.Path), Err: err})
			return
		}
		s.textures.Acquire(key, func(complete func(gpu.Texture, error)) {
			s.loader.LoadImage(src, func(img *image.RGBA, err error) {
				if err != nil {
					complete(0, err)
					return
				}
				complete(s.dev.CreateTexture(img))
			})
		}, func(t gpu.Texture, err error) {
			if err != nil {
				done(nil, err)
				return
			}
			ref := &TextureRef{key: key, tex: t}
			if s.closed {
				s.ReleaseTexture(ref)
				s.Collect()
				done(nil, ErrClosed)
				return
			}
			done(ref, nil)
		})
	})
}

// AssignTexture hands ref to the instance, replacing and releasing any
// texture it had. When the instance is gone or not texturable the call is
// a no-op apart from releasing ref, and false is returned.
func (s *Scene) AssignTexture(id InstanceID, ref *TextureRef) bool {
	in, ok := s.instances[id]
	if !ok || !in.Texturable() {
		s.ReleaseTexture(ref)
		return false
	}
	if in.texture != nil {
		s.ReleaseTexture(in.texture)
	}
	in.texture = ref
	return true
}

// TextureInstance loads src and assigns it to the instance. Instances
// without texture coordinates are rejected before anything is loaded.
func (s *Scene) TextureInstance(id InstanceID, src assets.Source, done func(error)) {
	in, ok := s.instances[id]
	if !ok {
		done(fmt.Errorf("%w: %d", ErrUnknownInstance, id))
		return
	}
	if !in.Texturable() {
		done(fmt.Errorf("%w: %d", ErrNotTexturable, id))
		return
	}
	s.LoadTexture(src, func(ref *TextureRef, err error) {
		if err != nil {
			done(err)
			return
		}
		if !s.AssignTexture(id, ref) {
			done(fmt.Errorf("%w: %d", ErrUnknownInstance, id))
			return
		}
		done(nil)
	})
}

// ReleaseTexture drops a texture reference that was not assigned.
func (s *Scene) ReleaseTexture(ref *TextureRef) {
	if ref == nil {
		return
	}
	t, last, err := s.textures.Release(ref.key)
	if err != nil {
		s.log.Error("texture release", zap.Error(err))
		return
	}
	if last {
		s.deadTextures = append(s.deadTextures, t)
	}
}

func (s *Scene) releaseMesh(key resource.Key) {
	g, last, err := s.meshes.Release(key)
	if err != nil {
		s.log.Error("mesh release", zap.Error(err))
		return
	}
	if last {
		s.deadMeshes = append(s.deadMeshes, g)
	}
}

// DeleteInstance removes the instance from the scene and releases its
// mesh and texture references. It stops being drawn immediately; GPU
// objects whose last reference went are freed by the next Collect.
func (s *Scene) DeleteInstance(id InstanceID) error {
	in, ok := s.instances[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownInstance, id)
	}
	delete(s.instances, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.releaseMesh(in.meshKey)
	if in.texture != nil {
		s.ReleaseTexture(in.texture)
		in.texture = nil
	}

	if s.selected == id {
		s.selected = NoInstance
		s.notifySelect(nil)
	}
	s.log.Debug("deleted", zap.Uint32("id", uint32(id)))
	return nil
}

// DeleteSelected deletes the selected instance, if any.
func (s *Scene) DeleteSelected() bool {
	if s.selected == NoInstance {
		return false
	}
	return s.DeleteInstance(s.selected) == nil
}

// Pick returns the instance visible at window coordinate (x, y).
func (s *Scene) Pick(x, y int32, vp gpu.ViewportSize) (InstanceID, bool, error) {
	if s.picker == nil {
		return NoInstance, false, picking.ErrUnavailable
	}
	items := make([]picking.Item, 0, len(s.order))
	for _, id := range s.order {
		in := s.instances[id]
		items = append(items, picking.Item{ID: uint32(id), Mesh: in.geom.Mesh(), Model: in.model})
	}

	raw, ok, err := s.picker.Pick(items, x, y, vp)
	if err != nil || !ok {
		return NoInstance, false, err
	}
	id := InstanceID(raw)
	if _, live := s.instances[id]; !live {
		return NoInstance, false, nil
	}
	return id, true, nil
}

// Select makes id the selection. NoInstance clears it. The select callback
// runs when the selection changes.
func (s *Scene) Select(id InstanceID) error {
	if id == s.selected {
		return nil
	}
	if id == NoInstance {
		s.selected = NoInstance
		s.notifySelect(nil)
		return nil
	}
	in, ok := s.instances[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownInstance, id)
	}
	s.selected = id
	s.notifySelect(in)
	return nil
}

func (s *Scene) notifySelect(in *Instance) {
	if s.onSelect != nil {
		s.onSelect(in)
	}
}

// OnSelect registers fn to run on every selection change; nil means the
// selection was cleared.
func (s *Scene) OnSelect(fn func(*Instance)) { s.onSelect = fn }

// Selected returns the selected instance identity.
func (s *Scene) Selected() (InstanceID, bool) {
	return s.selected, s.selected != NoInstance
}

// SelectedInstance returns the selected instance or nil.
func (s *Scene) SelectedInstance() *Instance {
	return s.instances[s.selected]
}

// Instance looks up a live instance.
func (s *Scene) Instance(id InstanceID) (*Instance, bool) {
	in, ok := s.instances[id]
	return in, ok
}

// Instances returns the live instances in draw order.
func (s *Scene) Instances() []*Instance {
	out := make([]*Instance, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.instances[id])
	}
	return out
}

// Len returns the number of live instances.
func (s *Scene) Len() int { return len(s.order) }

// Draw renders every instance, the selection outline and the grid. View
// and projection uniforms are expected to be current in every program.
func (s *Scene) Draw() {
	reg := s.progs.Regular
	reg.Use()
	for _, id := range s.order {
		s.instances[id].Draw(s.dev, reg)
	}

	if sel, ok := s.instances[s.selected]; ok {
		s.drawOutline(sel)
	}
	if s.ShowGrid {
		s.drawGrid()
	}
}

// drawOutline draws the inflated back faces of the selection so only the
// rim around the lit mesh remains visible.
func (s *Scene) drawOutline(in *Instance) {
	s.dev.SetCulling(gpu.CullFront)
	p := s.progs.Outline
	p.Use()
	p.SetMat4(shader.ModelMat, in.model)
	s.dev.DrawMesh(in.geom.Mesh())
	s.dev.SetCulling(gpu.CullBack)
}

func (s *Scene) drawGrid() {
	s.dev.SetBlending(true)
	s.dev.SetCulling(gpu.CullNone)
	s.progs.Grid.Use()
	s.dev.DrawProcedural(6)
	s.dev.SetCulling(gpu.CullBack)
	s.dev.SetBlending(false)
}

// Collect frees GPU objects released since the previous call. Call it at
// the end of a frame, after the last draw that could reference them.
func (s *Scene) Collect() int {
	n := len(s.deadMeshes) + len(s.deadTextures)
	for _, g := range s.deadMeshes {
		g.Free(s.dev)
	}
	for _, t := range s.deadTextures {
		s.dev.DeleteTexture(t)
	}
	s.deadMeshes = s.deadMeshes[:0]
	s.deadTextures = s.deadTextures[:0]
	if n > 0 {
		s.log.Debug("collected", zap.Int("objects", n))
	}
	return n
}

// Stats returns counters for logging.
func (s *Scene) Stats() Stats {
	return Stats{
		Instances: len(s.order),
		Meshes:    s.meshes.Stats(),
		Textures:  s.textures.Stats(),
		LiveMesh:  s.meshes.Len(),
		LiveTex:   s.textures.Len(),
	}
}

// Close deletes every instance and frees everything they held. Loads that
// complete afterwards release their references immediately.
func (s *Scene) Close() {
	for _, id := range append([]InstanceID(nil), s.order...) {
		_ = s.DeleteInstance(id)
	}
	s.closed = true
	s.Collect()
}
