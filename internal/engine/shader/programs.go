package shader

import (
	"github.com/Faultbox/composer/internal/engine/gpu"
	"github.com/Faultbox/composer/internal/engine/shader/shaders"
)

// Set holds the programs the renderer draws with.
type Set struct {
	Regular *Program
	Picking *Program
	Outline *Program
	Grid    *Program
}

// LinkSet links the four built-in programs. On error any program already
// linked is deleted.
func LinkSet(dev gpu.Device) (*Set, error) {
	sources := []struct {
		name, vs, fs string
		dst          **Program
	}{
		{"regular", shaders.RegularVertexShader, shaders.RegularFragmentShader, nil},
		{"picking", shaders.PickingVertexShader, shaders.PickingFragmentShader, nil},
		{"outline", shaders.OutlineVertexShader, shaders.OutlineFragmentShader, nil},
		{"grid", shaders.GridVertexShader, shaders.GridFragmentShader, nil},
	}
	s := &Set{}
	sources[0].dst = &s.Regular
	sources[1].dst = &s.Picking
	sources[2].dst = &s.Outline
	sources[3].dst = &s.Grid

	for _, src := range sources {
		p, err := Link(dev, src.name, src.vs, src.fs)
		if err != nil {
			s.Delete()
			return nil, err
		}
		*src.dst = p
	}
	return s, nil
}

// All returns every linked program.
func (s *Set) All() []*Program {
	all := make([]*Program, 0, 4)
	for _, p := range []*Program{s.Regular, s.Picking, s.Outline, s.Grid} {
		if p != nil {
			all = append(all, p)
		}
	}
	return all
}

// Delete releases every linked program.
func (s *Set) Delete() {
	for _, p := range s.All() {
		p.Delete()
	}
}
