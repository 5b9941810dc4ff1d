package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Poll drains pending SDL events into the state. It returns true if the
// application should quit.
func (s *State) Poll() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		s.handle(event)
	}
	return s.quit
}

func (s *State) handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		s.RequestQuit()

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			s.MarkResized()
		}

	case *sdl.KeyboardEvent:
		name := sdl.GetKeyName(e.Keysym.Sym)
		if e.Type == sdl.KEYDOWN {
			mod := sdl.GetModState()
			s.PressKey(name, mod&sdl.KMOD_CTRL != 0, mod&sdl.KMOD_SHIFT != 0)
		} else if e.Type == sdl.KEYUP {
			s.ReleaseKey(name)
		}

	case *sdl.MouseMotionEvent:
		s.MoveMouse(e.X, e.Y)

	case *sdl.MouseButtonEvent:
		b, ok := sdlButton(e.Button)
		if !ok {
			return
		}
		if e.Type == sdl.MOUSEBUTTONDOWN {
			s.PressButton(b, e.X, e.Y)
		} else if e.Type == sdl.MOUSEBUTTONUP {
			s.ReleaseButton(b)
		}

	case *sdl.MouseWheelEvent:
		s.Scroll(float32(e.Y))
	}
}

func sdlButton(b uint8) (Button, bool) {
	switch b {
	case sdl.BUTTON_LEFT:
		return ButtonLeft, true
	case sdl.BUTTON_MIDDLE:
		return ButtonMiddle, true
	case sdl.BUTTON_RIGHT:
		return ButtonRight, true
	default:
		return 0, false
	}
}
