// Package input turns SDL2 events into the per-frame state the camera and
// the editor commands read.
package input

// Button identifies a mouse button.
type Button int

// Mouse buttons.
const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
	numButtons
)

// WheelStep converts one wheel notch into scroll units.
const WheelStep = 100

// KeyPress is one key-down event, repeats included.
type KeyPress struct {
	Name  string
	Ctrl  bool
	Shift bool
}

// State accumulates input between frames. Key and button state persist;
// deltas persist until taken; presses are cleared by BeginFrame.
type State struct {
	// FreeLookButton rotates the camera while held, PanButton pans it.
	FreeLookButton Button
	PanButton      Button

	keys    map[string]bool
	presses []KeyPress
	buttons [numButtons]bool

	mouseX, mouseY int32
	rot, pan       [2]float32
	zoom           float32

	onClick func(x, y int32)
	resized bool
	quit    bool
}

// New returns an empty state with free-look on the middle button and pan
// on the right.
func New() *State {
	return &State{
		FreeLookButton: ButtonMiddle,
		PanButton:      ButtonRight,
		keys:           make(map[string]bool),
	}
}

// BeginFrame forgets the previous frame's key presses and resize flag.
func (s *State) BeginFrame() {
	s.presses = s.presses[:0]
	s.resized = false
}

// OnClick registers fn to run for every left-button press.
func (s *State) OnClick(fn func(x, y int32)) { s.onClick = fn }

// PressKey records a key going down.
func (s *State) PressKey(name string, ctrl, shift bool) {
	s.keys[name] = true
	s.presses = append(s.presses, KeyPress{Name: name, Ctrl: ctrl, Shift: shift})
}

// ReleaseKey records a key going up.
func (s *State) ReleaseKey(name string) {
	delete(s.keys, name)
}

// KeyDown reports whether the named key is held.
func (s *State) KeyDown(name string) bool { return s.keys[name] }

// Presses returns the key presses since BeginFrame.
func (s *State) Presses() []KeyPress { return s.presses }

// PressButton records a button going down at (x, y).
func (s *State) PressButton(b Button, x, y int32) {
	if b < 0 || b >= numButtons {
		return
	}
	s.buttons[b] = true
	s.mouseX, s.mouseY = x, y
	if b == ButtonLeft && s.onClick != nil {
		s.onClick(x, y)
	}
}

// ReleaseButton records a button going up.
func (s *State) ReleaseButton(b Button) {
	if b < 0 || b >= numButtons {
		return
	}
	s.buttons[b] = false
}

// ButtonDown reports whether b is held.
func (s *State) ButtonDown(b Button) bool { return s.buttons[b] }

// MoveMouse records a pointer position. The movement since the previous
// position feeds the rotation delta while the free-look button is held and
// the pan delta while the pan button is held.
func (s *State) MoveMouse(x, y int32) {
	dx := float32(x - s.mouseX)
	dy := float32(y - s.mouseY)
	s.mouseX, s.mouseY = x, y

	if s.buttons[s.FreeLookButton] {
		s.rot[0] += dx
		s.rot[1] += dy
	}
	if s.buttons[s.PanButton] {
		s.pan[0] += dx
		s.pan[1] += dy
	}
}

// Mouse returns the last pointer position.
func (s *State) Mouse() (x, y int32) { return s.mouseX, s.mouseY }

// Scroll records wheel movement in notches, positive away from the user.
// Scrolling away zooms in.
func (s *State) Scroll(notches float32) {
	s.zoom -= notches * WheelStep
}

func (s *State) FreeLookActive() bool { return s.buttons[s.FreeLookButton] }
func (s *State) PanActive() bool      { return s.buttons[s.PanButton] }

// TakeRotation returns and resets the free-look delta.
func (s *State) TakeRotation() (dx, dy float32) {
	dx, dy = s.rot[0], s.rot[1]
	s.rot = [2]float32{}
	return dx, dy
}

// TakePan returns and resets the pan delta.
func (s *State) TakePan() (dx, dy float32) {
	dx, dy = s.pan[0], s.pan[1]
	s.pan = [2]float32{}
	return dx, dy
}

// TakeZoom returns and resets the scroll delta.
func (s *State) TakeZoom() float32 {
	z := s.zoom
	s.zoom = 0
	return z
}

// MarkResized records that the window changed size this frame.
func (s *State) MarkResized() { s.resized = true }

// Resized reports whether the window changed size this frame.
func (s *State) Resized() bool { return s.resized }

// RequestQuit asks the application to stop.
func (s *State) RequestQuit() { s.quit = true }

// ShouldQuit reports whether a quit was requested.
func (s *State) ShouldQuit() bool { return s.quit }
