package gpu

// ViewportSize is the drawable size of the default framebuffer in pixels.
// The renderer owns the current value and passes it to everything that
// depends on it.
type ViewportSize struct {
	Width  int32
	Height int32
}

// Aspect returns width over height, or 1 for an empty viewport.
func (v ViewportSize) Aspect() float32 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// Contains reports whether the window coordinate (x, y), with y counted
// from the top, lies inside the viewport.
func (v ViewportSize) Contains(x, y int32) bool {
	return x >= 0 && y >= 0 && x < v.Width && y < v.Height
}

// Empty reports whether either dimension is zero, as when minimized.
func (v ViewportSize) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}
