package camera

// CameraController owns the 2D view position and zoom driven by user input.
// The Camera reads from the controller each frame; input callbacks write to it
// from the window goroutine, so every method is safe for concurrent use.
type CameraController interface {
	// Position returns the world-space point the view is centered on.
	//
	// Returns:
	//   - x, y: world-space position
	Position() (x, y float32)

	// SetPosition moves the view center directly.
	//
	// Parameters:
	//   - x, y: world-space position
	SetPosition(x, y float32)

	// Zoom returns the current zoom factor.
	//
	// Returns:
	//   - float32: the zoom factor
	Zoom() float32

	// SetZoom sets the zoom factor, clamped to the min/max bounds.
	//
	// Parameters:
	//   - zoom: the new zoom factor
	SetZoom(zoom float32)

	// ZoomBy scales the zoom factor by (1 + delta*ZoomSpeed), clamped to the bounds.
	// Positive delta zooms in.
	//
	// Parameters:
	//   - delta: zoom steps, usually a scroll wheel delta
	ZoomBy(delta float32)

	// PanRight moves the view along world x. The distance is PanSpeed/Zoom per unit
	// of delta so that a pan step covers the same screen distance at any zoom.
	//
	// Parameters:
	//   - delta: pan steps (negative moves left)
	PanRight(delta float32)

	// PanUp moves the view along world y, scaled like PanRight.
	//
	// Parameters:
	//   - delta: pan steps (negative moves down)
	PanUp(delta float32)

	// HandleKey applies the keyboard binding for keyCode.
	// Arrow keys and WASD pan, E and Q zoom in and out, R resets the view.
	//
	// Parameters:
	//   - keyCode: the virtual key code (see common key codes)
	//
	// Returns:
	//   - bool: true if the key was bound and applied
	HandleKey(keyCode uint32) bool

	// Reset restores the initial position and zoom.
	Reset()

	// MinZoom returns the minimum allowed zoom factor.
	//
	// Returns:
	//   - float32: minimum zoom
	MinZoom() float32

	// MaxZoom returns the maximum allowed zoom factor.
	//
	// Returns:
	//   - float32: maximum zoom
	MaxZoom() float32

	// PanSpeed returns the pan distance per step at zoom 1.
	//
	// Returns:
	//   - float32: world units per pan step
	PanSpeed() float32

	// ZoomSpeed returns the relative zoom change per step.
	//
	// Returns:
	//   - float32: zoom multiplier per step
	ZoomSpeed() float32
}
