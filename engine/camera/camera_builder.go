package camera

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*cameraImpl)

// WithOffset sets the initial world-space point shown at the viewport center.
//
// Parameters:
//   - x, y: world-space offset
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera offset
func WithOffset(x, y float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.offset = [2]float32{x, y}
	}
}

// WithZoom sets the initial zoom factor. Non-positive values are ignored.
//
// Parameters:
//   - zoom: the zoom factor
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera zoom
func WithZoom(zoom float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if zoom > 0 {
			c.zoom = zoom
		}
	}
}

// WithResolution sets the initial viewport size in pixels.
//
// Parameters:
//   - width, height: viewport size in pixels
//
// Returns:
//   - CameraBuilderOption: a function that sets the viewport size
func WithResolution(width, height int) CameraBuilderOption {
	return func(c *cameraImpl) {
		if width > 0 && height > 0 {
			c.width = width
			c.height = height
		}
	}
}

// WithController attaches a CameraController to the camera.
// The camera reads offset and zoom from the controller on every Update.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: a function that attaches the controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
