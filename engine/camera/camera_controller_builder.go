package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithPosition sets the initial view center. Reset returns to this position.
//
// Parameters:
//   - x, y: world-space position
//
// Returns:
//   - CameraControllerOption: functional option to set the position
func WithPosition(x, y float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.home = [2]float32{x, y}
	}
}

// WithInitialZoom sets the initial zoom factor. Reset returns to this zoom.
//
// Parameters:
//   - zoom: the zoom factor
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom
func WithInitialZoom(zoom float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.homeZoom = zoom
	}
}

// WithZoomBounds sets the minimum and maximum zoom factors.
//
// Parameters:
//   - min: minimum zoom
//   - max: maximum zoom
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom bounds
func WithZoomBounds(min, max float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minZoom = min
		cc.maxZoom = max
	}
}

// WithZoomSpeed sets the relative zoom change per step.
//
// Parameters:
//   - speed: zoom multiplier per step
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom speed
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}

// WithPanSpeed sets the pan distance per step at zoom 1.
//
// Parameters:
//   - speed: world units per pan step
//
// Returns:
//   - CameraControllerOption: functional option to set the pan speed
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSpeed = speed
	}
}
