package camera

import (
	"math"
	"sync"
)

type cameraImpl struct {
	mu *sync.Mutex

	offset [2]float32
	zoom   float32

	width  int
	height int

	controller CameraController
}

// Camera defines the interface for the 2D view.
// One world unit spans half of the shorter viewport side at zoom 1, so a shape
// drawn in the unit square [-1, 1] fills the viewport's short axis.
// The camera reads offset and zoom from an attached CameraController each frame via Update().
type Camera interface {
	// Offset returns the world-space point shown at the viewport center.
	//
	// Returns:
	//   - x, y: world-space offset
	Offset() (x, y float32)

	// SetOffset sets the world-space point shown at the viewport center.
	// Overwritten on the next Update when a controller is attached.
	//
	// Parameters:
	//   - x, y: world-space offset
	SetOffset(x, y float32)

	// Zoom returns the current zoom factor.
	//
	// Returns:
	//   - float32: the zoom factor (1 = unit square fills the short axis)
	Zoom() float32

	// SetZoom sets the zoom factor. Non-positive values are ignored.
	// Overwritten on the next Update when a controller is attached.
	//
	// Parameters:
	//   - zoom: the zoom factor
	SetZoom(zoom float32)

	// Resolution returns the viewport size in pixels.
	//
	// Returns:
	//   - width, height: viewport size in pixels
	Resolution() (width, height int)

	// SetResolution updates the viewport size, typically from a window resize callback.
	// Zero or negative dimensions are ignored.
	//
	// Parameters:
	//   - width, height: viewport size in pixels
	SetResolution(width, height int)

	// Controller returns the attached CameraController, or nil.
	//
	// Returns:
	//   - CameraController: the attached controller
	Controller() CameraController

	// SetController attaches a controller whose position and zoom drive the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach (nil to detach)
	SetController(ctrl CameraController)

	// Update copies the controller's position and zoom into the camera.
	// This is a no-op when no controller is attached.
	Update()

	// Globals returns the GPU record describing the current view.
	//
	// Returns:
	//   - Globals: resolution, offset and zoom ready for upload
	Globals() Globals

	// PixelsPerUnit returns how many pixels one world unit spans at the current zoom.
	//
	// Returns:
	//   - float64: pixels per world unit
	PixelsPerUnit() float64

	// WorldToScreen maps a world-space point to pixel coordinates.
	// Pixel coordinates grow right and down; world y grows up.
	//
	// Parameters:
	//   - x, y: world-space point
	//
	// Returns:
	//   - sx, sy: pixel coordinates
	WorldToScreen(x, y float64) (sx, sy float64)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with the specified options.
// Defaults to a 1280x720 viewport centered on the origin at zoom 1.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the configured camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		zoom:   1,
		width:  1280,
		height: 720,
	}
	for _, option := range options {
		option(c)
	}
	c.Update()
	return c
}

func (c *cameraImpl) Offset() (x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset[0], c.offset[1]
}

func (c *cameraImpl) SetOffset(x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = [2]float32{x, y}
}

func (c *cameraImpl) Zoom() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

func (c *cameraImpl) SetZoom(zoom float32) {
	if zoom <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = zoom
}

func (c *cameraImpl) Resolution() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *cameraImpl) SetResolution(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width = width
	c.height = height
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return
	}
	x, y := c.controller.Position()
	c.offset = [2]float32{x, y}
	c.zoom = c.controller.Zoom()
}

func (c *cameraImpl) Globals() Globals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Globals{
		Resolution: [2]float32{float32(c.width), float32(c.height)},
		Offset:     c.offset,
		Zoom:       c.zoom,
	}
}

func (c *cameraImpl) PixelsPerUnit() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pixelsPerUnit()
}

func (c *cameraImpl) WorldToScreen(x, y float64) (sx, sy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ppu := c.pixelsPerUnit()
	sx = float64(c.width)/2 + (x-float64(c.offset[0]))*ppu
	sy = float64(c.height)/2 - (y-float64(c.offset[1]))*ppu
	return sx, sy
}

// pixelsPerUnit computes the world to pixel scale. Caller must hold the mutex.
func (c *cameraImpl) pixelsPerUnit() float64 {
	short := math.Min(float64(c.width), float64(c.height))
	return short / 2 * float64(c.zoom)
}
