package camera

import (
	"sync"

	"github.com/Carmen-Shannon/smoothie/common"
)

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	position [2]float32
	zoom     float32

	// Values restored by Reset.
	home     [2]float32
	homeZoom float32

	minZoom float32
	maxZoom float32

	panSpeed  float32
	zoomSpeed float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new camera controller with sensible defaults.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:        &sync.Mutex{},
		homeZoom:  1,
		minZoom:   0.05,
		maxZoom:   50,
		panSpeed:  0.05,
		zoomSpeed: 0.1,
	}

	for _, option := range options {
		option(cc)
	}

	if cc.minZoom > cc.maxZoom {
		cc.minZoom, cc.maxZoom = cc.maxZoom, cc.minZoom
	}
	cc.homeZoom = common.Clamp(cc.homeZoom, cc.minZoom, cc.maxZoom)
	cc.position = cc.home
	cc.zoom = cc.homeZoom
	return cc
}

func (cc *cameraControllerImpl) Position() (x, y float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position[0], cc.position[1]
}

func (cc *cameraControllerImpl) SetPosition(x, y float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = [2]float32{x, y}
}

func (cc *cameraControllerImpl) Zoom() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoom
}

func (cc *cameraControllerImpl) SetZoom(zoom float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.zoom = common.Clamp(zoom, cc.minZoom, cc.maxZoom)
}

func (cc *cameraControllerImpl) ZoomBy(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	factor := 1 + delta*cc.zoomSpeed
	if factor <= 0 {
		factor = cc.minZoom / cc.zoom
	}
	cc.zoom = common.Clamp(cc.zoom*factor, cc.minZoom, cc.maxZoom)
}

func (cc *cameraControllerImpl) PanRight(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position[0] += delta * cc.panSpeed / cc.zoom
}

func (cc *cameraControllerImpl) PanUp(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position[1] += delta * cc.panSpeed / cc.zoom
}

func (cc *cameraControllerImpl) HandleKey(keyCode uint32) bool {
	switch keyCode {
	case common.KeyRight, common.KeyD:
		cc.PanRight(1)
	case common.KeyLeft, common.KeyA:
		cc.PanRight(-1)
	case common.KeyUp, common.KeyW:
		cc.PanUp(1)
	case common.KeyDown, common.KeyS:
		cc.PanUp(-1)
	case common.KeyE:
		cc.ZoomBy(1)
	case common.KeyQ:
		cc.ZoomBy(-1)
	case common.KeyR:
		cc.Reset()
	default:
		return false
	}
	return true
}

func (cc *cameraControllerImpl) Reset() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = cc.home
	cc.zoom = cc.homeZoom
}

func (cc *cameraControllerImpl) MinZoom() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.minZoom
}

func (cc *cameraControllerImpl) MaxZoom() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.maxZoom
}

func (cc *cameraControllerImpl) PanSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.panSpeed
}

func (cc *cameraControllerImpl) ZoomSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoomSpeed
}
