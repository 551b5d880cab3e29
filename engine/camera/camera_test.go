package camera_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/smoothie/common"
	"github.com/Carmen-Shannon/smoothie/engine/camera"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobals_Layout(t *testing.T) {
	g := camera.Globals{
		Resolution: [2]float32{800, 600},
		Offset:     [2]float32{1.5, -2},
		Zoom:       2,
	}
	require.Equal(t, 24, g.Size())

	buf := g.Marshal()
	require.Len(t, buf, 24)
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(800), f(0))
	assert.Equal(t, float32(600), f(4))
	assert.Equal(t, float32(1.5), f(8))
	assert.Equal(t, float32(-2), f(12))
	assert.Equal(t, float32(2), f(16))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[20:]))
	assert.Contains(t, camera.GlobalsSource, "struct Globals")
}

func TestCamera_Defaults(t *testing.T) {
	c := camera.NewCamera()
	w, h := c.Resolution()
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)
	assert.Equal(t, float32(1), c.Zoom())
	assert.InDelta(t, 360.0, c.PixelsPerUnit(), 1e-9)
}

func TestCamera_WorldToScreen(t *testing.T) {
	c := camera.NewCamera(camera.WithResolution(200, 100))

	sx, sy := c.WorldToScreen(0, 0)
	assert.InDelta(t, 100.0, sx, 1e-9)
	assert.InDelta(t, 50.0, sy, 1e-9)

	// y up in world space, down on screen
	sx, sy = c.WorldToScreen(1, 1)
	assert.InDelta(t, 150.0, sx, 1e-9)
	assert.InDelta(t, 0.0, sy, 1e-9)

	c.SetOffset(1, 0)
	c.SetZoom(2)
	sx, _ = c.WorldToScreen(1, 0)
	assert.InDelta(t, 100.0, sx, 1e-9)
	sx, _ = c.WorldToScreen(2, 0)
	assert.InDelta(t, 200.0, sx, 1e-9)
}

func TestCamera_IgnoresInvalidValues(t *testing.T) {
	c := camera.NewCamera(camera.WithZoom(-1), camera.WithResolution(0, 10))
	c.SetZoom(0)
	c.SetResolution(-5, 5)

	w, h := c.Resolution()
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)
	assert.Equal(t, float32(1), c.Zoom())
}

func TestCamera_UpdateFromController(t *testing.T) {
	ctrl := camera.NewCameraController(camera.WithPosition(3, 4), camera.WithInitialZoom(2))
	c := camera.NewCamera(camera.WithController(ctrl))

	x, y := c.Offset()
	assert.Equal(t, float32(3), x)
	assert.Equal(t, float32(4), y)
	assert.Equal(t, float32(2), c.Zoom())

	ctrl.SetPosition(-1, 0)
	c.Update()
	g := c.Globals()
	assert.Equal(t, [2]float32{-1, 0}, g.Offset)
	assert.Equal(t, float32(2), g.Zoom)
	assert.Equal(t, [2]float32{1280, 720}, g.Resolution)
}

func TestController_ZoomClamped(t *testing.T) {
	ctrl := camera.NewCameraController(camera.WithZoomBounds(0.5, 4), camera.WithZoomSpeed(1))

	ctrl.ZoomBy(1)
	assert.InDelta(t, 2.0, ctrl.Zoom(), 1e-6)
	ctrl.ZoomBy(1)
	ctrl.ZoomBy(1)
	assert.InDelta(t, 4.0, ctrl.Zoom(), 1e-6)

	ctrl.ZoomBy(-5)
	assert.InDelta(t, 0.5, ctrl.Zoom(), 1e-6)

	ctrl.SetZoom(100)
	assert.InDelta(t, 4.0, ctrl.Zoom(), 1e-6)
}

func TestController_PanScalesWithZoom(t *testing.T) {
	ctrl := camera.NewCameraController(camera.WithPanSpeed(1))
	ctrl.PanRight(1)
	x, _ := ctrl.Position()
	assert.InDelta(t, 1.0, x, 1e-6)

	ctrl.SetZoom(2)
	ctrl.PanUp(1)
	_, y := ctrl.Position()
	assert.InDelta(t, 0.5, y, 1e-6)
}

func TestController_HandleKey(t *testing.T) {
	ctrl := camera.NewCameraController(camera.WithPanSpeed(1), camera.WithPosition(1, 1))

	assert.True(t, ctrl.HandleKey(common.KeyLeft))
	assert.True(t, ctrl.HandleKey(common.KeyW))
	x, y := ctrl.Position()
	assert.InDelta(t, 0.0, x, 1e-6)
	assert.InDelta(t, 2.0, y, 1e-6)

	assert.True(t, ctrl.HandleKey(common.KeyE))
	assert.Greater(t, ctrl.Zoom(), float32(1))

	assert.True(t, ctrl.HandleKey(common.KeyR))
	x, y = ctrl.Position()
	assert.Equal(t, float32(1), x)
	assert.Equal(t, float32(1), y)
	assert.Equal(t, float32(1), ctrl.Zoom())

	assert.False(t, ctrl.HandleKey(common.KeySpace))
}
